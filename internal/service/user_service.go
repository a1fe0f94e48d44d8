package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/store"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/AdamBeresnev/padel-club/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
)

// GuestUserID is the organizer account used by guest login.
var GuestUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store}
}

// SignIn maps an OAuth identity to an account. New accounts start as
// players; organizers are promoted by an admin.
func (s *UserService) SignIn(ctx context.Context, identity goth.User) (*users.User, error) {
	if identity.Provider == "" || identity.UserID == "" {
		return nil, &bracket.ValidationError{Field: "provider", Reason: "identity has no provider id"}
	}
	name := identity.NickName
	if name == "" {
		name = identity.Name
	}

	user, err := s.store.SaveProviderUser(ctx, &users.User{
		ID:         uuid.New(),
		Email:      identity.Email,
		Username:   name,
		Role:       bracket.RolePlayer,
		Provider:   utils.Ptr(identity.Provider),
		ProviderID: utils.Ptr(identity.UserID),
		AvatarURL:  utils.StringOrNil(identity.AvatarURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save %s user: %w", identity.Provider, err)
	}
	return user, nil
}

// EnsureGuestUser returns the shared guest organizer, creating it on first
// use.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, GuestUserID)
	if !errors.Is(err, bracket.ErrNotFound) {
		return user, err
	}

	guest := &users.User{
		ID:       GuestUserID,
		Email:    "guest@padel.club",
		Username: "Guest Organizer",
		Role:     bracket.RoleOrganizer,
	}
	if err := s.store.CreateUser(ctx, guest); err != nil {
		return nil, err
	}
	slog.Info("guest organizer created")
	return s.store.GetUser(ctx, GuestUserID)
}

// SetRole changes the role of a user. Only admins may do it.
func (s *UserService) SetRole(ctx context.Context, actor *users.User, userID uuid.UUID, role bracket.Role) (*users.User, error) {
	if actor == nil || actor.Role != bracket.RoleAdmin {
		return nil, bracket.ErrForbidden
	}
	if _, err := bracket.ParseRole(string(role)); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.UpdateUserRoleTx(ctx, tx, userID, role); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	slog.Info("user role changed", "user_id", userID, "role", role, "by", actor.ID)
	return user, nil
}
