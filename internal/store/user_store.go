package store

import (
	"context"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	insertUserQuery = `INSERT INTO users (id, email, username, role, provider, provider_id, avatar_url)
		VALUES (:id, :email, :username, :role, :provider, :provider_id, :avatar_url)`

	// a returning login keeps its id and role, the provider profile wins for
	// the rest
	upsertProviderUserQuery = `INSERT INTO users (id, email, username, role, provider, provider_id, avatar_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, provider_id) DO UPDATE SET
			username = CASE WHEN excluded.username <> '' THEN excluded.username ELSE users.username END,
			avatar_url = excluded.avatar_url`

	userByIDQuery       = "SELECT * FROM users WHERE id = ?"
	userByProviderQuery = "SELECT * FROM users WHERE provider = ? AND provider_id = ?"
	setUserRoleQuery    = "UPDATE users SET role = ? WHERE id = ?"
)

// UserStore keeps accounts. Provider users are keyed by (provider,
// provider_id); the guest organizer has neither.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return getUser(ctx, s.db, id)
}

func (s *UserStore) GetUserTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*users.User, error) {
	return getUser(ctx, tx, id)
}

func getUser(ctx context.Context, q queryer, id uuid.UUID) (*users.User, error) {
	var u users.User
	if err := q.GetContext(ctx, &u, userByIDQuery, id); err != nil {
		return nil, notFound(err, "user "+id.String())
	}
	return &u, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, insertUserQuery, user)
	return err
}

// SaveProviderUser inserts u, or refreshes the profile of the account that
// already has its provider identity. The stored row is returned.
func (s *UserStore) SaveProviderUser(ctx context.Context, u *users.User) (*users.User, error) {
	if u.Provider == nil || u.ProviderID == nil {
		return nil, &bracket.ValidationError{Field: "provider", Reason: "provider identity is required"}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, upsertProviderUserQuery,
		u.ID, u.Email, u.Username, u.Role, u.Provider, u.ProviderID, u.AvatarURL)
	if err != nil {
		return nil, err
	}
	var saved users.User
	if err := tx.GetContext(ctx, &saved, userByProviderQuery, *u.Provider, *u.ProviderID); err != nil {
		return nil, notFound(err, *u.Provider+" user")
	}
	return &saved, tx.Commit()
}

func (s *UserStore) UpdateUserRoleTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, role bracket.Role) error {
	res, err := tx.ExecContext(ctx, setUserRoleQuery, role, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, "user "+id.String())
}
