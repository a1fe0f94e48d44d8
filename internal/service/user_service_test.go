package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/store"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := NewUserService(db, store.NewUserStore(db))
	ctx := context.Background()

	identity := goth.User{Provider: "google", UserID: "g-42", Email: "lu@club.test", Name: "Lucía Pérez", AvatarURL: "https://img/a"}
	user, err := svc.SignIn(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, bracket.RolePlayer, user.Role)
	assert.Equal(t, "Lucía Pérez", user.Username)

	identity.NickName = "lu"
	identity.AvatarURL = ""
	again, err := svc.SignIn(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "lu", again.Username)
	assert.Nil(t, again.AvatarURL)

	_, err = svc.SignIn(ctx, goth.User{Provider: "google"})
	assert.ErrorIs(t, err, bracket.ErrValidation)
}

func TestEnsureGuestUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := NewUserService(db, store.NewUserStore(db))
	ctx := context.Background()

	guest, err := svc.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, GuestUserID, guest.ID)
	assert.Equal(t, bracket.RoleOrganizer, guest.Role)

	again, err := svc.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, again.ID)
}

func TestSetRole(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	userStore := store.NewUserStore(db)
	svc := NewUserService(db, userStore)
	ctx := context.Background()

	admin := &users.User{ID: uuid.New(), Email: "admin@club.test", Username: "admin", Role: bracket.RoleAdmin}
	player := &users.User{ID: uuid.New(), Email: "p@club.test", Username: "p", Role: bracket.RolePlayer}
	require.NoError(t, userStore.CreateUser(ctx, admin))
	require.NoError(t, userStore.CreateUser(ctx, player))

	promoted, err := svc.SetRole(ctx, admin, player.ID, bracket.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, bracket.RoleOrganizer, promoted.Role)

	_, err = svc.SetRole(ctx, promoted, admin.ID, bracket.RolePlayer)
	assert.ErrorIs(t, err, bracket.ErrForbidden)

	_, err = svc.SetRole(ctx, admin, player.ID, bracket.Role("captain"))
	assert.ErrorIs(t, err, bracket.ErrValidation)

	_, err = svc.SetRole(ctx, admin, uuid.New(), bracket.RolePlayer)
	assert.ErrorIs(t, err, bracket.ErrNotFound)
}
