package users

import (
	"time"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

type User struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	Email      string       `db:"email" json:"email"`
	Username   string       `db:"username" json:"username"`
	Role       bracket.Role `db:"role" json:"role"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	Provider   *string      `db:"provider" json:"-"`
	ProviderID *string      `db:"provider_id" json:"-"`
	AvatarURL  *string      `db:"avatar_url" json:"avatar_url,omitempty"`
}

// CanManage reports whether the user may run organizer operations on a
// tournament owned by ownerID.
func (u *User) CanManage(ownerID uuid.UUID) bool {
	return u.Role == bracket.RoleAdmin || (u.Role == bracket.RoleOrganizer && u.ID == ownerID)
}
