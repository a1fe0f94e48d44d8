package bracket

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Registration is one pair entered in a tournament. Only confirmed
// registrations take part in the draw.
type Registration struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	TournamentID  uuid.UUID     `db:"tournament_id" json:"tournament_id"`
	CategoryID    *uuid.UUID    `db:"category_id" json:"category_id,omitempty"`
	PlayerAName   string        `db:"player_a_name" json:"player_a_name"`
	PlayerAID     *uuid.UUID    `db:"player_a_id" json:"player_a_id,omitempty"`
	PlayerBName   string        `db:"player_b_name" json:"player_b_name"`
	PlayerBID     *uuid.UUID    `db:"player_b_id" json:"player_b_id,omitempty"`
	SkillRank     int           `db:"skill_rank" json:"skill_rank"`
	Sequence      int           `db:"sequence" json:"sequence"`
	Confirmed     bool          `db:"confirmed" json:"confirmed"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
