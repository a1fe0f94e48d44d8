package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePlayer    Role = "player"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// IsAuthority reports whether results written by this role are final.
func (r Role) IsAuthority() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RolePlayer, RoleOrganizer, RoleAdmin:
		return r, nil
	}
	return "", &ValidationError{Field: "role", Reason: "unknown role " + s}
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionRejected SubmissionStatus = "rejected"
	SubmissionAccepted SubmissionStatus = "accepted"
)

// ResultSubmission is a self-reported outcome for a match.
type ResultSubmission struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	MatchID        uuid.UUID        `db:"match_id" json:"match_id"`
	SubmittedBy    *uuid.UUID       `db:"submitted_by" json:"submitted_by,omitempty"`
	SubmitterRole  Role             `db:"submitter_role" json:"submitter_role"`
	SetsA          Sets             `db:"sets_a" json:"sets_a"`
	SetsB          Sets             `db:"sets_b" json:"sets_b"`
	ScoreA         int              `db:"score_a" json:"score_a"`
	ScoreB         int              `db:"score_b" json:"score_b"`
	WinnerID       *uuid.UUID       `db:"winner_id" json:"winner_id,omitempty"`
	Confirmed      bool             `db:"confirmed" json:"confirmed"`
	Status         SubmissionStatus `db:"status" json:"status"`
	ResolutionNote *string          `db:"resolution_note" json:"resolution_note,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

func (s *ResultSubmission) Score() Score {
	return Score{SetsA: s.SetsA, SetsB: s.SetsB, SetsWonA: s.ScoreA, SetsWonB: s.ScoreB}
}
