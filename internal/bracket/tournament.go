package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft              TournamentStatus = "DRAFT"
	TournamentRegistrationOpen   TournamentStatus = "REGISTRATION_OPEN"
	TournamentRegistrationClosed TournamentStatus = "REGISTRATION_CLOSED"
	TournamentInProgress         TournamentStatus = "IN_PROGRESS"
	TournamentCompleted          TournamentStatus = "COMPLETED"
)

type TournamentFormat string

const (
	SingleElimination TournamentFormat = "SINGLE_ELIMINATION"
	DoubleElimination TournamentFormat = "DOUBLE_ELIMINATION"
	RoundRobin        TournamentFormat = "ROUND_ROBIN"
	GroupStage        TournamentFormat = "GROUP_STAGE"
)

func ParseFormat(s string) (TournamentFormat, error) {
	switch f := TournamentFormat(s); f {
	case SingleElimination, DoubleElimination, RoundRobin, GroupStage:
		return f, nil
	}
	return "", &ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", s)}
}

type Tournament struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	OwnerID   uuid.UUID        `db:"owner_id" json:"owner_id"`
	Name      string           `db:"name" json:"name"`
	Format    TournamentFormat `db:"format" json:"format"`
	Status    TournamentStatus `db:"status" json:"status"`
	Capacity  int              `db:"capacity" json:"capacity"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// Category groups registrations inside a tournament, e.g. "Masculino 3ra".
type Category struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
}

// Manual status changes. REGISTRATION_CLOSED -> IN_PROGRESS is reserved for
// bracket generation.
var allowedTransitions = map[TournamentStatus][]TournamentStatus{
	TournamentDraft:              {TournamentRegistrationOpen},
	TournamentRegistrationOpen:   {TournamentRegistrationClosed},
	TournamentRegistrationClosed: {TournamentRegistrationOpen},
	TournamentInProgress:         {TournamentCompleted},
}

func (t *Tournament) CanTransitionTo(to TournamentStatus) bool {
	for _, s := range allowedTransitions[t.Status] {
		if s == to {
			return true
		}
	}
	return false
}
