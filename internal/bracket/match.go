package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
)

type Stage string

const (
	StageMain     Stage = "main"
	StageGroups   Stage = "groups"
	StageKnockout Stage = "knockout"
)

// Round is the persisted record behind a round label.
type Round struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TournamentID uuid.UUID  `db:"tournament_id" json:"tournament_id"`
	CategoryID   *uuid.UUID `db:"category_id" json:"category_id,omitempty"`
	Stage        Stage      `db:"stage" json:"stage"`
	Number       int        `db:"number" json:"number"`
	Name         string     `db:"name" json:"name"`
}

// Sets holds per-set games for one side. Stored as a JSON array.
type Sets []int

func (s Sets) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Sets) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("sets: unsupported type %T", src)
	}
	var out []int
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("sets: %w", err)
	}
	if len(out) == 0 {
		out = nil
	}
	*s = out
	return nil
}

type Match struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TournamentID uuid.UUID  `db:"tournament_id" json:"tournament_id"`
	CategoryID   *uuid.UUID `db:"category_id" json:"category_id,omitempty"`
	RoundID      uuid.UUID  `db:"round_id" json:"round_id"`

	// Position in the draw
	Stage       Stage  `db:"stage" json:"stage"`
	RoundNumber int    `db:"round_number" json:"round_number"`
	RoundLabel  string `db:"round_label" json:"round_label"`
	Sequence    int    `db:"sequence" json:"sequence"`

	PairAID *uuid.UUID `db:"pair_a_id" json:"pair_a_id,omitempty"`
	PairBID *uuid.UUID `db:"pair_b_id" json:"pair_b_id,omitempty"`

	Court       *string    `db:"court" json:"court,omitempty"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`

	Status           MatchStatus `db:"status" json:"status"`
	SetsA            Sets        `db:"sets_a" json:"sets_a"`
	SetsB            Sets        `db:"sets_b" json:"sets_b"`
	ScoreA           int         `db:"score_a" json:"score_a"`
	ScoreB           int         `db:"score_b" json:"score_b"`
	WinnerID         *uuid.UUID  `db:"winner_id" json:"winner_id,omitempty"`
	ResultsConfirmed bool        `db:"results_confirmed" json:"results_confirmed"`
	ConflictResolved bool        `db:"conflict_resolved" json:"conflict_resolved"`
	EndedAt          *time.Time  `db:"ended_at" json:"ended_at,omitempty"`

	WinnerNextMatchID *uuid.UUID `db:"winner_next_match_id" json:"winner_next_match_id,omitempty"`
	WinnerNextSlot    *int       `db:"winner_next_slot" json:"winner_next_slot,omitempty"`

	// A bye has at most one entrant and is never played.
	IsBye bool `db:"is_bye" json:"is_bye"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsPlaceholder reports whether the match still waits on earlier rounds.
func (m *Match) IsPlaceholder() bool {
	return m.PairAID == nil && m.PairBID == nil
}

// IsPlayable reports whether both pairs are known and the match is not a bye.
func (m *Match) IsPlayable() bool {
	return !m.IsBye && m.PairAID != nil && m.PairBID != nil
}

// HasPair reports whether the registration occupies one of the slots.
func (m *Match) HasPair(id uuid.UUID) bool {
	return (m.PairAID != nil && *m.PairAID == id) || (m.PairBID != nil && *m.PairBID == id)
}

func (m *Match) slot(n int) (**uuid.UUID, error) {
	switch n {
	case 1:
		return &m.PairAID, nil
	case 2:
		return &m.PairBID, nil
	}
	return nil, fmt.Errorf("%w: match %s has no slot %d", ErrInvalidState, m.ID, n)
}

// ApplyScore stores a result on the match. A nil winner leaves the match in
// progress.
func (m *Match) ApplyScore(score Score, winner *uuid.UUID, endedAt time.Time) {
	m.SetsA = score.SetsA
	m.SetsB = score.SetsB
	m.ScoreA = score.SetsWonA
	m.ScoreB = score.SetsWonB
	m.WinnerID = winner
	if winner == nil {
		m.Status = MatchInProgress
		return
	}
	m.Status = MatchCompleted
	if m.EndedAt == nil {
		m.EndedAt = &endedAt
	}
}
