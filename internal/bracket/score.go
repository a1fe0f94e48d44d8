package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

// Score is a validated result: per-set games for both sides plus sets won.
type Score struct {
	SetsA    Sets
	SetsB    Sets
	SetsWonA int
	SetsWonB int
}

// NewScore validates two per-set score sequences and counts the sets won by
// each side.
func NewScore(setsA, setsB []int) (Score, error) {
	if len(setsA) == 0 || len(setsB) == 0 {
		return Score{}, &ValidationError{Field: "scores", Reason: "at least one set is required"}
	}
	if len(setsA) != len(setsB) {
		return Score{}, &ValidationError{
			Field:  "scores",
			Reason: fmt.Sprintf("side A has %d sets, side B has %d", len(setsA), len(setsB)),
		}
	}

	score := Score{
		SetsA: append(Sets(nil), setsA...),
		SetsB: append(Sets(nil), setsB...),
	}
	for i := range setsA {
		if setsA[i] < 0 || setsB[i] < 0 {
			return Score{}, &ValidationError{Field: "scores", Reason: fmt.Sprintf("set %d has a negative value", i+1)}
		}
		switch {
		case setsA[i] > setsB[i]:
			score.SetsWonA++
		case setsB[i] > setsA[i]:
			score.SetsWonB++
		}
	}
	return score, nil
}

// Leader is the side that won more sets, or SideNone on a tie.
func (s Score) Leader() Side {
	switch {
	case s.SetsWonA > s.SetsWonB:
		return SideA
	case s.SetsWonB > s.SetsWonA:
		return SideB
	}
	return SideNone
}

// ResolveWinner returns the winning registration for the match. An explicit
// winner must occupy one of the slots; otherwise the set majority decides. A
// tie without an explicit winner yields nil.
func ResolveWinner(m *Match, score Score, explicit *uuid.UUID) (*uuid.UUID, error) {
	if explicit != nil {
		if !m.HasPair(*explicit) {
			return nil, &ValidationError{Field: "winner_id", Reason: "winner is not part of this match"}
		}
		id := *explicit
		return &id, nil
	}

	var winner *uuid.UUID
	switch score.Leader() {
	case SideA:
		winner = m.PairAID
	case SideB:
		winner = m.PairBID
	default:
		return nil, nil
	}
	if winner == nil {
		return nil, nil
	}
	id := *winner
	return &id, nil
}
