// Package draw turns confirmed registrations into round and match records.
// Generators are pure: they never touch the store.
package draw

import (
	"fmt"
	"math/rand/v2"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/google/uuid"
)

// Entrant is a confirmed registration as seen by the draw.
type Entrant struct {
	ID       uuid.UUID
	Rank     int // 1 is the strongest pair, 0 means unranked
	Sequence int // registration order
}

func EntrantsFromRegistrations(regs []bracket.Registration) []Entrant {
	entrants := make([]Entrant, 0, len(regs))
	for _, r := range regs {
		if !r.Confirmed {
			continue
		}
		entrants = append(entrants, Entrant{ID: r.ID, Rank: r.SkillRank, Sequence: r.Sequence})
	}
	return entrants
}

type Options struct {
	Seeding            Seeding
	GroupSize          int
	QualifiersPerGroup int
	// Rand drives random seeding. A nil Rand uses the global source.
	Rand *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		Seeding:            SeedingRandom,
		GroupSize:          4,
		QualifiersPerGroup: 2,
	}
}

type Params struct {
	TournamentID uuid.UUID
	CategoryID   *uuid.UUID
	Entrants     []Entrant
	Options      Options
}

// Plan is the output of a generator, ready for a bulk insert.
type Plan struct {
	Rounds   []bracket.Round
	Matches  []bracket.Match
	Warnings []string
}

// PlayableMatches counts matches that are not byes.
func (p *Plan) PlayableMatches() int {
	n := 0
	for _, m := range p.Matches {
		if !m.IsBye {
			n++
		}
	}
	return n
}

type Generator interface {
	Generate(params Params) (*Plan, error)

	Name() string
}

func ForFormat(format bracket.TournamentFormat) (Generator, error) {
	switch format {
	case bracket.SingleElimination:
		return NewEliminationGenerator(false), nil
	case bracket.DoubleElimination:
		return NewEliminationGenerator(true), nil
	case bracket.RoundRobin:
		return NewRoundRobinGenerator(), nil
	case bracket.GroupStage:
		return NewGroupStageGenerator(), nil
	}
	return nil, &bracket.ValidationError{Field: "bracket_type", Reason: fmt.Sprintf("unsupported format %q", format)}
}

// MinEntrants is the smallest field a draw can be made for.
const MinEntrants = 2

func checkEntrants(entrants []Entrant) error {
	if len(entrants) < MinEntrants {
		return fmt.Errorf("%w: found %d", bracket.ErrInsufficientParticipants, len(entrants))
	}
	return nil
}

// builder accumulates rounds and matches for one plan.
type builder struct {
	params Params
	plan   *Plan
}

func newBuilder(params Params) *builder {
	return &builder{params: params, plan: &Plan{}}
}

func (b *builder) addRound(stage bracket.Stage, number int, name string) bracket.Round {
	r := bracket.Round{
		ID:           uuid.New(),
		TournamentID: b.params.TournamentID,
		CategoryID:   b.params.CategoryID,
		Stage:        stage,
		Number:       number,
		Name:         name,
	}
	b.plan.Rounds = append(b.plan.Rounds, r)
	return r
}

func (b *builder) newMatch(r bracket.Round, sequence int) bracket.Match {
	return bracket.Match{
		ID:           uuid.New(),
		TournamentID: b.params.TournamentID,
		CategoryID:   b.params.CategoryID,
		RoundID:      r.ID,
		Stage:        r.Stage,
		RoundNumber:  r.Number,
		RoundLabel:   r.Name,
		Sequence:     sequence,
		Status:       bracket.MatchScheduled,
	}
}

func (b *builder) warn(format string, args ...any) {
	b.plan.Warnings = append(b.plan.Warnings, fmt.Sprintf(format, args...))
}
