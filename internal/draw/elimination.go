package draw

import (
	"fmt"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/utils"
	"github.com/google/uuid"
)

type EliminationGenerator struct {
	double bool
}

func NewEliminationGenerator(double bool) Generator {
	return &EliminationGenerator{double: double}
}

func (g *EliminationGenerator) Name() string {
	if g.double {
		return "DoubleElimination"
	}
	return "SingleElimination"
}

func (g *EliminationGenerator) Generate(params Params) (*Plan, error) {
	if err := checkEntrants(params.Entrants); err != nil {
		return nil, err
	}

	b := newBuilder(params)
	if g.double {
		// No losers bracket layout is defined, the winners side is played as a
		// plain knockout.
		b.warn("double elimination: losers bracket is not generated, using a single elimination tree")
	}

	ordered := pairingOrder(params.Entrants, params.Options)
	slots := make([]*uuid.UUID, len(ordered))
	for i := range ordered {
		id := ordered[i].ID
		slots[i] = &id
	}

	if err := b.elimination(bracket.StageMain, slots); err != nil {
		return nil, err
	}
	return b.plan, nil
}

// RoundSizes returns the match count of every round of a knockout for the
// given number of entrants. Each round halves the previous one, rounding up.
func RoundSizes(entrants int) []int {
	if entrants < 2 {
		return nil
	}
	var sizes []int
	for c := (entrants + 1) / 2; ; c = (c + 1) / 2 {
		sizes = append(sizes, c)
		if c == 1 {
			break
		}
	}
	return sizes
}

// RoundName labels round (1-based) of a knockout with total rounds.
func RoundName(round, total int) string {
	switch total - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinal"
	case 2:
		return "Cuartos de Final"
	}
	return fmt.Sprintf("Ronda %d", round)
}

// elimination lays out a knockout tree. slots are the round one entrants in
// pairing order, a nil slot is filled later by another process.
//
// Match i of round r+1 receives the winners of matches 2i and 2i+1 of round r.
// A match with a single feeder (or a single entrant in round one) is a bye.
func (b *builder) elimination(stage bracket.Stage, slots []*uuid.UUID) error {
	sizes := RoundSizes(len(slots))
	rounds := make([][]*bracket.Match, len(sizes))

	for r, size := range sizes {
		round := b.addRound(stage, r+1, RoundName(r+1, len(sizes)))
		for i := 0; i < size; i++ {
			m := b.newMatch(round, i+1)
			rounds[r] = append(rounds[r], &m)
		}
	}

	for r := 0; r < len(rounds)-1; r++ {
		for i, m := range rounds[r] {
			nextID := rounds[r+1][i/2].ID
			m.WinnerNextMatchID = &nextID
			m.WinnerNextSlot = utils.Ptr(i%2 + 1)
		}
	}

	for r := 1; r < len(rounds); r++ {
		for i, m := range rounds[r] {
			if 2*i+1 >= sizes[r-1] {
				m.IsBye = true
			}
		}
	}

	for i, m := range rounds[0] {
		m.PairAID = slots[2*i]
		if 2*i+1 < len(slots) {
			m.PairBID = slots[2*i+1]
		} else {
			m.IsBye = true
		}
	}

	if err := settleByes(rounds); err != nil {
		return err
	}

	for _, round := range rounds {
		for _, m := range round {
			b.plan.Matches = append(b.plan.Matches, *m)
		}
	}
	return nil
}

// settleByes completes round one byes whose entrant is known and pushes the
// entrant forward through any chain of byes.
func settleByes(rounds [][]*bracket.Match) error {
	index := make(map[uuid.UUID]*bracket.Match)
	for _, round := range rounds {
		for _, m := range round {
			index[m.ID] = m
		}
	}

	for _, m := range rounds[0] {
		if !m.IsBye || m.PairAID == nil {
			continue
		}
		winner := *m.PairAID
		m.Status = bracket.MatchCompleted
		m.WinnerID = &winner
		m.ResultsConfirmed = true

		for cur := m; cur.WinnerNextMatchID != nil; {
			next := index[*cur.WinnerNextMatchID]
			cascade, err := bracket.Advance(cur, next)
			if err != nil {
				return err
			}
			if !cascade {
				break
			}
			cur = next
		}
	}
	return nil
}
