package draw

import (
	"github.com/AdamBeresnev/padel-club/internal/bracket"
)

const singleRoundName = "Ronda Única"

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate pairs every entrant with every other entrant once, all in a single
// round.
func (g *RoundRobinGenerator) Generate(params Params) (*Plan, error) {
	if err := checkEntrants(params.Entrants); err != nil {
		return nil, err
	}

	b := newBuilder(params)
	round := b.addRound(bracket.StageMain, 1, singleRoundName)
	b.allPlayAll(round, pairingOrder(params.Entrants, params.Options))
	return b.plan, nil
}

func (b *builder) allPlayAll(round bracket.Round, entrants []Entrant) {
	seq := 0
	for i := 0; i < len(entrants); i++ {
		for j := i + 1; j < len(entrants); j++ {
			seq++
			a, c := entrants[i].ID, entrants[j].ID
			m := b.newMatch(round, seq)
			m.PairAID = &a
			m.PairBID = &c
			b.plan.Matches = append(b.plan.Matches, m)
		}
	}
}
