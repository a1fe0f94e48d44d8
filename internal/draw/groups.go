package draw

import (
	"fmt"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/google/uuid"
)

type GroupStageGenerator struct{}

func NewGroupStageGenerator() Generator {
	return &GroupStageGenerator{}
}

func (g *GroupStageGenerator) Name() string {
	return "GroupStage"
}

// Generate splits entrants into groups of GroupSize, plays a round robin in
// each group and lays out the knockout for the qualifiers with empty slots.
// Filling the knockout from group standings happens elsewhere.
func (g *GroupStageGenerator) Generate(params Params) (*Plan, error) {
	if err := checkEntrants(params.Entrants); err != nil {
		return nil, err
	}

	opts := params.Options
	if opts.GroupSize <= 0 {
		opts.GroupSize = DefaultOptions().GroupSize
	}
	if opts.QualifiersPerGroup <= 0 {
		opts.QualifiersPerGroup = DefaultOptions().QualifiersPerGroup
	}
	if opts.GroupSize < 2 {
		return nil, &bracket.ValidationError{Field: "group_size", Reason: "groups need at least two pairs"}
	}

	b := newBuilder(params)
	count := (len(params.Entrants) + opts.GroupSize - 1) / opts.GroupSize
	groups := distribute(params.Entrants, count, opts)

	qualifiers := 0
	for i, members := range groups {
		name := GroupName(i)
		round := b.addRound(bracket.StageGroups, i+1, name)
		if len(members) < 2 {
			b.warn("%s has %d pair(s) and no matches", name, len(members))
		}
		b.allPlayAll(round, members)
		qualifiers += min(len(members), opts.QualifiersPerGroup)
	}

	if qualifiers < 2 {
		b.warn("only %d qualifier(s), knockout stage not created", qualifiers)
		return b.plan, nil
	}
	if err := b.elimination(bracket.StageKnockout, make([]*uuid.UUID, qualifiers)); err != nil {
		return nil, err
	}
	return b.plan, nil
}

// GroupName returns "Grupo A" for index 0, "Grupo B" for 1 and so on.
func GroupName(i int) string {
	if i < 26 {
		return fmt.Sprintf("Grupo %c", 'A'+rune(i))
	}
	return fmt.Sprintf("Grupo %d", i+1)
}
