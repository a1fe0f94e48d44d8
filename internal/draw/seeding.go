package draw

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
)

type Seeding string

const (
	SeedingRandom     Seeding = "random"
	SeedingRanked     Seeding = "ranked"
	SeedingSerpentine Seeding = "serpentine"
)

// ParseSeeding accepts an empty string as the random default.
func ParseSeeding(s string) (Seeding, error) {
	switch v := Seeding(s); v {
	case "":
		return SeedingRandom, nil
	case SeedingRandom, SeedingRanked, SeedingSerpentine:
		return v, nil
	}
	return "", &bracket.ValidationError{Field: "seeding_method", Reason: fmt.Sprintf("unknown seeding method %q", s)}
}

// byRank sorts ranked entrants first (1 is best), unranked last, ties by
// registration order.
func byRank(entrants []Entrant) []Entrant {
	out := append([]Entrant(nil), entrants...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Rank, out[j].Rank
		if (ri == 0) != (rj == 0) {
			return rj == 0
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

func bySequence(entrants []Entrant) []Entrant {
	out := append([]Entrant(nil), entrants...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

func shuffled(entrants []Entrant, rnd *rand.Rand) []Entrant {
	out := bySequence(entrants)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rnd != nil {
		rnd.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}
	return out
}

// fold orders entrants so consecutive pairing yields 1 v n, 2 v n-1, ...
// With an odd count the middle entrant ends up last and takes the bye.
func fold(ranked []Entrant) []Entrant {
	out := make([]Entrant, 0, len(ranked))
	for lo, hi := 0, len(ranked)-1; lo <= hi; lo, hi = lo+1, hi-1 {
		if lo == hi {
			out = append(out, ranked[lo])
			break
		}
		out = append(out, ranked[lo], ranked[hi])
	}
	return out
}

// pairingOrder is the order in which entrants are paired off consecutively.
// Serpentine only changes group distribution, so for pairing it behaves like
// ranked.
func pairingOrder(entrants []Entrant, opts Options) []Entrant {
	switch opts.Seeding {
	case SeedingRanked, SeedingSerpentine:
		return fold(byRank(entrants))
	default:
		return shuffled(entrants, opts.Rand)
	}
}

// distribute splits entrants into count groups. Random and ranked deal in
// order (A, B, C, A, B, C); serpentine snakes (A, B, C, C, B, A).
func distribute(entrants []Entrant, count int, opts Options) [][]Entrant {
	var ordered []Entrant
	switch opts.Seeding {
	case SeedingRanked, SeedingSerpentine:
		ordered = byRank(entrants)
	default:
		ordered = shuffled(entrants, opts.Rand)
	}

	groups := make([][]Entrant, count)
	for i, e := range ordered {
		idx := i % count
		if opts.Seeding == SeedingSerpentine && (i/count)%2 == 1 {
			idx = count - 1 - idx
		}
		groups[idx] = append(groups[idx], e)
	}
	return groups
}
