package brackets

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/openbracket/tournament-engine/models"
)

// Generator builds the initial match graph for one tournament format. It is
// a pure function of (players, config): all structural links are wired
// before it returns, and a configuration error never yields a partial graph.
//
// Swiss generators build round 1 only; later rounds come from NextSwissRound.
// Group-knockout generators build the group stage only; the knockout bracket
// is appended by BuildKnockout once group play completes.
type Generator interface {
	Generate(players []*models.Player, cfg models.FormatConfig) ([]models.Match, error)
	Name() string
}

// ForFormat returns the generator for the given format.
func ForFormat(format models.Format) (Generator, error) {
	switch format {
	case models.FormatSingleElimination:
		return &singleEliminationGenerator{}, nil
	case models.FormatDoubleElimination:
		return &doubleEliminationGenerator{}, nil
	case models.FormatRoundRobin:
		return &roundRobinGenerator{}, nil
	case models.FormatSwiss:
		return &swissGenerator{}, nil
	case models.FormatGroupKnockout:
		return &groupKnockoutGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrConfiguration, format)
	}
}

func newMatchID() string {
	return uuid.NewString()
}

// bySeed returns the players sorted by ascending seed, without touching the
// caller's slice order.
func bySeed(players []*models.Player) []*models.Player {
	sorted := make([]*models.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seed < sorted[j].Seed
	})
	return sorted
}

// bracketSize rounds n up to the next power of two.
func bracketSize(n int) (size, rounds int) {
	size = 1
	for size < n {
		size <<= 1
		rounds++
	}
	return size, rounds
}

// seedOrder returns the seeds (1..size) in bracket slot order, so that
// round 1 pairs slots (0,1), (2,3), ... and seed 1 meets the lowest
// surviving seed in every round.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		mirror := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, mirror-s)
		}
		order = next
	}
	return order
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
