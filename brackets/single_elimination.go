package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type singleEliminationGenerator struct{}

func (g *singleEliminationGenerator) Name() string { return "SingleElimination" }

func (g *singleEliminationGenerator) Generate(players []*models.Player, cfg models.FormatConfig) ([]models.Match, error) {
	return buildEliminationTree(players, models.BracketWinners)
}

// buildEliminationTree produces a full single-elimination tree: bracket size
// rounded up to the next power of two, byes filling the gap at the lowest
// seeds' expense, every winner link pre-wired. Bye matches are resolved at
// construction time and their winners advanced into round 2.
func buildEliminationTree(players []*models.Player, bracket models.BracketType) ([]models.Match, error) {
	n := len(players)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrConfiguration, n)
	}

	seeded := bySeed(players)
	size, rounds := bracketSize(n)

	// Index rounds 1..rounds; matchAt[r][p] is position p+1 of round r.
	matchAt := make([][]*models.Match, rounds+1)
	all := make([]models.Match, 0, size-1)
	for r := 1; r <= rounds; r++ {
		count := size >> r
		matchAt[r] = make([]*models.Match, count)
		for p := 0; p < count; p++ {
			all = append(all, models.Match{
				ID:       newMatchID(),
				Bracket:  bracket,
				Round:    r,
				Position: p + 1,
			})
		}
	}
	// Slices must not reallocate after taking pointers.
	idx := 0
	for r := 1; r <= rounds; r++ {
		for p := range matchAt[r] {
			matchAt[r][p] = &all[idx]
			idx++
		}
	}

	// Winner links: position p of round r feeds slot (1 or 2) of position
	// ceil(p/2) in round r+1. The final has no link.
	for r := 1; r < rounds; r++ {
		for p, m := range matchAt[r] {
			next := matchAt[r+1][p/2]
			m.NextMatchID = strPtr(next.ID)
			m.NextMatchPosition = intPtr(p%2 + 1)
		}
	}

	// Round 1 slots in snake-seeding order. A seed beyond the player count
	// is the bye gap; the real player wins the match at build time.
	order := seedOrder(size)
	for p, m := range matchAt[1] {
		var p1, p2 *models.Player
		if s := order[p*2]; s <= n {
			p1 = seeded[s-1]
		}
		if s := order[p*2+1]; s <= n {
			p2 = seeded[s-1]
		}
		switch {
		case p1 != nil && p2 != nil:
			m.Player1ID = strPtr(p1.ID)
			m.Player2ID = strPtr(p2.ID)
		case p1 != nil:
			m.Player1ID = strPtr(p1.ID)
			m.IsBye = true
			m.WinnerID = strPtr(p1.ID)
		case p2 != nil:
			m.Player1ID = strPtr(p2.ID)
			m.IsBye = true
			m.WinnerID = strPtr(p2.ID)
		default:
			// Snake seeding always places a live seed in the top slot.
			return nil, fmt.Errorf("%w: empty round 1 pairing at position %d", ErrInconsistentGraph, p+1)
		}

		if m.IsBye && m.NextMatchID != nil {
			next := matchAt[2][p/2]
			next.SetSlotPlayer(*m.NextMatchPosition, strPtr(*m.WinnerID))
		}
	}

	return all, nil
}
