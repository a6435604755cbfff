package brackets

import (
	"github.com/openbracket/tournament-engine/models"
)

type doubleEliminationGenerator struct{}

func (g *doubleEliminationGenerator) Name() string { return "DoubleElimination" }

// Generate builds the winners tree, a mirrored losers bracket and one grand
// finals match. Losers rounds alternate: odd rounds pair losers-bracket
// survivors, even ("major") rounds receive the drop-down from the next
// winners round, so a dropped player never appears in the losers bracket
// before their winners match has a result. The bracket-reset second final
// is not built here; the progression engine creates it on demand.
func (g *doubleEliminationGenerator) Generate(players []*models.Player, cfg models.FormatConfig) ([]models.Match, error) {
	winners, err := buildEliminationTree(players, models.BracketWinners)
	if err != nil {
		return nil, err
	}

	n := len(players)
	size, rounds := bracketSize(n)

	grandFinal := models.Match{
		ID:       newMatchID(),
		Bracket:  models.BracketGrandFinals,
		Round:    1,
		Position: 1,
	}

	wbMatch := func(r, p int) *models.Match {
		for i := range winners {
			if winners[i].Round == r && winners[i].Position == p {
				return &winners[i]
			}
		}
		return nil
	}
	wbFinal := wbMatch(rounds, 1)
	wbFinal.NextMatchID = strPtr(grandFinal.ID)
	wbFinal.NextMatchPosition = intPtr(1)

	if rounds == 1 {
		// Two players: the winners final doubles as the losers bracket.
		wbFinal.LoserNextMatchID = strPtr(grandFinal.ID)
		wbFinal.LoserNextMatchPosition = intPtr(2)
		return append(winners, grandFinal), nil
	}

	// Losers rounds 1..2(rounds-1); round 2k-1 and 2k each hold
	// size/2^(k+1) matches.
	lbRounds := 2 * (rounds - 1)
	losers := make([]models.Match, 0, size-2)
	lbAt := make([][]*models.Match, lbRounds+1)
	for r := 1; r <= lbRounds; r++ {
		k := (r + 1) / 2
		count := size >> (k + 1)
		for p := 0; p < count; p++ {
			losers = append(losers, models.Match{
				ID:       newMatchID(),
				Bracket:  models.BracketLosers,
				Round:    r,
				Position: p + 1,
			})
		}
	}
	idx := 0
	for r := 1; r <= lbRounds; r++ {
		k := (r + 1) / 2
		count := size >> (k + 1)
		lbAt[r] = make([]*models.Match, count)
		for p := 0; p < count; p++ {
			lbAt[r][p] = &losers[idx]
			idx++
		}
	}

	// Internal winner links within the losers bracket.
	for r := 1; r < lbRounds; r++ {
		for p, m := range lbAt[r] {
			if r%2 == 1 {
				// Minor round winner meets the next drop-down one-on-one.
				next := lbAt[r+1][p]
				m.NextMatchID = strPtr(next.ID)
				m.NextMatchPosition = intPtr(1)
			} else {
				next := lbAt[r+1][p/2]
				m.NextMatchID = strPtr(next.ID)
				m.NextMatchPosition = intPtr(p%2 + 1)
			}
		}
	}
	lbFinal := lbAt[lbRounds][0]
	lbFinal.NextMatchID = strPtr(grandFinal.ID)
	lbFinal.NextMatchPosition = intPtr(2)

	// Drop-down links. Winners round 1 fills losers round 1 pairwise;
	// every later winners round k drops into losers round 2(k-1) slot 2,
	// in reversed position order to push rematches apart.
	wbFirstRound := size >> 1
	for p := 0; p < wbFirstRound; p++ {
		wb := wbMatch(1, p+1)
		if wb.IsBye {
			continue // a bye never produces a loser
		}
		target := lbAt[1][p/2]
		wb.LoserNextMatchID = strPtr(target.ID)
		wb.LoserNextMatchPosition = intPtr(p%2 + 1)
	}
	for k := 2; k <= rounds; k++ {
		count := size >> k
		for p := 0; p < count; p++ {
			wb := wbMatch(k, p+1)
			target := lbAt[2*(k-1)][count-1-p]
			wb.LoserNextMatchID = strPtr(target.ID)
			wb.LoserNextMatchPosition = intPtr(2)
		}
	}

	pruned := pruneDeadLosersMatches(winners, losers)

	out := make([]models.Match, 0, len(winners)+len(pruned)+1)
	out = append(out, winners...)
	out = append(out, pruned...)
	out = append(out, grandFinal)
	return out, nil
}

// pruneDeadLosersMatches removes losers matches that can never receive a
// player because every feeder slot belongs to a build-time bye. A match
// with a single live feeder stays; the progression engine resolves it as a
// bye at runtime once its lone player arrives.
func pruneDeadLosersMatches(winners, losers []models.Match) []models.Match {
	feeders := make(map[string]int, len(losers))
	addFeeds := func(ms []models.Match) {
		for i := range ms {
			m := &ms[i]
			if m.NextMatchID != nil {
				feeders[*m.NextMatchID]++
			}
			if m.LoserNextMatchID != nil {
				feeders[*m.LoserNextMatchID]++
			}
		}
	}
	addFeeds(winners)
	addFeeds(losers)

	alive := make(map[string]bool, len(losers))
	for i := range losers {
		alive[losers[i].ID] = true
	}

	for changed := true; changed; {
		changed = false
		for i := range losers {
			m := &losers[i]
			if !alive[m.ID] || feeders[m.ID] > 0 {
				continue
			}
			alive[m.ID] = false
			changed = true
			if m.NextMatchID != nil {
				feeders[*m.NextMatchID]--
			}
		}
	}

	out := make([]models.Match, 0, len(losers))
	for i := range losers {
		if alive[losers[i].ID] {
			out = append(out, losers[i])
		}
	}
	return out
}
