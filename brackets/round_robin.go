package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type roundRobinGenerator struct{}

func (g *roundRobinGenerator) Name() string { return "RoundRobin" }

func (g *roundRobinGenerator) Generate(players []*models.Player, cfg models.FormatConfig) ([]models.Match, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players for round robin, got %d", ErrConfiguration, len(players))
	}
	return buildRoundRobinMatches(players, models.BracketRoundRobin, nil), nil
}

// buildRoundRobinMatches schedules every unordered pair exactly once using
// the circle method: one player fixed, the rest rotating, so nobody plays
// twice in the same round. With an odd field a dummy entrant fills the
// circle and its pairings are simply skipped (the sitting player has no
// match that round; no bye record is produced).
func buildRoundRobinMatches(players []*models.Player, bracket models.BracketType, groupID *string) []models.Match {
	seeded := bySeed(players)

	ids := make([]string, 0, len(seeded)+1)
	for _, p := range seeded {
		ids = append(ids, p.ID)
	}
	if len(ids)%2 != 0 {
		ids = append(ids, "")
	}
	n := len(ids)
	half := n / 2

	matches := make([]models.Match, 0, len(seeded)*(len(seeded)-1)/2)
	for round := 1; round <= n-1; round++ {
		position := 0
		for i := 0; i < half; i++ {
			p1, p2 := ids[i], ids[n-1-i]
			if p1 == "" || p2 == "" {
				continue
			}
			position++
			var gid *string
			if groupID != nil {
				gid = strPtr(*groupID)
			}
			matches = append(matches, models.Match{
				ID:        newMatchID(),
				Bracket:   bracket,
				Round:     round,
				Position:  position,
				Player1ID: strPtr(p1),
				Player2ID: strPtr(p2),
				GroupID:   gid,
			})
		}
		// Rotate everyone but the first entrant.
		rotated := make([]string, 0, n)
		rotated = append(rotated, ids[0], ids[n-1])
		rotated = append(rotated, ids[1:n-1]...)
		ids = rotated
	}
	return matches
}
