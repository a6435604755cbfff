package brackets

import (
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

// CalculateStandings derives per-player aggregates from the match list. It
// is pure and order-independent: only matches with both slots filled, a
// recorded result and no bye flag contribute. Equal-score rows without a
// winner cannot be produced through the scoring path, but imported history
// may contain them; they count as draws.
//
// Sort order is wins desc, point difference desc, points-for desc, ties
// left in input order (stable). Seed is deliberately not a tiebreaker.
func CalculateStandings(matches []models.Match, players []models.Player, groupID *string) []models.GroupStanding {
	byPlayer := make(map[string]*models.GroupStanding, len(players))
	order := make([]string, 0, len(players))
	for i := range players {
		p := &players[i]
		if groupID != nil && (p.GroupID == nil || *p.GroupID != *groupID) {
			continue
		}
		byPlayer[p.ID] = &models.GroupStanding{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Seed:       p.Seed,
		}
		order = append(order, p.ID)
	}

	for i := range matches {
		m := &matches[i]
		if m.IsBye || m.Player1ID == nil || m.Player2ID == nil || !m.HasResult() {
			continue
		}
		if groupID != nil && (m.GroupID == nil || *m.GroupID != *groupID) {
			continue
		}
		s1, ok1 := byPlayer[*m.Player1ID]
		s2, ok2 := byPlayer[*m.Player2ID]
		if !ok1 && !ok2 {
			continue
		}

		apply := func(s *models.GroupStanding, own, opp *int, playerID string) {
			if s == nil {
				return
			}
			s.MatchesPlayed++
			if own != nil && opp != nil {
				s.PointsFor += *own
				s.PointsAgainst += *opp
			}
			switch {
			case m.WinnerID != nil && *m.WinnerID == playerID:
				s.Wins++
			case m.WinnerID != nil:
				s.Losses++
			default:
				s.Draws++
			}
		}
		apply(s1, m.Player1Score, m.Player2Score, *m.Player1ID)
		apply(s2, m.Player2Score, m.Player1Score, *m.Player2ID)
	}

	out := make([]models.GroupStanding, 0, len(order))
	for _, id := range order {
		s := byPlayer[id]
		s.PointDifference = s.PointsFor - s.PointsAgainst
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].PointDifference != out[j].PointDifference {
			return out[i].PointDifference > out[j].PointDifference
		}
		return out[i].PointsFor > out[j].PointsFor
	})
	return out
}

// refreshPlayerRecords rederives the cached win/loss counters on every
// player from the match list. Byes credit a win; draws touch neither
// counter. Called after every graph mutation so the counters never drift
// from the matches they summarize.
func refreshPlayerRecords(t *models.Tournament) {
	for i := range t.Players {
		t.Players[i].Wins = 0
		t.Players[i].Losses = 0
	}
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.WinnerID == nil {
			continue
		}
		if w := t.PlayerByID(*m.WinnerID); w != nil {
			w.Wins++
		}
		if loser := m.LoserID(); loser != nil {
			if l := t.PlayerByID(*loser); l != nil {
				l.Losses++
			}
		}
	}
}
