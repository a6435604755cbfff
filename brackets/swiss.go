package brackets

import (
	"fmt"
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

type swissGenerator struct{}

func (g *swissGenerator) Name() string { return "Swiss" }

// Generate builds round 1 only: adjacent seeds paired top-down, with the
// odd player out (the lowest seed) receiving a bye. Every later round is
// paired from live standings by NextSwissRound.
func (g *swissGenerator) Generate(players []*models.Player, cfg models.FormatConfig) ([]models.Match, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players for swiss, got %d", ErrConfiguration, len(players))
	}
	if cfg.NumberOfRounds < 1 {
		return nil, fmt.Errorf("%w: swiss requires number_of_rounds >= 1", ErrConfiguration)
	}

	seeded := bySeed(players)
	matches := make([]models.Match, 0, (len(seeded)+1)/2)
	position := 0
	for i := 0; i+1 < len(seeded); i += 2 {
		position++
		matches = append(matches, models.Match{
			ID:        newMatchID(),
			Bracket:   models.BracketSwiss,
			Round:     1,
			Position:  position,
			Player1ID: strPtr(seeded[i].ID),
			Player2ID: strPtr(seeded[i+1].ID),
		})
	}
	if len(seeded)%2 != 0 {
		last := seeded[len(seeded)-1]
		matches = append(matches, models.Match{
			ID:        newMatchID(),
			Bracket:   models.BracketSwiss,
			Round:     1,
			Position:  position + 1,
			Player1ID: strPtr(last.ID),
			IsBye:     true,
			WinnerID:  strPtr(last.ID),
		})
	}
	return matches, nil
}

// swissRecord is the pairing-time view of a player: standings plus bye
// credit. The public standings calculator excludes byes; for pairing and
// qualification a bye counts as a win.
type swissRecord struct {
	playerID string
	wins     int
	diff     int
	hadBye   bool
}

// swissRanking orders players for pairing: wins (byes included) desc, then
// point difference desc. Remaining ties keep the standings calculator's
// order; the sort is stable.
func swissRanking(t *models.Tournament) []swissRecord {
	standings := CalculateStandings(swissMatches(t), t.Players, nil)
	byID := make(map[string]*swissRecord, len(standings))
	records := make([]swissRecord, 0, len(standings))
	for _, s := range standings {
		records = append(records, swissRecord{playerID: s.PlayerID, wins: s.Wins, diff: s.PointDifference})
	}
	for i := range records {
		byID[records[i].playerID] = &records[i]
	}
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Bracket != models.BracketSwiss || !m.IsBye || m.WinnerID == nil {
			continue
		}
		if rec, ok := byID[*m.WinnerID]; ok {
			rec.wins++
			rec.hadBye = true
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].wins != records[j].wins {
			return records[i].wins > records[j].wins
		}
		return records[i].diff > records[j].diff
	})
	return records
}

func swissMatches(t *models.Tournament) []models.Match {
	out := make([]models.Match, 0, len(t.Matches))
	for i := range t.Matches {
		if t.Matches[i].Bracket == models.BracketSwiss {
			out = append(out, t.Matches[i])
		}
	}
	return out
}

// NextSwissRound appends the pairings for the next Swiss round and returns
// the updated tournament. Pairing walks the ranking top-down, skipping
// opponents already faced; when no fresh opponent remains below a player,
// the nearest-ranked unpaired player is accepted regardless of history.
// With an odd field, the bye goes to the lowest-ranked player who has not
// had one yet, and counts as a win.
func NextSwissRound(t *models.Tournament) (*models.Tournament, error) {
	if models.InferFormat(t) != models.FormatSwiss {
		return nil, fmt.Errorf("%w: tournament is not swiss format", ErrIllegalTransition)
	}
	if t.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: tournament is not active", ErrIllegalTransition)
	}
	if t.SwissQualificationComplete {
		return nil, fmt.Errorf("%w: qualification threshold already reached", ErrIllegalTransition)
	}

	current := currentSwissRound(t)
	if !IsRoundComplete(t.Matches, models.BracketSwiss, current) {
		return nil, fmt.Errorf("%w: round %d is not complete", ErrIllegalTransition, current)
	}
	if current >= t.FormatConfig.NumberOfRounds {
		return nil, fmt.Errorf("%w: all %d rounds already generated", ErrIllegalTransition, t.FormatConfig.NumberOfRounds)
	}

	out := t.Clone()
	ranking := swissRanking(out)
	met := playedPairs(out.Matches)

	paired := make(map[string]bool, len(ranking))
	round := current + 1
	position := 0
	var matches []models.Match

	// Settle the bye first so pairing works over an even field.
	if len(ranking)%2 != 0 {
		byeIdx := len(ranking) - 1
		for i := len(ranking) - 1; i >= 0; i-- {
			if !ranking[i].hadBye {
				byeIdx = i
				break
			}
		}
		byeID := ranking[byeIdx].playerID
		paired[byeID] = true
		matches = append(matches, models.Match{
			ID:        newMatchID(),
			Bracket:   models.BracketSwiss,
			Round:     round,
			Position:  0, // placed after the real pairings below
			Player1ID: strPtr(byeID),
			IsBye:     true,
			WinnerID:  strPtr(byeID),
		})
	}

	for i := 0; i < len(ranking); i++ {
		a := ranking[i]
		if paired[a.playerID] {
			continue
		}
		paired[a.playerID] = true

		opponent := -1
		for j := i + 1; j < len(ranking); j++ {
			if paired[ranking[j].playerID] || met[pairKey(a.playerID, ranking[j].playerID)] {
				continue
			}
			opponent = j
			break
		}
		if opponent == -1 {
			// Last resort: nearest-ranked repeat pairing.
			for j := i + 1; j < len(ranking); j++ {
				if !paired[ranking[j].playerID] {
					opponent = j
					break
				}
			}
		}
		if opponent == -1 {
			return nil, fmt.Errorf("%w: no opponent left for player %s", ErrInconsistentGraph, a.playerID)
		}
		b := ranking[opponent]
		paired[b.playerID] = true

		position++
		matches = append(matches, models.Match{
			ID:        newMatchID(),
			Bracket:   models.BracketSwiss,
			Round:     round,
			Position:  position,
			Player1ID: strPtr(a.playerID),
			Player2ID: strPtr(b.playerID),
		})
	}

	for i := range matches {
		if matches[i].IsBye {
			matches[i].Position = position + 1
		}
	}

	out.Matches = append(out.Matches, matches...)
	out.CurrentSwissRound = round
	return out, nil
}

func currentSwissRound(t *models.Tournament) int {
	round := 0
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Bracket == models.BracketSwiss && m.Round > round {
			round = m.Round
		}
	}
	return round
}

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

func playedPairs(matches []models.Match) map[string]bool {
	met := make(map[string]bool, len(matches))
	for i := range matches {
		m := &matches[i]
		if m.Bracket != models.BracketSwiss || m.Player1ID == nil || m.Player2ID == nil {
			continue
		}
		met[pairKey(*m.Player1ID, *m.Player2ID)] = true
	}
	return met
}

// refreshSwissQualification sets the early-stop flag once any player has
// reached wins_to_qualify, and clears it again if a rescore takes the wins
// back under the threshold before further rounds were generated.
func refreshSwissQualification(t *models.Tournament) {
	if t.FormatConfig.WinsToQualify <= 0 {
		return
	}
	qualified := false
	for _, rec := range swissRanking(t) {
		if rec.wins >= t.FormatConfig.WinsToQualify {
			qualified = true
			break
		}
	}
	t.SwissQualificationComplete = qualified
}
