package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func testPlayers(n int) []models.Player {
	players := make([]models.Player, n)
	for i := 0; i < n; i++ {
		players[i] = models.Player{
			ID:   fmt.Sprintf("p%d", i+1),
			Name: fmt.Sprintf("Player %d", i+1),
			Seed: i + 1,
		}
	}
	return players
}

func playerPtrs(players []models.Player) []*models.Player {
	ptrs := make([]*models.Player, len(players))
	for i := range players {
		ptrs[i] = &players[i]
	}
	return ptrs
}

// newTestTournament builds an active tournament the way the service layer
// does: generate the graph, attach it, flip draft to active.
func newTestTournament(t *testing.T, format models.Format, cfg models.FormatConfig, n int) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		ID:           "t1",
		Name:         "test",
		Format:       format,
		FormatConfig: cfg,
		Status:       models.StatusDraft,
		Players:      testPlayers(n),
	}
	gen, err := ForFormat(format)
	require.NoError(t, err)
	matches, err := gen.Generate(playerPtrs(tournament.Players), cfg)
	require.NoError(t, err)
	tournament.Matches = matches
	tournament.Status = models.StatusActive
	if format == models.FormatSwiss {
		tournament.CurrentSwissRound = 1
	}
	return tournament
}

func findMatch(t *testing.T, tournament *models.Tournament, bracket models.BracketType, round, position int) *models.Match {
	t.Helper()
	for i := range tournament.Matches {
		m := &tournament.Matches[i]
		if m.Bracket == bracket && m.Round == round && m.Position == position {
			return m
		}
	}
	t.Fatalf("no %s match at round %d position %d", bracket, round, position)
	return nil
}

func matchesIn(tournament *models.Tournament, bracket models.BracketType) []*models.Match {
	var out []*models.Match
	for i := range tournament.Matches {
		if tournament.Matches[i].Bracket == bracket {
			out = append(out, &tournament.Matches[i])
		}
	}
	return out
}

// record is the test shorthand for RecordResult that fails the test on any
// engine error.
func record(t *testing.T, tournament *models.Tournament, matchID string, s1, s2 int) *models.Tournament {
	t.Helper()
	updated, _, err := RecordResult(tournament, matchID, s1, s2)
	require.NoError(t, err)
	return updated
}

// playOut scores every playable match repeatedly until none remain, letting
// the lower-numbered seed win each time. Bye and terminal bookkeeping is
// the engine's job; the loop just feeds scores.
func playOut(t *testing.T, tournament *models.Tournament) *models.Tournament {
	t.Helper()
	seedOf := func(id string) int {
		p := tournament.PlayerByID(id)
		require.NotNil(t, p)
		return p.Seed
	}
	for guard := 0; guard < 1000; guard++ {
		var next *models.Match
		for i := range tournament.Matches {
			m := &tournament.Matches[i]
			if !m.IsBye && m.WinnerID == nil && m.Player1ID != nil && m.Player2ID != nil {
				next = m
				break
			}
		}
		if next == nil {
			return tournament
		}
		if seedOf(*next.Player1ID) < seedOf(*next.Player2ID) {
			tournament = record(t, tournament, next.ID, 10, 5)
		} else {
			tournament = record(t, tournament, next.ID, 5, 10)
		}
	}
	t.Fatal("playOut did not terminate")
	return nil
}

func decisiveMatches(tournament *models.Tournament) int {
	count := 0
	for i := range tournament.Matches {
		if !tournament.Matches[i].IsBye {
			count++
		}
	}
	return count
}
