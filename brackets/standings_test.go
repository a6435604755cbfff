package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func scoredMatch(p1, p2 string, s1, s2 int) models.Match {
	m := models.Match{
		ID:           newMatchID(),
		Bracket:      models.BracketRoundRobin,
		Round:        1,
		Position:     1,
		Player1ID:    strPtr(p1),
		Player2ID:    strPtr(p2),
		Player1Score: intPtr(s1),
		Player2Score: intPtr(s2),
	}
	switch {
	case s1 > s2:
		m.WinnerID = strPtr(p1)
	case s2 > s1:
		m.WinnerID = strPtr(p2)
	}
	return m
}

func TestCalculateStandingsOrdering(t *testing.T) {
	players := testPlayers(4)
	matches := []models.Match{
		scoredMatch("p1", "p2", 10, 5), // p1: 1-0, +5
		scoredMatch("p3", "p4", 10, 2), // p3: 1-0, +8
		scoredMatch("p1", "p4", 7, 3),  // p1: 2-0
		scoredMatch("p2", "p3", 6, 8),  // p3: 2-0
	}

	standings := CalculateStandings(matches, players, nil)
	require.Len(t, standings, 4)

	// p3 and p1 both 2-0; p3 ahead on point difference (+10 vs +9).
	assert.Equal(t, "p3", standings[0].PlayerID)
	assert.Equal(t, "p1", standings[1].PlayerID)
	assert.Equal(t, "p4", standings[3].PlayerID)

	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, 0, standings[0].Losses)
	assert.Equal(t, 10, standings[0].PointDifference)
	assert.Equal(t, 18, standings[0].PointsFor)
}

// Standings are a pure function of the match set: shuffling input order
// never changes the ranking of players with distinct records.
func TestCalculateStandingsOrderIndependent(t *testing.T) {
	players := testPlayers(5)
	matches := []models.Match{
		scoredMatch("p1", "p2", 10, 5),
		scoredMatch("p3", "p4", 9, 2),
		scoredMatch("p1", "p3", 7, 3),
		scoredMatch("p2", "p5", 6, 8),
		scoredMatch("p4", "p5", 4, 11),
	}

	baseline := CalculateStandings(matches, players, nil)
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]models.Match(nil), matches...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got := CalculateStandings(shuffled, players, nil)
		require.Len(t, got, len(baseline))
		for i := range baseline {
			assert.Equal(t, baseline[i].PlayerID, got[i].PlayerID, "rank %d diverged", i)
			assert.Equal(t, baseline[i].Wins, got[i].Wins)
			assert.Equal(t, baseline[i].PointDifference, got[i].PointDifference)
		}
	}
}

// Byes, unfilled slots and unplayed matches contribute nothing.
func TestCalculateStandingsSkipsNonResults(t *testing.T) {
	players := testPlayers(3)
	bye := models.Match{
		ID:        newMatchID(),
		Bracket:   models.BracketWinners,
		Round:     1,
		Position:  1,
		Player1ID: strPtr("p1"),
		IsBye:     true,
		WinnerID:  strPtr("p1"),
	}
	pending := models.Match{
		ID:        newMatchID(),
		Bracket:   models.BracketWinners,
		Round:     1,
		Position:  2,
		Player1ID: strPtr("p2"),
		Player2ID: strPtr("p3"),
	}

	standings := CalculateStandings([]models.Match{bye, pending}, players, nil)
	for _, s := range standings {
		assert.Zero(t, s.MatchesPlayed)
		assert.Zero(t, s.Wins)
		assert.Zero(t, s.Losses)
	}
}

// Imported history can hold drawn results; they count for neither column.
func TestCalculateStandingsToleratesDraws(t *testing.T) {
	players := testPlayers(2)
	draw := scoredMatch("p1", "p2", 5, 5)
	require.Nil(t, draw.WinnerID)

	standings := CalculateStandings([]models.Match{draw}, players, nil)
	require.Len(t, standings, 2)
	for _, s := range standings {
		assert.Equal(t, 1, s.MatchesPlayed)
		assert.Equal(t, 1, s.Draws)
		assert.Zero(t, s.Wins)
		assert.Zero(t, s.Losses)
	}
}

func TestCalculateStandingsGroupFilter(t *testing.T) {
	players := testPlayers(4)
	groupA, groupB := "A", "B"
	players[0].GroupID = &groupA
	players[1].GroupID = &groupA
	players[2].GroupID = &groupB
	players[3].GroupID = &groupB

	inA := scoredMatch("p1", "p2", 10, 5)
	inA.GroupID = &groupA
	inB := scoredMatch("p3", "p4", 3, 9)
	inB.GroupID = &groupB

	standings := CalculateStandings([]models.Match{inA, inB}, players, &groupA)
	require.Len(t, standings, 2)
	assert.Equal(t, "p1", standings[0].PlayerID)
	assert.Equal(t, 1, standings[0].Wins)
	assert.Equal(t, "p2", standings[1].PlayerID)
}
