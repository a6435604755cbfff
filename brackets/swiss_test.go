package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func swissConfig(rounds, winsToQualify int) models.FormatConfig {
	return models.FormatConfig{NumberOfRounds: rounds, WinsToQualify: winsToQualify}
}

// Five players: round 1 is two matches plus a bye, and the bye goes to the
// lowest seed.
func TestSwissRoundOne(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSwiss, swissConfig(3, 0), 5)

	matches := matchesIn(tournament, models.BracketSwiss)
	require.Len(t, matches, 3)

	var byes, played int
	for _, m := range matches {
		if m.IsBye {
			byes++
			assert.Equal(t, "p5", *m.Player1ID)
			assert.Equal(t, "p5", *m.WinnerID)
			continue
		}
		played++
	}
	assert.Equal(t, 1, byes)
	assert.Equal(t, 2, played)

	// Adjacent seeds: (1 v 2), (3 v 4).
	m1 := findMatch(t, tournament, models.BracketSwiss, 1, 1)
	m2 := findMatch(t, tournament, models.BracketSwiss, 1, 2)
	assert.Equal(t, "p1", *m1.Player1ID)
	assert.Equal(t, "p2", *m1.Player2ID)
	assert.Equal(t, "p3", *m2.Player1ID)
	assert.Equal(t, "p4", *m2.Player2ID)
}

func TestSwissRequiresRoundCap(t *testing.T) {
	gen, err := ForFormat(models.FormatSwiss)
	require.NoError(t, err)

	_, err = gen.Generate(playerPtrs(testPlayers(4)), models.FormatConfig{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNextSwissRoundRequiresCompleteRound(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSwiss, swissConfig(3, 0), 4)

	_, err := NextSwissRound(tournament)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestNextSwissRoundAvoidsRepeats(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSwiss, swissConfig(3, 0), 4)

	m1 := findMatch(t, tournament, models.BracketSwiss, 1, 1)
	m2 := findMatch(t, tournament, models.BracketSwiss, 1, 2)
	tournament = record(t, tournament, m1.ID, 10, 5) // p1 beats p2
	tournament = record(t, tournament, m2.ID, 10, 5) // p3 beats p4

	next, err := NextSwissRound(tournament)
	require.NoError(t, err)
	assert.Equal(t, 2, next.CurrentSwissRound)

	round2 := []*models.Match{}
	for _, m := range matchesIn(next, models.BracketSwiss) {
		if m.Round == 2 {
			round2 = append(round2, m)
		}
	}
	require.Len(t, round2, 2)

	// 1-0 players meet, 0-1 players meet; neither pairing repeats round 1.
	met := playedPairs(tournament.Matches)
	for _, m := range round2 {
		assert.False(t, met[pairKey(*m.Player1ID, *m.Player2ID)],
			"round 2 repeats pairing %s v %s", *m.Player1ID, *m.Player2ID)
	}
	top := round2[0]
	assert.ElementsMatch(t,
		[]string{"p1", "p3"},
		[]string{*top.Player1ID, *top.Player2ID})
}

// With an odd field the bye rotates: nobody receives a second bye while a
// bye-less player remains.
func TestSwissByeRotation(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSwiss, swissConfig(5, 0), 5)

	byeRecipients := map[string]int{}
	for round := 1; round <= 5; round++ {
		for _, m := range matchesIn(tournament, models.BracketSwiss) {
			if m.Round != round {
				continue
			}
			if m.IsBye {
				byeRecipients[*m.WinnerID]++
				continue
			}
			tournament = record(t, tournament, m.ID, 10, 5)
		}
		if round < 5 {
			next, err := NextSwissRound(tournament)
			require.NoError(t, err)
			tournament = next
		}
	}

	assert.Len(t, byeRecipients, 5, "each player byes exactly once over 5 rounds")
	for playerID, count := range byeRecipients {
		assert.Equal(t, 1, count, "player %s received %d byes", playerID, count)
	}
}

// Reaching wins_to_qualify stops round generation even under the round cap.
func TestSwissEarlyQualification(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSwiss, swissConfig(5, 2), 4)

	m1 := findMatch(t, tournament, models.BracketSwiss, 1, 1)
	m2 := findMatch(t, tournament, models.BracketSwiss, 1, 2)
	tournament = record(t, tournament, m1.ID, 10, 5)
	tournament = record(t, tournament, m2.ID, 10, 5)
	assert.False(t, tournament.SwissQualificationComplete)

	next, err := NextSwissRound(tournament)
	require.NoError(t, err)
	tournament = next

	for _, m := range matchesIn(tournament, models.BracketSwiss) {
		if m.Round == 2 {
			tournament = record(t, tournament, m.ID, 7, 3)
		}
	}
	assert.True(t, tournament.SwissQualificationComplete)

	_, err = NextSwissRound(tournament)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestNextSwissRoundHonorsRoundCap(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSwiss, swissConfig(1, 0), 4)

	m1 := findMatch(t, tournament, models.BracketSwiss, 1, 1)
	m2 := findMatch(t, tournament, models.BracketSwiss, 1, 2)
	tournament = record(t, tournament, m1.ID, 10, 5)
	tournament = record(t, tournament, m2.ID, 10, 5)

	_, err := NextSwissRound(tournament)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}
