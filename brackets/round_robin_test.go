package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func TestRoundRobinPairingComplete(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 7, 8} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			tournament := newTestTournament(t, models.FormatRoundRobin, models.FormatConfig{}, n)
			require.Len(t, tournament.Matches, n*(n-1)/2)

			// Every pair meets exactly once.
			seen := map[string]int{}
			for i := range tournament.Matches {
				m := &tournament.Matches[i]
				require.NotNil(t, m.Player1ID)
				require.NotNil(t, m.Player2ID)
				assert.NotEqual(t, *m.Player1ID, *m.Player2ID)
				seen[pairKey(*m.Player1ID, *m.Player2ID)]++
			}
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %s scheduled %d times", pair, count)
			}
			assert.Len(t, seen, n*(n-1)/2)
		})
	}
}

func TestRoundRobinOneMatchPerPlayerPerRound(t *testing.T) {
	for _, n := range []int{4, 5, 6, 7} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			tournament := newTestTournament(t, models.FormatRoundRobin, models.FormatConfig{}, n)

			perRound := map[int]map[string]int{}
			for i := range tournament.Matches {
				m := &tournament.Matches[i]
				if perRound[m.Round] == nil {
					perRound[m.Round] = map[string]int{}
				}
				perRound[m.Round][*m.Player1ID]++
				perRound[m.Round][*m.Player2ID]++
			}
			for round, counts := range perRound {
				for playerID, count := range counts {
					assert.LessOrEqual(t, count, 1,
						"player %s plays %d matches in round %d", playerID, count, round)
				}
			}

			rounds := n - 1
			if n%2 != 0 {
				rounds = n
			}
			assert.Len(t, perRound, rounds)
		})
	}
}

// Round robin matches carry no progression links; completion happens only
// after the last result is in.
func TestRoundRobinCompletion(t *testing.T) {
	tournament := newTestTournament(t, models.FormatRoundRobin, models.FormatConfig{}, 4)

	for i := range tournament.Matches {
		assert.Nil(t, tournament.Matches[i].NextMatchID)
		assert.Nil(t, tournament.Matches[i].LoserNextMatchID)
	}

	tournament = playOut(t, tournament)
	assert.Equal(t, models.StatusCompleted, tournament.Status)

	// Seed 1 beat everyone.
	p1 := tournament.PlayerByID("p1")
	assert.Equal(t, 3, p1.Wins)
	assert.Equal(t, 0, p1.Losses)
}

func TestRoundRobinRejectsTooFewPlayers(t *testing.T) {
	gen, err := ForFormat(models.FormatRoundRobin)
	require.NoError(t, err)

	_, err = gen.Generate(playerPtrs(testPlayers(1)), models.FormatConfig{})
	assert.ErrorIs(t, err, ErrConfiguration)
}
