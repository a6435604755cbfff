package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

// Editing a decided semifinal so the other player wins must clear the final's
// dependent slot and reopen a completed tournament.
func TestRescoreCascadesDownstream(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSingleElimination, models.FormatConfig{}, 4)
	semi1 := findMatch(t, tournament, models.BracketWinners, 1, 1)
	semi2 := findMatch(t, tournament, models.BracketWinners, 1, 2)
	tournament = record(t, tournament, semi1.ID, 10, 5) // p1 over p4
	tournament = record(t, tournament, semi2.ID, 8, 7)  // p2 over p3
	final := findMatch(t, tournament, models.BracketWinners, 2, 1)
	tournament = record(t, tournament, final.ID, 6, 9) // p2 champions
	require.Equal(t, models.StatusCompleted, tournament.Status)

	// Flip semifinal 1: p4 now wins.
	edited, events, err := Rescore(tournament, semi1.ID, 4, 8)
	require.NoError(t, err)

	semi1After := findMatch(t, edited, models.BracketWinners, 1, 1)
	assert.Equal(t, "p4", *semi1After.WinnerID)

	finalAfter := findMatch(t, edited, models.BracketWinners, 2, 1)
	assert.Nil(t, finalAfter.WinnerID)
	assert.Nil(t, finalAfter.Player1Score)
	require.NotNil(t, finalAfter.Player1ID)
	assert.Equal(t, "p4", *finalAfter.Player1ID)
	assert.Equal(t, "p2", *finalAfter.Player2ID)

	assert.Equal(t, models.StatusActive, edited.Status)
	assert.Nil(t, edited.CompletedAt)

	resetSeen := false
	for _, ev := range events {
		if ev.Type == EventCascadeReset {
			resetSeen = true
		}
	}
	assert.True(t, resetSeen)

	// Untouched branch is preserved.
	semi2After := findMatch(t, edited, models.BracketWinners, 1, 2)
	assert.Equal(t, "p2", *semi2After.WinnerID)

	// Player counters rederived from the edited graph.
	assert.Equal(t, 1, edited.PlayerByID("p4").Wins)
	assert.Equal(t, 1, edited.PlayerByID("p1").Losses)
}

// A same-winner edit only rewrites the scores; nothing downstream moves.
func TestRescoreSameWinnerKeepsGraph(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSingleElimination, models.FormatConfig{}, 4)
	semi1 := findMatch(t, tournament, models.BracketWinners, 1, 1)
	semi2 := findMatch(t, tournament, models.BracketWinners, 1, 2)
	tournament = record(t, tournament, semi1.ID, 10, 5)
	tournament = record(t, tournament, semi2.ID, 8, 7)
	final := findMatch(t, tournament, models.BracketWinners, 2, 1)
	tournament = record(t, tournament, final.ID, 6, 9)

	edited, _, err := Rescore(tournament, semi1.ID, 11, 2)
	require.NoError(t, err)

	semi1After := findMatch(t, edited, models.BracketWinners, 1, 1)
	assert.Equal(t, 11, *semi1After.Player1Score)
	assert.Equal(t, "p1", *semi1After.WinnerID)

	finalAfter := findMatch(t, edited, models.BracketWinners, 2, 1)
	assert.Equal(t, "p2", *finalAfter.WinnerID)
	assert.Equal(t, models.StatusCompleted, edited.Status)
}

// Rescoring A to B and back to A restores the original graph shape.
func TestRescoreRoundTrip(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSingleElimination, models.FormatConfig{}, 4)
	semi1 := findMatch(t, tournament, models.BracketWinners, 1, 1)
	semi2 := findMatch(t, tournament, models.BracketWinners, 1, 2)
	tournament = record(t, tournament, semi1.ID, 10, 5)
	tournament = record(t, tournament, semi2.ID, 8, 7)

	flipped, _, err := Rescore(tournament, semi1.ID, 5, 10)
	require.NoError(t, err)
	restored, _, err := Rescore(flipped, semi1.ID, 10, 5)
	require.NoError(t, err)

	wantFinal := findMatch(t, tournament, models.BracketWinners, 2, 1)
	gotFinal := findMatch(t, restored, models.BracketWinners, 2, 1)
	assert.Equal(t, *wantFinal.Player1ID, *gotFinal.Player1ID)
	assert.Equal(t, *wantFinal.Player2ID, *gotFinal.Player2ID)
	assert.Nil(t, gotFinal.WinnerID)
	assert.Equal(t, models.StatusActive, restored.Status)
}

func TestRescoreValidation(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSingleElimination, models.FormatConfig{}, 4)
	semi1 := findMatch(t, tournament, models.BracketWinners, 1, 1)

	_, _, err := Rescore(tournament, "missing", 1, 0)
	assert.ErrorIs(t, err, ErrUnknownMatch)

	// Undecided matches go through RecordResult, not Rescore.
	_, _, err = Rescore(tournament, semi1.ID, 1, 0)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	tournament = record(t, tournament, semi1.ID, 10, 5)
	_, _, err = Rescore(tournament, semi1.ID, 3, 3)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

// Flipping a winners-bracket result in double elimination moves the loser
// drop as well, and tears down a bracket-reset final that the edited history
// no longer justifies.
func TestRescoreDoubleEliminationCascade(t *testing.T) {
	cfg := models.FormatConfig{GrandFinalsReset: true}
	tournament := newTestTournament(t, models.FormatDoubleElimination, cfg, 4)

	semi1 := findMatch(t, tournament, models.BracketWinners, 1, 1)
	semi2 := findMatch(t, tournament, models.BracketWinners, 1, 2)
	tournament = record(t, tournament, semi1.ID, 10, 5) // p1 over p4
	tournament = record(t, tournament, semi2.ID, 8, 7)  // p2 over p3

	wbFinal := findMatch(t, tournament, models.BracketWinners, 2, 1)
	tournament = record(t, tournament, wbFinal.ID, 3, 1) // p1 over p2

	lb1 := findMatch(t, tournament, models.BracketLosers, 1, 1)
	tournament = record(t, tournament, lb1.ID, 10, 5)
	lbFinal := findMatch(t, tournament, models.BracketLosers, 2, 1)
	tournament = record(t, tournament, lbFinal.ID, 1, 3) // p2 advances

	gf := findMatch(t, tournament, models.BracketGrandFinals, 1, 1)
	tournament = record(t, tournament, gf.ID, 5, 11) // LB side wins, reset spawns
	require.NotNil(t, resetFinal(tournament))

	// Rewriting the winners final flips who reached the grand final.
	edited, _, err := Rescore(tournament, wbFinal.ID, 1, 3)
	require.NoError(t, err)

	gfAfter := findMatch(t, edited, models.BracketGrandFinals, 1, 1)
	assert.Nil(t, gfAfter.WinnerID)
	assert.Equal(t, "p2", *gfAfter.Player1ID, "new winners champion holds slot 1")
	assert.Nil(t, resetFinal(edited), "reset final removed with its justification")
	assert.Equal(t, models.StatusActive, edited.Status)
}

// Rescoring within Swiss refreshes the qualification flag: taking the only
// qualifying win away reopens round generation.
func TestRescoreClearsSwissQualification(t *testing.T) {
	tournament := newTestTournament(t, models.FormatSwiss, swissConfig(5, 3), 6)

	// Round 1: p1, p3, p5 win.
	for pos := 1; pos <= 3; pos++ {
		m := findMatch(t, tournament, models.BracketSwiss, 1, pos)
		tournament = record(t, tournament, m.ID, 10, 5)
	}

	// Round 2: only p1 reaches two wins.
	next, err := NextSwissRound(tournament)
	require.NoError(t, err)
	tournament = next
	tournament = record(t, tournament, findMatch(t, tournament, models.BracketSwiss, 2, 1).ID, 7, 3) // p1 over p3
	tournament = record(t, tournament, findMatch(t, tournament, models.BracketSwiss, 2, 2).ID, 3, 7) // p2 over p5
	tournament = record(t, tournament, findMatch(t, tournament, models.BracketSwiss, 2, 3).ID, 7, 3) // p4 over p6
	require.False(t, tournament.SwissQualificationComplete)

	// Round 3: p1 hits the threshold.
	next, err = NextSwissRound(tournament)
	require.NoError(t, err)
	tournament = next
	leaderMatch := findMatch(t, tournament, models.BracketSwiss, 3, 1)
	require.Equal(t, "p1", *leaderMatch.Player1ID)
	tournament = record(t, tournament, leaderMatch.ID, 7, 3)
	tournament = record(t, tournament, findMatch(t, tournament, models.BracketSwiss, 3, 2).ID, 3, 7)
	tournament = record(t, tournament, findMatch(t, tournament, models.BracketSwiss, 3, 3).ID, 7, 3)
	require.True(t, tournament.SwissQualificationComplete)

	// Flip the leader's third win; nobody has three wins anymore.
	edited, _, err := Rescore(tournament, leaderMatch.ID, 3, 7)
	require.NoError(t, err)
	assert.False(t, edited.SwissQualificationComplete)
}
