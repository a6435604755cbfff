package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/tournament-engine/models"
)

func groupConfig() models.FormatConfig {
	return models.FormatConfig{
		GroupCount:      2,
		PlayersPerGroup: 4,
		AdvancePerGroup: 2,
		KnockoutFormat:  models.FormatSingleElimination,
	}
}

// Eight players into two groups: snake order puts seeds 1,4,5,8 in group A
// and 2,3,6,7 in group B, each playing a full round robin.
func TestGroupKnockoutSnakeDistribution(t *testing.T) {
	tournament := newTestTournament(t, models.FormatGroupKnockout, groupConfig(), 8)

	groups := map[string][]string{}
	for i := range tournament.Players {
		p := &tournament.Players[i]
		require.NotNil(t, p.GroupID)
		groups[*p.GroupID] = append(groups[*p.GroupID], p.ID)
	}
	assert.ElementsMatch(t, []string{"p1", "p4", "p5", "p8"}, groups["A"])
	assert.ElementsMatch(t, []string{"p2", "p3", "p6", "p7"}, groups["B"])

	// 6 round robin matches per group, no knockout yet.
	assert.Len(t, matchesIn(tournament, models.BracketGroup), 12)
	assert.Empty(t, matchesIn(tournament, models.BracketWinners))

	for _, m := range matchesIn(tournament, models.BracketGroup) {
		require.NotNil(t, m.GroupID)
		p1 := tournament.PlayerByID(*m.Player1ID)
		p2 := tournament.PlayerByID(*m.Player2ID)
		assert.Equal(t, *m.GroupID, *p1.GroupID)
		assert.Equal(t, *m.GroupID, *p2.GroupID)
	}
}

func TestGroupKnockoutConfigValidation(t *testing.T) {
	gen, err := ForFormat(models.FormatGroupKnockout)
	require.NoError(t, err)
	players := playerPtrs(testPlayers(8))

	for name, cfg := range map[string]models.FormatConfig{
		"one group":       {GroupCount: 1, PlayersPerGroup: 8, AdvancePerGroup: 2},
		"capacity":        {GroupCount: 2, PlayersPerGroup: 3, AdvancePerGroup: 2},
		"tiny groups":     {GroupCount: 2, PlayersPerGroup: 1, AdvancePerGroup: 1},
		"advance too big": {GroupCount: 2, PlayersPerGroup: 4, AdvancePerGroup: 5},
		"bad knockout":    {GroupCount: 2, PlayersPerGroup: 4, AdvancePerGroup: 2, KnockoutFormat: models.FormatRoundRobin},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := gen.Generate(players, cfg)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestBuildKnockoutRequiresFinishedGroups(t *testing.T) {
	tournament := newTestTournament(t, models.FormatGroupKnockout, groupConfig(), 8)

	_, err := BuildKnockout(tournament)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestBuildKnockoutSeedsQualifiers(t *testing.T) {
	tournament := newTestTournament(t, models.FormatGroupKnockout, groupConfig(), 8)

	// Lower seed wins every group match.
	for _, m := range matchesIn(tournament, models.BracketGroup) {
		p1 := tournament.PlayerByID(*m.Player1ID)
		p2 := tournament.PlayerByID(*m.Player2ID)
		if p1.Seed < p2.Seed {
			tournament = record(t, tournament, m.ID, 10, 5)
		} else {
			tournament = record(t, tournament, m.ID, 5, 10)
		}
	}

	out, err := BuildKnockout(tournament)
	require.NoError(t, err)
	assert.True(t, out.GroupStageComplete)

	// Group A finishes p1,p4; group B finishes p2,p3. Rank-major reseed
	// gives knockout seeds p1,p2,p4,p3, so the two group winners can only
	// meet in the final.
	knockout := matchesIn(out, models.BracketWinners)
	require.Len(t, knockout, 3)

	semi1 := findMatch(t, out, models.BracketWinners, 1, 1)
	semi2 := findMatch(t, out, models.BracketWinners, 1, 2)
	assert.Equal(t, "p1", *semi1.Player1ID)
	assert.Equal(t, "p3", *semi1.Player2ID)
	assert.Equal(t, "p2", *semi2.Player1ID)
	assert.Equal(t, "p4", *semi2.Player2ID)

	// Second build is rejected.
	_, err = BuildKnockout(out)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	// Playing out the knockout completes the tournament.
	out = playOut(t, out)
	assert.Equal(t, models.StatusCompleted, out.Status)
}

func TestBuildKnockoutDoubleElimination(t *testing.T) {
	cfg := groupConfig()
	cfg.KnockoutFormat = models.FormatDoubleElimination
	tournament := newTestTournament(t, models.FormatGroupKnockout, cfg, 8)

	for _, m := range matchesIn(tournament, models.BracketGroup) {
		tournament = record(t, tournament, m.ID, 10, 5)
	}

	out, err := BuildKnockout(tournament)
	require.NoError(t, err)
	assert.NotEmpty(t, matchesIn(out, models.BracketWinners))
	assert.NotEmpty(t, matchesIn(out, models.BracketLosers))
	assert.Len(t, matchesIn(out, models.BracketGrandFinals), 1)
}
