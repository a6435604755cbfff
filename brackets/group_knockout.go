package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type groupKnockoutGenerator struct{}

func (g *groupKnockoutGenerator) Name() string { return "GroupKnockout" }

// Generate partitions the field into seed-balanced groups (snake order, so
// the top seeds land in different groups) and builds a round robin inside
// each. The knockout bracket is deliberately absent from this build; it is
// appended by BuildKnockout once every group match has a result.
func (g *groupKnockoutGenerator) Generate(players []*models.Player, cfg models.FormatConfig) ([]models.Match, error) {
	n := len(players)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players, got %d", ErrConfiguration, n)
	}
	if cfg.GroupCount < 2 || cfg.GroupCount > 26 {
		return nil, fmt.Errorf("%w: group_count must be between 2 and 26, got %d", ErrConfiguration, cfg.GroupCount)
	}
	if cfg.PlayersPerGroup < 2 {
		return nil, fmt.Errorf("%w: players_per_group must be at least 2, got %d", ErrConfiguration, cfg.PlayersPerGroup)
	}
	if cfg.GroupCount*cfg.PlayersPerGroup < n {
		return nil, fmt.Errorf("%w: %d groups of %d cannot hold %d players",
			ErrConfiguration, cfg.GroupCount, cfg.PlayersPerGroup, n)
	}
	if cfg.AdvancePerGroup < 1 || cfg.AdvancePerGroup > cfg.PlayersPerGroup {
		return nil, fmt.Errorf("%w: advance_per_group must be between 1 and players_per_group", ErrConfiguration)
	}
	if cfg.AdvancePerGroup*cfg.GroupCount < 2 {
		return nil, fmt.Errorf("%w: fewer than 2 qualifiers cannot seed a knockout", ErrConfiguration)
	}
	switch cfg.KnockoutFormat {
	case "", models.FormatSingleElimination, models.FormatDoubleElimination:
	default:
		return nil, fmt.Errorf("%w: knockout_format must be single or double elimination, got %q",
			ErrConfiguration, cfg.KnockoutFormat)
	}

	groups := make([][]*models.Player, cfg.GroupCount)
	for i, p := range bySeed(players) {
		// Snake: left to right, then right to left.
		lap := i / cfg.GroupCount
		idx := i % cfg.GroupCount
		if lap%2 == 1 {
			idx = cfg.GroupCount - 1 - idx
		}
		groups[idx] = append(groups[idx], p)
	}

	var matches []models.Match
	for gi, group := range groups {
		gid := groupName(gi)
		if len(group) < 2 {
			return nil, fmt.Errorf("%w: group %s has %d players, need at least 2", ErrConfiguration, gid, len(group))
		}
		for _, p := range group {
			p.GroupID = strPtr(gid)
		}
		matches = append(matches, buildRoundRobinMatches(group, models.BracketGroup, strPtr(gid))...)
	}
	return matches, nil
}

func groupName(i int) string {
	return string(rune('A' + i))
}

// BuildKnockout extends a group-knockout tournament with its elimination
// stage: the top advance_per_group finishers of every group, ordered by the
// standings calculator, reseeded rank-major (all group winners first, then
// all runners-up, and so on) into a fresh single or double elimination
// bracket. Returns the updated copy with group_stage_complete set.
func BuildKnockout(t *models.Tournament) (*models.Tournament, error) {
	if models.InferFormat(t) != models.FormatGroupKnockout {
		return nil, fmt.Errorf("%w: tournament is not group-knockout format", ErrIllegalTransition)
	}
	if t.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: tournament is not active", ErrIllegalTransition)
	}
	if t.GroupStageComplete {
		return nil, fmt.Errorf("%w: knockout stage already built", ErrIllegalTransition)
	}
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Bracket == models.BracketGroup && !m.IsBye && !m.HasResult() {
			return nil, fmt.Errorf("%w: group %s still has unplayed matches", ErrIllegalTransition, derefOr(m.GroupID, "?"))
		}
	}

	out := t.Clone()
	cfg := out.FormatConfig

	// Qualifiers per group in standings order.
	qualifiers := make([][]models.GroupStanding, cfg.GroupCount)
	for gi := 0; gi < cfg.GroupCount; gi++ {
		gid := groupName(gi)
		standings := CalculateStandings(out.Matches, out.Players, strPtr(gid))
		if len(standings) < cfg.AdvancePerGroup {
			return nil, fmt.Errorf("%w: group %s has only %d players for %d advancing",
				ErrConfiguration, gid, len(standings), cfg.AdvancePerGroup)
		}
		qualifiers[gi] = standings[:cfg.AdvancePerGroup]
	}

	// Rank-major reseed: group winners take the top seeds.
	seeded := make([]*models.Player, 0, cfg.GroupCount*cfg.AdvancePerGroup)
	seed := 0
	for rank := 0; rank < cfg.AdvancePerGroup; rank++ {
		for gi := 0; gi < cfg.GroupCount; gi++ {
			src := out.PlayerByID(qualifiers[gi][rank].PlayerID)
			seed++
			seeded = append(seeded, &models.Player{ID: src.ID, Name: src.Name, Seed: seed})
		}
	}

	knockoutFormat := cfg.KnockoutFormat
	if knockoutFormat == "" {
		knockoutFormat = models.FormatSingleElimination
	}
	gen, err := ForFormat(knockoutFormat)
	if err != nil {
		return nil, err
	}
	knockout, err := gen.Generate(seeded, cfg)
	if err != nil {
		return nil, err
	}

	out.Matches = append(out.Matches, knockout...)
	out.GroupStageComplete = true
	return out, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
