package brackets

import (
	"fmt"
	"time"

	"github.com/openbracket/tournament-engine/models"
)

// EventType tags the side effects of a result write, for callers that
// broadcast or log them.
type EventType string

const (
	EventMatchCompleted      EventType = "match_completed"
	EventByeResolved         EventType = "bye_resolved"
	EventResetFinalCreated   EventType = "reset_final_created"
	EventSwissQualified      EventType = "swiss_qualification_complete"
	EventTournamentCompleted EventType = "tournament_completed"
	EventCascadeReset        EventType = "match_reset"
)

type Event struct {
	Type    EventType `json:"type"`
	MatchID string    `json:"match_id,omitempty"`
}

// RecordResult applies a score to an undecided match and propagates the
// outcome through the graph: the winner into the linked next match, the
// loser down the drop edge, byes auto-resolved when a slot can no longer be
// filled, and the tournament completed when the terminal match resolves.
// The input tournament is never touched; the updated copy is returned.
func RecordResult(t *models.Tournament, matchID string, score1, score2 int) (*models.Tournament, []Event, error) {
	target := t.MatchByID(matchID)
	if target == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMatch, matchID)
	}
	if target.IsBye {
		return nil, nil, fmt.Errorf("%w: match %s is a bye", ErrIllegalTransition, matchID)
	}
	if target.Player1ID == nil || target.Player2ID == nil {
		return nil, nil, fmt.Errorf("%w: match %s has an unfilled slot", ErrIllegalTransition, matchID)
	}
	if target.WinnerID != nil {
		return nil, nil, fmt.Errorf("%w: match %s already has a result, rescore instead", ErrIllegalTransition, matchID)
	}
	if err := validateScores(score1, score2); err != nil {
		return nil, nil, err
	}

	out := t.Clone()
	events := applyResult(out, out.MatchByID(matchID), score1, score2)
	refreshPlayerRecords(out)
	return out, events, nil
}

func validateScores(score1, score2 int) error {
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrInvalidScore)
	}
	if score1 == score2 {
		return fmt.Errorf("%w: draws cannot be scored", ErrInvalidScore)
	}
	return nil
}

// applyResult writes the scores and winner, then walks the consequences.
// Preconditions are assumed already checked; it operates on a clone.
func applyResult(t *models.Tournament, m *models.Match, score1, score2 int) []Event {
	m.Player1Score = intPtr(score1)
	m.Player2Score = intPtr(score2)
	if score1 > score2 {
		m.WinnerID = strPtr(*m.Player1ID)
	} else {
		m.WinnerID = strPtr(*m.Player2ID)
	}
	events := []Event{{Type: EventMatchCompleted, MatchID: m.ID}}

	events = append(events, propagateOutcome(t, m)...)

	switch m.Bracket {
	case models.BracketGrandFinals:
		events = append(events, resolveGrandFinals(t, m)...)
	case models.BracketWinners:
		if m.NextMatchID == nil {
			// Single-elimination final (or knockout final after groups).
			events = append(events, completeTournament(t)...)
		}
	case models.BracketRoundRobin:
		if allDecided(t.Matches, models.BracketRoundRobin) {
			events = append(events, completeTournament(t)...)
		}
	case models.BracketSwiss:
		if IsRoundComplete(t.Matches, models.BracketSwiss, m.Round) {
			refreshSwissQualification(t)
			if t.SwissQualificationComplete {
				events = append(events, Event{Type: EventSwissQualified})
			}
		}
	}
	return events
}

// propagateOutcome pushes the decided match's winner and loser along their
// forward links, resolving any bye conditions that fall out. A worklist is
// used because one bye resolution can trigger the next.
func propagateOutcome(t *models.Tournament, m *models.Match) []Event {
	var events []Event
	queue := []string{m.ID}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 2*len(t.Matches) {
			// Guarded elsewhere; a cycle here would mean a corrupted build.
			break
		}
		cur := t.MatchByID(queue[0])
		queue = queue[1:]
		if cur == nil || cur.WinnerID == nil {
			continue
		}

		// Both slots are written before any bye resolution runs. The
		// winner and loser edges of one match can target the same
		// destination (two-player double elimination feeds both grand
		// finals slots from the winners final); resolving after only
		// the winner edge would misread the loser's slot as dead.
		var next, drop *models.Match
		if cur.NextMatchID != nil && cur.NextMatchPosition != nil {
			if next = t.MatchByID(*cur.NextMatchID); next != nil {
				next.SetSlotPlayer(*cur.NextMatchPosition, strPtr(*cur.WinnerID))
			}
		}
		if cur.LoserNextMatchID != nil && cur.LoserNextMatchPosition != nil {
			if loser := cur.LoserID(); loser != nil {
				if drop = t.MatchByID(*cur.LoserNextMatchID); drop != nil {
					drop.SetSlotPlayer(*cur.LoserNextMatchPosition, strPtr(*loser))
				}
			}
		}
		for _, linked := range []*models.Match{next, drop} {
			if linked == nil {
				continue
			}
			if resolved := maybeResolveBye(t, linked); resolved {
				events = append(events, Event{Type: EventByeResolved, MatchID: linked.ID})
				queue = append(queue, linked.ID)
			}
		}
	}
	return events
}

// maybeResolveBye auto-resolves a match whose second slot can never be
// filled, such as a losers-bracket slot fed only by a winners-round bye.
func maybeResolveBye(t *models.Tournament, m *models.Match) bool {
	if m.WinnerID != nil || m.IsBye {
		return false
	}
	var occupied, empty int
	switch {
	case m.Player1ID != nil && m.Player2ID == nil:
		occupied, empty = 1, 2
	case m.Player2ID != nil && m.Player1ID == nil:
		occupied, empty = 2, 1
	default:
		return false
	}
	if slotFillable(t, m, empty) {
		return false
	}
	m.IsBye = true
	m.WinnerID = strPtr(*m.SlotPlayer(occupied))
	return true
}

// slotFillable reports whether any undecided match still feeds the given
// slot. Build-time byes have their loser links cleared, so they never
// promise a player they cannot deliver.
func slotFillable(t *models.Tournament, m *models.Match, slot int) bool {
	for i := range t.Matches {
		f := &t.Matches[i]
		if f.ID == m.ID || f.WinnerID != nil {
			continue
		}
		if f.NextMatchID != nil && *f.NextMatchID == m.ID && f.NextMatchPosition != nil && *f.NextMatchPosition == slot {
			return true
		}
		if f.LoserNextMatchID != nil && *f.LoserNextMatchID == m.ID && f.LoserNextMatchPosition != nil && *f.LoserNextMatchPosition == slot {
			return true
		}
	}
	return false
}

// resolveGrandFinals decides whether a grand finals result ends the
// tournament or, under the bracket-reset rule, spawns the second finals
// match. Slot 1 of the first grand finals match always holds the
// winners-bracket finalist.
func resolveGrandFinals(t *models.Tournament, m *models.Match) []Event {
	reset := resetFinal(t)
	if m.Round == 1 && t.FormatConfig.GrandFinalsReset &&
		m.Player2ID != nil && m.WinnerID != nil && *m.WinnerID == *m.Player2ID {
		if reset == nil {
			reset = createResetFinal(t, m)
			return []Event{{Type: EventResetFinalCreated, MatchID: reset.ID}}
		}
		return nil
	}
	if m.Round == 1 && reset != nil {
		// The reset already exists; the first final alone is not terminal.
		return nil
	}
	return completeTournament(t)
}

// resetFinal returns the lazily created second grand finals match, if any.
func resetFinal(t *models.Tournament) *models.Match {
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Bracket == models.BracketGrandFinals && m.Round == 2 {
			return m
		}
	}
	return nil
}

func createResetFinal(t *models.Tournament, first *models.Match) *models.Match {
	t.Matches = append(t.Matches, models.Match{
		ID:        newMatchID(),
		Bracket:   models.BracketGrandFinals,
		Round:     2,
		Position:  1,
		Player1ID: strPtr(*first.Player1ID),
		Player2ID: strPtr(*first.Player2ID),
	})
	return &t.Matches[len(t.Matches)-1]
}

func completeTournament(t *models.Tournament) []Event {
	t.Status = models.StatusCompleted
	now := time.Now().UTC()
	t.CompletedAt = &now
	return []Event{{Type: EventTournamentCompleted}}
}

func allDecided(matches []models.Match, bracket models.BracketType) bool {
	for i := range matches {
		m := &matches[i]
		if m.Bracket == bracket && !m.IsBye && !m.HasResult() {
			return false
		}
	}
	return true
}

// IsRoundComplete reports whether every match of a bracket's round carries
// a result. Byes count as complete; an empty round does not exist and
// reports false.
func IsRoundComplete(matches []models.Match, bracket models.BracketType, round int) bool {
	found := false
	for i := range matches {
		m := &matches[i]
		if m.Bracket != bracket || m.Round != round {
			continue
		}
		found = true
		if !m.IsBye && !m.HasResult() {
			return false
		}
	}
	return found
}
