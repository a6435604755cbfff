package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

// Rescore changes the result of an already-decided match. If the winner is
// unchanged only the scores move. If the winner flips, every match whose
// inputs depended on the old result is reset by an explicit breadth-first
// worklist walk over the forward links, the corrected result is re-applied
// and re-propagated, and a completed tournament whose terminal result was
// invalidated reverts to active. The whole operation happens on a clone:
// either the returned tournament carries the full cascade or the caller's
// copy is untouched.
func Rescore(t *models.Tournament, matchID string, score1, score2 int) (*models.Tournament, []Event, error) {
	target := t.MatchByID(matchID)
	if target == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMatch, matchID)
	}
	if target.IsBye {
		return nil, nil, fmt.Errorf("%w: match %s is a bye", ErrIllegalTransition, matchID)
	}
	if target.WinnerID == nil {
		return nil, nil, fmt.Errorf("%w: match %s has no result to change", ErrIllegalTransition, matchID)
	}
	if err := validateScores(score1, score2); err != nil {
		return nil, nil, err
	}

	newWinner := *target.Player1ID
	if score2 > score1 {
		newWinner = *target.Player2ID
	}

	out := t.Clone()
	m := out.MatchByID(matchID)

	if *m.WinnerID == newWinner {
		m.Player1Score = intPtr(score1)
		m.Player2Score = intPtr(score2)
		if models.InferFormat(out) == models.FormatSwiss {
			refreshSwissQualification(out)
		}
		refreshPlayerRecords(out)
		return out, []Event{{Type: EventMatchCompleted, MatchID: m.ID}}, nil
	}

	events, err := cascadeReset(out, m)
	if err != nil {
		return nil, nil, err
	}

	// Clear the target's own result and replay it with the new scores.
	m = out.MatchByID(matchID)
	m.Player1Score = nil
	m.Player2Score = nil
	m.WinnerID = nil
	events = append(events, applyResult(out, m, score1, score2)...)

	if models.InferFormat(out) == models.FormatSwiss {
		refreshSwissQualification(out)
	}
	refreshPlayerRecords(out)
	return out, events, nil
}

// cascadeEdge is one pending slot invalidation: the player occupying slot
// of match id arrived from the changed path and must be removed.
type cascadeEdge struct {
	matchID string
	slot    int
}

// cascadeReset clears every match downstream of origin. Round robin, Swiss
// and group matches carry no forward links, so rescoring them never enters
// this walk.
func cascadeReset(t *models.Tournament, origin *models.Match) ([]Event, error) {
	var events []Event
	queue := outgoingEdges(origin)
	// origin points into t.Matches, which removeResetFinal may reshuffle;
	// capture what the tail of the walk needs.
	originIsFirstFinal := origin.Bracket == models.BracketGrandFinals && origin.Round == 1

	// A forward-only DAG clears each slot at most once; anything past that
	// bound means a cycle.
	maxSteps := 2*len(t.Matches) + 2
	steps := 0
	for len(queue) > 0 {
		steps++
		if steps > maxSteps {
			return nil, fmt.Errorf("%w: cascade walk exceeded %d steps, cycle suspected", ErrInconsistentGraph, maxSteps)
		}
		edge := queue[0]
		queue = queue[1:]

		m := t.MatchByID(edge.matchID)
		if m == nil {
			return nil, fmt.Errorf("%w: forward link to unknown match %s", ErrInconsistentGraph, edge.matchID)
		}

		m.SetSlotPlayer(edge.slot, nil)
		if !m.HasResult() && !m.IsBye {
			continue // nothing propagated from here yet
		}

		m.Player1Score = nil
		m.Player2Score = nil
		m.WinnerID = nil
		if m.IsBye {
			// Byes reached by the walk were auto-resolved at runtime, not
			// built; they may refill differently after the replay.
			m.IsBye = false
		}
		events = append(events, Event{Type: EventCascadeReset, MatchID: m.ID})
		queue = append(queue, outgoingEdges(m)...)

		if m.Bracket == models.BracketGrandFinals && m.Round == 1 {
			removeResetFinal(t, &events)
		}
	}

	if originIsFirstFinal {
		removeResetFinal(t, &events)
	}

	if t.Status == models.StatusCompleted {
		t.Status = models.StatusActive
		t.CompletedAt = nil
	}
	return events, nil
}

func outgoingEdges(m *models.Match) []cascadeEdge {
	var edges []cascadeEdge
	if m.NextMatchID != nil && m.NextMatchPosition != nil {
		edges = append(edges, cascadeEdge{matchID: *m.NextMatchID, slot: *m.NextMatchPosition})
	}
	if m.LoserNextMatchID != nil && m.LoserNextMatchPosition != nil {
		edges = append(edges, cascadeEdge{matchID: *m.LoserNextMatchID, slot: *m.LoserNextMatchPosition})
	}
	return edges
}

// removeResetFinal drops the lazily created second grand finals match; its
// precondition vanished when the first final's result was invalidated. The
// replay recreates it if the corrected result still calls for one.
func removeResetFinal(t *models.Tournament, events *[]Event) {
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Bracket == models.BracketGrandFinals && m.Round == 2 {
			*events = append(*events, Event{Type: EventCascadeReset, MatchID: m.ID})
			t.Matches = append(t.Matches[:i], t.Matches[i+1:]...)
			return
		}
	}
}
