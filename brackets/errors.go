package brackets

import "errors"

// Engine failure taxonomy. Every exported operation validates its
// preconditions and returns one of these (wrapped with context) before any
// mutation; no call ever leaves a tournament partially updated.
var (
	// ErrConfiguration: the format/config/player-count combination cannot
	// produce a valid match graph.
	ErrConfiguration = errors.New("invalid tournament configuration")

	// ErrInvalidScore: equal or negative scores submitted for a scored match.
	ErrInvalidScore = errors.New("invalid score")

	// ErrUnknownMatch: the referenced match id is not in the graph.
	ErrUnknownMatch = errors.New("match not found in tournament")

	// ErrIllegalTransition: the operation is not valid for the match or
	// tournament state it was applied to (scoring a bye, scoring an
	// unfilled match, rescoring an undecided match, and so on).
	ErrIllegalTransition = errors.New("operation not allowed in current state")

	// ErrInconsistentGraph: a forward link points outside the graph or the
	// cascade walk detected a cycle. Unreachable under correct
	// construction; treated as fatal and the operation aborted whole.
	ErrInconsistentGraph = errors.New("match graph is inconsistent")
)
