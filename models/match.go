package models

// BracketType tags the match-graph partition a match belongs to. The tag
// selects progression behavior: elimination brackets propagate winners and
// losers along forward links, the other brackets are terminal by
// construction and only contribute to standings.
type BracketType string

const (
	BracketWinners     BracketType = "winners"
	BracketLosers      BracketType = "losers"
	BracketGrandFinals BracketType = "grand-finals"
	BracketRoundRobin  BracketType = "round-robin"
	BracketSwiss       BracketType = "swiss"
	BracketGroup       BracketType = "group"
)

// Match is one node of the match graph. Matches reference each other by id,
// never by pointer, so the whole graph lives in a flat slice.
//
// NextMatchID/NextMatchPosition say where the winner goes (slot 1 or 2 of
// the target match); LoserNextMatchID/LoserNextMatchPosition route the
// loser and are only set in double elimination. Both are wired at build
// time and never change afterwards.
type Match struct {
	ID                     string      `json:"id" db:"id"`
	Bracket                BracketType `json:"bracket" db:"bracket"`
	Round                  int         `json:"round" db:"round"`
	Position               int         `json:"position" db:"position"`
	Player1ID              *string     `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID              *string     `json:"player2_id,omitempty" db:"player2_id"`
	Player1Score           *int        `json:"player1_score,omitempty" db:"player1_score"`
	Player2Score           *int        `json:"player2_score,omitempty" db:"player2_score"`
	WinnerID               *string     `json:"winner_id,omitempty" db:"winner_id"`
	IsBye                  bool        `json:"is_bye" db:"is_bye"`
	IsForfeited            bool        `json:"is_forfeited,omitempty" db:"is_forfeited"`
	Notes                  *string     `json:"notes,omitempty" db:"notes"`
	NextMatchID            *string     `json:"next_match_id,omitempty" db:"next_match_id"`
	NextMatchPosition      *int        `json:"next_match_position,omitempty" db:"next_match_position"`
	LoserNextMatchID       *string     `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`
	LoserNextMatchPosition *int        `json:"loser_next_match_position,omitempty" db:"loser_next_match_position"`
	GroupID                *string     `json:"group_id,omitempty" db:"group_id"`
}

// HasResult reports whether the match carries a recorded outcome: either a
// decided winner or two entered scores. Imported data may contain rows with
// equal scores and no winner; those count as results (draws) too.
func (m *Match) HasResult() bool {
	return m.WinnerID != nil || (m.Player1Score != nil && m.Player2Score != nil)
}

// LoserID returns the id of the losing player, or nil for byes and
// undecided or drawn matches.
func (m *Match) LoserID() *string {
	if m.WinnerID == nil || m.IsBye {
		return nil
	}
	if m.Player1ID != nil && *m.Player1ID != *m.WinnerID {
		return m.Player1ID
	}
	if m.Player2ID != nil && *m.Player2ID != *m.WinnerID {
		return m.Player2ID
	}
	return nil
}

// SlotPlayer returns the occupant of slot 1 or 2.
func (m *Match) SlotPlayer(slot int) *string {
	if slot == 1 {
		return m.Player1ID
	}
	return m.Player2ID
}

// SetSlotPlayer writes a player (or nil) into slot 1 or 2.
func (m *Match) SetSlotPlayer(slot int, playerID *string) {
	if slot == 1 {
		m.Player1ID = playerID
	} else {
		m.Player2ID = playerID
	}
}
