package models

// Player is a tournament entrant. Identity and seed are fixed at setup;
// the win/loss counters are rederived by the engine after every graph
// mutation and must not be treated as authoritative by callers.
type Player struct {
	ID      string  `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Seed    int     `json:"seed" db:"seed"`
	GroupID *string `json:"group_id,omitempty" db:"group_id"`
	Wins    int     `json:"wins" db:"wins"`
	Losses  int     `json:"losses" db:"losses"`
}
