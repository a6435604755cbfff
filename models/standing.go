package models

// GroupStanding is a derived per-player aggregate, recomputed on every
// query from the match list and never persisted on its own.
type GroupStanding struct {
	PlayerID        string `json:"player_id"`
	PlayerName      string `json:"player_name"`
	Seed            int    `json:"seed"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	Draws           int    `json:"draws"`
	PointsFor       int    `json:"points_for"`
	PointsAgainst   int    `json:"points_against"`
	PointDifference int    `json:"point_difference"`
	MatchesPlayed   int    `json:"matches_played"`
}
