package models

// Format names the tournament structure a match graph is built for.
type Format string

const (
	FormatSingleElimination Format = "single-elimination"
	FormatDoubleElimination Format = "double-elimination"
	FormatRoundRobin        Format = "round-robin"
	FormatSwiss             Format = "swiss"
	FormatGroupKnockout     Format = "group-knockout"
)

// Valid reports whether f is one of the recognized formats.
func (f Format) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin,
		FormatSwiss, FormatGroupKnockout:
		return true
	}
	return false
}

// FormatConfig carries the per-format knobs. Zero values mean "not set";
// each generator validates the combination it needs and rejects the rest
// with a configuration error before any match is created.
type FormatConfig struct {
	// Swiss
	NumberOfRounds    int `json:"number_of_rounds,omitempty"`
	WinsToQualify     int `json:"wins_to_qualify,omitempty"`
	QualifyingPlayers int `json:"qualifying_players,omitempty"`

	// Group stage
	GroupCount      int `json:"group_count,omitempty"`
	PlayersPerGroup int `json:"players_per_group,omitempty"`
	AdvancePerGroup int `json:"advance_per_group,omitempty"`

	// Knockout stage after groups: single or double elimination.
	KnockoutFormat Format `json:"knockout_format,omitempty"`

	// Double elimination: the winners-bracket finalist must lose twice in
	// the grand finals; a second finals match is created lazily when the
	// losers-bracket finalist takes the first one.
	GrandFinalsReset bool `json:"grand_finals_reset,omitempty"`
}
