package models

import "time"

// TournamentStatus mirrors the lifecycle the engine drives: draft until the
// first bracket build, active while matches are open, completed when the
// terminal match resolves.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

// Tournament is the aggregate the engine operates on. Engine operations
// treat it as a value: they clone it, mutate the clone and return it, so a
// failed call never leaves a caller's copy half-updated.
type Tournament struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Format       Format           `json:"format,omitempty" db:"format"`
	FormatConfig FormatConfig     `json:"format_config,omitempty" db:"format_config"`
	Status       TournamentStatus `json:"status" db:"status"`
	OrganizerID  string           `json:"organizer_id,omitempty" db:"organizer_id"`
	LogoKey      *string          `json:"-" db:"logo_key"`
	LogoURL      *string          `json:"logo_url,omitempty" db:"-"`

	Players []Player `json:"players"`
	Matches []Match  `json:"matches"`

	GroupStageComplete         bool `json:"group_stage_complete,omitempty" db:"group_stage_complete"`
	SwissQualificationComplete bool `json:"swiss_qualification_complete,omitempty" db:"swiss_qualification_complete"`
	CurrentSwissRound          int  `json:"current_swiss_round,omitempty" db:"current_swiss_round"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Clone deep-copies the tournament, including its player and match slices.
func (t *Tournament) Clone() *Tournament {
	out := *t
	out.Players = make([]Player, len(t.Players))
	for i, p := range t.Players {
		cp := p
		cp.GroupID = cloneStr(p.GroupID)
		out.Players[i] = cp
	}
	out.Matches = make([]Match, len(t.Matches))
	for i, m := range t.Matches {
		cm := m
		cm.Player1ID = cloneStr(m.Player1ID)
		cm.Player2ID = cloneStr(m.Player2ID)
		cm.Player1Score = cloneInt(m.Player1Score)
		cm.Player2Score = cloneInt(m.Player2Score)
		cm.WinnerID = cloneStr(m.WinnerID)
		cm.Notes = cloneStr(m.Notes)
		cm.NextMatchID = cloneStr(m.NextMatchID)
		cm.NextMatchPosition = cloneInt(m.NextMatchPosition)
		cm.LoserNextMatchID = cloneStr(m.LoserNextMatchID)
		cm.LoserNextMatchPosition = cloneInt(m.LoserNextMatchPosition)
		cm.GroupID = cloneStr(m.GroupID)
		out.Matches[i] = cm
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	out.LogoKey = cloneStr(t.LogoKey)
	out.LogoURL = cloneStr(t.LogoURL)
	return &out
}

// MatchByID returns a pointer into t.Matches, or nil.
func (t *Tournament) MatchByID(id string) *Match {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return &t.Matches[i]
		}
	}
	return nil
}

// PlayerByID returns a pointer into t.Players, or nil.
func (t *Tournament) PlayerByID(id string) *Player {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return &t.Players[i]
		}
	}
	return nil
}

// InferFormat maps legacy records without a format field onto one, from the
// bracket tags present in their matches. Records produced by old exports
// pass through data migration and land here; the engine accepts the result
// as-is.
func InferFormat(t *Tournament) Format {
	if t.Format.Valid() {
		return t.Format
	}
	for i := range t.Matches {
		switch t.Matches[i].Bracket {
		case BracketLosers, BracketGrandFinals:
			return FormatDoubleElimination
		case BracketRoundRobin:
			return FormatRoundRobin
		case BracketSwiss:
			return FormatSwiss
		case BracketGroup:
			return FormatGroupKnockout
		}
	}
	return FormatSingleElimination
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
