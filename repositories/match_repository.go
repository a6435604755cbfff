package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openbracket/tournament-engine/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, tournamentID string, matches []models.Match) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Match, error)
	ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID string, matches []models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, tournamentID string, matches []models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			id, tournament_id, bracket, round, position,
			player1_id, player2_id, player1_score, player2_score, winner_id,
			is_bye, is_forfeited, notes,
			next_match_id, next_match_position, loser_next_match_id, loser_next_match_position,
			group_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	for i := range matches {
		m := &matches[i]
		_, err := executor.ExecContext(ctx, query,
			m.ID, tournamentID, m.Bracket, m.Round, m.Position,
			m.Player1ID, m.Player2ID, m.Player1Score, m.Player2Score, m.WinnerID,
			m.IsBye, m.IsForfeited, m.Notes,
			m.NextMatchID, m.NextMatchPosition, m.LoserNextMatchID, m.LoserNextMatchPosition,
			m.GroupID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, bracket, round, position,
		       player1_id, player2_id, player1_score, player2_score, winner_id,
		       is_bye, is_forfeited, notes,
		       next_match_id, next_match_position, loser_next_match_id, loser_next_match_position,
		       group_id
		FROM matches
		WHERE tournament_id = $1
		ORDER BY bracket, round, position`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.Bracket, &m.Round, &m.Position,
			&m.Player1ID, &m.Player2ID, &m.Player1Score, &m.Player2Score, &m.WinnerID,
			&m.IsBye, &m.IsForfeited, &m.Notes,
			&m.NextMatchID, &m.NextMatchPosition, &m.LoserNextMatchID, &m.LoserNextMatchPosition,
			&m.GroupID,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// ReplaceAll rewrites the whole match graph. Engine operations return a new
// graph on every write (results cascade, byes resolve, reset finals appear
// and disappear), so the persistence model follows suit: delete and
// reinsert inside the caller's transaction.
func (r *postgresMatchRepository) ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID string, matches []models.Match) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID); err != nil {
		return err
	}
	return r.CreateBatch(ctx, executor, tournamentID, matches)
}
