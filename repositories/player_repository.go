package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerSeedConflict = errors.New("player seed conflict in tournament")
)

type PlayerRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, tournamentID string, players []models.Player) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Player, error)
	ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID string, players []models.Player) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) CreateBatch(ctx context.Context, exec SQLExecutor, tournamentID string, players []models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (id, tournament_id, name, seed, group_id, wins, losses)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i := range players {
		p := &players[i]
		_, err := executor.ExecContext(ctx, query,
			p.ID, tournamentID, p.Name, p.Seed, p.GroupID, p.Wins, p.Losses,
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				if pqErr.Constraint == "players_tournament_id_seed_key" {
					return ErrPlayerSeedConflict
				}
			}
			return err
		}
	}
	return nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, seed, group_id, wins, losses
		FROM players
		WHERE tournament_id = $1
		ORDER BY seed ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.Name, &p.Seed, &p.GroupID, &p.Wins, &p.Losses); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// ReplaceAll rewrites the tournament's player set in one shot. Engine
// operations rederive group ids and win/loss counters on every mutation, so
// persisting the whole set is both simpler and safer than diffing.
func (r *postgresPlayerRepository) ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID string, players []models.Player) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM players WHERE tournament_id = $1`, tournamentID); err != nil {
		return err
	}
	return r.CreateBatch(ctx, executor, tournamentID, players)
}
