package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
	ErrTournamentInvalidOrg   = errors.New("invalid organizer reference")
)

type ListTournamentsFilter struct {
	OrganizerID *string
	Status      *models.TournamentStatus
	Format      *models.Format
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	UpdateLogoKey(ctx context.Context, tournamentID string, logoKey *string) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	cfg, err := json.Marshal(t.FormatConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal format config: %w", err)
	}

	query := `
		INSERT INTO tournaments (id, name, format, format_config, status, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Format, cfg, t.Status, t.OrganizerID,
	).Scan(&t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, format, format_config, status, organizer_id, logo_key,
		       group_stage_complete, swiss_qualification_complete, current_swiss_round,
		       created_at, completed_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var cfg []byte
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Format, &cfg, &t.Status, &t.OrganizerID, &t.LogoKey,
		&t.GroupStageComplete, &t.SwissQualificationComplete, &t.CurrentSwissRound,
		&t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &t.FormatConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal format config for tournament %s: %w", id, err)
		}
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT id, name, format, format_config, status, organizer_id, logo_key,
		       group_stage_complete, swiss_qualification_complete, current_swiss_round,
		       created_at, completed_at
		FROM tournaments
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Format != nil {
		query += fmt.Sprintf(" AND format = $%d", argID)
		args = append(args, *filter.Format)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		var cfg []byte
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Format, &cfg, &t.Status, &t.OrganizerID, &t.LogoKey,
			&t.GroupStageComplete, &t.SwissQualificationComplete, &t.CurrentSwissRound,
			&t.CreatedAt, &t.CompletedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		if len(cfg) > 0 {
			if err := json.Unmarshal(cfg, &t.FormatConfig); err != nil {
				return nil, fmt.Errorf("failed to unmarshal format config for tournament %s: %w", t.ID, err)
			}
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// Update persists the tournament row's mutable state. Players and matches
// are written by their own repositories, usually in the same transaction.
func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	cfg, err := json.Marshal(t.FormatConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal format config: %w", err)
	}

	query := `
		UPDATE tournaments SET
			name = $1,
			format = $2,
			format_config = $3,
			status = $4,
			group_stage_complete = $5,
			swiss_qualification_complete = $6,
			current_swiss_round = $7,
			completed_at = $8
		WHERE id = $9`

	result, err := executor.ExecContext(ctx, query,
		t.Name, t.Format, cfg, t.Status,
		t.GroupStageComplete, t.SwissQualificationComplete, t.CurrentSwissRound,
		t.CompletedAt,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, tournamentID string, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	// Players and matches go with it via ON DELETE CASCADE.
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			if pqErr.Constraint == "tournaments_organizer_id_fkey" {
				return ErrTournamentInvalidOrg
			}
		}
	}
	return err
}
