package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/cache"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/storage"
)

type CreateTournamentInput struct {
	Name         string              `json:"name"`
	Format       models.Format       `json:"format"`
	FormatConfig models.FormatConfig `json:"format_config"`
}

type PlayerInput struct {
	Name string `json:"name"`
	Seed int    `json:"seed"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID string, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Delete(ctx context.Context, id, organizerID string) error

	AddPlayers(ctx context.Context, tournamentID, organizerID string, inputs []PlayerInput) (*models.Tournament, error)
	Start(ctx context.Context, tournamentID, organizerID string) (*models.Tournament, error)
	RecordResult(ctx context.Context, tournamentID, organizerID, matchID string, score1, score2 int) (*models.Tournament, error)
	Rescore(ctx context.Context, tournamentID, organizerID, matchID string, score1, score2 int) (*models.Tournament, error)
	GenerateSwissRound(ctx context.Context, tournamentID, organizerID string) (*models.Tournament, error)
	CompleteGroupStage(ctx context.Context, tournamentID, organizerID string) (*models.Tournament, error)

	Standings(ctx context.Context, tournamentID string, groupID *string) ([]models.GroupStanding, error)
	UploadLogo(ctx context.Context, tournamentID, organizerID, contentType string, reader io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	standings      *cache.StandingsCache
	uploader       storage.FileUploader
	hub            *brackets.Hub
	logger         *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	standings *cache.StandingsCache,
	uploader storage.FileUploader,
	hub *brackets.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		standings:      standings,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
		locks:          make(map[string]*sync.Mutex),
	}
}

// lockTournament serializes mutations per tournament. The engine itself is
// pure, but the load-mutate-save sequence around it is not; two concurrent
// result writes to the same tournament would race on the saved graph.
func (s *tournamentService) lockTournament(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *tournamentService) Create(ctx context.Context, organizerID string, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidFormat, input.Format)
	}

	t := &models.Tournament{
		ID:           uuid.NewString(),
		Name:         name,
		Format:       input.Format,
		FormatConfig: input.FormatConfig,
		Status:       models.StatusDraft,
		OrganizerID:  organizerID,
		Players:      []models.Player{},
		Matches:      []models.Match{},
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return t, nil
}

// GetByID loads the full aggregate: the tournament row plus its players and
// matches, the latter two fetched concurrently.
func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	return s.loadAggregate(ctx, id)
}

func (s *tournamentService) loadAggregate(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		players, err := s.playerRepo.ListByTournament(gctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load players for tournament %s: %w", id, err)
		}
		t.Players = players
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load matches for tournament %s: %w", id, err)
		}
		t.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.populateLogoURL(t)
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Delete(ctx context.Context, id, organizerID string) error {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if err := requireOwner(t, organizerID); err != nil {
		return err
	}

	if t.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *t.LogoKey); err != nil {
			s.logger.Warn("failed to delete tournament logo from storage",
				slog.String("tournament_id", id), slog.Any("error", err))
		}
	}
	return s.tournamentRepo.Delete(ctx, id)
}

func (s *tournamentService) AddPlayers(ctx context.Context, tournamentID, organizerID string, inputs []PlayerInput) (*models.Tournament, error) {
	lock := s.lockTournament(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.loadAggregate(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(t, organizerID); err != nil {
		return nil, err
	}
	if t.Status != models.StatusDraft {
		return nil, ErrPlayersOnlyInDraft
	}

	nextSeed := 0
	for i := range t.Players {
		if t.Players[i].Seed > nextSeed {
			nextSeed = t.Players[i].Seed
		}
	}
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, ErrPlayerNameRequired
		}
		seed := in.Seed
		if seed <= 0 {
			nextSeed++
			seed = nextSeed
		} else if seed > nextSeed {
			nextSeed = seed
		}
		t.Players = append(t.Players, models.Player{
			ID:   uuid.NewString(),
			Name: name,
			Seed: seed,
		})
	}

	if err := s.saveAggregate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Start builds the match graph and flips the tournament from draft to
// active. Generator failures surface as brackets.ErrConfiguration and leave
// the draft untouched.
func (s *tournamentService) Start(ctx context.Context, tournamentID, organizerID string) (*models.Tournament, error) {
	lock := s.lockTournament(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.loadAggregate(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(t, organizerID); err != nil {
		return nil, err
	}
	if t.Status != models.StatusDraft {
		return nil, ErrTournamentNotDraft
	}

	gen, err := brackets.ForFormat(t.Format)
	if err != nil {
		return nil, err
	}
	players := make([]*models.Player, len(t.Players))
	for i := range t.Players {
		players[i] = &t.Players[i]
	}
	matches, err := gen.Generate(players, t.FormatConfig)
	if err != nil {
		return nil, err
	}

	t.Matches = matches
	t.Status = models.StatusActive
	if t.Format == models.FormatSwiss {
		t.CurrentSwissRound = 1
	}

	if err := s.saveAggregate(ctx, t); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, t, nil)
	return t, nil
}

func (s *tournamentService) RecordResult(ctx context.Context, tournamentID, organizerID, matchID string, score1, score2 int) (*models.Tournament, error) {
	return s.mutateGraph(ctx, tournamentID, organizerID, func(t *models.Tournament) (*models.Tournament, []brackets.Event, error) {
		return brackets.RecordResult(t, matchID, score1, score2)
	})
}

func (s *tournamentService) Rescore(ctx context.Context, tournamentID, organizerID, matchID string, score1, score2 int) (*models.Tournament, error) {
	return s.mutateGraph(ctx, tournamentID, organizerID, func(t *models.Tournament) (*models.Tournament, []brackets.Event, error) {
		return brackets.Rescore(t, matchID, score1, score2)
	})
}

func (s *tournamentService) GenerateSwissRound(ctx context.Context, tournamentID, organizerID string) (*models.Tournament, error) {
	return s.mutateGraph(ctx, tournamentID, organizerID, func(t *models.Tournament) (*models.Tournament, []brackets.Event, error) {
		updated, err := brackets.NextSwissRound(t)
		return updated, nil, err
	})
}

func (s *tournamentService) CompleteGroupStage(ctx context.Context, tournamentID, organizerID string) (*models.Tournament, error) {
	return s.mutateGraph(ctx, tournamentID, organizerID, func(t *models.Tournament) (*models.Tournament, []brackets.Event, error) {
		updated, err := brackets.BuildKnockout(t)
		return updated, nil, err
	})
}

// mutateGraph is the shared load-engine-save path of every graph write.
// The engine call gets the loaded aggregate and returns an updated clone;
// only a fully successful call is persisted and broadcast.
func (s *tournamentService) mutateGraph(
	ctx context.Context,
	tournamentID, organizerID string,
	op func(*models.Tournament) (*models.Tournament, []brackets.Event, error),
) (*models.Tournament, error) {
	lock := s.lockTournament(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.loadAggregate(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(t, organizerID); err != nil {
		return nil, err
	}

	updated, events, err := op(t)
	if err != nil {
		return nil, err
	}

	if err := s.saveAggregate(ctx, updated); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, updated, events)
	return updated, nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID string, groupID *string) ([]models.GroupStanding, error) {
	cached, hit, err := s.standings.Get(ctx, tournamentID, groupID)
	if err != nil {
		s.logger.Warn("standings cache read failed",
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
	}
	if hit {
		return cached, nil
	}

	t, err := s.loadAggregate(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	standings := brackets.CalculateStandings(t.Matches, t.Players, groupID)

	if err := s.standings.Set(ctx, tournamentID, groupID, standings); err != nil {
		s.logger.Warn("standings cache write failed",
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
	}
	return standings, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, tournamentID, organizerID, contentType string, reader io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if err := requireOwner(t, organizerID); err != nil {
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := t.LogoKey
	key := fmt.Sprintf("tournaments/%s/logo%s", tournamentID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous logo",
				slog.String("tournament_id", tournamentID), slog.Any("error", err))
		}
	}

	t.LogoKey = &key
	s.populateLogoURL(t)
	return t, nil
}

// saveAggregate persists the row plus both child sets in one transaction,
// so a crashed write never leaves a half-updated graph behind.
func (s *tournamentService) saveAggregate(ctx context.Context, t *models.Tournament) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.tournamentRepo.Update(ctx, tx, t); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := s.playerRepo.ReplaceAll(ctx, tx, t.ID, t.Players); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := s.matchRepo.ReplaceAll(ctx, tx, t.ID, t.Matches); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// afterMutation handles the side channels of a persisted graph change:
// cached standings are stale, and live viewers get the new state pushed.
func (s *tournamentService) afterMutation(ctx context.Context, t *models.Tournament, events []brackets.Event) {
	if err := s.standings.Invalidate(ctx, t.ID); err != nil {
		s.logger.Warn("standings cache invalidation failed",
			slog.String("tournament_id", t.ID), slog.Any("error", err))
	}
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom("tournament_"+t.ID, brackets.UpdateMessage{
		Type: "BRACKET_UPDATED",
		Payload: map[string]interface{}{
			"tournament": t,
			"events":     events,
		},
		RoomID: "tournament_" + t.ID,
	})
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if t.LogoKey != nil && *t.LogoKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
			t.LogoURL = &url
		}
	}
}

func requireOwner(t *models.Tournament, organizerID string) error {
	if organizerID == "" {
		// Internal callers (admin surface, schedulers) skip the check.
		return nil
	}
	if t.OrganizerID != organizerID {
		return ErrForbiddenOperation
	}
	return nil
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported logo content type %q", contentType)
	}
}
