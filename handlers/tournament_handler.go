package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openbracket/tournament-engine/middleware"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

type scoreInput struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// CreateHandler handles POST /tournaments.
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}.
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getTournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments with optional filters.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	if organizerID := query.Get("organizer_id"); organizerID != "" {
		filter.OrganizerID = &organizerID
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		switch status {
		case models.StatusDraft, models.StatusActive, models.StatusCompleted:
			filter.Status = &status
		default:
			badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
	}
	if formatStr := query.Get("format"); formatStr != "" {
		format := models.Format(formatStr)
		if !format.Valid() {
			badRequestResponse(w, r, errors.New("invalid format filter"))
			return
		}
		filter.Format = &format
	}

	filter.Limit = 20
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID}.
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getTournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := h.callerID(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPlayersHandler handles POST /tournaments/{tournamentID}/players.
func (h *TournamentHandler) AddPlayersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getTournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := h.callerID(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Players []services.PlayerInput `json:"players"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Players) == 0 {
		badRequestResponse(w, r, errors.New("players list must not be empty"))
		return
	}

	tournament, err := h.tournamentService.AddPlayers(r.Context(), id, currentUserID, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler handles POST /tournaments/{tournamentID}/start.
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.tournamentService.Start)
}

// RecordResultHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/result.
func (h *TournamentHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	h.scoreMutation(w, r, h.tournamentService.RecordResult)
}

// RescoreHandler handles PUT /tournaments/{tournamentID}/matches/{matchID}/result,
// replacing an already recorded result and cascading the correction.
func (h *TournamentHandler) RescoreHandler(w http.ResponseWriter, r *http.Request) {
	h.scoreMutation(w, r, h.tournamentService.Rescore)
}

// NextSwissRoundHandler handles POST /tournaments/{tournamentID}/swiss/next-round.
func (h *TournamentHandler) NextSwissRoundHandler(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.tournamentService.GenerateSwissRound)
}

// CompleteGroupStageHandler handles POST /tournaments/{tournamentID}/knockout,
// freezing group standings and building the knockout stage from qualifiers.
func (h *TournamentHandler) CompleteGroupStageHandler(w http.ResponseWriter, r *http.Request) {
	h.mutation(w, r, h.tournamentService.CompleteGroupStage)
}

// StandingsHandler handles GET /tournaments/{tournamentID}/standings.
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getTournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var groupID *string
	if g := r.URL.Query().Get("group_id"); g != "" {
		groupID = &g
	}

	standings, err := h.tournamentService.Standings(r.Context(), id, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogoHandler handles POST /tournaments/{tournamentID}/logo.
func (h *TournamentHandler) UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getTournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := h.callerID(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	tournament, err := h.tournamentService.UploadLogo(r.Context(), id, currentUserID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// mutation is the shared shape of the tournament-level POST endpoints that
// take no request body: resolve IDs, call the service, return the updated
// aggregate.
func (h *TournamentHandler) mutation(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, tournamentID, organizerID string) (*models.Tournament, error),
) {
	id, err := getTournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := h.callerID(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	tournament, err := op(r.Context(), id, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// scoreMutation covers the two match-scoring endpoints, which share a body
// and differ only in the service call.
func (h *TournamentHandler) scoreMutation(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, tournamentID, organizerID, matchID string, score1, score2 int) (*models.Tournament, error),
) {
	id, err := getTournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		badRequestResponse(w, r, errors.New("missing match ID in URL path"))
		return
	}
	currentUserID, err := h.callerID(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := op(r.Context(), id, currentUserID, matchID, input.Score1, input.Score2)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func getTournamentIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "tournamentID")
	if id == "" {
		return "", errors.New("missing tournament ID in URL path")
	}
	return id, nil
}

func (h *TournamentHandler) callerID(r *http.Request) (string, error) {
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return "", errors.New("authentication required")
	}
	if role == models.RoleAdmin {
		// Admins see and mutate everything; ownership checks are skipped.
		return "", nil
	}
	return middleware.GetUserIDFromContext(r.Context())
}
