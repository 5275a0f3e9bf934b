package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/bootstrap"
	gamedomain "github.com/vasanthsarathy/process-mate/internal/domain/game"
	ownErrors "github.com/vasanthsarathy/process-mate/internal/errors"
	"github.com/vasanthsarathy/process-mate/internal/httpresponse"
	"github.com/vasanthsarathy/process-mate/internal/repository"
	analyzerUC "github.com/vasanthsarathy/process-mate/internal/usecase/analyzer"
)

type UploadRequest struct {
	PGN string `json:"pgn"`
}

type AnalyzePlyRequest struct {
	Ply      int   `json:"ply"`
	Simplify *bool `json:"simplify,omitempty"`
}

type GameHandler struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	games   *repository.GameRepository
	service *analyzerUC.Service
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, games *repository.GameRepository, service *analyzerUC.Service) *GameHandler {
	return &GameHandler{
		cfg:     cfg,
		log:     log,
		games:   games,
		service: service,
	}
}

func (h *GameHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpresponse.WriteError(h.log, w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.PGN == "" {
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "PGN is required")
		return
	}

	parsed, err := repository.ParseGame(req.PGN)
	if err != nil {
		h.log.Warnf("rejecting PGN upload: %v", err)
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Could not parse PGN: "+err.Error())
		return
	}

	if err := h.games.Save(r.Context(), parsed); err != nil {
		h.log.Errorf("failed to save game: %v", err)
		httpresponse.WriteError(h.log, w, http.StatusInternalServerError, "Failed to save game")
		return
	}

	httpresponse.WriteJSON(h.log, w, http.StatusCreated, gamedomain.UploadResponse{
		ID:      parsed.ID,
		Headers: parsed.Headers,
		Plies:   len(parsed.Moves),
	})
}

func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, err := h.games.Get(r.Context(), id)
	if errors.Is(err, ownErrors.ErrGameNotFound) {
		httpresponse.WriteError(h.log, w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		h.log.Errorf("failed to load game %s: %v", id, err)
		httpresponse.WriteError(h.log, w, http.StatusInternalServerError, "Failed to load game")
		return
	}

	httpresponse.WriteJSON(h.log, w, http.StatusOK, g)
}

// HandleAnalyzePly analyzes the position a stored game had before one of its
// half-moves, treating that half-move as the played move.
func (h *GameHandler) HandleAnalyzePly(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AnalyzePlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	g, err := h.games.Get(r.Context(), id)
	if errors.Is(err, ownErrors.ErrGameNotFound) {
		httpresponse.WriteError(h.log, w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		h.log.Errorf("failed to load game %s: %v", id, err)
		httpresponse.WriteError(h.log, w, http.StatusInternalServerError, "Failed to load game")
		return
	}

	report, err := h.service.AnalyzeGamePly(r.Context(), g, req.Ply, req.Simplify)
	if errors.Is(err, ownErrors.ErrIllegalMove) {
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Ply is out of range for this game")
		return
	}
	if err != nil {
		h.log.Errorf("failed to analyze game %s ply %d: %v", id, req.Ply, err)
		httpresponse.WriteError(h.log, w, http.StatusInternalServerError, "Failed to analyze position")
		return
	}

	httpresponse.WriteJSON(h.log, w, http.StatusOK, report)
}

