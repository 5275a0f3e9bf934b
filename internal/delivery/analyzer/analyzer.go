package analyzer

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/bootstrap"
	"github.com/vasanthsarathy/process-mate/internal/httpresponse"
	"github.com/vasanthsarathy/process-mate/internal/repository"
	analyzerUC "github.com/vasanthsarathy/process-mate/internal/usecase/analyzer"
)

type AnalyzeRequest struct {
	FEN      string `json:"fen"`
	Played   string `json:"played,omitempty"`
	Simplify *bool  `json:"simplify,omitempty"`
}

type ConfigureEngineRequest struct {
	Path string `json:"path"`
}

type AnalyzerHandler struct {
	cfg      bootstrap.Config
	log      *zap.SugaredLogger
	service  *analyzerUC.Service
	engine   *repository.EngineClient
	upgrader websocket.Upgrader
}

func NewAnalyzerHandler(cfg bootstrap.Config, log *zap.SugaredLogger, service *analyzerUC.Service, engine *repository.EngineClient) *AnalyzerHandler {
	return &AnalyzerHandler{
		cfg:     cfg,
		log:     log,
		service: service,
		engine:  engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *AnalyzerHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpresponse.WriteError(h.log, w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	report, err := h.service.Analyze(r.Context(), req.FEN, req.Played, req.Simplify)
	if err != nil {
		h.log.Errorf("analysis failed: %v", err)
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Could not analyze position: "+err.Error())
		return
	}

	httpresponse.WriteJSON(h.log, w, http.StatusOK, report)
}

// HandleUpdates streams verification results over a websocket. Updates for
// positions the client navigated away from never reach the stream; the
// staleness guard drops them before publication.
func (h *AnalyzerHandler) HandleUpdates(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.service.Subscribe()
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for v := range updates {
		if err := conn.WriteJSON(v); err != nil {
			h.log.Debugf("verification stream closed: %v", err)
			return
		}
	}
}

func (h *AnalyzerHandler) HandleConfigureEngine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpresponse.WriteError(h.log, w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req ConfigureEngineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.Path == "" {
		httpresponse.WriteError(h.log, w, http.StatusBadRequest, "Engine path is required")
		return
	}

	if err := h.engine.Configure(req.Path); err != nil {
		h.log.Errorf("engine configure failed: %v", err)
		httpresponse.WriteError(h.log, w, http.StatusBadGateway, "Could not start engine: "+err.Error())
		return
	}

	httpresponse.WriteJSON(h.log, w, http.StatusOK, map[string]string{"engine": req.Path})
}

func (h *AnalyzerHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteJSON(h.log, w, http.StatusOK, map[string]any{
		"status": "ok",
		"engine": h.engine.Running(),
	})
}

