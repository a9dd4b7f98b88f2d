package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/service"
	"github.com/rs/cors"
)

// requestOverhead is the body budget on top of the base64-encoded image limit.
const requestOverhead = 1 << 20

// HTTPConfig holds the collaborators of the HTTP API.
type HTTPConfig struct {
	Orchestrator *service.Orchestrator
	Sessions     *service.SessionManager
	Library      *service.ContentLibrary
	Metrics      *metrics.Collector
	Logger       *slog.Logger
	CORSOrigins  []string
}

type api struct {
	orch     *service.Orchestrator
	sessions *service.SessionManager
	library  *service.ContentLibrary
	metrics  *metrics.Collector
	logger   *slog.Logger
	upgrader websocket.Upgrader
	maxBody  int64
}

// NewHTTPHandler builds the HTTP API with logging, panic recovery and CORS applied.
func NewHTTPHandler(cfg HTTPConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := cfg.Metrics
	if collector == nil {
		collector = metrics.NewCollector()
	}

	a := &api{
		orch:     cfg.Orchestrator,
		sessions: cfg.Sessions,
		library:  cfg.Library,
		metrics:  collector,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		maxBody: int64(cfg.Orchestrator.Limits().MaxImageBytes)*4/3 + requestOverhead,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/chat", a.handleChat)

	mux.HandleFunc("GET /v1/sessions", a.handleListSessions)
	mux.HandleFunc("POST /v1/sessions", a.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", a.handleGetSession)
	mux.HandleFunc("PATCH /v1/sessions/{id}", a.handleUpdateSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", a.handleDeleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/turns", a.handleSubmitTurn)
	mux.HandleFunc("GET /v1/sessions/{id}/ws", a.handleSessionSocket)

	mux.HandleFunc("GET /v1/platforms", a.handlePlatforms)
	mux.HandleFunc("GET /v1/modes", a.handleModes)

	mux.HandleFunc("GET /v1/content", a.handleListContent)
	mux.HandleFunc("POST /v1/content", a.handleSaveContent)
	mux.HandleFunc("DELETE /v1/content/{id}", a.handleDeleteContent)

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, a.metrics.Snapshot())
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	var handler http.Handler = mux
	handler = RequestLogging(logger)(handler)
	handler = Recovery(logger)(handler)

	if len(cfg.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	return handler
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// turnResponse reports one turn. History is the full wire history after the
// turn and is only set on the stateless endpoint.
type turnResponse struct {
	SessionID string               `json:"session_id,omitempty"`
	User      *models.ChatMessage  `json:"user,omitempty"`
	Reply     *models.ChatMessage  `json:"reply,omitempty"`
	Extracted bool                 `json:"extracted"`
	Usage     usageResponse        `json:"usage"`
	History   []models.HistoryTurn `json:"history,omitempty"`
	Error     string               `json:"error,omitempty"`
	Code      string               `json:"code,omitempty"`
}

type usageResponse struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

func newTurnResponse(sessionID string, out service.Outcome) turnResponse {
	resp := turnResponse{
		SessionID: sessionID,
		User:      out.User,
		Reply:     out.Reply,
		Extracted: out.Extracted,
		Usage: usageResponse{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
		},
	}
	if out.Err != nil {
		resp.Error = service.UserMessage(out.Err)
		_, resp.Code = classify(out.Err)
	}
	return resp
}

type sessionResponse struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Mode      models.Mode          `json:"mode"`
	Platform  *models.Platform     `json:"platform,omitempty"`
	Busy      bool                 `json:"busy"`
	Messages  []models.ChatMessage `json:"messages"`
}

func newSessionResponse(s *service.Session) sessionResponse {
	state := s.Snapshot()
	return sessionResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Mode:      state.Mode,
		Platform:  state.Platform,
		Busy:      s.Busy(),
		Messages:  state.Messages,
	}
}

type contentResponse struct {
	ID          string          `json:"id"`
	Headline    string          `json:"headline"`
	Description string          `json:"description"`
	CTA         string          `json:"cta"`
	Hashtags    string          `json:"hashtags"`
	Platform    models.Platform `json:"platform"`
	SessionID   string          `json:"session_id,omitempty"`
	MessageID   string          `json:"message_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newContentResponse(c models.SavedContent) contentResponse {
	return contentResponse{
		ID:          c.Key(),
		Headline:    c.Headline,
		Description: c.Description,
		CTA:         c.CTA,
		Hashtags:    c.Hashtags,
		Platform:    c.Platform,
		SessionID:   c.SessionID,
		MessageID:   c.MessageID,
		CreatedAt:   c.CreatedAt,
	}
}

// classify maps domain errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, models.ErrUnknownMode),
		errors.Is(err, models.ErrUnknownPlatform):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, service.ErrTurnInFlight):
		return http.StatusConflict, "turn_in_flight"
	case errors.Is(err, service.ErrAdapter):
		return http.StatusBadGateway, "model_error"
	case errors.Is(err, service.ErrTurnAbandoned):
		return http.StatusRequestTimeout, "turn_abandoned"
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, models.ErrContentNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNoStructuredContent):
		return http.StatusUnprocessableEntity, "no_structured_content"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (a *api) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := service.UserMessage(err)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	respondJSON(w, status, errorResponse{Error: msg, Code: code})
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: service.UserMessage(service.ErrImageTooLarge),
				Code:  "invalid_request",
			})
			return false
		}
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "invalid_request"})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
