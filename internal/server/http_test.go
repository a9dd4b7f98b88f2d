package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/contentpilot/internal/llm/llmtest"
	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/server"
	"github.com/raphaelgruber/contentpilot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredReply = `{"headline":"Tênis Run","description":"Leve e macio","cta":"Compre agora","hashtags":"#run #tenis","platform":"instagram"}`

var jpegBytes = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00\x01")

type testAPI struct {
	handler  http.Handler
	adapter  *llmtest.Stub
	sessions *service.SessionManager
	metrics  *metrics.Collector
}

func newTestAPI(t *testing.T, reply string) *testAPI {
	t.Helper()
	adapter := llmtest.NewStub(reply)
	collector := metrics.NewCollector()
	logger := testLogger()

	orch := service.NewOrchestrator(adapter, service.OrchestratorConfig{Metrics: collector, Logger: logger})
	sessions := service.NewSessionManager(orch, logger)
	library := service.NewContentLibrary(service.NewMemoryContentStore(), sessions, logger)

	return &testAPI{
		handler: server.NewHTTPHandler(server.HTTPConfig{
			Orchestrator: orch,
			Sessions:     sessions,
			Library:      library,
			Metrics:      collector,
			Logger:       logger,
			CORSOrigins:  []string{"http://localhost:5173"},
		}),
		adapter:  adapter,
		sessions: sessions,
		metrics:  collector,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type turnBody struct {
	SessionID string               `json:"session_id"`
	User      *models.ChatMessage  `json:"user"`
	Reply     *models.ChatMessage  `json:"reply"`
	Extracted bool                 `json:"extracted"`
	History   []models.HistoryTurn `json:"history"`
	Error     string               `json:"error"`
	Code      string               `json:"code"`
}

type sessionBody struct {
	ID       string               `json:"id"`
	Mode     models.Mode          `json:"mode"`
	Platform *models.Platform     `json:"platform"`
	Busy     bool                 `json:"busy"`
	Messages []models.ChatMessage `json:"messages"`
}

type contentBody struct {
	ID        string          `json:"id"`
	Headline  string          `json:"headline"`
	Platform  models.Platform `json:"platform"`
	SessionID string          `json:"session_id"`
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, "ok")
	rec := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStatelessChat(t *testing.T) {
	api := newTestAPI(t, structuredReply)

	rec := api.do(t, http.MethodPost, "/v1/chat", map[string]any{
		"prompt": "Crie um post",
		"image":  models.Image{Data: jpegBytes, MIMEType: "image/jpeg"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[turnBody](t, rec)
	assert.True(t, body.Extracted)
	require.NotNil(t, body.Reply)
	require.NotNil(t, body.Reply.Structured)
	assert.Equal(t, "Tênis Run", body.Reply.Structured.Headline)
	require.Len(t, body.History, 2)
	assert.Equal(t, models.HistoryRoleUser, body.History[0].Role)
	assert.Equal(t, models.HistoryRoleModel, body.History[1].Role)
	assert.Empty(t, body.SessionID)
}

func TestStatelessChatErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		adapterErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing image on first standard turn",
			body:       map[string]any{"prompt": "Crie um post"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "unknown mode",
			body:       map[string]any{"prompt": "oi", "mode": "poetry"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "unknown platform",
			body:       map[string]any{"prompt": "oi", "mode": "viral", "platform": "myspace"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "adapter failure",
			body:       map[string]any{"prompt": "oi", "mode": "viral"},
			adapterErr: errors.New("quota exceeded"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "model_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, "texto")
			api.adapter.Err = tt.adapterErr

			rec := api.do(t, http.MethodPost, "/v1/chat", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decodeBody[turnBody](t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.Nil(t, body.Reply)
			if tt.adapterErr != nil {
				assert.Equal(t, tt.adapterErr.Error(), body.Error)
			}
		})
	}
}

func TestStatelessChatRejectsMalformedBody(t *testing.T) {
	api := newTestAPI(t, "texto")
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI(t, "Ideias virais")

	rec := api.do(t, http.MethodPost, "/v1/sessions", map[string]any{"mode": "viral", "platform": "tiktok"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[sessionBody](t, rec)
	assert.Equal(t, models.ModeViral, created.Mode)
	require.NotNil(t, created.Platform)
	assert.Equal(t, models.PlatformTikTok, *created.Platform)

	rec = api.do(t, http.MethodPost, "/v1/sessions/"+created.ID+"/turns", map[string]any{"prompt": "Me dê ideias"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	turn := decodeBody[turnBody](t, rec)
	assert.Equal(t, created.ID, turn.SessionID)
	assert.False(t, turn.Extracted)
	require.NotNil(t, turn.Reply)
	assert.Equal(t, "Ideias virais", turn.Reply.Content)
	assert.Empty(t, turn.History)

	calls := api.adapter.Calls()
	require.Len(t, calls, 1)
	// viral mode ignores the platform selection
	assert.Equal(t, "Me dê ideias", calls[0].Current)

	rec = api.do(t, http.MethodPatch, "/v1/sessions/"+created.ID, map[string]any{"mode": "competitor", "platform": ""})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[sessionBody](t, rec)
	assert.Equal(t, models.ModeCompetitor, updated.Mode)
	assert.Nil(t, updated.Platform)
	assert.Len(t, updated.Messages, 2)

	rec = api.do(t, http.MethodGet, "/v1/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]sessionBody](t, rec), 1)

	rec = api.do(t, http.MethodDelete, "/v1/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionRejectsInvalidSelections(t *testing.T) {
	api := newTestAPI(t, "texto")

	rec := api.do(t, http.MethodPost, "/v1/sessions", map[string]any{"mode": "poetry"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[sessionBody](t, rec)
	assert.Equal(t, models.DefaultMode, created.Mode)

	rec = api.do(t, http.MethodPatch, "/v1/sessions/"+created.ID, map[string]any{"mode": "viral", "platform": "myspace"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultMode, decodeBody[sessionBody](t, rec).Mode, "a rejected update changes nothing")

	rec = api.do(t, http.MethodPatch, "/v1/sessions/missing", map[string]any{"mode": "viral"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitTurnWhileInFlight(t *testing.T) {
	api := newTestAPI(t, "texto")
	api.adapter.Block = make(chan struct{})

	session, err := api.sessions.Create(models.ModeViral, nil)
	require.NoError(t, err)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- api.do(t, http.MethodPost, "/v1/sessions/"+session.ID+"/turns", map[string]any{"prompt": "primeira"})
	}()

	require.Eventually(t, session.Busy, time.Second, 5*time.Millisecond)

	rec := api.do(t, http.MethodPost, "/v1/sessions/"+session.ID+"/turns", map[string]any{"prompt": "segunda"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "turn_in_flight", decodeBody[turnBody](t, rec).Code)

	close(api.adapter.Block)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Len(t, session.Messages(), 2)
}

func TestContentEndpoints(t *testing.T) {
	api := newTestAPI(t, structuredReply)

	session, err := api.sessions.Create(models.ModeStandard, nil)
	require.NoError(t, err)
	out := session.Submit(t.Context(), service.Turn{
		Prompt: "Crie um post",
		Image:  &models.Image{Data: jpegBytes, MIMEType: "image/jpeg"},
	})
	require.NoError(t, out.Err)

	rec := api.do(t, http.MethodPost, "/v1/content", map[string]any{"session_id": session.ID, "message_id": out.Reply.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decodeBody[contentBody](t, rec)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Tênis Run", saved.Headline)
	assert.Equal(t, session.ID, saved.SessionID)

	rec = api.do(t, http.MethodPost, "/v1/content", map[string]any{"session_id": session.ID, "message_id": out.User.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/content", map[string]any{"content": map[string]any{
		"headline": "Oferta", "description": "Desc", "cta": "Veja", "hashtags": "#promo", "platform": "linkedin",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/v1/content", map[string]any{"content": map[string]any{"headline": "Só título"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/content", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/content", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]contentBody](t, rec), 2)

	rec = api.do(t, http.MethodGet, "/v1/content?platform=instagram", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filtered := decodeBody[[]contentBody](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, models.PlatformInstagram, filtered[0].Platform)

	rec = api.do(t, http.MethodGet, "/v1/content?platform=myspace", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodDelete, "/v1/content/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, "/v1/content/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegistryEndpoints(t *testing.T) {
	api := newTestAPI(t, "texto")

	rec := api.do(t, http.MethodGet, "/v1/platforms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	platforms := decodeBody[[]struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}](t, rec)
	require.Len(t, platforms, len(models.Platforms()))
	assert.Equal(t, "instagram", platforms[0].ID)
	assert.Equal(t, "Instagram", platforms[0].Label)

	rec = api.do(t, http.MethodGet, "/v1/modes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Modes(), decodeBody[[]models.Mode](t, rec))
}

func TestStatsReflectTurns(t *testing.T) {
	api := newTestAPI(t, "texto")
	rec := api.do(t, http.MethodPost, "/v1/chat", map[string]any{"prompt": "oi", "mode": "viral"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeBody[metrics.Snapshot](t, rec)
	require.NotNil(t, snap.Turn)
	assert.Equal(t, int64(1), snap.Turn.Count)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t, "texto")

	req := httptest.NewRequest(http.MethodOptions, "/v1/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionWebSocket(t *testing.T) {
	api := newTestAPI(t, "Resposta")
	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	session, err := api.sessions.Create(models.ModeViral, nil)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/sessions/" + session.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(service.Turn{Prompt: "Olá"}))
	var resp turnBody
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Empty(t, resp.Error)
	require.NotNil(t, resp.Reply)
	assert.Equal(t, "Resposta", resp.Reply.Content)

	require.NoError(t, conn.WriteJSON(service.Turn{Prompt: ""}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "invalid_request", resp.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	resp = turnBody{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "invalid_request", resp.Code)

	assert.Len(t, session.Messages(), 2)
}

func TestSessionWebSocketUnknownSession(t *testing.T) {
	api := newTestAPI(t, "texto")
	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
