// Package client provides an HTTP and websocket client for the contentpilot server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
)

// Client talks to the contentpilot HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client.
// If endpoint is empty, uses CONTENTPILOT_SERVER_URL or defaults to localhost:8484.
// Timeout can be configured via CONTENTPILOT_CLIENT_TIMEOUT (default 5m, turns wait on the model).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("CONTENTPILOT_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8484"
	}

	timeout := 5 * time.Minute
	if t := os.Getenv("CONTENTPILOT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
}

// do sends a JSON request and decodes a JSON reply into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Code = "unknown"
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// =============================================================================
// TYPES (matching the HTTP API)
// =============================================================================

// Turn is one user submission.
type Turn struct {
	Prompt string        `json:"prompt"`
	Image  *models.Image `json:"image,omitempty"`
}

// Submission is a stateless chat request carrying its own history.
type Submission struct {
	Prompt   string               `json:"prompt"`
	History  []models.HistoryTurn `json:"history,omitempty"`
	Image    *models.Image        `json:"image,omitempty"`
	Platform *models.Platform     `json:"platform,omitempty"`
	Mode     models.Mode          `json:"mode,omitempty"`
}

// Usage reports provider token counts.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TurnResult is the server's report of one turn.
type TurnResult struct {
	SessionID string               `json:"session_id,omitempty"`
	User      *models.ChatMessage  `json:"user,omitempty"`
	Reply     *models.ChatMessage  `json:"reply,omitempty"`
	Extracted bool                 `json:"extracted"`
	Usage     Usage                `json:"usage"`
	History   []models.HistoryTurn `json:"history,omitempty"`
	Error     string               `json:"error,omitempty"`
	Code      string               `json:"code,omitempty"`
}

// Session is a server-side conversation.
type Session struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Mode      models.Mode          `json:"mode"`
	Platform  *models.Platform     `json:"platform,omitempty"`
	Busy      bool                 `json:"busy"`
	Messages  []models.ChatMessage `json:"messages"`
}

// SessionUpdate changes selections. Nil fields are left alone; an empty
// Platform clears the selection.
type SessionUpdate struct {
	Mode     *string `json:"mode,omitempty"`
	Platform *string `json:"platform,omitempty"`
}

// Platform is a supported platform with its display label.
type Platform struct {
	ID    models.Platform `json:"id"`
	Label string          `json:"label"`
}

// SavedContent is one content library record.
type SavedContent struct {
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

// Structured returns the record's payload.
func (s SavedContent) Structured() models.StructuredContent {
	return models.StructuredContent{
		Headline:    s.Headline,
		Description: s.Description,
		CTA:         s.CTA,
		Hashtags:    s.Hashtags,
		Platform:    s.Platform,
	}
}

// =============================================================================
// CHAT
// =============================================================================

// Chat runs a stateless turn. The returned History replaces the caller's.
func (c *Client) Chat(ctx context.Context, sub Submission) (*TurnResult, error) {
	var result TurnResult
	if err := c.do(ctx, http.MethodPost, "/v1/chat", sub, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// CreateSession starts a server-side session. Empty mode means the default.
func (c *Client) CreateSession(ctx context.Context, mode models.Mode, platform *models.Platform) (*Session, error) {
	body := map[string]any{"mode": string(mode)}
	if platform != nil {
		body["platform"] = string(*platform)
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession returns a session with its messages.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession changes mode or platform for the next turn.
func (c *Client) UpdateSession(ctx context.Context, id string, update SessionUpdate) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPatch, "/v1/sessions/"+url.PathEscape(id), update, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession discards a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(id), nil, nil)
}

// PostTurn submits a turn over plain HTTP. Failed turns return *APIError.
func (c *Client) PostTurn(ctx context.Context, id string, turn Turn) (*TurnResult, error) {
	var result TurnResult
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/turns", turn, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// REGISTRY
// =============================================================================

// ListPlatforms returns the supported platforms in display order.
func (c *Client) ListPlatforms(ctx context.Context) ([]Platform, error) {
	var platforms []Platform
	if err := c.do(ctx, http.MethodGet, "/v1/platforms", nil, &platforms); err != nil {
		return nil, err
	}
	return platforms, nil
}

// =============================================================================
// CONTENT LIBRARY
// =============================================================================

// SaveContent saves the structured payload of a session message.
func (c *Client) SaveContent(ctx context.Context, sessionID, messageID string) (*SavedContent, error) {
	var saved SavedContent
	body := map[string]string{"session_id": sessionID, "message_id": messageID}
	if err := c.do(ctx, http.MethodPost, "/v1/content", body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// SaveStructured saves a payload held by the caller.
func (c *Client) SaveStructured(ctx context.Context, content models.StructuredContent) (*SavedContent, error) {
	var saved SavedContent
	if err := c.do(ctx, http.MethodPost, "/v1/content", map[string]any{"content": content}, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListContent returns saved content newest first, optionally for one platform.
func (c *Client) ListContent(ctx context.Context, platform *models.Platform) ([]SavedContent, error) {
	path := "/v1/content"
	if platform != nil {
		path += "?platform=" + url.QueryEscape(string(*platform))
	}
	var items []SavedContent
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteContent removes a saved record.
func (c *Client) DeleteContent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/content/"+url.PathEscape(id), nil, nil)
}

// =============================================================================
// STATS
// =============================================================================

// Stats returns the server's in-memory runtime statistics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
