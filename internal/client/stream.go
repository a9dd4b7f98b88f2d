package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TurnStream is an open websocket to one session. Submit calls must not
// overlap; the server answers an overlapping turn with turn_in_flight.
type TurnStream struct {
	SessionID string

	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// OpenSession connects to a session's websocket.
func (c *Client) OpenSession(ctx context.Context, id string) (*TurnStream, error) {
	wsEndpoint := c.baseURL
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint + "/v1/sessions/" + url.PathEscape(id) + "/ws")
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Code: "websocket", Message: err.Error()}
		}
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	return &TurnStream{SessionID: id, conn: conn}, nil
}

// Submit sends a turn and waits for its result. A failed turn returns the
// result together with an *APIError carrying the server's message.
// Cancelling ctx closes the stream, which abandons the turn server-side.
func (s *TurnStream) Submit(ctx context.Context, turn Turn) (*TurnResult, error) {
	if err := s.conn.WriteJSON(turn); err != nil {
		return nil, fmt.Errorf("send turn: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-done:
		}
	}()

	var result TurnResult
	if err := s.conn.ReadJSON(&result); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read turn result: %w", err)
	}
	if result.Error != "" {
		return &result, &APIError{Code: result.Code, Message: result.Error}
	}
	return &result, nil
}

// Close closes the websocket. It is safe to call more than once.
func (s *TurnStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return s.conn.Close()
}

// SubmitTurn runs a single turn over a short-lived websocket.
func (c *Client) SubmitTurn(ctx context.Context, sessionID string, turn Turn) (*TurnResult, error) {
	stream, err := c.OpenSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return stream.Submit(ctx, turn)
}
