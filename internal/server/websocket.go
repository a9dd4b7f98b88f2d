package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/contentpilot/internal/service"
)

// socketConn serializes writes; gorilla allows one concurrent writer.
type socketConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *socketConn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// handleSessionSocket streams turns over a websocket. Every inbound frame is a
// turn and gets exactly one turnResponse frame back. A frame that arrives
// while a turn is running is answered with turn_in_flight. Closing the socket
// abandons the running turn.
func (a *api) handleSessionSocket(w http.ResponseWriter, r *http.Request) {
	session, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.handleError(w, r, err)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "session_id", session.ID, "error", err)
		return
	}
	conn.SetReadLimit(a.maxBody)
	sc := &socketConn{conn: conn}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		conn.Close()
	}()

	a.logger.Debug("websocket connected", "session_id", session.ID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.logger.Debug("websocket closed", "session_id", session.ID, "error", err)
			return
		}

		var turn service.Turn
		if err := json.Unmarshal(data, &turn); err != nil {
			_ = sc.send(turnResponse{SessionID: session.ID, Error: "invalid frame", Code: "invalid_request"})
			continue
		}

		wg.Add(1)
		go func(turn service.Turn) {
			defer wg.Done()
			out := session.Submit(ctx, turn)
			if err := sc.send(newTurnResponse(session.ID, out)); err != nil {
				a.logger.Debug("websocket write failed", "session_id", session.ID, "error", err)
			}
		}(turn)
	}
}
