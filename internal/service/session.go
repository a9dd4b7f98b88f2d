package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/raphaelgruber/contentpilot/internal/models"
)

// Session owns one conversation and enforces a single in-flight turn.
type Session struct {
	ID        string
	CreatedAt time.Time

	orch *Orchestrator

	mu    sync.Mutex
	state State
	busy  bool
}

// NewSession creates a session around an empty conversation.
func NewSession(id string, orch *Orchestrator, mode models.Mode, platform *models.Platform) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		orch:      orch,
		state:     NewState(mode, platform),
	}
}

// Submit runs one turn. A submission while another turn is in flight is
// rejected with ErrTurnInFlight. The user message is visible to readers as
// soon as the turn is dispatched; the reply is committed only on success.
func (s *Session) Submit(ctx context.Context, turn Turn) Outcome {
	return s.SubmitWith(ctx, Selection{}, turn)
}

// Selection switches mode or platform together with a turn. Nil fields keep
// the session's current value.
type Selection struct {
	Mode     *models.Mode
	Platform *models.Platform
}

// SubmitWith runs one turn under sel. The switches are kept only when the
// turn is accepted; a rejected turn leaves the session untouched.
func (s *Session) SubmitWith(ctx context.Context, sel Selection, turn Turn) Outcome {
	if sel.Mode != nil && !sel.Mode.Valid() {
		return Outcome{Err: fmt.Errorf("%w: %q", models.ErrUnknownMode, *sel.Mode)}
	}
	if sel.Platform != nil && !sel.Platform.Valid() {
		return Outcome{Err: fmt.Errorf("%w: %q", models.ErrUnknownPlatform, *sel.Platform)}
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Outcome{Err: ErrTurnInFlight}
	}
	candidate := s.state
	if sel.Mode != nil {
		candidate.Mode = *sel.Mode
	}
	if sel.Platform != nil {
		p := *sel.Platform
		candidate.Platform = &p
	}
	next, req, err := s.orch.Prepare(candidate, turn)
	if err != nil {
		s.mu.Unlock()
		return Outcome{Err: err}
	}
	s.state = next
	s.busy = true
	s.mu.Unlock()

	resp, dispatchErr := s.orch.Dispatch(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if ctxErr := ctx.Err(); ctxErr != nil {
		return s.orch.abandon(req, ctxErr)
	}

	var out Outcome
	s.state, out = s.orch.Complete(s.state, req, resp, dispatchErr)
	return out
}

// Busy reports whether a turn is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// SetMode changes the mode used from the next turn on.
func (s *Session) SetMode(mode models.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownMode, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Mode = mode
	return nil
}

// SetPlatform changes the platform used from the next turn on.
// nil clears the selection.
func (s *Session) SetPlatform(platform *models.Platform) error {
	if platform != nil && !platform.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownPlatform, *platform)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if platform == nil {
		s.state.Platform = nil
		return nil
	}
	p := *platform
	s.state.Platform = &p
	return nil
}

// Snapshot returns a copy of the conversation state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Messages = slices.Clone(s.state.Messages)
	if s.state.Platform != nil {
		p := *s.state.Platform
		out.Platform = &p
	}
	return out
}

// Messages returns a copy of the committed messages.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Messages)
}

// Message finds a committed message by ID.
func (s *Session) Message(id string) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.state.Messages {
		if m.ID == id {
			return m, nil
		}
	}
	return models.ChatMessage{}, ErrMessageNotFound
}
