package service

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/raphaelgruber/contentpilot/internal/models"
)

// SessionManager tracks live sessions. Sessions share no mutable state.
type SessionManager struct {
	orch     *Orchestrator
	logger   *slog.Logger
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager backed by orch.
func NewSessionManager(orch *Orchestrator, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		orch:     orch,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session. An empty mode yields the default mode.
func (m *SessionManager) Create(mode models.Mode, platform *models.Platform) (*Session, error) {
	if mode == "" {
		mode = models.DefaultMode
	}
	if err := validateSelection(mode, platform); err != nil {
		return nil, err
	}

	session := NewSession(uuid.NewString(), m.orch, mode, platform)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", session.ID, "mode", mode)
	return session, nil
}

// Get returns a session by ID.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown ID is an error.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.logger.Info("session deleted", "session_id", id)
	return nil
}

// List returns all sessions, most recent first.
func (m *SessionManager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	slices.SortFunc(sessions, func(a, b *Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sessions
}

func validateSelection(mode models.Mode, platform *models.Platform) error {
	sub := Submission{Mode: mode, Platform: platform}
	return sub.Validate()
}
