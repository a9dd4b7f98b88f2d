package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/raphaelgruber/contentpilot/internal/parser"
)

// ContentStore persists saved structured content.
type ContentStore interface {
	CreateContent(ctx context.Context, input models.SavedContentInput) (*models.SavedContent, error)
	// ListContent returns records newest first, optionally filtered by platform.
	ListContent(ctx context.Context, platform *models.Platform) ([]models.SavedContent, error)
	// DeleteContent removes a record. Unknown IDs return models.ErrContentNotFound.
	DeleteContent(ctx context.Context, id string) error
}

// ContentLibrary saves structured replies from sessions.
type ContentLibrary struct {
	store    ContentStore
	sessions *SessionManager
	logger   *slog.Logger
}

// NewContentLibrary creates a content library.
func NewContentLibrary(store ContentStore, sessions *SessionManager, logger *slog.Logger) *ContentLibrary {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentLibrary{store: store, sessions: sessions, logger: logger}
}

// Save persists the structured payload of a session message.
func (l *ContentLibrary) Save(ctx context.Context, sessionID, messageID string) (*models.SavedContent, error) {
	session, err := l.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	msg, err := session.Message(messageID)
	if err != nil {
		return nil, err
	}
	if msg.Structured == nil {
		return nil, ErrNoStructuredContent
	}

	return l.SaveStructured(ctx, models.SavedContentInput{
		Content:   *msg.Structured,
		SessionID: sessionID,
		MessageID: messageID,
	})
}

// SaveStructured persists a payload supplied directly, e.g. by a stateless client.
func (l *ContentLibrary) SaveStructured(ctx context.Context, input models.SavedContentInput) (*models.SavedContent, error) {
	if err := parser.Validate(input.Content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	saved, err := l.store.CreateContent(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	l.logger.Info("content saved", "platform", input.Content.Platform, "session_id", input.SessionID)
	return saved, nil
}

// List returns saved content newest first.
func (l *ContentLibrary) List(ctx context.Context, platform *models.Platform) ([]models.SavedContent, error) {
	if platform != nil && !platform.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownPlatform, *platform)
	}
	return l.store.ListContent(ctx, platform)
}

// Delete removes saved content by ID.
func (l *ContentLibrary) Delete(ctx context.Context, id string) error {
	return l.store.DeleteContent(ctx, id)
}

// MemoryContentStore is a process-local ContentStore.
type MemoryContentStore struct {
	mu      sync.RWMutex
	records map[string]models.SavedContent
	now     func() time.Time
}

var _ ContentStore = (*MemoryContentStore)(nil)

// NewMemoryContentStore creates an empty in-memory store.
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{
		records: make(map[string]models.SavedContent),
		now:     time.Now,
	}
}

func (s *MemoryContentStore) CreateContent(_ context.Context, input models.SavedContentInput) (*models.SavedContent, error) {
	id := uuid.NewString()
	c := input.Content
	record := models.SavedContent{
		ID:          models.ContentRecordID(id),
		Headline:    c.Headline,
		Description: c.Description,
		CTA:         c.CTA,
		Hashtags:    c.Hashtags,
		Platform:    c.Platform,
		SessionID:   input.SessionID,
		MessageID:   input.MessageID,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	s.records[id] = record
	s.mu.Unlock()

	return &record, nil
}

func (s *MemoryContentStore) ListContent(_ context.Context, platform *models.Platform) ([]models.SavedContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SavedContent, 0, len(s.records))
	for _, r := range s.records {
		if platform != nil && r.Platform != *platform {
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b models.SavedContent) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *MemoryContentStore) DeleteContent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return models.ErrContentNotFound
	}
	delete(s.records, id)
	return nil
}
