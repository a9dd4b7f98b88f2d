package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// ContentStore persists saved content in the saved_content table.
type ContentStore struct {
	client  *Client
	metrics *metrics.Collector
}

// NewContentStore creates a store on an open client. collector may be nil.
func NewContentStore(client *Client, collector *metrics.Collector) *ContentStore {
	return &ContentStore{client: client, metrics: collector}
}

func (s *ContentStore) observe(start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordTiming(metrics.OpDBQuery, time.Since(start))
	}
}

// CreateContent inserts a record with a fresh ID and returns it.
func (s *ContentStore) CreateContent(ctx context.Context, input models.SavedContentInput) (*models.SavedContent, error) {
	defer s.observe(time.Now())

	c := input.Content
	results, err := surrealdb.Query[[]models.SavedContent](ctx, s.client.db, `
		CREATE type::record("saved_content", $id) SET
			headline = $headline,
			description = $description,
			cta = $cta,
			hashtags = $hashtags,
			platform = $platform,
			session_id = $session_id,
			message_id = $message_id,
			created = time::now()
		RETURN AFTER
	`, map[string]any{
		"id":          uuid.NewString(),
		"headline":    c.Headline,
		"description": c.Description,
		"cta":         c.CTA,
		"hashtags":    c.Hashtags,
		"platform":    string(c.Platform),
		"session_id":  input.SessionID,
		"message_id":  input.MessageID,
	})
	if err != nil {
		return nil, fmt.Errorf("create content: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create content: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// ListContent returns records newest first, optionally filtered by platform.
func (s *ContentStore) ListContent(ctx context.Context, platform *models.Platform) ([]models.SavedContent, error) {
	defer s.observe(time.Now())

	where := ""
	vars := map[string]any{}
	if platform != nil {
		where = "WHERE platform = $platform"
		vars["platform"] = string(*platform)
	}

	sql := fmt.Sprintf(`SELECT * FROM saved_content %s ORDER BY created DESC`, where)

	results, err := surrealdb.Query[[]models.SavedContent](ctx, s.client.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.SavedContent{}, nil
	}
	return (*results)[0].Result, nil
}

// DeleteContent removes one record. Unknown IDs return ErrNotFound.
func (s *ContentStore) DeleteContent(ctx context.Context, id string) error {
	defer s.observe(time.Now())

	results, err := surrealdb.Query[[]models.SavedContent](ctx, s.client.db, `
		DELETE type::record("saved_content", $id) RETURN BEFORE
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete content: %w", wrapQueryError(err))
	}

	// RETURN BEFORE yields the deleted records
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("delete content %q: %w", id, ErrNotFound)
	}
	return nil
}
