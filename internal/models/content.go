package models

import (
	"errors"
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SavedContentTable is the record table for saved content.
const SavedContentTable = "saved_content"

// ErrContentNotFound is returned by content stores for unknown IDs.
var ErrContentNotFound = errors.New("saved content not found")

// SavedContent is a persisted StructuredContent record.
type SavedContent struct {
	ID          surrealmodels.RecordID `json:"id"`
	Headline    string                 `json:"headline"`
	Description string                 `json:"description"`
	CTA         string                 `json:"cta"`
	Hashtags    string                 `json:"hashtags"`
	Platform    Platform               `json:"platform"`
	SessionID   string                 `json:"session_id"`
	MessageID   string                 `json:"message_id"`
	CreatedAt   time.Time              `json:"created"`
}

// SavedContentInput carries the fields needed to persist structured content.
type SavedContentInput struct {
	Content   StructuredContent
	SessionID string
	MessageID string
}

// Structured returns the payload of a saved record.
func (s SavedContent) Structured() StructuredContent {
	return StructuredContent{
		Headline:    s.Headline,
		Description: s.Description,
		CTA:         s.CTA,
		Hashtags:    s.Hashtags,
		Platform:    s.Platform,
	}
}

// Key returns the record key without the table prefix.
func (s SavedContent) Key() string {
	key, err := RecordIDString(s.ID)
	if err != nil {
		return fmt.Sprint(s.ID.ID)
	}
	return key
}
