package models

import "time"

// Role identifies the author of a ChatMessage.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryRole is the role vocabulary expected by the model adapter.
type HistoryRole string

const (
	HistoryRoleUser  HistoryRole = "user"
	HistoryRoleModel HistoryRole = "model"
)

// Image is an opaque binary attachment.
type Image struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mime_type"`
}

// StructuredContent is the validated payload extracted from a standard-mode reply.
// The same shape is the persistence contract for saved content.
type StructuredContent struct {
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	CTA         string   `json:"cta"`
	Hashtags    string   `json:"hashtags"`
	Platform    Platform `json:"platform"`
}

// ChatMessage is one committed entry of a conversation.
// When Structured is set, Content is its rendered display text.
type ChatMessage struct {
	ID         string             `json:"id"`
	Role       Role               `json:"role"`
	Content    string             `json:"content"`
	Image      *Image             `json:"image,omitempty"`
	Structured *StructuredContent `json:"structured_content,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// HistoryTurn is the vendor-neutral wire form of a prior message.
type HistoryTurn struct {
	Role    HistoryRole `json:"role"`
	Content string      `json:"content"`
}
