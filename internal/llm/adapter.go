// Package llm is the model adapter boundary. The conversation core talks to
// Adapter; Model implements it on top of langchaingo providers.
package llm

import (
	"context"

	"github.com/raphaelgruber/contentpilot/internal/models"
)

// Adapter is the vendor-neutral text generation contract.
type Adapter interface {
	// SinglePrompt sends one prompt with no history.
	SinglePrompt(ctx context.Context, prompt string) (Response, error)
	// SinglePromptWithImage sends one prompt with an attached image.
	SinglePromptWithImage(ctx context.Context, prompt string, image models.Image) (Response, error)
	// ChatWithContext sends a system instruction, prior turns, the current
	// instruction and an optional image.
	ChatWithContext(ctx context.Context, systemPrompt string, history []models.HistoryTurn, current string, image *models.Image) (Response, error)
}

// Response is the adapter's reply.
type Response struct {
	Data  string `json:"data"`
	Usage Usage  `json:"usage"`
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}
