package service

import (
	"context"

	"github.com/raphaelgruber/contentpilot/internal/llm"
	"github.com/raphaelgruber/contentpilot/internal/models"
)

// Assistant runs one-shot prompts outside any conversation.
type Assistant struct {
	adapter llm.Adapter
	limits  Limits
}

// NewAssistant creates an assistant. Unset limits fall back to DefaultLimits.
func NewAssistant(adapter llm.Adapter, limits Limits) *Assistant {
	return &Assistant{adapter: adapter, limits: limits.withDefaults()}
}

// Ask sends a single prompt.
func (a *Assistant) Ask(ctx context.Context, prompt string) (llm.Response, error) {
	if _, err := a.limits.validateTurn(Turn{Prompt: prompt}); err != nil {
		return llm.Response{}, err
	}
	resp, err := a.adapter.SinglePrompt(ctx, prompt)
	if err != nil {
		return llm.Response{}, &AdapterError{Err: err}
	}
	return resp, nil
}

// DescribeImage sends a single prompt about a product photo.
func (a *Assistant) DescribeImage(ctx context.Context, prompt string, image models.Image) (llm.Response, error) {
	normalized, err := a.limits.validateTurn(Turn{Prompt: prompt, Image: &image})
	if err != nil {
		return llm.Response{}, err
	}
	resp, err := a.adapter.SinglePromptWithImage(ctx, prompt, *normalized)
	if err != nil {
		return llm.Response{}, &AdapterError{Err: err}
	}
	return resp, nil
}
