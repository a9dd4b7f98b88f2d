package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantAsk(t *testing.T) {
	adapter := &fakeAdapter{reply: "Use vídeos curtos."}
	a := NewAssistant(adapter, Limits{})

	resp, err := a.Ask(context.Background(), "Dicas para o TikTok?")
	require.NoError(t, err)
	assert.Equal(t, "Use vídeos curtos.", resp.Data)
	assert.Equal(t, []string{"Dicas para o TikTok?"}, adapter.prompts)

	_, err = a.Ask(context.Background(), "")
	assert.ErrorIs(t, err, ErrPromptEmpty)
	assert.Len(t, adapter.prompts, 1)
}

func TestAssistantDescribeImage(t *testing.T) {
	adapter := &fakeAdapter{reply: "Uma caneca azul."}
	a := NewAssistant(adapter, Limits{})

	resp, err := a.DescribeImage(context.Background(), "Descreva", models.Image{Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "Uma caneca azul.", resp.Data)
	require.Equal(t, 1, adapter.callCount())
	assert.Equal(t, "image/png", adapter.lastCall().Image.MIMEType)

	_, err = a.DescribeImage(context.Background(), "Descreva", models.Image{Data: []byte("not an image")})
	assert.ErrorIs(t, err, ErrImageType)
}

func TestAssistantAdapterError(t *testing.T) {
	a := NewAssistant(&fakeAdapter{err: errors.New("connection refused")}, Limits{})

	_, err := a.Ask(context.Background(), "oi")
	assert.ErrorIs(t, err, ErrAdapter)
	assert.Equal(t, "connection refused", UserMessage(err))
}

func TestPartialLimitsKeepDefaults(t *testing.T) {
	partial := Limits{MaxImageBytes: 1024}
	long := strings.Repeat("a", DefaultLimits().MaxPromptChars+1)

	orch := NewOrchestrator(&fakeAdapter{}, OrchestratorConfig{Limits: partial})
	assert.Equal(t, Limits{MaxPromptChars: DefaultLimits().MaxPromptChars, MaxImageBytes: 1024}, orch.Limits())

	_, _, err := orch.Prepare(NewState(models.ModeViral, nil), Turn{Prompt: long})
	assert.ErrorIs(t, err, ErrPromptTooLong)

	adapter := &fakeAdapter{reply: "ok"}
	a := NewAssistant(adapter, partial)
	_, err = a.Ask(context.Background(), long)
	assert.ErrorIs(t, err, ErrPromptTooLong)
	assert.Empty(t, adapter.prompts)
}
