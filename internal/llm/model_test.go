package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeLLM records the last request and replies with a canned response.
type fakeLLM struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	reply    string
	info     map[string]any
	err      error
	noChoice bool
	deadline bool
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	if f.noChoice {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply, GenerationInfo: f.info}},
	}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func textOf(t *testing.T, part llms.ContentPart) string {
	t.Helper()
	text, ok := part.(llms.TextContent)
	require.True(t, ok, "expected text part, got %T", part)
	return text.Text
}

func TestChatWithContextBuildsMessages(t *testing.T) {
	fake := &fakeLLM{reply: "ok"}
	m := NewModelFromLLM(fake, "fake", nil, nil)

	history := []models.HistoryTurn{
		{Role: models.HistoryRoleUser, Content: "oi"},
		{Role: models.HistoryRoleModel, Content: "olá"},
	}
	image := &models.Image{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"}

	resp, err := m.ChatWithContext(context.Background(), "system", history, "current", image)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Data)

	require.Len(t, fake.messages, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, fake.messages[0].Role)
	assert.Equal(t, "system", textOf(t, fake.messages[0].Parts[0]))
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, fake.messages[2].Role)
	assert.Equal(t, "olá", textOf(t, fake.messages[2].Parts[0]))

	last := fake.messages[3]
	assert.Equal(t, llms.ChatMessageTypeHuman, last.Role)
	require.Len(t, last.Parts, 2)
	assert.Equal(t, "current", textOf(t, last.Parts[0]))
	bin, ok := last.Parts[1].(llms.BinaryContent)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", bin.MIMEType)
	assert.Equal(t, image.Data, bin.Data)
}

func TestChatWithContextWithoutImageOrSystem(t *testing.T) {
	fake := &fakeLLM{reply: "ok"}
	m := NewModelFromLLM(fake, "fake", nil, nil)

	_, err := m.ChatWithContext(context.Background(), "", nil, "hello", nil)
	require.NoError(t, err)

	require.Len(t, fake.messages, 1)
	assert.Len(t, fake.messages[0].Parts, 1)
}

func TestSinglePromptWithImage(t *testing.T) {
	fake := &fakeLLM{reply: "uma caneca azul"}
	m := NewModelFromLLM(fake, "fake", nil, nil)

	resp, err := m.SinglePromptWithImage(context.Background(), "descreva", models.Image{Data: []byte("png"), MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "uma caneca azul", resp.Data)
	require.Len(t, fake.messages, 1)
	assert.Len(t, fake.messages[0].Parts, 2)
}

func TestUsageRecorded(t *testing.T) {
	tests := []struct {
		name string
		info map[string]any
		want Usage
	}{
		{"openai style", map[string]any{"PromptTokens": 12, "CompletionTokens": 7}, Usage{12, 7}},
		{"anthropic style", map[string]any{"InputTokens": 20, "OutputTokens": 5}, Usage{20, 5}},
		{"bedrock style", map[string]any{"input_tokens": float64(3), "output_tokens": int64(4)}, Usage{3, 4}},
		{"missing", nil, Usage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := metrics.NewCollector()
			m := NewModelFromLLM(&fakeLLM{reply: "x", info: tt.info}, "fake", collector, nil)

			resp, err := m.SinglePrompt(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Usage)

			snap := collector.Snapshot()
			require.NotNil(t, snap.LLMPrompt)
			assert.Equal(t, int64(1), snap.LLMPrompt.Count)
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("fatal provider error", func(t *testing.T) {
		m := NewModelFromLLM(&fakeLLM{err: errors.New("HTTP 401: invalid api key")}, "fake", nil, nil)
		_, err := m.SinglePrompt(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrFatalAPI)
	})

	t.Run("transient provider error", func(t *testing.T) {
		cause := errors.New("connection reset")
		m := NewModelFromLLM(&fakeLLM{err: cause}, "fake", nil, nil)
		_, err := m.SinglePrompt(context.Background(), "hi")
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrFatalAPI)
	})

	t.Run("no choices", func(t *testing.T) {
		m := NewModelFromLLM(&fakeLLM{noChoice: true}, "fake", nil, nil)
		_, err := m.SinglePrompt(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestTimeoutAndMaxTokensApplied(t *testing.T) {
	fake := &fakeLLM{reply: "ok"}
	m := NewModelFromLLM(fake, "fake", nil, nil)
	m.timeout = time.Minute
	m.maxTokens = 256

	_, err := m.SinglePrompt(context.Background(), "hi")
	require.NoError(t, err)
	assert.True(t, fake.deadline)
	assert.Equal(t, 256, fake.options.MaxTokens)
}
