package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/contentpilot/internal/config"
	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo model and implements Adapter.
type Model struct {
	llm       llms.Model
	modelName string
	timeout   time.Duration
	maxTokens int
	metrics   *metrics.Collector
	logger    *slog.Logger
}

var _ Adapter = (*Model)(nil)

// NewModel creates a model for the configured provider.
// collector may be nil.
func NewModel(ctx context.Context, cfg config.Config, collector *metrics.Collector, logger *slog.Logger) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	m := NewModelFromLLM(model, cfg.LLMModel, collector, logger)
	m.timeout = cfg.LLMTimeout
	m.maxTokens = cfg.LLMMaxTokens
	return m, nil
}

// NewModelFromLLM wraps an existing langchaingo model.
func NewModelFromLLM(model llms.Model, modelName string, collector *metrics.Collector, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		llm:       model,
		modelName: modelName,
		metrics:   collector,
		logger:    logger,
	}
}

// Model returns the model name.
func (m *Model) Model() string {
	return m.modelName
}

// SinglePrompt implements Adapter.
func (m *Model) SinglePrompt(ctx context.Context, prompt string) (Response, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	return m.generate(ctx, metrics.OpLLMPrompt, messages)
}

// SinglePromptWithImage implements Adapter.
func (m *Model) SinglePromptWithImage(ctx context.Context, prompt string, image models.Image) (Response, error) {
	messages := []llms.MessageContent{
		humanMessage(prompt, &image),
	}
	return m.generate(ctx, metrics.OpLLMPrompt, messages)
}

// ChatWithContext implements Adapter.
func (m *Model) ChatWithContext(ctx context.Context, systemPrompt string, history []models.HistoryTurn, current string, image *models.Image) (Response, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	for _, turn := range history {
		messages = append(messages, llms.TextParts(chatRole(turn.Role), turn.Content))
	}
	messages = append(messages, humanMessage(current, image))

	return m.generate(ctx, metrics.OpLLMChat, messages)
}

func (m *Model) generate(ctx context.Context, op string, messages []llms.MessageContent) (Response, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var opts []llms.CallOption
	if m.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(m.maxTokens))
	}

	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, messages, opts...)
	duration := time.Since(start)

	if err != nil {
		m.logger.Warn("llm request failed", "op", op, "model", m.modelName, "duration_ms", duration.Milliseconds(), "error", err)
		return Response{}, fmt.Errorf("generate: %w", wrapFatalError(err))
	}
	if len(resp.Choices) == 0 {
		return Response{}, ErrEmptyResponse
	}

	choice := resp.Choices[0]
	usage := usageFrom(choice.GenerationInfo)
	if m.metrics != nil {
		m.metrics.RecordLLMUsage(op, duration, usage.InputTokens, usage.OutputTokens)
	}

	m.logger.Debug("llm request completed",
		"op", op,
		"model", m.modelName,
		"messages", len(messages),
		"duration_ms", duration.Milliseconds(),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)

	return Response{Data: choice.Content, Usage: usage}, nil
}

func humanMessage(text string, image *models.Image) llms.MessageContent {
	parts := []llms.ContentPart{llms.TextContent{Text: text}}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, llms.BinaryPart(image.MIMEType, image.Data))
	}
	return llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts}
}

func chatRole(role models.HistoryRole) llms.ChatMessageType {
	if role == models.HistoryRoleModel {
		return llms.ChatMessageTypeAI
	}
	return llms.ChatMessageTypeHuman
}

// Providers report token counts under different keys.
var (
	inputTokenKeys  = []string{"InputTokens", "PromptTokens", "input_tokens", "prompt_tokens"}
	outputTokenKeys = []string{"OutputTokens", "CompletionTokens", "output_tokens", "completion_tokens"}
)

func usageFrom(info map[string]any) Usage {
	return Usage{
		InputTokens:  firstCount(info, inputTokenKeys),
		OutputTokens: firstCount(info, outputTokenKeys),
	}
}

func firstCount(info map[string]any, keys []string) int64 {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
