package insights

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/keyword-gap/internal/config"
	"github.com/sells-group/keyword-gap/pkg/anthropic"
	"github.com/sells-group/keyword-gap/pkg/gemini"
	"github.com/sells-group/keyword-gap/pkg/openai"
)

// Provider sends a prompt to a language model and returns its raw text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

// NewProvider builds the provider selected by cfg.Provider. A missing key or
// unknown provider yields an unconfigured AIProviderError.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch name {
	case config.ProviderAnthropic:
		if cfg.Anthropic.Key == "" {
			return nil, Unconfigured(name, "ai.anthropic.key is not set")
		}
		return NewAnthropicProvider(anthropic.NewClient(cfg.Anthropic.Key), cfg), nil

	case config.ProviderOpenAI:
		if cfg.OpenAI.Key == "" {
			return nil, Unconfigured(name, "ai.openai.key is not set")
		}
		opts := []openai.Option{openai.WithRequestsPerMinute(cfg.OpenAI.RequestsPerMinute)}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.OpenAI.BaseURL, "/")))
		}
		if cfg.OpenAI.Model != "" {
			opts = append(opts, openai.WithModel(cfg.OpenAI.Model))
		}
		return NewOpenAIProvider(openai.NewClient(cfg.OpenAI.Key, opts...), cfg), nil

	case config.ProviderGemini:
		if cfg.Gemini.Key == "" {
			return nil, Unconfigured(name, "ai.gemini.key is not set")
		}
		client, err := gemini.NewClient(ctx, cfg.Gemini.Key, cfg.Gemini.Model)
		if err != nil {
			return nil, Classify(name, err)
		}
		return NewGeminiProvider(client, cfg), nil
	}

	return nil, Unconfigured(name, "unknown provider "+strconv.Quote(cfg.Provider))
}

// defaultMaxTokens applies when ai.max_tokens is unset.
const defaultMaxTokens = 2000

// tokenBudget bounds the configured completion budget to a positive value
// every provider API accepts.
func tokenBudget(cfg config.AIConfig) int {
	switch {
	case cfg.MaxTokens <= 0:
		return defaultMaxTokens
	case cfg.MaxTokens > math.MaxInt32:
		return math.MaxInt32
	}
	return cfg.MaxTokens
}

// AnthropicProvider adapts anthropic.Client to Provider.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicProvider wraps client with the request settings from cfg.
func NewAnthropicProvider(client anthropic.Client, cfg config.AIConfig) *AnthropicProvider {
	model := cfg.Anthropic.Model
	if model == "" {
		model = anthropic.DefaultModel
	}
	return &AnthropicProvider{
		client:      client,
		model:       model,
		maxTokens:   int64(tokenBudget(cfg)),
		temperature: cfg.Temperature,
	}
}

func (p *AnthropicProvider) Name() string { return config.ProviderAnthropic }

func (p *AnthropicProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	temp := p.temperature
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		System:      []anthropic.SystemBlock{{Text: prompt.System}},
		Messages:    []anthropic.Message{{Role: "user", Content: prompt.User}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(p.model, "insights")
	return resp.Text(), nil
}

// OpenAIProvider adapts openai.Client to Provider.
type OpenAIProvider struct {
	client      openai.Client
	maxTokens   int
	temperature float64
}

// NewOpenAIProvider wraps client with the request settings from cfg.
func NewOpenAIProvider(client openai.Client, cfg config.AIConfig) *OpenAIProvider {
	return &OpenAIProvider{client: client, maxTokens: tokenBudget(cfg), temperature: cfg.Temperature}
}

func (p *OpenAIProvider) Name() string { return config.ProviderOpenAI }

func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	temp, maxTokens := p.temperature, p.maxTokens
	resp, err := p.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Messages: []openai.Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", err
	}
	zap.L().Info("insights: token usage",
		zap.String("provider", p.Name()),
		zap.String("model", resp.Model),
		zap.Int("input_tokens", resp.Usage.PromptTokens),
		zap.Int("output_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Text(), nil
}

// GeminiProvider adapts gemini.Client to Provider.
type GeminiProvider struct {
	client      gemini.Client
	maxTokens   int32
	temperature float32
}

// NewGeminiProvider wraps client with the request settings from cfg.
func NewGeminiProvider(client gemini.Client, cfg config.AIConfig) *GeminiProvider {
	return &GeminiProvider{
		client:      client,
		maxTokens:   int32(tokenBudget(cfg)), //nolint:gosec // tokenBudget caps at MaxInt32
		temperature: float32(cfg.Temperature),
	}
}

func (p *GeminiProvider) Name() string { return config.ProviderGemini }

func (p *GeminiProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	temp := p.temperature
	resp, err := p.client.Generate(ctx, gemini.GenerateRequest{
		System:      prompt.System,
		Prompt:      prompt.User,
		MaxTokens:   p.maxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	zap.L().Info("insights: token usage",
		zap.String("provider", p.Name()),
		zap.String("model", resp.Model),
		zap.Int32("input_tokens", resp.InputTokens),
		zap.Int32("output_tokens", resp.OutputTokens),
	)
	return resp.Text, nil
}
