package insights

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/keyword-gap/internal/config"
	"github.com/sells-group/keyword-gap/pkg/anthropic"
	"github.com/sells-group/keyword-gap/pkg/gemini"
	"github.com/sells-group/keyword-gap/pkg/openai"
)

func aiConfig(provider string) config.AIConfig {
	return config.AIConfig{
		Provider:       provider,
		TimeoutSecs:    5,
		MaxTokens:      2000,
		Temperature:    0.7,
		PromptMaxBytes: 8000,
		TopN:           5,
	}
}

func TestNewProvider_Unconfigured(t *testing.T) {
	for _, name := range []string{config.ProviderAnthropic, config.ProviderOpenAI, config.ProviderGemini, "cohere"} {
		t.Run(name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), aiConfig(name))
			require.Error(t, err)
			assert.Nil(t, p)

			perr := Classify(name, err)
			assert.Equal(t, KindUnconfigured, perr.Kind)
			assert.Equal(t, name, perr.Provider)
		})
	}
}

func TestNewProvider_Configured(t *testing.T) {
	cfg := aiConfig(" Anthropic ")
	cfg.Anthropic.Key = "sk-ant"
	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderAnthropic, p.Name())

	cfg = aiConfig(config.ProviderOpenAI)
	cfg.OpenAI = config.OpenAIConfig{Key: "sk-oai", BaseURL: "https://llm.internal/v1/", Model: "gpt-4.1", RequestsPerMinute: 30}
	p, err = NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, p.Name())

	cfg = aiConfig(config.ProviderGemini)
	cfg.Gemini.Key = "g-key"
	p, err = NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderGemini, p.Name())
}

func TestAnthropicProvider_EndToEnd(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "text", "text": "Prioritize the steal list."}],
			"stop_reason": "end_turn", "usage": {"input_tokens": 900, "output_tokens": 40}
		}`))
	}))
	defer srv.Close()

	cfg := aiConfig(config.ProviderAnthropic)
	provider := NewAnthropicProvider(anthropic.NewClient("sk-ant", anthropic.WithBaseURL(srv.URL)), cfg)
	res := NewService(provider, Options{TopN: 5, MaxBytes: 8000}).Generate(context.Background(), sampleSummary(2))

	require.True(t, res.Available, "error: %v", res.Error)
	assert.Equal(t, "Prioritize the steal list.", res.Text)
	assert.Equal(t, anthropic.DefaultModel, body["model"])
	assert.InDelta(t, 2000, body["max_tokens"], 1e-9)
}

func TestOpenAIProvider_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(openai.NewClient("bad", openai.WithBaseURL(srv.URL)), aiConfig(config.ProviderOpenAI))
	res := NewService(provider, Options{}).Generate(context.Background(), sampleSummary(1))

	assert.False(t, res.Available)
	require.NotNil(t, res.Error)
	assert.Equal(t, KindAuth, res.Error.Kind)
	assert.Equal(t, "openai", res.Error.Provider)
}

func TestOpenAIProvider_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	provider := NewOpenAIProvider(openai.NewClient("k", openai.WithBaseURL(url)), aiConfig(config.ProviderOpenAI))
	res := NewService(provider, Options{}).Generate(context.Background(), sampleSummary(1))

	assert.False(t, res.Available)
	require.NotNil(t, res.Error)
	assert.Equal(t, KindNetwork, res.Error.Kind)
}

type recordingGemini struct {
	req gemini.GenerateRequest
}

func (g *recordingGemini) Generate(_ context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	g.req = req
	return &gemini.GenerateResponse{Text: "ok", Model: "gemini-2.5-flash"}, nil
}

func TestTokenBudget(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"configured", 500, 500},
		{"zero uses default", 0, defaultMaxTokens},
		{"negative uses default", -10, defaultMaxTokens},
		{"capped at int32", math.MaxInt32 + 1, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := aiConfig(config.ProviderGemini)
			cfg.MaxTokens = tt.in
			assert.Equal(t, tt.want, tokenBudget(cfg))
		})
	}
}

func TestGeminiProvider_MaxTokensDoesNotOverflow(t *testing.T) {
	cfg := aiConfig(config.ProviderGemini)
	cfg.MaxTokens = math.MaxInt32 + 100

	client := &recordingGemini{}
	text, err := NewGeminiProvider(client, cfg).Complete(context.Background(), Prompt{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(math.MaxInt32), client.req.MaxTokens)
}
