// Package gemini wraps the Google GenAI SDK for single-turn text generation.
package gemini

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Client generates text from a prompt.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is a single-turn generation request.
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int32
	Temperature *float32
}

// GenerateResponse carries the generated text and token counts.
type GenerateResponse struct {
	Text         string
	Model        string
	InputTokens  int32
	OutputTokens int32
}

// APIError is returned when the API answers with an error status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return "gemini: generate content: " + e.Message
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Option configures the client.
type Option func(*genai.ClientConfig)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = url
	}
}

type sdkClient struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini API client. An empty model selects the default.
func NewClient(ctx context.Context, apiKey, model string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	if model == "" {
		model = defaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, o := range opts {
		o(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: client, model: model}, nil
}

func (c *sdkClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, convertError(err)
	}

	out := &GenerateResponse{
		Text:  resp.Text(),
		Model: model,
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = resp.UsageMetadata.PromptTokenCount
		out.OutputTokens = resp.UsageMetadata.CandidatesTokenCount
	}
	return out, nil
}

func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return eris.Wrap(err, "gemini: generate content")
}
