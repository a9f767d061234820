// Package insights turns an aggregated analysis summary into a prompt, sends
// it to a configured language model, and reports the outcome without ever
// failing the analysis it describes.
package insights

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/keyword-gap/internal/model"
)

// Result is the outcome of one insights request. Text is the provider's raw
// response when Available is true; Error is set otherwise.
type Result struct {
	Available bool             `json:"available" yaml:"available"`
	Provider  string           `json:"provider,omitempty" yaml:"provider,omitempty"`
	Text      string           `json:"text,omitempty" yaml:"text,omitempty"`
	Error     *AIProviderError `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed   time.Duration    `json:"elapsed_ns,omitempty" yaml:"elapsed_ns,omitempty"`
}

// Options bounds the prompt and the request.
type Options struct {
	TopN     int
	MaxBytes int
	Timeout  time.Duration
}

// Service generates insights with a single provider.
type Service struct {
	provider Provider
	setupErr *AIProviderError
	opts     Options
}

// NewService returns a Service backed by provider.
func NewService(provider Provider, opts Options) *Service {
	return &Service{provider: provider, opts: opts}
}

// Unavailable returns a Service whose every Generate call reports err. Used
// when the provider could not be constructed.
func Unavailable(err error) *Service {
	return &Service{setupErr: Classify("", err)}
}

// Generate builds the prompt from summary and sends it. It never returns an
// error; failures are reported in Result.Error.
func (s *Service) Generate(ctx context.Context, summary model.Summary) Result {
	if s.setupErr != nil {
		return Result{Provider: s.setupErr.Provider, Error: s.setupErr}
	}
	if s.provider == nil {
		return Result{Error: Unconfigured("", "no provider configured")}
	}

	name := s.provider.Name()
	prompt := BuildPrompt(summary, s.opts.TopN, s.opts.MaxBytes)

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	log := zap.L().With(zap.String("provider", name))
	log.Info("insights: requesting", zap.Int("prompt_bytes", prompt.Len()))

	start := time.Now()
	text, err := s.provider.Complete(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		perr := Classify(name, err)
		log.Warn("insights: request failed",
			zap.String("kind", string(perr.Kind)),
			zap.Int("status", perr.StatusCode),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return Result{Provider: name, Error: perr, Elapsed: elapsed}
	}

	log.Info("insights: received", zap.Int("response_bytes", len(text)), zap.Duration("elapsed", elapsed))
	return Result{Available: true, Provider: name, Text: text, Elapsed: elapsed}
}
