package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validation modes.
const (
	ModeAnalyze  = "analyze"
	ModeInsights = "insights"
)

// Validate checks the settings needed by mode. "analyze" checks thresholds
// and output; "insights" additionally requires the selected provider's key.
// All problems are reported in one error.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case ModeAnalyze:
		problems = c.validateAnalyze(problems)
	case ModeInsights:
		problems = c.validateAnalyze(problems)
		problems = c.validateAI(problems)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateAnalyze(problems []string) []string {
	if err := c.Thresholds.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	switch c.Output.Format {
	case "json", "yaml":
	default:
		problems = append(problems, "output.format must be json or yaml")
	}
	if c.Ingest.MaxWarningsLogged < 0 {
		problems = append(problems, "ingest.max_warnings_logged must be >= 0")
	}
	return problems
}

func (c *Config) validateAI(problems []string) []string {
	switch c.AI.Provider {
	case ProviderAnthropic:
		if c.AI.Anthropic.Key == "" {
			problems = append(problems, "ai.anthropic.key is required")
		}
	case ProviderOpenAI:
		if c.AI.OpenAI.Key == "" {
			problems = append(problems, "ai.openai.key is required")
		}
	case ProviderGemini:
		if c.AI.Gemini.Key == "" {
			problems = append(problems, "ai.gemini.key is required")
		}
	default:
		problems = append(problems, "ai.provider must be one of anthropic, openai, gemini")
	}
	if c.AI.TimeoutSecs <= 0 {
		problems = append(problems, "ai.timeout_secs must be > 0")
	}
	if c.AI.MaxTokens <= 0 {
		problems = append(problems, "ai.max_tokens must be > 0")
	}
	if c.AI.PromptMaxBytes <= 0 {
		problems = append(problems, "ai.prompt_max_bytes must be > 0")
	}
	return problems
}
