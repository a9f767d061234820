package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/keyword-gap/internal/model"
)

// Supported AI providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig            `yaml:"log" mapstructure:"log"`
	Thresholds model.AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Ingest     IngestConfig         `yaml:"ingest" mapstructure:"ingest"`
	AI         AIConfig             `yaml:"ai" mapstructure:"ai"`
	Output     OutputConfig         `yaml:"output" mapstructure:"output"`
}

// IngestConfig controls how input files are read.
type IngestConfig struct {
	SheetName         string `yaml:"sheet_name" mapstructure:"sheet_name"`
	MaxWarningsLogged int    `yaml:"max_warnings_logged" mapstructure:"max_warnings_logged"`
}

// AIConfig selects and configures the insights provider.
type AIConfig struct {
	Provider       string          `yaml:"provider" mapstructure:"provider"`
	TimeoutSecs    int             `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTokens      int             `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64         `yaml:"temperature" mapstructure:"temperature"`
	PromptMaxBytes int             `yaml:"prompt_max_bytes" mapstructure:"prompt_max_bytes"`
	TopN           int             `yaml:"top_n" mapstructure:"top_n"`
	Anthropic      AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI         OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Gemini         GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
}

// Timeout returns the request timeout as a duration.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds settings for an OpenAI-compatible chat completions API.
type OpenAIConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	Model             string `yaml:"model" mapstructure:"model"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OutputConfig controls where and how reports are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
	// MarkdownStyle is a glamour style name used by --render ("dark",
	// "light", "notty", "auto", ...).
	MarkdownStyle string `yaml:"markdown_style" mapstructure:"markdown_style"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded into the environment first when present.
func Load() (*Config, error) {
	// Missing .env is fine; existing env vars win over the file.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KEYWORDGAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	defaults := model.DefaultAnalysisConfig()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("analysis.min_search_volume", defaults.MinSearchVolume)
	v.SetDefault("analysis.max_keyword_difficulty", defaults.MaxKeywordDifficulty)
	v.SetDefault("analysis.quick_win_threshold", defaults.QuickWinThreshold)
	v.SetDefault("analysis.defensive_threshold", defaults.DefensiveThreshold)
	v.SetDefault("analysis.long_term_threshold", defaults.LongTermThreshold)
	v.SetDefault("analysis.max_measured_position", defaults.MaxMeasuredPosition)
	v.SetDefault("ingest.sheet_name", "")
	v.SetDefault("ingest.max_warnings_logged", 20)
	v.SetDefault("ai.provider", ProviderAnthropic)
	v.SetDefault("ai.timeout_secs", 120)
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.prompt_max_bytes", 8000)
	v.SetDefault("ai.top_n", 5)
	v.SetDefault("ai.anthropic.key", "")
	v.SetDefault("ai.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("ai.openai.key", "")
	v.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.requests_per_minute", 60)
	v.SetDefault("ai.gemini.key", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", "json")
	v.SetDefault("output.markdown_style", "dark")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
