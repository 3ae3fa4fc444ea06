package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"javadocgen/internal/domain/errors/domain"
	"javadocgen/internal/domain/valueobject"

	"github.com/spf13/viper"
)

// Backend providers.
const (
	ProviderChat   = "chat"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Provider-specific environment variables consulted when backend.api_key is unset.
const (
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
)

const minBodyExcerptLimit = 64

// Config holds the complete application configuration.
type Config struct {
	Backend    BackendConfig    `mapstructure:"backend"`
	Generation GenerationConfig `mapstructure:"generation"`
	Collector  CollectorConfig  `mapstructure:"collector"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Formatter  FormatterConfig  `mapstructure:"formatter"`
	Log        LogConfig        `mapstructure:"log"`
}

// BackendConfig selects and configures the generation backend.
type BackendConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	StopPath    string        `mapstructure:"stop_path"` // chat backend only
}

// GenerationConfig bounds the generation requests of a run.
type GenerationConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CacheSize      int           `mapstructure:"cache_size"` // 0 disables the cache
}

// CollectorConfig selects the declarations to document.
type CollectorConfig struct {
	BlankLineThreshold int      `mapstructure:"blank_line_threshold"`
	Kinds              []string `mapstructure:"kinds"`
}

// ExtractorConfig bounds the context sent for each declaration.
type ExtractorConfig struct {
	BodyExcerptLimit     int `mapstructure:"body_excerpt_limit"`
	MaxDeclarationTokens int `mapstructure:"max_declaration_tokens"` // 0 disables the check
}

// FormatterConfig configures the external reformatter.
type FormatterConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Command string        `mapstructure:"command"`
	TabStop int           `mapstructure:"tab_stop"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend.provider", ProviderChat)
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.model", "")
	v.SetDefault("backend.temperature", 0.8)
	v.SetDefault("backend.timeout", "120s")
	v.SetDefault("backend.max_retries", 3)
	v.SetDefault("backend.stop_path", "/stop")

	v.SetDefault("generation.concurrency", 4)
	v.SetDefault("generation.request_timeout", "120s")
	v.SetDefault("generation.cache_size", 256)

	v.SetDefault("collector.blank_line_threshold", 1)
	v.SetDefault("collector.kinds", []string{"class", "interface", "enum", "record", "annotation", "method", "constructor"})

	v.SetDefault("extractor.body_excerpt_limit", 4096)
	v.SetDefault("extractor.max_declaration_tokens", 2048)

	v.SetDefault("formatter.enabled", true)
	v.SetDefault("formatter.command", "vim")
	v.SetDefault("formatter.tab_stop", 4)
	v.SetDefault("formatter.timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
}

// Load decodes and validates the configuration held by v. An empty
// backend.api_key is filled from the provider's conventional environment variable.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("%w: unable to decode config: %w", domain.ErrInvalidConfig, err)
	}

	config.Backend.Provider = strings.ToLower(strings.TrimSpace(config.Backend.Provider))
	if config.Backend.APIKey == "" {
		config.Backend.APIKey = providerAPIKey(config.Backend.Provider)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func providerAPIKey(provider string) string {
	switch provider {
	case ProviderChat:
		return os.Getenv(EnvDeepSeekAPIKey)
	case ProviderGemini:
		return os.Getenv(EnvGeminiAPIKey)
	default:
		return ""
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend.Provider {
	case ProviderChat, ProviderGemini:
		if strings.TrimSpace(c.Backend.APIKey) == "" {
			errs = append(errs, fmt.Errorf("backend.api_key is required for provider %q", c.Backend.Provider))
		}
	case ProviderMock:
	default:
		errs = append(errs, fmt.Errorf("backend.provider must be one of chat, gemini, mock; got %q", c.Backend.Provider))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout cannot be negative"))
	}
	if c.Backend.MaxRetries < 0 {
		errs = append(errs, errors.New("backend.max_retries cannot be negative"))
	}
	if c.Backend.Temperature < 0 || c.Backend.Temperature > 2 {
		errs = append(errs, errors.New("backend.temperature must be between 0 and 2"))
	}

	if c.Generation.Concurrency < 1 {
		errs = append(errs, errors.New("generation.concurrency must be at least 1"))
	}
	if c.Generation.RequestTimeout < 0 {
		errs = append(errs, errors.New("generation.request_timeout cannot be negative"))
	}
	if c.Generation.CacheSize < 0 {
		errs = append(errs, errors.New("generation.cache_size cannot be negative"))
	}

	if c.Collector.BlankLineThreshold < 1 {
		errs = append(errs, errors.New("collector.blank_line_threshold must be at least 1"))
	}
	if _, err := c.Collector.DeclarationKinds(); err != nil {
		errs = append(errs, fmt.Errorf("collector.kinds: %w", err))
	}

	if c.Extractor.BodyExcerptLimit < minBodyExcerptLimit {
		errs = append(errs, fmt.Errorf("extractor.body_excerpt_limit must be at least %d", minBodyExcerptLimit))
	}
	if c.Extractor.MaxDeclarationTokens < 0 {
		errs = append(errs, errors.New("extractor.max_declaration_tokens cannot be negative"))
	}

	if c.Formatter.Enabled && strings.TrimSpace(c.Formatter.Command) == "" {
		errs = append(errs, errors.New("formatter.command is required when the formatter is enabled"))
	}
	if c.Formatter.TabStop < 0 || c.Formatter.Timeout < 0 {
		errs = append(errs, errors.New("formatter.tab_stop and formatter.timeout cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// DeclarationKinds parses the configured kinds, dropping duplicates.
func (c CollectorConfig) DeclarationKinds() ([]valueobject.DeclarationKind, error) {
	seen := make(map[valueobject.DeclarationKind]bool, len(c.Kinds))
	kinds := make([]valueobject.DeclarationKind, 0, len(c.Kinds))
	for _, name := range c.Kinds {
		kind, err := valueobject.ParseDeclarationKind(name)
		if err != nil {
			return nil, err
		}
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}
