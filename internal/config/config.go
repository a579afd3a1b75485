package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/rznies/lingoSir/internal/language"
	"github.com/rznies/lingoSir/internal/translation"
)

// Translation modes accepted in TRANSLATION_MODE.
const (
	ModeSDK    = "sdk"
	ModeCLI    = "cli"
	ModeHybrid = "hybrid"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	TranslationMode string `envconfig:"TRANSLATION_MODE" default:"sdk"`
	SourceLocale    string `envconfig:"SOURCE_LOCALE" default:"en"`

	LingoAPIKey   string `envconfig:"LINGODOTDEV_API_KEY" default:""`
	LingoAPIURL   string `envconfig:"LINGODOTDEV_API_URL" default:"https://engine.lingo.dev"`
	APIProvider   string `envconfig:"TRANSLATION_API_PROVIDER" default:"lingo"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`

	BreakerFailures uint32        `envconfig:"API_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"API_BREAKER_COOLDOWN" default:"30s"`

	CLIBatchSize      int           `envconfig:"CLI_BATCH_SIZE" default:"3"`
	CLIConcurrent     bool          `envconfig:"CLI_CONCURRENT" default:"true"`
	CLIPipelined      bool          `envconfig:"CLI_PIPELINED" default:"false"`
	CLICommandName    string        `envconfig:"CLI_COMMAND" default:"npx"`
	CLIArgs           []string      `envconfig:"CLI_ARGS" default:"lingo.dev@latest,i18n"`
	CLIVersionArgs    []string      `envconfig:"CLI_VERSION_ARGS" default:"lingo.dev@latest,--version"`
	CLITimeout        time.Duration `envconfig:"CLI_TIMEOUT" default:"30s"`
	CLIVersionTimeout time.Duration `envconfig:"CLI_VERSION_TIMEOUT" default:"10s"`
	CLIWorkspaceRoot  string        `envconfig:"CLI_WORKSPACE_ROOT" default:""`

	DetectSourceLanguage bool `envconfig:"DETECT_SOURCE_LANGUAGE" default:"false"`

	Host               string `envconfig:"HOST" default:"0.0.0.0"`
	Port               int    `envconfig:"PORT" default:"3001"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.TranslationMode = strings.ToLower(strings.TrimSpace(c.TranslationMode))
	c.APIProvider = strings.ToLower(strings.TrimSpace(c.APIProvider))
	c.SourceLocale = language.NormalizeCode(c.SourceLocale)
	c.LingoAPIKey = strings.TrimSpace(c.LingoAPIKey)
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
}

func (c *Config) Validate() error {
	switch c.TranslationMode {
	case ModeSDK, ModeCLI, ModeHybrid:
	default:
		return fmt.Errorf("TRANSLATION_MODE must be one of sdk, cli, hybrid (got %q)", c.TranslationMode)
	}
	switch c.APIProvider {
	case "lingo", "openai":
	default:
		return fmt.Errorf("TRANSLATION_API_PROVIDER must be lingo or openai (got %q)", c.APIProvider)
	}
	if c.SourceLocale == "" {
		return fmt.Errorf("SOURCE_LOCALE is required")
	}
	if c.CLIBatchSize < 1 {
		return fmt.Errorf("CLI_BATCH_SIZE must be >= 1")
	}
	if strings.TrimSpace(c.CLICommandName) == "" {
		return fmt.Errorf("CLI_COMMAND is required")
	}
	if c.CLITimeout <= 0 {
		return fmt.Errorf("CLI_TIMEOUT must be positive")
	}
	if c.CLIVersionTimeout <= 0 {
		return fmt.Errorf("CLI_VERSION_TIMEOUT must be positive")
	}
	if c.BreakerFailures < 1 {
		return fmt.Errorf("API_BREAKER_FAILURES must be >= 1")
	}
	if c.BreakerCooldown <= 0 {
		return fmt.Errorf("API_BREAKER_COOLDOWN must be positive")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	return nil
}

// ProcessEnabled reports whether the external tool runs for this mode.
func (c *Config) ProcessEnabled() bool {
	return c.TranslationMode == ModeCLI || c.TranslationMode == ModeHybrid
}

// APIEnabled reports whether the hosted API runs for this mode, either as the
// only backend or as the fallback.
func (c *Config) APIEnabled() bool {
	return c.TranslationMode == ModeSDK || c.TranslationMode == ModeHybrid
}

// APIKeyConfigured reports whether the selected hosted provider has a key.
func (c *Config) APIKeyConfigured() bool {
	if c.APIProvider == "openai" {
		return c.OpenAIAPIKey != ""
	}
	return c.LingoAPIKey != ""
}

func (c *Config) BatchOptions() translation.BatchOptions {
	return translation.BatchOptions{
		BatchSize:  c.CLIBatchSize,
		Concurrent: c.CLIConcurrent,
		Pipelined:  c.CLIPipelined,
	}
}

// Strategy is the explicit coordinator configuration for this mode.
func (c *Config) Strategy() translation.StrategyConfig {
	return translation.StrategyConfig{
		ProcessEnabled: c.ProcessEnabled(),
		APIEnabled:     c.APIEnabled(),
		Batch:          c.BatchOptions(),
		SourceLocale:   c.SourceLocale,
	}
}

// CLICommand is the tool executable followed by its fixed arguments.
func (c *Config) CLICommand() []string {
	return commandLine(c.CLICommandName, c.CLIArgs)
}

// CLIVersionCommand is the availability check for the same executable.
func (c *Config) CLIVersionCommand() []string {
	return commandLine(c.CLICommandName, c.CLIVersionArgs)
}

func commandLine(name string, args []string) []string {
	command := []string{strings.TrimSpace(name)}
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			command = append(command, arg)
		}
	}
	return command
}

func (c *Config) ProcessOptions() translation.ProcessOptions {
	return translation.ProcessOptions{
		Command:        c.CLICommand(),
		VersionCommand: c.CLIVersionCommand(),
		APIKey:         c.LingoAPIKey,
		Timeout:        c.CLITimeout,
		VersionTimeout: c.CLIVersionTimeout,
	}
}

func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(c.Host), c.Port)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
