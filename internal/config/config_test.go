package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// unsetEnv clears keys for the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

var configKeys = []string{
	"ENVIRONMENT", "LOG_LEVEL", "TRANSLATION_MODE", "SOURCE_LOCALE",
	"LINGODOTDEV_API_KEY", "LINGODOTDEV_API_URL", "TRANSLATION_API_PROVIDER",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"API_BREAKER_FAILURES", "API_BREAKER_COOLDOWN",
	"CLI_BATCH_SIZE", "CLI_CONCURRENT", "CLI_PIPELINED", "CLI_COMMAND", "CLI_ARGS",
	"CLI_VERSION_ARGS", "CLI_TIMEOUT", "CLI_VERSION_TIMEOUT", "CLI_WORKSPACE_ROOT",
	"DETECT_SOURCE_LANGUAGE", "HOST", "PORT", "CORS_ALLOWED_ORIGINS",
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, configKeys...)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TranslationMode != ModeSDK {
		t.Fatalf("unexpected default mode: %q", cfg.TranslationMode)
	}
	if cfg.ProcessEnabled() || !cfg.APIEnabled() {
		t.Fatalf("sdk mode must be api only")
	}
	if got := strings.Join(cfg.CLICommand(), " "); got != "npx lingo.dev@latest i18n" {
		t.Fatalf("unexpected cli command: %q", got)
	}
	if got := strings.Join(cfg.CLIVersionCommand(), " "); got != "npx lingo.dev@latest --version" {
		t.Fatalf("unexpected version command: %q", got)
	}
	if cfg.CLITimeout != 30*time.Second || cfg.CLIVersionTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts: %s %s", cfg.CLITimeout, cfg.CLIVersionTimeout)
	}
	batch := cfg.BatchOptions()
	if batch.BatchSize != 3 || !batch.Concurrent || batch.Pipelined {
		t.Fatalf("unexpected batch options: %+v", batch)
	}
	if cfg.ListenAddress() != "0.0.0.0:3001" {
		t.Fatalf("unexpected listen address: %s", cfg.ListenAddress())
	}
}

func TestStrategy_Modes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode    string
		process bool
		api     bool
	}{
		{mode: ModeSDK, process: false, api: true},
		{mode: ModeCLI, process: true, api: false},
		{mode: ModeHybrid, process: true, api: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.mode, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.TranslationMode = tc.mode
			strategy := cfg.Strategy()
			if strategy.ProcessEnabled != tc.process || strategy.APIEnabled != tc.api {
				t.Fatalf("unexpected strategy for %s: %+v", tc.mode, strategy)
			}
			if strategy.SourceLocale != "en" || strategy.Batch.BatchSize != 3 {
				t.Fatalf("unexpected strategy details: %+v", strategy)
			}
		})
	}
}

func TestLoad_NormalizesAndValidates(t *testing.T) {
	unsetEnv(t, configKeys...)
	t.Setenv("TRANSLATION_MODE", " Hybrid ")
	t.Setenv("TRANSLATION_API_PROVIDER", "OpenAI")
	t.Setenv("SOURCE_LOCALE", "EN-us")
	t.Setenv("CLI_ARGS", "lingo.dev@1.2.3, i18n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TranslationMode != ModeHybrid || cfg.APIProvider != "openai" || cfg.SourceLocale != "en" {
		t.Fatalf("unexpected normalized config: %+v", cfg)
	}
	if got := strings.Join(cfg.CLICommand(), " "); got != "npx lingo.dev@1.2.3 i18n" {
		t.Fatalf("unexpected cli command: %q", got)
	}

	t.Setenv("TRANSLATION_MODE", "carrier-pigeon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TRANSLATION_MODE") {
		t.Fatalf("expected mode validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "batch size", mutate: func(c *Config) { c.CLIBatchSize = 0 }, want: "CLI_BATCH_SIZE"},
		{name: "command", mutate: func(c *Config) { c.CLICommandName = " " }, want: "CLI_COMMAND"},
		{name: "timeout", mutate: func(c *Config) { c.CLITimeout = 0 }, want: "CLI_TIMEOUT"},
		{name: "provider", mutate: func(c *Config) { c.APIProvider = "google" }, want: "TRANSLATION_API_PROVIDER"},
		{name: "port", mutate: func(c *Config) { c.Port = 70000 }, want: "PORT"},
		{name: "breaker", mutate: func(c *Config) { c.BreakerFailures = 0 }, want: "API_BREAKER_FAILURES"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %s error, got %v", tc.want, err)
			}
		})
	}
}

func TestAPIKeyConfigured(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.APIKeyConfigured() {
		t.Fatalf("expected no key")
	}
	cfg.LingoAPIKey = "lingo-key"
	if !cfg.APIKeyConfigured() {
		t.Fatalf("expected lingo key to count")
	}
	cfg.APIProvider = "openai"
	if cfg.APIKeyConfigured() {
		t.Fatalf("openai provider needs its own key")
	}
}

func TestCORSAllowedOriginsList(t *testing.T) {
	t.Parallel()

	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test,http://a.test "}
	got := cfg.CORSAllowedOriginsList()
	if strings.Join(got, "|") != "http://a.test|http://b.test" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func validConfig() *Config {
	return &Config{
		Environment:       "test",
		LogLevel:          "info",
		TranslationMode:   ModeSDK,
		SourceLocale:      "en",
		APIProvider:       "lingo",
		BreakerFailures:   5,
		BreakerCooldown:   30 * time.Second,
		CLIBatchSize:      3,
		CLIConcurrent:     true,
		CLICommandName:    "npx",
		CLIArgs:           []string{"lingo.dev@latest", "i18n"},
		CLITimeout:        30 * time.Second,
		CLIVersionTimeout: 10 * time.Second,
		Host:              "0.0.0.0",
		Port:              3001,
	}
}
