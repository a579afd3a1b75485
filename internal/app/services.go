package app

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/rznies/lingoSir/internal/config"
	"github.com/rznies/lingoSir/internal/langdetect"
	"github.com/rznies/lingoSir/internal/logging"
	"github.com/rznies/lingoSir/internal/translation"
)

type services struct {
	process     *translation.ProcessTranslator
	coordinator *translation.Coordinator
	// breaker is nil when the hosted API is disabled.
	breaker  *translation.BreakerLocalizer
	apiModel string
}

// loadRuntime reads configuration, optionally forcing a translation mode, and
// builds the logger on out.
func loadRuntime(out io.Writer, mode string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	if mode != "" {
		cfg.TranslationMode = mode
		if err := cfg.Validate(); err != nil {
			return nil, zerolog.Logger{}, err
		}
	}

	logger, err := logging.NewWithWriter(out, cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	return cfg, logger, nil
}

func buildServices(cfg *config.Config, logger zerolog.Logger) (*services, error) {
	workspaces := translation.NewWorkspaceManager(cfg.CLIWorkspaceRoot, cfg.SourceLocale, logger)
	process, err := translation.NewProcessTranslator(workspaces, cfg.ProcessOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("build process translator: %w", err)
	}

	svc := &services{process: process}
	var api *translation.APITranslator
	if cfg.APIEnabled() {
		localizer, model, err := hostedLocalizer(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("build hosted localizer: %w", err)
		}
		if !cfg.APIKeyConfigured() {
			logger.Warn().Str("provider", localizer.Name()).Msg("hosted API key is not configured; API translations will fail")
		}
		svc.breaker = localizer
		svc.apiModel = model
		api = translation.NewAPITranslator(localizer, cfg.SourceLocale, logger)
	}

	var opts []translation.CoordinatorOption
	if cfg.DetectSourceLanguage {
		opts = append(opts, translation.WithLanguageDetector(langdetect.DetectISO6391))
	}

	svc.coordinator = translation.NewCoordinator(
		cfg.Strategy(),
		translation.NewBatchScheduler(process, logger),
		api,
		logger,
		opts...,
	)

	logger.Info().
		Str("mode", cfg.TranslationMode).
		Bool("process_enabled", cfg.ProcessEnabled()).
		Bool("api_enabled", cfg.APIEnabled()).
		Str("provider", cfg.APIProvider).
		Msg("translation services ready")

	return svc, nil
}

// hostedLocalizer registers every hosted provider behind its own breaker and
// resolves the configured one. model is set for LLM-backed providers.
func hostedLocalizer(cfg *config.Config, logger zerolog.Logger) (*translation.BreakerLocalizer, string, error) {
	registry := translation.NewRegistry(cfg.APIProvider)
	openAI := translation.NewOpenAILocalizer(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	providers := []translation.Localizer{
		translation.NewLingoLocalizer(cfg.LingoAPIURL, cfg.LingoAPIKey),
		openAI,
	}
	for _, provider := range providers {
		wrapped := translation.NewBreakerLocalizer(provider, cfg.BreakerFailures, cfg.BreakerCooldown, logger)
		if err := registry.Register(wrapped); err != nil {
			return nil, "", err
		}
	}

	localizer, err := registry.Localizer(cfg.APIProvider)
	if err != nil {
		return nil, "", err
	}
	breaker, ok := localizer.(*translation.BreakerLocalizer)
	if !ok {
		return nil, "", fmt.Errorf("hosted localizer %q is not wrapped in a breaker", localizer.Name())
	}

	model := ""
	if breaker.Name() == openAI.Name() {
		model = openAI.ModelName()
	}
	return breaker, model, nil
}
