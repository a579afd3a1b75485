package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rznies/lingoSir/internal/globaltime"
)

// StrategyConfig selects which backends the coordinator may use. The process
// backend always goes first; the API backend is either the only backend or
// the fallback.
type StrategyConfig struct {
	ProcessEnabled bool
	APIEnabled     bool
	Batch          BatchOptions
	SourceLocale   string
}

// Validate requires at least one backend.
func (c StrategyConfig) Validate() error {
	if !c.ProcessEnabled && !c.APIEnabled {
		return fmt.Errorf("at least one translation backend must be enabled")
	}
	return nil
}

type batchBackend interface {
	Translate(ctx context.Context, caption string, languages []string, opts BatchOptions) (*BatchOutcome, error)
}

type apiBackend interface {
	Translate(ctx context.Context, caption string, languages []string) ([]Result, error)
}

// Coordinator picks a backend, falls back when allowed, and reports which
// method produced the returned results.
type Coordinator struct {
	cfg     StrategyConfig
	process batchBackend
	api     apiBackend
	detect  func(string) string
	logger  zerolog.Logger
}

type CoordinatorOption func(*Coordinator)

// WithLanguageDetector enables an advisory check that the caption is written
// in the configured source locale. Mismatches are logged, never rejected.
func WithLanguageDetector(detect func(string) string) CoordinatorOption {
	return func(c *Coordinator) {
		c.detect = detect
	}
}

// NewCoordinator wires the backends. A nil backend counts as disabled even
// when the config enables it.
func NewCoordinator(cfg StrategyConfig, process *BatchScheduler, api *APITranslator, logger zerolog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{cfg: cfg, logger: logger}
	if process != nil {
		c.process = process
	}
	if api != nil {
		c.api = api
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.SourceLocale == "" {
		c.cfg.SourceLocale = DefaultSourceLocale
	}
	return c
}

func (c *Coordinator) processEnabled() bool {
	return c.cfg.ProcessEnabled && c.process != nil
}

func (c *Coordinator) apiEnabled() bool {
	return c.cfg.APIEnabled && c.api != nil
}

// Config returns the effective strategy.
func (c *Coordinator) Config() StrategyConfig {
	cfg := c.cfg
	cfg.ProcessEnabled = c.processEnabled()
	cfg.APIEnabled = c.apiEnabled()
	return cfg
}

// Translate validates the request, then runs the strategy.
func (c *Coordinator) Translate(ctx context.Context, req Request) (*Outcome, error) {
	started := globaltime.Now()

	caption := req.Text
	if strings.TrimSpace(caption) == "" {
		return nil, newError(KindInvalidRequest, "", "validate request", fmt.Errorf("caption must be a non-empty string"))
	}
	languages, err := NormalizeLanguages(req.Languages)
	if err != nil {
		return nil, err
	}
	// The tool writes source.<target>.json, which for the source locale is
	// the caption document itself.
	source := normalizeLangCode(c.cfg.SourceLocale)
	for _, lang := range languages {
		if lang == source {
			return nil, newError(KindInvalidRequest, lang, "validate request",
				fmt.Errorf("target language %q is the source locale", lang))
		}
	}
	c.checkSourceLanguage(caption)

	batchOpts := c.cfg.Batch
	if req.Batch != nil {
		batchOpts = *req.Batch
	}

	if c.processEnabled() {
		c.logger.Info().Str("method", string(MethodProcess)).Msg("attempting process translation")
		outcome, err := c.process.Translate(ctx, caption, languages, batchOpts)
		if err == nil {
			elapsed := globaltime.Since(started).Milliseconds()
			c.logger.Info().Str("method", string(MethodProcess)).Int64("elapsed_ms", elapsed).Msg("process translation succeeded")
			return &Outcome{
				Results:   outcome.Results,
				Failures:  outcome.Failures,
				Method:    MethodProcess,
				ElapsedMs: elapsed,
			}, nil
		}

		if !c.apiEnabled() {
			c.logger.Error().Err(err).Str("method", string(MethodProcess)).Msg("process translation failed")
			return nil, err
		}
		c.logger.Warn().Err(err).Str("method", string(MethodProcess)).Msg("process translation failed, falling back to api")
	}

	if c.apiEnabled() {
		c.logger.Info().Str("method", string(MethodAPI)).Msg("attempting api translation")
		results, err := c.api.Translate(ctx, caption, languages)
		if err != nil {
			c.logger.Error().Err(err).Str("method", string(MethodAPI)).Msg("api translation failed")
			return nil, err
		}
		elapsed := globaltime.Since(started).Milliseconds()
		c.logger.Info().Str("method", string(MethodAPI)).Int64("elapsed_ms", elapsed).Msg("api translation succeeded")
		return &Outcome{
			Results:   results,
			Method:    MethodAPI,
			ElapsedMs: elapsed,
		}, nil
	}

	return nil, newError(KindNoMethod, "", "translate", fmt.Errorf("no translation method available"))
}

func (c *Coordinator) checkSourceLanguage(caption string) {
	if c.detect == nil {
		return
	}
	detected := c.detect(caption)
	if detected == "" || detected == c.cfg.SourceLocale {
		return
	}
	c.logger.Warn().
		Str("detected", detected).
		Str("source_locale", c.cfg.SourceLocale).
		Msg("caption language differs from configured source locale")
}
