package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/rznies/lingoSir/internal/globaltime"
	"github.com/rznies/lingoSir/internal/payloadschema"
	"github.com/rznies/lingoSir/internal/translation"
)

const maxRequestBodyBytes = 64 << 10

// Translator is the coordinator as seen by the HTTP layer.
type Translator interface {
	Translate(ctx context.Context, req translation.Request) (*translation.Outcome, error)
	Config() translation.StrategyConfig
}

// AvailabilityChecker reports whether the external tool can run.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context) bool
}

// BreakerStater reports the hosted API circuit breaker state.
type BreakerStater interface {
	State() string
}

type Options struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Reported by /api/health and /api/mode.
	Mode             string
	APIProvider      string
	APIKeyConfigured bool
	APIModel         string
	// APIBreaker is nil when the hosted API is disabled.
	APIBreaker BreakerStater
}

type Server struct {
	translator Translator
	checker    AvailabilityChecker
	logger     zerolog.Logger
	opts       Options
}

type translationResponse struct {
	OriginalCaption string               `json:"original_caption"`
	Translations    []translation.Result `json:"translations"`
	Metadata        translationMetadata  `json:"metadata"`
}

type translationMetadata struct {
	Method     translation.Method    `json:"method"`
	DurationMs int64                 `json:"duration_ms"`
	RequestID  string                `json:"request_id"`
	Timestamp  string                `json:"timestamp"`
	Failures   []translation.Failure `json:"failures,omitempty"`
}

type healthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	Timestamp        string `json:"timestamp"`
	Mode             string `json:"mode"`
	ProcessEnabled   bool   `json:"process_enabled"`
	APIEnabled       bool   `json:"api_enabled"`
	APIProvider      string `json:"api_provider,omitempty"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	APIModel         string `json:"api_model,omitempty"`
	APIBreakerState  string `json:"api_breaker_state,omitempty"`
	ProcessReady     *bool  `json:"process_ready,omitempty"`
}

type modeResponse struct {
	Mode           string `json:"mode"`
	ProcessEnabled bool   `json:"process_enabled"`
	APIEnabled     bool   `json:"api_enabled"`
	APIFallback    bool   `json:"api_fallback"`
	APIProvider    string `json:"api_provider,omitempty"`
	SourceLocale   string `json:"source_locale"`
	BatchSize      int    `json:"batch_size"`
	Concurrent     bool   `json:"concurrent"`
	Pipelined      bool   `json:"pipelined"`
}

// NewServer builds the HTTP shell. checker may be nil when the process
// backend is disabled.
func NewServer(translator Translator, checker AvailabilityChecker, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 3001
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	// A full batch of tool runs can take several process timeouts.
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Minute
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	opts.Host = host
	opts.Port = port
	opts.ReadTimeout = readTimeout
	opts.WriteTimeout = writeTimeout
	opts.ShutdownTimeout = shutdownTimeout
	return &Server{
		translator: translator,
		checker:    checker,
		logger:     logger,
		opts:       opts,
	}
}

// Handler returns the configured echo instance.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	origins := s.opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/translate", s.handleTranslate)
	api.GET("/languages", s.handleLanguages)
	api.GET("/mode", s.handleMode)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.translator == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Str("mode", s.opts.Mode).Msg("translation server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("translation server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	strategy := s.translator.Config()
	resp := healthResponse{
		Status:           "ok",
		Service:          "lingosir",
		Timestamp:        globaltime.UTC().Format(time.RFC3339),
		Mode:             s.opts.Mode,
		ProcessEnabled:   strategy.ProcessEnabled,
		APIEnabled:       strategy.APIEnabled,
		APIProvider:      s.opts.APIProvider,
		APIKeyConfigured: s.opts.APIKeyConfigured,
		APIModel:         s.opts.APIModel,
	}
	if strategy.APIEnabled && s.opts.APIBreaker != nil {
		resp.APIBreakerState = s.opts.APIBreaker.State()
	}
	if strategy.ProcessEnabled && s.checker != nil {
		ready := s.checker.CheckAvailability(c.Request().Context())
		resp.ProcessReady = &ready
	}
	return success(c, resp)
}

func (s *Server) handleTranslate(c echo.Context) error {
	requestID := s.requestID(c)
	logger := s.logger.With().Str("request_id", requestID).Logger()

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxRequestBodyBytes))
	if err != nil {
		return failValidation(c, map[string]string{"body": "request body is too large or unreadable"})
	}

	payload, err := payloadschema.ValidateTranslateRequest(json.RawMessage(body))
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	req := translation.Request{
		Text:      payload.Caption,
		Languages: payload.Languages,
	}
	if payload.Options != nil {
		batch := s.translator.Config().Batch
		if payload.Options.BatchSize != nil {
			batch.BatchSize = *payload.Options.BatchSize
		}
		if payload.Options.Concurrent != nil {
			batch.Concurrent = *payload.Options.Concurrent
		}
		if payload.Options.Pipelined != nil {
			batch.Pipelined = *payload.Options.Pipelined
		}
		req.Batch = &batch
	}

	logger.Info().Strs("languages", req.Languages).Int("caption_length", len(req.Text)).Msg("translation request")

	outcome, err := s.translator.Translate(c.Request().Context(), req)
	if err != nil {
		return s.translationError(c, logger, err)
	}

	logger.Info().
		Str("method", string(outcome.Method)).
		Int("translations", len(outcome.Results)).
		Int64("duration_ms", outcome.ElapsedMs).
		Msg("translation request succeeded")

	return success(c, translationResponse{
		OriginalCaption: payload.Caption,
		Translations:    outcome.Results,
		Metadata: translationMetadata{
			Method:     outcome.Method,
			DurationMs: outcome.ElapsedMs,
			RequestID:  requestID,
			Timestamp:  globaltime.UTC().Format(time.RFC3339),
			Failures:   outcome.Failures,
		},
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	options := translation.SupportedLanguageOptions()
	return success(c, map[string]any{
		"supported": options,
		"codes":     translation.SupportedLanguageCodes(),
		"count":     len(options),
	})
}

func (s *Server) handleMode(c echo.Context) error {
	strategy := s.translator.Config()
	return success(c, modeResponse{
		Mode:           s.opts.Mode,
		ProcessEnabled: strategy.ProcessEnabled,
		APIEnabled:     strategy.APIEnabled,
		APIFallback:    strategy.ProcessEnabled && strategy.APIEnabled,
		APIProvider:    s.opts.APIProvider,
		SourceLocale:   strategy.SourceLocale,
		BatchSize:      strategy.Batch.BatchSize,
		Concurrent:     strategy.Batch.Concurrent,
		Pipelined:      strategy.Batch.Pipelined,
	})
}

func (s *Server) translationError(c echo.Context, logger zerolog.Logger, err error) error {
	kind := translation.KindOf(err)
	status := statusForKind(kind)
	if status >= 500 {
		logger.Error().Err(err).Str("kind", string(kind)).Msg("translation request failed")
	} else {
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("translation request rejected")
	}

	switch kind {
	case translation.KindInvalidRequest:
		return fail(c, status, err.Error(), map[string]any{
			"supported": translation.SupportedLanguageCodes(),
		})
	case translation.KindAuth:
		return fail(c, status, "Authentication failed: check the configured API key", nil)
	case translation.KindRateLimit:
		return fail(c, status, "Rate limit exceeded, try again later", nil)
	}
	return errorResponse(c, status, err.Error(), map[string]any{
		"kind": kind,
	})
}

// statusForKind maps error kinds onto HTTP status codes.
func statusForKind(kind translation.Kind) int {
	switch kind {
	case translation.KindInvalidRequest:
		return http.StatusBadRequest
	case translation.KindAuth:
		return http.StatusUnauthorized
	case translation.KindRateLimit:
		return http.StatusTooManyRequests
	case translation.KindTimeout:
		return http.StatusGatewayTimeout
	case translation.KindUnavailable, translation.KindNoMethod:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) requestID(c echo.Context) string {
	if id := strings.TrimSpace(c.Response().Header().Get(echo.HeaderXRequestID)); id != "" {
		return id
	}
	return strconv.FormatInt(globaltime.Now().UnixNano(), 36)
}
