package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rznies/lingoSir/internal/httpapi"
)

type serveFlags struct {
	host            string
	port            int
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the translation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "HTTP listen host (overrides HOST)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "HTTP listen port (overrides PORT)")
	cmd.Flags().DurationVar(&flags.readTimeout, "read-timeout", 15*time.Second, "HTTP server read timeout")
	cmd.Flags().DurationVar(&flags.writeTimeout, "write-timeout", 3*time.Minute, "HTTP server write timeout")
	cmd.Flags().DurationVar(&flags.shutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	cfg, logger, err := loadRuntime(os.Stdout, "")
	if err != nil {
		return runtimeError("load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = flags.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flags.port
	}

	svc, err := buildServices(cfg, logger)
	if err != nil {
		return runtimeError("%w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ProcessEnabled() {
		go svc.process.CheckAvailability(context.WithoutCancel(ctx))
	}

	opts := httpapi.Options{
		Host:               cfg.Host,
		Port:               cfg.Port,
		ReadTimeout:        flags.readTimeout,
		WriteTimeout:       flags.writeTimeout,
		ShutdownTimeout:    flags.shutdownTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOriginsList(),
		Mode:               cfg.TranslationMode,
		APIProvider:        cfg.APIProvider,
		APIKeyConfigured:   cfg.APIKeyConfigured(),
		APIModel:           svc.apiModel,
	}
	if svc.breaker != nil {
		opts.APIBreaker = svc.breaker
	}
	srv := httpapi.NewServer(svc.coordinator, svc.process, logger, opts)

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("addr", cfg.ListenAddress()).Msg("server failed")
		return runtimeError("server failed: %w", err)
	}
	return nil
}
