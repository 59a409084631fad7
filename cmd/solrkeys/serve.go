package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrkeys/internal/config"
	logpkg "github.com/kailas-cloud/solrkeys/internal/logger"
	"github.com/kailas-cloud/solrkeys/internal/metrics"
	chiTransport "github.com/kailas-cloud/solrkeys/internal/transport/chi"
	healthuc "github.com/kailas-cloud/solrkeys/internal/usecase/health"
	"github.com/kailas-cloud/solrkeys/internal/version"
)

func newServeCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP compile API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, env)
		},
	}
	cmd.Flags().StringVar(&env, "env", config.GetEnv(), "configuration environment (config/<env>.yaml)")
	return cmd
}

func runServe(ctx context.Context, env string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting solrkeys API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("default_mode", cfg.Query.DefaultMode),
		zap.String("escaper", cfg.Query.Escaper),
		zap.Strings("enabled_data_types", cfg.DataTypes.Enabled),
	)

	// Register metrics explicitly (no init())
	metrics.Register()

	registry := newRegistry(cfg.DataTypes)
	svc, err := newCompileService(cfg.Query, registry)
	if err != nil {
		return err
	}
	logger.Info("Data type registry built", zap.Strings("types", registry.Types()))

	healthSvc := healthuc.New(svc, registry)
	server := chiTransport.NewServer(svc, healthSvc, logger).WithMaxBodyBytes(int64(cfg.HTTP.MaxBodyBytes))
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
