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

	"go.uber.org/zap"

	"github.com/hamed0406/httpprobe/internal/config"
	"github.com/hamed0406/httpprobe/internal/httpapi"
	"github.com/hamed0406/httpprobe/internal/logging"
	"github.com/hamed0406/httpprobe/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewLogger(logging.Options{Dir: cfg.LogDir})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	sink := report.Multi{report.Log{Logger: logger}, report.NewSlack(cfg.SlackWebhook)}
	api := httpapi.NewServer(logger, sink, cfg.ProbeTimeout, cfg.MaxCount)
	api.TrustedProxies = cfg.TrustedProxies

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(cfg.APIKeys, cfg.RPM, cfg.Burst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("api_shutdown_error", zap.Error(err))
		}
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.Bool("auth", len(cfg.APIKeys) > 0),
		zap.Int("max_count", cfg.MaxCount),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api_listen_error", zap.Error(err))
		return err
	}
	<-shutdownDone
	logger.Info("api_stopped")
	return nil
}
