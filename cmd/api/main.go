package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/conncheck/internal/checker"
	"github.com/hamed0406/conncheck/internal/config"
	"github.com/hamed0406/conncheck/internal/httpapi"
	apimw "github.com/hamed0406/conncheck/internal/httpapi/middleware"
	"github.com/hamed0406/conncheck/internal/logging"
	"github.com/hamed0406/conncheck/internal/metrics"
	"github.com/hamed0406/conncheck/internal/repo"
	"github.com/hamed0406/conncheck/internal/repo/memory"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("api_exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *zap.Logger) error {
	store := memory.New()
	met := metrics.New()
	svc := checker.New(logger, checker.WithRecorder(repo.Multi{store, met}))

	api := httpapi.NewServer(logger, svc, store, cfg.ProbeOptions())
	api.Metrics = met.Handler()
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	limits := httpapi.Limits{
		PublicRPM: cfg.PublicRPM, PublicBurst: cfg.PublicBurst,
		AdminRPM: cfg.AdminRPM, AdminBurst: cfg.AdminBurst,
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, limits),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case serveErr = <-errc:
	case <-ctx.Done():
		logger.Info("api_shutdown")
	}
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return multierr.Append(serveErr, srv.Shutdown(shutdownCtx))
}
