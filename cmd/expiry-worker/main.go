package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cancelfillmd/waitlist-recovery/internal/booking"
	"github.com/cancelfillmd/waitlist-recovery/internal/config"
	"github.com/cancelfillmd/waitlist-recovery/internal/db"
	metrics "github.com/cancelfillmd/waitlist-recovery/internal/observability/metrics"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("expiry-worker starting up", "env", cfg.Env, "interval", cfg.WorkerInterval.String())

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	tokenRepo := booking.NewPgRepository(pgPool)
	entryRepo := waitlist.NewPgRepository(pgPool)
	fillMetrics := metrics.NewFillMetrics(nil)

	// The worker only sweeps; it never sends notifications or redeems.
	svc := booking.NewService(tokenRepo, entryRepo, nil, fillMetrics, cfg.TokenExpiry, cfg.AppBaseURL, logger)

	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping expiry worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *booking.Service, logger *logging.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	swept, err := svc.SweepExpired(runCtx, time.Now())
	if err != nil {
		logger.Error("expiry sweep error", "error", err)
		return
	}
	logger.Info("expiry sweep complete", "swept", swept, "duration", time.Since(start).String())
}
