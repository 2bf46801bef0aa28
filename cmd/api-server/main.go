package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cancelfillmd/waitlist-recovery/internal/analytics"
	"github.com/cancelfillmd/waitlist-recovery/internal/api"
	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/booking"
	"github.com/cancelfillmd/waitlist-recovery/internal/config"
	"github.com/cancelfillmd/waitlist-recovery/internal/db"
	"github.com/cancelfillmd/waitlist-recovery/internal/fill"
	"github.com/cancelfillmd/waitlist-recovery/internal/notify"
	metrics "github.com/cancelfillmd/waitlist-recovery/internal/observability/metrics"
	redisclient "github.com/cancelfillmd/waitlist-recovery/internal/redis"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort)

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

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection error", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", "error", err)
		}
	}()
	logger.Info("connected to Redis")

	apptRepo := appointment.NewPgRepository(pgPool)
	entryRepo := waitlist.NewPgRepository(pgPool)
	tokenRepo := booking.NewPgRepository(pgPool)
	logRepo := notify.NewPgLogRepository(pgPool)

	fillMetrics := metrics.NewFillMetrics(nil)

	var sms notify.SMSSender
	if t := notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, logger); t != nil {
		sms = t
	} else {
		logger.Warn("twilio not configured, sms notifications disabled")
	}
	var email notify.EmailSender
	if sg := notify.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, logger); sg != nil {
		email = sg
	} else {
		logger.Warn("sendgrid not configured, email notifications disabled")
	}
	notifier := notify.NewService(sms, email, logRepo, cfg.ClinicName, cfg.SendGrid.StaffEmail, cfg.TokenExpiry, logger)

	bookingSvc := booking.NewService(tokenRepo, entryRepo, notifier, fillMetrics, cfg.TokenExpiry, cfg.AppBaseURL, logger)

	locker := redisclient.NewRedisAppointmentLocker(rdb, cfg.LockTTL)
	orchestrator, err := fill.NewOrchestrator(
		apptRepo, entryRepo, bookingSvc, notifier, locker,
		fillMetrics, cfg.Matching, cfg.MinCancelNotice, logger,
	)
	if err != nil {
		logger.Error("orchestrator init error", "error", err)
		os.Exit(1)
	}

	waitlistSvc := waitlist.NewService(entryRepo, cfg.MaxEntriesPatient, logger)
	apptSvc := appointment.NewService(apptRepo, logger)
	reporter := analytics.NewReporter(apptRepo, analytics.Config{
		SpecialtyValue:          cfg.SpecialtyValue,
		ManualMinutesPerFill:    cfg.ManualMinutesPerFill,
		AutomatedMinutesPerFill: cfg.AutomatedMinutesPerFill,
	}, cfg.Satisfaction)

	router := api.NewRouter(api.RouterConfig{
		Waitlist:     waitlistSvc,
		Appointments: apptSvc,
		Orchestrator: orchestrator,
		Booking:      bookingSvc,
		Analytics:    reporter,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
