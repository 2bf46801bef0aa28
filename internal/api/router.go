package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cancelfillmd/waitlist-recovery/internal/analytics"
	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/booking"
	"github.com/cancelfillmd/waitlist-recovery/internal/fill"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

type RouterConfig struct {
	Waitlist     *waitlist.Service
	Appointments *appointment.Service
	Orchestrator *fill.Orchestrator
	Booking      *booking.Service
	Analytics    *analytics.Reporter
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
	Logger       *logging.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(NewLoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/waitlist", joinWaitlistHandler(cfg.Waitlist))
	r.Delete("/waitlist/{id}", removeWaitlistHandler(cfg.Waitlist))
	r.Get("/waitlist", listWaitlistHandler(cfg.Waitlist))

	r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Orchestrator))

	r.Post("/bookings/redeem", redeemBookingHandler(cfg.Booking))

	r.Get("/analytics/summary", analyticsSummaryHandler(cfg.Analytics))

	return r
}
