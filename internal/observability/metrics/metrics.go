package metrics

import "github.com/prometheus/client_golang/prometheus"

// FillMetrics exposes counters for the cancellation-fill workflow.
type FillMetrics struct {
	cancellationsTotal *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	redemptionsTotal   *prometheus.CounterVec
	tokensExpiredTotal prometheus.Counter
}

func NewFillMetrics(reg prometheus.Registerer) *FillMetrics {
	m := &FillMetrics{
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cancelfill",
			Subsystem: "fill",
			Name:      "cancellations_total",
			Help:      "Appointments cancelled, by actor",
		}, []string{"actor"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cancelfill",
			Subsystem: "fill",
			Name:      "notifications_total",
			Help:      "Waitlist notification attempts, by channel and status",
		}, []string{"channel", "status"}),
		redemptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cancelfill",
			Subsystem: "booking",
			Name:      "redemptions_total",
			Help:      "Booking token redemption attempts, by outcome",
		}, []string{"outcome"}),
		tokensExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cancelfill",
			Subsystem: "booking",
			Name:      "tokens_expired_total",
			Help:      "Booking tokens that expired unused",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cancellationsTotal, m.notificationsTotal, m.redemptionsTotal, m.tokensExpiredTotal)
	return m
}

func (m *FillMetrics) ObserveCancellation(actor string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(actor).Inc()
}

func (m *FillMetrics) ObserveNotification(channel string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.notificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *FillMetrics) ObserveRedemption(outcome string) {
	if m == nil {
		return
	}
	m.redemptionsTotal.WithLabelValues(outcome).Inc()
}

func (m *FillMetrics) ObserveTokenExpired() {
	if m == nil {
		return
	}
	m.tokensExpiredTotal.Inc()
}
