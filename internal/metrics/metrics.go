package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. Build it with New against the
// registry that /metrics exposes; tests pass a fresh prometheus.NewRegistry.
type Metrics struct {
	// InitDataVerifications counts verification outcomes, labelled by
	// "verified" or the rejection reason.
	InitDataVerifications *prometheus.CounterVec

	// Notifications counts confirmation deliveries by result.
	Notifications *prometheus.CounterVec

	// RequestDuration observes HTTP handling time by route and status.
	RequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InitDataVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tma_init_data_verifications_total",
			Help: "Telegram init data verifications by outcome",
		}, []string{"outcome"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tma_notifications_total",
			Help: "Confirmation messages sent through the Bot API by result",
		}, []string{"result"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tma_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
