// Package metrics exports dispatch counters and latencies to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/go-notification-hub/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so several instances can coexist in tests.
type Recorder struct {
	registry        *prometheus.Registry
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	retryPasses     prometheus.Counter
	retried         prometheus.Counter
	lastRetry       prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_hub_delivery_attempts_total",
				Help: "Delivery attempts by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notification_hub_delivery_attempt_duration_seconds",
				Help:    "Latency of delivery attempts",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"channel"},
		),
		retryPasses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notification_hub_retry_passes_total",
				Help: "Retry passes executed",
			},
		),
		retried: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notification_hub_retried_notifications_total",
				Help: "Failed notifications re-dispatched by retry passes",
			},
		),
		lastRetry: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "notification_hub_last_retry_timestamp_seconds",
				Help: "Unix timestamp of the last retry pass",
			},
		),
	}
	r.registry.MustRegister(
		r.attempts,
		r.attemptDuration,
		r.retryPasses,
		r.retried,
		r.lastRetry,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveAttempt records one delivery attempt.
func (r *Recorder) ObserveAttempt(channel domain.Channel, outcome domain.Outcome, latency time.Duration) {
	r.attempts.WithLabelValues(string(channel), string(outcome)).Inc()
	r.attemptDuration.WithLabelValues(string(channel)).Observe(latency.Seconds())
}

// ObserveRetryPass records a retry pass that re-dispatched n notifications.
func (r *Recorder) ObserveRetryPass(n int) {
	r.retryPasses.Inc()
	r.retried.Add(float64(n))
	r.lastRetry.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
