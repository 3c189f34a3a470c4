// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_jobs_total",
			Help: "Research jobs by terminal status (complete/error).",
		},
		[]string{"status"},
	)

	jobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "research_jobs_in_flight",
			Help: "Pipelines currently executing.",
		},
	)

	stepLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_step_latency_ms",
			Help:    "Pipeline step latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"step", "success"},
	)

	collectorCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_calls_total",
			Help: "External collector calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	watchersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "job_watchers_active",
			Help: "Open status subscriptions across all jobs.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			jobsTotal, jobsInFlight, stepLatency,
			collectorCalls, watchersActive,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncJob(status string) { jobsTotal.WithLabelValues(norm(status)).Inc() }

func JobStarted()  { jobsInFlight.Inc() }
func JobFinished() { jobsInFlight.Dec() }

func ObserveStep(step string, latencyMs float64, success bool) {
	lbl := "false"
	if success {
		lbl = "true"
	}
	stepLatency.WithLabelValues(norm(step), lbl).Observe(latencyMs)
}

func IncCollectorCall(provider, outcome string) {
	collectorCalls.WithLabelValues(norm(provider), norm(outcome)).Inc()
}

func WatcherAttached() { watchersActive.Inc() }
func WatcherDetached() { watchersActive.Dec() }
