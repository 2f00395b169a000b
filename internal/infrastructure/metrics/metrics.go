package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sync item outcomes.
const (
	OutcomeAnchored = "anchored"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agriloan",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agriloan",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agriloan",
			Subsystem: "ledger_sync",
			Name:      "runs_total",
			Help:      "Synchronizer runs by result.",
		},
		[]string{"result"},
	)

	syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "agriloan",
			Subsystem: "ledger_sync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a synchronizer run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1h
		},
	)

	syncItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agriloan",
			Subsystem: "ledger_sync",
			Name:      "items_total",
			Help:      "Applications processed by the synchronizer, by outcome.",
		},
		[]string{"outcome"},
	)

	ledgerGas = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "agriloan",
			Subsystem: "ledger",
			Name:      "submit_gas_limit",
			Help:      "Gas limit attached to ledger writes.",
			Buckets:   prometheus.ExponentialBuckets(50_000, 1.5, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		syncRuns,
		syncDuration,
		syncItems,
		ledgerGas,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one request. route is the registered path template.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordSyncRun(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	syncRuns.WithLabelValues(result).Inc()
	syncDuration.Observe(d.Seconds())
}

func RecordSyncItem(outcome string) {
	syncItems.WithLabelValues(outcome).Inc()
}

func RecordLedgerGas(limit uint64) {
	ledgerGas.Observe(float64(limit))
}
