// Package metrics exposes prometheus collectors for the tracker
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "freight_tracker_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	trmFetchTotal   *prometheus.CounterVec
	trmFetchLatency *prometheus.HistogramVec
	trmResolutions  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	alertsGenerated *prometheus.CounterVec
	exportTotal     *prometheus.CounterVec
)

// Init registers the collectors with the default prometheus registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		trmFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "trm_fetch_total",
				Help: "Official TRM lookups by outcome",
			},
			[]string{"outcome"},
		)
		trmFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "trm_fetch_latency_seconds",
				Help:    "Official TRM lookup latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		)
		trmResolutions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "trm_resolutions_total",
				Help: "Resolved TRM values by source (cache, source, history, none)",
			},
			[]string{"source"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
		alertsGenerated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_generated_total",
				Help: "Alerts produced by kind",
			},
			[]string{"kind"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Spreadsheet and report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			trmFetchTotal,
			trmFetchLatency,
			trmResolutions,
			httpRequests,
			httpLatency,
			alertsGenerated,
			exportTotal,
		)
	})
}

// ObserveTRMFetch records one call to the official rate source.
func ObserveTRMFetch(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	if trmFetchTotal != nil {
		trmFetchTotal.WithLabelValues(outcome).Inc()
	}
	if trmFetchLatency != nil {
		trmFetchLatency.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}

// IncTRMResolution counts where a resolved rate came from.
func IncTRMResolution(source string) {
	if trmResolutions != nil {
		trmResolutions.WithLabelValues(source).Inc()
	}
}

// ObserveHTTPRequest records a served request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}

// AddAlerts counts generated alerts of one kind.
func AddAlerts(kind string, count int) {
	if count <= 0 {
		return
	}
	if alertsGenerated != nil {
		alertsGenerated.WithLabelValues(kind).Add(float64(count))
	}
}

// IncExport counts an export attempt.
func IncExport(format, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}
