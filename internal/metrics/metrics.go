package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authtriage/pkg/models"
)

const namespace = "authtriage"

// Handler holds the Prometheus collectors for one process.
type Handler struct {
	registry *prometheus.Registry

	AnalysesTotal      *prometheus.CounterVec
	AttackLabelsTotal  *prometheus.CounterVec
	AnalysisLatency    prometheus.Histogram
	CompressionTotal   *prometheus.CounterVec
	CompressionLatency prometheus.Histogram
	PayloadErrorsTotal *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
	AlertsEmittedTotal prometheus.Counter
}

// New creates a handler backed by its own registry.
func New() *Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Handler{
		registry: reg,
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "The total number of log analyses by risk tier",
		}, []string{"risk"}),
		AttackLabelsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attack_labels_total",
			Help:      "The total number of attack labels attached to verdicts",
		}, []string{"label"}),
		AnalysisLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_latency_seconds",
			Help:      "Wall-clock time to build a full report",
			Buckets:   prometheus.DefBuckets,
		}),
		CompressionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compression_total",
			Help:      "The total number of compression calls by outcome",
		}, []string{"outcome"}),
		CompressionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compression_latency_seconds",
			Help:      "Latency of compression including fallback",
			Buckets:   prometheus.DefBuckets,
		}),
		PayloadErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_errors_total",
			Help:      "The total number of rejected queue or HTTP payloads",
		}, []string{"reason"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of http requests received",
		}, []string{"path", "status"}),
		AlertsEmittedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_emitted_total",
			Help:      "The total number of alerts emitted",
		}),
	}
}

// ObserveReport records the outcome of one analysis.
func (h *Handler) ObserveReport(report *models.Report, duration time.Duration) {
	if h == nil || report == nil {
		return
	}
	h.AnalysesTotal.WithLabelValues(string(report.Verdict.Risk)).Inc()
	for _, label := range report.Verdict.AttackLabels {
		h.AttackLabelsTotal.WithLabelValues(label).Inc()
	}
	h.AnalysisLatency.Observe(duration.Seconds())
}

// ObserveCompression records one compression call.
func (h *Handler) ObserveCompression(latency time.Duration, fallback bool) {
	if h == nil {
		return
	}
	outcome := "remote"
	if fallback {
		outcome = "fallback"
	}
	h.CompressionTotal.WithLabelValues(outcome).Inc()
	h.CompressionLatency.Observe(latency.Seconds())
}

// IncPayloadErrors increments the rejected payload counter.
func (h *Handler) IncPayloadErrors(reason string) {
	if h == nil {
		return
	}
	h.PayloadErrorsTotal.WithLabelValues(reason).Inc()
}

// IncHTTPRequests increments the request counter.
func (h *Handler) IncHTTPRequests(path, status string) {
	if h == nil {
		return
	}
	h.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
}

// IncAlerts increments the emitted alert counter.
func (h *Handler) IncAlerts(n int) {
	if h == nil || n <= 0 {
		return
	}
	h.AlertsEmittedTotal.Add(float64(n))
}

// HTTPHandler serves the exposition format for this handler's registry.
// A nil handler serves an empty registry.
func (h *Handler) HTTPHandler() http.Handler {
	if h == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}
