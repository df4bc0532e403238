// Package metrics holds the Prometheus collectors of the mood pipeline.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wisechat"

// PipelineMetrics is nil-safe: every recorder is a no-op on a nil receiver.
type PipelineMetrics struct {
	registry *prometheus.Registry

	Classifications  *prometheus.CounterVec
	Replies          *prometheus.CounterVec
	ExternalFailures *prometheus.CounterVec
	Alerts           prometheus.Counter
	ReplyDuration    *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec
}

// NewPipelineMetrics creates the collectors on their own registry.
func NewPipelineMetrics() *PipelineMetrics {
	reg := prometheus.NewRegistry()

	m := &PipelineMetrics{
		registry: reg,
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Local classifications by sentiment and urgency level",
		}, []string{"sentiment", "urgency"}),
		Replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Replies produced, by source (enhanced or template)",
		}, []string{"source"}),
		ExternalFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_failures_total",
			Help:      "External completion failures that fell back to templates",
		}, []string{"reason"}),
		Alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Messages whose urgency score reached the alert threshold",
		}),
		ReplyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reply_duration_seconds",
			Help:      "Time spent generating a reply",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),
	}

	reg.MustRegister(
		m.Classifications,
		m.Replies,
		m.ExternalFailures,
		m.Alerts,
		m.ReplyDuration,
		m.BreakerState,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PipelineMetrics) RecordClassification(sentiment, urgency string) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(sentiment, urgency).Inc()
}

func (m *PipelineMetrics) RecordReply(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.Replies.WithLabelValues(source).Inc()
	m.ReplyDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *PipelineMetrics) RecordExternalFailure(reason string) {
	if m == nil {
		return
	}
	m.ExternalFailures.WithLabelValues(reason).Inc()
}

func (m *PipelineMetrics) RecordAlert() {
	if m == nil {
		return
	}
	m.Alerts.Inc()
}

func (m *PipelineMetrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// Handler serves the registry in the Prometheus text format.
func (m *PipelineMetrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
