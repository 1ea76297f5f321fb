// Package metrics owns the Prometheus registry and every instrument the
// gateway exposes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	// Dispatch metrics
	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	DispatchRetries  prometheus.Counter

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsDropped prometheus.Counter

	// Webhook metrics
	WebhookEventsTotal    *prometheus.CounterVec
	WebhookRejectedTotal  prometheus.Counter
	RepliesSentTotal      prometheus.Counter
	ReplyFailuresTotal    prometheus.Counter
	TranscriptWriteErrors prometheus.Counter
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kotori_dispatch_total",
			Help: "Dispatches handled, by outcome.",
		}, []string{"outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kotori_dispatch_duration_seconds",
			Help:    "End-to-end dispatch duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		DispatchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotori_dispatch_retries_total",
			Help: "Dispatches that needed a session-recreation retry.",
		}),

		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kotori_sessions_active",
			Help: "Sessions currently mapped in the registry.",
		}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotori_sessions_created_total",
			Help: "Sessions minted since start.",
		}),
		SessionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotori_sessions_dropped_total",
			Help: "Sessions invalidated or swept since start.",
		}),

		WebhookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kotori_webhook_events_total",
			Help: "Inbound webhook events, by type.",
		}, []string{"type"}),
		WebhookRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotori_webhook_rejected_total",
			Help: "Webhook requests rejected for bad signatures.",
		}),
		RepliesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotori_replies_sent_total",
			Help: "Replies delivered to the messaging platform.",
		}),
		ReplyFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotori_reply_failures_total",
			Help: "Reply deliveries that failed.",
		}),
		TranscriptWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kotori_transcript_write_errors_total",
			Help: "Transcript store writes that failed.",
		}),
	}

	registry.MustRegister(
		m.DispatchTotal,
		m.DispatchDuration,
		m.DispatchRetries,
		m.SessionsActive,
		m.SessionsCreated,
		m.SessionsDropped,
		m.WebhookEventsTotal,
		m.WebhookRejectedTotal,
		m.RepliesSentTotal,
		m.ReplyFailuresTotal,
		m.TranscriptWriteErrors,
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
