// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Dispatcher metrics
	DispatchRoutesTotal *prometheus.CounterVec

	// Messenger Graph API metrics
	MessengerCallsTotal    *prometheus.CounterVec
	MessengerCallDurations *prometheus.HistogramVec

	// Crawler metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec
	SingleflightDedupTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal  *prometheus.CounterVec
	RateLimitedTotal *prometheus.CounterVec

	// State gauges
	CatalogFonts     prometheus.Gauge
	CatalogResponses prometheus.Gauge
	BannedUsers      prometheus.Gauge
	MutedUsers       prometheus.Gauge
	BotEnabled       prometheus.Gauge

	// Background job metrics
	CatalogReloadsTotal  *prometheus.CounterVec
	SnapshotUploadsTotal *prometheus.CounterVec
	SnapshotSizeBytes    prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	f := promauto.With(registry)
	return &Metrics{
		WebhookRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // event_type: message, quick_reply, postback, verify
		),
		WebhookDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nvn_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"event_type"},
		),

		DispatchRoutesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_dispatch_routes_total",
				Help: "Total number of dispatched events by the route that handled them",
			},
			[]string{"route"}, // route: banned, quick_reply, postback, font, response, lucky, admin, ...
		),

		MessengerCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_messenger_calls_total",
				Help: "Total number of Graph API calls by operation and status",
			},
			[]string{"op", "status"}, // op: send, mark_seen, typing_on, typing_off, profile, setup
		),
		MessengerCallDurations: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nvn_messenger_call_duration_seconds",
				Help:    "Graph API call duration in seconds by operation",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"op"},
		),

		ScraperRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_scraper_requests_total",
				Help: "Total number of crawler requests by crawler and status",
			},
			[]string{"crawler", "status"}, // status: success, error, not_found
		),
		ScraperDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nvn_scraper_duration_seconds",
				Help:    "Crawler request duration in seconds by crawler",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"crawler"},
		),
		SingleflightDedupTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_singleflight_dedup_total",
				Help: "Total number of crawler calls that shared an in-flight result",
			},
			[]string{"crawler"},
		),

		HTTPErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: invalid_signature, bad_request, unauthorized
		),
		RateLimitedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_rate_limited_total",
				Help: "Total requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),

		CatalogFonts: f.NewGauge(prometheus.GaugeOpts{
			Name: "nvn_catalog_fonts",
			Help: "Number of fonts in the in-memory catalog",
		}),
		CatalogResponses: f.NewGauge(prometheus.GaugeOpts{
			Name: "nvn_catalog_responses",
			Help: "Number of canned response groups in the in-memory catalog",
		}),
		BannedUsers: f.NewGauge(prometheus.GaugeOpts{
			Name: "nvn_banned_users",
			Help: "Number of banned senders",
		}),
		MutedUsers: f.NewGauge(prometheus.GaugeOpts{
			Name: "nvn_muted_users",
			Help: "Number of senders who muted the bot since start",
		}),
		BotEnabled: f.NewGauge(prometheus.GaugeOpts{
			Name: "nvn_bot_enabled",
			Help: "1 when the bot answers non-admin senders",
		}),

		CatalogReloadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_catalog_reloads_total",
				Help: "Total number of catalog reloads by status",
			},
			[]string{"status"},
		),
		SnapshotUploadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvn_snapshot_uploads_total",
				Help: "Total number of database snapshot uploads by status",
			},
			[]string{"status"},
		),
		SnapshotSizeBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "nvn_snapshot_size_bytes",
			Help: "Compressed size of the last uploaded snapshot",
		}),
	}
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordRoute records which dispatcher route handled an event
func (m *Metrics) RecordRoute(route string) {
	m.DispatchRoutesTotal.WithLabelValues(route).Inc()
}

// RecordMessengerCall records a Graph API call
func (m *Metrics) RecordMessengerCall(op, status string, duration float64) {
	m.MessengerCallsTotal.WithLabelValues(op, status).Inc()
	m.MessengerCallDurations.WithLabelValues(op).Observe(duration)
}

// RecordScraperRequest records a crawler request with status
func (m *Metrics) RecordScraperRequest(crawler, status string, duration float64) {
	m.ScraperRequestsTotal.WithLabelValues(crawler, status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(crawler).Observe(duration)
}

// RecordSingleflightDedup records a deduplicated crawler call
func (m *Metrics) RecordSingleflightDedup(crawler string) {
	m.SingleflightDedupTotal.WithLabelValues(crawler).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimited records a request rejected by the named limiter
func (m *Metrics) RecordRateLimited(limiter string) {
	m.RateLimitedTotal.WithLabelValues(limiter).Inc()
}

// RecordCatalogReload records a catalog reload and the resulting sizes
func (m *Metrics) RecordCatalogReload(status string, fonts, responses int) {
	m.CatalogReloadsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.CatalogFonts.Set(float64(fonts))
		m.CatalogResponses.Set(float64(responses))
	}
}

// SetRuntimeState updates the bot state gauges
func (m *Metrics) SetRuntimeState(enabled bool, banned, muted int) {
	if enabled {
		m.BotEnabled.Set(1)
	} else {
		m.BotEnabled.Set(0)
	}
	m.BannedUsers.Set(float64(banned))
	m.MutedUsers.Set(float64(muted))
}

// RecordSnapshotUpload records a snapshot upload attempt
func (m *Metrics) RecordSnapshotUpload(status string, size int64) {
	m.SnapshotUploadsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.SnapshotSizeBytes.Set(float64(size))
	}
}
