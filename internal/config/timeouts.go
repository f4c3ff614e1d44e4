package config

import "time"

// HTTP server timeouts
const (
	// WebhookHTTPRead is the read timeout; Messenger sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite covers synchronous dispatch, which awaits every
	// outbound send and lookup before acknowledging the delivery.
	WebhookHTTPWrite = 90 * time.Second

	// WebhookHTTPIdle is the idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second

	// WebhookEventProcessing bounds the dispatch of one messaging event.
	WebhookEventProcessing = 60 * time.Second

	// WebhookMaxBodyBytes caps an inbound delivery body.
	WebhookMaxBodyBytes = 1 << 20

	// ReadinessCheck bounds the database ping behind /readyz.
	ReadinessCheck = 3 * time.Second
)

// Outbound call timeouts
const (
	// MessengerRequest bounds a single Graph API call.
	MessengerRequest = 15 * time.Second

	// ScraperRequest bounds a single crawler request.
	ScraperRequest = 20 * time.Second

	// ScraperRetryInitial is the first backoff delay; it doubles per attempt.
	ScraperRetryInitial = time.Second

	// ScraperRetryMax caps the backoff delay.
	ScraperRetryMax = 10 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 5 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// CatalogReload is how often fonts and canned responses are reloaded.
	CatalogReload = 10 * time.Minute

	// SnapshotUpload is how often the SQLite snapshot is pushed to object storage.
	SnapshotUpload = 6 * time.Hour

	// MetricsGaugeUpdate is how often state gauges are refreshed.
	MetricsGaugeUpdate = 30 * time.Second

	// SnapshotJob bounds one snapshot upload or restore.
	SnapshotJob = 5 * time.Minute
)

// Shutdown
const (
	// GracefulShutdown is the default time allowed for in-flight requests.
	GracefulShutdown = 30 * time.Second

	// SentryFlush bounds how long pending error reports are awaited.
	SentryFlush = 2 * time.Second
)
