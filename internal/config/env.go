package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Messenger (Required)
	EnvPageAccessToken = "NVN_FB_PAGE_ACCESS_TOKEN"
	EnvVerifyToken     = "NVN_FB_VERIFY_TOKEN"
	EnvAppSecret       = "NVN_FB_APP_SECRET"
	EnvGraphAPIURL     = "NVN_FB_GRAPH_URL"
	EnvGraphAPIVersion = "NVN_FB_GRAPH_VERSION"

	// Server
	EnvPort            = "NVN_PORT"
	EnvLogLevel        = "NVN_LOG_LEVEL"
	EnvShutdownTimeout = "NVN_SHUTDOWN_TIMEOUT"
	EnvServerName      = "NVN_SERVER_NAME"

	// Auth
	EnvJWTSecret     = "NVN_JWT_SECRET"
	EnvAPIRateBurst  = "NVN_API_RATE_BURST"
	EnvAPIRateRefill = "NVN_API_RATE_REFILL"

	// Data
	EnvDataDir               = "NVN_DATA_DIR"
	EnvCatalogReloadInterval = "NVN_CATALOG_RELOAD_INTERVAL"

	// Bot
	EnvTimezone         = "NVN_TIMEZONE"
	EnvGreetingImageURL = "NVN_GREETING_IMAGE_URL"
	EnvPageURL          = "NVN_PAGE_URL"
	EnvGroupURL         = "NVN_GROUP_URL"
	EnvMessengerTimeout = "NVN_MESSENGER_TIMEOUT"

	// Scraper
	EnvScraperTimeout    = "NVN_SCRAPER_TIMEOUT"
	EnvScraperMaxRetries = "NVN_SCRAPER_MAX_RETRIES"
	EnvLotteryURL        = "NVN_LOTTERY_URL"
	EnvYouTubeURL        = "NVN_YOUTUBE_URL"
	EnvDiseaseURL        = "NVN_DISEASE_URL"
	EnvSearchURL         = "NVN_SEARCH_URL"

	// R2 Snapshot Feature
	EnvR2Enabled          = "NVN_R2_ENABLED"
	EnvR2AccountID        = "NVN_R2_ACCOUNT_ID"
	EnvR2Endpoint         = "NVN_R2_ENDPOINT"
	EnvR2AccessKeyID      = "NVN_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey  = "NVN_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName       = "NVN_R2_BUCKET_NAME"
	EnvR2SnapshotPrefix   = "NVN_R2_SNAPSHOT_PREFIX"
	EnvR2SnapshotInterval = "NVN_R2_SNAPSHOT_INTERVAL"
	EnvR2SnapshotRetain   = "NVN_R2_SNAPSHOT_RETAIN"

	// Sentry Feature
	EnvSentryToken       = "NVN_SENTRY_TOKEN"
	EnvSentryHost        = "NVN_SENTRY_HOST"
	EnvSentryEnvironment = "NVN_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "NVN_SENTRY_RELEASE"
	EnvSentrySampleRate  = "NVN_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "NVN_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "NVN_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "NVN_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "NVN_METRICS_USERNAME"
	EnvMetricsPassword    = "NVN_METRICS_PASSWORD"
)
