package config

const (
	EnvMongoURI                    = "MONGODB_URI"
	EnvMongoURIAlias               = "MONGO_URI"
	EnvMongoDatabaseName           = "MONGODB_DB_NAME"
	EnvMongoConnTimeout            = "MONGO_CONN_TIMEOUT"
	EnvMongoServerSelectionTimeout = "MONGO_SERVER_SELECTION_TIMEOUT"
	EnvMongoSocketTimeout          = "MONGO_SOCKET_TIMEOUT"
	EnvMongoQueryTimeout           = "MONGO_QUERY_TIMEOUT"
	EnvMongoMaxPoolSize            = "MONGO_MAX_POOL_SIZE"
	EnvMongoTLSInsecureFallback    = "MONGO_TLS_INSECURE_FALLBACK"
	EnvMongoFailureTTL             = "MONGO_FAILURE_TTL"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvCORSOrigins       = "CORS_ALLOWED_ORIGINS"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvNewsAPIKey      = "NEWS_API_KEY"
	EnvNewsAPIURL      = "NEWS_API_URL"
	EnvNewsRSSURL      = "NEWS_RSS_URL"
	EnvRedditSearchURL = "REDDIT_SEARCH_URL"
	EnvWikiSummaryURL  = "WIKI_SUMMARY_URL"
	EnvWikiUserAgent   = "WIKI_USER_AGENT"
	EnvRedditUserAgent = "REDDIT_USER_AGENT"
	EnvScraperTimeout  = "SCRAPER_TIMEOUT"
	EnvNewsLimit       = "NEWS_LIMIT"
	EnvRedditLimit     = "REDDIT_LIMIT"
	EnvTwitterLimit    = "TWITTER_LIMIT"

	EnvAnalysisTimeout      = "ANALYSIS_TIMEOUT"
	EnvAnalysisInterval     = "ANALYSIS_INTERVAL"
	EnvDailyAnalysisTime    = "DAILY_ANALYSIS_TIME"
	EnvCompanyAnalysisDelay = "COMPANY_ANALYSIS_DELAY"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvKafkaAnalysisTopic = "KAFKA_ANALYSIS_TOPIC"
	EnvKafkaAnalysisGroup = "KAFKA_ANALYSIS_GROUP"
)
