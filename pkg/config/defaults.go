package config

import "time"

const (
	DefaultMongoURI                    = ""
	DefaultMongoDatabaseName           = "brand_analyzer"
	DefaultMongoConnTimeout            = 20 * time.Second
	DefaultMongoServerSelectionTimeout = 5 * time.Second
	DefaultMongoSocketTimeout          = 20 * time.Second
	DefaultMongoQueryTimeout           = 10 * time.Second
	DefaultMongoMaxPoolSize            = 50
	DefaultMongoFailureTTL             = 0

	DefaultPort      = "8000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultCORSOrigins       = "*"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultIdempotencyTTL = 10 * time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 35 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultNewsAPIURL      = "https://newsapi.org/v2/everything"
	DefaultNewsRSSURL      = "https://news.google.com/rss/search"
	DefaultRedditSearchURL = "https://www.reddit.com/search.json"
	DefaultWikiSummaryURL  = "https://en.wikipedia.org/api/rest_v1/page/summary/"
	DefaultWikiUserAgent   = "BrandPulse/1.0 (brand mention analyzer)"
	DefaultRedditUserAgent = "brandpulse:analyzer:v1.0"
	DefaultScraperTimeout  = 15 * time.Second
	DefaultMentionLimit    = 100

	DefaultAnalysisTimeout      = 10 * time.Minute
	DefaultAnalysisInterval     = 6 * time.Hour
	DefaultDailyAnalysisTime    = "02:00"
	DefaultCompanyAnalysisDelay = 5 * time.Second

	DefaultKafkaEnabled       = false
	DefaultKafkaAnalysisTopic = "brandpulse.analysis"
	DefaultKafkaAnalysisGroup = "brandpulse-analyzer"

	// MaxMentionsPerResponse caps every mentions-by-source payload.
	MaxMentionsPerResponse = 100
)
