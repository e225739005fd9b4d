package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	kafka_config "brandpulse/pkg/kafka/config"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/store"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI                    string
	MongoDatabaseName           string
	MongoConnTimeout            time.Duration
	MongoServerSelectionTimeout time.Duration
	MongoSocketTimeout          time.Duration
	MongoQueryTimeout           time.Duration
	MongoMaxPoolSize            int
	MongoTLSInsecureFallback    bool
	MongoFailureTTL             time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSOrigins       []string

	RequestTimeout time.Duration
	MaxRequestSize int
	IdempotencyTTL time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	NewsAPIKey      string
	NewsAPIURL      string
	NewsRSSURL      string
	RedditSearchURL string
	WikiSummaryURL  string
	WikiUserAgent   string
	RedditUserAgent string
	ScraperTimeout  time.Duration
	NewsLimit       int
	RedditLimit     int
	TwitterLimit    int

	AnalysisTimeout      time.Duration
	AnalysisInterval     time.Duration
	DailyAnalysisTime    string
	CompanyAnalysisDelay time.Duration

	KafkaEnabled       bool
	KafkaAnalysisTopic string
	KafkaAnalysisGroup string
	Kafka              *kafka_config.Config

	Log   *logger.Logger
	Store *store.Store
}

// Load reads configuration from the environment, after loading a .env file
// when one is present. Invalid configuration is fatal.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := FromEnv(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.Store = store.New(cfg.StoreOptions(), cfg.Log.With("component", "store"))
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds the configuration without validating it or opening the store.
func FromEnv(serviceName string) *Config {
	cfg := &Config{
		MongoURI:                    getEnvStr(EnvMongoURI, getEnvStr(EnvMongoURIAlias, DefaultMongoURI)),
		MongoDatabaseName:           getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:            getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoServerSelectionTimeout: getEnvDuration(EnvMongoServerSelectionTimeout, DefaultMongoServerSelectionTimeout),
		MongoSocketTimeout:          getEnvDuration(EnvMongoSocketTimeout, DefaultMongoSocketTimeout),
		MongoQueryTimeout:           getEnvDuration(EnvMongoQueryTimeout, DefaultMongoQueryTimeout),
		MongoMaxPoolSize:            getEnvNum(EnvMongoMaxPoolSize, DefaultMongoMaxPoolSize),
		MongoTLSInsecureFallback:    getEnvBool(EnvMongoTLSInsecureFallback, false),
		MongoFailureTTL:             getEnvDuration(EnvMongoFailureTTL, DefaultMongoFailureTTL),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),
		CORSOrigins:       splitList(getEnvStr(EnvCORSOrigins, DefaultCORSOrigins)),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		NewsAPIKey:      getEnvStr(EnvNewsAPIKey, ""),
		NewsAPIURL:      getEnvStr(EnvNewsAPIURL, DefaultNewsAPIURL),
		NewsRSSURL:      getEnvStr(EnvNewsRSSURL, DefaultNewsRSSURL),
		RedditSearchURL: getEnvStr(EnvRedditSearchURL, DefaultRedditSearchURL),
		WikiSummaryURL:  getEnvStr(EnvWikiSummaryURL, DefaultWikiSummaryURL),
		WikiUserAgent:   getEnvStr(EnvWikiUserAgent, DefaultWikiUserAgent),
		RedditUserAgent: getEnvStr(EnvRedditUserAgent, DefaultRedditUserAgent),
		ScraperTimeout:  getEnvDuration(EnvScraperTimeout, DefaultScraperTimeout),
		NewsLimit:       getEnvNum(EnvNewsLimit, DefaultMentionLimit),
		RedditLimit:     getEnvNum(EnvRedditLimit, DefaultMentionLimit),
		TwitterLimit:    getEnvNum(EnvTwitterLimit, DefaultMentionLimit),

		AnalysisTimeout:      getEnvDuration(EnvAnalysisTimeout, DefaultAnalysisTimeout),
		AnalysisInterval:     getEnvDuration(EnvAnalysisInterval, DefaultAnalysisInterval),
		DailyAnalysisTime:    getEnvStr(EnvDailyAnalysisTime, DefaultDailyAnalysisTime),
		CompanyAnalysisDelay: getEnvDuration(EnvCompanyAnalysisDelay, DefaultCompanyAnalysisDelay),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		KafkaAnalysisTopic: getEnvStr(EnvKafkaAnalysisTopic, DefaultKafkaAnalysisTopic),
		KafkaAnalysisGroup: getEnvStr(EnvKafkaAnalysisGroup, DefaultKafkaAnalysisGroup),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if cfg.KafkaEnabled {
		cfg.Kafka = kafka_config.Load()
	}
	return cfg
}

func (cfg *Config) StoreOptions() store.Options {
	return store.Options{
		URI:                    cfg.MongoURI,
		DatabaseName:           cfg.MongoDatabaseName,
		ConnectTimeout:         cfg.MongoConnTimeout,
		ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
		SocketTimeout:          cfg.MongoSocketTimeout,
		MaxPoolSize:            uint64(max(cfg.MongoMaxPoolSize, 0)),
		TLSInsecureFallback:    cfg.MongoTLSInsecureFallback,
		FailureTTL:             cfg.MongoFailureTTL,
	}
}

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate reports every violation at once. A missing or malformed Mongo URI
// is not a violation: the services run with the store unavailable.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.MongoServerSelectionTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoServerSelectionTimeout must be positive, got: %s", cfg.MongoServerSelectionTimeout))
	}
	if cfg.MongoSocketTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoSocketTimeout must be positive, got: %s", cfg.MongoSocketTimeout))
	}
	if cfg.MongoQueryTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoQueryTimeout must be positive, got: %s", cfg.MongoQueryTimeout))
	}
	if cfg.MongoMaxPoolSize <= 0 {
		errors = append(errors, fmt.Sprintf("MongoMaxPoolSize must be positive, got: %d", cfg.MongoMaxPoolSize))
	}
	if cfg.MongoFailureTTL < 0 {
		errors = append(errors, fmt.Sprintf("MongoFailureTTL cannot be negative, got: %s", cfg.MongoFailureTTL))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.ScraperTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ScraperTimeout must be positive, got: %s", cfg.ScraperTimeout))
	}
	limits := []struct {
		name  string
		value int
	}{
		{"NewsLimit", cfg.NewsLimit},
		{"RedditLimit", cfg.RedditLimit},
		{"TwitterLimit", cfg.TwitterLimit},
	}
	for _, l := range limits {
		if l.value <= 0 || l.value > MaxMentionsPerResponse {
			errors = append(errors, fmt.Sprintf("%s must be between 1 and %d, got: %d", l.name, MaxMentionsPerResponse, l.value))
		}
	}

	if cfg.AnalysisTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("AnalysisTimeout must be positive, got: %s", cfg.AnalysisTimeout))
	}
	if cfg.AnalysisInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("AnalysisInterval must be at least 1m, got: %s", cfg.AnalysisInterval))
	}
	if !timeOfDayRegex.MatchString(cfg.DailyAnalysisTime) {
		errors = append(errors, fmt.Sprintf("DailyAnalysisTime must be in HH:MM format (00:00-23:59), got: %s", cfg.DailyAnalysisTime))
	}
	if cfg.CompanyAnalysisDelay < 0 {
		errors = append(errors, fmt.Sprintf("CompanyAnalysisDelay cannot be negative, got: %s", cfg.CompanyAnalysisDelay))
	}

	if cfg.KafkaEnabled {
		if cfg.KafkaAnalysisTopic == "" {
			errors = append(errors, "KafkaAnalysisTopic cannot be empty when Kafka is enabled")
		}
		if cfg.KafkaAnalysisGroup == "" {
			errors = append(errors, "KafkaAnalysisGroup cannot be empty when Kafka is enabled")
		}
		if cfg.Kafka == nil {
			errors = append(errors, "Kafka configuration is missing")
		} else if err := cfg.Kafka.Validate(); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	if _, err := store.CleanURI(cfg.MongoURI); err != nil {
		cfg.Log.Warn("Document store not configured, serving default payloads", "reason", err.Error())
	}

	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", store.RedactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_server_selection_timeout", cfg.MongoServerSelectionTimeout,
		"mongo_socket_timeout", cfg.MongoSocketTimeout,
		"mongo_query_timeout", cfg.MongoQueryTimeout,
		"mongo_max_pool_size", cfg.MongoMaxPoolSize,
		"mongo_tls_insecure_fallback", cfg.MongoTLSInsecureFallback,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"cors_origins", cfg.CORSOrigins,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"news_api_key_set", cfg.NewsAPIKey != "",
		"scraper_timeout", cfg.ScraperTimeout,
		"news_limit", cfg.NewsLimit,
		"reddit_limit", cfg.RedditLimit,
		"twitter_limit", cfg.TwitterLimit,
		"analysis_timeout", cfg.AnalysisTimeout,
		"analysis_interval", cfg.AnalysisInterval,
		"daily_analysis_time", cfg.DailyAnalysisTime,
		"company_analysis_delay", cfg.CompanyAnalysisDelay,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_analysis_topic", cfg.KafkaAnalysisTopic,
	)

	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func (cfg *Config) GracefulShutdown(ctx context.Context) {
	if cfg.Store != nil {
		cfg.Store.Close(ctx)
	}
}

func getEnvStr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ClampLimit bounds a requested mention count to (0, MaxMentionsPerResponse].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxMentionsPerResponse {
		return MaxMentionsPerResponse
	}
	return limit
}
