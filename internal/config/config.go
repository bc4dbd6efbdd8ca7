package config

import "time"

// Config holds runtime configuration for the CLI and the server.
type Config struct {
	Port        string
	ServiceName string
	Version     string
	// AdminToken guards POST /admin/refresh; empty disables the endpoint.
	AdminToken  string
	Logging     LoggingConfig
	Cache       CacheConfig
	Upstream    UpstreamConfig
	Retry       RetryConfig
	History     HistoryConfig
	Ranking     RankingConfig
	Metrics     MetricsConfig
	Refresh     RefreshConfig
}

type LoggingConfig struct {
	Level  string
	Format string
}

// CacheConfig selects the artifact store. Backend is "fs", "redis" or "memory".
type CacheConfig struct {
	Backend         string
	Dir             string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisPrefix     string
	RedisTTL        time.Duration
	PruneSuperseded bool
}

// UpstreamConfig selects the stats provider ("nbastats" or "fixture").
type UpstreamConfig struct {
	Provider        string
	StatsBaseURL    string
	Timeout         time.Duration
	ScheduleTimeout time.Duration
	// Season overrides the season derived from the run date when set (e.g. "2025-26").
	Season string
}

type RetryConfig struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	PolitenessDelay time.Duration
	Breaker         BreakerConfig
}

type BreakerConfig struct {
	Enabled      bool
	FailureRatio float64
	MinRequests  int
	OpenTimeout  time.Duration
}

type HistoryConfig struct {
	BaseURL    string
	CookieFile string
	Timeout    time.Duration
}

type RankingConfig struct {
	TopN         int
	LastX        int
	MinGames     int
	LookbackDays int
}

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

// RefreshConfig drives the server's scheduled cache warm-up.
type RefreshConfig struct {
	Enabled  bool
	Schedule string
	Timeout  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	service := envOrDefault(envServiceName, defaultServiceName)
	return Config{
		Port:        envOrDefault(envPort, defaultPort),
		ServiceName: service,
		Version:     envOrDefault(envVersion, ""),
		AdminToken:  envOrDefault(envAdminToken, ""),
		Logging: LoggingConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
		Cache: CacheConfig{
			Backend:         envOrDefault(envCacheBackend, defaultCacheBackend),
			Dir:             envOrDefault(envCacheDir, defaultCacheDir),
			RedisAddr:       envOrDefault(envRedisAddr, defaultRedisAddr),
			RedisPassword:   envOrDefault(envRedisPassword, ""),
			RedisDB:         intEnvOrDefault(envRedisDB, 0, 0),
			RedisPrefix:     envOrDefault(envRedisPrefix, defaultRedisPrefix),
			RedisTTL:        optionalDurationEnv(envRedisTTL, 0),
			PruneSuperseded: boolEnvOrDefault(envPruneSuperseded, false),
		},
		Upstream: UpstreamConfig{
			Provider:        envOrDefault(envProvider, defaultProvider),
			StatsBaseURL:    envOrDefault(envStatsBaseURL, defaultStatsBaseURL),
			Timeout:         durationEnvOrDefault(envStatsTimeout, defaultStatsTimeout),
			ScheduleTimeout: durationEnvOrDefault(envScheduleTimeout, defaultScheduleTimeout),
			Season:          envOrDefault(envSeason, ""),
		},
		Retry: RetryConfig{
			MaxAttempts:     intEnvOrDefault(envRetryAttempts, defaultRetryAttempts, 1),
			BaseDelay:       durationEnvOrDefault(envRetryBaseDelay, defaultRetryBaseDelay),
			PolitenessDelay: optionalDurationEnv(envPolitenessDelay, defaultPolitenessDelay),
			Breaker: BreakerConfig{
				Enabled:      boolEnvOrDefault(envBreakerEnabled, false),
				FailureRatio: floatEnvOrDefault(envBreakerRatio, defaultBreakerRatio),
				MinRequests:  intEnvOrDefault(envBreakerMinReqs, defaultBreakerMinReqs, 1),
				OpenTimeout:  durationEnvOrDefault(envBreakerTimeout, defaultBreakerTimeout),
			},
		},
		History: HistoryConfig{
			BaseURL:    envOrDefault(envHistoryBaseURL, defaultHistoryBaseURL),
			CookieFile: envOrDefault(envHistoryCookieFile, defaultHistoryCookieFile),
			Timeout:    durationEnvOrDefault(envHistoryTimeout, defaultHistoryTimeout),
		},
		Ranking: RankingConfig{
			TopN:         intEnvOrDefault(envTopN, defaultTopN, 0),
			LastX:        intEnvOrDefault(envLastX, defaultLastX, 1),
			MinGames:     intEnvOrDefault(envMinGames, defaultMinGames, 0),
			LookbackDays: intEnvOrDefault(envLookbackDays, defaultLookbackDays, 0),
		},
		Metrics: MetricsConfig{
			Enabled:      boolEnvOrDefault(envMetricsOn, true),
			Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
			OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
			ServiceName:  envOrDefault(envOtelService, service),
			OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
		},
		Refresh: RefreshConfig{
			Enabled:  boolEnvOrDefault(envRefreshEnabled, true),
			Schedule: envOrDefault(envRefreshSchedule, defaultRefreshSchedule),
			Timeout:  durationEnvOrDefault(envRefreshTimeout, defaultRefreshTimeout),
		},
	}
}
