package config

import "time"

const (
	envPort        = "PORT"
	envServiceName = "SERVICE_NAME"
	envVersion     = "VERSION"
	envAdminToken  = "ADMIN_TOKEN"
	envLogLevel    = "LOG_LEVEL"
	envLogFormat   = "LOG_FORMAT"

	envCacheBackend    = "CACHE_BACKEND"
	envCacheDir        = "CACHE_DIR"
	envRedisAddr       = "REDIS_ADDR"
	envRedisPassword   = "REDIS_PASSWORD"
	envRedisDB         = "REDIS_DB"
	envRedisPrefix     = "REDIS_PREFIX"
	envRedisTTL        = "REDIS_TTL"
	envPruneSuperseded = "CACHE_PRUNE_SUPERSEDED"

	envProvider        = "PROVIDER"
	envStatsBaseURL    = "STATS_BASE_URL"
	envStatsTimeout    = "STATS_TIMEOUT"
	envScheduleTimeout = "SCHEDULE_TIMEOUT"
	envSeason          = "SEASON"

	envRetryAttempts   = "RETRY_MAX_ATTEMPTS"
	envRetryBaseDelay  = "RETRY_BASE_DELAY"
	envPolitenessDelay = "POLITENESS_DELAY"
	envBreakerEnabled  = "BREAKER_ENABLED"
	envBreakerRatio    = "BREAKER_FAILURE_RATIO"
	envBreakerMinReqs  = "BREAKER_MIN_REQUESTS"
	envBreakerTimeout  = "BREAKER_OPEN_TIMEOUT"

	envHistoryBaseURL    = "TTFL_BASE_URL"
	envHistoryCookieFile = "TTFL_COOKIE_FILE"
	envHistoryTimeout    = "TTFL_TIMEOUT"

	envTopN         = "RANKING_TOP_N"
	envLastX        = "RANKING_LAST_X"
	envMinGames     = "RANKING_MIN_GAMES"
	envLookbackDays = "ELIGIBILITY_LOOKBACK_DAYS"

	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	envRefreshEnabled  = "REFRESH_ENABLED"
	envRefreshSchedule = "REFRESH_SCHEDULE"
	envRefreshTimeout  = "REFRESH_TIMEOUT"

	defaultPort        = "4000"
	defaultServiceName = "nba-fantasy-ranker"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"

	defaultCacheBackend = "fs"
	defaultCacheDir     = "cache"
	defaultRedisAddr    = "localhost:6379"
	defaultRedisPrefix  = "ttfl:"

	defaultProvider        = "nbastats"
	defaultStatsBaseURL    = "https://stats.nba.com/stats"
	defaultStatsTimeout    = 30 * time.Second
	defaultScheduleTimeout = 30 * time.Second

	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = 2 * time.Second
	// Gap between bulk upstream calls; stats.nba.com throttles bursts hard.
	defaultPolitenessDelay = 600 * time.Millisecond
	defaultBreakerRatio    = 0.6
	defaultBreakerMinReqs  = 5
	defaultBreakerTimeout  = time.Minute

	defaultHistoryBaseURL    = "https://fantasy.trashtalk.co"
	defaultHistoryCookieFile = "header_cookie.json"
	defaultHistoryTimeout    = 30 * time.Second

	defaultTopN         = 20
	defaultLastX        = 5
	defaultMinGames     = 10
	defaultLookbackDays = 30

	defaultMetricsPort = "9090"

	// 09:30 UTC, after the previous night's games have settled upstream.
	defaultRefreshSchedule = "30 9 * * *"
	defaultRefreshTimeout  = 30 * time.Minute
)
