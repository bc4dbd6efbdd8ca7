package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/cache"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/config"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
)

// Cache backend names accepted in CacheConfig.Backend.
const (
	BackendFS     = "fs"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var newRedisClient = func(opts *redis.UniversalOptions) redis.UniversalClient {
	return redis.NewUniversalClient(opts)
}

// buildStore selects the artifact store. The returned close func releases
// backend connections and is never nil.
func buildStore(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendFS, "":
		dir := cfg.Dir
		if dir == "" {
			dir = "cache"
		}
		logging.Info(logger, "using filesystem cache", slog.String("dir", dir))
		return cache.NewFSStore(dir), noop, nil
	case BackendMemory:
		logging.Info(logger, "using in-memory cache")
		return cache.NewMemoryStore(), noop, nil
	case BackendRedis:
		client := newRedisClient(&redis.UniversalOptions{
			Addrs:    strings.Split(cfg.RedisAddr, ","),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis cache at %s: %w", cfg.RedisAddr, err)
		}
		logging.Info(logger, "using redis cache",
			slog.String("addr", cfg.RedisAddr),
			slog.String("prefix", cfg.RedisPrefix),
		)
		return cache.NewRedisStore(client, cfg.RedisPrefix, cfg.RedisTTL), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
