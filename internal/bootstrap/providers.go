package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/config"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers/fixture"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers/nbastats"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers/ttfl"
)

// Provider names accepted in UpstreamConfig.Provider.
const (
	ProviderNBAStats = "nbastats"
	ProviderFixture  = "fixture"
)

// upstreams holds the raw stats and history sources before decoration.
type upstreams struct {
	name    string
	stats   providers.StatsProvider
	history providers.HistoryPageFetcher
}

// normalizeProviderName lower-cases the configured name, defaulting to nbastats.
func normalizeProviderName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ProviderNBAStats
	}
	return name
}

func selectUpstreams(cfg config.Config) (upstreams, error) {
	name := normalizeProviderName(cfg.Upstream.Provider)
	switch name {
	case ProviderFixture:
		fx := fixture.New()
		return upstreams{name: name, stats: fx, history: fx}, nil
	case ProviderNBAStats:
		stats := nbastats.NewClient(nbastats.Config{
			BaseURL: cfg.Upstream.StatsBaseURL,
			Timeout: cfg.Upstream.Timeout,
		})
		hist := ttfl.NewClient(ttfl.Config{
			BaseURL:    cfg.History.BaseURL,
			HeaderFile: cfg.History.CookieFile,
			Timeout:    cfg.History.Timeout,
		})
		return upstreams{name: name, stats: stats, history: hist}, nil
	default:
		return upstreams{}, fmt.Errorf("unknown provider %q", cfg.Upstream.Provider)
	}
}

// decorateStats wraps the stats upstream with instrumentation, the optional
// breaker and the politeness pacer.
func decorateStats(base providers.StatsProvider, cfg config.RetryConfig, rec *metrics.Recorder, logger *slog.Logger) providers.StatsProvider {
	opts := providers.Options{Metrics: rec, Logger: logger}
	if cfg.PolitenessDelay > 0 {
		opts.Pacer = providers.NewPacer(cfg.PolitenessDelay)
	}
	if cfg.Breaker.Enabled {
		opts.Breaker = &providers.BreakerSettings{
			FailureRatio: cfg.Breaker.FailureRatio,
			MinRequests:  cfg.Breaker.MinRequests,
			OpenTimeout:  cfg.Breaker.OpenTimeout,
		}
	}
	return providers.Decorate(base, opts)
}
