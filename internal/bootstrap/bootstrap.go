// Package bootstrap assembles the ranking pipeline from configuration. The
// CLI and the server share it so both see the same cache and upstream stack.
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/app/picks"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/cache"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/config"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/eligibility"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/history"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/roster"
)

// Pipeline is the wired set of components behind every command surface.
type Pipeline struct {
	Provider   string
	Store      cache.Store
	Stats      providers.StatsProvider
	Aggregator *roster.Aggregator
	Tracker    *history.Tracker
	Filter     *eligibility.Filter
	Picks      *picks.Service

	closeStore func() error
}

// Build wires the pipeline. rec may be nil when metrics are not exported.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, rec *metrics.Recorder, now func() time.Time) (*Pipeline, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	if now == nil {
		now = time.Now
	}

	store, closeStore, err := buildStore(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	up, err := selectUpstreams(cfg)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	stats := decorateStats(up.stats, cfg.Retry, rec, logger)
	retrier := providers.NewRetrier(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, logger)

	agg := roster.NewAggregator(stats, store, retrier, rec, logger, roster.Config{
		Season:          cfg.Upstream.Season,
		PruneSuperseded: cfg.Cache.PruneSuperseded,
		Now:             now,
	})
	tracker := history.NewTracker(up.history, store, retrier, rec, logger)
	filter := eligibility.NewFilter(stats, retrier, logger, eligibility.Config{
		ScheduleTimeout: cfg.Upstream.ScheduleTimeout,
	})
	svc := picks.NewService(agg, tracker, filter, picks.Defaults{
		TopN:         cfg.Ranking.TopN,
		LastX:        cfg.Ranking.LastX,
		MinGames:     cfg.Ranking.MinGames,
		LookbackDays: cfg.Ranking.LookbackDays,
	}, now)

	logging.Info(logger, "pipeline ready",
		slog.String(logging.FieldProvider, up.name),
		slog.String("cache", cfg.Cache.Backend),
		slog.Int("max_attempts", retrier.MaxAttempts()),
	)

	return &Pipeline{
		Provider:   up.name,
		Store:      store,
		Stats:      stats,
		Aggregator: agg,
		Tracker:    tracker,
		Filter:     filter,
		Picks:      svc,
		closeStore: closeStore,
	}, nil
}

// Close releases backend connections.
func (p *Pipeline) Close() error {
	if p == nil || p.closeStore == nil {
		return nil
	}
	return p.closeStore()
}
