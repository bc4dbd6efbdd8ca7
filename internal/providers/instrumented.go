package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

type instrumentedStats struct {
	next    StatsProvider
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewInstrumentedStats records latency, failures and throttling for every upstream call.
func NewInstrumentedStats(next StatsProvider, rec *metrics.Recorder, logger *slog.Logger) StatsProvider {
	return &instrumentedStats{next: next, metrics: rec, logger: logger}
}

func (s *instrumentedStats) observe(ctx context.Context, op string, start time.Time, err error) {
	dur := time.Since(start)
	s.metrics.RecordUpstreamCall(op, dur, err)
	if rl, ok := AsRateLimitError(err); ok {
		s.metrics.RecordRateLimit(op, rl.RetryAfter)
		logUpstream(ctx, s.logger, slog.LevelWarn, op, "upstream rate limited",
			slog.Duration("retry_after", rl.RetryAfter))
		return
	}
	if err != nil {
		logUpstream(ctx, s.logger, slog.LevelDebug, op, "upstream call failed",
			slog.Int64("duration_ms", dur.Milliseconds()), slog.Any("error", err))
	}
}

func (s *instrumentedStats) FetchRoster(ctx context.Context, season string) (tabular.Table, error) {
	start := time.Now()
	tbl, err := s.next.FetchRoster(ctx, season)
	s.observe(ctx, OpRoster, start, err)
	return tbl, err
}

func (s *instrumentedStats) FetchGameLog(ctx context.Context, playerID int64, season string) (tabular.Table, error) {
	start := time.Now()
	tbl, err := s.next.FetchGameLog(ctx, playerID, season)
	s.observe(ctx, OpGameLog, start, err)
	return tbl, err
}

func (s *instrumentedStats) FetchScoreboard(ctx context.Context, date string, timeout time.Duration) ([]tabular.Table, error) {
	start := time.Now()
	tables, err := s.next.FetchScoreboard(ctx, date, timeout)
	s.observe(ctx, OpScoreboard, start, err)
	return tables, err
}

// Options selects which decorators Decorate applies.
type Options struct {
	Metrics *metrics.Recorder
	Logger  *slog.Logger
	Pacer   *Pacer
	Breaker *BreakerSettings
}

// Decorate composes paced(breaker(instrumented(base))). The pacer sits
// outermost so every attempt, including retries, is spaced.
func Decorate(base StatsProvider, opts Options) StatsProvider {
	if base == nil {
		return nil
	}
	p := NewInstrumentedStats(base, opts.Metrics, opts.Logger)
	if opts.Breaker != nil {
		p = NewBreakerStats(p, *opts.Breaker, opts.Logger)
	}
	if opts.Pacer != nil {
		p = NewPacedStats(p, opts.Pacer)
	}
	return p
}
