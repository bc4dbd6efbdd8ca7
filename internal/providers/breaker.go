package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// BreakerSettings tunes when the stats breaker opens.
type BreakerSettings struct {
	FailureRatio float64
	MinRequests  int
	OpenTimeout  time.Duration
}

type breakerStats struct {
	next    StatsProvider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStats trips after FailureRatio of at least MinRequests calls fail
// and rejects calls with ErrCircuitOpen until OpenTimeout passes.
func NewBreakerStats(next StatsProvider, settings BreakerSettings, logger *slog.Logger) StatsProvider {
	if settings.FailureRatio <= 0 || settings.FailureRatio > 1 {
		settings.FailureRatio = 0.6
	}
	if settings.MinRequests <= 0 {
		settings.MinRequests = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = time.Minute
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stats",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < uint32(settings.MinRequests) {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &breakerStats{next: next, breaker: cb}
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return zero, err
	}
	return out.(T), nil
}

func (b *breakerStats) FetchRoster(ctx context.Context, season string) (tabular.Table, error) {
	return execute(b.breaker, func() (tabular.Table, error) {
		return b.next.FetchRoster(ctx, season)
	})
}

func (b *breakerStats) FetchGameLog(ctx context.Context, playerID int64, season string) (tabular.Table, error) {
	return execute(b.breaker, func() (tabular.Table, error) {
		return b.next.FetchGameLog(ctx, playerID, season)
	})
}

func (b *breakerStats) FetchScoreboard(ctx context.Context, date string, timeout time.Duration) ([]tabular.Table, error) {
	return execute(b.breaker, func() ([]tabular.Table, error) {
		return b.next.FetchScoreboard(ctx, date, timeout)
	})
}
