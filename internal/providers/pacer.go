package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// Pacer enforces a minimum gap between upstream calls, whatever their outcome.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one call per gap. A non-positive gap disables pacing.
func NewPacer(gap time.Duration) *Pacer {
	if gap <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(gap), 1)}
}

// Wait blocks until the next call may proceed or ctx ends.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// pacedStats waits on the pacer before every upstream call.
type pacedStats struct {
	next  StatsProvider
	pacer *Pacer
}

// NewPacedStats returns a StatsProvider that spaces calls with pacer.
func NewPacedStats(next StatsProvider, pacer *Pacer) StatsProvider {
	return &pacedStats{next: next, pacer: pacer}
}

func (p *pacedStats) FetchRoster(ctx context.Context, season string) (tabular.Table, error) {
	if p.next == nil {
		return tabular.Table{}, ErrProviderUnavailable
	}
	if err := p.pacer.Wait(ctx); err != nil {
		return tabular.Table{}, err
	}
	return p.next.FetchRoster(ctx, season)
}

func (p *pacedStats) FetchGameLog(ctx context.Context, playerID int64, season string) (tabular.Table, error) {
	if p.next == nil {
		return tabular.Table{}, ErrProviderUnavailable
	}
	if err := p.pacer.Wait(ctx); err != nil {
		return tabular.Table{}, err
	}
	return p.next.FetchGameLog(ctx, playerID, season)
}

func (p *pacedStats) FetchScoreboard(ctx context.Context, date string, timeout time.Duration) ([]tabular.Table, error) {
	if p.next == nil {
		return nil, ErrProviderUnavailable
	}
	if err := p.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchScoreboard(ctx, date, timeout)
}
