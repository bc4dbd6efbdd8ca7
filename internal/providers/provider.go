package providers

import (
	"context"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// RosterFetcher returns the season's player index (one row per player).
type RosterFetcher interface {
	FetchRoster(ctx context.Context, season string) (tabular.Table, error)
}

// GameLogFetcher returns one player's per-game rows for a season ("YYYY-YY").
// The table may omit box-score columns; callers degrade gracefully.
type GameLogFetcher interface {
	FetchGameLog(ctx context.Context, playerID int64, season string) (tabular.Table, error)
}

// ScheduleFetcher returns the result sets describing games on date (YYYY-MM-DD).
// Column shapes vary across upstream versions.
type ScheduleFetcher interface {
	FetchScoreboard(ctx context.Context, date string, timeout time.Duration) ([]tabular.Table, error)
}

// StatsProvider combines every stats upstream capability.
type StatsProvider interface {
	RosterFetcher
	GameLogFetcher
	ScheduleFetcher
}

// HistoryPageFetcher returns the raw markup of the user's pick history page.
type HistoryPageFetcher interface {
	FetchHistoryPage(ctx context.Context) (string, error)
}

// Upstream operation names used for logs and metrics.
const (
	OpRoster     = "roster"
	OpGameLog    = "gamelog"
	OpScoreboard = "scoreboard"
	OpHistory    = "history"
)
