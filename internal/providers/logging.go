package providers

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
)

// logUpstream emits an entry tagged with the upstream operation, preferring the
// context-scoped logger.
func logUpstream(ctx context.Context, fallback *slog.Logger, level slog.Level, op string, msg string, args ...any) {
	logger := logging.FromContext(ctx, fallback)
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldUpstream, op))
	logger.Log(ctx, level, msg, args...)
}
