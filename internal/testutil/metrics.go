package testutil

import (
	"context"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
)

// NewRecorderWithShutdown pairs a fresh recorder with a shutdown that does nothing.
func NewRecorderWithShutdown() (*metrics.Recorder, func(context.Context) error) {
	return metrics.NewRecorder(), func(context.Context) error { return nil }
}
