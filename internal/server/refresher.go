package server

import (
	"context"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/refresher"
)

// Refresher is the scheduled warm-up the server starts and stops.
type Refresher interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() refresher.Status
	Trigger(ctx context.Context) (string, error)
}
