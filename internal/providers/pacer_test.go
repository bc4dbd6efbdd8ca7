package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/teststubs"
)

func TestPacedStatsSpacesCalls(t *testing.T) {
	stub := &teststubs.StubStats{GameLogErrs: map[int64]error{2: errors.New("boom")}}
	paced := NewPacedStats(stub, NewPacer(20*time.Millisecond))

	for _, id := range []int64{1, 2, 3} {
		_, _ = paced.FetchGameLog(context.Background(), id, "2025-26")
	}

	times := stub.CallTimes()
	if len(times) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		// small slack for timer granularity
		if gap := times[i].Sub(times[i-1]); gap < 15*time.Millisecond {
			t.Fatalf("expected calls spaced by the pacer, gap %d was %s", i, gap)
		}
	}
}

func TestPacerRespectsCanceledContext(t *testing.T) {
	stub := &teststubs.StubStats{}
	paced := NewPacedStats(stub, NewPacer(time.Hour))

	_, _ = paced.FetchRoster(context.Background(), "2025-26")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := paced.FetchRoster(ctx, "2025-26"); err == nil {
		t.Fatalf("expected error on canceled context")
	}
	if got := stub.RosterCalls.Load(); got != 1 {
		t.Fatalf("expected the canceled call not to reach upstream, got %d calls", got)
	}
}

func TestDisabledPacerDoesNotWait(t *testing.T) {
	p := NewPacer(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("expected no pacing when disabled")
	}
}

func TestPacedStatsHandlesNilInner(t *testing.T) {
	paced := NewPacedStats(nil, NewPacer(0))
	if _, err := paced.FetchScoreboard(context.Background(), "2025-11-02", time.Second); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
