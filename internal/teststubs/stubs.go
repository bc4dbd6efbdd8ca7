package teststubs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// ErrNoStub is returned when a StubStats has nothing configured for a call.
var ErrNoStub = errors.New("teststubs: no stub configured")

// StubStats is a programmable test double for providers.StatsProvider.
type StubStats struct {
	Roster    tabular.Table
	RosterErr error

	// GameLogs and GameLogErrs are keyed by player id.
	GameLogs    map[int64]tabular.Table
	GameLogErrs map[int64]error

	// Scoreboards and ScoreboardErrs are keyed by YYYY-MM-DD.
	Scoreboards    map[string][]tabular.Table
	ScoreboardErrs map[string]error

	// FailFirst makes the first n calls of any kind fail.
	FailFirst int32

	RosterCalls     atomic.Int32
	GameLogCalls    atomic.Int32
	ScoreboardCalls atomic.Int32

	mu        sync.Mutex
	callTimes []time.Time
	failed    atomic.Int32
}

var errFlaky = errors.New("teststubs: flaky failure")

func (s *StubStats) record() error {
	s.mu.Lock()
	s.callTimes = append(s.callTimes, time.Now())
	s.mu.Unlock()
	if s.failed.Load() < s.FailFirst {
		s.failed.Add(1)
		return errFlaky
	}
	return nil
}

// CallTimes returns the start time of every call in order.
func (s *StubStats) CallTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.callTimes...)
}

func (s *StubStats) FetchRoster(ctx context.Context, season string) (tabular.Table, error) {
	_ = season
	s.RosterCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, err
	}
	if err := s.record(); err != nil {
		return tabular.Table{}, err
	}
	return s.Roster, s.RosterErr
}

func (s *StubStats) FetchGameLog(ctx context.Context, playerID int64, season string) (tabular.Table, error) {
	_ = season
	s.GameLogCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, err
	}
	if err := s.record(); err != nil {
		return tabular.Table{}, err
	}
	if err, ok := s.GameLogErrs[playerID]; ok {
		return tabular.Table{}, err
	}
	return s.GameLogs[playerID], nil
}

func (s *StubStats) FetchScoreboard(ctx context.Context, date string, timeout time.Duration) ([]tabular.Table, error) {
	_ = timeout
	s.ScoreboardCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.record(); err != nil {
		return nil, err
	}
	if err, ok := s.ScoreboardErrs[date]; ok {
		return nil, err
	}
	tables, ok := s.Scoreboards[date]
	if !ok {
		return nil, ErrNoStub
	}
	return tables, nil
}

// StubHistoryPage is a test double for providers.HistoryPageFetcher.
type StubHistoryPage struct {
	HTML  string
	Err   error
	Calls atomic.Int32
}

func (s *StubHistoryPage) FetchHistoryPage(ctx context.Context) (string, error) {
	s.Calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.HTML, s.Err
}
