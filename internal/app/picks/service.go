// Package picks answers the questions the CLI and HTTP surfaces ask: who
// ranks highest, who can be picked on a date, and what was picked before.
package picks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/snapshot"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/eligibility"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/history"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/ranking"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

// User-facing outcomes that are reported rather than failed.
const (
	MsgNoPlayers    = "no players with games"
	MsgNoGames      = "no games found for date"
	MsgNoEligible   = "no eligible players after exclusion"
	MsgNoQualifying = "no players meet the minimum games played"
)

// ErrNoPlayers means the snapshot holds no game records to rank.
var ErrNoPlayers = errors.New(MsgNoPlayers)

// SnapshotSource provides season snapshots.
type SnapshotSource interface {
	SeasonSnapshot(ctx context.Context, season string, date time.Time, force bool) (snapshot.SeasonSnapshot, error)
}

// HistorySource provides past picks.
type HistorySource interface {
	History(ctx context.Context, date time.Time, force bool) ([]history.SelectionRecord, error)
}

// EligibilitySource resolves candidates per date.
type EligibilitySource interface {
	CandidatesForDates(ctx context.Context, snap snapshot.SeasonSnapshot, dates []time.Time, lookbackDays int, picks []history.SelectionRecord) []eligibility.DateResult
}

// Defaults fill zero-valued request fields.
type Defaults struct {
	TopN         int
	LastX        int
	MinGames     int
	LookbackDays int
}

// RankingRequest selects the snapshot and ranking knobs. Nil pointers use defaults.
type RankingRequest struct {
	TopN     *int
	LastX    *int
	MinGames *int
	Refresh  bool
}

// RankingReport is a ranked snapshot. Message is set when nothing qualified.
type RankingReport struct {
	Season  string        `json:"season"`
	Date    string        `json:"date"`
	Rows    []ranking.Row `json:"rows"`
	Message string        `json:"message,omitempty"`
}

// CandidateRequest asks for ranked candidates on one or more dates.
type CandidateRequest struct {
	Dates        []time.Time
	TopN         *int
	LastX        *int
	MinGames     *int
	LookbackDays *int
	Refresh      bool
}

// CandidateReport is the outcome for one date. Message is set when the date
// produced no ranking; Err when it failed.
type CandidateReport struct {
	Date     string             `json:"date"`
	Teams    []string           `json:"teams,omitempty"`
	Excluded []string           `json:"excluded,omitempty"`
	Rows     []ranking.Row      `json:"rows"`
	Message  string             `json:"message,omitempty"`
	Err      error              `json:"-"`
	Result   eligibility.Result `json:"-"`
}

// Service ties snapshots, history and eligibility together.
type Service struct {
	snapshots   SnapshotSource
	history     HistorySource
	eligibility EligibilitySource
	defaults    Defaults
	now         func() time.Time
}

// NewService constructs a Service. A nil now uses time.Now.
func NewService(snapshots SnapshotSource, hist HistorySource, elig EligibilitySource, defaults Defaults, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		snapshots:   snapshots,
		history:     hist,
		eligibility: elig,
		defaults:    defaults,
		now:         now,
	}
}

// Today is the service's current calendar day.
func (s *Service) Today() time.Time {
	return timeutil.StartOfDay(s.now())
}

// Snapshot returns today's snapshot.
func (s *Service) Snapshot(ctx context.Context, refresh bool) (snapshot.SeasonSnapshot, error) {
	snap, err := s.snapshots.SeasonSnapshot(ctx, "", s.Today(), refresh)
	if err != nil {
		return snapshot.SeasonSnapshot{}, fmt.Errorf("season snapshot: %w", err)
	}
	return snap, nil
}

// Rankings ranks every player in today's snapshot.
func (s *Service) Rankings(ctx context.Context, req RankingRequest) (RankingReport, error) {
	snap, err := s.Snapshot(ctx, req.Refresh)
	if err != nil {
		return RankingReport{}, err
	}
	report := RankingReport{Season: snap.Season, Date: snap.Date}
	if !snap.HasGames() {
		return report, ErrNoPlayers
	}
	report.Rows = ranking.TopPlayersByScore(snap, ranking.Options{
		TopN:     pick(req.TopN, s.defaults.TopN),
		LastX:    pick(req.LastX, s.defaults.LastX),
		MinGames: pick(req.MinGames, s.defaults.MinGames),
	})
	if len(report.Rows) == 0 {
		report.Message = MsgNoQualifying
	}
	return report, nil
}

// Candidates ranks the eligible players of each requested date. Per-date
// failures are reported in the matching CandidateReport; snapshot and
// history failures fail the whole call.
func (s *Service) Candidates(ctx context.Context, req CandidateRequest) ([]CandidateReport, error) {
	dates := req.Dates
	if len(dates) == 0 {
		dates = []time.Time{s.Today()}
	}
	snap, err := s.Snapshot(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}
	if !snap.HasGames() {
		return nil, ErrNoPlayers
	}
	picks, err := s.history.History(ctx, s.Today(), req.Refresh)
	if err != nil {
		return nil, fmt.Errorf("pick history: %w", err)
	}

	opts := ranking.Options{
		TopN:     pick(req.TopN, s.defaults.TopN),
		LastX:    pick(req.LastX, s.defaults.LastX),
		MinGames: pick(req.MinGames, s.defaults.MinGames),
	}
	lookback := pick(req.LookbackDays, s.defaults.LookbackDays)

	results := s.eligibility.CandidatesForDates(ctx, snap, dates, lookback, picks)
	reports := make([]CandidateReport, 0, len(results))
	for _, dr := range results {
		rep := CandidateReport{Date: dr.Date, Err: dr.Err, Result: dr.Result, Rows: []ranking.Row{}}
		if dr.Err != nil {
			reports = append(reports, rep)
			continue
		}
		rep.Teams = dr.Result.Teams
		for _, p := range dr.Result.Excluded {
			rep.Excluded = append(rep.Excluded, p.Name)
		}
		switch {
		case dr.Result.NoGames():
			rep.Message = MsgNoGames
		case dr.Result.Empty():
			rep.Message = MsgNoEligible
		default:
			opts.Restrict = dr.Result.CandidateIDs()
			rep.Rows = ranking.TopPlayersByScore(snap, opts)
			if len(rep.Rows) == 0 {
				rep.Message = MsgNoQualifying
			}
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Warm builds today's snapshot and pick history so later requests hit the
// cache. Both are attempted; their errors are joined.
func (s *Service) Warm(ctx context.Context, force bool) error {
	_, snapErr := s.Snapshot(ctx, force)
	var histErr error
	if _, err := s.history.History(ctx, s.Today(), force); err != nil {
		histErr = fmt.Errorf("pick history: %w", err)
	}
	return errors.Join(snapErr, histErr)
}

// History returns the picks cached for today.
func (s *Service) History(ctx context.Context, refresh bool) ([]history.SelectionRecord, error) {
	return s.history.History(ctx, s.Today(), refresh)
}

func pick(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
