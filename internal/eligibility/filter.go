// Package eligibility works out which players can be picked on a date: those
// whose team plays that day and who were not picked recently.
package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/snapshot"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/history"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

const defaultScheduleTimeout = 30 * time.Second

// ScheduleResolutionError means no team could be derived from the schedule
// for a date.
type ScheduleResolutionError struct {
	Date string
	Err  error
}

func (e *ScheduleResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve teams for %s: %v", e.Date, e.Err)
	}
	return fmt.Sprintf("resolve teams for %s: no team information in schedule", e.Date)
}

func (e *ScheduleResolutionError) Unwrap() error {
	return e.Err
}

// Result is the eligibility outcome for one date.
type Result struct {
	Date       string           `json:"date"`
	Teams      []string         `json:"teams"`
	Matcher    string           `json:"matcher"`
	OnDay      []players.Player `json:"onDay"`
	Excluded   []players.Player `json:"excluded"`
	Candidates []players.Player `json:"candidates"`
}

// NoGames reports that no snapshot player plays on the date.
func (r Result) NoGames() bool {
	return len(r.OnDay) == 0
}

// Empty reports that every player on the day was excluded, or none played.
func (r Result) Empty() bool {
	return len(r.Candidates) == 0
}

// CandidateIDs returns the candidate player ids as a set.
func (r Result) CandidateIDs() map[int64]struct{} {
	out := make(map[int64]struct{}, len(r.Candidates))
	for _, p := range r.Candidates {
		out[p.ID] = struct{}{}
	}
	return out
}

// DateResult pairs a date with its result or the error that stopped it.
type DateResult struct {
	Date   string
	Result Result
	Err    error
}

// Config tunes a Filter.
type Config struct {
	// ScheduleTimeout bounds each scoreboard call; zero uses 30s.
	ScheduleTimeout time.Duration
	// Matchers overrides DefaultMatchers.
	Matchers []ShapeMatcher
}

// Filter resolves daily candidates against the upstream schedule.
type Filter struct {
	schedule providers.ScheduleFetcher
	retrier  *providers.Retrier
	logger   *slog.Logger
	cfg      Config
}

// NewFilter wires a filter over the schedule source.
func NewFilter(schedule providers.ScheduleFetcher, retrier *providers.Retrier, logger *slog.Logger, cfg Config) *Filter {
	if cfg.ScheduleTimeout <= 0 {
		cfg.ScheduleTimeout = defaultScheduleTimeout
	}
	if len(cfg.Matchers) == 0 {
		cfg.Matchers = DefaultMatchers
	}
	return &Filter{schedule: schedule, retrier: retrier, logger: logger, cfg: cfg}
}

// CandidatesForDate returns the snapshot players whose team plays on target,
// minus anyone picked in [target-lookbackDays, target]. Names match after
// trimming and ignoring case.
func (f *Filter) CandidatesForDate(ctx context.Context, snap snapshot.SeasonSnapshot, target time.Time, lookbackDays int, picks []history.SelectionRecord) (Result, error) {
	day := timeutil.FormatDate(target)
	log := logging.With(logging.FromContext(ctx, f.logger), logging.FieldDate, day)

	if f.schedule == nil {
		return Result{}, &ScheduleResolutionError{Date: day, Err: providers.ErrProviderUnavailable}
	}
	tables, err := providers.Retry(ctx, f.retrier, providers.OpScoreboard, func(ctx context.Context) ([]tabular.Table, error) {
		return f.schedule.FetchScoreboard(ctx, day, f.cfg.ScheduleTimeout)
	})
	if err != nil {
		return Result{}, &ScheduleResolutionError{Date: day, Err: err}
	}

	roster := snap.Players()
	set, matcher := resolveTeams(f.cfg.Matchers, tables, teamIndex(roster))
	if len(set) == 0 {
		return Result{}, &ScheduleResolutionError{Date: day}
	}

	excluded := make(map[string]struct{})
	for _, rec := range history.Recent(picks, target, lookbackDays) {
		if name := players.NormalizeName(rec.PlayerName); name != "" {
			excluded[name] = struct{}{}
		}
	}

	res := Result{Date: day, Teams: set.Sorted(), Matcher: matcher}
	for _, p := range roster {
		if !set.Has(p.TeamAbbreviation) {
			continue
		}
		res.OnDay = append(res.OnDay, p)
		if _, ok := excluded[players.NormalizeName(p.Name)]; ok {
			res.Excluded = append(res.Excluded, p)
			continue
		}
		res.Candidates = append(res.Candidates, p)
	}

	logging.Info(log, "candidates resolved",
		"teams", len(res.Teams),
		"matcher", matcher,
		"on_day", len(res.OnDay),
		"excluded", len(res.Excluded),
		logging.FieldCount, len(res.Candidates),
	)
	return res, nil
}

// CandidatesForDates resolves each date independently. A failed date carries
// its error and the remaining dates still run; a cancelled context stops the batch.
func (f *Filter) CandidatesForDates(ctx context.Context, snap snapshot.SeasonSnapshot, dates []time.Time, lookbackDays int, picks []history.SelectionRecord) []DateResult {
	out := make([]DateResult, 0, len(dates))
	for _, d := range dates {
		day := timeutil.FormatDate(d)
		if err := ctx.Err(); err != nil {
			out = append(out, DateResult{Date: day, Err: err})
			continue
		}
		res, err := f.CandidatesForDate(ctx, snap, d, lookbackDays, picks)
		if err != nil {
			logging.Warn(logging.FromContext(ctx, f.logger), "candidate resolution failed",
				logging.FieldDate, day,
				"err", err,
			)
		}
		out = append(out, DateResult{Date: day, Result: res, Err: err})
	}
	return out
}

func teamIndex(roster []players.Player) map[int64]string {
	out := make(map[int64]string, len(roster))
	for _, p := range roster {
		if p.TeamID != 0 && p.TeamAbbreviation != "" {
			out[p.TeamID] = p.TeamAbbreviation
		}
	}
	return out
}
