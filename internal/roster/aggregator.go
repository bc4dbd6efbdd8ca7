// Package roster builds season snapshots: the active roster left-joined with
// every player's game log, scored and cached per day.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/cache"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/gamelogs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/snapshot"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

// Cache artifact names used for metrics.
const (
	ArtifactRoster   = "roster"
	ArtifactSnapshot = "snapshot"
)

const defaultProgressEvery = 50

// ErrEmptyRoster is returned when upstream reports no active players.
var ErrEmptyRoster = errors.New("roster: no active players")

// Config tunes an Aggregator.
type Config struct {
	// Season pins the season; empty derives it from the snapshot date.
	Season string
	// PruneSuperseded deletes older snapshots of the same season after a save.
	PruneSuperseded bool
	// ProgressEvery logs progress every n players; zero uses 50.
	ProgressEvery int
	// Now stamps CreatedAt; nil uses time.Now.
	Now func() time.Time
}

// Aggregator fetches and caches rosters and season snapshots.
type Aggregator struct {
	stats   providers.StatsProvider
	store   cache.Store
	retrier *providers.Retrier
	metrics *metrics.Recorder
	logger  *slog.Logger
	cfg     Config
}

// NewAggregator wires an aggregator. stats and store are required.
func NewAggregator(stats providers.StatsProvider, store cache.Store, retrier *providers.Retrier, rec *metrics.Recorder, logger *slog.Logger, cfg Config) *Aggregator {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = defaultProgressEvery
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Aggregator{
		stats:   stats,
		store:   store,
		retrier: retrier,
		metrics: rec,
		logger:  logger,
		cfg:     cfg,
	}
}

// SeasonFor resolves the season used for date.
func (a *Aggregator) SeasonFor(date time.Time) string {
	if a.cfg.Season != "" {
		return a.cfg.Season
	}
	return timeutil.SeasonFor(date)
}

// SeasonRoster returns the cached roster of players who appeared this season,
// fetching it when absent.
func (a *Aggregator) SeasonRoster(ctx context.Context) ([]players.Player, error) {
	return a.roster(ctx, a.SeasonFor(a.cfg.Now()), false)
}

func (a *Aggregator) roster(ctx context.Context, season string, force bool) ([]players.Player, error) {
	log := logging.FromContext(ctx, a.logger)
	key := cache.RosterKey()

	if !force {
		var cached []players.Player
		if a.load(ctx, key, ArtifactRoster, &cached) {
			return cached, nil
		}
	}

	tbl, err := providers.Retry(ctx, a.retrier, providers.OpRoster, func(ctx context.Context) (tabular.Table, error) {
		return a.stats.FetchRoster(ctx, season)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	list, flagged := projectRoster(tbl)
	if !flagged {
		logging.Warn(log, "roster has no participation flag, keeping every row",
			logging.FieldSeason, season,
			"column", colPlayedFlag,
		)
	}
	if len(list) == 0 {
		return nil, ErrEmptyRoster
	}
	if err := a.store.Save(ctx, key, list); err != nil {
		return nil, fmt.Errorf("save roster: %w", err)
	}
	a.metrics.RecordCacheWrite(ArtifactRoster)
	logging.Info(log, "roster cached", logging.FieldSeason, season, logging.FieldCount, len(list))
	return list, nil
}

// SeasonSnapshot returns the snapshot for (season, date). A cached snapshot is
// returned unchanged unless force is set. Empty season derives from date.
func (a *Aggregator) SeasonSnapshot(ctx context.Context, season string, date time.Time, force bool) (snapshot.SeasonSnapshot, error) {
	if season == "" {
		season = a.SeasonFor(date)
	}
	day := timeutil.FormatDate(date)
	key := cache.SnapshotKey(season, day)
	log := logging.With(logging.FromContext(ctx, a.logger), logging.FieldSeason, season, logging.FieldDate, day)

	if !force {
		var cached snapshot.SeasonSnapshot
		if a.load(ctx, key, ArtifactSnapshot, &cached) {
			return cached, nil
		}
	}

	start := time.Now()
	roster, err := a.roster(ctx, season, force)
	if err != nil {
		return snapshot.SeasonSnapshot{}, err
	}

	games, present, err := a.collect(ctx, log, season, roster)
	if err != nil {
		return snapshot.SeasonSnapshot{}, err
	}

	snap := snapshot.SeasonSnapshot{
		Season:    season,
		Date:      day,
		CreatedAt: a.cfg.Now().UTC(),
		Columns:   present,
		Rows:      join(roster, games),
	}
	if len(games) == 0 {
		logging.Warn(log, "no game records collected, snapshot holds the roster only")
		snap.Columns = nil
	}

	if err := a.store.Save(ctx, key, snap); err != nil {
		return snapshot.SeasonSnapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	a.metrics.RecordCacheWrite(ArtifactSnapshot)
	logging.Info(log, "snapshot cached",
		logging.FieldKey, key,
		logging.FieldCount, len(snap.Rows),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	if a.cfg.PruneSuperseded {
		removed, err := cache.Prune(ctx, a.store, cache.SnapshotPrefix(season), key)
		if err != nil {
			logging.Warn(log, "failed to prune superseded snapshots", "err", err)
		} else if len(removed) > 0 {
			logging.Info(log, "pruned superseded snapshots", logging.FieldCount, len(removed))
		}
	}
	return snap, nil
}

// collect fetches every player's game log in roster order. Per-player
// failures are logged and skipped; a cancelled context aborts the run.
func (a *Aggregator) collect(ctx context.Context, log *slog.Logger, season string, roster []players.Player) (map[int64][]gamelogs.GameRecord, []string, error) {
	games := make(map[int64][]gamelogs.GameRecord, len(roster))
	headers := make(map[string]struct{})
	ok, failed := 0, 0

	for i, p := range roster {
		tbl, err := providers.Retry(ctx, a.retrier, providers.OpGameLog, func(ctx context.Context) (tabular.Table, error) {
			return a.stats.FetchGameLog(ctx, p.ID, season)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, fmt.Errorf("collect game logs: %w", ctxErr)
			}
			failed++
			logging.Warn(log, "game log fetch failed, skipping player",
				logging.FieldPlayerID, p.ID,
				"player", p.Name,
				"err", err,
			)
		} else {
			ok++
			for _, h := range tbl.Headers {
				headers[strings.ToUpper(strings.TrimSpace(h))] = struct{}{}
			}
			for _, rec := range parseGameLog(tbl, p.ID) {
				games[rec.PlayerID] = append(games[rec.PlayerID], rec)
			}
		}

		if (i+1)%a.cfg.ProgressEvery == 0 {
			logging.Info(log, "game log progress",
				"done", i+1,
				"total", len(roster),
				"ok", ok,
				"failed", failed,
			)
		}
	}

	present, missing := knownColumns(headers)
	if len(games) > 0 && len(missing) > 0 {
		logging.Warn(log, "game logs are missing box-score columns, treating them as zero",
			"missing", strings.Join(missing, ","),
		)
	}
	logging.Info(log, "game logs collected", "ok", ok, "failed", failed, "players", len(roster))
	return games, present, nil
}

// knownColumns splits the box-score columns into those seen and those absent.
func knownColumns(headers map[string]struct{}) (present, missing []string) {
	for _, col := range gamelogs.Columns {
		if _, ok := headers[col]; ok {
			present = append(present, col)
		} else {
			missing = append(missing, col)
		}
	}
	return present, missing
}

// join left-joins the roster with games: one row per game, or a single
// game-less row for players who never played. Games are in date order.
func join(roster []players.Player, games map[int64][]gamelogs.GameRecord) []snapshot.Row {
	rows := make([]snapshot.Row, 0, len(roster))
	for _, p := range roster {
		recs := games[p.ID]
		if len(recs) == 0 {
			rows = append(rows, snapshot.Row{Player: p})
			continue
		}
		sort.SliceStable(recs, func(i, j int) bool {
			return gameBefore(recs[i], recs[j])
		})
		for i := range recs {
			rec := recs[i]
			rows = append(rows, snapshot.Row{Player: p, Game: &rec})
		}
	}
	return rows
}

// gameBefore orders dated games chronologically, undated ones last.
func gameBefore(a, b gamelogs.GameRecord) bool {
	switch {
	case a.Dated() && b.Dated():
		return a.GameDate.Before(*b.GameDate)
	case a.Dated():
		return true
	default:
		return false
	}
}

// load reads key into dest. Unreadable artifacts are treated as misses.
func (a *Aggregator) load(ctx context.Context, key, artifact string, dest any) bool {
	err := a.store.Load(ctx, key, dest)
	switch {
	case err == nil:
		a.metrics.RecordCacheLookup(artifact, true)
		logging.Debug(logging.FromContext(ctx, a.logger), "cache hit", logging.FieldKey, key)
		return true
	case cache.IsNotFound(err):
	default:
		logging.Warn(logging.FromContext(ctx, a.logger), "cached artifact unreadable, refetching",
			logging.FieldKey, key,
			"err", err,
		)
	}
	a.metrics.RecordCacheLookup(artifact, false)
	return false
}
