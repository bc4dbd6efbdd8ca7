// Package history keeps the dated cache of past TTFL picks.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/cache"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

// Artifact is the cache metrics label for history.
const Artifact = "history"

// Tracker serves the history of past picks, one cached copy at a time.
type Tracker struct {
	fetcher providers.HistoryPageFetcher
	store   cache.Store
	slot    *cache.Slot
	retrier *providers.Retrier
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewTracker wires a tracker over fetcher and store.
func NewTracker(fetcher providers.HistoryPageFetcher, store cache.Store, retrier *providers.Retrier, rec *metrics.Recorder, logger *slog.Logger) *Tracker {
	return &Tracker{
		fetcher: fetcher,
		store:   store,
		slot:    cache.NewSlot(store, cache.HistoryPrefix()),
		retrier: retrier,
		metrics: rec,
		logger:  logger,
	}
}

// History returns the picks cached for date, refreshing them when absent or
// when force is set. A refresh replaces every earlier history artifact.
func (t *Tracker) History(ctx context.Context, date time.Time, force bool) ([]SelectionRecord, error) {
	day := timeutil.FormatDate(date)
	key := cache.HistoryKey(day)
	log := logging.With(logging.FromContext(ctx, t.logger), logging.FieldDate, day)

	if !force {
		var cached []SelectionRecord
		err := t.store.Load(ctx, key, &cached)
		switch {
		case err == nil:
			t.metrics.RecordCacheLookup(Artifact, true)
			logging.Debug(log, "history cache hit", logging.FieldCount, len(cached))
			return cached, nil
		case cache.IsNotFound(err):
		default:
			logging.Warn(log, "cached history unreadable, refetching", logging.FieldKey, key, "err", err)
		}
		t.metrics.RecordCacheLookup(Artifact, false)
	}

	if t.fetcher == nil {
		return nil, fmt.Errorf("history: %w", providers.ErrProviderUnavailable)
	}
	page, err := providers.Retry(ctx, t.retrier, providers.OpHistory, t.fetcher.FetchHistoryPage)
	if err != nil {
		return nil, fmt.Errorf("fetch history page: %w", err)
	}
	records, err := Extract(page)
	if err != nil {
		return nil, err
	}

	if err := t.slot.Replace(ctx, key, records); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	t.metrics.RecordCacheWrite(Artifact)
	logging.Info(log, "history cached", logging.FieldKey, key, logging.FieldCount, len(records))
	return records, nil
}

// Recent returns the dated records in [target-lookbackDays, target], by calendar day.
func Recent(records []SelectionRecord, target time.Time, lookbackDays int) []SelectionRecord {
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	end := dayOf(target)
	start := end.AddDate(0, 0, -lookbackDays)
	out := make([]SelectionRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Dated() {
			continue
		}
		d := dayOf(rec.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
