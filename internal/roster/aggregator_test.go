package roster

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/cache"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/gamelogs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/snapshot"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/teststubs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/testutil"
)

var (
	alice = players.Player{ID: 1, Name: "Alice Able", Code: "alice_able", TeamID: 1610612738, TeamAbbreviation: "BOS"}
	bruno = players.Player{ID: 2, Name: "Bruno Best", Code: "bruno_best", TeamID: 1610612747, TeamAbbreviation: "LAL"}
	cleo  = players.Player{ID: 3, Name: "Cleo Cruz", Code: "cleo_cruz", TeamID: 1610612738, TeamAbbreviation: "BOS"}
)

var fixedNow = testutil.NowAt(time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC))

func newTestAggregator(stats providers.StatsProvider, store cache.Store, rec *metrics.Recorder) *Aggregator {
	return NewAggregator(stats, store, providers.NewRetrier(2, time.Millisecond, nil), rec, nil, Config{Now: fixedNow})
}

func gamesFor(snap snapshot.SeasonSnapshot, id int64) []*gamelogs.GameRecord {
	var out []*gamelogs.GameRecord
	for _, row := range snap.Rows {
		if row.Player.ID == id && row.Game != nil {
			out = append(out, row.Game)
		}
	}
	return out
}

func TestSeasonSnapshotSkipsFailingPlayer(t *testing.T) {
	stats := &teststubs.StubStats{
		Roster: testutil.RosterTable(alice, bruno, cleo),
		GameLogs: map[int64]tabular.Table{
			1: testutil.GameLogTable(1,
				testutil.Line{GameID: "g1", Date: "2025-10-22", Box: testutil.Points(20)},
				testutil.Line{GameID: "g2", Date: "2025-10-24", Box: testutil.Points(30)},
			),
			3: testutil.GameLogTable(3, testutil.Line{GameID: "g1", Date: "2025-10-22", Box: testutil.Points(12)}),
		},
		GameLogErrs: map[int64]error{2: errors.New("boom")},
	}
	agg := newTestAggregator(stats, cache.NewMemoryStore(), nil)

	snap, err := agg.SeasonSnapshot(context.Background(), "2025-26", testutil.MustDate("2025-11-02"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(gamesFor(snap, 1)); got != 2 {
		t.Fatalf("expected 2 games for player 1, got %d", got)
	}
	if got := len(gamesFor(snap, 3)); got != 1 {
		t.Fatalf("expected 1 game for player 3, got %d", got)
	}
	if got := len(gamesFor(snap, 2)); got != 0 {
		t.Fatalf("expected no games for player 2, got %d", got)
	}
	var brunoRows int
	for _, row := range snap.Rows {
		if row.Player.ID == 2 {
			brunoRows++
		}
	}
	if brunoRows != 1 {
		t.Fatalf("expected player 2 kept as a single game-less row, got %d rows", brunoRows)
	}
	if got := stats.GameLogCalls.Load(); got != 4 {
		t.Fatalf("expected 4 game log calls (player 2 retried once), got %d", got)
	}
	if snap.Season != "2025-26" || snap.Date != "2025-11-02" {
		t.Fatalf("unexpected snapshot identity %s/%s", snap.Season, snap.Date)
	}
	if len(snap.Columns) != len(gamelogs.Columns) {
		t.Fatalf("expected every box-score column, got %v", snap.Columns)
	}
}

func TestSeasonSnapshotScoresGames(t *testing.T) {
	box := gamelogs.BoxScore{PTS: 30, REB: 10, AST: 5, STL: 2, BLK: 1, FGM: 12, FGA: 20, FG3M: 3, FG3A: 8, FTM: 3, FTA: 4, TOV: 4}
	stats := &teststubs.StubStats{
		Roster:   testutil.RosterTable(alice),
		GameLogs: map[int64]tabular.Table{1: testutil.GameLogTable(1, testutil.Line{GameID: "g1", Date: "2025-10-22", Box: box})},
	}
	snap, err := newTestAggregator(stats, cache.NewMemoryStore(), nil).
		SeasonSnapshot(context.Background(), "", testutil.MustDate("2025-11-02"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	games := gamesFor(snap, 1)
	if len(games) != 1 {
		t.Fatalf("expected one game, got %d", len(games))
	}
	if games[0].FantasyScore != 48 {
		t.Fatalf("expected score 48, got %v", games[0].FantasyScore)
	}
	if games[0].GameDate == nil || games[0].GameDate.Format("2006-01-02") != "2025-10-22" {
		t.Fatalf("unexpected game date %v", games[0].GameDate)
	}
	if snap.Season != "2025-26" {
		t.Fatalf("expected season derived from date, got %s", snap.Season)
	}
}

func TestSeasonSnapshotUsesCacheUnlessForced(t *testing.T) {
	store := cache.NewMemoryStore()
	rec := metrics.NewRecorder()
	stats := &teststubs.StubStats{
		Roster:   testutil.RosterTable(alice),
		GameLogs: map[int64]tabular.Table{1: testutil.GameLogTable(1, testutil.Line{GameID: "g1", Date: "2025-10-22", Box: testutil.Points(10)})},
	}
	agg := newTestAggregator(stats, store, rec)
	ctx := context.Background()
	date := testutil.MustDate("2025-11-02")

	first, err := agg.SeasonSnapshot(ctx, "2025-26", date, false)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	stats.GameLogs[1] = testutil.GameLogTable(1, testutil.Line{GameID: "g9", Date: "2025-10-30", Box: testutil.Points(99)})

	second, err := agg.SeasonSnapshot(ctx, "2025-26", date, false)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if stats.GameLogCalls.Load() != 1 {
		t.Fatalf("expected cached snapshot to skip upstream, got %d calls", stats.GameLogCalls.Load())
	}
	if gamesFor(second, 1)[0].GameID != gamesFor(first, 1)[0].GameID {
		t.Fatalf("cached snapshot changed")
	}
	if snap := rec.Cache(ArtifactSnapshot); snap.Hits != 1 || snap.Misses != 1 || snap.Writes != 1 {
		t.Fatalf("unexpected cache metrics %+v", snap)
	}

	forced, err := agg.SeasonSnapshot(ctx, "2025-26", date, true)
	if err != nil {
		t.Fatalf("forced: %v", err)
	}
	if gamesFor(forced, 1)[0].GameID != "g9" {
		t.Fatalf("expected forced refresh to refetch, got %+v", gamesFor(forced, 1)[0])
	}
	if stats.RosterCalls.Load() != 2 {
		t.Fatalf("expected forced refresh to refetch the roster, got %d roster calls", stats.RosterCalls.Load())
	}
}

func TestSeasonSnapshotRosterOnlyWhenNoGames(t *testing.T) {
	stats := &teststubs.StubStats{
		Roster:      testutil.RosterTable(alice, bruno),
		GameLogErrs: map[int64]error{1: errors.New("down"), 2: errors.New("down")},
	}
	store := cache.NewMemoryStore()
	snap, err := newTestAggregator(stats, store, nil).
		SeasonSnapshot(context.Background(), "2025-26", testutil.MustDate("2025-11-02"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.HasGames() || len(snap.Rows) != 2 || snap.Columns != nil {
		t.Fatalf("expected roster-only snapshot, got %+v", snap)
	}
	ok, err := store.Exists(context.Background(), cache.SnapshotKey("2025-26", "2025-11-02"))
	if err != nil || !ok {
		t.Fatalf("expected roster-only snapshot to be cached, ok=%v err=%v", ok, err)
	}
}

func TestSeasonSnapshotKeepsPresentColumnsOnly(t *testing.T) {
	tbl := tabular.Table{
		Headers: []string{"Player_ID", "Game_ID", "GAME_DATE", "PTS", "REB"},
		Rows:    [][]any{{float64(1), "g1", "OCT 22, 2025", float64(10), float64(5)}},
	}
	stats := &teststubs.StubStats{
		Roster:   testutil.RosterTable(alice),
		GameLogs: map[int64]tabular.Table{1: tbl},
	}
	snap, err := newTestAggregator(stats, cache.NewMemoryStore(), nil).
		SeasonSnapshot(context.Background(), "2025-26", testutil.MustDate("2025-11-02"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Columns) != 2 || snap.Columns[0] != "PTS" || snap.Columns[1] != "REB" {
		t.Fatalf("expected only PTS and REB, got %v", snap.Columns)
	}
	if got := gamesFor(snap, 1)[0].FantasyScore; got != 15 {
		t.Fatalf("expected missing counters to count as zero, score 15, got %v", got)
	}
}

func TestSeasonSnapshotAbortsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stats := &teststubs.StubStats{Roster: testutil.RosterTable(alice, bruno)}
	agg := newTestAggregator(stats, cache.NewMemoryStore(), nil)
	if _, err := agg.SeasonRoster(ctx); err != nil {
		t.Fatalf("roster: %v", err)
	}
	cancel()

	_, err := agg.SeasonSnapshot(ctx, "2025-26", testutil.MustDate("2025-11-02"), false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSeasonSnapshotPrunesSuperseded(t *testing.T) {
	store := cache.NewMemoryStore()
	stats := &teststubs.StubStats{
		Roster:   testutil.RosterTable(alice),
		GameLogs: map[int64]tabular.Table{1: testutil.GameLogTable(1, testutil.Line{GameID: "g1", Date: "2025-10-22", Box: testutil.Points(10)})},
	}
	agg := NewAggregator(stats, store, nil, nil, nil, Config{PruneSuperseded: true, Now: fixedNow})
	ctx := context.Background()

	for _, day := range []string{"2025-11-01", "2025-11-02"} {
		if _, err := agg.SeasonSnapshot(ctx, "2025-26", testutil.MustDate(day), false); err != nil {
			t.Fatalf("snapshot %s: %v", day, err)
		}
	}
	keys, err := store.List(ctx, cache.SnapshotPrefix("2025-26"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 1 || keys[0] != cache.SnapshotKey("2025-26", "2025-11-02") {
		t.Fatalf("expected only the newest snapshot, got %v", keys)
	}
}

func TestSeasonRosterFiltersAndCaches(t *testing.T) {
	tbl := testutil.RosterTable(alice, bruno)
	inactive := testutil.RosterRow(players.Player{ID: 9, Name: "Gone Guy", TeamAbbreviation: "MIA"})
	inactive[len(inactive)-1] = "N"
	tbl.Rows = append(tbl.Rows, inactive)
	stats := &teststubs.StubStats{Roster: tbl}
	store := cache.NewMemoryStore()
	agg := newTestAggregator(stats, store, nil)
	ctx := context.Background()

	list, err := agg.SeasonRoster(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0] != alice || list[1] != bruno {
		t.Fatalf("unexpected roster %+v", list)
	}
	if _, err := agg.SeasonRoster(ctx); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if stats.RosterCalls.Load() != 1 {
		t.Fatalf("expected cached roster, got %d upstream calls", stats.RosterCalls.Load())
	}
}

func TestSeasonRosterKeepsAllRowsWithoutFlag(t *testing.T) {
	stats := &teststubs.StubStats{Roster: tabular.Table{
		Headers: []string{"PERSON_ID", "DISPLAY_FIRST_LAST", "TEAM_ABBREVIATION"},
		Rows:    [][]any{{"1", "Alice Able", "BOS"}, {"2", "Bruno Best", "LAL"}},
	}}
	list, err := newTestAggregator(stats, cache.NewMemoryStore(), nil).SeasonRoster(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[1].ID != 2 {
		t.Fatalf("unexpected roster %+v", list)
	}
}

func TestSeasonRosterEmpty(t *testing.T) {
	stats := &teststubs.StubStats{Roster: tabular.Table{Headers: testutil.RosterHeaders}}
	_, err := newTestAggregator(stats, cache.NewMemoryStore(), nil).SeasonRoster(context.Background())
	if !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}
}

func TestCorruptCacheIsRefetched(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()
	if err := store.Save(ctx, cache.RosterKey(), map[string]string{"not": "a list"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	stats := &teststubs.StubStats{Roster: testutil.RosterTable(alice)}
	list, err := newTestAggregator(stats, store, nil).SeasonRoster(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || stats.RosterCalls.Load() != 1 {
		t.Fatalf("expected refetch, got %+v after %d calls", list, stats.RosterCalls.Load())
	}
}

func TestParseGameDate(t *testing.T) {
	cases := map[string]string{
		"NOV 02, 2025":        "2025-11-02",
		"2025-11-02":          "2025-11-02",
		"2025-11-02T00:00:00": "2025-11-02",
	}
	for raw, want := range cases {
		got := parseGameDate(raw)
		if got == nil || got.Format("2006-01-02") != want {
			t.Fatalf("parseGameDate(%q) = %v, want %s", raw, got, want)
		}
	}
	if parseGameDate("garbage") != nil || parseGameDate(nil) != nil {
		t.Fatalf("expected unparseable dates to be nil")
	}
}

func TestSeasonSnapshotScopesLogsWithDate(t *testing.T) {
	stats := &teststubs.StubStats{
		Roster:   testutil.RosterTable(alice),
		GameLogs: map[int64]tabular.Table{1: testutil.GameLogTable(1, testutil.Line{GameID: "g1", Date: "2025-10-22", Box: testutil.Points(10)})},
	}
	logger, buf := testutil.NewBufferLogger()
	agg := NewAggregator(stats, cache.NewMemoryStore(), nil, nil, logger, Config{Now: fixedNow})

	if _, err := agg.SeasonSnapshot(context.Background(), "2025-26", testutil.MustDate("2025-11-02"), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "date=2025-11-02") {
		t.Fatalf("expected date-scoped log lines, got %q", buf.String())
	}
}
