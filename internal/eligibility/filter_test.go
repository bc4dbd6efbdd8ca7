package eligibility

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/snapshot"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/history"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/teststubs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/testutil"
)

const (
	bosID = 1610612738
	lalID = 1610612747
	gswID = 1610612744
)

var (
	playerA = players.Player{ID: 1, Name: "A", TeamID: bosID, TeamAbbreviation: "BOS"}
	playerB = players.Player{ID: 2, Name: "B", TeamID: lalID, TeamAbbreviation: "LAL"}
	playerC = players.Player{ID: 3, Name: "Cee Cee", TeamID: gswID, TeamAbbreviation: "gsw"}
)

func snapOf(ps ...players.Player) snapshot.SeasonSnapshot {
	rows := make([]snapshot.Row, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, snapshot.Row{Player: p, Game: testutil.Game(p.ID, "g1", "2025-10-22", 20)})
	}
	return testutil.Snapshot("2025-11-02", rows...)
}

func lineScore(abbrs ...string) tabular.Table {
	rows := make([][]any, 0, len(abbrs))
	for _, a := range abbrs {
		rows = append(rows, []any{a})
	}
	return tabular.Table{Name: "LineScore", Headers: []string{"TEAM_ABBREVIATION"}, Rows: rows}
}

func gameHeader(pairs ...[2]float64) tabular.Table {
	rows := make([][]any, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []any{p[0], p[1]})
	}
	return tabular.Table{Name: "GameHeader", Headers: []string{"HOME_TEAM_ID", "VISITOR_TEAM_ID"}, Rows: rows}
}

func newTestFilter(stats *teststubs.StubStats) *Filter {
	return NewFilter(stats, providers.NewRetrier(2, time.Millisecond, nil), nil, Config{})
}

func TestCandidatesExcludeRecentPicks(t *testing.T) {
	stats := &teststubs.StubStats{Scoreboards: map[string][]tabular.Table{
		"2025-11-02": {lineScore("BOS")},
	}}
	picks := []history.SelectionRecord{{Date: testutil.MustDate("2025-10-20"), PlayerName: " a "}}

	res, err := newTestFilter(stats).CandidatesForDate(context.Background(), snapOf(playerA, playerB),
		testutil.MustDate("2025-11-02"), 30, picks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty() || res.NoGames() {
		t.Fatalf("expected empty candidates with players on the day, got %+v", res)
	}
	if len(res.Excluded) != 1 || res.Excluded[0].ID != playerA.ID {
		t.Fatalf("expected A excluded, got %+v", res.Excluded)
	}
	if len(res.Teams) != 1 || res.Teams[0] != "BOS" {
		t.Fatalf("unexpected teams %v", res.Teams)
	}
}

func TestCandidatesIgnorePicksOutsideLookback(t *testing.T) {
	stats := &teststubs.StubStats{Scoreboards: map[string][]tabular.Table{
		"2025-11-02": {lineScore("BOS", "LAL")},
	}}
	picks := []history.SelectionRecord{{Date: testutil.MustDate("2025-09-01"), PlayerName: "A"}}

	res, err := newTestFilter(stats).CandidatesForDate(context.Background(), snapOf(playerA, playerB, playerC),
		testutil.MustDate("2025-11-02"), 30, picks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 2 || res.Candidates[0].ID != 1 || res.Candidates[1].ID != 2 {
		t.Fatalf("expected A and B, got %+v", res.Candidates)
	}
	if ids := res.CandidateIDs(); len(ids) != 2 {
		t.Fatalf("unexpected id set %v", ids)
	}
}

func TestTeamIDsMapThroughRoster(t *testing.T) {
	stats := &teststubs.StubStats{Scoreboards: map[string][]tabular.Table{
		"2025-11-02": {gameHeader([2]float64{gswID, lalID})},
	}}
	res, err := newTestFilter(stats).CandidatesForDate(context.Background(), snapOf(playerA, playerB, playerC),
		testutil.MustDate("2025-11-02"), 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Matcher != "HOME_TEAM_ID/VISITOR_TEAM_ID via roster" {
		t.Fatalf("unexpected matcher %q", res.Matcher)
	}
	if len(res.Candidates) != 2 || res.Candidates[0].ID != 2 || res.Candidates[1].ID != 3 {
		t.Fatalf("expected B and C, got %+v", res.Candidates)
	}
}

func TestAbbreviationShapesWinOverIDs(t *testing.T) {
	tables := []tabular.Table{
		gameHeader([2]float64{gswID, lalID}),
		{Headers: []string{"TEAM_ABBREVIATION_HOME", "TEAM_ABBREVIATION_AWAY"}, Rows: [][]any{{"bos", nil}}},
	}
	set, name := resolveTeams(DefaultMatchers, tables, map[int64]string{gswID: "GSW", lalID: "LAL"})
	if name != "TEAM_ABBREVIATION_HOME/TEAM_ABBREVIATION_AWAY" {
		t.Fatalf("unexpected matcher %q", name)
	}
	if len(set) != 1 || !set.Has("BOS") {
		t.Fatalf("unexpected set %v", set.Sorted())
	}
}

func TestUnresolvableScheduleIsAnError(t *testing.T) {
	stats := &teststubs.StubStats{Scoreboards: map[string][]tabular.Table{
		"2025-11-02": {{Name: "GameHeader", Headers: []string{"GAME_ID"}}},
	}}
	_, err := newTestFilter(stats).CandidatesForDate(context.Background(), snapOf(playerA),
		testutil.MustDate("2025-11-02"), 30, nil)
	var resErr *ScheduleResolutionError
	if !errors.As(err, &resErr) || resErr.Date != "2025-11-02" {
		t.Fatalf("expected ScheduleResolutionError, got %v", err)
	}
}

func TestNoPlayersOnDay(t *testing.T) {
	stats := &teststubs.StubStats{Scoreboards: map[string][]tabular.Table{
		"2025-11-02": {lineScore("MIA", "NYK")},
	}}
	res, err := newTestFilter(stats).CandidatesForDate(context.Background(), snapOf(playerA),
		testutil.MustDate("2025-11-02"), 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.NoGames() || !res.Empty() {
		t.Fatalf("expected no games, got %+v", res)
	}
}

func TestCandidatesForDatesContinuesAfterFailure(t *testing.T) {
	stats := &teststubs.StubStats{
		Scoreboards: map[string][]tabular.Table{
			"2025-11-03": {lineScore("BOS")},
		},
		ScoreboardErrs: map[string]error{"2025-11-02": errors.New("read timeout")},
	}
	dates := []time.Time{testutil.MustDate("2025-11-02"), testutil.MustDate("2025-11-03")}
	results := newTestFilter(stats).CandidatesForDates(context.Background(), snapOf(playerA), dates, 30, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	var resErr *ScheduleResolutionError
	if !errors.As(results[0].Err, &resErr) || !providers.IsTransient(results[0].Err) {
		t.Fatalf("expected wrapped transient failure for first date, got %v", results[0].Err)
	}
	if results[1].Err != nil || len(results[1].Result.Candidates) != 1 {
		t.Fatalf("expected second date to resolve, got %+v", results[1])
	}
	if got := stats.ScoreboardCalls.Load(); got != 3 {
		t.Fatalf("expected failing date retried once, got %d calls", got)
	}
}

func TestCandidatesScopeLogsWithDate(t *testing.T) {
	stats := &teststubs.StubStats{Scoreboards: map[string][]tabular.Table{
		"2025-11-02": {lineScore("BOS")},
	}}
	logger, buf := testutil.NewBufferLogger()
	filter := NewFilter(stats, nil, logger, Config{})

	if _, err := filter.CandidatesForDate(context.Background(), snapOf(playerA), testutil.MustDate("2025-11-02"), 30, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "date=2025-11-02") {
		t.Fatalf("expected date-scoped log lines, got %q", buf.String())
	}
}
