package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/app/picks"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/history"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/ranking"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/refresher"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/testutil"
)

type stubPicks struct {
	report     picks.RankingReport
	rankErr    error
	candidates []picks.CandidateReport
	candErr    error
	records    []history.SelectionRecord
	histErr    error

	lastRanking   picks.RankingRequest
	lastCandidate picks.CandidateRequest
	lastRefresh   bool
}

func (s *stubPicks) Rankings(_ context.Context, req picks.RankingRequest) (picks.RankingReport, error) {
	s.lastRanking = req
	return s.report, s.rankErr
}

func (s *stubPicks) Candidates(_ context.Context, req picks.CandidateRequest) ([]picks.CandidateReport, error) {
	s.lastCandidate = req
	return s.candidates, s.candErr
}

func (s *stubPicks) History(_ context.Context, refresh bool) ([]history.SelectionRecord, error) {
	s.lastRefresh = refresh
	return s.records, s.histErr
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubPicks{}, nil, nil)
	rr := testutil.Serve(http.HandlerFunc(h.Health), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := NewHandler(&stubPicks{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req.WithContext(ctx))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestReadyFollowsRefresherStatus(t *testing.T) {
	status := refresher.Status{LastError: "warm-up failed", ConsecutiveFailures: 1}
	h := NewHandler(&stubPicks{}, nil, func() refresher.Status { return status })

	rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "warm-up failed" {
		t.Fatalf("expected last error surfaced, got %q", resp["error"])
	}

	status = refresher.Status{LastSuccess: time.Now()}
	rr = testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.Serve(http.HandlerFunc(NewHandler(&stubPicks{}, nil, nil).Ready), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRankingsParsesQuery(t *testing.T) {
	svc := &stubPicks{report: picks.RankingReport{
		Season: "2025-26",
		Date:   "2025-11-02",
		Rows:   []ranking.Row{{PlayerID: 1, Name: "Ann", Games: 3, SeasonAvg: 30, SeasonStd: 1, LastXN: 3, LastXAvg: 31, LastXStd: 2, HasLastX: true}},
	}}
	h := NewHandler(svc, nil, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Rankings), http.MethodGet, "/rankings?top=5&last_x=3&min_games=0&refresh=true", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	req := svc.lastRanking
	if req.TopN == nil || *req.TopN != 5 || *req.LastX != 3 || *req.MinGames != 0 || !req.Refresh {
		t.Fatalf("unexpected request %+v", req)
	}
	var resp struct {
		Season string `json:"season"`
		Rows   []struct {
			Name     string   `json:"name"`
			LastXAvg *float64 `json:"lastXAvg"`
		} `json:"rows"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Season != "2025-26" || len(resp.Rows) != 1 || resp.Rows[0].LastXAvg == nil || *resp.Rows[0].LastXAvg != 31 {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestRankingsRejectsBadParams(t *testing.T) {
	h := NewHandler(&stubPicks{}, nil, nil)
	for _, path := range []string{"/rankings?top=abc", "/rankings?last_x=-1", "/rankings?min_games=1.5"} {
		rr := testutil.Serve(http.HandlerFunc(h.Rankings), http.MethodGet, path, nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	}
}

func TestRankingsWithoutGamesReportsMessage(t *testing.T) {
	h := NewHandler(&stubPicks{rankErr: picks.ErrNoPlayers}, nil, nil)
	rr := testutil.Serve(http.HandlerFunc(h.Rankings), http.MethodGet, "/rankings", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]any
	testutil.DecodeJSON(t, rr, &resp)
	if resp["message"] != picks.MsgNoPlayers {
		t.Fatalf("expected message, got %+v", resp)
	}
}

func TestRankingsCarriesServiceMessage(t *testing.T) {
	svc := &stubPicks{report: picks.RankingReport{Season: "2025-26", Date: "2025-11-02", Message: picks.MsgNoQualifying}}
	h := NewHandler(svc, nil, nil)
	rr := testutil.Serve(http.HandlerFunc(h.Rankings), http.MethodGet, "/rankings?min_games=50", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Rows    []any  `json:"rows"`
		Message string `json:"message"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Rows == nil || len(resp.Rows) != 0 || resp.Message != picks.MsgNoQualifying {
		t.Fatalf("expected empty rows with message, got %+v", resp)
	}
}

func TestRankingsMapsUpstreamErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: &providers.TransientUpstreamError{Op: "gamelog", Attempts: 5, Err: errors.New("timeout")}, want: http.StatusBadGateway},
		{err: providers.ErrCircuitOpen, want: http.StatusServiceUnavailable},
		{err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{err: errors.New("disk full"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewHandler(&stubPicks{rankErr: tc.err}, nil, nil)
		rr := testutil.Serve(http.HandlerFunc(h.Rankings), http.MethodGet, "/rankings", nil)
		testutil.AssertStatus(t, rr, tc.want)
	}
}

func TestCandidatesCollectsDates(t *testing.T) {
	svc := &stubPicks{candidates: []picks.CandidateReport{
		{Date: "2025-11-02", Teams: []string{"BOS"}, Rows: []ranking.Row{{PlayerID: 1, Name: "Ann"}}},
		{Date: "2025-11-03", Message: picks.MsgNoEligible},
		{Date: "2025-11-04", Err: errors.New("resolve teams for 2025-11-04: no team information in schedule")},
	}}
	h := NewHandler(svc, nil, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Candidates), http.MethodGet,
		"/candidates?date=2025-11-02,2025-11-03&start=2025-11-04&days=1&lookback=7&top=3", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	req := svc.lastCandidate
	if len(req.Dates) != 3 || *req.LookbackDays != 7 || *req.TopN != 3 || req.LastX != nil {
		t.Fatalf("unexpected request %+v", req)
	}
	var resp struct {
		Dates []struct {
			Date    string `json:"date"`
			Message string `json:"message"`
			Error   string `json:"error"`
			Rows    []any  `json:"rows"`
		} `json:"dates"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	if len(resp.Dates) != 3 || len(resp.Dates[0].Rows) != 1 || resp.Dates[1].Message != picks.MsgNoEligible || resp.Dates[2].Error == "" {
		t.Fatalf("unexpected body %+v", resp)
	}
	if resp.Dates[1].Rows == nil {
		t.Fatalf("expected empty rows array rather than null")
	}
}

func TestCandidatesRejectsBadDates(t *testing.T) {
	h := NewHandler(&stubPicks{}, nil, nil)
	for _, path := range []string{"/candidates?date=11/02/2025", "/candidates?start=nope", "/candidates?start=2025-11-02&days=99"} {
		rr := testutil.Serve(http.HandlerFunc(h.Candidates), http.MethodGet, path, nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	}
}

func TestHistoryServesRecords(t *testing.T) {
	svc := &stubPicks{records: []history.SelectionRecord{
		{Date: testutil.MustDate("2025-11-01"), PlayerName: "Ann"},
		{PlayerName: "Undated"},
	}}
	h := NewHandler(svc, nil, nil)
	rr := testutil.Serve(http.HandlerFunc(h.History), http.MethodGet, "/history?refresh=1", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Records []historyEntry `json:"records"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	if !svc.lastRefresh || len(resp.Records) != 2 || resp.Records[0].Date != "2025-11-01" || resp.Records[1].Date != "" {
		t.Fatalf("unexpected body %+v (refresh=%v)", resp, svc.lastRefresh)
	}
}

func TestHistoryExtractionFailure(t *testing.T) {
	h := NewHandler(&stubPicks{histErr: &history.ExtractionError{Reason: "anchor missing"}}, nil, nil)
	rr := testutil.Serve(http.HandlerFunc(h.History), http.MethodGet, "/history", nil)
	testutil.AssertStatus(t, rr, http.StatusBadGateway)
}
