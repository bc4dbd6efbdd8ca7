package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/refresher"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/testutil"
)

type stubTrigger struct {
	runID string
	err   error
	calls int
}

func (s *stubTrigger) Trigger(context.Context) (string, error) {
	s.calls++
	return s.runID, s.err
}

func adminRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAdminRefreshRequiresToken(t *testing.T) {
	trigger := &stubTrigger{runID: "run-1"}
	h := NewAdminHandler(trigger, "secret", nil)

	rr := testutil.ServeRequest(http.HandlerFunc(h.Refresh), adminRequest("wrong"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	rr = testutil.ServeRequest(http.HandlerFunc(NewAdminHandler(trigger, "", nil).Refresh), adminRequest(""))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	if trigger.calls != 0 {
		t.Fatalf("expected no refresh without a valid token")
	}
}

func TestAdminRefreshTriggers(t *testing.T) {
	trigger := &stubTrigger{runID: "run-1"}
	rr := testutil.ServeRequest(http.HandlerFunc(NewAdminHandler(trigger, "secret", nil).Refresh), adminRequest("secret"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["runId"] != "run-1" || trigger.calls != 1 {
		t.Fatalf("unexpected response %+v after %d calls", resp, trigger.calls)
	}
}

func TestAdminRefreshErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: refresher.ErrAlreadyRunning, want: http.StatusConflict},
		{err: errors.New("upstream down"), want: http.StatusBadGateway},
	}
	for _, tc := range cases {
		h := NewAdminHandler(&stubTrigger{err: tc.err}, "secret", nil)
		rr := testutil.ServeRequest(http.HandlerFunc(h.Refresh), adminRequest("secret"))
		testutil.AssertStatus(t, rr, tc.want)
	}

	rr := testutil.ServeRequest(http.HandlerFunc(NewAdminHandler(nil, "secret", nil).Refresh), adminRequest("secret"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}
