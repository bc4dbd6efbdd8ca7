package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/app/picks"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/history"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/ranking"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/refresher"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

// maxDays caps start/days ranges on /candidates.
const maxDays = 14

// PicksService is the application surface the handlers expose.
type PicksService interface {
	Rankings(ctx context.Context, req picks.RankingRequest) (picks.RankingReport, error)
	Candidates(ctx context.Context, req picks.CandidateRequest) ([]picks.CandidateReport, error)
	History(ctx context.Context, refresh bool) ([]history.SelectionRecord, error)
}

// Handler wires HTTP routes to the picks service.
type Handler struct {
	svc      PicksService
	logger   *slog.Logger
	statusFn func() refresher.Status
}

// NewHandler constructs a Handler. A nil statusFn reports ready.
func NewHandler(svc PicksService, logger *slog.Logger, statusFn func() refresher.Status) *Handler {
	return &Handler{svc: svc, logger: logger, statusFn: statusFn}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the daily caches have been warmed.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

type rankingsResponse struct {
	Season  string        `json:"season"`
	Date    string        `json:"date"`
	Rows    []ranking.Row `json:"rows"`
	Message string        `json:"message,omitempty"`
}

// Rankings serves the season-wide ranking.
func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req picks.RankingRequest
	var err error
	if req.TopN, err = intParam(q.Get("top")); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid top", h.logger)
		return
	}
	if req.LastX, err = intParam(q.Get("last_x")); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid last_x", h.logger)
		return
	}
	if req.MinGames, err = intParam(q.Get("min_games")); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid min_games", h.logger)
		return
	}
	req.Refresh = boolParam(q.Get("refresh"))

	report, err := h.svc.Rankings(r.Context(), req)
	resp := rankingsResponse{Season: report.Season, Date: report.Date, Rows: report.Rows, Message: report.Message}
	switch {
	case errors.Is(err, picks.ErrNoPlayers):
		resp.Message = picks.MsgNoPlayers
	case err != nil:
		h.fail(w, r, "rankings failed", err)
		return
	}
	if resp.Rows == nil {
		resp.Rows = []ranking.Row{}
	}
	logging.Info(loggerFromContext(r, h.logger), "served rankings", logging.FieldCount, len(resp.Rows))
	writeJSON(w, http.StatusOK, resp, h.logger)
}

type candidateView struct {
	Date     string        `json:"date"`
	Teams    []string      `json:"teams,omitempty"`
	Excluded []string      `json:"excluded,omitempty"`
	Rows     []ranking.Row `json:"rows"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Candidates serves ranked eligible players for one or more dates.
func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dates, err := timeutil.ParseDateList(q["date"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if start := q.Get("start"); start != "" {
		first, err := timeutil.ParseDate(start)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid start (expected YYYY-MM-DD)", h.logger)
			return
		}
		days := 1
		if raw := q.Get("days"); raw != "" {
			days, err = strconv.Atoi(raw)
			if err != nil || days < 1 || days > maxDays {
				writeError(w, r, http.StatusBadRequest, "invalid days", h.logger)
				return
			}
		}
		dates = append(dates, timeutil.DayRange(first, days)...)
	}

	req := picks.CandidateRequest{Dates: dates, Refresh: boolParam(q.Get("refresh"))}
	for name, dest := range map[string]**int{
		"top":       &req.TopN,
		"last_x":    &req.LastX,
		"min_games": &req.MinGames,
		"lookback":  &req.LookbackDays,
	} {
		if *dest, err = intParam(q.Get(name)); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid "+name, h.logger)
			return
		}
	}

	reports, err := h.svc.Candidates(r.Context(), req)
	if errors.Is(err, picks.ErrNoPlayers) {
		writeJSON(w, http.StatusOK, map[string]any{"message": picks.MsgNoPlayers, "dates": []candidateView{}}, h.logger)
		return
	}
	if err != nil {
		h.fail(w, r, "candidates failed", err)
		return
	}

	views := make([]candidateView, 0, len(reports))
	for _, rep := range reports {
		v := candidateView{Date: rep.Date, Teams: rep.Teams, Excluded: rep.Excluded, Rows: rep.Rows, Message: rep.Message}
		if rep.Err != nil {
			v.Error = rep.Err.Error()
		}
		if v.Rows == nil {
			v.Rows = []ranking.Row{}
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": views}, h.logger)
}

type historyEntry struct {
	Date       string `json:"date,omitempty"`
	PlayerName string `json:"playerName"`
}

// History serves the cached pick history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.History(r.Context(), boolParam(r.URL.Query().Get("refresh")))
	if err != nil {
		h.fail(w, r, "history failed", err)
		return
	}
	out := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		e := historyEntry{PlayerName: rec.PlayerName}
		if rec.Dated() {
			e.Date = timeutil.FormatDate(rec.Date)
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": out}, h.logger)
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger := loggerFromContext(r, h.logger)
	status, public := http.StatusInternalServerError, "internal error"

	var extractErr *history.ExtractionError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status, public = http.StatusGatewayTimeout, "upstream timed out"
	case errors.Is(err, context.Canceled):
		status, public = http.StatusServiceUnavailable, "request cancelled"
	case errors.As(err, &extractErr):
		status, public = http.StatusBadGateway, "history page unreadable"
	case errors.Is(err, providers.ErrCircuitOpen), errors.Is(err, providers.ErrProviderUnavailable):
		status, public = http.StatusServiceUnavailable, "upstream unavailable"
	case providers.IsTransient(err):
		status, public = http.StatusBadGateway, "upstream failed"
	}
	logging.Warn(logger, msg, logging.FieldStatusCode, status, "err", err)
	writeError(w, r, status, public, h.logger)
}

func intParam(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, errors.New("invalid integer")
	}
	return &v, nil
}

func boolParam(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
