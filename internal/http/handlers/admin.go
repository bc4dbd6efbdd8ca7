package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/http/requestutil"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/refresher"
)

// Trigger runs a forced refresh cycle.
type Trigger interface {
	Trigger(ctx context.Context) (string, error)
}

// AdminHandler exposes admin-only endpoints.
type AdminHandler struct {
	trigger Trigger
	token   string
	logger  *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token rejects every call.
func NewAdminHandler(trigger Trigger, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{trigger: trigger, token: token, logger: logger}
}

// Refresh rebuilds today's snapshot and history, bypassing the cache.
// Guarded by a bearer token.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return
	}
	if h.trigger == nil {
		writeError(w, r, http.StatusServiceUnavailable, "refresher not configured", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	runID, err := h.trigger.Trigger(r.Context())
	switch {
	case errors.Is(err, refresher.ErrAlreadyRunning):
		writeError(w, r, http.StatusConflict, "refresh already running", logger)
		return
	case err != nil:
		logging.Warn(logger, "admin refresh failed", slog.String(logging.FieldRunID, runID), slog.Any("err", err))
		writeError(w, r, http.StatusBadGateway, "refresh failed", logger)
		return
	}

	logging.Info(logger, "admin refresh complete", slog.String(logging.FieldRunID, runID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "runId": runID}, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	want := "Bearer " + h.token
	return subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(want)) == 1
}
