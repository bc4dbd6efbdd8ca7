package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWithCommon(t *testing.T) {
	attrs := WithCommon(nil, "ranker", "v1")
	if len(attrs) != 2 || attrs[0].Key != FieldService || attrs[1].Value.String() != "v1" {
		t.Fatalf("unexpected attrs %+v", attrs)
	}

	kept := WithCommon([]slog.Attr{slog.String(FieldSeason, "2025-26")}, "", "")
	if len(kept) != 1 || kept[0].Key != FieldSeason {
		t.Fatalf("expected existing attrs untouched, got %+v", kept)
	}
}

func TestFieldKeysAreDistinct(t *testing.T) {
	keys := []string{
		FieldService, FieldVersion, FieldProvider, FieldUpstream, FieldRequestID, FieldRunID,
		FieldPath, FieldMethod, FieldStatusCode, FieldDate, FieldSeason, FieldPlayerID,
		FieldKey, FieldAttempt, FieldCount, FieldDurationMS,
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			t.Fatalf("field key %q is empty or duplicated", k)
		}
		seen[k] = true
	}
}

func TestHelpersTolerateNilLogger(t *testing.T) {
	Debug(nil, "dropped")
	Info(nil, "dropped")
	Warn(nil, "dropped")
	Error(nil, "dropped", nil)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Debug(logger, "cache hit", FieldKey, "players/roster")
	Error(logger, "fetch failed", errTest("boom"))
	out := buf.String()
	if !strings.Contains(out, "key=players/roster") || !strings.Contains(out, "error=boom") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestWithToleratesNilLogger(t *testing.T) {
	if got := With(nil, FieldDate, "2025-11-02"); got != nil {
		t.Fatalf("expected nil logger, got %v", got)
	}

	var buf bytes.Buffer
	logger := With(slog.New(slog.NewTextHandler(&buf, nil)), FieldDate, "2025-11-02")
	logger.Info("scoped")
	if !strings.Contains(buf.String(), "date=2025-11-02") {
		t.Fatalf("expected scoped attribute, got %q", buf.String())
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
