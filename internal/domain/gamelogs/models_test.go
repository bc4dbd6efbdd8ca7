package gamelogs

import (
	"math"
	"testing"
	"time"
)

func TestFantasyScoreWorkedExample(t *testing.T) {
	box := BoxScore{PTS: 30, REB: 10, AST: 5, STL: 2, BLK: 1, FGM: 12, FGA: 20, FG3M: 3, FG3A: 8, FTM: 3, FTA: 4, TOV: 4}
	if got := FantasyScore(box); got != 48 {
		t.Fatalf("expected 48, got %v", got)
	}
}

func TestFantasyScoreZeroBox(t *testing.T) {
	if got := FantasyScore(BoxScore{}); got != 0 {
		t.Fatalf("expected 0 for empty box, got %v", got)
	}
}

func TestFantasyScoreCanBeNegative(t *testing.T) {
	box := BoxScore{FGA: 10, TOV: 3}
	if got := FantasyScore(box); got != -13 {
		t.Fatalf("expected -13, got %v", got)
	}
}

func TestBoxScoreFromFieldsCoercesAndDefaults(t *testing.T) {
	box := BoxScoreFromFields(map[string]any{
		"pts":  "30",
		"REB":  10,
		"AST":  int64(5),
		"STL":  "n/a",
		"BLK":  nil,
		"FGM":  12.0,
		"FGA":  20,
		"FG3M": math.NaN(),
		"FTM":  " 3 ",
		"FTA":  4,
		"TOV":  float64(4),
	})
	want := BoxScore{PTS: 30, REB: 10, AST: 5, FGM: 12, FGA: 20, FTM: 3, FTA: 4, TOV: 4}
	if box != want {
		t.Fatalf("expected %+v, got %+v", want, box)
	}
}

func TestBoxScoreFromFieldsIsDeterministicAcrossCaseVariants(t *testing.T) {
	fields := map[string]any{"PTS": 30, "pts": 99, "Pts": 7, "TOV": 2, "tov": 50}
	for i := 0; i < 50; i++ {
		box := BoxScoreFromFields(fields)
		if box.PTS != 30 || box.TOV != 2 {
			t.Fatalf("expected exact upper-case columns to win, got %+v", box)
		}
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{"12.5", 12.5},
		{true, 1},
		{"", 0},
		{"abc", 0},
		{math.Inf(1), 0},
		{nil, 0},
		{uint8(7), 7},
	}
	for _, tc := range cases {
		if got := Number(tc.in); got != tc.want {
			t.Fatalf("Number(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestGameRecordDated(t *testing.T) {
	d := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	if !(GameRecord{GameDate: &d}).Dated() {
		t.Fatalf("expected dated record")
	}
	if (GameRecord{}).Dated() {
		t.Fatalf("expected nil date to be undated")
	}
	zero := time.Time{}
	if (GameRecord{GameDate: &zero}).Dated() {
		t.Fatalf("expected zero date to be undated")
	}
}
