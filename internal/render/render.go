// Package render prints rankings, candidates and pick history for the CLI,
// either as aligned text tables or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/app/picks"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/history"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/ranking"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

// Format selects the output encoding.
type Format int

const (
	Text Format = iota
	JSON
)

// ParseFormat maps "text"/"table" and "json" onto a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text", "table":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("unknown output format %q", raw)
	}
}

// Rankings writes a season ranking. lastX labels the rolling window columns.
func Rankings(w io.Writer, rep picks.RankingReport, message string, lastX int, format Format) error {
	if format == JSON {
		rows := rep.Rows
		if rows == nil {
			rows = []ranking.Row{}
		}
		return writeJSON(w, struct {
			Season  string        `json:"season"`
			Date    string        `json:"date"`
			Rows    []ranking.Row `json:"rows"`
			Message string        `json:"message,omitempty"`
		}{rep.Season, rep.Date, rows, message})
	}

	if message != "" {
		_, err := fmt.Fprintln(w, message)
		return err
	}
	if _, err := fmt.Fprintf(w, "Season %s as of %s\n", rep.Season, rep.Date); err != nil {
		return err
	}
	return table(w, rep.Rows, lastX)
}

// Candidates writes one section per date.
func Candidates(w io.Writer, reports []picks.CandidateReport, lastX int, format Format) error {
	if format == JSON {
		type view struct {
			picks.CandidateReport
			Error string `json:"error,omitempty"`
		}
		out := make([]view, 0, len(reports))
		for _, rep := range reports {
			v := view{CandidateReport: rep}
			if v.Rows == nil {
				v.Rows = []ranking.Row{}
			}
			if rep.Err != nil {
				v.Error = rep.Err.Error()
			}
			out = append(out, v)
		}
		return writeJSON(w, map[string]any{"dates": out})
	}

	for i, rep := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "== %s ==\n", rep.Date); err != nil {
			return err
		}
		if rep.Err != nil {
			if _, err := fmt.Fprintf(w, "error: %v\n", rep.Err); err != nil {
				return err
			}
			continue
		}
		if len(rep.Teams) > 0 {
			if _, err := fmt.Fprintf(w, "Teams playing: %s\n", strings.Join(rep.Teams, ", ")); err != nil {
				return err
			}
		}
		if len(rep.Excluded) > 0 {
			if _, err := fmt.Fprintf(w, "Excluded (recent picks): %s\n", strings.Join(rep.Excluded, ", ")); err != nil {
				return err
			}
		}
		if rep.Message != "" {
			if _, err := fmt.Fprintln(w, rep.Message); err != nil {
				return err
			}
			continue
		}
		if err := table(w, rep.Rows, lastX); err != nil {
			return err
		}
	}
	return nil
}

// History writes past picks, oldest first as extracted.
func History(w io.Writer, records []history.SelectionRecord, format Format) error {
	type entry struct {
		Date       string `json:"date,omitempty"`
		PlayerName string `json:"playerName"`
	}
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		e := entry{PlayerName: rec.PlayerName}
		if rec.Dated() {
			e.Date = timeutil.FormatDate(rec.Date)
		}
		entries = append(entries, e)
	}
	if format == JSON {
		return writeJSON(w, map[string]any{"records": entries})
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no picks recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPLAYER")
	for _, e := range entries {
		date := e.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", date, e.PlayerName)
	}
	return tw.Flush()
}

func table(w io.Writer, rows []ranking.Row, lastX int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	window := "LAST" + strconv.Itoa(lastX)
	fmt.Fprintf(tw, "#\tPLAYER\tTEAM\tGP\tAVG\tSTD\t%s_N\t%s_AVG\t%s_STD\t\n", window, window, window)
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%d\t%s\t%s\t\n",
			i+1, r.Name, r.Team, r.Games,
			num(r.SeasonAvg), num(r.SeasonStd),
			r.LastXN, num(r.LastXAvg), num(r.LastXStd),
		)
	}
	return tw.Flush()
}

// num rounds to two decimals; NaN prints as a dash.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
