package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/selections"
)

// AnchorSelector locates the picks table on the history page.
const AnchorSelector = "table#MuTabme"

// SelectionRecord is one past pick.
type SelectionRecord = selections.Record

// ExtractionError reports a history page that cannot be read.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("history extraction: %s: %v", e.Reason, e.Err)
	}
	return "history extraction: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var (
	dateHeaders   = []string{"date"}
	playerHeaders = []string{"joueur", "player", "player name", "nom", "name"}
)

// The page renders dates day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02/01/06",
	"2/1/2006",
	"02-01-2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// Extract reads the picks table out of a history page. Header labels match
// case-insensitively and the first occurrence wins. Short rows are padded and
// unparseable dates are kept as zero dates. A page without the anchor table
// is an *ExtractionError; a table with neither a date nor a player column
// yields no records.
func Extract(html string) ([]SelectionRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{Reason: "parse page", Err: err}
	}
	table := doc.Find(AnchorSelector).First()
	if table.Length() == 0 {
		return nil, &ExtractionError{Reason: fmt.Sprintf("anchor %s not found", AnchorSelector)}
	}

	headers, bodyRows := splitTable(table)
	dateIdx := firstHeader(headers, dateHeaders)
	playerIdx := firstHeader(headers, playerHeaders)
	if dateIdx < 0 && playerIdx < 0 {
		return []SelectionRecord{}, nil
	}

	out := make([]SelectionRecord, 0, bodyRows.Length())
	bodyRows.Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) == 0 {
			return
		}
		for len(cells) < len(headers) {
			cells = append(cells, "")
		}
		var rec SelectionRecord
		if dateIdx >= 0 {
			rec.Date = ParseDate(cells[dateIdx])
		}
		if playerIdx >= 0 {
			rec.PlayerName = cells[playerIdx]
		}
		out = append(out, rec)
	})
	return out, nil
}

// splitTable returns the header labels and the data rows. Headers come from
// thead, or from the first row when the table has no thead.
func splitTable(table *goquery.Selection) ([]string, *goquery.Selection) {
	var headers []string
	head := table.Find("thead th")
	if head.Length() > 0 {
		head.Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(th.Text()))
		})
		body := table.Find("tbody tr")
		if body.Length() == 0 {
			body = table.Find("tr").Not("thead tr")
		}
		return headers, body
	}

	rows := table.Find("tr")
	first := rows.First()
	first.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})
	if len(headers) == 0 {
		return nil, rows
	}
	return headers, rows.Slice(1, goquery.ToEnd)
}

func cellTexts(tr *goquery.Selection) []string {
	var cells []string
	tr.Children().Filter("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

func firstHeader(headers []string, names []string) int {
	for _, name := range names {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}

// ParseDate reads a history date cell. Unrecognised input yields the zero time.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
