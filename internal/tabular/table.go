// Package tabular holds the header/rows result sets returned by the stats
// upstream and the lookups the pipeline performs on them.
package tabular

import "strings"

// Table is one named result set: ordered headers and positional rows.
type Table struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rowSet"`
}

// Index returns the position of the first header equal to name, ignoring case,
// or -1.
func (t Table) Index(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Has reports whether every named column is present.
func (t Table) Has(names ...string) bool {
	for _, name := range names {
		if t.Index(name) < 0 {
			return false
		}
	}
	return true
}

// Value returns the cell at row/column name, or nil when either is missing
// or the row is short.
func (t Table) Value(row int, name string) any {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	idx := t.Index(name)
	if idx < 0 || idx >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][idx]
}

// Record maps every header of a row to its cell. Short rows yield nil cells.
// Headers repeated under any casing keep their first occurrence, as Index does.
func (t Table) Record(row int) map[string]any {
	out := make(map[string]any, len(t.Headers))
	if row < 0 || row >= len(t.Rows) {
		return out
	}
	cells := t.Rows[row]
	seen := make(map[string]struct{}, len(t.Headers))
	for i, h := range t.Headers {
		norm := strings.ToUpper(strings.TrimSpace(h))
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		if i < len(cells) {
			out[h] = cells[i]
		} else {
			out[h] = nil
		}
	}
	return out
}

// Len is the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Find returns the first table whose name matches, ignoring case.
func Find(tables []Table, name string) (Table, bool) {
	for _, tbl := range tables {
		if strings.EqualFold(tbl.Name, name) {
			return tbl, true
		}
	}
	return Table{}, false
}
