package nbastats

import "github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// statsResponse covers both envelope styles the stats API uses.
type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
	ResultSet  *resultSet  `json:"resultSet"`
}

func (r statsResponse) tables() []tabular.Table {
	sets := r.ResultSets
	if len(sets) == 0 && r.ResultSet != nil {
		sets = []resultSet{*r.ResultSet}
	}
	out := make([]tabular.Table, 0, len(sets))
	for _, s := range sets {
		out = append(out, tabular.Table{Name: s.Name, Headers: s.Headers, Rows: s.RowSet})
	}
	return out
}
