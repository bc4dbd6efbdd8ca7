package eligibility

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/teams"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// ShapeMatcher derives the teams playing from one known scoreboard layout.
// Match returns an empty set when the layout is not present.
type ShapeMatcher struct {
	Name  string
	Match func(tables []tabular.Table, roster map[int64]string) teams.Set
}

// DefaultMatchers are tried in order; the first non-empty result wins.
// Abbreviation layouts come first, team ids mapped through the roster last.
var DefaultMatchers = []ShapeMatcher{
	abbrPair("HOME_TEAM_ABBREVIATION", "VISITOR_TEAM_ABBREVIATION"),
	abbrPair("TEAM_ABBREVIATION_HOME", "TEAM_ABBREVIATION_AWAY"),
	abbrPair("HOME_TEAM_ABBREVIATION", "AWAY_TEAM_ABBREVIATION"),
	{Name: "any TEAM_ABBREVIATION column", Match: anyAbbreviationColumn},
	idPair("HOME_TEAM_ID", "VISITOR_TEAM_ID"),
	idPair("TEAM_ID_HOME", "TEAM_ID_AWAY"),
	idPair("TEAM_ID_HOME", "TEAM_ID_VISITOR"),
	idPair("HOME_TEAM_ID", "AWAY_TEAM_ID"),
}

func abbrPair(home, away string) ShapeMatcher {
	return ShapeMatcher{
		Name: home + "/" + away,
		Match: func(tables []tabular.Table, _ map[int64]string) teams.Set {
			out := teams.Set{}
			for _, tbl := range tables {
				if !tbl.Has(home, away) {
					continue
				}
				for i := 0; i < tbl.Len(); i++ {
					out.Add(cellString(tbl.Value(i, home)))
					out.Add(cellString(tbl.Value(i, away)))
				}
			}
			return out
		},
	}
}

func anyAbbreviationColumn(tables []tabular.Table, _ map[int64]string) teams.Set {
	out := teams.Set{}
	for _, tbl := range tables {
		for col, h := range tbl.Headers {
			if !strings.Contains(strings.ToUpper(h), "TEAM_ABBREVIATION") {
				continue
			}
			for _, row := range tbl.Rows {
				if col < len(row) {
					out.Add(cellString(row[col]))
				}
			}
		}
	}
	return out
}

// idPair maps team ids through the roster's id-to-abbreviation index.
func idPair(home, away string) ShapeMatcher {
	return ShapeMatcher{
		Name: home + "/" + away + " via roster",
		Match: func(tables []tabular.Table, roster map[int64]string) teams.Set {
			out := teams.Set{}
			for _, tbl := range tables {
				if !tbl.Has(home, away) {
					continue
				}
				for i := 0; i < tbl.Len(); i++ {
					for _, col := range []string{home, away} {
						id, err := cast.ToInt64E(tbl.Value(i, col))
						if err != nil || id == 0 {
							continue
						}
						out.Add(roster[id])
					}
				}
			}
			return out
		},
	}
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// resolveTeams runs matchers in order and returns the first non-empty set
// with the matcher's name.
func resolveTeams(matchers []ShapeMatcher, tables []tabular.Table, roster map[int64]string) (teams.Set, string) {
	for _, m := range matchers {
		if set := m.Match(tables, roster); len(set) > 0 {
			return set, m.Name
		}
	}
	return nil, ""
}
