package roster

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/gamelogs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// Roster and game log column names.
const (
	colPersonID    = "PERSON_ID"
	colDisplayName = "DISPLAY_FIRST_LAST"
	colPlayerCode  = "PLAYERCODE"
	colTeamID      = "TEAM_ID"
	colTeamAbbr    = "TEAM_ABBREVIATION"
	colPlayedFlag  = "GAMES_PLAYED_FLAG"

	colLogPlayerID = "Player_ID"
	colGameID      = "Game_ID"
	colGameDate    = "GAME_DATE"
	colMatchup     = "MATCHUP"
)

// Upstream game dates come as "NOV 02, 2025"; cached or alternative feeds use ISO.
var gameDateLayouts = []string{
	"Jan 02, 2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
}

func parseGameDate(v any) *time.Time {
	raw := strings.TrimSpace(cast.ToString(v))
	if raw == "" {
		return nil
	}
	// month names match case-insensitively, so "NOV" parses as "Nov"
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

func toID(v any) int64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	id, err := cast.ToInt64E(v)
	if err != nil {
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return id
}

// projectRoster keeps the rows flagged as playing this season. A missing flag
// column keeps every row.
func projectRoster(tbl tabular.Table) ([]players.Player, bool) {
	hasFlag := tbl.Has(colPlayedFlag)
	out := make([]players.Player, 0, tbl.Len())
	seen := make(map[int64]struct{}, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		if hasFlag && !strings.EqualFold(strings.TrimSpace(cast.ToString(tbl.Value(i, colPlayedFlag))), "Y") {
			continue
		}
		id := toID(tbl.Value(i, colPersonID))
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, players.Player{
			ID:               id,
			Name:             strings.TrimSpace(cast.ToString(tbl.Value(i, colDisplayName))),
			Code:             strings.TrimSpace(cast.ToString(tbl.Value(i, colPlayerCode))),
			TeamID:           toID(tbl.Value(i, colTeamID)),
			TeamAbbreviation: strings.TrimSpace(cast.ToString(tbl.Value(i, colTeamAbbr))),
		})
	}
	return out, hasFlag
}

// parseGameLog turns one player's game log into scored records. Rows without
// a player id are attributed to the requested player.
func parseGameLog(tbl tabular.Table, playerID int64) []gamelogs.GameRecord {
	out := make([]gamelogs.GameRecord, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		fields := tbl.Record(i)
		pid := toID(tbl.Value(i, colLogPlayerID))
		if pid == 0 {
			pid = playerID
		}
		box := gamelogs.BoxScoreFromFields(fields)
		out = append(out, gamelogs.GameRecord{
			PlayerID:     pid,
			GameID:       strings.TrimSpace(cast.ToString(tbl.Value(i, colGameID))),
			GameDate:     parseGameDate(tbl.Value(i, colGameDate)),
			Matchup:      strings.TrimSpace(cast.ToString(tbl.Value(i, colMatchup))),
			Box:          box,
			FantasyScore: gamelogs.FantasyScore(box),
		})
	}
	return out
}
