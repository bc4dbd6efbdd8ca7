package testutil

import (
	"strings"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/gamelogs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/snapshot"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// RosterHeaders mirror the commonallplayers result set.
var RosterHeaders = []string{
	"PERSON_ID", "DISPLAY_FIRST_LAST", "PLAYERCODE", "TEAM_ID", "TEAM_ABBREVIATION", "GAMES_PLAYED_FLAG",
}

// RosterRow builds one roster row flagged as playing.
func RosterRow(p players.Player) []any {
	return []any{float64(p.ID), p.Name, p.Code, float64(p.TeamID), p.TeamAbbreviation, "Y"}
}

// RosterTable builds a roster result set for the given players.
func RosterTable(ps ...players.Player) tabular.Table {
	rows := make([][]any, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, RosterRow(p))
	}
	return tabular.Table{Name: "CommonAllPlayers", Headers: RosterHeaders, Rows: rows}
}

// Line is a compact game-log entry for tests. Date is YYYY-MM-DD or empty.
type Line struct {
	GameID string
	Date   string
	Box    gamelogs.BoxScore
}

// GameLogTable builds a playergamelog result set for one player.
func GameLogTable(playerID int64, lines ...Line) tabular.Table {
	headers := append([]string{"SEASON_ID", "Player_ID", "Game_ID", "GAME_DATE", "MATCHUP"}, gamelogs.Columns...)
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		b := l.Box
		rows = append(rows, []any{
			"22025", float64(playerID), l.GameID, UpstreamDate(l.Date), "BOS vs. LAL",
			b.PTS, b.REB, b.AST, b.STL, b.BLK, b.FGM, b.FGA, b.FG3M, b.FG3A, b.FTM, b.FTA, b.TOV,
		})
	}
	return tabular.Table{Name: "PlayerGameLog", Headers: headers, Rows: rows}
}

// UpstreamDate renders YYYY-MM-DD the way playergamelog does ("NOV 02, 2025").
func UpstreamDate(iso string) string {
	if iso == "" {
		return ""
	}
	return strings.ToUpper(MustDate(iso).Format("Jan 02, 2006"))
}

// Points returns a box score worth exactly pts fantasy points.
func Points(pts float64) gamelogs.BoxScore {
	return gamelogs.BoxScore{PTS: pts}
}

// Game builds a scored game record. An empty date leaves it undated.
func Game(playerID int64, gameID, date string, score float64) *gamelogs.GameRecord {
	rec := &gamelogs.GameRecord{
		PlayerID:     playerID,
		GameID:       gameID,
		Box:          Points(score),
		FantasyScore: score,
	}
	if date != "" {
		d := MustDate(date)
		rec.GameDate = &d
	}
	return rec
}

// Snapshot assembles a season snapshot from rows.
func Snapshot(date string, rows ...snapshot.Row) snapshot.SeasonSnapshot {
	return snapshot.SeasonSnapshot{
		Season:    "2025-26",
		Date:      date,
		CreatedAt: time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC),
		Columns:   append([]string(nil), gamelogs.Columns...),
		Rows:      rows,
	}
}
