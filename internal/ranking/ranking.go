// Package ranking orders players by fantasy score over the season and over
// their most recent games.
package ranking

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/gamelogs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/snapshot"
)

// Defaults applied by callers that take user input.
const (
	DefaultTopN     = 20
	DefaultLastX    = 5
	DefaultMinGames = 10
)

// Options controls TopPlayersByScore.
type Options struct {
	// TopN caps the result; zero or less returns every qualifying player.
	TopN int
	// LastX is the rolling window size in played games.
	LastX int
	// MinGames drops players with fewer season games.
	MinGames int
	// Restrict limits the output to these player ids when non-nil. Stats are
	// still computed from the whole snapshot.
	Restrict map[int64]struct{}
}

// Row is one ranked player. Standard deviations are NaN below two games and
// the LastX fields are NaN when HasLastX is false.
type Row struct {
	PlayerID  int64   `json:"playerId"`
	Name      string  `json:"name"`
	Team      string  `json:"team"`
	Games     int     `json:"games"`
	SeasonAvg float64 `json:"seasonAvg"`
	SeasonStd float64 `json:"seasonStd"`
	LastXN    int     `json:"lastXN"`
	LastXAvg  float64 `json:"lastXAvg"`
	LastXStd  float64 `json:"lastXStd"`
	HasLastX  bool    `json:"hasLastX"`
}

// SortKey is the rolling mean when present, else the season mean.
func (r Row) SortKey() float64 {
	if r.HasLastX && !math.IsNaN(r.LastXAvg) {
		return r.LastXAvg
	}
	return r.SeasonAvg
}

// MarshalJSON writes NaN statistics as null.
func (r Row) MarshalJSON() ([]byte, error) {
	type view struct {
		PlayerID  int64    `json:"playerId"`
		Name      string   `json:"name"`
		Team      string   `json:"team"`
		Games     int      `json:"games"`
		SeasonAvg *float64 `json:"seasonAvg"`
		SeasonStd *float64 `json:"seasonStd"`
		LastXN    int      `json:"lastXN"`
		LastXAvg  *float64 `json:"lastXAvg"`
		LastXStd  *float64 `json:"lastXStd"`
	}
	return json.Marshal(view{
		PlayerID:  r.PlayerID,
		Name:      r.Name,
		Team:      r.Team,
		Games:     r.Games,
		SeasonAvg: finite(r.SeasonAvg),
		SeasonStd: finite(r.SeasonStd),
		LastXN:    r.LastXN,
		LastXAvg:  finite(r.LastXAvg),
		LastXStd:  finite(r.LastXStd),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type playerGames struct {
	player players.Player
	games  []gamelogs.GameRecord
}

// TopPlayersByScore ranks the snapshot's players by fantasy score, highest
// first, breaking ties by player id.
func TopPlayersByScore(snap snapshot.SeasonSnapshot, opts Options) []Row {
	grouped := group(snap)

	rows := make([]Row, 0, len(grouped))
	for _, pg := range grouped {
		if opts.Restrict != nil {
			if _, ok := opts.Restrict[pg.player.ID]; !ok {
				continue
			}
		}
		row := summarize(pg, opts.LastX)
		if row.Games < opts.MinGames {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ki, kj := rows[i].SortKey(), rows[j].SortKey()
		if ki != kj {
			return ki > kj
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	if opts.TopN > 0 && len(rows) > opts.TopN {
		rows = rows[:opts.TopN]
	}
	return rows
}

// group collects each player's games in first-seen order, skipping rows
// without a game.
func group(snap snapshot.SeasonSnapshot) []*playerGames {
	index := make(map[int64]*playerGames)
	var order []*playerGames
	for _, row := range snap.Rows {
		if row.Game == nil {
			continue
		}
		pg, ok := index[row.Player.ID]
		if !ok {
			pg = &playerGames{player: row.Player}
			index[row.Player.ID] = pg
			order = append(order, pg)
		}
		pg.games = append(pg.games, *row.Game)
	}
	return order
}

func summarize(pg *playerGames, lastX int) Row {
	scores := make([]float64, 0, len(pg.games))
	for _, g := range pg.games {
		scores = append(scores, g.FantasyScore)
	}
	avg, std := meanStd(scores)
	row := Row{
		PlayerID:  pg.player.ID,
		Name:      pg.player.Name,
		Team:      pg.player.TeamAbbreviation,
		Games:     len(scores),
		SeasonAvg: avg,
		SeasonStd: std,
		LastXAvg:  math.NaN(),
		LastXStd:  math.NaN(),
	}

	tail := recentScores(pg.games, lastX)
	if len(tail) > 0 {
		row.HasLastX = true
		row.LastXN = len(tail)
		row.LastXAvg, row.LastXStd = meanStd(tail)
	}
	return row
}

// recentScores returns the scores of the last n dated games in date order.
func recentScores(games []gamelogs.GameRecord, n int) []float64 {
	if n <= 0 {
		return nil
	}
	dated := make([]gamelogs.GameRecord, 0, len(games))
	for _, g := range games {
		if g.Dated() {
			dated = append(dated, g)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].GameDate.Before(*dated[j].GameDate)
	})
	if len(dated) > n {
		dated = dated[len(dated)-n:]
	}
	out := make([]float64, 0, len(dated))
	for _, g := range dated {
		out = append(out, g.FantasyScore)
	}
	return out
}

// meanStd returns the mean and sample standard deviation. The deviation is
// NaN for fewer than two values and both are NaN for none.
func meanStd(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	if n < 2 {
		return mean, math.NaN()
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(n-1))
}
