package gamelogs

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Upstream box-score column names.
const (
	ColPTS  = "PTS"
	ColREB  = "REB"
	ColAST  = "AST"
	ColSTL  = "STL"
	ColBLK  = "BLK"
	ColFGM  = "FGM"
	ColFGA  = "FGA"
	ColFG3M = "FG3M"
	ColFG3A = "FG3A"
	ColFTM  = "FTM"
	ColFTA  = "FTA"
	ColTOV  = "TOV"
)

// Columns lists the box-score counters that feed the fantasy score, in upstream order.
var Columns = []string{ColPTS, ColREB, ColAST, ColSTL, ColBLK, ColFGM, ColFGA, ColFG3M, ColFG3A, ColFTM, ColFTA, ColTOV}

// BoxScore holds the per-game counters. Missing counters are zero.
type BoxScore struct {
	PTS  float64 `json:"pts"`
	REB  float64 `json:"reb"`
	AST  float64 `json:"ast"`
	STL  float64 `json:"stl"`
	BLK  float64 `json:"blk"`
	FGM  float64 `json:"fgm"`
	FGA  float64 `json:"fga"`
	FG3M float64 `json:"fg3m"`
	FG3A float64 `json:"fg3a"`
	FTM  float64 `json:"ftm"`
	FTA  float64 `json:"fta"`
	TOV  float64 `json:"tov"`
}

// GameRecord is one player's line for one game.
type GameRecord struct {
	PlayerID     int64      `json:"playerId"`
	GameID       string     `json:"gameId"`
	GameDate     *time.Time `json:"gameDate,omitempty"`
	Matchup      string     `json:"matchup"`
	Box          BoxScore   `json:"box"`
	FantasyScore float64    `json:"fantasyScore"`
}

// Dated reports whether the game carries a usable date.
func (g GameRecord) Dated() bool {
	return g.GameDate != nil && !g.GameDate.IsZero()
}

// FantasyScore is the TTFL score: every positive counter minus turnovers and misses.
func FantasyScore(b BoxScore) float64 {
	gains := b.PTS + b.REB + b.AST + b.STL + b.BLK + b.FGM + b.FG3M + b.FTM
	losses := b.TOV + (b.FGA - b.FGM) + (b.FG3A - b.FG3M) + (b.FTA - b.FTM)
	return gains - losses
}

// BoxScoreFromFields reads counters from an upstream row keyed by column name.
// Keys match case-insensitively; absent or non-numeric values become 0. When
// several keys differ only by case, the lowest in byte order wins, so an
// exact upper-case column beats its variants.
func BoxScoreFromFields(fields map[string]any) BoxScore {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	upper := make(map[string]any, len(fields))
	for _, k := range keys {
		norm := strings.ToUpper(strings.TrimSpace(k))
		if _, dup := upper[norm]; !dup {
			upper[norm] = fields[k]
		}
	}
	get := func(col string) float64 { return Number(upper[col]) }
	return BoxScore{
		PTS:  get(ColPTS),
		REB:  get(ColREB),
		AST:  get(ColAST),
		STL:  get(ColSTL),
		BLK:  get(ColBLK),
		FGM:  get(ColFGM),
		FGA:  get(ColFGA),
		FG3M: get(ColFG3M),
		FG3A: get(ColFG3A),
		FTM:  get(ColFTM),
		FTA:  get(ColFTA),
		TOV:  get(ColTOV),
	}
}

// Number coerces upstream cell values to float64, mapping garbage and NaN to 0.
func Number(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
