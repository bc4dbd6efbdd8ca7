package snapshot

import (
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/gamelogs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
)

// Row is one roster player joined with at most one game. A nil Game marks a
// player with no games in the season.
type Row struct {
	Player players.Player       `json:"player"`
	Game   *gamelogs.GameRecord `json:"game,omitempty"`
}

// SeasonSnapshot is the roster left-joined with every game log of the season
// as fetched on Date. Snapshots for different dates are never merged.
type SeasonSnapshot struct {
	Season    string    `json:"season"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	Columns   []string  `json:"columns"`
	Rows      []Row     `json:"rows"`
}

// HasGames reports whether any row carries a game.
func (s SeasonSnapshot) HasGames() bool {
	for _, row := range s.Rows {
		if row.Game != nil {
			return true
		}
	}
	return false
}

// Players returns the distinct players in first-seen order.
func (s SeasonSnapshot) Players() []players.Player {
	seen := make(map[int64]struct{}, len(s.Rows))
	out := make([]players.Player, 0, len(s.Rows))
	for _, row := range s.Rows {
		if _, ok := seen[row.Player.ID]; ok {
			continue
		}
		seen[row.Player.ID] = struct{}{}
		out = append(out, row.Player)
	}
	return out
}
