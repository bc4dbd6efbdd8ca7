// Package fixture serves deterministic stats and history data for offline runs.
package fixture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/gamelogs"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/players"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/domain/teams"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/timeutil"
)

var fixtureTeams = []teams.Team{
	{ID: 1610612738, Abbreviation: "BOS"},
	{ID: 1610612747, Abbreviation: "LAL"},
	{ID: 1610612744, Abbreviation: "GSW"},
	{ID: 1610612748, Abbreviation: "MIA"},
}

var fixturePlayers = []players.Player{
	{ID: 1628369, Name: "Jayson Tatum", Code: "jayson_tatum", TeamID: 1610612738, TeamAbbreviation: "BOS"},
	{ID: 1627759, Name: "Jaylen Brown", Code: "jaylen_brown", TeamID: 1610612738, TeamAbbreviation: "BOS"},
	{ID: 2544, Name: "LeBron James", Code: "lebron_james", TeamID: 1610612747, TeamAbbreviation: "LAL"},
	{ID: 203076, Name: "Anthony Davis", Code: "anthony_davis", TeamID: 1610612747, TeamAbbreviation: "LAL"},
	{ID: 201939, Name: "Stephen Curry", Code: "stephen_curry", TeamID: 1610612744, TeamAbbreviation: "GSW"},
	{ID: 203110, Name: "Draymond Green", Code: "draymond_green", TeamID: 1610612744, TeamAbbreviation: "GSW"},
	{ID: 1628389, Name: "Bam Adebayo", Code: "bam_adebayo", TeamID: 1610612748, TeamAbbreviation: "MIA"},
	{ID: 1629639, Name: "Tyler Herro", Code: "tyler_herro", TeamID: 1610612748, TeamAbbreviation: "MIA"},
}

// Provider returns a static league useful for local runs and bootstrapping.
type Provider struct {
	now func() time.Time
}

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{now: time.Now}
}

var (
	_ providers.StatsProvider      = (*Provider)(nil)
	_ providers.HistoryPageFetcher = (*Provider)(nil)
)

// FetchRoster returns every fixture player flagged as playing.
func (p *Provider) FetchRoster(ctx context.Context, season string) (tabular.Table, error) {
	_ = season
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, err
	}
	tbl := tabular.Table{
		Name:    "CommonAllPlayers",
		Headers: []string{"PERSON_ID", "DISPLAY_FIRST_LAST", "PLAYERCODE", "TEAM_ID", "TEAM_ABBREVIATION", "GAMES_PLAYED_FLAG"},
	}
	for _, pl := range fixturePlayers {
		tbl.Rows = append(tbl.Rows, []any{float64(pl.ID), pl.Name, pl.Code, float64(pl.TeamID), pl.TeamAbbreviation, "Y"})
	}
	// a retired player the aggregator must drop
	tbl.Rows = append(tbl.Rows, []any{float64(76001), "Alaa Abdelnaby", "HISTADD_alaa", float64(0), "", "N"})
	return tbl, nil
}

// FetchGameLog returns one line per scheduled game of the player's team, from
// the season opener up to yesterday.
func (p *Provider) FetchGameLog(ctx context.Context, playerID int64, season string) (tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return tabular.Table{}, err
	}
	tbl := tabular.Table{
		Name:    "PlayerGameLog",
		Headers: append([]string{"SEASON_ID", "Player_ID", "Game_ID", "GAME_DATE", "MATCHUP"}, gamelogs.Columns...),
	}

	player, ok := findPlayer(playerID)
	if !ok {
		return tbl, nil
	}
	startYear, err := timeutil.SeasonStartYear(season)
	if err != nil {
		return tabular.Table{}, err
	}
	opener := time.Date(startYear, time.October, 21, 0, 0, 0, 0, time.UTC)
	today := timeutil.StartOfDay(p.now().UTC())

	n := 0
	for day := opener; day.Before(today); day = day.AddDate(0, 0, 1) {
		home, away, ok := matchupFor(day, player.TeamAbbreviation)
		if !ok {
			continue
		}
		b := boxFor(playerID, n)
		tbl.Rows = append(tbl.Rows, []any{
			fmt.Sprintf("2%d", startYear),
			float64(playerID),
			fmt.Sprintf("002%02d%05d", startYear%100, dayIndex(day)),
			strings.ToUpper(day.Format("Jan 02, 2006")),
			home + " vs. " + away,
			b.PTS, b.REB, b.AST, b.STL, b.BLK, b.FGM, b.FGA, b.FG3M, b.FG3A, b.FTM, b.FTA, b.TOV,
		})
		n++
	}
	return tbl, nil
}

// FetchScoreboard returns a GameHeader (team ids) and LineScore (abbreviations).
func (p *Provider) FetchScoreboard(ctx context.Context, date string, timeout time.Duration) ([]tabular.Table, error) {
	_ = timeout
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return nil, err
	}

	header := tabular.Table{Name: "GameHeader", Headers: []string{"GAME_ID", "HOME_TEAM_ID", "VISITOR_TEAM_ID"}}
	line := tabular.Table{Name: "LineScore", Headers: []string{"GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION"}}
	for i, pair := range pairingsFor(day) {
		gameID := fmt.Sprintf("fixture-%s-%d", date, i)
		header.Rows = append(header.Rows, []any{gameID, float64(pair[0].ID), float64(pair[1].ID)})
		line.Rows = append(line.Rows,
			[]any{gameID, float64(pair[0].ID), pair[0].Abbreviation},
			[]any{gameID, float64(pair[1].ID), pair[1].Abbreviation},
		)
	}
	return []tabular.Table{header, line}, nil
}

// FetchHistoryPage renders a pick history with the last three days' picks.
func (p *Provider) FetchHistoryPage(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	today := timeutil.StartOfDay(p.now().UTC())
	var b strings.Builder
	b.WriteString(`<html><body><table id="MuTabme"><thead><tr><th>Date</th><th>Joueur</th><th>Score</th></tr></thead><tbody>`)
	for i := 1; i <= 3; i++ {
		pick := fixturePlayers[(dayIndex(today)+i)%len(fixturePlayers)]
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td></tr>",
			today.AddDate(0, 0, -i).Format("02/01/2006"), pick.Name, 30+i)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String(), nil
}

func findPlayer(id int64) (players.Player, bool) {
	for _, pl := range fixturePlayers {
		if pl.ID == id {
			return pl, true
		}
	}
	return players.Player{}, false
}

func dayIndex(day time.Time) int {
	return int(day.Unix() / 86400)
}

// Even days: BOS-LAL and GSW-MIA. Odd days: MIA-BOS only.
func pairingsFor(day time.Time) [][2]teams.Team {
	if dayIndex(day)%2 == 0 {
		return [][2]teams.Team{
			{fixtureTeams[0], fixtureTeams[1]},
			{fixtureTeams[2], fixtureTeams[3]},
		}
	}
	return [][2]teams.Team{{fixtureTeams[3], fixtureTeams[0]}}
}

func matchupFor(day time.Time, abbr string) (string, string, bool) {
	for _, pair := range pairingsFor(day) {
		if pair[0].Abbreviation == abbr || pair[1].Abbreviation == abbr {
			return pair[0].Abbreviation, pair[1].Abbreviation, true
		}
	}
	return "", "", false
}

// boxFor derives a stable stat line from the player id and game number.
func boxFor(playerID int64, game int) gamelogs.BoxScore {
	seed := int(playerID%97) + game*7
	f := func(mod, base int) float64 { return float64(base + seed%mod) }
	fga := f(9, 12)
	fgm := f(6, 5)
	fg3a := f(5, 3)
	fg3m := float64(int(fg3a) / 3)
	fta := f(5, 2)
	ftm := fta - float64(seed%2)
	return gamelogs.BoxScore{
		PTS:  2*(fgm-fg3m) + 3*fg3m + ftm,
		REB:  f(8, 3),
		AST:  f(7, 2),
		STL:  f(3, 0),
		BLK:  f(3, 0),
		FGM:  fgm,
		FGA:  fga,
		FG3M: fg3m,
		FG3A: fg3a,
		FTM:  ftm,
		FTA:  fta,
		TOV:  f(4, 1),
	}
}
