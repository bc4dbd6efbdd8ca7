package nbastats

import "time"

const (
	upstreamName       = "nbastats"
	defaultBaseURL     = "https://stats.nba.com/stats"
	defaultHTTPTimeout = 30 * time.Second
	leagueID           = "00"
	seasonType         = "Regular Season"
	maxErrorBody       = 512

	pathRoster     = "/commonallplayers"
	pathGameLog    = "/playergamelog"
	pathScoreboard = "/scoreboardv2"
)

// stats.nba.com drops requests that do not look like they come from nba.com.
var browserHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Referer":            "https://www.nba.com/",
	"Origin":             "https://www.nba.com",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}
