// Package nbastats talks to the stats.nba.com endpoints that back the roster,
// per-player game logs and the daily scoreboard.
package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/tabular"
)

// Config controls how the client reaches the stats API.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements providers.StatsProvider over HTTP.
type Client struct {
	baseURL    string
	httpClient httpDoer
	now        func() time.Time
}

// NewClient constructs a stats client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		now:        time.Now,
	}
}

var _ providers.StatsProvider = (*Client)(nil)

// FetchRoster returns the CommonAllPlayers result set for the current season.
func (c *Client) FetchRoster(ctx context.Context, season string) (tabular.Table, error) {
	q := url.Values{}
	q.Set("IsOnlyCurrentSeason", "1")
	q.Set("LeagueID", leagueID)
	q.Set("Season", season)

	tables, err := c.get(ctx, pathRoster, q)
	if err != nil {
		return tabular.Table{}, err
	}
	return firstTable(tables, "CommonAllPlayers")
}

// FetchGameLog returns a player's regular season game log.
func (c *Client) FetchGameLog(ctx context.Context, playerID int64, season string) (tabular.Table, error) {
	q := url.Values{}
	q.Set("PlayerID", strconv.FormatInt(playerID, 10))
	q.Set("Season", season)
	q.Set("SeasonType", seasonType)
	q.Set("LeagueID", leagueID)

	tables, err := c.get(ctx, pathGameLog, q)
	if err != nil {
		return tabular.Table{}, err
	}
	return firstTable(tables, "PlayerGameLog")
}

// FetchScoreboard returns every result set of the scoreboard for date.
// A positive timeout bounds this call independently of the client timeout.
func (c *Client) FetchScoreboard(ctx context.Context, date string, timeout time.Duration) ([]tabular.Table, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	q := url.Values{}
	q.Set("GameDate", date)
	q.Set("LeagueID", leagueID)
	q.Set("DayOffset", "0")

	return c.get(ctx, pathScoreboard, q)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]tabular.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", upstreamName, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &providers.RateLimitError{
			Upstream:   upstreamName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			Message:    upstreamName + " rate limited " + path,
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &providers.StatusError{
			Upstream:   upstreamName + " " + path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var payload statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s %s: decode: %w", upstreamName, path, err)
	}
	return payload.tables(), nil
}

// firstTable prefers the named result set and falls back to the first one.
func firstTable(tables []tabular.Table, name string) (tabular.Table, error) {
	if tbl, ok := tabular.Find(tables, name); ok {
		return tbl, nil
	}
	if len(tables) > 0 {
		return tables[0], nil
	}
	return tabular.Table{}, fmt.Errorf("%s: response has no %s result set", upstreamName, name)
}
