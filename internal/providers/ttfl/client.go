// Package ttfl fetches the signed-in pick history page from the TTFL site.
package ttfl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/providers"
)

const (
	upstreamName       = "ttfl"
	defaultBaseURL     = "https://fantasy.trashtalk.co"
	defaultHTTPTimeout = 30 * time.Second
	historyTemplate    = "historique"
	maxErrorBody       = 512
)

// Config controls how the history page is requested. HeaderFile points at a
// JSON object of extra request headers, typically {"Cookie": "..."}.
type Config struct {
	BaseURL    string
	HeaderFile string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements providers.HistoryPageFetcher.
type Client struct {
	baseURL    string
	headerFile string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, headerFile: cfg.HeaderFile, httpClient: client}
}

var _ providers.HistoryPageFetcher = (*Client)(nil)

// FetchHistoryPage GETs {base}/?tpl=historique with the configured headers.
// The page is returned in memory and never written to disk.
func (c *Client) FetchHistoryPage(ctx context.Context) (string, error) {
	headers, err := LoadHeaders(c.headerFile)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?tpl="+historyTemplate, nil)
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", upstreamName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &providers.StatusError{
			Upstream:   upstreamName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", upstreamName, err)
	}
	return string(data), nil
}

// LoadHeaders reads a JSON object of header names to values. An empty path
// yields no headers.
func LoadHeaders(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read header file: %w", upstreamName, err)
	}
	var headers map[string]string
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, fmt.Errorf("%s: parse header file %s: %w", upstreamName, path, err)
	}
	return headers, nil
}
