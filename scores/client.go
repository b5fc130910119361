package scores

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"sports-home-automation/game"
)

const (
	DefaultTimeout = 30 * time.Second
	// MaxBodyBytes caps how much of a scoreboard is read into memory.
	MaxBodyBytes = 10 << 20
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches scoreboard payloads.
type Client struct {
	httpClient httpDoer
	maxBytes   int64
	logger     *slog.Logger
}

// NewClient returns a Client. A nil httpClient gets a 30 second timeout.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	var doer httpDoer = httpClient
	if httpClient == nil {
		doer = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{httpClient: doer, maxBytes: MaxBodyBytes, logger: logger}
}

// Fetch GETs url and returns the body. Non-2xx answers and bodies over the cap
// fail with ErrNoData.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Info("Fetching scoreboard", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s answered %d", ErrNoData, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s body exceeds %d bytes", ErrNoData, url, c.maxBytes)
	}
	return body, nil
}

// FetchCandidates fetches a feed and normalizes it.
func (c *Client) FetchCandidates(ctx context.Context, feed Feed) ([]Candidate, error) {
	raw, err := c.Fetch(ctx, feed.URL)
	if err != nil {
		return nil, err
	}
	cands, err := Normalize(raw, feed.Format, feed.Sport)
	if err != nil {
		return nil, fmt.Errorf("normalize %s feed: %w", feed.Sport, err)
	}
	c.logger.Info("Received scores", "sport", feed.Sport, "games", len(cands), "malformed", Malformed(cands))
	return cands, nil
}

// Feed is one provider scoreboard for one sport.
type Feed struct {
	Sport  game.Sport `json:"sport"`
	URL    string     `json:"url"`
	Format Format     `json:"format"`
}

const (
	ncaaHost = "https://ncaa-api.henrygd.me"
	espnHost = "https://site.api.espn.com"
)

// DefaultFeeds lists the production scoreboards keyed by sport.
func DefaultFeeds() map[game.Sport]Feed {
	return map[game.Sport]Feed{
		game.CollegeFootball: {
			Sport:  game.CollegeFootball,
			URL:    ncaaHost + "/scoreboard/football/fbs",
			Format: FormatNCAA,
		},
		game.MensBasketball: {
			Sport:  game.MensBasketball,
			URL:    ncaaHost + "/scoreboard/basketball-men/d1",
			Format: FormatNCAA,
		},
		game.WomensBasketball: {
			Sport:  game.WomensBasketball,
			URL:    ncaaHost + "/scoreboard/basketball-women/d1",
			Format: FormatNCAA,
		},
		game.ProFootball: {
			Sport:  game.ProFootball,
			URL:    espnHost + "/apis/site/v2/sports/football/nfl/scoreboard",
			Format: FormatESPN,
		},
	}
}
