package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client fetches the headlines document over HTTP. Each request carries a
// unique ts query parameter plus no-cache headers so staleness is bounded
// only by the poll interval, never by an intermediate cache.
type Client struct {
	feedURL string
	http    *http.Client
	now     func() time.Time
}

func NewClient(feedURL string) *Client {
	return &Client{
		feedURL: feedURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		now:     time.Now,
	}
}

func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("parsing feed url: %w", err)
	}
	q := u.Query()
	q.Set("ts", strconv.FormatInt(c.now().UnixNano(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed: unexpected status %s", resp.Status)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}
	return &doc, nil
}
