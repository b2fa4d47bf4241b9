// Package refresh drives the pull pipeline: fetch the feed, decide whether
// anything changed, update the device history, compute the derived picks,
// and compose the page. Cycles are serialized: a forced refresh racing the
// timer is rejected with ErrInFlight rather than interleaving two
// read-modify-write passes over the same store.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/history"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/layout"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/picks"
)

// ErrInFlight is returned when a refresh cycle is already running.
var ErrInFlight = errors.New("refresh already in progress")

// Fetcher fetches the feed document. Implemented by feed.Client.
type Fetcher interface {
	Fetch(ctx context.Context) (*feed.Document, error)
}

// HistoryStore is the read-modify-write contract over the persisted seen
// log. Load must be corruption-tolerant (empty on bad data, never an error).
type HistoryStore interface {
	LoadHistory() []history.Entry
	SaveHistory([]history.Entry) error
}

// ClickSource exposes the device click log.
type ClickSource interface {
	Clicks() map[string]time.Time
}

type Options struct {
	Fetcher   Fetcher
	Store     HistoryStore
	Clicks    ClickSource
	Picks     picks.Policy
	Layout    layout.Policy
	Retention time.Duration
	Now       func() time.Time
}

type Controller struct {
	fetcher   Fetcher
	store     HistoryStore
	clicks    ClickSource
	picks     picks.Policy
	layout    layout.Policy
	retention time.Duration
	now       func() time.Time

	mu          sync.Mutex
	inFlight    bool
	fingerprint string
}

func New(opts Options) *Controller {
	if opts.Retention <= 0 {
		opts.Retention = history.DefaultRetention
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		fetcher:   opts.Fetcher,
		store:     opts.Store,
		clicks:    opts.Clicks,
		picks:     opts.Picks,
		layout:    opts.Layout,
		retention: opts.Retention,
		now:       opts.Now,
	}
}

// Result is the outcome of one refresh cycle. Skipped means the feed's
// fingerprint was unchanged and nothing was recomputed.
type Result struct {
	Page    *layout.Page
	Skipped bool
	Stories int
}

// Refresh runs one full cycle. When forced is false and the feed's
// generated_utc matches the last one seen, the cycle is a pure no-op. An
// empty fingerprint never matches, so such feeds always redraw. On fetch
// failure the fingerprint is left untouched and the caller keeps whatever
// it last rendered.
func (c *Controller) Refresh(ctx context.Context, forced bool) (*Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	doc, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading headlines: %w", err)
	}

	fp := strings.TrimSpace(doc.GeneratedUTC)
	if !forced && fp != "" && fp == c.lastFingerprint() {
		return &Result{Skipped: true}, nil
	}

	now := c.now()
	today := feed.Dedup(feed.Flatten(doc))

	hist := history.Prune(c.store.LoadHistory(), now, c.retention)
	hist = history.Merge(hist, today, now)
	hist = history.Prune(hist, now, c.retention)
	if err := c.store.SaveHistory(hist); err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}

	derived := c.picks.Compute(today, hist, c.clicks.Clicks())
	page := layout.Compose(doc, derived, c.layout)

	c.setFingerprint(fp)
	return &Result{Page: &page, Stories: len(today)}, nil
}

func (c *Controller) lastFingerprint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fingerprint
}

func (c *Controller) setFingerprint(fp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fingerprint = fp
}
