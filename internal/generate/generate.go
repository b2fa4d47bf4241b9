// Package generate rebuilds headlines.json from RSS sources: the
// server-side half of the system, runnable anywhere a cron job fits.
// Breaking is rebuilt on every run; the other sections are reused between
// full refreshes so the page stays stable for a few hours at a time.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/config"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
)

const userAgent = "Daily-Side-Eye/1.0 (+https://github.com/hunter49686-bot/Daily-Side-Eye)"

type Builder struct {
	cfg    config.GenerateConfig
	parser *gofeed.Parser
	now    func() time.Time
	rand   *rand.Rand
}

func New(cfg config.GenerateConfig) *Builder {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &Builder{
		cfg:    cfg,
		parser: p,
		now:    time.Now,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run builds the payload and writes it atomically to the configured output
// path. Per-feed fetch errors are collected, not fatal: a section built
// from the feeds that did answer is better than no page.
func (b *Builder) Run(ctx context.Context) (warnings []error, err error) {
	out := b.cfg.Output
	if out == "" {
		out = "headlines.json"
	}

	existing := loadExisting(out)
	doc, warnings := b.Build(ctx, existing)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return warnings, fmt.Errorf("encoding payload: %w", err)
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return warnings, fmt.Errorf("creating output dir: %w", err)
		}
	}
	tmp := out + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return warnings, fmt.Errorf("writing payload: %w", err)
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return warnings, fmt.Errorf("replacing payload: %w", err)
	}
	return warnings, nil
}

// Build assembles the document. Non-breaking sections are reused from the
// existing payload unless the full-refresh interval has elapsed.
func (b *Builder) Build(ctx context.Context, existing *feed.Document) (*feed.Document, []error) {
	var warnings []error
	used := make(map[string]struct{})
	full := b.shouldFullRefresh(existing)

	reuse := make(map[string]feed.Section)
	if existing != nil {
		for _, col := range existing.Columns {
			for _, sec := range col.Sections {
				reuse[sec.Name] = sec
			}
		}
	}

	var columns []feed.Column
	for _, secCfg := range b.cfg.Sections {
		breaking := strings.EqualFold(secCfg.Name, "Breaking")

		var sec feed.Section
		if !breaking && !full {
			if prev, ok := reuse[secCfg.Name]; ok {
				sec = b.resnark(prev, used)
			} else {
				var errs []error
				sec, errs = b.buildSection(ctx, secCfg, breaking, used)
				warnings = append(warnings, errs...)
			}
		} else {
			var errs []error
			sec, errs = b.buildSection(ctx, secCfg, breaking, used)
			warnings = append(warnings, errs...)
		}
		columns = append(columns, feed.Column{Sections: []feed.Section{sec}})
	}

	nowISO := b.now().UTC().Format(time.RFC3339)
	fullRefreshHours := b.cfg.FullRefreshHours
	if fullRefreshHours <= 0 {
		fullRefreshHours = 3
	}
	lastFull := nowISO
	if !full && existing != nil && existing.Meta != nil && existing.Meta.LastFullRefreshUTC != "" {
		lastFull = existing.Meta.LastFullRefreshUTC
	}

	return &feed.Document{
		GeneratedUTC: nowISO,
		Site:         feed.Site{Name: b.cfg.SiteName, Tagline: b.cfg.Tagline},
		Columns:      columns,
		Meta: &feed.Meta{
			FullRefreshEveryHours: fullRefreshHours,
			LastFullRefreshUTC:    lastFull,
		},
	}, warnings
}

// buildSection pulls a few items from each of the section's feeds
// concurrently, dedupes by URL, shuffles so one source does not dominate,
// and decorates the result.
func (b *Builder) buildSection(ctx context.Context, secCfg config.GenerateSection, breaking bool, used map[string]struct{}) (feed.Section, []error) {
	maxItems := secCfg.MaxItems
	if maxItems <= 0 {
		maxItems = 12
	}
	perFeed := maxItems / max(1, len(secCfg.Feeds))
	if perFeed < 2 {
		perFeed = 2
	}
	if perFeed > 6 {
		perFeed = 6
	}

	var (
		mu    sync.Mutex
		items []feed.Item
		errs  []error
		wg    sync.WaitGroup
	)
	for _, src := range secCfg.Feeds {
		wg.Add(1)
		go func(src config.FeedSource) {
			defer wg.Done()
			got, err := b.fetchFeedItems(ctx, src, perFeed)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
				return
			}
			items = append(items, got...)
		}(src)
	}
	wg.Wait()

	b.rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	seen := make(map[string]struct{})
	var deduped []feed.Item
	for _, it := range items {
		if _, ok := seen[it.URL]; ok {
			continue
		}
		seen[it.URL] = struct{}{}
		deduped = append(deduped, it)
		if len(deduped) >= maxItems {
			break
		}
	}

	for i := range deduped {
		if breaking && i == 0 {
			deduped[i].Badge = "BREAK"
			deduped[i].Feature = true
		}
		deduped[i].Snark = pickSnark(used, b.rand)
	}

	return feed.Section{Name: secCfg.Name, Items: deduped}, errs
}

func (b *Builder) fetchFeedItems(ctx context.Context, src config.FeedSource, maxItems int) ([]feed.Item, error) {
	parsed, err := b.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}

	maxAge := time.Duration(b.cfg.MaxAgeHours) * time.Hour
	if maxAge <= 0 {
		maxAge = 48 * time.Hour
	}
	cutoff := b.now().Add(-maxAge)

	var items []feed.Item
	for _, e := range parsed.Items {
		title := strings.Join(strings.Fields(e.Title), " ")
		link := strings.TrimSpace(e.Link)
		if title == "" || link == "" {
			continue
		}

		published := e.PublishedParsed
		if published == nil {
			published = e.UpdatedParsed
		}
		// RSS dates are inconsistent; keep items we cannot date.
		if published != nil && published.Before(cutoff) {
			continue
		}

		items = append(items, feed.Item{Title: title, URL: link, Source: src.Name})
		if len(items) >= maxItems {
			break
		}
	}
	return items, nil
}

// resnark reuses a section but re-assigns any snark that is missing or
// collides with one already used on this page.
func (b *Builder) resnark(sec feed.Section, used map[string]struct{}) feed.Section {
	items := make([]feed.Item, len(sec.Items))
	copy(items, sec.Items)
	for i := range items {
		s := strings.TrimSpace(items[i].Snark)
		if _, taken := used[s]; s == "" || taken {
			items[i].Snark = pickSnark(used, b.rand)
		} else {
			used[s] = struct{}{}
		}
	}
	return feed.Section{Name: sec.Name, Items: items}
}

func (b *Builder) shouldFullRefresh(existing *feed.Document) bool {
	if existing == nil || existing.Meta == nil || existing.Meta.LastFullRefreshUTC == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, existing.Meta.LastFullRefreshUTC)
	if err != nil {
		return true
	}
	hours := b.cfg.FullRefreshHours
	if hours <= 0 {
		hours = 3
	}
	return b.now().Sub(last) >= time.Duration(hours)*time.Hour
}

func loadExisting(path string) *feed.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc feed.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return &doc
}
