package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/config"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
)

var buildNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func rssServer(t *testing.T, items ...[2]string) *httptest.Server {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>test</title>`)
	for _, it := range items {
		fmt.Fprintf(&b, `<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>`,
			it[0], it[1], buildNow.Add(-time.Hour).Format(time.RFC1123Z))
	}
	b.WriteString(`</channel></rss>`)
	body := b.String()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testBuilder(cfg config.GenerateConfig) *Builder {
	b := New(cfg)
	b.now = func() time.Time { return buildNow }
	b.rand = rand.New(rand.NewSource(1))
	return b
}

func TestBuildSectionFromFeeds(t *testing.T) {
	srv := rssServer(t,
		[2]string{"Story one", "https://example.com/1"},
		[2]string{"Story two", "https://example.com/2"},
	)
	b := testBuilder(config.GenerateConfig{
		SiteName: "The Daily Side-Eye",
		Sections: []config.GenerateSection{
			{Name: "Tech", MaxItems: 5, Feeds: []config.FeedSource{{Name: "Example", URL: srv.URL}}},
		},
	})

	doc, warnings := b.Build(context.Background(), nil)
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}
	if doc.Site.Name != "The Daily Side-Eye" {
		t.Errorf("site name: %q", doc.Site.Name)
	}
	if len(doc.Columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(doc.Columns))
	}
	sec := doc.Columns[0].Sections[0]
	if sec.Name != "Tech" {
		t.Errorf("section name: %q", sec.Name)
	}
	if len(sec.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(sec.Items))
	}
	for _, it := range sec.Items {
		if it.Source != "Example" {
			t.Errorf("source: %q", it.Source)
		}
		if it.Snark == "" {
			t.Error("expected snark on every item")
		}
	}
	if doc.GeneratedUTC != buildNow.Format(time.RFC3339) {
		t.Errorf("generated_utc: %q", doc.GeneratedUTC)
	}
	if doc.Meta == nil || doc.Meta.LastFullRefreshUTC != doc.GeneratedUTC {
		t.Errorf("meta: %+v", doc.Meta)
	}
}

func TestBuildBreakingBadge(t *testing.T) {
	srv := rssServer(t,
		[2]string{"Big thing", "https://example.com/1"},
		[2]string{"Bigger thing", "https://example.com/2"},
	)
	b := testBuilder(config.GenerateConfig{
		Sections: []config.GenerateSection{
			{Name: "Breaking", MaxItems: 5, Feeds: []config.FeedSource{{Name: "Wire", URL: srv.URL}}},
		},
	})

	doc, _ := b.Build(context.Background(), nil)
	items := doc.Columns[0].Sections[0].Items
	if len(items) == 0 {
		t.Fatal("no items")
	}
	if items[0].Badge != "BREAK" || !items[0].Feature {
		t.Errorf("first breaking item must carry badge+feature: %+v", items[0])
	}
	for _, it := range items[1:] {
		if it.Badge != "" || it.Feature {
			t.Errorf("only the first item is badged: %+v", it)
		}
	}
}

func TestBuildDedupesAcrossFeeds(t *testing.T) {
	srv1 := rssServer(t, [2]string{"Shared scoop", "https://example.com/same"})
	srv2 := rssServer(t, [2]string{"Shared scoop again", "https://example.com/same"})
	b := testBuilder(config.GenerateConfig{
		Sections: []config.GenerateSection{
			{Name: "Tech", MaxItems: 5, Feeds: []config.FeedSource{
				{Name: "A", URL: srv1.URL},
				{Name: "B", URL: srv2.URL},
			}},
		},
	})

	doc, _ := b.Build(context.Background(), nil)
	items := doc.Columns[0].Sections[0].Items
	if len(items) != 1 {
		t.Errorf("expected url-deduped single item, got %d", len(items))
	}
}

func TestBuildCollectsPerFeedWarnings(t *testing.T) {
	srv := rssServer(t, [2]string{"Works", "https://example.com/1"})
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(dead.Close)

	b := testBuilder(config.GenerateConfig{
		Sections: []config.GenerateSection{
			{Name: "Tech", MaxItems: 5, Feeds: []config.FeedSource{
				{Name: "Good", URL: srv.URL},
				{Name: "Bad", URL: dead.URL},
			}},
		},
	})

	doc, warnings := b.Build(context.Background(), nil)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0].Error(), "Bad") {
		t.Errorf("warning should name the feed: %v", warnings[0])
	}
	if got := len(doc.Columns[0].Sections[0].Items); got != 1 {
		t.Errorf("section should still build from the healthy feed, got %d items", got)
	}
}

func TestBuildReusesSectionsBetweenFullRefreshes(t *testing.T) {
	srv := rssServer(t, [2]string{"Fresh breaking", "https://example.com/b1"})
	b := testBuilder(config.GenerateConfig{
		FullRefreshHours: 3,
		Sections: []config.GenerateSection{
			{Name: "Breaking", MaxItems: 5, Feeds: []config.FeedSource{{Name: "Wire", URL: srv.URL}}},
			{Name: "Tech", MaxItems: 5, Feeds: []config.FeedSource{{Name: "Wire", URL: srv.URL}}},
		},
	})

	existing := &feed.Document{
		GeneratedUTC: buildNow.Add(-time.Hour).Format(time.RFC3339),
		Columns: []feed.Column{
			{Sections: []feed.Section{{Name: "Tech", Items: []feed.Item{
				{Title: "Cached story", URL: "https://example.com/cached", Source: "Wire", Snark: "Still true."},
			}}}},
		},
		Meta: &feed.Meta{
			FullRefreshEveryHours: 3,
			LastFullRefreshUTC:    buildNow.Add(-time.Hour).Format(time.RFC3339),
		},
	}

	doc, _ := b.Build(context.Background(), existing)

	// Breaking always rebuilds; Tech is reused within the interval.
	breaking := doc.Columns[0].Sections[0]
	if len(breaking.Items) != 1 || breaking.Items[0].URL != "https://example.com/b1" {
		t.Errorf("breaking not rebuilt: %+v", breaking.Items)
	}
	tech := doc.Columns[1].Sections[0]
	if len(tech.Items) != 1 || tech.Items[0].URL != "https://example.com/cached" {
		t.Errorf("tech not reused: %+v", tech.Items)
	}
	if doc.Meta.LastFullRefreshUTC != existing.Meta.LastFullRefreshUTC {
		t.Error("partial refresh must keep the last full-refresh stamp")
	}
}

func TestShouldFullRefresh(t *testing.T) {
	b := testBuilder(config.GenerateConfig{FullRefreshHours: 3})
	stamp := func(ago time.Duration) *feed.Document {
		return &feed.Document{Meta: &feed.Meta{
			LastFullRefreshUTC: buildNow.Add(-ago).Format(time.RFC3339),
		}}
	}

	tests := []struct {
		name     string
		existing *feed.Document
		want     bool
	}{
		{"no existing payload", nil, true},
		{"no meta", &feed.Document{}, true},
		{"bad stamp", &feed.Document{Meta: &feed.Meta{LastFullRefreshUTC: "garbage"}}, true},
		{"recent", stamp(time.Hour), false},
		{"stale", stamp(4 * time.Hour), true},
		{"exactly at interval", stamp(3 * time.Hour), true},
	}
	for _, tt := range tests {
		if got := b.shouldFullRefresh(tt.existing); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFetchFeedItemsAgeCutoff(t *testing.T) {
	old := buildNow.Add(-72 * time.Hour).Format(time.RFC1123Z)
	fresh := buildNow.Add(-time.Hour).Format(time.RFC1123Z)
	body := fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
<item><title>Old news</title><link>https://example.com/old</link><pubDate>%s</pubDate></item>
<item><title>Fresh news</title><link>https://example.com/new</link><pubDate>%s</pubDate></item>
<item><title>Undated news</title><link>https://example.com/undated</link></item>
</channel></rss>`, old, fresh)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	b := testBuilder(config.GenerateConfig{})
	items, err := b.fetchFeedItems(context.Background(), config.FeedSource{Name: "X", URL: srv.URL}, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	urls := make(map[string]bool)
	for _, it := range items {
		urls[it.URL] = true
	}
	if urls["https://example.com/old"] {
		t.Error("items past the age cutoff must be dropped")
	}
	if !urls["https://example.com/new"] {
		t.Error("fresh item missing")
	}
	if !urls["https://example.com/undated"] {
		t.Error("undated items are kept")
	}
}

func TestPickSnarkUnique(t *testing.T) {
	used := make(map[string]struct{})
	r := rand.New(rand.NewSource(1))
	seen := make(map[string]bool)
	for i := 0; i < len(snarkPool)+5; i++ {
		s := pickSnark(used, r)
		if s == "" {
			t.Fatal("empty snark")
		}
		if seen[s] {
			t.Fatalf("duplicate snark on one page: %q", s)
		}
		seen[s] = true
	}
}

func TestRunWritesPayload(t *testing.T) {
	srv := rssServer(t, [2]string{"A story", "https://example.com/1"})
	dir := t.TempDir()
	out := filepath.Join(dir, "site", "headlines.json")

	b := testBuilder(config.GenerateConfig{
		Output:   out,
		SiteName: "The Daily Side-Eye",
		Sections: []config.GenerateSection{
			{Name: "Tech", MaxItems: 5, Feeds: []config.FeedSource{{Name: "X", URL: srv.URL}}},
		},
	})

	warnings, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings: %v", warnings)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var doc feed.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if doc.Site.Name != "The Daily Side-Eye" || len(doc.Columns) != 1 {
		t.Errorf("unexpected payload: %+v", doc)
	}
	if _, err := os.Stat(out + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
