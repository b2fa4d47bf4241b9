package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/history"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/layout"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/picks"
)

type fakeFetcher struct {
	doc     *feed.Document
	err     error
	calls   int
	started chan struct{} // non-nil: signals entry, then blocks on release
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context) (*feed.Document, error) {
	f.calls++
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	return f.doc, f.err
}

type fakeStore struct {
	hist    []history.Entry
	saves   int
	saveErr error
}

func (s *fakeStore) LoadHistory() []history.Entry { return s.hist }

func (s *fakeStore) SaveHistory(entries []history.Entry) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.hist = entries
	s.saves++
	return nil
}

type fakeClicks map[string]time.Time

func (c fakeClicks) Clicks() map[string]time.Time { return c }

func testDoc(generated string) *feed.Document {
	return &feed.Document{
		GeneratedUTC: generated,
		Columns: []feed.Column{{Sections: []feed.Section{
			{Name: "Business", Items: []feed.Item{
				{Title: "Markets move", URL: "u1", Source: "A"},
				{Title: "Markets move again", URL: "u2", Source: "B"},
			}},
		}}},
	}
}

func newTestController(f Fetcher, s HistoryStore) *Controller {
	return New(Options{
		Fetcher: f,
		Store:   s,
		Clicks:  fakeClicks{},
		Picks:   picks.DefaultPolicy(),
		Layout:  layout.DefaultPolicy(),
		Now:     func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func TestRefreshComputesPage(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("2026-09-01T12:00:00Z")}
	st := &fakeStore{}
	c := newTestController(f, st)

	res, err := c.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.Skipped {
		t.Error("first refresh must not skip")
	}
	if res.Page == nil {
		t.Fatal("expected a page")
	}
	if res.Stories != 2 {
		t.Errorf("expected 2 stories, got %d", res.Stories)
	}
	if st.saves != 1 {
		t.Errorf("expected one history save, got %d", st.saves)
	}
	if len(st.hist) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(st.hist))
	}
}

func TestRefreshSkipsUnchangedFingerprint(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("2026-09-01T12:00:00Z")}
	st := &fakeStore{}
	c := newTestController(f, st)

	if _, err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	res, err := c.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !res.Skipped {
		t.Error("unchanged fingerprint must skip")
	}
	if res.Page != nil {
		t.Error("skipped cycle must not produce a page")
	}
	if st.saves != 1 {
		t.Errorf("skipped cycle must not touch the store, saves = %d", st.saves)
	}
}

func TestRefreshForcedRecomputes(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("2026-09-01T12:00:00Z")}
	st := &fakeStore{}
	c := newTestController(f, st)

	if _, err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	res, err := c.Refresh(context.Background(), true)
	if err != nil {
		t.Fatalf("forced refresh: %v", err)
	}
	if res.Skipped || res.Page == nil {
		t.Error("forced refresh must recompute")
	}
	if st.saves != 2 {
		t.Errorf("forced refresh must save, saves = %d", st.saves)
	}
}

func TestRefreshEmptyFingerprintNeverSkips(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("")}
	st := &fakeStore{}
	c := newTestController(f, st)

	for i := 0; i < 3; i++ {
		res, err := c.Refresh(context.Background(), false)
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		if res.Skipped {
			t.Errorf("refresh %d: empty fingerprint must never skip", i)
		}
	}
}

func TestRefreshChangedFingerprintRecomputes(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("2026-09-01T12:00:00Z")}
	st := &fakeStore{}
	c := newTestController(f, st)

	if _, err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	f.doc = testDoc("2026-09-01T12:05:00Z")
	res, err := c.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if res.Skipped {
		t.Error("changed fingerprint must recompute")
	}
}

func TestRefreshFetchErrorLeavesFingerprint(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("2026-09-01T12:00:00Z")}
	st := &fakeStore{}
	c := newTestController(f, st)

	if _, err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	f.err = errors.New("boom")
	if _, err := c.Refresh(context.Background(), false); err == nil {
		t.Fatal("expected fetch error")
	}

	// Recovered feed with the same fingerprint still skips: the failed
	// cycle must not have cleared it.
	f.err = nil
	res, err := c.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("recovered refresh: %v", err)
	}
	if !res.Skipped {
		t.Error("fingerprint should have survived the failed cycle")
	}
}

func TestRefreshSaveErrorPropagates(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("2026-09-01T12:00:00Z")}
	st := &fakeStore{saveErr: errors.New("disk full")}
	c := newTestController(f, st)

	if _, err := c.Refresh(context.Background(), false); err == nil {
		t.Fatal("expected save error")
	}

	// The fingerprint is only committed after a full successful cycle.
	st.saveErr = nil
	res, err := c.Refresh(context.Background(), false)
	if err != nil {
		t.Fatalf("retry refresh: %v", err)
	}
	if res.Skipped {
		t.Error("failed cycle must not have committed the fingerprint")
	}
}

func TestRefreshSerialized(t *testing.T) {
	f := &fakeFetcher{
		doc:     testDoc("2026-09-01T12:00:00Z"),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	st := &fakeStore{}
	c := newTestController(f, st)

	done := make(chan error, 1)
	go func() {
		_, err := c.Refresh(context.Background(), false)
		done <- err
	}()

	<-f.started // first cycle is inside Fetch

	if _, err := c.Refresh(context.Background(), true); !errors.Is(err, ErrInFlight) {
		t.Errorf("expected ErrInFlight, got %v", err)
	}

	close(f.release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	// Cycle finished: the controller accepts work again.
	f.started = nil
	if _, err := c.Refresh(context.Background(), true); err != nil {
		t.Errorf("post-cycle refresh: %v", err)
	}
}

func TestRefreshHistoryAccumulatesAcrossCycles(t *testing.T) {
	f := &fakeFetcher{doc: testDoc("2026-09-01T12:00:00Z")}
	st := &fakeStore{}
	c := newTestController(f, st)

	if _, err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	// New feed drops u1 and adds u3; u1 stays in history until it ages out.
	f.doc = &feed.Document{
		GeneratedUTC: "2026-09-01T13:00:00Z",
		Columns: []feed.Column{{Sections: []feed.Section{
			{Name: "Business", Items: []feed.Item{
				{Title: "Markets move again", URL: "u2", Source: "B"},
				{Title: "Something else", URL: "u3", Source: "C"},
			}},
		}}},
	}
	if _, err := c.Refresh(context.Background(), false); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	urls := make(map[string]bool)
	for _, e := range st.hist {
		urls[e.URL] = true
	}
	for _, u := range []string{"u1", "u2", "u3"} {
		if !urls[u] {
			t.Errorf("expected %s in history", u)
		}
	}
}
