// Package history holds the pure algebra over the per-device story log.
// Nothing here touches storage or the clock; callers thread now through
// explicitly so every operation is deterministic and testable.
package history

import (
	"time"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
)

// DefaultRetention is how long a story stays in history after it is first
// seen.
const DefaultRetention = 7 * 24 * time.Hour

// Entry is a story plus the time it was first observed in a feed pull.
// SeenAt is immutable once set.
type Entry struct {
	feed.Story
	SeenAt time.Time `json:"t"`
}

// Prune removes entries older than the retention window and entries that
// are invalid (missing url/title or a zero SeenAt). It runs both before and
// after a merge so stale entries are never merged against.
func Prune(entries []Entry, now time.Time, retention time.Duration) []Entry {
	cutoff := now.Add(-retention)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.SeenAt.IsZero() || e.SeenAt.Before(cutoff) {
			continue
		}
		if !e.Valid() {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Merge appends an entry with SeenAt=now for each of today's stories whose
// URL is not already present. Existing entries keep their order and their
// SeenAt; new entries are appended in today order. Merging the same today
// set twice is a no-op the second time.
func Merge(entries []Entry, today []feed.Story, now time.Time) []Entry {
	existing := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		existing[e.URL] = struct{}{}
	}
	out := entries
	for _, st := range today {
		if !st.Valid() {
			continue
		}
		if _, ok := existing[st.URL]; ok {
			continue
		}
		existing[st.URL] = struct{}{}
		out = append(out, Entry{Story: st, SeenAt: now})
	}
	return out
}
