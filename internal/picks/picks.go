// Package picks computes the four algorithmic sections from today's
// stories, the device history, and the click log. Every function is pure:
// same inputs, same picks. The keyword lists live in policy.go so they can
// be tuned (or overridden from config) without touching the selection code.
package picks

import (
	"sort"
	"strings"
	"time"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/history"
)

// Derived holds the computed sections. Nil pointers and nil slices mean "no
// pick", a normal state rendered as an explanatory note.
type Derived struct {
	NothingBurger *feed.Story
	MostMissed    *history.Entry
	WeekInReview  []history.Entry
	SameStory     []feed.Story // nil, or exactly two stories
}

// Compute runs all four pick functions.
func (p Policy) Compute(today []feed.Story, hist []history.Entry, clicks map[string]time.Time) Derived {
	return Derived{
		NothingBurger: p.NothingBurger(today),
		MostMissed:    p.MostMissed(hist, clicks),
		WeekInReview:  WeekInReview(hist),
		SameStory:     p.SameStory(today),
	}
}

// NothingBurger picks the lowest-stakes story of the day: the first story
// whose title avoids the tragedy pattern and contains a low-stakes keyword.
// Falls back to the first non-featured story, then the first story, then no
// pick.
func (p Policy) NothingBurger(today []feed.Story) *feed.Story {
	for i := range today {
		title := strings.ToLower(today[i].Title)
		if p.Tragedy.MatchString(title) {
			continue
		}
		for _, kw := range p.LowStakes {
			if strings.Contains(title, kw) {
				return &today[i]
			}
		}
	}
	for i := range today {
		if !today[i].Feature {
			return &today[i]
		}
	}
	if len(today) > 0 {
		return &today[0]
	}
	return nil
}

// MostMissed picks the oldest history entry this device never clicked,
// skipping featured stories and breaking-badged ones. History is
// append-ordered, so the first match is the oldest.
func (p Policy) MostMissed(hist []history.Entry, clicks map[string]time.Time) *history.Entry {
	for i := range hist {
		e := &hist[i]
		if e.URL == "" || e.Feature || e.Badge == p.BreakingBadge {
			continue
		}
		if _, clicked := clicks[e.URL]; clicked {
			continue
		}
		return e
	}
	return nil
}

// WeekInReview ranks history URLs by how often they appear, descending,
// ties in original history order, and returns the top seven resolved back
// to their entries. Because the merge step is dedup-by-url, a URL normally
// appears once; the count is really "pulls that surfaced this URL before it
// was first captured", not true multi-day recurrence.
func WeekInReview(hist []history.Entry) []history.Entry {
	counts := make(map[string]int, len(hist))
	var order []string
	firstEntry := make(map[string]history.Entry, len(hist))
	for _, e := range hist {
		if e.URL == "" {
			continue
		}
		if _, ok := counts[e.URL]; !ok {
			order = append(order, e.URL)
			firstEntry[e.URL] = e
		}
		counts[e.URL]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > 7 {
		order = order[:7]
	}
	out := make([]history.Entry, 0, len(order))
	for _, url := range order {
		out = append(out, firstEntry[url])
	}
	return out
}

// SameStory finds the pair of stories from different outlets with the most
// similar titles. Titles are normalized to token sets; similarity is
// Jaccard over those sets, with at least two shared tokens required so a
// single coincidental word never pairs two stories. Ties keep the first
// pair found. The returned stories are presentation-neutral: badge,
// feature, and snark stripped.
func (p Policy) SameStory(today []feed.Story) []feed.Story {
	type candidate struct {
		story  feed.Story
		tokens map[string]struct{}
	}
	var cands []candidate
	for _, st := range today {
		if !st.Valid() || st.Source == "" {
			continue
		}
		toks := p.titleTokens(st.Title)
		if len(toks) == 0 {
			continue
		}
		cands = append(cands, candidate{story: st, tokens: toks})
	}

	var (
		bestScore float64
		bestI     = -1
		bestJ     = -1
	)
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			if strings.EqualFold(cands[i].story.Source, cands[j].story.Source) {
				continue
			}
			shared, union := overlap(cands[i].tokens, cands[j].tokens)
			if shared < p.MinSharedTokens || union == 0 {
				continue
			}
			score := float64(shared) / float64(union)
			if score > bestScore {
				bestScore = score
				bestI, bestJ = i, j
			}
		}
	}
	if bestI < 0 {
		return nil
	}

	pair := []feed.Story{cands[bestI].story, cands[bestJ].story}
	for k := range pair {
		pair[k].Badge = ""
		pair[k].Feature = false
		pair[k].Snark = ""
	}
	return pair
}

// titleTokens normalizes a title into its comparison token set: lowercase,
// "&" expanded to "and", punctuation to spaces, stop-words and short words
// dropped, capped at the first MaxTokens words.
func (p Policy) titleTokens(title string) map[string]struct{} {
	t := strings.ToLower(title)
	t = strings.ReplaceAll(t, "&", " and ")

	var b strings.Builder
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(b.String()) {
		if len(w) < 4 || p.StopWords[w] {
			continue
		}
		if _, ok := tokens[w]; ok {
			continue
		}
		tokens[w] = struct{}{}
		if len(tokens) >= p.MaxTokens {
			break
		}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) (shared, union int) {
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	union = len(a) + len(b) - shared
	return shared, union
}
