package picks

import (
	"fmt"
	"regexp"
	"strings"
)

// BreakingBadge is the badge value the generator puts on breaking stories.
const BreakingBadge = "BREAK"

// Policy is the tunable part of the pick engine: the vocabulary heuristics
// and pairing thresholds. Defaults match the published front page.
type Policy struct {
	// LowStakes marks a title as a Nothing Burger candidate when any of
	// these appear (case-insensitive substring).
	LowStakes []string
	// Tragedy disqualifies a title from Nothing Burger no matter what
	// low-stakes keyword it also contains.
	Tragedy *regexp.Regexp
	// StopWords are dropped during title normalization for pairing.
	StopWords map[string]bool
	// MaxTokens caps the comparison token set per title.
	MaxTokens int
	// MinSharedTokens is the floor for a qualifying pair.
	MinSharedTokens int
	// BreakingBadge excludes badged stories from Most Missed.
	BreakingBadge string
}

var defaultLowStakes = []string{
	"celebrity", "royal", "netflix", "tiktok", "iphone", "android", "review",
	"tips", "recipe", "fashion", "beauty", "dating", "viral", "meme", "trend",
	"podcast", "travel", "diet", "coffee", "sleep", "study", "app", "streaming",
}

var defaultTragedyTerms = []string{
	"dead", "dies", "killed", "death", "shooting", "attack", "war", "bomb",
	"explosion", "terror", "crash", "earthquake", "wildfire", "flood",
	"victim", "injured",
}

var defaultStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "is": true, "it": true, "its": true,
	"this": true, "that": true, "are": true, "was": true, "were": true,
	"have": true, "has": true, "had": true, "will": true, "would": true,
	"after": true, "before": true, "over": true, "under": true, "into": true,
	"about": true, "amid": true, "says": true, "said": true, "more": true,
	"than": true, "what": true, "when": true, "where": true, "who": true,
	"how": true, "why": true, "new": true, "his": true, "her": true,
	"their": true, "your": true, "our": true, "not": true, "out": true,
}

// DefaultPolicy returns the stock vocabulary and thresholds.
func DefaultPolicy() Policy {
	return Policy{
		LowStakes:       defaultLowStakes,
		Tragedy:         CompileTragedy(defaultTragedyTerms),
		StopWords:       defaultStopWords,
		MaxTokens:       12,
		MinSharedTokens: 2,
		BreakingBadge:   BreakingBadge,
	}
}

// CompileTragedy builds the case-insensitive disjunction pattern from a
// term list.
func CompileTragedy(terms []string) *regexp.Regexp {
	if len(terms) == 0 {
		// Matches nothing.
		return regexp.MustCompile(`\x00`)
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(t)))
	}
	return regexp.MustCompile(fmt.Sprintf(`(?i)(%s)`, strings.Join(quoted, "|")))
}
