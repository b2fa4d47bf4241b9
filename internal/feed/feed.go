package feed

import "strings"

// Document is the headlines.json payload as published by the generator.
// Every field is optional on the wire; absent arrays decode to nil and are
// treated as empty everywhere downstream.
type Document struct {
	GeneratedUTC string   `json:"generated_utc"`
	Site         Site     `json:"site"`
	Columns      []Column `json:"columns"`
	Meta         *Meta    `json:"_meta,omitempty"`
}

type Site struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
}

type Column struct {
	Sections []Section `json:"sections"`
}

type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

type Item struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Snark   string `json:"snark,omitempty"`
	Feature bool   `json:"feature,omitempty"`
	Badge   string `json:"badge,omitempty"`
}

// Meta is generator bookkeeping carried inside the payload. The client
// ignores it; the generate command uses it to pace full refreshes.
type Meta struct {
	FullRefreshEveryHours int    `json:"full_refresh_every_hours,omitempty"`
	LastFullRefreshUTC    string `json:"last_full_refresh_utc,omitempty"`
}

// Story is a normalized feed item. URL is the story's identity: two stories
// with the same URL are the same story regardless of other fields.
type Story struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Snark   string `json:"snark"`
	Feature bool   `json:"feature"`
	Badge   string `json:"badge"`
	Section string `json:"section"`
}

// Valid reports whether the story has a non-empty title and URL after
// trimming. Invalid stories never enter history, dedup, or the pick engine.
func (s Story) Valid() bool {
	return strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.URL) != ""
}

// Flatten walks the document in order (columns, then sections, then items)
// and returns the valid stories it contains. Missing arrays and scalar
// fields at any depth coerce to empty; items without a title or URL are
// dropped here and never seen again.
func Flatten(doc *Document) []Story {
	if doc == nil {
		return nil
	}
	var out []Story
	for _, col := range doc.Columns {
		for _, sec := range col.Sections {
			for _, it := range sec.Items {
				st := Story{
					Title:   strings.TrimSpace(it.Title),
					URL:     strings.TrimSpace(it.URL),
					Source:  strings.TrimSpace(it.Source),
					Snark:   strings.TrimSpace(it.Snark),
					Feature: it.Feature,
					Badge:   strings.TrimSpace(it.Badge),
					Section: strings.TrimSpace(sec.Name),
				}
				if !st.Valid() {
					continue
				}
				out = append(out, st)
			}
		}
	}
	return out
}

// Dedup collapses stories to one entry per URL, keeping the first
// occurrence. Output order is the relative order of first occurrences in
// the input.
func Dedup(stories []Story) []Story {
	seen := make(map[string]struct{}, len(stories))
	out := make([]Story, 0, len(stories))
	for _, st := range stories {
		if st.URL == "" {
			continue
		}
		if _, ok := seen[st.URL]; ok {
			continue
		}
		seen[st.URL] = struct{}{}
		out = append(out, st)
	}
	return out
}
