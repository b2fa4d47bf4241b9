// Package layout merges the editor-authored sections of a feed document
// with the derived sections into the page model the renderer consumes.
// Section-to-column assignment is declarative policy, not code: the rules
// have shifted between two- and three-column designs often enough that they
// belong in config.
package layout

import (
	"strings"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/feed"
	"github.com/hunter49686-bot/Daily-Side-Eye/internal/picks"
)

// Reserved section display names. An editor section with any of these
// names (case-insensitive) is suppressed; the derived version supersedes it.
const (
	NameBreaking  = "Breaking"
	NameBurger    = "Nothing Burger of the Day"
	NameMissed    = "A Line Most People Missed"
	NameWeek      = "Week in Review"
	NameSameStory = "Same Story, Different Outlet"
)

// Wildcard in a rule matches every editor section that is not reserved.
const Wildcard = "*"

// ReservedNames returns the derived-owned display names.
func ReservedNames() []string {
	return []string{NameBreaking, NameBurger, NameMissed, NameWeek, NameSameStory}
}

// SectionView is one rendered section: a name, the stories to show, and an
// optional display note printed under them.
type SectionView struct {
	Name     string
	Note     string
	Breaking bool
	Stories  []feed.Story
}

type Column struct {
	Sections []SectionView
}

// Page is the full layout model handed to the renderer.
type Page struct {
	SiteName  string
	Tagline   string
	Generated string
	Columns   []Column
}

// Rule assigns a reserved section (or the editor pass-through wildcard) to
// a column index.
type Rule struct {
	Section string
	Column  int
}

type Policy struct {
	Columns int
	Rules   []Rule
}

// DefaultPolicy is the three-column page: Breaking up front, editor
// sections in the middle, derived picks in their own column at the end.
func DefaultPolicy() Policy {
	return Policy{
		Columns: 3,
		Rules: []Rule{
			{Section: NameBreaking, Column: 0},
			{Section: Wildcard, Column: 1},
			{Section: NameBurger, Column: 2},
			{Section: NameMissed, Column: 2},
			{Section: NameWeek, Column: 2},
			{Section: NameSameStory, Column: 2},
		},
	}
}

// Compose builds the page from the document and the derived sections,
// applying the column policy. Editor sections whose names collide with
// reserved names are dropped; everything else passes through in original
// order. Derived sections always render, with a note when empty.
func Compose(doc *feed.Document, d picks.Derived, p Policy) Page {
	if p.Columns <= 0 {
		p = DefaultPolicy()
	}

	page := Page{Columns: make([]Column, p.Columns)}
	if doc != nil {
		page.SiteName = strings.TrimSpace(doc.Site.Name)
		page.Tagline = strings.TrimSpace(doc.Site.Tagline)
		page.Generated = strings.TrimSpace(doc.GeneratedUTC)
	}

	reserved := make(map[string]struct{})
	for _, n := range ReservedNames() {
		reserved[strings.ToLower(n)] = struct{}{}
	}

	for _, rule := range p.Rules {
		col := rule.Column
		if col < 0 || col >= p.Columns {
			col = p.Columns - 1
		}
		for _, sec := range p.build(rule.Section, doc, d, reserved) {
			page.Columns[col].Sections = append(page.Columns[col].Sections, sec)
		}
	}
	return page
}

func (p Policy) build(name string, doc *feed.Document, d picks.Derived, reserved map[string]struct{}) []SectionView {
	switch {
	case name == Wildcard:
		return passThrough(doc, reserved)
	case strings.EqualFold(name, NameBreaking):
		if sec := findSection(doc, NameBreaking); sec != nil {
			return []SectionView{{
				Name:     NameBreaking,
				Breaking: true,
				Stories:  sectionStories(*sec),
			}}
		}
		return nil
	case strings.EqualFold(name, NameBurger):
		view := SectionView{Name: NameBurger, Note: "No suitable pick found today."}
		if d.NothingBurger != nil {
			view.Stories = []feed.Story{*d.NothingBurger}
			view.Note = "Auto-picked: low-stakes + tragedy-filtered."
		}
		return []SectionView{view}
	case strings.EqualFold(name, NameMissed):
		view := SectionView{Name: NameMissed, Note: "Nothing missed. You read everything."}
		if d.MostMissed != nil {
			st := d.MostMissed.Story
			st.Badge = ""
			st.Feature = false
			view.Stories = []feed.Story{st}
			view.Note = "Oldest headline this device never clicked."
		}
		return []SectionView{view}
	case strings.EqualFold(name, NameWeek):
		view := SectionView{Name: NameWeek, Note: "History is empty. Come back tomorrow."}
		if len(d.WeekInReview) > 0 {
			for _, e := range d.WeekInReview {
				st := e.Story
				st.Badge = ""
				st.Feature = false
				view.Stories = append(view.Stories, st)
			}
			view.Note = "The headlines that kept coming back."
		}
		return []SectionView{view}
	case strings.EqualFold(name, NameSameStory):
		view := SectionView{Name: NameSameStory, Note: "No overlapping coverage today."}
		if len(d.SameStory) == 2 {
			view.Stories = d.SameStory
			view.Note = "Two outlets, one story."
		}
		return []SectionView{view}
	}
	return nil
}

// passThrough collects editor sections in original column/section order,
// skipping unnamed sections and reserved names.
func passThrough(doc *feed.Document, reserved map[string]struct{}) []SectionView {
	if doc == nil {
		return nil
	}
	var out []SectionView
	for _, col := range doc.Columns {
		for _, sec := range col.Sections {
			name := strings.TrimSpace(sec.Name)
			if name == "" {
				continue
			}
			if _, skip := reserved[strings.ToLower(name)]; skip {
				continue
			}
			out = append(out, SectionView{Name: name, Stories: sectionStories(sec)})
		}
	}
	return out
}

func findSection(doc *feed.Document, name string) *feed.Section {
	if doc == nil {
		return nil
	}
	for _, col := range doc.Columns {
		for i, sec := range col.Sections {
			if strings.EqualFold(strings.TrimSpace(sec.Name), name) {
				return &col.Sections[i]
			}
		}
	}
	return nil
}

func sectionStories(sec feed.Section) []feed.Story {
	var out []feed.Story
	for _, it := range sec.Items {
		st := feed.Story{
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
	return out
}
