package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hunter49686-bot/Daily-Side-Eye/internal/layout"
)

// renderColumn renders one column at the given width. selected is the index
// into the app's flat story list; refs maps flat indices to positions. The
// returned selLine is the first line of the selected story within this
// column, or -1 when the cursor is elsewhere.
func (a *App) renderColumn(colIdx int, col layout.Column, width int) (string, int) {
	var (
		lines   []string
		selLine = -1
	)
	body := lipgloss.NewStyle().Width(width)

	flatIdx := 0
	for _, ref := range a.refs {
		if ref.col == colIdx {
			break
		}
		flatIdx++
	}

	for secIdx, sec := range col.Sections {
		titleStyle := sectionTitleStyle
		if sec.Breaking {
			titleStyle = breakingTitleStyle
		}
		lines = append(lines, strings.Split(titleStyle.Width(width).Render(sec.Name), "\n")...)

		for storyIdx, st := range sec.Stories {
			selected := flatIdx < len(a.refs) &&
				a.refs[flatIdx].col == colIdx &&
				a.refs[flatIdx].sec == secIdx &&
				a.refs[flatIdx].story == storyIdx &&
				flatIdx == a.cursor

			var head strings.Builder
			if selected {
				head.WriteString("> ")
			} else {
				head.WriteString("  ")
			}
			if st.Badge != "" {
				head.WriteString(badgeStyle.Render(st.Badge) + " ")
			}
			title := st.Title
			switch {
			case selected:
				head.WriteString(storySelectedStyle.Render(title))
			case st.Feature:
				head.WriteString(featureStyle.Render(title))
			default:
				head.WriteString(storyTitleStyle.Render(title))
			}
			if st.Source != "" {
				head.WriteString(sourceStyle.Render(" • " + st.Source))
			}

			rendered := strings.Split(body.Render(head.String()), "\n")
			if selected {
				selLine = len(lines)
			}
			lines = append(lines, rendered...)

			if st.Snark != "" {
				snark := body.Render(snarkStyle.Render("  " + st.Snark))
				lines = append(lines, strings.Split(snark, "\n")...)
			}
			flatIdx++
		}

		if sec.Note != "" {
			note := body.Render(noteStyle.Render(sec.Note))
			lines = append(lines, strings.Split(note, "\n")...)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n"), selLine
}

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var b strings.Builder

	// Masthead
	name := "THE DAILY SIDE-EYE"
	tagline := ""
	generated := ""
	if a.page != nil {
		if a.page.SiteName != "" {
			name = a.page.SiteName
		}
		tagline = a.page.Tagline
		generated = a.page.Generated
	}
	head := mastheadStyle.Render(name)
	if tagline != "" {
		head += taglineStyle.Render(tagline)
	}
	right := generatedStyle.Render(generated)
	gap := a.width - lipgloss.Width(head) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	b.WriteString(head + strings.Repeat(" ", gap) + right + "\n")

	if a.err != nil {
		b.WriteString(errStyle.Render("Could not load headlines: "+a.err.Error()) + "\n")
	}

	bodyHeight := a.height - 3
	if a.err != nil {
		bodyHeight--
	}
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	if a.page == nil {
		b.WriteString(noteStyle.Render("\n  No page yet. Press r to refresh."))
		b.WriteString(strings.Repeat("\n", max(0, bodyHeight-2)))
		b.WriteString(renderStatusBar(0, "", a.width, a.refreshing, a.spinner.View(), a.updateVersion))
		return b.String()
	}

	cols := len(a.page.Columns)
	colWidth := a.width/max(1, cols) - 2
	if colWidth < 20 {
		colWidth = 20
	}

	rendered := make([]string, 0, cols)
	cursorLine := -1
	for i, col := range a.page.Columns {
		text, selLine := a.renderColumn(i, col, colWidth)
		if selLine >= 0 {
			cursorLine = selLine
		}
		rendered = append(rendered, columnStyle.Render(text))
	}
	joined := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	lines := strings.Split(joined, "\n")

	// Keep the cursor visible.
	if cursorLine >= 0 {
		if cursorLine < a.scroll {
			a.scroll = cursorLine
		}
		if cursorLine >= a.scroll+bodyHeight {
			a.scroll = cursorLine - bodyHeight + 1
		}
	}
	if a.scroll > len(lines)-bodyHeight {
		a.scroll = len(lines) - bodyHeight
	}
	if a.scroll < 0 {
		a.scroll = 0
	}

	end := a.scroll + bodyHeight
	if end > len(lines) {
		end = len(lines)
	}
	visible := lines[a.scroll:end]
	b.WriteString(strings.Join(visible, "\n"))
	for i := len(visible); i < bodyHeight; i++ {
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(renderStatusBar(a.storyCount(), a.updatedAt(), a.width, a.refreshing, a.spinner.View(), a.updateVersion))
	return b.String()
}
