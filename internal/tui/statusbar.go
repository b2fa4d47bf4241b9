package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(storyCount int, updatedAt string, width int, refreshing bool, spin string, updateVersion string) string {
	left := fmt.Sprintf(" %d stories", storyCount)
	if updatedAt != "" {
		left += " · updated " + updatedAt
	}
	if refreshing {
		left += fmt.Sprintf(" %s refreshing...", spin)
	}
	if updateVersion != "" {
		left += " · update v" + updateVersion + " available"
	}

	right := " r refresh  enter open  q quit "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
