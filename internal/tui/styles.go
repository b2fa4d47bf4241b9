package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorInk       = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E8E4D8"}
	colorMasthead  = lipgloss.AdaptiveColor{Light: "#8B0000", Dark: "#E05B4B"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorSource    = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorBreaking  = lipgloss.AdaptiveColor{Light: "#C41E3A", Dark: "#FF4D4D"}
	colorRule      = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}

	mastheadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMasthead).
			PaddingLeft(1)

	taglineStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true).
			PaddingLeft(1)

	generatedStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Align(lipgloss.Right)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorInk).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorRule)

	breakingTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBreaking).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorBreaking)

	storyTitleStyle = lipgloss.NewStyle().
			Foreground(colorInk)

	storySelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	featureStyle = lipgloss.NewStyle().
			Foreground(colorInk).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorBreaking).
			Padding(0, 1).
			Bold(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(colorSource)

	snarkStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errStyle = lipgloss.NewStyle().
			Foreground(colorBreaking).
			PaddingLeft(1)

	columnStyle = lipgloss.NewStyle().
			PaddingRight(2)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)
)
