package app

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("212")
	errorColor   = lipgloss.Color("196")
	mutedColor   = lipgloss.Color("241")
	borderColor  = lipgloss.Color("240")
)

var (
	titleBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236")).
			Bold(true).
			Padding(0, 1)

	dirtyStyle = lipgloss.NewStyle().Foreground(primaryColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	statusErrorStyle = statusStyle.Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// Palette styles
var (
	paletteStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	paletteItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	paletteSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	paletteDisabledStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Faint(true)

	paletteMatchStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Underline(true)

	paletteCursorStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)
)
