package toolbar

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Muted        = lipgloss.Color("241")
	BgSecondary  = lipgloss.Color("235")
	BorderNormal = lipgloss.Color("240")
)

// Bar styles
var (
	barStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderNormal).
			Padding(0, 1)

	// barVisibleStyle is the highlighted look of a shown toolbar with items.
	barVisibleStyle = barStyle.
			BorderForeground(Primary)

	separatorStyle = lipgloss.NewStyle().Foreground(BorderNormal)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	buttonActiveStyle = buttonStyle.
				Foreground(Primary).
				Bold(true)

	buttonDisabledStyle = buttonStyle.
				Foreground(Muted).
				Faint(true)

	buttonFocusedStyle = buttonStyle.
				Foreground(lipgloss.Color("255")).
				Background(Primary).
				Bold(true)

	buttonOpenStyle = buttonStyle.
			Background(lipgloss.Color("238"))
)

// Dropdown menu styles
var (
	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderNormal)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	menuItemActiveStyle = menuItemStyle.
				Foreground(Primary).
				Bold(true)

	menuItemDisabledStyle = menuItemStyle.
				Foreground(Muted).
				Faint(true)

	menuItemFocusedStyle = menuItemStyle.
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255")).
				Bold(true)
)

// Modal styles
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	modalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	modalMutedStyle = lipgloss.NewStyle().Foreground(Muted)
	modalErrorStyle = lipgloss.NewStyle().Foreground(Error)
)

// icons maps icon keys to terminal glyphs.
var icons = map[string]string{
	"rowDropdown":       "☰",
	"columnDropdown":    "▥",
	"cellDropdown":      "▦",
	"deleteTable":       "✕",
	"addRowBefore":      "⤒",
	"addRowAfter":       "⤓",
	"deleteRow":         "⊟",
	"addColumnBefore":   "⇤",
	"addColumnAfter":    "⇥",
	"deleteColumn":      "⊟",
	"toggleHeaderRow":   "≡",
	"toggleHeaderCol":   "⦀",
	"toggleHeaderCell":  "◫",
	"mergeCells":        "⊞",
	"splitCell":         "⊡",
	"edit":              "✎",
	"image":             "▣",
	"upload":            "⇪",
	"copy":              "⧉",
	"link":              "⛓",
	"dropdownIndicator": "▾",
}

// Glyph returns the glyph for an icon key, or the key itself when unknown.
func Glyph(icon string) string {
	if g, ok := icons[icon]; ok {
		return g
	}
	return icon
}

// label is the bar text of an item.
func label(m MenuItem) string {
	var s string
	switch {
	case m.Icon == "":
		s = m.Title
	case m.VisibleTitle:
		s = Glyph(m.Icon) + " " + m.Title
	default:
		s = Glyph(m.Icon)
	}
	if m.Kind == KindDropdown {
		s += " " + Glyph("dropdownIndicator")
	}
	return s
}
