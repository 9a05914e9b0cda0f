package toolbar

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings for keyboard use of toolbars.
type KeyMap struct {
	Focus    key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	Close    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Focus: key.NewBinding(
			key.WithKeys("f2", "alt+t"),
			key.WithHelp("f2", "toolbar"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→", "next"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "open/down"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// WithFocusKeys replaces the focus binding's keys. An empty list keeps the
// default.
func (k KeyMap) WithFocusKeys(keys ...string) KeyMap {
	if len(keys) == 0 {
		return k
	}
	k.Focus = key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], "toolbar"))
	return k
}

// ShortHelp lists the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Left, k.Right, k.Down, k.Activate, k.Close}
}
