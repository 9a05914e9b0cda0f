package app

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit         key.Binding
	Save         key.Binding
	Palette      key.Binding
	InsertTable  key.Binding
	InsertLink   key.Binding
	InsertImage  key.Binding
	ReplaceImage key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "actions"),
		),
		InsertTable: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "table"),
		),
		InsertLink: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "link"),
		),
		InsertImage: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "image"),
		),
		// ctrl+i arrives as tab in most terminals.
		ReplaceImage: key.NewBinding(
			key.WithKeys("alt+i"),
			key.WithHelp("alt+i", "replace image"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Palette, k.InsertTable, k.InsertLink, k.InsertImage, k.Quit}
}
