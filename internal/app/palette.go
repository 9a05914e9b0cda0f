package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/folio/pkg/toolbar"
)

const paletteMaxVisible = 8

// paletteEntry is a search hit bound to the toolbar that runs it.
type paletteEntry struct {
	toolbar.PaletteEntry
	inst *toolbar.Instance
}

// palette searches the actions of every visible toolbar.
type palette struct {
	input        textinput.Model
	entries      []paletteEntry
	selected     int
	scrollOffset int
}

func newPalette() *palette {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "search actions"
	ti.CharLimit = 64
	ti.Focus()
	return &palette{input: ti}
}

// refresh re-runs the search against the live toolbars.
func (p *palette) refresh(toolbars []*toolbar.Instance) {
	query := strings.TrimSpace(p.input.Value())
	p.entries = p.entries[:0]
	for _, inst := range toolbars {
		if !inst.Visible() {
			continue
		}
		for _, e := range toolbar.NewPalette(inst.Items()).Search(query, inst.View()) {
			p.entries = append(p.entries, paletteEntry{PaletteEntry: e, inst: inst})
		}
	}
	p.selected = clamp(p.selected, 0, max(0, len(p.entries)-1))
}

func (p *palette) move(delta int) {
	if len(p.entries) == 0 {
		return
	}
	p.selected = (p.selected + delta + len(p.entries)) % len(p.entries)
}

func (p *palette) current() (paletteEntry, bool) {
	if p.selected < 0 || p.selected >= len(p.entries) {
		return paletteEntry{}, false
	}
	return p.entries[p.selected], true
}

func (p *palette) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *palette) render(width int) string {
	var sb strings.Builder
	sb.WriteString(p.input.View())
	sb.WriteString("\n")

	if len(p.entries) == 0 {
		sb.WriteString(mutedStyle.Render("(no actions for this selection)"))
		return paletteStyle.Width(width).Render(sb.String())
	}

	visible := min(paletteMaxVisible, len(p.entries))
	// Keep the selection on screen
	if p.selected < p.scrollOffset {
		p.scrollOffset = p.selected
	} else if p.selected >= p.scrollOffset+visible {
		p.scrollOffset = p.selected - visible + 1
	}
	p.scrollOffset = clamp(p.scrollOffset, 0, max(0, len(p.entries)-visible))

	if p.scrollOffset > 0 {
		sb.WriteString(mutedStyle.Render("↑ more above"))
		sb.WriteString("\n")
	}
	for i := 0; i < visible; i++ {
		idx := p.scrollOffset + i
		e := p.entries[idx]
		cursor := "  "
		if idx == p.selected {
			cursor = paletteCursorStyle.Render("> ")
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(cursor + renderLabel(e.PaletteEntry, idx == p.selected))
	}
	if p.scrollOffset+visible < len(p.entries) {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render("↓ more below"))
	}
	return paletteStyle.Width(width).Render(sb.String())
}

// renderLabel highlights the matched characters of an entry.
func renderLabel(e toolbar.PaletteEntry, selected bool) string {
	base := paletteItemStyle
	switch {
	case !e.Enabled:
		base = paletteDisabledStyle
	case selected:
		base = paletteSelectedStyle
	}
	if len(e.Matched) == 0 {
		return base.Render(e.Label)
	}
	matched := make(map[int]bool, len(e.Matched))
	for _, i := range e.Matched {
		matched[i] = true
	}
	var sb strings.Builder
	for i, r := range e.Label {
		if matched[i] && e.Enabled {
			sb.WriteString(paletteMatchStyle.Render(string(r)))
		} else {
			sb.WriteString(base.Render(string(r)))
		}
	}
	return sb.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
