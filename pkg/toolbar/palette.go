package toolbar

import (
	"github.com/marcus/folio/pkg/editor"
	"github.com/sahilm/fuzzy"
)

// PaletteEntry is one match of a palette search.
type PaletteEntry struct {
	Leaf    Leaf
	Label   string
	Enabled bool
	// Matched holds the byte indexes of Label that matched the query.
	Matched []int
}

// Palette searches the runnable leaves of a toolbar by name.
type Palette struct {
	leaves []Leaf
	labels []string
}

// NewPalette indexes items.
func NewPalette(items []MenuItem) *Palette {
	p := &Palette{leaves: Flatten(items)}
	p.labels = make([]string, len(p.leaves))
	for i, l := range p.leaves {
		p.labels[i] = l.Label()
	}
	return p
}

// Len returns the number of indexed leaves.
func (p *Palette) Len() int {
	return len(p.leaves)
}

// Search returns leaves matching query, best match first. An empty query
// returns every leaf in display order.
func (p *Palette) Search(query string, view *editor.View) []PaletteEntry {
	if query == "" {
		out := make([]PaletteEntry, len(p.leaves))
		for i, l := range p.leaves {
			out[i] = PaletteEntry{Leaf: l, Label: p.labels[i], Enabled: l.Item.EnabledIn(view)}
		}
		return out
	}
	matches := fuzzy.Find(query, p.labels)
	out := make([]PaletteEntry, 0, len(matches))
	for _, m := range matches {
		l := p.leaves[m.Index]
		out = append(out, PaletteEntry{
			Leaf:    l,
			Label:   m.Str,
			Enabled: l.Item.EnabledIn(view),
			Matched: m.MatchedIndexes,
		})
	}
	return out
}
