// Package overlay composites floating pieces (toolbars, menus, forms) on top
// of a rendered page.
//
// A Surface plays the part of a document body: owners Mount a Layer on it,
// the layer renders zero or more positioned Pieces each frame, and Remove
// detaches it again.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/folio/pkg/mouse"
	"github.com/marcus/folio/pkg/toolbar/position"
)

// Hit is a clickable area inside a piece, in page coordinates.
type Hit struct {
	ID   string
	Rect position.Rect
	Data any
}

// Piece is one positioned block of rendered text.
type Piece struct {
	ID      string
	Content string
	At      position.Position
	// Hidden pieces keep their content for measurement but are not drawn.
	Hidden bool
	Hits   []Hit
}

// Size measures the rendered content.
func (p Piece) Size() position.Size {
	return Measure(p.Content)
}

// Bounds returns the page rectangle the piece covers.
func (p Piece) Bounds() position.Rect {
	return p.At.Rect(p.Size())
}

// Drawn reports whether the piece is composited.
func (p Piece) Drawn() bool {
	return !p.Hidden && p.At.Visible() && p.Content != ""
}

// Measure returns the cell size of rendered text.
func Measure(s string) position.Size {
	if s == "" {
		return position.Size{}
	}
	lines := strings.Split(s, "\n")
	w := 0
	for _, l := range lines {
		w = max(w, ansi.StringWidth(l))
	}
	return position.Size{W: w, H: len(lines)}
}

// Layer is a mount point owned by exactly one caller.
type Layer struct {
	id      string
	surface *Surface
	render  func() []Piece
	mounted bool
}

// ID returns the mount identifier.
func (l *Layer) ID() string {
	return l.id
}

// Mounted reports whether the layer is still attached.
func (l *Layer) Mounted() bool {
	return l.mounted
}

// Pieces renders the layer's current pieces.
func (l *Layer) Pieces() []Piece {
	if !l.mounted || l.render == nil {
		return nil
	}
	return l.render()
}

// Contains reports whether p falls inside any drawn piece.
func (l *Layer) Contains(p position.Point) bool {
	for _, piece := range l.Pieces() {
		if piece.Drawn() && piece.Bounds().Contains(p) {
			return true
		}
	}
	return false
}

// Remove detaches the layer. It reports whether this call removed it.
func (l *Layer) Remove() bool {
	if !l.mounted {
		return false
	}
	l.mounted = false
	l.surface.detach(l)
	return true
}

// Surface is the shared page all layers are composited onto.
type Surface struct {
	layers   []*Layer
	removals int
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Mount attaches a new layer rendered by render.
func (s *Surface) Mount(id string, render func() []Piece) *Layer {
	l := &Layer{id: id, surface: s, render: render, mounted: true}
	s.layers = append(s.layers, l)
	return l
}

func (s *Surface) detach(l *Layer) {
	for i, cur := range s.layers {
		if cur == l {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			s.removals++
			return
		}
	}
}

// Len returns the number of mounted layers.
func (s *Surface) Len() int {
	return len(s.layers)
}

// Removals counts layers detached over the surface's lifetime.
func (s *Surface) Removals() int {
	return s.removals
}

// Layers returns the mounted layers in stacking order.
func (s *Surface) Layers() []*Layer {
	return s.layers
}

// Composite draws every visible piece of every layer onto page.
func (s *Surface) Composite(page string) string {
	lines := strings.Split(page, "\n")
	for _, l := range s.layers {
		for _, p := range l.Pieces() {
			if !p.Drawn() {
				continue
			}
			lines = Place(lines, p.Content, p.At.Left, p.At.Top)
		}
	}
	return strings.Join(lines, "\n")
}

// FillHitMap registers every drawn piece and its hits on hm in stacking
// order. A piece registers its whole bounds first so clicks on its chrome do
// not fall through to whatever is underneath.
func (s *Surface) FillHitMap(hm *mouse.HitMap) {
	for _, l := range s.layers {
		for _, p := range l.Pieces() {
			if !p.Drawn() {
				continue
			}
			b := p.Bounds()
			hm.AddRect(p.ID, b.X, b.Y, b.W, b.H, nil)
			for _, h := range p.Hits {
				hm.AddRect(h.ID, h.Rect.X, h.Rect.Y, h.Rect.W, h.Rect.H, h.Data)
			}
		}
	}
}

// Place overwrites lines with content starting at column x, row y, growing the
// page as needed.
func Place(lines []string, content string, x, y int) []string {
	for i, pl := range strings.Split(content, "\n") {
		row := y + i
		if row < 0 {
			continue
		}
		for len(lines) <= row {
			lines = append(lines, "")
		}
		col := x
		if col < 0 {
			pl = ansi.TruncateLeft(pl, -col, "")
			col = 0
		}
		lines[row] = splice(lines[row], pl, col)
	}
	return lines
}

func splice(base, insert string, col int) string {
	w := ansi.StringWidth(insert)
	bw := ansi.StringWidth(base)
	if bw < col {
		base += strings.Repeat(" ", col-bw)
	}
	left := ansi.Truncate(base, col, "")
	right := ""
	if bw > col+w {
		right = ansi.TruncateLeft(base, col+w, "")
	}
	return left + insert + right
}
