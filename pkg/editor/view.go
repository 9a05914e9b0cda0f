package editor

import (
	"github.com/marcus/folio/pkg/toolbar/position"
)

// View owns the live state of one editor surface: it applies transactions,
// notifies plugin views, tracks focus and knows where things are drawn.
type View struct {
	state     State
	views     []PluginView
	focused   bool
	destroyed bool

	// Editor area on screen; size is the viewport.
	origin   position.Point
	viewport position.Size
	scroll   position.Point

	width     int
	layout    Layout
	layoutDoc *Document
}

// NewView creates a view and instantiates plugin views.
func NewView(state State, width int) *View {
	v := &View{state: state, width: width, focused: true}
	for _, p := range state.Plugins() {
		if p.View != nil {
			if pv := p.View(v); pv != nil {
				v.views = append(v.views, pv)
			}
		}
	}
	return v
}

// State returns the current state.
func (v *View) State() State {
	return v.state
}

// Dispatch applies tr and notifies plugin views. It is a no-op once the view
// is destroyed.
func (v *View) Dispatch(tr *Transaction) {
	if v.destroyed || tr == nil {
		return
	}
	prev := v.state
	v.state = prev.Apply(tr)
	for _, pv := range v.views {
		pv.Update(v, prev)
	}
}

// Run invokes cmd against the current state with the view's dispatch.
func (v *View) Run(cmd Command) bool {
	if cmd == nil {
		return false
	}
	return cmd(v.state, v.Dispatch, v)
}

// Focus gives the editor keyboard focus.
func (v *View) Focus() {
	v.focused = true
}

// Blur removes keyboard focus.
func (v *View) Blur() {
	v.focused = false
}

// HasFocus reports whether the editor has focus.
func (v *View) HasFocus() bool {
	return v.focused
}

// Destroy tears down plugin views once.
func (v *View) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	for _, pv := range v.views {
		pv.Destroy()
	}
	v.views = nil
}

// Destroyed reports whether Destroy ran.
func (v *View) Destroyed() bool {
	return v.destroyed
}

// SetViewport records where the editor area sits on screen and its size.
func (v *View) SetViewport(origin position.Point, size position.Size) {
	v.origin = origin
	v.viewport = size
	if size.W > 0 {
		v.width = size.W
	}
}

// SetScroll records the page offset of the viewport.
func (v *View) SetScroll(p position.Point) {
	v.scroll = p
}

// Viewport returns the size of the visible editor area.
func (v *View) Viewport() position.Size {
	return v.viewport
}

// Scroll returns the page offset of the viewport.
func (v *View) Scroll() position.Point {
	return v.scroll
}

// Origin returns the screen position of the editor area.
func (v *View) Origin() position.Point {
	return v.origin
}

// Width returns the layout width.
func (v *View) Width() int {
	return v.width
}

// Layout returns the geometry of the current document.
func (v *View) Layout() Layout {
	if v.layoutDoc != v.state.Doc || v.layout.Width != v.width {
		v.layout = computeLayout(v.state.Doc, v.width)
		v.layoutDoc = v.state.Doc
	}
	return v.layout
}

// Render draws the whole page (not just the viewport).
func (v *View) Render() string {
	return renderDocument(v.state, v.Layout(), v.focused)
}

// toViewport converts a page rectangle to viewport coordinates.
func (v *View) toViewport(r position.Rect) position.Rect {
	return r.Translate(position.Point{X: -v.scroll.X, Y: -v.scroll.Y})
}

// BlockRect returns block i's rectangle in viewport coordinates.
func (v *View) BlockRect(i int) (position.Rect, bool) {
	l := v.Layout()
	if i < 0 || i >= len(l.Blocks) {
		return position.Rect{}, false
	}
	return v.toViewport(l.Blocks[i].Rect), true
}

// CellRect returns a table cell's rectangle in viewport coordinates.
func (v *View) CellRect(block, row, col int) (position.Rect, bool) {
	l := v.Layout()
	if block < 0 || block >= len(l.Blocks) {
		return position.Rect{}, false
	}
	cells := l.Blocks[block].Cells
	if row < 0 || row >= len(cells) || col < 0 || col >= len(cells[row]) {
		return position.Rect{}, false
	}
	return v.toViewport(cells[row][col]), true
}

// SelectionRect returns the rectangle of the selection head in viewport
// coordinates.
func (v *View) SelectionRect() (position.Rect, bool) {
	sel := v.state.Selection
	if sel.Kind == CellSelection {
		return v.CellRect(sel.Block, sel.Row, sel.Col)
	}
	return v.BlockRect(sel.Block)
}

// ContainsScreen reports whether a screen point falls inside the editor area.
func (v *View) ContainsScreen(p position.Point) bool {
	area := position.Rect{X: v.origin.X, Y: v.origin.Y, W: v.viewport.W, H: v.viewport.H}
	return area.Contains(p)
}

// ScreenToPage converts a screen point to page coordinates.
func (v *View) ScreenToPage(p position.Point) position.Point {
	return position.Point{X: p.X - v.origin.X + v.scroll.X, Y: p.Y - v.origin.Y + v.scroll.Y}
}

// SelectionAt resolves a page point to the selection a click there makes.
func (v *View) SelectionAt(p position.Point) (Selection, bool) {
	return v.Layout().SelectionAt(v.state.Doc, p)
}
