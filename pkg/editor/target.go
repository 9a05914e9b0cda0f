package editor

import "github.com/marcus/folio/pkg/toolbar/position"

// BlockTarget anchors an overlay to a block by ID, so it follows the block
// across edits that move it.
type BlockTarget struct {
	ID uint64
}

// TargetFor returns the target for block i of the view's document.
func TargetFor(view *View, i int) (BlockTarget, bool) {
	b := view.State().Doc.Block(i)
	if b == nil {
		return BlockTarget{}, false
	}
	return BlockTarget{ID: b.ID}, true
}

// Bounds returns the block's rectangle in viewport coordinates. It reports
// false when the block no longer exists.
func (t BlockTarget) Bounds(view *View) (position.Rect, bool) {
	if view == nil {
		return position.Rect{}, false
	}
	i := view.State().Doc.IndexOf(t.ID)
	if i < 0 {
		return position.Rect{}, false
	}
	return view.BlockRect(i)
}
