// Package position computes where floating overlays (toolbars, dropdown menus,
// modal forms) are placed relative to the thing they are anchored to.
//
// All inputs are viewport-relative; results are page-relative (viewport
// coordinates plus the scroll offset), so an overlay composited onto the full
// page stays attached to its target while the viewport scrolls.
package position

// OffscreenCoord is the coordinate used for both axes of Offscreen.
const OffscreenCoord = -9999

// Offscreen marks an overlay that is not measured yet or intentionally hidden.
// It is never a valid visible placement.
var Offscreen = Position{Top: OffscreenCoord, Left: OffscreenCoord}

// Point is a cell coordinate.
type Point struct {
	X, Y int
}

// Size is a width/height pair.
type Size struct {
	W, H int
}

// Empty reports whether either dimension is unknown.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Rect is an axis-aligned rectangle. W and H are exclusive extents.
type Rect struct {
	X, Y, W, H int
}

// Bottom returns the row just below the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Right returns the column just right of the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Translate returns the rectangle shifted by p.
func (r Rect) Translate(p Point) Rect {
	return Rect{X: r.X + p.X, Y: r.Y + p.Y, W: r.W, H: r.H}
}

// Position is a placement in page coordinates.
type Position struct {
	Top, Left int
}

// Visible reports whether p is a real placement rather than Offscreen.
func (p Position) Visible() bool {
	return p != Offscreen
}

// Rect returns the rectangle an overlay of size s occupies at p.
func (p Position) Rect(s Size) Rect {
	return Rect{X: p.Left, Y: p.Top, W: s.W, H: s.H}
}

// Options tunes placement.
type Options struct {
	// Gap separates the overlay from its anchor.
	Gap int
	// Padding is the minimum distance kept from the viewport's edges.
	Padding int
	// Fallback replaces an overlay size that has not been measured yet.
	Fallback Size
}

// DefaultOptions returns the pixel-oriented defaults: 8 gap, 16 padding and a
// 200x40 first-pass overlay.
func DefaultOptions() Options {
	return Options{
		Gap:      8,
		Padding:  16,
		Fallback: Size{W: 200, H: 40},
	}
}

func (o Options) measure(s Size) Size {
	if s.W <= 0 {
		s.W = o.Fallback.W
	}
	if s.H <= 0 {
		s.H = o.Fallback.H
	}
	return s
}

// clampLeft keeps left inside [padding, viewportW-overlayW-padding]. When the
// overlay is wider than the viewport the lower bound wins.
func clampLeft(left, overlayW, viewportW, padding int) int {
	maxLeft := viewportW - overlayW - padding
	if left > maxLeft {
		left = maxLeft
	}
	if left < padding {
		left = padding
	}
	return left
}

// Compute places a toolbar centered above target, or below it when there is
// not enough room above, clamped horizontally to the viewport.
func Compute(target Rect, overlay Size, viewport Size, scroll Point, opts Options) Position {
	overlay = opts.measure(overlay)

	var top int
	if target.Y >= overlay.H+opts.Gap {
		top = target.Y - overlay.H - opts.Gap
	} else {
		top = target.Bottom() + opts.Gap
	}

	left := target.X + target.W/2 - overlay.W/2
	left = clampLeft(left, overlay.W, viewport.W, opts.Padding)

	return Position{Top: top + scroll.Y, Left: left + scroll.X}
}

// ComputeModal places a form overlay left-aligned below its trigger. It flips
// above the trigger when it would overflow the viewport's bottom edge and the
// space above can hold it.
func ComputeModal(trigger Rect, overlay Size, viewport Size, scroll Point, opts Options) Position {
	overlay = opts.measure(overlay)

	top := trigger.Bottom() + opts.Gap
	if top+overlay.H > viewport.H-opts.Padding && trigger.Y >= overlay.H+opts.Gap {
		top = trigger.Y - overlay.H - opts.Gap
	}

	left := clampLeft(trigger.X, overlay.W, viewport.W, opts.Padding)

	return Position{Top: top + scroll.Y, Left: left + scroll.X}
}
