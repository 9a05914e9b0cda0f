// Package mouse maps terminal mouse events onto named hit regions.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// doubleClickWindow is the maximum gap between clicks on the same region that
// still counts as a double click.
const doubleClickWindow = 400 * time.Millisecond

// Rect is a hit rectangle. W and H are exclusive.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) is inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a named rectangle with optional payload.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds regions; later regions take priority over earlier ones.
type HitMap struct {
	regions []Region
}

// NewHitMap creates an empty hit map.
func NewHitMap() *HitMap {
	return &HitMap{}
}

// AddRect registers a region.
func (h *HitMap) AddRect(id string, x, y, w, height int, data any) {
	h.regions = append(h.regions, Region{ID: id, Rect: Rect{X: x, Y: y, W: w, H: height}, Data: data})
}

// Test returns the top-most region containing (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			return &h.regions[i]
		}
	}
	return nil
}

// Regions returns all registered regions.
func (h *HitMap) Regions() []Region {
	return h.regions
}

// Clear removes every region.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// ActionType classifies a mouse event.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionHover
	ActionScrollUp
	ActionScrollDown
)

// Action is the result of HandleMouse.
type Action struct {
	Type   ActionType
	Region *Region
	X, Y   int
}

// ClickResult is the result of HandleClick.
type ClickResult struct {
	Region        *Region
	IsDoubleClick bool
}

// Handler tracks click timing and hover state on top of a HitMap.
type Handler struct {
	HitMap *HitMap

	lastClickID   string
	lastClickTime time.Time
	hoverID       string
	now           func() time.Time
}

// NewHandler creates a handler with an empty hit map.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// HandleClick resolves a click, detecting double clicks on the same region.
func (h *Handler) HandleClick(x, y int) ClickResult {
	region := h.HitMap.Test(x, y)
	now := h.now()

	result := ClickResult{Region: region}
	if region != nil && region.ID == h.lastClickID && now.Sub(h.lastClickTime) <= doubleClickWindow {
		result.IsDoubleClick = true
		// A third click starts over
		h.lastClickID = ""
		return result
	}

	if region != nil {
		h.lastClickID = region.ID
	} else {
		h.lastClickID = ""
	}
	h.lastClickTime = now
	return result
}

// HoverID returns the region currently under the pointer.
func (h *Handler) HoverID() string {
	return h.hoverID
}

// HandleMouse converts a bubbletea mouse message into an Action.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	action := Action{X: msg.X, Y: msg.Y}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		action.Type = ActionScrollUp
	case msg.Button == tea.MouseButtonWheelDown:
		action.Type = ActionScrollDown
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		res := h.HandleClick(msg.X, msg.Y)
		action.Region = res.Region
		action.Type = ActionClick
		if res.IsDoubleClick {
			action.Type = ActionDoubleClick
		}
	case msg.Action == tea.MouseActionMotion:
		action.Region = h.HitMap.Test(msg.X, msg.Y)
		action.Type = ActionHover
		if action.Region != nil {
			h.hoverID = action.Region.ID
		} else {
			h.hoverID = ""
		}
	}
	return action
}

// Clear drops all regions, typically before a re-render.
func (h *Handler) Clear() {
	h.HitMap.Clear()
}
