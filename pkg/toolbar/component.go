package toolbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/overlay"
	"github.com/marcus/folio/pkg/toolbar/position"
)

// Action is the payload of a toolbar hit region. The host calls it when the
// region is clicked.
type Action func() tea.Cmd

// Component renders an instance and keeps it positioned.
//
// Position is recomputed when the view, target or visibility changes (now and
// once more after the settle delay), when a render measures a new size, and on
// viewport scroll or resize (throttled). The last two only run while visible.
type Component struct {
	inst  *Instance
	env   *Env
	group *DropdownGroup
	modal *Modal

	pos  position.Position
	size position.Size
	// offsets of the top-level buttons, relative to the bar's top-left.
	offsets []position.Rect

	focus     int
	menuFocus int

	mounted        bool
	unsubs         []func()
	visibleOff     []func()
	dropdownOff    []func()
	cancelSettle   func()
	cancelThrottle func()
	recomputes     int
}

func newComponent(inst *Instance) *Component {
	c := &Component{
		inst:  inst,
		env:   inst.env,
		pos:   position.Offscreen,
		focus: -1,
	}
	c.group = NewDropdownGroup(c.dropdownChanged)
	c.modal = NewModal(inst.env, inst.id+"/modal")
	return c
}

func (c *Component) mount() {
	c.mounted = true
	c.unsubs = append(c.unsubs,
		c.inst.view.Subscribe(func(*editor.View) { c.depsChanged() }),
		c.inst.target.Subscribe(func(Target) { c.depsChanged() }),
		c.inst.visible.Subscribe(func(bool) { c.depsChanged() }),
		c.inst.items.Subscribe(c.itemsChanged),
	)
}

func (c *Component) unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false
	for _, u := range c.unsubs {
		u()
	}
	c.unsubs = nil
	c.stopVisible()
	c.pos = position.Offscreen
}

// Position returns the bar's current placement.
func (c *Component) Position() position.Position {
	return c.pos
}

// Size returns the bar's last measured size.
func (c *Component) Size() position.Size {
	return c.size
}

// Recomputes counts position calculations.
func (c *Component) Recomputes() int {
	return c.recomputes
}

// Dropdowns returns the dropdown group.
func (c *Component) Dropdowns() *DropdownGroup {
	return c.group
}

// Modal returns the component's form overlay.
func (c *Component) Modal() *Modal {
	return c.modal
}

// Focused returns the keyboard-focused item, or -1.
func (c *Component) Focused() int {
	return c.focus
}

func (c *Component) depsChanged() {
	if !c.mounted {
		return
	}
	if !c.inst.visible.Get() {
		c.stopVisible()
		c.pos = position.Offscreen
		return
	}
	c.startVisible()
	c.calculate()
	if c.cancelSettle != nil {
		c.cancelSettle()
	}
	c.cancelSettle = c.env.Scheduler.After(c.env.SettleDelay, func() {
		c.cancelSettle = nil
		c.calculate()
	})
}

func (c *Component) itemsChanged(items []MenuItem) {
	if open := c.group.Open(); open >= 0 && (open >= len(items) || items[open].Kind != KindDropdown) {
		c.group.Close()
	}
	if c.focus >= len(items) {
		c.focus = len(items) - 1
	}
}

func (c *Component) startVisible() {
	if c.visibleOff != nil {
		return
	}
	c.visibleOff = []func(){
		c.env.Viewport.Add(c.handleViewport),
		c.env.Keys.Add(c.handleKey),
	}
}

func (c *Component) stopVisible() {
	for _, off := range c.visibleOff {
		off()
	}
	c.visibleOff = nil
	if c.cancelSettle != nil {
		c.cancelSettle()
		c.cancelSettle = nil
	}
	if c.cancelThrottle != nil {
		c.cancelThrottle()
		c.cancelThrottle = nil
	}
	c.group.Close()
	c.modal.Close()
	c.focus = -1
}

func (c *Component) calculate() {
	c.recomputes++
	view := c.inst.view.Get()
	target := c.inst.target.Get()
	if !c.mounted || view == nil || target == nil || !c.inst.visible.Get() {
		c.pos = position.Offscreen
		return
	}
	rect, ok := target.Bounds(view)
	if !ok {
		c.pos = position.Offscreen
		return
	}
	c.pos = position.Compute(rect, c.size, view.Viewport(), view.Scroll(), c.env.Options)
	c.modal.reposition()
}

func (c *Component) handleViewport(ViewportEvent) {
	if c.cancelThrottle != nil {
		return
	}
	c.cancelThrottle = c.env.Scheduler.After(c.env.ThrottleInterval, func() {
		c.cancelThrottle = nil
		c.calculate()
	})
}

// Pieces renders the bar, the open dropdown menu and the modal. The bar is
// always rendered; while hidden it is marked Hidden and placed Offscreen.
func (c *Component) Pieces() []overlay.Piece {
	items := c.inst.items.Get()
	view := c.inst.view.Get()
	visible := c.inst.visible.Get()

	content, offsets := c.renderBar(items, view, visible)
	c.offsets = offsets
	if size := overlay.Measure(content); size != c.size {
		c.size = size
		if visible && c.mounted {
			c.calculate()
		}
	}

	bar := overlay.Piece{ID: c.inst.id, Content: content, At: c.pos, Hidden: !visible}
	if !visible {
		bar.At = position.Offscreen
	} else if c.pos.Visible() {
		for i := range items {
			r, _ := c.triggerRect(i)
			bar.Hits = append(bar.Hits, overlay.Hit{
				ID:   fmt.Sprintf("%s/item/%d", c.inst.id, i),
				Rect: r,
				Data: Action(func() tea.Cmd { return c.Activate(i) }),
			})
		}
	}
	pieces := []overlay.Piece{bar}

	if visible {
		if menu, ok := c.menuPiece(items, view); ok {
			pieces = append(pieces, menu)
		}
		if p, ok := c.modal.Piece(); ok {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Contains reports whether p falls on the bar, its open menu or its modal.
func (c *Component) Contains(p position.Point) bool {
	if !c.mounted {
		return false
	}
	for _, piece := range c.Pieces() {
		if piece.Drawn() && piece.Bounds().Contains(p) {
			return true
		}
	}
	return false
}

func (c *Component) renderBar(items []MenuItem, view *editor.View, visible bool) (string, []position.Rect) {
	labels := make([]string, len(items))
	offsets := make([]position.Rect, len(items))
	sep := separatorStyle.Render("│")
	sepW := lipgloss.Width(sep)
	// Left border plus padding.
	x := 2
	for i, it := range items {
		s := c.buttonStyle(i, it, view).Render(label(it))
		w := lipgloss.Width(s)
		labels[i] = s
		offsets[i] = position.Rect{X: x, Y: 1, W: w, H: 1}
		x += w + sepW
	}
	style := barStyle
	if visible && len(items) > 0 {
		style = barVisibleStyle
	}
	return style.Render(strings.Join(labels, sep)), offsets
}

func (c *Component) buttonStyle(i int, it MenuItem, view *editor.View) lipgloss.Style {
	switch {
	case c.focus == i:
		return buttonFocusedStyle
	case c.group.IsOpen(i):
		return buttonOpenStyle
	case !it.EnabledIn(view):
		return buttonDisabledStyle
	case it.ActiveIn(view):
		return buttonActiveStyle
	}
	return buttonStyle
}

// triggerRect returns item i's page rectangle.
func (c *Component) triggerRect(i int) (position.Rect, bool) {
	if !c.pos.Visible() || i < 0 || i >= len(c.offsets) {
		return position.Rect{}, false
	}
	return c.offsets[i].Translate(position.Point{X: c.pos.Left, Y: c.pos.Top}), true
}

func (c *Component) renderMenu(items []MenuItem, view *editor.View, open int) (string, position.Position, bool) {
	if open < 0 || open >= len(items) || !c.pos.Visible() {
		return "", position.Offscreen, false
	}
	trig, ok := c.triggerRect(open)
	if !ok {
		return "", position.Offscreen, false
	}
	children := items[open].Items
	labels := make([]string, len(children))
	width := 0
	for j, child := range children {
		s := child.Title
		if child.Icon != "" {
			s = Glyph(child.Icon) + " " + s
		}
		labels[j] = s
		width = max(width, lipgloss.Width(s))
	}
	lines := make([]string, len(children))
	for j, child := range children {
		lines[j] = c.menuItemStyle(j, child, view).Width(width + 2).Render(labels[j])
	}
	at := position.Position{Top: c.pos.Top + c.size.H, Left: trig.X - 1}
	return menuStyle.Render(strings.Join(lines, "\n")), at, true
}

func (c *Component) menuItemStyle(j int, it MenuItem, view *editor.View) lipgloss.Style {
	switch {
	case c.focus >= 0 && c.menuFocus == j:
		return menuItemFocusedStyle
	case !it.EnabledIn(view):
		return menuItemDisabledStyle
	case it.ActiveIn(view):
		return menuItemActiveStyle
	}
	return menuItemStyle
}

func (c *Component) menuPiece(items []MenuItem, view *editor.View) (overlay.Piece, bool) {
	open := c.group.Open()
	content, at, ok := c.renderMenu(items, view, open)
	if !ok {
		return overlay.Piece{}, false
	}
	p := overlay.Piece{ID: c.inst.id + "/menu", Content: content, At: at}
	w := overlay.Measure(content).W - 2
	for j := range items[open].Items {
		p.Hits = append(p.Hits, overlay.Hit{
			ID:   fmt.Sprintf("%s/menu/%d", c.inst.id, j),
			Rect: position.Rect{X: at.Left + 1, Y: at.Top + 1 + j, W: w, H: 1},
			Data: Action(func() tea.Cmd { return c.SelectChild(open, j) }),
		})
	}
	return p, true
}

// inDropdown reports whether p is on the open dropdown's trigger or menu.
func (c *Component) inDropdown(p position.Point) bool {
	open := c.group.Open()
	if r, ok := c.triggerRect(open); ok && r.Contains(p) {
		return true
	}
	content, at, ok := c.renderMenu(c.inst.items.Get(), c.inst.view.Get(), open)
	return ok && at.Rect(overlay.Measure(content)).Contains(p)
}

func (c *Component) dropdownChanged(open int) {
	for _, off := range c.dropdownOff {
		off()
	}
	c.dropdownOff = nil
	if open < 0 {
		return
	}
	c.menuFocus = 0
	c.dropdownOff = []func(){
		c.env.Clicks.Add(func(ev ClickEvent) {
			if !c.inDropdown(ev.Page) {
				c.group.Close()
			}
		}),
		c.env.Keys.Add(func(ev *Event) {
			if ev.Handled() {
				return
			}
			if k, ok := ev.Key(); ok && key.Matches(k, c.env.KeyMap.Close) {
				c.group.Close()
				ev.Consume()
			}
		}),
	}
}

// Activate triggers top-level item i as a click on it would.
func (c *Component) Activate(i int) tea.Cmd {
	items := c.inst.items.Get()
	if !c.mounted || i < 0 || i >= len(items) {
		return nil
	}
	view := c.inst.view.Get()
	it := items[i]
	switch it.Kind {
	case KindDropdown:
		c.group.Toggle(i)
		return nil
	case KindModal:
		if !it.EnabledIn(view) {
			return nil
		}
		c.group.Close()
		return c.modal.Open(it.Modal, view, func() (position.Rect, bool) { return c.triggerRect(i) })
	default:
		c.group.Close()
		if it.EnabledIn(view) {
			it.Run(view)
		}
		return nil
	}
}

// SelectChild closes dropdown i and runs its child j.
func (c *Component) SelectChild(i, j int) tea.Cmd {
	items := c.inst.items.Get()
	if !c.mounted || i < 0 || i >= len(items) || j < 0 || j >= len(items[i].Items) {
		return nil
	}
	child := items[i].Items[j]
	c.group.Close()
	child.Run(c.inst.view.Get())
	return nil
}

// RunLeaf activates a leaf returned by Flatten on the current items.
func (c *Component) RunLeaf(l Leaf) tea.Cmd {
	if l.Child < 0 {
		return c.Activate(l.Index)
	}
	return c.SelectChild(l.Index, l.Child)
}

func (c *Component) handleKey(ev *Event) {
	if ev.Handled() {
		return
	}
	msg, ok := ev.Key()
	if !ok {
		return
	}
	items := c.inst.items.Get()
	n := len(items)
	if n == 0 {
		c.focus = -1
		return
	}
	km := c.env.KeyMap
	if c.focus < 0 {
		if key.Matches(msg, km.Focus) {
			c.focus = 0
			ev.Consume()
		}
		return
	}

	open := c.group.Open()
	switch {
	case key.Matches(msg, km.Close):
		c.group.Close()
		c.focus = -1
		if v := c.inst.view.Get(); v != nil {
			v.Focus()
		}
		ev.Consume()
	case key.Matches(msg, km.Left):
		c.group.Close()
		c.focus = (c.focus + n - 1) % n
		ev.Consume()
	case key.Matches(msg, km.Right):
		c.group.Close()
		c.focus = (c.focus + 1) % n
		ev.Consume()
	case key.Matches(msg, km.Down):
		if open == c.focus {
			c.menuFocus = min(c.menuFocus+1, len(items[open].Items)-1)
		} else if items[c.focus].Kind == KindDropdown {
			c.group.Toggle(c.focus)
		}
		ev.Consume()
	case key.Matches(msg, km.Up):
		if open == c.focus {
			c.menuFocus = max(c.menuFocus-1, 0)
		}
		ev.Consume()
	case key.Matches(msg, km.Activate):
		idx := c.focus
		if open == idx {
			c.focus = -1
			ev.Consume(c.SelectChild(idx, c.menuFocus))
			return
		}
		if items[idx].Kind != KindDropdown {
			c.focus = -1
		}
		ev.Consume(c.Activate(idx))
	default:
		c.focus = -1
	}
}
