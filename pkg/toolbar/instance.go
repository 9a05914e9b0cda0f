package toolbar

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/overlay"
	"github.com/marcus/folio/pkg/toolbar/position"
	"github.com/marcus/folio/pkg/toolbar/reactive"
)

var (
	// ErrDestroyed is returned when using a destroyed toolbar.
	ErrDestroyed = errors.New("toolbar destroyed")
	// ErrNoTarget is returned when a toolbar is created without a view or
	// target.
	ErrNoTarget = errors.New("toolbar needs a view and a target")
)

// Target is anything a toolbar can be anchored to. Implementations should be
// comparable; controllers reuse a toolbar when the located target is equal.
type Target interface {
	// Bounds returns the target's rectangle in viewport coordinates, or false
	// when it cannot be resolved.
	Bounds(view *editor.View) (position.Rect, bool)
}

// DeriveFunc computes the menu items for a view and target.
type DeriveFunc func(view *editor.View, target Target) ([]MenuItem, error)

// ShouldShowFunc decides whether a click inside the editor re-shows a hidden
// toolbar.
type ShouldShowFunc func(view *editor.View) bool

// Instance is one mounted toolbar.
type Instance struct {
	env        *Env
	id         string
	derive     DeriveFunc
	shouldShow ShouldShowFunc

	view    *reactive.Cell[*editor.View]
	target  *reactive.Cell[Target]
	items   *reactive.Cell[[]MenuItem]
	visible *reactive.Cell[bool]

	tgt         Target
	layer       *overlay.Layer
	comp        *Component
	removeClick func()
	destroyed   bool
}

// New mounts a toolbar anchored to target. A nil shouldShow defaults to
// editor.IsImageSelected. If the first derivation fails the toolbar is
// unmounted again and the error returned.
func New(env *Env, view *editor.View, target Target, derive DeriveFunc, shouldShow ShouldShowFunc) (*Instance, error) {
	if view == nil || target == nil {
		return nil, ErrNoTarget
	}
	if derive == nil {
		return nil, errors.New("toolbar needs a derive func")
	}
	if shouldShow == nil {
		shouldShow = editor.IsImageSelected
	}
	inst := &Instance{
		env:        env,
		id:         "toolbar-" + uuid.NewString(),
		derive:     derive,
		shouldShow: shouldShow,
		view:       reactive.NewCell[*editor.View]("view", nil),
		target:     reactive.NewCell[Target]("target", nil),
		items:      reactive.NewCell[[]MenuItem]("menuItems", nil),
		visible:    reactive.NewComparableCell("isVisible", true),
		tgt:        target,
	}
	inst.comp = newComponent(inst)
	inst.layer = env.Surface.Mount(inst.id, inst.comp.Pieces)
	inst.removeClick = env.Clicks.Add(inst.handleClick)
	inst.comp.mount()
	env.track(inst)

	if err := inst.update(view); err != nil {
		inst.Destroy()
		return nil, err
	}
	env.Logger.Debug("toolbar: created", "toolbar", inst.id)
	return inst, nil
}

// ID returns the instance identifier.
func (i *Instance) ID() string {
	return i.id
}

// View returns the current view.
func (i *Instance) View() *editor.View {
	return i.view.Get()
}

// Target returns the anchor.
func (i *Instance) Target() Target {
	return i.tgt
}

// Items returns the current menu items.
func (i *Instance) Items() []MenuItem {
	return i.items.Get()
}

// Visible reports the visibility flag.
func (i *Instance) Visible() bool {
	return i.visible.Get()
}

// Destroyed reports whether Destroy ran.
func (i *Instance) Destroyed() bool {
	return i.destroyed
}

// Layer returns the mounted layer.
func (i *Instance) Layer() *overlay.Layer {
	return i.layer
}

// Component returns the rendering component.
func (i *Instance) Component() *Component {
	return i.comp
}

// Update stores view, refreshes the target and re-derives the menu items. A
// derivation error clears the items and hides the toolbar.
func (i *Instance) Update(view *editor.View) {
	if i.destroyed || view == nil {
		return
	}
	if err := i.update(view); err != nil {
		i.env.Logger.Error("toolbar: derive failed", "toolbar", i.id, "err", err)
		i.items.Set(nil)
		i.visible.Set(false)
	}
}

func (i *Instance) update(view *editor.View) error {
	i.view.Set(view)
	i.target.Set(i.tgt)
	items, err := i.safeDerive(view)
	if err != nil {
		return err
	}
	i.items.Set(items)
	return nil
}

func (i *Instance) safeDerive(view *editor.View) (items []MenuItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("derive panicked: %v", r)
		}
	}()
	items, err = i.derive(view, i.tgt)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// SetTarget re-anchors the toolbar without re-mounting it.
func (i *Instance) SetTarget(t Target) error {
	if i.destroyed {
		return ErrDestroyed
	}
	if t == nil {
		return ErrNoTarget
	}
	i.tgt = t
	i.Update(i.view.Get())
	return nil
}

// Show makes the toolbar visible.
func (i *Instance) Show() {
	if i.destroyed {
		return
	}
	i.visible.Set(true)
	i.Update(i.view.Get())
}

// Hide hides the toolbar.
func (i *Instance) Hide() {
	if i.destroyed {
		return
	}
	i.visible.Set(false)
	i.Update(i.view.Get())
}

// Destroy unmounts the toolbar. Later calls do nothing.
func (i *Instance) Destroy() {
	if i.destroyed {
		return
	}
	i.destroyed = true
	i.env.untrack(i)
	i.comp.unmount()
	i.layer.Remove()
	if i.removeClick != nil {
		i.removeClick()
		i.removeClick = nil
	}
	i.env.Logger.Debug("toolbar: destroyed", "toolbar", i.id)
}

func (i *Instance) handleClick(ev ClickEvent) {
	if i.destroyed {
		return
	}
	view := i.view.Get()
	inToolbar := i.comp.Contains(ev.Page)
	inEditor := view != nil && view.ContainsScreen(ev.Screen)
	switch {
	case !inToolbar && !inEditor:
		i.Hide()
	case view != nil && i.shouldShow(view):
		i.Show()
	}
}
