// Package floating drives one contextual toolbar from an editor plugin view:
// it creates, re-anchors and destroys the toolbar as the selection moves.
package floating

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/toolbar"
)

// LocateFunc returns the target the toolbar anchors to, or false when the
// selection is not one this toolbar serves.
type LocateFunc func(view *editor.View) (toolbar.Target, bool)

// Config describes one feature toolbar.
type Config struct {
	Name       string
	Locate     LocateFunc
	Derive     toolbar.DeriveFunc
	ShouldShow toolbar.ShouldShowFunc
	Logger     *slog.Logger
}

// Controller is the plugin view owning at most one toolbar.
type Controller struct {
	cfg Config
	tb  *toolbar.Instance
}

// New returns a controller for cfg.
func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{cfg: cfg}
}

// Toolbar returns the live toolbar, if any.
func (c *Controller) Toolbar() *toolbar.Instance {
	if c.tb == nil || c.tb.Destroyed() {
		return nil
	}
	return c.tb
}

// Update runs after every transaction. A transaction that leaves the
// selection unchanged does nothing.
func (c *Controller) Update(view *editor.View, prev editor.State) {
	if prev.Selection.Eq(view.State().Selection) {
		return
	}
	c.Sync(view)
}

// Sync evaluates the current selection without comparing it to a previous
// state. Plugin views call it once when the editor is built so a document
// opened with the selection already on a target shows its toolbar.
func (c *Controller) Sync(view *editor.View) *Controller {
	methods, ok := toolbar.FromState(view.State())
	if !ok {
		return c
	}

	target, ok := c.locate(view)
	if !ok {
		c.destroy()
		return c
	}
	if tb := c.Toolbar(); tb != nil && sameTarget(tb.Target(), target) {
		tb.Update(view)
		tb.Show()
		return c
	}

	c.destroy()
	tb, err := c.create(methods, view, target)
	if err != nil {
		c.cfg.Logger.Error("toolbar: create failed", "feature", c.cfg.Name, "err", err)
		return c
	}
	c.tb = tb
	return c
}

// sameTarget compares targets by value. Targets of a non-comparable dynamic
// type never match, so the toolbar is recreated.
func sameTarget(a, b toolbar.Target) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Destroy removes the toolbar with the editor.
func (c *Controller) Destroy() {
	c.destroy()
}

func (c *Controller) destroy() {
	if c.tb != nil {
		c.tb.Destroy()
		c.tb = nil
	}
}

func (c *Controller) locate(view *editor.View) (target toolbar.Target, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.cfg.Logger.Error("toolbar: locate panicked", "feature", c.cfg.Name, "panic", r)
			target, ok = nil, false
		}
	}()
	return c.cfg.Locate(view)
}

func (c *Controller) create(methods *toolbar.Methods, view *editor.View, target toolbar.Target) (tb *toolbar.Instance, err error) {
	defer func() {
		if r := recover(); r != nil {
			tb, err = nil, fmt.Errorf("create panicked: %v", r)
		}
	}()
	return methods.CreateToolbar(view, target, c.cfg.Derive, c.cfg.ShouldShow)
}
