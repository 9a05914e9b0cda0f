package toolbar

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/folio/pkg/mouse"
	"github.com/marcus/folio/pkg/toolbar/position"
)

func twoDropdowns(a, b *counter) []MenuItem {
	return []MenuItem{
		Dropdown("Row operations", "rowDropdown",
			Button("Add row before", "addRowBefore", a.cmd),
			Button("Add row after", "addRowAfter", a.cmd),
		),
		Dropdown("Column operations", "columnDropdown",
			Button("Add column before", "addColumnBefore", b.cmd),
		),
	}
}

func TestOpeningSecondDropdownClosesFirst(t *testing.T) {
	env, _ := testEnv(t)
	inst := newTestToolbar(t, env, twoDropdowns(&counter{}, &counter{})...)
	comp := inst.Component()
	comp.Pieces()
	clicks := env.Clicks.Len()

	comp.Activate(0)
	if !comp.Dropdowns().IsOpen(0) {
		t.Fatal("first dropdown should be open")
	}
	if env.Clicks.Len() != clicks+1 {
		t.Errorf("open dropdown holds %d extra click listeners, want 1", env.Clicks.Len()-clicks)
	}

	comp.Activate(1)
	if comp.Dropdowns().IsOpen(0) {
		t.Error("first dropdown still open")
	}
	if !comp.Dropdowns().IsOpen(1) {
		t.Error("second dropdown should be open")
	}
	if env.Clicks.Len() != clicks+1 {
		t.Errorf("click listeners = %d, want %d", env.Clicks.Len(), clicks+1)
	}

	comp.Activate(1)
	if comp.Dropdowns().Open() != -1 || env.Clicks.Len() != clicks {
		t.Errorf("toggle should close: open=%d clicks=%d", comp.Dropdowns().Open(), env.Clicks.Len())
	}
}

func TestDropdownOutsideClickCloses(t *testing.T) {
	env, _ := testEnv(t)
	inst := newTestToolbar(t, env, twoDropdowns(&counter{}, &counter{})...)
	comp := inst.Component()
	comp.Pieces()
	comp.Activate(0)

	trig, _ := comp.triggerRect(0)
	env.Clicks.Emit(ClickEvent{Screen: position.Point{X: 1, Y: 2}, Page: position.Point{X: trig.X, Y: trig.Y}})
	if !comp.Dropdowns().IsOpen(0) {
		t.Fatal("click on the trigger is not outside")
	}

	env.Clicks.Emit(ClickEvent{Screen: position.Point{X: 1, Y: 2}, Page: position.Point{X: 1, Y: 1}})
	if comp.Dropdowns().IsOpen(0) {
		t.Error("outside click should close the dropdown")
	}
	if !inst.Visible() {
		t.Error("click inside the editor should not hide the toolbar")
	}
}

func TestSelectChildClosesRegardlessOfResult(t *testing.T) {
	env, _ := testEnv(t)
	rows := &counter{fail: true}
	inst := newTestToolbar(t, env, twoDropdowns(rows, &counter{})...)
	comp := inst.Component()
	comp.Pieces()

	comp.Activate(0)
	comp.SelectChild(0, 1)

	if rows.run != 1 {
		t.Errorf("child command ran %d times, want 1", rows.run)
	}
	if comp.Dropdowns().Open() != -1 {
		t.Error("dropdown should close after a failed child command")
	}
}

func TestButtonRunsOnlyWhenEnabled(t *testing.T) {
	env, _ := testEnv(t)
	del := &counter{}
	inst := newTestToolbar(t, env, Button("Delete", "deleteTable", del.cmd))
	comp := inst.Component()

	inst.View().Blur()
	comp.Activate(0)
	if del.run != 1 {
		t.Fatalf("runs = %d, want 1", del.run)
	}
	if !inst.View().HasFocus() {
		t.Error("successful run should focus the view")
	}

	del.fail = true
	comp.Activate(0)
	if del.run != 1 {
		t.Error("disabled button should not run")
	}
}

func TestHitRegionsActivateItems(t *testing.T) {
	env, _ := testEnv(t)
	inst := newTestToolbar(t, env, twoDropdowns(&counter{}, &counter{})...)
	comp := inst.Component()
	comp.Pieces()

	hm := mouse.NewHitMap()
	env.Surface.FillHitMap(hm)
	trig, _ := comp.triggerRect(1)
	region := hm.Test(trig.X, trig.Y)
	if region == nil {
		t.Fatal("no region over the second trigger")
	}
	act, ok := region.Data.(Action)
	if !ok {
		t.Fatalf("region data = %T", region.Data)
	}
	act()
	if !comp.Dropdowns().IsOpen(1) {
		t.Fatal("hit action should open the dropdown")
	}

	hm.Clear()
	env.Surface.FillHitMap(hm)
	var child *mouse.Region
	for _, r := range hm.Regions() {
		if r.ID == inst.ID()+"/menu/0" {
			child = &r
		}
	}
	if child == nil {
		t.Fatal("open menu should register child hits")
	}
	if child.Rect.Y <= trig.Y {
		t.Errorf("menu row %d should be below the bar row %d", child.Rect.Y, trig.Y)
	}
}

func TestVisibleStyleNeedsItems(t *testing.T) {
	env, _ := testEnv(t)
	inst := newTestToolbar(t, env)
	empty := inst.Component().Pieces()[0].Content

	inst2 := newTestToolbar(t, env, Button("Copy", "copy", nil))
	full := inst2.Component().Pieces()[0].Content

	if empty == "" || full == "" {
		t.Fatal("bars should render")
	}
	if barVisibleStyle.GetBorderTopForeground() == barStyle.GetBorderTopForeground() {
		t.Error("visible style should differ from the plain bar")
	}
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestKeyboardNavigation(t *testing.T) {
	env, _ := testEnv(t)
	rows := &counter{}
	del := &counter{}
	items := []MenuItem{
		Dropdown("Row operations", "rowDropdown", Button("Add row before", "", rows.cmd)),
		Button("Delete table", "deleteTable", del.cmd),
	}
	inst := newTestToolbar(t, env, items...)
	comp := inst.Component()
	comp.Pieces()

	if handled, _ := env.DispatchKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); handled {
		t.Fatal("typing should reach the editor while the toolbar is unfocused")
	}
	if handled, _ := env.DispatchKey(keyMsg(tea.KeyF2)); !handled || comp.Focused() != 0 {
		t.Fatalf("focus key: handled=%v focused=%d", handled, comp.Focused())
	}

	env.DispatchKey(keyMsg(tea.KeyDown))
	if !comp.Dropdowns().IsOpen(0) {
		t.Fatal("down should open the focused dropdown")
	}
	env.DispatchKey(keyMsg(tea.KeyEnter))
	if rows.run != 1 || comp.Dropdowns().Open() != -1 || comp.Focused() != -1 {
		t.Errorf("enter in menu: runs=%d open=%d focus=%d", rows.run, comp.Dropdowns().Open(), comp.Focused())
	}

	env.DispatchKey(keyMsg(tea.KeyF2))
	env.DispatchKey(keyMsg(tea.KeyRight))
	if comp.Focused() != 1 {
		t.Fatalf("focused = %d, want 1", comp.Focused())
	}
	env.DispatchKey(keyMsg(tea.KeyEnter))
	if del.run != 1 {
		t.Errorf("delete ran %d times", del.run)
	}
}

func TestEscapeClosesDropdownFirst(t *testing.T) {
	env, _ := testEnv(t)
	inst := newTestToolbar(t, env, twoDropdowns(&counter{}, &counter{})...)
	comp := inst.Component()
	comp.Pieces()

	env.DispatchKey(keyMsg(tea.KeyF2))
	env.DispatchKey(keyMsg(tea.KeyDown))
	env.DispatchKey(keyMsg(tea.KeyEsc))
	if comp.Dropdowns().Open() != -1 {
		t.Fatal("esc should close the dropdown")
	}
	if comp.Focused() != 0 {
		t.Error("first esc should keep toolbar focus")
	}
	env.DispatchKey(keyMsg(tea.KeyEsc))
	if comp.Focused() != -1 {
		t.Error("second esc should release focus")
	}
}

func TestRunLeaf(t *testing.T) {
	env, _ := testEnv(t)
	rows := &counter{}
	inst := newTestToolbar(t, env, twoDropdowns(rows, &counter{})...)

	leaves := Flatten(inst.Items())
	inst.Component().RunLeaf(leaves[1])
	if rows.run != 1 {
		t.Errorf("leaf %q ran %d times", leaves[1].Label(), rows.run)
	}
}
