package tabletoolbar

import (
	"testing"

	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/schema"
	"github.com/marcus/folio/pkg/toolbar"
	"github.com/marcus/folio/pkg/toolbar/position"
	"github.com/marcus/folio/pkg/toolbar/toolbartest"
)

func testView(plugins ...editor.Plugin) *editor.View {
	doc := editor.NewDocument(
		editor.Block{Type: schema.Paragraph, Text: "before"},
		editor.Block{Type: schema.Table, Table: editor.NewTable(3, 3)},
		editor.Block{Type: schema.Paragraph, Text: "after"},
	)
	v := editor.NewView(editor.NewState(editor.StateConfig{
		Doc:       doc,
		Selection: editor.Caret(0, 0),
		Plugins:   plugins,
	}), 80)
	v.SetViewport(position.Point{X: 0, Y: 1}, position.Size{W: 80, H: 30})
	return v
}

func selectCell(v *editor.View, r, c int) {
	v.Dispatch(v.State().Tr().SetSelection(editor.CellAt(1, r, c)))
}

func TestMenuShape(t *testing.T) {
	items, err := Derive(nil, nil)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d items, want 4", len(items))
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			t.Errorf("%s: %v", it.Title, err)
		}
	}
	if items[0].Kind != toolbar.KindDropdown || len(items[0].Items) != 4 {
		t.Errorf("row dropdown = %+v", items[0])
	}
	if items[3].Kind != toolbar.KindButton || items[3].Title != "Delete table" {
		t.Errorf("last item = %+v", items[3])
	}
	if n := len(toolbar.Flatten(items)); n != 12 {
		t.Errorf("flattened %d leaves, want 12", n)
	}
}

func TestChildPredicatesFollowSelection(t *testing.T) {
	v := testView()
	selectCell(v, 0, 0)
	items, _ := Derive(v, nil)
	cells := items[2]

	merge := cells.Items[0]
	if merge.EnabledIn(v) {
		t.Error("merge enabled for a single cell")
	}
	v.Dispatch(v.State().Tr().SetSelection(editor.CellRange(1, 0, 0, 1, 1)))
	if !merge.EnabledIn(v) {
		t.Error("merge disabled for a 2x2 range")
	}

	headerRow := items[0].Items[3]
	if headerRow.ActiveIn(v) {
		t.Error("header row active before toggling")
	}
	if !headerRow.Run(v) {
		t.Fatal("toggle header row failed")
	}
	if !headerRow.ActiveIn(v) {
		t.Error("header row inactive after toggling")
	}
	if items[0].ActiveIn(v) {
		t.Error("dropdown inherited a child's active state")
	}
}

func TestRowCommandsApply(t *testing.T) {
	v := testView()
	selectCell(v, 1, 1)
	items, _ := Derive(v, nil)

	if !items[0].Items[1].Run(v) {
		t.Fatal("add row after failed")
	}
	if n := v.State().Doc.Block(1).Table.NumRows(); n != 4 {
		t.Errorf("rows = %d, want 4", n)
	}
	if !items[1].Items[2].Run(v) {
		t.Fatal("delete column failed")
	}
	if n := v.State().Doc.Block(1).Table.NumCols(); n != 2 {
		t.Errorf("cols = %d, want 2", n)
	}
}

func TestPluginLifecycle(t *testing.T) {
	env := toolbar.NewEnv(toolbartest.NewScheduler(), nil)
	derives := 0
	v := testView(toolbar.NewPlugin(env), NewPlugin(Options{
		Derive: func(view *editor.View, target toolbar.Target) ([]toolbar.MenuItem, error) {
			derives++
			return Derive(view, target)
		},
	}))

	selectCell(v, 0, 0)
	if env.Surface.Len() != 1 {
		t.Fatalf("layers = %d after entering the table", env.Surface.Len())
	}
	selectCell(v, 2, 2)
	if env.Surface.Len() != 1 || derives != 2 {
		t.Errorf("layers=%d derives=%d after moving within the table", env.Surface.Len(), derives)
	}

	tr := v.State().Tr()
	tr.Doc.Block(0).Text = "edited"
	v.Dispatch(tr.Changed())
	if derives != 2 {
		t.Errorf("content-only change re-derived (derives=%d)", derives)
	}

	v.Dispatch(v.State().Tr().SetSelection(editor.Caret(2, 0)))
	if env.Surface.Len() != 0 || env.Listening() != 0 {
		t.Errorf("layers=%d listeners=%d after leaving", env.Surface.Len(), env.Listening())
	}
}

func TestDeleteTableRemovesToolbar(t *testing.T) {
	env := toolbar.NewEnv(toolbartest.NewScheduler(), nil)
	v := testView(toolbar.NewPlugin(env), NewPlugin(Options{}))
	selectCell(v, 0, 0)

	if !v.Run(editor.DeleteTable) {
		t.Fatal("DeleteTable failed")
	}
	if env.Surface.Len() != 0 {
		t.Error("toolbar outlived its table")
	}
}

func TestShouldShowNeedsFocus(t *testing.T) {
	v := testView()
	selectCell(v, 0, 0)
	if !ShouldShow(v) {
		t.Fatal("ShouldShow false inside a table")
	}
	v.Blur()
	if ShouldShow(v) {
		t.Error("ShouldShow true without focus")
	}
	if _, ok := Locate(v); ok {
		t.Error("Locate resolved without focus")
	}
}
