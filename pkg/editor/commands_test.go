package editor

import (
	"testing"

	"github.com/marcus/folio/pkg/schema"
)

func tableState(rows, cols int, sel Selection) State {
	doc := NewDocument(
		Block{Type: schema.Paragraph, Text: "intro"},
		Block{Type: schema.Table, Table: NewTable(rows, cols)},
	)
	return NewState(StateConfig{Doc: doc, Selection: sel})
}

func imageState() State {
	doc := NewDocument(
		Block{Type: schema.Image, Attrs: map[string]string{"src": "/media/cat.png", "alt": "", "title": ""}},
		Block{Type: schema.Paragraph, Text: "caption"},
	)
	return NewState(StateConfig{Doc: doc, Selection: NodeAt(0)})
}

// mustApply runs cmd with a dispatch and returns the resulting state.
func mustApply(t *testing.T, s State, cmd Command) State {
	t.Helper()
	var next State
	dispatched := false
	ok := cmd(s, func(tr *Transaction) {
		next = s.Apply(tr)
		dispatched = true
	}, nil)
	if !ok || !dispatched {
		t.Fatalf("command did not apply (ok=%v dispatched=%v)", ok, dispatched)
	}
	return next
}

func TestDryRunDoesNotMutate(t *testing.T) {
	s := tableState(2, 3, CellAt(1, 0, 0))

	if !AddRowAfter(s, nil, nil) {
		t.Fatal("dry run should report applicable")
	}
	if got := s.Doc.Block(1).Table.NumRows(); got != 2 {
		t.Errorf("dry run changed the document: %d rows", got)
	}
}

func TestTableCommandsOutsideTable(t *testing.T) {
	s := tableState(2, 2, Caret(0, 0))

	for name, cmd := range map[string]Command{
		"AddRowAfter":     AddRowAfter,
		"AddColumnBefore": AddColumnBefore,
		"DeleteRow":       DeleteRow,
		"MergeCells":      MergeCells,
		"DeleteTable":     DeleteTable,
	} {
		if cmd(s, nil, nil) {
			t.Errorf("%s should not apply outside a table", name)
		}
	}
	if IsInsideTable(s) {
		t.Error("IsInsideTable = true for a caret in a paragraph")
	}
}

func TestAddRowBeforeKeepsSelectedCell(t *testing.T) {
	s := tableState(2, 2, CellAt(1, 1, 0))

	next := mustApply(t, s, AddRowBefore)

	if got := next.Doc.Block(1).Table.NumRows(); got != 3 {
		t.Errorf("rows = %d, want 3", got)
	}
	if next.Selection.Row != 2 {
		t.Errorf("selection row = %d, want 2", next.Selection.Row)
	}
}

func TestDeleteLastRowRefused(t *testing.T) {
	s := tableState(1, 2, CellAt(1, 0, 0))
	if DeleteRow(s, nil, nil) {
		t.Error("DeleteRow should refuse the only row")
	}
	s = tableState(2, 2, CellAt(1, 1, 1))
	next := mustApply(t, s, DeleteRow)
	if next.Doc.Block(1).Table.NumRows() != 1 || next.Selection.Row != 0 {
		t.Errorf("after delete: rows=%d sel=%+v", next.Doc.Block(1).Table.NumRows(), next.Selection)
	}
}

func TestMergeCellsNeedsMultiCell(t *testing.T) {
	s := tableState(2, 2, CellAt(1, 0, 0))
	if MergeCells(s, nil, nil) {
		t.Error("MergeCells should be disabled for a single cell")
	}

	s = tableState(2, 2, CellRange(1, 0, 0, 1, 1))
	next := mustApply(t, s, MergeCells)

	cell := next.Doc.Block(1).Table.Cell(0, 0)
	if cell.Rowspan != 2 || cell.Colspan != 2 {
		t.Errorf("merged cell = %+v", *cell)
	}
	if !next.Selection.Eq(CellAt(1, 0, 0)) {
		t.Errorf("selection = %+v", next.Selection)
	}

	if !SplitCell(next, nil, nil) {
		t.Error("SplitCell should apply to a merged cell")
	}
	if SplitCell(s, nil, nil) {
		t.Error("SplitCell should not apply to an unmerged cell")
	}
}

func TestToggleHeaderRow(t *testing.T) {
	s := tableState(2, 2, CellAt(1, 1, 1))
	if IsHeaderRowActive(s) {
		t.Fatal("header row active on a fresh table")
	}

	s = mustApply(t, s, ToggleHeaderRow)
	if !IsHeaderRowActive(s) {
		t.Error("header row should be active after toggle")
	}
	if IsHeaderColumnActive(s) {
		t.Error("header column should be unaffected")
	}

	s = mustApply(t, s, ToggleHeaderRow)
	if IsHeaderRowActive(s) {
		t.Error("second toggle should clear the header row")
	}
}

func TestDeleteTableSelectsNeighbour(t *testing.T) {
	s := tableState(2, 2, CellAt(1, 0, 0))

	next := mustApply(t, s, DeleteTable)

	if next.Doc.Len() != 1 {
		t.Fatalf("blocks = %d, want 1", next.Doc.Len())
	}
	if !next.Selection.Eq(Caret(0, 0)) {
		t.Errorf("selection = %+v", next.Selection)
	}
}

func TestInsertTable(t *testing.T) {
	s := NewState(StateConfig{Doc: NewDocument(Block{Type: schema.Paragraph, Text: "x"})})

	if InsertTable(0, 3)(s, nil, nil) {
		t.Error("zero-row table should be refused")
	}
	next := mustApply(t, s, InsertTable(3, 2))
	tbl := next.Doc.Block(1).Table
	if tbl == nil || tbl.NumRows() != 3 || tbl.NumCols() != 2 || !tbl.IsHeaderRow(0) {
		t.Fatalf("inserted table = %+v", tbl)
	}
	if !IsInsideTable(next) {
		t.Error("selection should move into the new table")
	}
}

func TestSetImageAttrs(t *testing.T) {
	s := imageState()

	next := mustApply(t, s, SetImageAttrs(map[string]string{"alt": "a cat", "width": "640"}))
	b := next.Doc.Block(0)
	if b.Attr("alt") != "a cat" || b.Attr("src") != "/media/cat.png" || b.Attr("width") != "640" {
		t.Errorf("attrs = %v", b.Attrs)
	}
	if s.Doc.Block(0).Attr("alt") != "" {
		t.Error("original state was mutated")
	}

	if SetImageAttrs(map[string]string{"src": ""})(s, nil, nil) {
		t.Error("empty src should be refused")
	}
	caret := NewState(StateConfig{Doc: s.Doc, Selection: Caret(1, 0)})
	if SetImageAttrs(map[string]string{"alt": "x"})(caret, nil, nil) {
		t.Error("SetImageAttrs should need an image selection")
	}
}

func TestInsertImageRequiresSrc(t *testing.T) {
	s := NewState(StateConfig{})
	if InsertImage(map[string]string{"alt": "x"})(s, nil, nil) {
		t.Error("image without src should be refused")
	}
	next := mustApply(t, s, InsertImage(map[string]string{"src": "/a.png"}))
	if _, b, ok := SelectedImage(next); !ok || b.Attr("src") != "/a.png" {
		t.Errorf("selected image = %+v, %v", b, ok)
	}
}

func TestIsImageSelectedNeedsFocus(t *testing.T) {
	v := NewView(imageState(), 40)
	if !IsImageSelected(v) {
		t.Fatal("expected image selected")
	}
	v.Blur()
	if IsImageSelected(v) {
		t.Error("blurred view should not report an image selection")
	}
	if IsImageSelected(nil) {
		t.Error("nil view")
	}
}

func TestTextEditing(t *testing.T) {
	s := NewState(StateConfig{
		Doc:       NewDocument(Block{Type: schema.Paragraph, Text: "intro"}),
		Selection: Caret(0, 5),
	})

	s = mustApply(t, s, InsertText("!"))
	if got := s.Doc.Block(0).Text; got != "intro!" || s.Selection.Offset != 6 {
		t.Fatalf("after insert: %q at %d", got, s.Selection.Offset)
	}

	s = mustApply(t, s, Select(Caret(0, 2)))
	s = mustApply(t, s, SplitBlock)
	if s.Doc.Len() != 2 || s.Doc.Block(0).Text != "in" || s.Doc.Block(1).Text != "tro!" {
		t.Fatalf("after split: %q", s.Doc.PlainText())
	}
	if !s.Selection.Eq(Caret(1, 0)) {
		t.Errorf("selection after split = %+v", s.Selection)
	}

	s = mustApply(t, s, DeleteBackward)
	if s.Doc.Len() != 1 || s.Doc.Block(0).Text != "intro!" || !s.Selection.Eq(Caret(0, 2)) {
		t.Errorf("after join: %q sel=%+v", s.Doc.PlainText(), s.Selection)
	}
}

func TestDeleteBackwardRemovesNode(t *testing.T) {
	s := mustApply(t, imageState(), DeleteBackward)
	if s.Doc.Len() != 1 || s.Doc.Block(0).Type != schema.Paragraph {
		t.Errorf("blocks = %+v", s.Doc.Blocks)
	}
}

func TestMoveAcrossBlocks(t *testing.T) {
	s := tableState(2, 2, Caret(0, 5))

	s = mustApply(t, s, MoveRight)
	if !s.Selection.Eq(CellAt(1, 0, 0)) {
		t.Fatalf("right into table = %+v", s.Selection)
	}
	s = mustApply(t, s, MoveDown)
	if s.Selection.Row != 1 {
		t.Errorf("down = %+v", s.Selection)
	}
	s = mustApply(t, s, ExtendCells(0, 1))
	if !s.Selection.MultiCell() {
		t.Errorf("extend = %+v", s.Selection)
	}
	if MoveDown(s, nil, nil) {
		t.Error("MoveDown at the last block should not apply")
	}
}

func TestClampSelectionOnTable(t *testing.T) {
	s := tableState(2, 2, Caret(1, 9))
	if !s.Selection.Eq(CellAt(1, 0, 0)) {
		t.Errorf("caret on table clamps to %+v", s.Selection)
	}
	s = tableState(2, 2, CellAt(1, 7, 7))
	if s.Selection.Row != 1 || s.Selection.Col != 1 {
		t.Errorf("out-of-range cell clamps to %+v", s.Selection)
	}
}
