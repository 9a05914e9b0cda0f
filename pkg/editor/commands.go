package editor

import (
	"maps"

	"github.com/marcus/folio/pkg/schema"
)

// SelectedTable returns the table block holding the selection.
func SelectedTable(state State) (int, *Table, bool) {
	sel := state.Selection
	if sel.Kind != CellSelection {
		return 0, nil, false
	}
	b := state.Doc.Block(sel.Block)
	if b == nil || b.Table == nil {
		return 0, nil, false
	}
	return sel.Block, b.Table, true
}

// IsInsideTable reports whether the selection sits in a table.
func IsInsideTable(state State) bool {
	_, _, ok := SelectedTable(state)
	return ok
}

// SelectedImage returns the image block under a node selection.
func SelectedImage(state State) (int, *Block, bool) {
	sel := state.Selection
	if sel.Kind != NodeSelection {
		return 0, nil, false
	}
	b := state.Doc.Block(sel.Block)
	if b == nil || b.Type != schema.Image {
		return 0, nil, false
	}
	return sel.Block, b, true
}

// IsImageSelected reports whether a focused view has an image node selected.
func IsImageSelected(view *View) bool {
	if view == nil || !view.HasFocus() {
		return false
	}
	_, _, ok := SelectedImage(view.State())
	return ok
}

// IsHeaderRowActive reports whether the first row of the selected table is a
// header row.
func IsHeaderRowActive(state State) bool {
	_, t, ok := SelectedTable(state)
	return ok && t.IsHeaderRow(0)
}

// IsHeaderColumnActive reports whether the first column of the selected
// table is a header column.
func IsHeaderColumnActive(state State) bool {
	_, t, ok := SelectedTable(state)
	return ok && t.IsHeaderColumn(0)
}

// tableCommand wraps an edit of the selected table. edit receives a copy of
// the table inside tr and returns false to abort.
func tableCommand(edit func(tr *Transaction, t *Table, sel Selection) bool) Command {
	return func(state State, dispatch Dispatch, _ *View) bool {
		idx, _, ok := SelectedTable(state)
		if !ok {
			return false
		}
		if dispatch == nil {
			dry := state.Tr()
			return edit(dry, dry.Doc.Block(idx).Table, state.Selection)
		}
		tr := state.Tr()
		if !edit(tr, tr.Doc.Block(idx).Table, state.Selection) {
			return false
		}
		dispatch(tr.Changed())
		return true
	}
}

// AddRowBefore inserts a row above the selection.
var AddRowBefore = tableCommand(func(tr *Transaction, t *Table, sel Selection) bool {
	r0, _, _, _ := sel.CellRect()
	t.InsertRow(r0)
	tr.SetSelection(CellRange(sel.Block, sel.AnchorRow+1, sel.AnchorCol, sel.Row+1, sel.Col))
	return true
})

// AddRowAfter inserts a row below the selection.
var AddRowAfter = tableCommand(func(tr *Transaction, t *Table, sel Selection) bool {
	_, _, r1, _ := sel.CellRect()
	last := r1
	if cell := t.Cell(r1, sel.Col); cell != nil && cell.Anchor() {
		last = r1 + cell.Rowspan - 1
	}
	t.InsertRow(last + 1)
	return true
})

// DeleteRow removes the selected rows. The last row of a table cannot be
// deleted.
var DeleteRow = tableCommand(func(tr *Transaction, t *Table, sel Selection) bool {
	r0, _, r1, _ := sel.CellRect()
	if !t.DeleteRows(r0, r1) {
		return false
	}
	tr.SetSelection(CellAt(sel.Block, min(r0, t.NumRows()-1), sel.Col))
	return true
})

// AddColumnBefore inserts a column left of the selection.
var AddColumnBefore = tableCommand(func(tr *Transaction, t *Table, sel Selection) bool {
	_, c0, _, _ := sel.CellRect()
	t.InsertColumn(c0)
	tr.SetSelection(CellRange(sel.Block, sel.AnchorRow, sel.AnchorCol+1, sel.Row, sel.Col+1))
	return true
})

// AddColumnAfter inserts a column right of the selection.
var AddColumnAfter = tableCommand(func(tr *Transaction, t *Table, sel Selection) bool {
	_, _, _, c1 := sel.CellRect()
	last := c1
	if cell := t.Cell(sel.Row, c1); cell != nil && cell.Anchor() {
		last = c1 + cell.Colspan - 1
	}
	t.InsertColumn(last + 1)
	return true
})

// DeleteColumn removes the selected columns.
var DeleteColumn = tableCommand(func(tr *Transaction, t *Table, sel Selection) bool {
	_, c0, _, c1 := sel.CellRect()
	if !t.DeleteColumns(c0, c1) {
		return false
	}
	tr.SetSelection(CellAt(sel.Block, sel.Row, min(c0, t.NumCols()-1)))
	return true
})

// ToggleHeaderRow flips the header flag of the first row.
var ToggleHeaderRow = tableCommand(func(_ *Transaction, t *Table, _ Selection) bool {
	t.SetHeaderRow(0, !t.IsHeaderRow(0))
	return true
})

// ToggleHeaderColumn flips the header flag of the first column.
var ToggleHeaderColumn = tableCommand(func(_ *Transaction, t *Table, _ Selection) bool {
	t.SetHeaderColumn(0, !t.IsHeaderColumn(0))
	return true
})

// ToggleHeaderCell flips the header flag of every selected cell, following
// the head cell.
var ToggleHeaderCell = tableCommand(func(_ *Transaction, t *Table, sel Selection) bool {
	r0, c0, r1, c1 := sel.CellRect()
	on := !t.Cell(sel.Row, sel.Col).Header
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			t.Cell(r, c).Header = on
		}
	}
	return true
})

// MergeCells joins a multi-cell selection into one cell.
var MergeCells = tableCommand(func(tr *Transaction, t *Table, sel Selection) bool {
	if !sel.MultiCell() {
		return false
	}
	r0, c0, r1, c1 := sel.CellRect()
	if !t.Merge(r0, c0, r1, c1) {
		return false
	}
	tr.SetSelection(CellAt(sel.Block, r0, c0))
	return true
})

// SplitCell breaks a merged cell back into single cells.
var SplitCell = tableCommand(func(_ *Transaction, t *Table, sel Selection) bool {
	ar, ac := t.AnchorOf(sel.Row, sel.Col)
	return t.Split(ar, ac)
})

// DeleteTable removes the table holding the selection.
func DeleteTable(state State, dispatch Dispatch, _ *View) bool {
	idx, _, ok := SelectedTable(state)
	if !ok {
		return false
	}
	if dispatch == nil {
		return true
	}
	tr := state.Tr()
	removeBlock(tr, idx)
	dispatch(tr.Changed())
	return true
}

// removeBlock deletes block idx, keeping at least one paragraph, and puts the
// selection on the block that takes its place.
func removeBlock(tr *Transaction, idx int) {
	tr.Doc.Remove(idx)
	if tr.Doc.Len() == 0 {
		tr.Doc.Append(Block{Type: schema.Paragraph})
	}
	tr.SetSelection(selectBlock(tr.Doc, min(idx, tr.Doc.Len()-1), false))
}

// InsertTable returns a command that inserts an empty rows x cols table after
// the current block, with a header row.
func InsertTable(rows, cols int) Command {
	return func(state State, dispatch Dispatch, _ *View) bool {
		if rows < 1 || cols < 1 {
			return false
		}
		if dispatch == nil {
			return true
		}
		t := NewTable(rows, cols)
		t.SetHeaderRow(0, true)
		tr := state.Tr()
		at := state.Selection.Block + 1
		tr.Doc.Insert(at, Block{Type: schema.Table, Table: t})
		tr.SetSelection(CellAt(at, min(1, rows-1), 0))
		dispatch(tr.Changed())
		return true
	}
}

// SetImageAttrs returns a command that merges attrs into the selected image.
// The result must still satisfy the schema.
func SetImageAttrs(attrs map[string]string) Command {
	return func(state State, dispatch Dispatch, _ *View) bool {
		idx, b, ok := SelectedImage(state)
		if !ok {
			return false
		}
		merged := maps.Clone(b.Attrs)
		if merged == nil {
			merged = make(map[string]string, len(attrs))
		}
		maps.Copy(merged, attrs)
		checked, ok := imageAttrs(state.Schema, merged)
		if !ok {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := state.Tr()
		tr.Doc.Block(idx).Attrs = checked
		dispatch(tr.Changed())
		return true
	}
}

// imageAttrs checks image attributes against the schema. The schema drops
// presentational extras such as width and height, so they are carried over.
func imageAttrs(s *schema.Schema, attrs map[string]string) (map[string]string, bool) {
	checked, err := s.Attrs(schema.Image, attrs)
	if err != nil || checked["src"] == "" {
		return nil, false
	}
	for _, k := range []string{"width", "height"} {
		if v, ok := attrs[k]; ok {
			checked[k] = v
		}
	}
	return checked, true
}

// InsertImage returns a command that inserts an image after the current
// block and selects it.
func InsertImage(attrs map[string]string) Command {
	return func(state State, dispatch Dispatch, _ *View) bool {
		checked, ok := imageAttrs(state.Schema, attrs)
		if !ok {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := state.Tr()
		at := state.Selection.Block + 1
		tr.Doc.Insert(at, Block{Type: schema.Image, Attrs: checked})
		tr.SetSelection(NodeAt(at))
		dispatch(tr.Changed())
		return true
	}
}

// selectBlock returns the natural selection at the start or end of block i.
func selectBlock(doc *Document, i int, atEnd bool) Selection {
	b := doc.Block(i)
	switch {
	case b == nil:
		return Selection{}
	case b.Table != nil:
		if atEnd {
			r, c := b.Table.NumRows()-1, b.Table.NumCols()-1
			ar, ac := b.Table.AnchorOf(r, c)
			return CellAt(i, ar, ac)
		}
		return CellAt(i, 0, 0)
	case !b.IsText():
		return NodeAt(i)
	case atEnd:
		return Caret(i, runeLen(b.Text))
	default:
		return Caret(i, 0)
	}
}

// selectionCommand builds a command that only moves the selection.
func selectionCommand(move func(state State) (Selection, bool)) Command {
	return func(state State, dispatch Dispatch, _ *View) bool {
		sel, ok := move(state)
		if !ok || sel.Eq(state.Selection) {
			return false
		}
		if dispatch != nil {
			dispatch(state.Tr().SetSelection(sel))
		}
		return true
	}
}

// SelectBlock returns a command selecting the start of block i.
func SelectBlock(i int) Command {
	return selectionCommand(func(state State) (Selection, bool) {
		if state.Doc.Block(i) == nil {
			return Selection{}, false
		}
		return selectBlock(state.Doc, i, false), true
	})
}

// Select returns a command that sets sel.
func Select(sel Selection) Command {
	return selectionCommand(func(State) (Selection, bool) {
		return sel, true
	})
}

// MoveLeft moves the caret one step back, crossing into the previous block.
var MoveLeft = selectionCommand(func(state State) (Selection, bool) {
	sel := state.Selection
	switch {
	case sel.Kind == TextSelection && sel.Offset > 0:
		return Caret(sel.Block, sel.Offset-1), true
	case sel.Kind == CellSelection && sel.Col > 0:
		t := state.Doc.Block(sel.Block).Table
		ar, ac := t.AnchorOf(sel.Row, sel.Col-1)
		return cellCaret(t, sel.Block, ar, ac), true
	case sel.Block > 0:
		return selectBlock(state.Doc, sel.Block-1, true), true
	}
	return sel, false
})

// MoveRight moves the caret one step forward.
var MoveRight = selectionCommand(func(state State) (Selection, bool) {
	sel := state.Selection
	b := state.Doc.Block(sel.Block)
	switch {
	case sel.Kind == TextSelection && sel.Offset < runeLen(b.Text):
		return Caret(sel.Block, sel.Offset+1), true
	case sel.Kind == CellSelection:
		t := b.Table
		ar, ac := t.AnchorOf(sel.Row, sel.Col)
		if next := ac + max(t.Cell(ar, ac).Colspan, 1); next < t.NumCols() {
			nr, nc := t.AnchorOf(sel.Row, next)
			return cellCaret(t, sel.Block, nr, nc), true
		}
	}
	if sel.Block+1 < state.Doc.Len() {
		return selectBlock(state.Doc, sel.Block+1, false), true
	}
	return sel, false
})

// MoveUp moves to the row above inside a table, else to the previous block.
var MoveUp = selectionCommand(func(state State) (Selection, bool) {
	sel := state.Selection
	if sel.Kind == CellSelection && sel.Row > 0 {
		t := state.Doc.Block(sel.Block).Table
		ar, ac := t.AnchorOf(sel.Row-1, sel.Col)
		return cellCaret(t, sel.Block, ar, ac), true
	}
	if sel.Block > 0 {
		return selectBlock(state.Doc, sel.Block-1, true), true
	}
	return sel, false
})

// MoveDown moves to the row below inside a table, else to the next block.
var MoveDown = selectionCommand(func(state State) (Selection, bool) {
	sel := state.Selection
	if sel.Kind == CellSelection {
		t := state.Doc.Block(sel.Block).Table
		ar, ac := t.AnchorOf(sel.Row, sel.Col)
		if next := ar + max(t.Cell(ar, ac).Rowspan, 1); next < t.NumRows() {
			nr, nc := t.AnchorOf(next, sel.Col)
			return cellCaret(t, sel.Block, nr, nc), true
		}
	}
	if sel.Block+1 < state.Doc.Len() {
		return selectBlock(state.Doc, sel.Block+1, false), true
	}
	return sel, false
})

// ExtendCells returns a command that grows a cell selection by moving its
// head dr rows and dc columns.
func ExtendCells(dr, dc int) Command {
	return selectionCommand(func(state State) (Selection, bool) {
		sel := state.Selection
		_, t, ok := SelectedTable(state)
		if !ok {
			return sel, false
		}
		r, c := sel.Row+dr, sel.Col+dc
		if t.Cell(r, c) == nil {
			return sel, false
		}
		return CellRange(sel.Block, sel.AnchorRow, sel.AnchorCol, r, c), true
	})
}

func cellCaret(t *Table, block, r, c int) Selection {
	sel := CellAt(block, r, c)
	sel.Offset = runeLen(t.Cell(r, c).Text)
	return sel
}

// InsertText returns a command typing s at the caret.
func InsertText(s string) Command {
	return func(state State, dispatch Dispatch, _ *View) bool {
		sel := state.Selection
		if s == "" || sel.Kind == NodeSelection || sel.MultiCell() {
			return false
		}
		if dispatch == nil {
			return true
		}
		tr := state.Tr()
		text := textAt(tr.Doc, sel)
		runes := []rune(*text)
		at := min(sel.Offset, len(runes))
		*text = string(runes[:at]) + s + string(runes[at:])
		if sel.Kind == TextSelection {
			insertRunes(tr.Doc.Block(sel.Block).Marks, at, runeLen(s))
		}
		sel.Offset = at + runeLen(s)
		dispatch(tr.Changed().SetSelection(sel))
		return true
	}
}

// DeleteBackward removes the rune before the caret, joins text blocks at a
// block start and deletes a selected node.
func DeleteBackward(state State, dispatch Dispatch, _ *View) bool {
	sel := state.Selection
	switch {
	case sel.Kind == NodeSelection:
		if dispatch != nil {
			tr := state.Tr()
			removeBlock(tr, sel.Block)
			dispatch(tr.Changed())
		}
		return true
	case sel.MultiCell():
		return false
	case sel.Offset > 0:
		if dispatch != nil {
			tr := state.Tr()
			text := textAt(tr.Doc, sel)
			runes := []rune(*text)
			at := min(sel.Offset, len(runes))
			*text = string(runes[:at-1]) + string(runes[at:])
			if sel.Kind == TextSelection {
				b := tr.Doc.Block(sel.Block)
				b.Marks = deleteRunes(b.Marks, at-1, 1)
			}
			sel.Offset = at - 1
			dispatch(tr.Changed().SetSelection(sel))
		}
		return true
	case sel.Kind == TextSelection && sel.Block > 0:
		prev := state.Doc.Block(sel.Block - 1)
		if !prev.IsText() {
			return selectionCommand(func(State) (Selection, bool) {
				return NodeAt(sel.Block - 1), true
			})(state, dispatch, nil)
		}
		if dispatch != nil {
			tr := state.Tr()
			p := tr.Doc.Block(sel.Block - 1)
			offset := runeLen(p.Text)
			next := tr.Doc.Block(sel.Block)
			p.Text += next.Text
			p.Marks = appendMarks(p.Marks, next.Marks, offset)
			tr.Doc.Remove(sel.Block)
			dispatch(tr.Changed().SetSelection(Caret(sel.Block-1, offset)))
		}
		return true
	}
	return false
}

// SplitBlock breaks a text block at the caret. The tail becomes a paragraph.
func SplitBlock(state State, dispatch Dispatch, _ *View) bool {
	sel := state.Selection
	if sel.Kind != TextSelection {
		return false
	}
	if dispatch == nil {
		return true
	}
	tr := state.Tr()
	b := tr.Doc.Block(sel.Block)
	runes := []rune(b.Text)
	at := min(sel.Offset, len(runes))
	tail := Block{Type: schema.Paragraph, Text: string(runes[at:])}
	if b.Type == schema.CodeBlock || b.Type == schema.Blockquote {
		tail.Type = b.Type
	}
	b.Text = string(runes[:at])
	b.Marks, tail.Marks = splitMarks(b.Marks, at)
	tr.Doc.Insert(sel.Block+1, tail)
	dispatch(tr.Changed().SetSelection(Caret(sel.Block+1, 0)))
	return true
}

// textAt returns the editable text the selection points into.
func textAt(doc *Document, sel Selection) *string {
	b := doc.Block(sel.Block)
	if sel.Kind == CellSelection {
		ar, ac := b.Table.AnchorOf(sel.Row, sel.Col)
		return &b.Table.Cell(ar, ac).Text
	}
	return &b.Text
}

// Chain runs cmds in order and stops at the first that applies.
func Chain(cmds ...Command) Command {
	return func(state State, dispatch Dispatch, view *View) bool {
		for _, cmd := range cmds {
			if cmd(state, dispatch, view) {
				return true
			}
		}
		return false
	}
}
