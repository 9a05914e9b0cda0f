package editor

// SelectionKind distinguishes the selection shapes.
type SelectionKind int

const (
	// TextSelection is a caret inside a text block.
	TextSelection SelectionKind = iota
	// NodeSelection selects a whole leaf block such as an image.
	NodeSelection
	// CellSelection is a rectangle of table cells; a single cell is a caret
	// inside that cell.
	CellSelection
)

func (k SelectionKind) String() string {
	switch k {
	case TextSelection:
		return "text"
	case NodeSelection:
		return "node"
	case CellSelection:
		return "cell"
	default:
		return "unknown"
	}
}

// Selection is a comparable value; two selections are equal when every field
// matches.
type Selection struct {
	Kind   SelectionKind
	Block  int
	Offset int

	// Head cell for CellSelection.
	Row, Col int
	// Anchor cell for CellSelection.
	AnchorRow, AnchorCol int
}

// Caret returns a text selection at offset (in runes) of block.
func Caret(block, offset int) Selection {
	return Selection{Kind: TextSelection, Block: block, Offset: offset}
}

// NodeAt selects the whole block.
func NodeAt(block int) Selection {
	return Selection{Kind: NodeSelection, Block: block}
}

// CellAt places the caret at the end of cell (row, col) of a table block.
func CellAt(block, row, col int) Selection {
	return Selection{Kind: CellSelection, Block: block, Row: row, Col: col, AnchorRow: row, AnchorCol: col}
}

// CellRange selects the rectangle spanned by anchor and head.
func CellRange(block, anchorRow, anchorCol, headRow, headCol int) Selection {
	return Selection{
		Kind: CellSelection, Block: block,
		Row: headRow, Col: headCol,
		AnchorRow: anchorRow, AnchorCol: anchorCol,
	}
}

// Eq reports whether two selections are the same.
func (s Selection) Eq(o Selection) bool {
	return s == o
}

// CellRect returns the normalized rectangle of a cell selection.
func (s Selection) CellRect() (r0, c0, r1, c1 int) {
	r0, r1 = min(s.Row, s.AnchorRow), max(s.Row, s.AnchorRow)
	c0, c1 = min(s.Col, s.AnchorCol), max(s.Col, s.AnchorCol)
	return
}

// MultiCell reports whether more than one cell is selected.
func (s Selection) MultiCell() bool {
	return s.Kind == CellSelection && (s.Row != s.AnchorRow || s.Col != s.AnchorCol)
}

// InCell reports whether the cell rectangle includes (r, c).
func (s Selection) InCell(r, c int) bool {
	if s.Kind != CellSelection {
		return false
	}
	r0, c0, r1, c1 := s.CellRect()
	return r >= r0 && r <= r1 && c >= c0 && c <= c1
}
