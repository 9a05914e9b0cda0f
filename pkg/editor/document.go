package editor

import (
	"maps"
	"strings"

	"github.com/marcus/folio/pkg/schema"
)

// Cell is one slot of a table grid. A slot covered by a merged neighbour keeps
// Covered set and carries no text.
type Cell struct {
	Text    string
	Header  bool
	Colspan int
	Rowspan int
	Covered bool
}

// Anchor reports whether the cell starts a merged region.
func (c Cell) Anchor() bool {
	return !c.Covered && (c.Colspan > 1 || c.Rowspan > 1)
}

// Table is a rectangular grid of cells.
type Table struct {
	Rows [][]Cell
}

// NewTable creates an empty rows x cols table.
func NewTable(rows, cols int) *Table {
	t := &Table{Rows: make([][]Cell, rows)}
	for r := range t.Rows {
		t.Rows[r] = make([]Cell, cols)
		for c := range t.Rows[r] {
			t.Rows[r][c] = Cell{Colspan: 1, Rowspan: 1}
		}
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Cell returns a pointer to the slot at (r, c), or nil.
func (t *Table) Cell(r, c int) *Cell {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return nil
	}
	return &t.Rows[r][c]
}

// AnchorOf returns the coordinates of the region that covers (r, c).
func (t *Table) AnchorOf(r, c int) (int, int) {
	for ar := r; ar >= 0; ar-- {
		for ac := c; ac >= 0; ac-- {
			cell := t.Cell(ar, ac)
			if cell == nil || cell.Covered {
				continue
			}
			if ar+max(cell.Rowspan, 1) > r && ac+max(cell.Colspan, 1) > c {
				return ar, ac
			}
		}
	}
	return r, c
}

// HasMerges reports whether any region spans more than one slot.
func (t *Table) HasMerges() bool {
	for _, row := range t.Rows {
		for _, cell := range row {
			if cell.Anchor() {
				return true
			}
		}
	}
	return false
}

func (t *Table) clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Rows: make([][]Cell, len(t.Rows))}
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// Block is one top-level node of a document.
type Block struct {
	ID    uint64
	Type  schema.NodeType
	Text  string
	Attrs map[string]string
	Table *Table
	Marks []Mark
}

// Attr returns an attribute value or "".
func (b Block) Attr(key string) string {
	if b.Attrs == nil {
		return ""
	}
	return b.Attrs[key]
}

// IsText reports whether the block holds editable inline text.
func (b Block) IsText() bool {
	switch b.Type {
	case schema.Image, schema.Table, schema.HorizontalRule:
		return false
	}
	return true
}

func (b Block) clone() Block {
	out := b
	if b.Attrs != nil {
		out.Attrs = maps.Clone(b.Attrs)
	}
	out.Table = b.Table.clone()
	out.Marks = cloneMarks(b.Marks)
	return out
}

// Document is an ordered list of blocks.
type Document struct {
	Blocks []Block
	nextID uint64
}

// NewDocument creates a document, assigning block IDs. An empty document gets
// one empty paragraph.
func NewDocument(blocks ...Block) *Document {
	d := &Document{}
	for _, b := range blocks {
		d.Append(b)
	}
	if len(d.Blocks) == 0 {
		d.Append(Block{Type: schema.Paragraph})
	}
	return d
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	out := &Document{Blocks: make([]Block, len(d.Blocks)), nextID: d.nextID}
	for i, b := range d.Blocks {
		out.Blocks[i] = b.clone()
	}
	return out
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.Blocks)
}

// Block returns a pointer to block i, or nil.
func (d *Document) Block(i int) *Block {
	if i < 0 || i >= len(d.Blocks) {
		return nil
	}
	return &d.Blocks[i]
}

func (d *Document) assignID(b *Block) {
	d.nextID++
	b.ID = d.nextID
}

// Append adds b at the end.
func (d *Document) Append(b Block) {
	d.assignID(&b)
	d.Blocks = append(d.Blocks, b)
}

// Insert places b at index i (clamped).
func (d *Document) Insert(i int, b Block) {
	i = min(max(i, 0), len(d.Blocks))
	d.assignID(&b)
	d.Blocks = append(d.Blocks[:i], append([]Block{b}, d.Blocks[i:]...)...)
}

// Remove deletes block i.
func (d *Document) Remove(i int) {
	if i < 0 || i >= len(d.Blocks) {
		return
	}
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
}

// PlainText joins the text of every block, for search and tests.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch {
		case b.Table != nil:
			for _, row := range b.Table.Rows {
				texts := make([]string, 0, len(row))
				for _, cell := range row {
					texts = append(texts, cell.Text)
				}
				sb.WriteString(strings.Join(texts, "\t"))
				sb.WriteString("\n")
			}
		case b.Type == schema.Image:
			sb.WriteString(b.Attr("alt"))
		default:
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// IndexOf returns the index of the block with the given ID, or -1.
func (d *Document) IndexOf(id uint64) int {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return i
		}
	}
	return -1
}
