package editor

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/folio/pkg/schema"
	"github.com/marcus/folio/pkg/toolbar/position"
)

// Layout constants, in terminal cells.
const (
	blockSpacing  = 1
	imageMaxWidth = 44
	imageHeight   = 5
	cellMinWidth  = 3
	cellMaxWidth  = 16
)

// BlockLayout is the page geometry of one block.
type BlockLayout struct {
	Rect position.Rect
	// Text is the area holding wrapped text, for text blocks.
	Text  position.Rect
	Lines []string
	// Cells holds one rectangle per grid slot; covered slots share the
	// rectangle of the region that covers them.
	Cells     [][]position.Rect
	CellWidth int
}

// Layout is the page geometry of a document at a given width.
type Layout struct {
	Width  int
	Height int
	Blocks []BlockLayout
}

func computeLayout(doc *Document, width int) Layout {
	width = max(width, 8)
	l := Layout{Width: width, Blocks: make([]BlockLayout, doc.Len())}
	y := 0
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		var bl BlockLayout
		switch {
		case b.Table != nil:
			bl = layoutTable(b.Table, y, width)
		case b.Type == schema.Image:
			bl.Rect = position.Rect{X: 0, Y: y, W: min(width, imageMaxWidth), H: imageHeight}
		case b.Type == schema.HorizontalRule:
			bl.Rect = position.Rect{X: 0, Y: y, W: width, H: 1}
		default:
			prefix := ansi.StringWidth(blockPrefix(b))
			tw := max(width-prefix, 1)
			bl.Lines = wrapRunes(b.Text, tw)
			bl.Text = position.Rect{X: prefix, Y: y, W: tw, H: len(bl.Lines)}
			bl.Rect = position.Rect{X: 0, Y: y, W: width, H: len(bl.Lines)}
		}
		l.Blocks[i] = bl
		y = bl.Rect.Bottom() + blockSpacing
	}
	l.Height = max(y-blockSpacing, 0)
	return l
}

func layoutTable(t *Table, top, width int) BlockLayout {
	rows, cols := t.NumRows(), t.NumCols()
	cw := cellMinWidth
	if cols > 0 {
		cw = min(max((width-1)/cols-1, cellMinWidth), cellMaxWidth)
	}
	bl := BlockLayout{
		Rect:      position.Rect{X: 0, Y: top, W: cols*(cw+1) + 1, H: rows*2 + 1},
		Cells:     make([][]position.Rect, rows),
		CellWidth: cw,
	}
	for r := range rows {
		bl.Cells[r] = make([]position.Rect, cols)
	}
	for r := range rows {
		for c := range cols {
			cell := t.Cell(r, c)
			if cell.Covered {
				continue
			}
			rs, cs := max(cell.Rowspan, 1), max(cell.Colspan, 1)
			rect := position.Rect{
				X: 1 + c*(cw+1),
				Y: top + 1 + r*2,
				W: cs*cw + cs - 1,
				H: rs*2 - 1,
			}
			for dr := range rs {
				for dc := range cs {
					if r+dr < rows && c+dc < cols {
						bl.Cells[r+dr][c+dc] = rect
					}
				}
			}
		}
	}
	return bl
}

// wrapRunes hard-wraps text into lines of at most width runes so that rune
// offsets map directly onto screen cells.
func wrapRunes(text string, width int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}
	var lines []string
	for len(runes) > width {
		lines = append(lines, string(runes[:width]))
		runes = runes[width:]
	}
	return append(lines, string(runes))
}

func blockPrefix(b *Block) string {
	switch b.Type {
	case schema.Heading:
		level, err := strconv.Atoi(b.Attr("level"))
		if err != nil || level < 1 {
			level = 1
		}
		return strings.Repeat("#", min(level, 6)) + " "
	case schema.Blockquote:
		return "│ "
	case schema.BulletList, schema.ListItem:
		return "• "
	case schema.OrderedList:
		return "1. "
	case schema.CodeBlock:
		return "  "
	}
	return ""
}

// SelectionAt resolves a page point to a selection.
func (l Layout) SelectionAt(doc *Document, p position.Point) (Selection, bool) {
	for i, bl := range l.Blocks {
		if p.Y < bl.Rect.Y || p.Y >= bl.Rect.Bottom() {
			continue
		}
		b := doc.Block(i)
		if b == nil {
			return Selection{}, false
		}
		switch {
		case b.Table != nil:
			for r, row := range bl.Cells {
				for c, rect := range row {
					if rect.Contains(p) {
						ar, ac := b.Table.AnchorOf(r, c)
						sel := CellAt(i, ar, ac)
						sel.Offset = runeLen(b.Table.Cell(ar, ac).Text)
						return sel, true
					}
				}
			}
			return CellAt(i, 0, 0), true
		case !b.IsText():
			if !bl.Rect.Contains(p) {
				return Selection{}, false
			}
			return NodeAt(i), true
		default:
			line := p.Y - bl.Text.Y
			offset := 0
			for _, prev := range bl.Lines[:line] {
				offset += runeLen(prev)
			}
			offset += min(max(p.X-bl.Text.X, 0), runeLen(bl.Lines[line]))
			return Caret(i, offset), true
		}
	}
	return Selection{}, false
}
