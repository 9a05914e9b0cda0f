package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/folio/pkg/schema"
)

var (
	accentColor = lipgloss.Color("212")
	mutedColor  = lipgloss.Color("241")
	borderColor = lipgloss.Color("240")

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	quoteStyle   = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	caretStyle   = lipgloss.NewStyle().Reverse(true)
	linkStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39"))
	ruleStyle    = lipgloss.NewStyle().Foreground(borderColor)

	imageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)
	imageSelectedStyle = imageStyle.BorderForeground(accentColor)

	cellHeaderStyle   = lipgloss.NewStyle().Bold(true)
	cellSelectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("237")).Foreground(lipgloss.Color("255"))
	tableBorderStyle  = lipgloss.NewStyle().Foreground(borderColor)
)

func renderDocument(state State, l Layout, focused bool) string {
	lines := make([]string, l.Height)
	for i := range state.Doc.Blocks {
		b := &state.Doc.Blocks[i]
		bl := l.Blocks[i]
		var sel *Selection
		if focused && state.Selection.Block == i {
			sel = &state.Selection
		}

		var rendered []string
		switch {
		case b.Table != nil:
			rendered = renderTable(b.Table, bl, sel)
		case b.Type == schema.Image:
			rendered = renderImage(b, bl, sel != nil && sel.Kind == NodeSelection)
		case b.Type == schema.HorizontalRule:
			rendered = []string{ruleStyle.Render(strings.Repeat("─", bl.Rect.W))}
		default:
			rendered = renderText(b, bl, sel)
		}
		for j, line := range rendered {
			if y := bl.Rect.Y + j; y >= 0 && y < len(lines) {
				lines[y] = line
			}
		}
	}
	return strings.Join(lines, "\n")
}

func renderText(b *Block, bl BlockLayout, sel *Selection) []string {
	style := lipgloss.NewStyle()
	switch b.Type {
	case schema.Heading:
		style = headingStyle
	case schema.Blockquote:
		style = quoteStyle
	case schema.CodeBlock:
		style = codeStyle
	}

	caretLine, caretCol := -1, 0
	if sel != nil && sel.Kind == TextSelection {
		caretLine, caretCol = caretPosition(bl.Lines, sel.Offset)
	}

	prefix := blockPrefix(b)
	pad := strings.Repeat(" ", ansi.StringWidth(prefix))
	out := make([]string, len(bl.Lines))
	base := 0
	for i, line := range bl.Lines {
		lead := pad
		if i == 0 {
			lead = prefix
		}
		runes := []rune(line)
		span := func(from, to int) string { return renderSpan(b, style, runes, base, from, to) }
		if i != caretLine {
			out[i] = lead + span(0, len(runes))
		} else {
			at := " "
			if caretCol < len(runes) {
				at = string(runes[caretCol])
			}
			out[i] = lead + span(0, caretCol) + caretStyle.Render(at) + span(caretCol+1, len(runes))
		}
		base += len(runes)
	}
	return out
}

// renderSpan styles runes[from:to] of a wrapped line starting at rune base,
// underlining linked text.
func renderSpan(b *Block, style lipgloss.Style, runes []rune, base, from, to int) string {
	if from >= to {
		return ""
	}
	if len(b.Marks) == 0 {
		return style.Render(string(runes[from:to]))
	}
	var sb strings.Builder
	start := from
	_, linked := b.MarkAt(schema.Link, base+from)
	for i := from + 1; i <= to; i++ {
		if i < to {
			if _, l := b.MarkAt(schema.Link, base+i); l == linked {
				continue
			}
		}
		st := style
		if linked {
			st = linkStyle.Inherit(style)
		}
		sb.WriteString(st.Render(string(runes[start:i])))
		if i < to {
			start = i
			_, linked = b.MarkAt(schema.Link, base+i)
		}
	}
	return sb.String()
}

// caretPosition maps a rune offset onto wrapped lines.
func caretPosition(lines []string, offset int) (int, int) {
	for i, line := range lines {
		n := runeLen(line)
		if offset < n || i == len(lines)-1 {
			return i, min(offset, n)
		}
		offset -= n
	}
	return 0, 0
}

func renderImage(b *Block, bl BlockLayout, selected bool) []string {
	style := imageStyle
	if selected {
		style = imageSelectedStyle
	}
	inner := max(bl.Rect.W-2, 1)
	alt := b.Attr("alt")
	if alt == "" {
		alt = "image"
	}
	meta := b.Attr("title")
	if w, h := b.Attr("width"), b.Attr("height"); w != "" && h != "" {
		meta = strings.TrimSpace(meta + " " + w + "x" + h)
	}
	body := strings.Join([]string{
		ansi.Truncate("▣ "+alt, inner, "…"),
		lipgloss.NewStyle().Foreground(mutedColor).Render(ansi.Truncate(b.Attr("src"), inner, "…")),
		ansi.Truncate(meta, inner, "…"),
	}, "\n")
	return strings.Split(style.Width(inner).Render(body), "\n")
}

// renderTable draws the grid on a rune canvas so merged regions can drop
// their interior borders, then overlays the cell text.
func renderTable(t *Table, bl BlockLayout, sel *Selection) []string {
	w, h := bl.Rect.W, bl.Rect.H
	canvas := make([][]rune, h)
	for y := range canvas {
		canvas[y] = []rune(strings.Repeat(" ", w))
		for x := range canvas[y] {
			switch {
			case y%2 == 0 && x%(bl.CellWidth+1) == 0:
				canvas[y][x] = '+'
			case y%2 == 0:
				canvas[y][x] = '-'
			case x%(bl.CellWidth+1) == 0:
				canvas[y][x] = '|'
			}
		}
	}
	top := bl.Rect.Y
	for r := range t.NumRows() {
		for c := range t.NumCols() {
			cell := t.Cell(r, c)
			if !cell.Anchor() {
				continue
			}
			rect := bl.Cells[r][c]
			for y := rect.Y - top; y < rect.Y-top+rect.H; y++ {
				for x := rect.X; x < rect.X+rect.W; x++ {
					canvas[y][x] = ' '
				}
			}
		}
	}

	lines := make([]string, h)
	for y := range canvas {
		lines[y] = tableBorderStyle.Render(string(canvas[y]))
	}
	for r := range t.NumRows() {
		for c := range t.NumCols() {
			cell := t.Cell(r, c)
			if cell.Covered {
				continue
			}
			rect := bl.Cells[r][c]
			text := ansi.Truncate(cell.Text, rect.W, "…")
			style := lipgloss.NewStyle()
			if cell.Header {
				style = cellHeaderStyle
			}
			if sel != nil && sel.InCell(r, c) {
				style = style.Inherit(cellSelectedStyle)
			}
			text = style.Render(text + strings.Repeat(" ", rect.W-ansi.StringWidth(text)))
			y := rect.Y - top
			lines[y] = spliceLine(lines[y], text, rect.X)
		}
	}
	return lines
}

// spliceLine writes s over line starting at column x.
func spliceLine(line, s string, x int) string {
	left := ansi.Truncate(line, x, "")
	right := ansi.TruncateLeft(line, x+ansi.StringWidth(s), "")
	return left + s + right
}
