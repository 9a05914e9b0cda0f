package editor

import (
	"strings"
)

// region is one merged area of a table captured before a structural edit.
type region struct {
	r0, c0, r1, c1 int
	text           string
	header         bool
}

func (g region) single() bool {
	return g.r0 == g.r1 && g.c0 == g.c1
}

func collectRegions(t *Table) []region {
	var out []region
	for r, row := range t.Rows {
		for c, cell := range row {
			if cell.Anchor() {
				out = append(out, region{
					r0: r, c0: c,
					r1: r + max(cell.Rowspan, 1) - 1,
					c1: c + max(cell.Colspan, 1) - 1,
					text: cell.Text, header: cell.Header,
				})
			}
		}
	}
	return out
}

// unmerge turns every region back into single slots. Covered slots take the
// header flag of their anchor and stay empty.
func unmerge(t *Table, regions []region) {
	for _, g := range regions {
		for r := g.r0; r <= g.r1; r++ {
			for c := g.c0; c <= g.c1; c++ {
				cell := t.Cell(r, c)
				if cell == nil {
					continue
				}
				cell.Colspan, cell.Rowspan, cell.Covered = 1, 1, false
				cell.Header = g.header
			}
		}
	}
}

func applyRegion(t *Table, g region) {
	if g.r0 > g.r1 || g.c0 > g.c1 {
		return
	}
	anchor := t.Cell(g.r0, g.c0)
	if anchor == nil {
		return
	}
	anchor.Text, anchor.Header = g.text, g.header
	anchor.Rowspan, anchor.Colspan, anchor.Covered = g.r1-g.r0+1, g.c1-g.c0+1, false
	for r := g.r0; r <= g.r1; r++ {
		for c := g.c0; c <= g.c1; c++ {
			if r == g.r0 && c == g.c0 {
				continue
			}
			if cell := t.Cell(r, c); cell != nil {
				*cell = Cell{Colspan: 1, Rowspan: 1, Covered: true, Header: g.header}
			}
		}
	}
}

// restructure performs a grid edit with every merged region split apart, then
// re-merges the regions remap keeps.
func restructure(t *Table, edit func(), remap func(region) (region, bool)) {
	regions := collectRegions(t)
	unmerge(t, regions)
	edit()
	for _, g := range regions {
		if g, ok := remap(g); ok && !g.single() {
			applyRegion(t, g)
		} else if ok {
			if cell := t.Cell(g.r0, g.c0); cell != nil {
				cell.Text = g.text
			}
		}
	}
}

// InsertRow adds an empty row at index at. Cells in header columns start as
// headers.
func (t *Table) InsertRow(at int) {
	at = min(max(at, 0), t.NumRows())
	cols := t.NumCols()
	headerCols := make([]bool, cols)
	for c := range cols {
		headerCols[c] = t.IsHeaderColumn(c)
	}
	restructure(t, func() {
		row := make([]Cell, cols)
		for c := range row {
			row[c] = Cell{Colspan: 1, Rowspan: 1, Header: headerCols[c]}
		}
		t.Rows = append(t.Rows[:at], append([][]Cell{row}, t.Rows[at:]...)...)
	}, func(g region) (region, bool) {
		switch {
		case g.r0 >= at:
			g.r0++
			g.r1++
		case g.r1 >= at:
			g.r1++
		}
		return g, true
	})
}

// DeleteRows removes rows r0..r1. Regions lose the deleted rows; a region
// whose anchor row goes keeps its text on the next surviving row.
func (t *Table) DeleteRows(r0, r1 int) bool {
	if r0 < 0 || r1 >= t.NumRows() || r0 > r1 || r1-r0+1 >= t.NumRows() {
		return false
	}
	n := r1 - r0 + 1
	restructure(t, func() {
		t.Rows = append(t.Rows[:r0], t.Rows[r1+1:]...)
	}, func(g region) (region, bool) {
		g.r0, g.r1 = shrinkSpan(g.r0, g.r1, r0, r1, n)
		return g, g.r0 <= g.r1
	})
	return true
}

// InsertColumn adds an empty column at index at. Cells in header rows start
// as headers.
func (t *Table) InsertColumn(at int) {
	at = min(max(at, 0), t.NumCols())
	headerRows := make([]bool, t.NumRows())
	for r := range headerRows {
		headerRows[r] = t.IsHeaderRow(r)
	}
	restructure(t, func() {
		for r := range t.Rows {
			cell := Cell{Colspan: 1, Rowspan: 1, Header: headerRows[r]}
			t.Rows[r] = append(t.Rows[r][:at], append([]Cell{cell}, t.Rows[r][at:]...)...)
		}
	}, func(g region) (region, bool) {
		switch {
		case g.c0 >= at:
			g.c0++
			g.c1++
		case g.c1 >= at:
			g.c1++
		}
		return g, true
	})
}

// DeleteColumns removes columns c0..c1.
func (t *Table) DeleteColumns(c0, c1 int) bool {
	if c0 < 0 || c1 >= t.NumCols() || c0 > c1 || c1-c0+1 >= t.NumCols() {
		return false
	}
	n := c1 - c0 + 1
	restructure(t, func() {
		for r := range t.Rows {
			t.Rows[r] = append(t.Rows[r][:c0], t.Rows[r][c1+1:]...)
		}
	}, func(g region) (region, bool) {
		g.c0, g.c1 = shrinkSpan(g.c0, g.c1, c0, c1, n)
		return g, g.c0 <= g.c1
	})
	return true
}

// shrinkSpan maps the span [a, b] after deleting [d0, d1] (n slots).
func shrinkSpan(a, b, d0, d1, n int) (int, int) {
	switch {
	case b < d0:
		return a, b
	case a > d1:
		return a - n, b - n
	}
	if a >= d0 {
		a = d0
	}
	if b > d1 {
		b -= n
	} else {
		b = d0 - 1
	}
	return a, b
}

// Merge joins the rectangle r0..r1 x c0..c1 into one region. It fails when a
// merged region crosses the rectangle's edge.
func (t *Table) Merge(r0, c0, r1, c1 int) bool {
	if r0 == r1 && c0 == c1 {
		return false
	}
	var texts []string
	for _, g := range collectRegions(t) {
		inside := g.r0 >= r0 && g.r1 <= r1 && g.c0 >= c0 && g.c1 <= c1
		outside := g.r1 < r0 || g.r0 > r1 || g.c1 < c0 || g.c0 > c1
		if !inside && !outside {
			return false
		}
	}
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			cell := t.Cell(r, c)
			if cell == nil {
				return false
			}
			if s := strings.TrimSpace(cell.Text); s != "" && !cell.Covered {
				texts = append(texts, s)
			}
		}
	}
	anchor := t.Cell(r0, c0)
	applyRegion(t, region{
		r0: r0, c0: c0, r1: r1, c1: c1,
		text: strings.Join(texts, " "), header: anchor.Header,
	})
	return true
}

// Split breaks the region anchored at (r, c) into single slots.
func (t *Table) Split(r, c int) bool {
	cell := t.Cell(r, c)
	if cell == nil || !cell.Anchor() {
		return false
	}
	unmerge(t, []region{{
		r0: r, c0: c,
		r1: r + cell.Rowspan - 1, c1: c + cell.Colspan - 1,
		header: cell.Header,
	}})
	return true
}

// IsHeaderRow reports whether every cell of row r is a header.
func (t *Table) IsHeaderRow(r int) bool {
	if r < 0 || r >= t.NumRows() {
		return false
	}
	for _, cell := range t.Rows[r] {
		if !cell.Header {
			return false
		}
	}
	return true
}

// IsHeaderColumn reports whether every cell of column c is a header.
func (t *Table) IsHeaderColumn(c int) bool {
	if c < 0 || c >= t.NumCols() {
		return false
	}
	for _, row := range t.Rows {
		if !row[c].Header {
			return false
		}
	}
	return true
}

// SetHeaderRow marks row r as header or body.
func (t *Table) SetHeaderRow(r int, on bool) {
	for c := range t.Rows[r] {
		t.Rows[r][c].Header = on
	}
}

// SetHeaderColumn marks column c as header or body.
func (t *Table) SetHeaderColumn(c int, on bool) {
	for r := range t.Rows {
		t.Rows[r][c].Header = on
	}
}
