package editor

import (
	"maps"
	"slices"

	"github.com/marcus/folio/pkg/schema"
)

// Mark styles the runes [From, To) of a block's text.
type Mark struct {
	Type  schema.MarkType
	From  int
	To    int
	Attrs map[string]string
}

// Attr returns an attribute value or "".
func (m Mark) Attr(key string) string {
	if m.Attrs == nil {
		return ""
	}
	return m.Attrs[key]
}

// MarkAt returns the mark of type t covering rune offset at.
func (b Block) MarkAt(t schema.MarkType, at int) (Mark, bool) {
	for _, m := range b.Marks {
		if m.Type == t && m.From <= at && at < m.To {
			return m, true
		}
	}
	return Mark{}, false
}

func cloneMarks(marks []Mark) []Mark {
	if marks == nil {
		return nil
	}
	out := make([]Mark, len(marks))
	for i, m := range marks {
		out[i] = m
		out[i].Attrs = maps.Clone(m.Attrs)
	}
	return out
}

// insertRunes moves marks for n runes inserted at offset at. Marks are not
// inclusive: text typed at either edge stays outside.
func insertRunes(marks []Mark, at, n int) {
	for i := range marks {
		m := &marks[i]
		switch {
		case m.From >= at:
			m.From += n
			m.To += n
		case m.To > at:
			m.To += n
		}
	}
}

// deleteRunes shrinks marks for the runes [at, at+n) being removed and drops
// the ones left empty.
func deleteRunes(marks []Mark, at, n int) []Mark {
	shift := func(p int) int {
		switch {
		case p <= at:
			return p
		case p < at+n:
			return at
		default:
			return p - n
		}
	}
	out := marks[:0]
	for _, m := range marks {
		m.From, m.To = shift(m.From), shift(m.To)
		if m.From < m.To {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// splitMarks cuts marks at rune offset at into the head's and the tail's.
// Tail offsets start at zero.
func splitMarks(marks []Mark, at int) (head, tail []Mark) {
	for _, m := range marks {
		if m.From < at {
			h := m
			h.To = min(m.To, at)
			head = append(head, h)
		}
		if m.To > at {
			t := m
			t.From = max(m.From, at) - at
			t.To = m.To - at
			t.Attrs = maps.Clone(m.Attrs)
			tail = append(tail, t)
		}
	}
	return head, tail
}

// appendMarks adds src to dst shifted by offset runes.
func appendMarks(dst, src []Mark, offset int) []Mark {
	for _, m := range src {
		m.From += offset
		m.To += offset
		dst = append(dst, m)
	}
	return dst
}

func sortMarks(marks []Mark) {
	slices.SortStableFunc(marks, func(a, b Mark) int { return a.From - b.From })
}

// InsertLink returns a command that types text at a text caret as a link.
// Empty text falls back to the href.
func InsertLink(text string, attrs map[string]string) Command {
	return func(state State, dispatch Dispatch, _ *View) bool {
		sel := state.Selection
		if sel.Kind != TextSelection {
			return false
		}
		b := state.Doc.Block(sel.Block)
		if b == nil || !b.IsText() || b.Type == schema.CodeBlock {
			return false
		}
		checked, err := state.Schema.MarkAttrs(schema.Link, attrs)
		if err != nil || checked["href"] == "" {
			return false
		}
		if text == "" {
			text = checked["href"]
		}
		if dispatch == nil {
			return true
		}
		tr := state.Tr()
		nb := tr.Doc.Block(sel.Block)
		runes := []rune(nb.Text)
		at := min(sel.Offset, len(runes))
		n := runeLen(text)
		nb.Text = string(runes[:at]) + text + string(runes[at:])
		insertRunes(nb.Marks, at, n)
		nb.Marks = append(nb.Marks, Mark{Type: schema.Link, From: at, To: at + n, Attrs: checked})
		sortMarks(nb.Marks)
		sel.Offset = at + n
		dispatch(tr.Changed().SetSelection(sel))
		return true
	}
}
