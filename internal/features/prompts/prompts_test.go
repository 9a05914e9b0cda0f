package prompts

import (
	"context"
	"testing"

	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/schema"
	"github.com/marcus/folio/pkg/toolbar"
	"github.com/marcus/folio/pkg/toolbar/position"
	"github.com/marcus/folio/pkg/toolbar/toolbartest"
)

func testView(sel editor.Selection) *editor.View {
	doc := editor.NewDocument(
		editor.Block{Type: schema.Paragraph, Text: "read  first"},
		editor.Block{Type: schema.Image, Attrs: map[string]string{"src": "/media/cat"}},
	)
	v := editor.NewView(editor.NewState(editor.StateConfig{Doc: doc, Selection: sel}), 80)
	v.SetViewport(position.Point{}, position.Size{W: 80, H: 24})
	return v
}

func TestTablePromptDefaults(t *testing.T) {
	env := toolbar.NewEnv(toolbartest.NewScheduler(), nil)
	v := testView(editor.Caret(0, 0))
	p := toolbar.NewPrompt(env, "table")
	defer p.Destroy()

	if _, err := p.Open(TableProps(), v); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := p.Modal().Data(); got["rows"] != "3" || got["cols"] != "3" {
		t.Errorf("seeded %v, want 3x3", got)
	}
}

func TestTablePromptSubmit(t *testing.T) {
	tests := []struct {
		rows, cols string
		ok         bool
	}{
		{"2", "5", true},
		{" 8 ", "1", true},
		{"9", "2", false},
		{"0", "2", false},
		{"2", "x", false},
	}
	for _, tt := range tests {
		v := testView(editor.Caret(0, 0))
		cmd, err := TableProps().OnSubmit(context.Background(), v.State(), toolbar.FormData{"rows": tt.rows, "cols": tt.cols})
		if !tt.ok {
			if err == nil {
				t.Errorf("%sx%s: expected an error", tt.rows, tt.cols)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%sx%s: %v", tt.rows, tt.cols, err)
		}
		v.Run(cmd)
		_, tbl, ok := editor.SelectedTable(v.State())
		if !ok {
			t.Fatalf("%sx%s: no table selected", tt.rows, tt.cols)
		}
		if tbl.NumRows() < 1 || tbl.NumRows() > MaxTableSize || tbl.NumCols() < 1 {
			t.Errorf("%sx%s: got %dx%d", tt.rows, tt.cols, tbl.NumRows(), tbl.NumCols())
		}
	}
}

func TestLinkPromptSubmit(t *testing.T) {
	v := testView(editor.Caret(0, 5))

	cmd, err := LinkProps().OnSubmit(context.Background(), v.State(), toolbar.FormData{
		"href":  " ../guide.md ",
		"text":  "",
		"title": "Guide",
	})
	if err != nil {
		t.Fatalf("OnSubmit failed: %v", err)
	}
	if !v.Run(cmd) {
		t.Fatal("link did not apply")
	}
	b := v.State().Doc.Block(0)
	if b.Text != "read ../guide.md first" {
		t.Errorf("text = %q", b.Text)
	}
	m, ok := b.MarkAt(schema.Link, 5)
	if !ok || m.Attr("href") != "../guide.md" || m.Attr("title") != "Guide" {
		t.Errorf("link = %+v, %v", m, ok)
	}
}

func TestCanInsertLink(t *testing.T) {
	if !CanInsertLink(testView(editor.Caret(0, 0)).State()) {
		t.Error("caret in a paragraph should accept a link")
	}
	if CanInsertLink(testView(editor.NodeAt(1)).State()) {
		t.Error("selected image should not accept a link")
	}
}
