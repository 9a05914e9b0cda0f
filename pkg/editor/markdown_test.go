package editor

import (
	"strings"
	"testing"

	"github.com/marcus/folio/pkg/schema"
)

const sampleMarkdown = `# Title

Some *text* here.

![cat](/img/cat.png "Cat")

| a | b |
|---|---|
| 1 | 2 |

---
`

func TestParseMarkdown(t *testing.T) {
	doc, err := ParseMarkdown([]byte(sampleMarkdown))
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}

	wantTypes := []schema.NodeType{schema.Heading, schema.Paragraph, schema.Image, schema.Table, schema.HorizontalRule}
	if doc.Len() != len(wantTypes) {
		t.Fatalf("got %d blocks, want %d: %+v", doc.Len(), len(wantTypes), doc.Blocks)
	}
	for i, want := range wantTypes {
		if got := doc.Block(i).Type; got != want {
			t.Errorf("block %d type = %s, want %s", i, got, want)
		}
	}

	if got := doc.Block(1).Text; got != "Some text here." {
		t.Errorf("paragraph text = %q", got)
	}
	img := doc.Block(2)
	if img.Attr("src") != "/img/cat.png" || img.Attr("alt") != "cat" || img.Attr("title") != "Cat" {
		t.Errorf("image attrs = %v", img.Attrs)
	}
	tbl := doc.Block(3).Table
	if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
		t.Fatalf("table = %dx%d", tbl.NumRows(), tbl.NumCols())
	}
	if !tbl.IsHeaderRow(0) || tbl.IsHeaderRow(1) || tbl.Cell(1, 1).Text != "2" {
		t.Errorf("table rows = %+v", tbl.Rows)
	}
}

func TestMarkdownExport(t *testing.T) {
	doc, err := ParseMarkdown([]byte(sampleMarkdown))
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}

	out := Markdown(doc)
	for _, want := range []string{
		"# Title\n",
		`![cat](/img/cat.png "Cat")`,
		"| a | b |\n| --- | --- |\n| 1 | 2 |\n",
		"---\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
}

func TestParseEmptyMarkdown(t *testing.T) {
	doc, err := ParseMarkdown(nil)
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}
	if doc.Len() != 1 || doc.Block(0).Type != schema.Paragraph {
		t.Errorf("empty doc = %+v", doc.Blocks)
	}
}

func TestCodeBlockLines(t *testing.T) {
	doc, err := ParseMarkdown([]byte("```go\nx := 1\ny := 2\n```\n"))
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}
	if doc.Len() != 2 || doc.Block(1).Text != "y := 2" || doc.Block(0).Attr("language") != "go" {
		t.Fatalf("code blocks = %+v", doc.Blocks)
	}
	if out := Markdown(doc); out != "```go\nx := 1\ny := 2\n```\n" {
		t.Errorf("export = %q", out)
	}
}
