package editor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/marcus/folio/pkg/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// ParseMarkdown builds a document from CommonMark with GFM tables. Links
// become marks and other inline styling is flattened to text. Code blocks
// become one block per line.
func ParseMarkdown(src []byte) (*Document, error) {
	root := markdown.Parser().Parse(text.NewReader(src))
	if root == nil {
		return nil, fmt.Errorf("parse markdown: empty tree")
	}
	doc := &Document{}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		appendNode(doc, n, src, "")
	}
	if doc.Len() == 0 {
		doc.Append(Block{Type: schema.Paragraph})
	}
	return doc, nil
}

func appendNode(doc *Document, n ast.Node, src []byte, wrap schema.NodeType) {
	switch node := n.(type) {
	case *ast.Heading:
		body, marks := inlineContent(node, src)
		doc.Append(Block{
			Type:  schema.Heading,
			Text:  body,
			Attrs: map[string]string{"level": strconv.Itoa(node.Level)},
			Marks: marks,
		})
	case *ast.Paragraph, *ast.TextBlock:
		appendParagraph(doc, n, src, wrap)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		lang := ""
		if fenced, ok := n.(*ast.FencedCodeBlock); ok {
			lang = string(fenced.Language(src))
		}
		for i := range lines.Len() {
			seg := lines.At(i)
			doc.Append(Block{
				Type:  schema.CodeBlock,
				Text:  strings.TrimRight(string(seg.Value(src)), "\n"),
				Attrs: map[string]string{"language": lang},
			})
		}
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			appendNode(doc, c, src, schema.Blockquote)
		}
	case *ast.List:
		kind := schema.BulletList
		if node.IsOrdered() {
			kind = schema.OrderedList
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				appendNode(doc, c, src, kind)
			}
		}
	case *ast.ThematicBreak:
		doc.Append(Block{Type: schema.HorizontalRule})
	case *east.Table:
		doc.Append(Block{Type: schema.Table, Table: parseTable(node, src)})
	}
}

// appendParagraph emits the paragraph's text and one image block per image it
// holds.
func appendParagraph(doc *Document, n ast.Node, src []byte, wrap schema.NodeType) {
	var images []*ast.Image
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := c.(*ast.Image); ok && entering {
			images = append(images, img)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if body, marks := inlineContent(n, src); body != "" {
		kind := schema.Paragraph
		if wrap != "" {
			kind = wrap
		}
		doc.Append(Block{Type: kind, Text: body, Marks: marks})
	}
	for _, img := range images {
		doc.Append(Block{Type: schema.Image, Attrs: map[string]string{
			"src":   string(img.Destination),
			"alt":   inlineText(img, src),
			"title": string(img.Title),
		}})
	}
}

func inlineText(n ast.Node, src []byte) string {
	text, _ := inlineContent(n, src)
	return text
}

// inlineContent flattens n to text and keeps its links as marks over rune
// offsets of the trimmed text.
func inlineContent(n ast.Node, src []byte) (string, []Mark) {
	var (
		sb    strings.Builder
		marks []Mark
		open  []int
	)
	pos := 0
	write := func(b []byte) {
		sb.Write(b)
		pos += utf8.RuneCount(b)
	}
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if link, ok := c.(*ast.Link); ok {
			if entering {
				open = append(open, pos)
				return ast.WalkContinue, nil
			}
			from := open[len(open)-1]
			open = open[:len(open)-1]
			if pos > from {
				attrs := map[string]string{"href": string(link.Destination)}
				if len(link.Title) > 0 {
					attrs["title"] = string(link.Title)
				}
				marks = append(marks, Mark{Type: schema.Link, From: from, To: pos, Attrs: attrs})
			}
			return ast.WalkContinue, nil
		}
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Image:
			if c != n {
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				write([]byte{' '})
			}
		case *ast.String:
			write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	raw := sb.String()
	lead := utf8.RuneCountInString(raw) - utf8.RuneCountInString(strings.TrimLeftFunc(raw, unicode.IsSpace))
	text := strings.TrimSpace(raw)
	end := utf8.RuneCountInString(text)
	var out []Mark
	for _, m := range marks {
		m.From = min(max(m.From-lead, 0), end)
		m.To = min(max(m.To-lead, 0), end)
		if m.From < m.To {
			out = append(out, m)
		}
	}
	sortMarks(out)
	return text, out
}

// inlineMarkdown renders text with its link marks as Markdown links.
func inlineMarkdown(text string, marks []Mark) string {
	if len(marks) == 0 {
		return text
	}
	runes := []rune(text)
	var sb strings.Builder
	at := 0
	for _, m := range marks {
		if m.Type != schema.Link || m.From < at || m.To > len(runes) {
			continue
		}
		sb.WriteString(string(runes[at:m.From]))
		fmt.Fprintf(&sb, "[%s](%s", string(runes[m.From:m.To]), m.Attr("href"))
		if title := m.Attr("title"); title != "" {
			fmt.Fprintf(&sb, " %q", title)
		}
		sb.WriteString(")")
		at = m.To
	}
	sb.WriteString(string(runes[at:]))
	return sb.String()
}

func parseTable(n *east.Table, src []byte) *Table {
	var rows [][]Cell
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		_, header := r.(*east.TableHeader)
		var row []Cell
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, Cell{Text: inlineText(c, src), Header: header, Colspan: 1, Rowspan: 1})
		}
		rows = append(rows, row)
	}
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	t := NewTable(max(len(rows), 1), max(cols, 1))
	for r, row := range rows {
		copy(t.Rows[r], row)
	}
	return t
}

// Markdown serializes doc. Merged cells export as their anchor text with the
// covered slots left empty.
func Markdown(doc *Document) string {
	var sb strings.Builder
	for i := 0; i < doc.Len(); i++ {
		b := doc.Block(i)
		if i > 0 {
			sb.WriteString("\n")
		}
		switch b.Type {
		case schema.Heading:
			level, err := strconv.Atoi(b.Attr("level"))
			if err != nil || level < 1 {
				level = 1
			}
			fmt.Fprintf(&sb, "%s %s\n", strings.Repeat("#", min(level, 6)), inlineMarkdown(b.Text, b.Marks))
		case schema.Blockquote:
			fmt.Fprintf(&sb, "> %s\n", inlineMarkdown(b.Text, b.Marks))
		case schema.BulletList, schema.ListItem:
			fmt.Fprintf(&sb, "- %s\n", inlineMarkdown(b.Text, b.Marks))
		case schema.OrderedList:
			fmt.Fprintf(&sb, "1. %s\n", inlineMarkdown(b.Text, b.Marks))
		case schema.HorizontalRule:
			sb.WriteString("---\n")
		case schema.Image:
			title := ""
			if t := b.Attr("title"); t != "" {
				title = fmt.Sprintf(" %q", t)
			}
			fmt.Fprintf(&sb, "![%s](%s%s)\n", b.Attr("alt"), b.Attr("src"), title)
		case schema.CodeBlock:
			fmt.Fprintf(&sb, "```%s\n", b.Attr("language"))
			for ; i < doc.Len() && doc.Block(i).Type == schema.CodeBlock; i++ {
				sb.WriteString(doc.Block(i).Text)
				sb.WriteString("\n")
			}
			i--
			sb.WriteString("```\n")
		case schema.Table:
			writeTable(&sb, b.Table)
		default:
			sb.WriteString(inlineMarkdown(b.Text, b.Marks))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeTable(sb *strings.Builder, t *Table) {
	if t == nil || t.NumRows() == 0 {
		return
	}
	writeRow := func(row []Cell) {
		sb.WriteString("|")
		for _, cell := range row {
			sb.WriteString(" ")
			sb.WriteString(strings.ReplaceAll(cell.Text, "|", `\|`))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	writeRow(t.Rows[0])
	sb.WriteString("|")
	for range t.NumCols() {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
}
