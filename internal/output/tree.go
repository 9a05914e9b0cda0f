package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/schema"
)

// TreeNode represents a node in a tree structure for rendering
type TreeNode struct {
	ID       string     `json:"id,omitempty"`
	Title    string     `json:"title"`
	Kind     string     `json:"kind,omitempty"`
	Detail   string     `json:"detail,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

// TreeRenderOptions configures tree rendering behavior
type TreeRenderOptions struct {
	MaxDepth   int  // 0 = unlimited
	ShowKind   bool // Whether to show the node kind
	ShowDetail bool // Whether to show the detail column
}

// kindMark returns an indicator symbol for block kinds
func kindMark(kind string) string {
	switch schema.NodeType(kind) {
	case schema.Image:
		return " \u25a3" // ▣
	case schema.Table:
		return " \u25a6" // ▦
	default:
		return ""
	}
}

// RenderTree renders a tree starting from a single root node
// Returns the complete tree as a string (without the root - just children)
func RenderTree(root TreeNode, opts TreeRenderOptions) string {
	lines := renderTreeNodes(root.Children, opts, 0, "")
	return strings.Join(lines, "\n")
}

// RenderTreeLines renders multiple root nodes and returns individual lines
func RenderTreeLines(roots []TreeNode, opts TreeRenderOptions) []string {
	return renderTreeNodes(roots, opts, 0, "")
}

func renderTreeNodes(nodes []TreeNode, opts TreeRenderOptions, depth int, prefix string) []string {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	var lines []string

	for i, node := range nodes {
		isLast := i == len(nodes)-1

		connector := "\u251c\u2500\u2500 " // ├──
		if isLast {
			connector = "\u2514\u2500\u2500 " // └──
		}

		var parts []string
		if opts.ShowKind && node.Kind != "" {
			parts = append(parts, node.Kind)
		}
		if node.ID != "" {
			parts = append(parts, node.ID+":")
		}
		parts = append(parts, node.Title+kindMark(node.Kind))
		if opts.ShowDetail && node.Detail != "" {
			parts = append(parts, "["+node.Detail+"]")
		}

		lines = append(lines, prefix+connector+strings.Join(parts, " "))

		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "\u2502   " // │
		}
		lines = append(lines, renderTreeNodes(node.Children, opts, depth+1, childPrefix)...)
	}

	return lines
}

// Outline builds the heading tree of doc. Blocks nest under the closest
// heading above them with a lower level; text paragraphs are left out.
func Outline(doc *editor.Document) []TreeNode {
	type frame struct {
		level int
		node  *TreeNode
	}
	root := &TreeNode{}
	stack := []frame{{level: 0, node: root}}

	for i := 0; i < doc.Len(); i++ {
		b := doc.Block(i)
		switch b.Type {
		case schema.Heading:
			level, err := strconv.Atoi(b.Attr("level"))
			if err != nil || level < 1 {
				level = 1
			}
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, TreeNode{Kind: string(b.Type), Title: b.Text})
			stack = append(stack, frame{level: level, node: &parent.Children[len(parent.Children)-1]})
		case schema.Image:
			title := b.Attr("alt")
			if title == "" {
				title = b.Attr("src")
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, TreeNode{Kind: string(b.Type), Title: title, Detail: b.Attr("src")})
		case schema.Table:
			parent := stack[len(stack)-1].node
			detail := fmt.Sprintf("%dx%d", b.Table.NumRows(), b.Table.NumCols())
			parent.Children = append(parent.Children, TreeNode{Kind: string(b.Type), Title: "table", Detail: detail})
		}
	}
	return root.Children
}
