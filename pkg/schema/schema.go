// Package schema declares the node and mark types a folio document may hold.
package schema

import (
	"fmt"
	"sort"
)

// NodeType names a node kind.
type NodeType string

const (
	Doc            NodeType = "doc"
	Paragraph      NodeType = "paragraph"
	Heading        NodeType = "heading"
	Blockquote     NodeType = "blockquote"
	CodeBlock      NodeType = "code_block"
	HorizontalRule NodeType = "horizontal_rule"
	BulletList     NodeType = "bullet_list"
	OrderedList    NodeType = "ordered_list"
	ListItem       NodeType = "list_item"
	Image          NodeType = "image"
	HardBreak      NodeType = "hard_break"
	Table          NodeType = "table"
	TableRow       NodeType = "table_row"
	TableCell      NodeType = "table_cell"
	TableHeader    NodeType = "table_header"
	Text           NodeType = "text"
)

// MarkType names an inline mark.
type MarkType string

const (
	Strong    MarkType = "strong"
	Italic    MarkType = "italic"
	Underline MarkType = "underline"
	Code      MarkType = "code"
	Link      MarkType = "link"
)

// AttrSpec describes one attribute. An attribute without a default is
// required.
type AttrSpec struct {
	Default    string
	HasDefault bool
}

// Optional returns an attribute spec with a default value.
func Optional(def string) AttrSpec {
	return AttrSpec{Default: def, HasDefault: true}
}

// Required returns an attribute spec that must be supplied.
func Required() AttrSpec {
	return AttrSpec{}
}

// NodeSpec describes a node type.
type NodeSpec struct {
	Name      NodeType
	Group     string
	Inline    bool
	Draggable bool
	Attrs     map[string]AttrSpec
}

// MarkSpec describes a mark type.
type MarkSpec struct {
	Name  MarkType
	Attrs map[string]AttrSpec
}

// Schema is an immutable set of node and mark specs.
type Schema struct {
	nodes map[NodeType]NodeSpec
	marks map[MarkType]MarkSpec
}

// New builds a schema from specs.
func New(nodes []NodeSpec, marks []MarkSpec) *Schema {
	s := &Schema{
		nodes: make(map[NodeType]NodeSpec, len(nodes)),
		marks: make(map[MarkType]MarkSpec, len(marks)),
	}
	for _, n := range nodes {
		s.nodes[n.Name] = n
	}
	for _, m := range marks {
		s.marks[m.Name] = m
	}
	return s
}

// Default returns the schema folio documents use.
func Default() *Schema {
	return New([]NodeSpec{
		{Name: Doc},
		{Name: Paragraph, Group: "block"},
		{Name: Heading, Group: "block", Attrs: map[string]AttrSpec{"level": Optional("1")}},
		{Name: Blockquote, Group: "block"},
		{Name: CodeBlock, Group: "block", Attrs: map[string]AttrSpec{"language": Optional("")}},
		{Name: HorizontalRule, Group: "block"},
		{Name: BulletList, Group: "block"},
		{Name: OrderedList, Group: "block", Attrs: map[string]AttrSpec{"order": Optional("1")}},
		{Name: ListItem},
		{Name: Image, Group: "inline", Inline: true, Draggable: true, Attrs: map[string]AttrSpec{
			"src":   Required(),
			"alt":   Optional(""),
			"title": Optional(""),
		}},
		{Name: HardBreak, Group: "inline", Inline: true},
		{Name: Table, Group: "block"},
		{Name: TableRow},
		{Name: TableCell, Attrs: map[string]AttrSpec{"colspan": Optional("1"), "rowspan": Optional("1")}},
		{Name: TableHeader, Attrs: map[string]AttrSpec{"colspan": Optional("1"), "rowspan": Optional("1")}},
		{Name: Text, Group: "inline", Inline: true},
	}, []MarkSpec{
		{Name: Strong},
		{Name: Italic},
		{Name: Underline},
		{Name: Code},
		{Name: Link, Attrs: map[string]AttrSpec{"href": Required(), "title": Optional("")}},
	})
}

// Node returns the NodeSpec for t.
func (s *Schema) Node(t NodeType) (NodeSpec, bool) {
	spec, ok := s.nodes[t]
	return spec, ok
}

// Mark returns the MarkSpec for t.
func (s *Schema) Mark(t MarkType) (MarkSpec, bool) {
	spec, ok := s.marks[t]
	return spec, ok
}

// NodeTypes lists the known node types in name order.
func (s *Schema) NodeTypes() []NodeType {
	out := make([]NodeType, 0, len(s.nodes))
	for t := range s.nodes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Attrs merges attrs over the node type's defaults. Unknown attributes are
// dropped; a missing required attribute is an error.
func (s *Schema) Attrs(t NodeType, attrs map[string]string) (map[string]string, error) {
	spec, ok := s.nodes[t]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", t)
	}
	return fillAttrs(string(t), spec.Attrs, attrs)
}

// MarkAttrs is Attrs for marks.
func (s *Schema) MarkAttrs(t MarkType, attrs map[string]string) (map[string]string, error) {
	spec, ok := s.marks[t]
	if !ok {
		return nil, fmt.Errorf("unknown mark type %q", t)
	}
	return fillAttrs(string(t), spec.Attrs, attrs)
}

func fillAttrs(name string, specs map[string]AttrSpec, attrs map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(specs))
	for key, spec := range specs {
		if v, ok := attrs[key]; ok {
			out[key] = v
			continue
		}
		if !spec.HasDefault {
			return nil, fmt.Errorf("%s: missing required attribute %q", name, key)
		}
		out[key] = spec.Default
	}
	return out, nil
}
