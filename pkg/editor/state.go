package editor

import (
	"github.com/marcus/folio/pkg/schema"
)

// Dispatch applies a transaction to a view.
type Dispatch func(tr *Transaction)

// Command is a predicate/action pair sharing one signature. Called with a nil
// dispatch it only reports whether it applies; with a dispatch it performs
// the change and reports whether it succeeded.
type Command func(state State, dispatch Dispatch, view *View) bool

// PluginKey names a plugin and the slot its state lives in.
type PluginKey string

// StateField is the state a plugin threads through every transaction.
type StateField struct {
	Init  func(state State) any
	Apply func(tr *Transaction, value any, oldState, newState State) any
}

// PluginView is notified after every transaction the view applies.
type PluginView interface {
	Update(view *View, prev State)
	Destroy()
}

// Plugin extends an editor with state and/or a view.
type Plugin struct {
	Key   PluginKey
	State *StateField
	View  func(view *View) PluginView
}

// State is an immutable editor state. Apply returns a new value.
type State struct {
	Doc       *Document
	Selection Selection
	Schema    *schema.Schema

	plugins []Plugin
	fields  map[PluginKey]any
}

// StateConfig configures NewState.
type StateConfig struct {
	Doc       *Document
	Selection Selection
	Schema    *schema.Schema
	Plugins   []Plugin
}

// NewState builds the initial state and initializes plugin fields.
func NewState(cfg StateConfig) State {
	if cfg.Doc == nil {
		cfg.Doc = NewDocument()
	}
	if cfg.Schema == nil {
		cfg.Schema = schema.Default()
	}
	s := State{
		Doc:       cfg.Doc,
		Selection: clampSelection(cfg.Doc, cfg.Selection),
		Schema:    cfg.Schema,
		plugins:   cfg.Plugins,
		fields:    make(map[PluginKey]any, len(cfg.Plugins)),
	}
	for _, p := range cfg.Plugins {
		if p.State != nil && p.State.Init != nil {
			s.fields[p.Key] = p.State.Init(s)
		}
	}
	return s
}

// Plugins returns the configured plugins.
func (s State) Plugins() []Plugin {
	return s.plugins
}

// PluginState returns the value of a plugin's state field.
func (s State) PluginState(key PluginKey) (any, bool) {
	v, ok := s.fields[key]
	return v, ok
}

// Tr starts a transaction from s. The document is copied so commands can
// mutate tr.Doc freely.
func (s State) Tr() *Transaction {
	return &Transaction{
		Doc:       s.Doc.Clone(),
		Selection: s.Selection,
		before:    s,
	}
}

// Apply produces the state after tr.
func (s State) Apply(tr *Transaction) State {
	next := State{
		Doc:       s.Doc,
		Selection: s.Selection,
		Schema:    s.Schema,
		plugins:   s.plugins,
		fields:    make(map[PluginKey]any, len(s.fields)),
	}
	if tr.docChanged {
		next.Doc = tr.Doc
	}
	next.Selection = clampSelection(next.Doc, tr.Selection)

	for _, p := range s.plugins {
		if p.State == nil {
			continue
		}
		val := s.fields[p.Key]
		if p.State.Apply != nil {
			val = p.State.Apply(tr, val, s, next)
		}
		next.fields[p.Key] = val
	}
	return next
}

// Transaction accumulates a document change and/or selection change.
type Transaction struct {
	Doc       *Document
	Selection Selection

	docChanged bool
	meta       map[string]any
	before     State
}

// Before returns the state the transaction started from.
func (tr *Transaction) Before() State {
	return tr.before
}

// SetSelection replaces the selection.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	tr.Selection = sel
	return tr
}

// Changed marks the document as modified.
func (tr *Transaction) Changed() *Transaction {
	tr.docChanged = true
	return tr
}

// DocChanged reports whether the document was modified.
func (tr *Transaction) DocChanged() bool {
	return tr.docChanged
}

// SetMeta attaches metadata for plugins.
func (tr *Transaction) SetMeta(key string, v any) *Transaction {
	if tr.meta == nil {
		tr.meta = make(map[string]any)
	}
	tr.meta[key] = v
	return tr
}

// Meta reads metadata.
func (tr *Transaction) Meta(key string) any {
	return tr.meta[key]
}

// clampSelection keeps a selection pointing at something that exists.
func clampSelection(doc *Document, sel Selection) Selection {
	if doc.Len() == 0 {
		return Selection{}
	}
	sel.Block = min(max(sel.Block, 0), doc.Len()-1)
	b := doc.Block(sel.Block)

	switch {
	case b.Table != nil:
		rows, cols := b.Table.NumRows(), b.Table.NumCols()
		if sel.Kind != CellSelection {
			sel = CellAt(sel.Block, 0, 0)
		}
		sel.Row = min(max(sel.Row, 0), rows-1)
		sel.Col = min(max(sel.Col, 0), cols-1)
		sel.AnchorRow = min(max(sel.AnchorRow, 0), rows-1)
		sel.AnchorCol = min(max(sel.AnchorCol, 0), cols-1)
		if cell := b.Table.Cell(sel.Row, sel.Col); cell != nil {
			sel.Offset = min(max(sel.Offset, 0), runeLen(cell.Text))
		}
	case !b.IsText():
		sel = NodeAt(sel.Block)
	default:
		sel = Caret(sel.Block, min(max(sel.Offset, 0), runeLen(b.Text)))
	}
	return sel
}

func runeLen(s string) int {
	return len([]rune(s))
}
