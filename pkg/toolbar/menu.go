package toolbar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marcus/folio/pkg/editor"
)

// ErrInvalidItem is returned by Validate for malformed menu items.
var ErrInvalidItem = errors.New("invalid menu item")

// Kind discriminates the menu item variants.
type Kind int

const (
	// KindButton runs its command when activated.
	KindButton Kind = iota
	// KindDropdown opens a list of child buttons.
	KindDropdown
	// KindModal opens a form anchored to the button.
	KindModal
)

func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindDropdown:
		return "dropdown"
	case KindModal:
		return "modal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MenuItem is one entry of a toolbar. Build items with Button, Dropdown or
// ModalTrigger.
type MenuItem struct {
	Kind  Kind
	Title string
	// Icon is a key into the icon set; unknown keys render verbatim.
	Icon string
	// VisibleTitle shows the title next to the icon on the bar.
	VisibleTitle bool

	Command editor.Command
	// Enabled overrides Command for the enabled check.
	Enabled  editor.Command
	IsActive func(view *editor.View) bool

	Items []MenuItem
	Modal *ModalFormProps
}

// Button creates a button item.
func Button(title, icon string, cmd editor.Command) MenuItem {
	return MenuItem{Kind: KindButton, Title: title, Icon: icon, Command: cmd}
}

// Dropdown creates a dropdown holding items.
func Dropdown(title, icon string, items ...MenuItem) MenuItem {
	return MenuItem{Kind: KindDropdown, Title: title, Icon: icon, Items: items}
}

// ModalTrigger creates a button that opens a form.
func ModalTrigger(title, icon string, props ModalFormProps) MenuItem {
	return MenuItem{Kind: KindModal, Title: title, Icon: icon, Modal: &props}
}

// WithActive sets the active predicate.
func (m MenuItem) WithActive(fn func(view *editor.View) bool) MenuItem {
	m.IsActive = fn
	return m
}

// WithEnabled sets the enabled command.
func (m MenuItem) WithEnabled(cmd editor.Command) MenuItem {
	m.Enabled = cmd
	return m
}

// WithVisibleTitle shows the title on the bar.
func (m MenuItem) WithVisibleTitle() MenuItem {
	m.VisibleTitle = true
	return m
}

// Validate rejects items whose shape does not match their kind.
func (m MenuItem) Validate() error {
	if m.Title == "" && m.Icon == "" {
		return fmt.Errorf("%w: %s needs a title or an icon", ErrInvalidItem, m.Kind)
	}
	switch m.Kind {
	case KindButton:
		if len(m.Items) > 0 {
			return fmt.Errorf("%w: button %q has child items", ErrInvalidItem, m.Title)
		}
		if m.Modal != nil {
			return fmt.Errorf("%w: button %q has modal props", ErrInvalidItem, m.Title)
		}
	case KindDropdown:
		if len(m.Items) == 0 {
			return fmt.Errorf("%w: dropdown %q has no items", ErrInvalidItem, m.Title)
		}
		if m.Modal != nil {
			return fmt.Errorf("%w: dropdown %q has modal props", ErrInvalidItem, m.Title)
		}
		for _, child := range m.Items {
			if child.Kind != KindButton {
				return fmt.Errorf("%w: dropdown %q child %q is a %s", ErrInvalidItem, m.Title, child.Title, child.Kind)
			}
			if err := child.Validate(); err != nil {
				return fmt.Errorf("dropdown %q: %w", m.Title, err)
			}
		}
	case KindModal:
		if m.Modal == nil {
			return fmt.Errorf("%w: modal trigger %q has no props", ErrInvalidItem, m.Title)
		}
		if len(m.Items) > 0 {
			return fmt.Errorf("%w: modal trigger %q has child items", ErrInvalidItem, m.Title)
		}
		if err := m.Modal.validate(); err != nil {
			return fmt.Errorf("modal %q: %w", m.Title, err)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidItem, int(m.Kind))
	}
	return nil
}

// EnabledIn reports whether the item can run against the view's state.
func (m MenuItem) EnabledIn(view *editor.View) bool {
	if view == nil {
		return false
	}
	switch {
	case m.Enabled != nil:
		return m.Enabled(view.State(), nil, view)
	case m.Command != nil:
		return m.Command(view.State(), nil, view)
	}
	return true
}

// ActiveIn reports whether the item is highlighted.
func (m MenuItem) ActiveIn(view *editor.View) bool {
	if m.IsActive == nil || view == nil {
		return false
	}
	return m.IsActive(view)
}

// Run invokes the command with the view's dispatch and re-focuses the view
// on success.
func (m MenuItem) Run(view *editor.View) bool {
	if m.Command == nil || view == nil {
		return false
	}
	if !m.Command(view.State(), view.Dispatch, view) {
		return false
	}
	view.Focus()
	return true
}

// Leaf is a runnable entry reachable from a toolbar.
type Leaf struct {
	// Path holds the titles from the top-level item down to the leaf.
	Path  []string
	Index int
	// Child is the index inside a dropdown, or -1 for top-level items.
	Child int
	Item  MenuItem
}

// Label joins the path for display.
func (l Leaf) Label() string {
	return strings.Join(l.Path, " › ")
}

// Flatten lists every runnable leaf of items in display order.
func Flatten(items []MenuItem) []Leaf {
	var leaves []Leaf
	for i, it := range items {
		if it.Kind != KindDropdown {
			leaves = append(leaves, Leaf{Path: []string{it.Title}, Index: i, Child: -1, Item: it})
			continue
		}
		for j, child := range it.Items {
			leaves = append(leaves, Leaf{Path: []string{it.Title, child.Title}, Index: i, Child: j, Item: child})
		}
	}
	return leaves
}

// FieldType selects the input a form field renders as.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldHidden   FieldType = "hidden"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
)

// FormField describes one input of a modal form.
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Required    bool
	Placeholder string
	// Min and Max bound a FieldNumber value when Max is above zero.
	Min, Max int
}

// FormData maps field names to values.
type FormData map[string]string

// ModalFormProps configures a modal form.
type ModalFormProps struct {
	Title  string
	Fields []FormField
	// InitialData seeds the form. It runs off the UI loop.
	InitialData func(ctx context.Context, state editor.State) (FormData, error)
	// Fallback seeds the form when there is no InitialData or it fails.
	Fallback func(state editor.State) FormData
	// OnSubmit runs off the UI loop; the returned command is applied to the
	// view back on the loop.
	OnSubmit func(ctx context.Context, state editor.State, data FormData) (editor.Command, error)
}

func (p *ModalFormProps) validate() error {
	seen := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field without a name", ErrInvalidItem)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidItem, f.Name)
		}
		seen[f.Name] = true
		switch f.Type {
		case "", FieldText, FieldHidden, FieldEmail, FieldURL, FieldTextarea:
		case FieldNumber:
			if f.Max > 0 && f.Min > f.Max {
				return fmt.Errorf("%w: field %q has min %d above max %d", ErrInvalidItem, f.Name, f.Min, f.Max)
			}
		default:
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidItem, f.Name, f.Type)
		}
	}
	return nil
}
