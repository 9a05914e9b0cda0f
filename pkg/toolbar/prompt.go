package toolbar

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/overlay"
	"github.com/marcus/folio/pkg/toolbar/position"
)

// Prompt is a modal form anchored to the editor selection instead of a
// toolbar button. It backs editor-level dialogs such as table and link
// insertion.
type Prompt struct {
	modal *Modal
	layer *overlay.Layer
}

// NewPrompt mounts a prompt layer on env's surface. It draws nothing until
// opened.
func NewPrompt(env *Env, id string) *Prompt {
	p := &Prompt{modal: NewModal(env, id)}
	p.layer = env.Surface.Mount(id, func() []overlay.Piece {
		if piece, ok := p.modal.Piece(); ok {
			return []overlay.Piece{piece}
		}
		return nil
	})
	return p
}

// Open shows props below the current selection of view.
func (p *Prompt) Open(props *ModalFormProps, view *editor.View) (tea.Cmd, error) {
	if props == nil || view == nil {
		return nil, fmt.Errorf("%w: prompt needs props and a view", ErrInvalidItem)
	}
	if err := props.validate(); err != nil {
		return nil, err
	}
	if !p.layer.Mounted() {
		return nil, fmt.Errorf("prompt %s: destroyed", p.layer.ID())
	}
	return p.modal.Open(props, view, func() (position.Rect, bool) {
		r, ok := view.SelectionRect()
		if !ok {
			return position.Rect{}, false
		}
		return r.Translate(view.Scroll()), true
	}), nil
}

// Modal returns the form behind the prompt.
func (p *Prompt) Modal() *Modal {
	return p.modal
}

// IsOpen reports whether the form is shown.
func (p *Prompt) IsOpen() bool {
	return p.modal.IsOpen()
}

// Destroy closes the form and unmounts the layer.
func (p *Prompt) Destroy() {
	p.modal.Close()
	p.layer.Remove()
}
