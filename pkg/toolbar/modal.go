package toolbar

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/overlay"
	"github.com/marcus/folio/pkg/toolbar/position"
)

const (
	modalFormWidth = 40
	confirmKey     = "_confirm"
)

// Modal is a form overlay anchored to the button that opened it.
type Modal struct {
	env *Env
	id  string

	props   *ModalFormProps
	view    *editor.View
	trigger func() (position.Rect, bool)

	open    bool
	seq     uint64
	loading bool
	err     error

	form    *huh.Form
	values  map[string]*string
	confirm bool
	data    FormData

	pos  position.Position
	size position.Size

	release        []func()
	cancelThrottle func()
	cancelFetch    context.CancelFunc
}

// NewModal creates a closed modal. id prefixes its piece and hit IDs.
func NewModal(env *Env, id string) *Modal {
	return &Modal{env: env, id: id, pos: position.Offscreen}
}

// IsOpen reports whether the form is shown.
func (m *Modal) IsOpen() bool {
	return m.open
}

// Loading reports whether initial data is still being fetched.
func (m *Modal) Loading() bool {
	return m.open && m.loading
}

// Data returns a copy of the current form data.
func (m *Modal) Data() FormData {
	out := make(FormData, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	for k, p := range m.values {
		out[k] = *p
	}
	return out
}

// Position returns the last computed placement.
func (m *Modal) Position() position.Position {
	return m.pos
}

// Open shows the form for props. trigger reports the opening button's page
// rectangle. Any open form is closed first.
func (m *Modal) Open(props *ModalFormProps, view *editor.View, trigger func() (position.Rect, bool)) tea.Cmd {
	if props == nil || view == nil {
		return nil
	}
	m.Close()

	m.seq++
	m.open = true
	m.props = props
	m.view = view
	m.trigger = trigger
	m.data = FormData{}
	m.err = nil
	m.pos = position.Offscreen
	m.size = position.Size{}

	m.release = append(m.release,
		m.env.Clicks.Add(m.handleClick),
		m.env.Keys.Add(m.handleKey),
		m.env.Messages.Add(m.handleMsg),
		m.env.Viewport.Add(m.handleViewport),
	)

	if props.InitialData == nil {
		if props.Fallback != nil {
			m.data = props.Fallback(view.State())
		}
		m.buildForm()
		m.reposition()
		return quietly(m.form.Init())
	}

	m.loading = true
	m.buildForm()
	m.reposition()
	return m.fetch(view.State())
}

func (m *Modal) fetch(state editor.State) tea.Cmd {
	seq := m.seq
	props := m.props
	ctx, cancel := context.WithTimeout(m.env.context(), m.env.FetchTimeout)
	m.cancelFetch = cancel
	return func() tea.Msg {
		defer cancel()
		data, err := props.InitialData(ctx, state)
		return AsyncMsg{deliver: func() tea.Cmd {
			return m.seed(seq, state, data, err)
		}}
	}
}

// seed applies fetched initial data if the form that asked for it is still
// the one being shown.
func (m *Modal) seed(seq uint64, state editor.State, data FormData, err error) tea.Cmd {
	if !m.open || m.seq != seq {
		m.env.Logger.Debug("modal: dropping stale initial data", "modal", m.id, "seq", seq)
		return nil
	}
	m.loading = false
	if err != nil {
		m.env.Logger.Warn("modal: initial data failed", "modal", m.id, "err", err)
		data = nil
		if m.props.Fallback != nil {
			data = m.props.Fallback(state)
		}
	}
	m.data = FormData{}
	for k, v := range data {
		m.data[k] = v
	}
	m.buildForm()
	return quietly(m.form.Init())
}

func (m *Modal) buildForm() {
	m.values = make(map[string]*string)
	m.confirm = true
	var fields []huh.Field
	for _, f := range m.props.Fields {
		v := m.data[f.Name]
		p := &v
		m.values[f.Name] = p
		validate := fieldValidator(f)
		switch f.Type {
		case FieldHidden:
			continue
		case FieldTextarea:
			fields = append(fields, huh.NewText().
				Key(f.Name).
				Title(fieldTitle(f)).
				Placeholder(f.Placeholder).
				Lines(3).
				Value(p).
				Validate(validate))
		default:
			fields = append(fields, huh.NewInput().
				Key(f.Name).
				Title(fieldTitle(f)).
				Placeholder(f.Placeholder).
				Value(p).
				Validate(validate))
		}
	}
	fields = append(fields, huh.NewConfirm().
		Key(confirmKey).
		Affirmative("OK").
		Negative("Cancel").
		Value(&m.confirm))
	m.form = huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(false).
		WithWidth(modalFormWidth)
}

func fieldTitle(f FormField) string {
	t := f.Label
	if t == "" {
		t = f.Name
	}
	if f.Required {
		t += " *"
	}
	return t
}

func fieldValidator(f FormField) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if f.Required {
				return fmt.Errorf("%s is required", fieldTitle(f))
			}
			return nil
		}
		switch f.Type {
		case FieldEmail:
			if _, err := mail.ParseAddress(s); err != nil {
				return errors.New("not a valid email address")
			}
		case FieldURL:
			if u, err := url.Parse(s); err != nil || (u.Scheme == "" && !relativeURL(s)) {
				return errors.New("not a valid URL")
			}
		case FieldNumber:
			n, err := strconv.Atoi(s)
			if err != nil {
				return errors.New("not a whole number")
			}
			if f.Max > 0 && (n < f.Min || n > f.Max) {
				return fmt.Errorf("must be between %d and %d", f.Min, f.Max)
			}
		}
		return nil
	}
}

func relativeURL(s string) bool {
	for _, prefix := range []string{"/", "./", "../"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Close dismisses the form without submitting and clears its data.
func (m *Modal) Close() {
	if !m.open {
		return
	}
	m.open = false
	m.loading = false
	m.err = nil
	m.form = nil
	m.values = nil
	m.data = FormData{}
	m.pos = position.Offscreen
	for _, r := range m.release {
		r()
	}
	m.release = nil
	if m.cancelThrottle != nil {
		m.cancelThrottle()
		m.cancelThrottle = nil
	}
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// Submit closes the form and runs OnSubmit with its data. The command
// OnSubmit returns is applied to the view on the UI loop.
func (m *Modal) Submit() tea.Cmd {
	if !m.open || m.loading {
		return nil
	}
	data := m.Data()
	for _, f := range m.props.Fields {
		if err := fieldValidator(f)(data[f.Name]); err != nil {
			m.err = err
			return nil
		}
	}
	props := m.props
	view := m.view
	state := view.State()
	m.Close()
	if props.OnSubmit == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(m.env.context(), m.env.FetchTimeout)
	logger := m.env.Logger
	id := m.id
	return func() tea.Msg {
		defer cancel()
		cmd, err := props.OnSubmit(ctx, state, data)
		return AsyncMsg{deliver: func() tea.Cmd {
			if err != nil {
				logger.Error("modal: submit failed", "modal", id, "err", err)
				return nil
			}
			if cmd != nil && view.Run(cmd) {
				view.Focus()
			}
			return nil
		}}
	}
}

func (m *Modal) contains(p position.Point) bool {
	if m.pos.Visible() && m.pos.Rect(m.size).Contains(p) {
		return true
	}
	if m.trigger != nil {
		if r, ok := m.trigger(); ok && r.Contains(p) {
			return true
		}
	}
	return false
}

func (m *Modal) handleClick(ev ClickEvent) {
	if !m.contains(ev.Page) {
		m.Close()
	}
}

func (m *Modal) handleKey(ev *Event) {
	if ev.Handled() || !m.open {
		return
	}
	msg, ok := ev.Key()
	if !ok {
		return
	}
	if key.Matches(msg, m.env.KeyMap.Close) {
		m.Close()
		ev.Consume()
		return
	}
	if m.loading || m.form == nil {
		ev.Consume()
		return
	}
	ev.Consume(m.update(msg))
}

// handleMsg forwards non-key messages so the form's own internal messages
// reach it.
func (m *Modal) handleMsg(ev *Event) {
	if !m.open || m.form == nil {
		return
	}
	if _, ok := ev.Msg.(AsyncMsg); ok {
		return
	}
	ev.AddCmd(m.update(ev.Msg))
}

func (m *Modal) update(msg tea.Msg) tea.Cmd {
	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		if !m.confirm {
			m.Close()
			return nil
		}
		return m.Submit()
	case huh.StateAborted:
		m.Close()
		return nil
	}
	return quietly(cmd)
}

func (m *Modal) handleViewport(ViewportEvent) {
	if m.cancelThrottle != nil {
		return
	}
	m.cancelThrottle = m.env.Scheduler.After(m.env.ThrottleInterval, func() {
		m.cancelThrottle = nil
		m.reposition()
	})
}

// reposition places the form below its trigger.
func (m *Modal) reposition() {
	if !m.open || m.view == nil || m.trigger == nil {
		return
	}
	page, ok := m.trigger()
	if !ok {
		m.pos = position.Offscreen
		return
	}
	scroll := m.view.Scroll()
	vr := page.Translate(position.Point{X: -scroll.X, Y: -scroll.Y})
	m.pos = position.ComputeModal(vr, m.size, m.view.Viewport(), scroll, m.env.Options)
}

func (m *Modal) render() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render(m.props.Title))
	b.WriteString("\n")
	if m.loading || m.form == nil {
		b.WriteString(modalMutedStyle.Render("Loading…"))
	} else {
		b.WriteString(m.form.View())
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(modalErrorStyle.Render(m.err.Error()))
	}
	return modalStyle.Render(b.String())
}

// Piece renders the form. A size change since the last frame moves the
// piece in the same frame.
func (m *Modal) Piece() (overlay.Piece, bool) {
	if !m.open {
		return overlay.Piece{}, false
	}
	content := m.render()
	if size := overlay.Measure(content); size != m.size {
		m.size = size
		m.reposition()
	}
	return overlay.Piece{ID: m.id, Content: content, At: m.pos}, true
}

// quietly drops quit and interrupt messages a form emits when it finishes,
// since the form lives inside a larger program.
func quietly(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		switch msg := cmd().(type) {
		case tea.QuitMsg, tea.InterruptMsg:
			return nil
		case tea.BatchMsg:
			out := make(tea.BatchMsg, 0, len(msg))
			for _, c := range msg {
				if c != nil {
					out = append(out, quietly(c))
				}
			}
			return out
		default:
			return msg
		}
	}
}
