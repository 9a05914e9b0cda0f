package toolbar

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/folio/pkg/overlay"
	"github.com/marcus/folio/pkg/toolbar/position"
)

// Default timings for position recomputation.
const (
	DefaultSettleDelay      = 10 * time.Millisecond
	DefaultThrottleInterval = 16 * time.Millisecond
)

// Listeners is an ordered set of callbacks. Emit walks the set newest first,
// so the most recently opened overlay sees an event before the ones beneath
// it. Listeners removed while an event is being delivered are skipped.
type Listeners[E any] struct {
	seq     uint64
	entries []listener[E]
}

type listener[E any] struct {
	id uint64
	fn func(E)
}

// Add registers fn and returns its removal func. Removing twice is harmless.
func (l *Listeners[E]) Add(fn func(E)) func() {
	l.seq++
	id := l.seq
	l.entries = append(l.entries, listener[E]{id: id, fn: fn})
	return func() { l.remove(id) }
}

func (l *Listeners[E]) remove(id uint64) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *Listeners[E]) live(id uint64) bool {
	for _, e := range l.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

// Emit delivers e to every registered listener.
func (l *Listeners[E]) Emit(e E) {
	snapshot := append([]listener[E](nil), l.entries...)
	for i := len(snapshot) - 1; i >= 0; i-- {
		if l.live(snapshot[i].id) {
			snapshot[i].fn(e)
		}
	}
}

// Len returns the number of registered listeners.
func (l *Listeners[E]) Len() int {
	return len(l.entries)
}

// ClickEvent is a mouse press anywhere on screen.
type ClickEvent struct {
	// Screen is the terminal cell that was clicked.
	Screen position.Point
	// Page is the same point in page coordinates.
	Page position.Point
}

// Event wraps a bubbletea message on its way through a listener set. A
// listener that owns the message consumes it; later listeners should check
// Handled and step aside.
type Event struct {
	Msg     tea.Msg
	handled bool
	cmds    []tea.Cmd
}

// NewEvent wraps msg.
func NewEvent(msg tea.Msg) *Event {
	return &Event{Msg: msg}
}

// Key returns the message as a key press.
func (e *Event) Key() (tea.KeyMsg, bool) {
	k, ok := e.Msg.(tea.KeyMsg)
	return k, ok
}

// Consume marks the event handled and queues cmds.
func (e *Event) Consume(cmds ...tea.Cmd) {
	e.handled = true
	e.AddCmd(cmds...)
}

// AddCmd queues cmds without consuming the event.
func (e *Event) AddCmd(cmds ...tea.Cmd) {
	for _, c := range cmds {
		if c != nil {
			e.cmds = append(e.cmds, c)
		}
	}
}

// Handled reports whether a listener consumed the event.
func (e *Event) Handled() bool {
	return e.handled
}

// Cmd batches every queued command.
func (e *Event) Cmd() tea.Cmd {
	switch len(e.cmds) {
	case 0:
		return nil
	case 1:
		return e.cmds[0]
	}
	return tea.Batch(e.cmds...)
}

// ViewportEvent reports a scroll or resize of the editor viewport.
type ViewportEvent struct {
	Scroll position.Point
	Size   position.Size
}

// Scheduler runs fn on the UI loop after d. The returned func cancels a call
// that has not run yet.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// AsyncMsg carries the result of background work back onto the UI loop. The
// host passes it to Deliver from its Update.
type AsyncMsg struct {
	deliver func() tea.Cmd
}

// Deliver applies the result and returns any follow-up command.
func (m AsyncMsg) Deliver() tea.Cmd {
	if m.deliver == nil {
		return nil
	}
	return m.deliver()
}

// Env is everything toolbars share with their host: the surface they mount
// on, the global event sources and timing.
type Env struct {
	Surface   *overlay.Surface
	Clicks    *Listeners[ClickEvent]
	Keys      *Listeners[*Event]
	Messages  *Listeners[*Event]
	Viewport  *Listeners[ViewportEvent]
	Scheduler Scheduler
	Logger    *slog.Logger
	Options   position.Options
	KeyMap    KeyMap

	SettleDelay      time.Duration
	ThrottleInterval time.Duration
	// FetchTimeout bounds InitialData and OnSubmit calls.
	FetchTimeout time.Duration

	// Context is the parent of every background call. Nil means Background.
	Context context.Context

	live []*Instance
}

// NewEnv creates an environment with default options and timings.
func NewEnv(s Scheduler, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Env{
		Surface:          overlay.NewSurface(),
		Clicks:           &Listeners[ClickEvent]{},
		Keys:             &Listeners[*Event]{},
		Messages:         &Listeners[*Event]{},
		Viewport:         &Listeners[ViewportEvent]{},
		Scheduler:        s,
		Logger:           logger,
		Options:          position.DefaultOptions(),
		KeyMap:           DefaultKeyMap(),
		SettleDelay:      DefaultSettleDelay,
		ThrottleInterval: DefaultThrottleInterval,
		FetchTimeout:     30 * time.Second,
	}
}

func (e *Env) context() context.Context {
	if e.Context != nil {
		return e.Context
	}
	return context.Background()
}

// DispatchKey routes a key press through the key listeners and reports
// whether one of them consumed it.
func (e *Env) DispatchKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	ev := NewEvent(msg)
	e.Keys.Emit(ev)
	return ev.Handled(), ev.Cmd()
}

// DispatchMsg offers any other message to the message listeners.
func (e *Env) DispatchMsg(msg tea.Msg) tea.Cmd {
	ev := NewEvent(msg)
	e.Messages.Emit(ev)
	return ev.Cmd()
}

// Listening returns the total number of registered global listeners.
func (e *Env) Listening() int {
	return e.Clicks.Len() + e.Keys.Len() + e.Messages.Len() + e.Viewport.Len()
}

// Toolbars returns the mounted toolbars in creation order.
func (e *Env) Toolbars() []*Instance {
	return append([]*Instance(nil), e.live...)
}

func (e *Env) track(i *Instance) {
	e.live = append(e.live, i)
}

func (e *Env) untrack(i *Instance) {
	for j, cur := range e.live {
		if cur == i {
			e.live = append(e.live[:j], e.live[j+1:]...)
			return
		}
	}
}
