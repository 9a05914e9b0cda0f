// Package app is the terminal editor: it hosts the document view, the
// contextual toolbars and the command palette in one bubbletea program.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/folio/internal/config"
	"github.com/marcus/folio/internal/features"
	"github.com/marcus/folio/internal/features/imagetoolbar"
	"github.com/marcus/folio/internal/features/prompts"
	"github.com/marcus/folio/internal/features/tabletoolbar"
	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/mouse"
	"github.com/marcus/folio/pkg/overlay"
	"github.com/marcus/folio/pkg/toolbar"
	"github.com/marcus/folio/pkg/toolbar/position"
)

const (
	scrollStep   = 3
	paletteWidth = 56
)

// Store records documents and their saved revisions.
type Store interface {
	EnsureDocument(path string) (*models.Document, error)
	SaveSnapshot(documentID string, doc *editor.Document) (*models.Snapshot, error)
}

// Options configures the editor.
type Options struct {
	// Path is the markdown file saves go to.
	Path    string
	BaseDir string
	Config  *models.Config
	Doc     *editor.Document

	// Store and Uploads may be nil; snapshots and image upload are then
	// unavailable.
	Store   Store
	Uploads imagetoolbar.Service

	Logger  *slog.Logger
	Context context.Context

	// Scheduler replaces the timer scheduler backed by the running program.
	Scheduler toolbar.Scheduler
	// Enabled overrides feature resolution.
	Enabled func(features.Feature) bool
}

// savedMsg reports the outcome of a save.
type savedMsg struct {
	doc      *editor.Document
	snapshot *models.Snapshot
	err      error
}

// Model is the root bubbletea model.
type Model struct {
	opts   Options
	logger *slog.Logger

	env   *toolbar.Env
	view  *editor.View
	sched *scheduler

	vp    viewport.Model
	mouse *mouse.Handler
	help  help.Model
	keys  keyMap

	palette *palette
	prompt  *toolbar.Prompt

	width, height int
	dirty         bool
	status        string
	statusErr     bool
}

// New builds the editor for opts.Doc.
func New(opts Options) *Model {
	if opts.Config == nil {
		opts.Config = &models.Config{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Doc == nil {
		opts.Doc = editor.NewDocument()
	}
	if opts.Enabled == nil {
		baseDir := opts.BaseDir
		opts.Enabled = func(f features.Feature) bool {
			return features.IsEnabled(baseDir, f.Name)
		}
	}

	m := &Model{
		opts:   opts,
		logger: opts.Logger,
		vp:     viewport.New(0, 0),
		mouse:  mouse.NewHandler(),
		help:   help.New(),
		keys:   defaultKeyMap(),
	}

	sched := opts.Scheduler
	if sched == nil {
		m.sched = &scheduler{}
		sched = m.sched
	}

	cfg := opts.Config
	env := toolbar.NewEnv(sched, opts.Logger)
	env.Options = config.PositionOptions(cfg)
	env.SettleDelay = config.SettleDelay(cfg)
	env.ThrottleInterval = config.ThrottleInterval(cfg)
	env.KeyMap = toolbar.DefaultKeyMap().WithFocusKeys(cfg.Toolbar.FocusKeys...)
	env.Context = opts.Context
	m.env = env
	m.prompt = toolbar.NewPrompt(env, "prompt")

	plugins := []editor.Plugin{toolbar.NewPlugin(env)}
	if opts.Enabled(features.TableToolbar) {
		plugins = append(plugins, tabletoolbar.NewPlugin(tabletoolbar.Options{Logger: opts.Logger}))
	}
	if opts.Enabled(features.ImageToolbar) {
		plugins = append(plugins, imagetoolbar.NewPlugin(imagetoolbar.Options{
			Service: opts.Uploads,
			Logger:  opts.Logger,
		}))
	}

	state := editor.NewState(editor.StateConfig{
		Doc:       opts.Doc,
		Selection: editor.Caret(0, 0),
		Plugins:   plugins,
	})
	m.view = editor.NewView(state, 80)
	return m
}

// Run starts the program on the terminal and blocks until it quits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if m.sched != nil {
		m.sched.setSender(p.Send)
	}
	defer m.view.Destroy()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}

// Env exposes the toolbar environment.
func (m *Model) Env() *toolbar.Env {
	return m.env
}

// EditorView returns the editor view.
func (m *Model) EditorView() *editor.View {
	return m.view
}

// Dirty reports unsaved changes.
func (m *Model) Dirty() bool {
	return m.dirty
}

// Status returns the status line message.
func (m *Model) Status() string {
	return m.status
}

// Prompt returns the insert dialog.
func (m *Model) Prompt() *toolbar.Prompt {
	return m.prompt
}

// PaletteOpen reports whether the action palette is shown.
func (m *Model) PaletteOpen() bool {
	return m.palette != nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("folio: " + m.title())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.view.State()
	cmd := m.update(msg)
	after := m.view.State()
	if after.Doc != before.Doc {
		m.dirty = true
	}
	if after.Doc != before.Doc || !after.Selection.Eq(before.Selection) {
		m.followSelection()
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case timerMsg:
		msg.run()
		return nil
	case toolbar.AsyncMsg:
		return msg.Deliver()
	case savedMsg:
		m.handleSaved(msg)
		return nil
	}

	var cmds []tea.Cmd
	if m.palette != nil {
		cmds = append(cmds, m.palette.update(msg))
	}
	cmds = append(cmds, m.env.DispatchMsg(msg))
	return tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	h := max(1, height-2)
	m.vp.Width = width
	m.vp.Height = h
	m.view.SetViewport(position.Point{X: 0, Y: 1}, position.Size{W: width, H: h})
	m.scrollTo(m.view.Scroll().Y)
}

// scrollTo moves the viewport and tells the toolbars.
func (m *Model) scrollTo(y int) {
	m.vp.SetContent(m.view.Render())
	m.vp.SetYOffset(y)
	m.view.SetScroll(position.Point{Y: m.vp.YOffset})
	m.env.Viewport.Emit(toolbar.ViewportEvent{Scroll: m.view.Scroll(), Size: m.view.Viewport()})
}

// followSelection scrolls the selection head into view.
func (m *Model) followSelection() {
	r, ok := m.view.SelectionRect()
	h := m.view.Viewport().H
	if !ok || h <= 0 {
		return
	}
	y := m.view.Scroll().Y
	bottom := r.Y + min(r.H, h)
	switch {
	case r.Y < 0:
		m.scrollTo(y + r.Y)
	case bottom > h:
		m.scrollTo(y + bottom - h)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.palette != nil {
		return m.handlePaletteKey(msg)
	}
	if ok, cmd := m.env.DispatchKey(msg); ok {
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Palette):
		m.openPalette()
		return nil
	case key.Matches(msg, m.keys.PageUp):
		m.scrollTo(m.view.Scroll().Y - m.view.Viewport().H)
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.scrollTo(m.view.Scroll().Y + m.view.Viewport().H)
		return nil
	case key.Matches(msg, m.keys.InsertTable):
		return m.openPrompt(prompts.TableProps())
	case key.Matches(msg, m.keys.InsertLink):
		if !prompts.CanInsertLink(m.view.State()) {
			m.setStatus("links go into text", true)
			return nil
		}
		return m.openPrompt(prompts.LinkProps())
	case key.Matches(msg, m.keys.InsertImage):
		if m.opts.Uploads == nil {
			m.setStatus("uploads are not configured", true)
			return nil
		}
		return m.openPrompt(imagetoolbar.InsertProps(m.opts.Uploads, m.logger))
	case key.Matches(msg, m.keys.ReplaceImage):
		return m.replaceImage()
	}

	var cmd editor.Command
	switch msg.Type {
	case tea.KeyLeft:
		cmd = editor.MoveLeft
	case tea.KeyRight:
		cmd = editor.MoveRight
	case tea.KeyUp:
		cmd = editor.MoveUp
	case tea.KeyDown:
		cmd = editor.MoveDown
	case tea.KeyShiftLeft:
		cmd = editor.ExtendCells(0, -1)
	case tea.KeyShiftRight:
		cmd = editor.ExtendCells(0, 1)
	case tea.KeyShiftUp:
		cmd = editor.ExtendCells(-1, 0)
	case tea.KeyShiftDown:
		cmd = editor.ExtendCells(1, 0)
	case tea.KeyBackspace:
		cmd = editor.DeleteBackward
	case tea.KeyEnter:
		cmd = editor.SplitBlock
	case tea.KeySpace:
		cmd = editor.InsertText(" ")
	case tea.KeyRunes:
		cmd = editor.InsertText(string(msg.Runes))
	default:
		return nil
	}
	m.edit(cmd)
	return nil
}

func (m *Model) openPrompt(props *toolbar.ModalFormProps) tea.Cmd {
	cmd, err := m.prompt.Open(props, m.view)
	if err != nil {
		m.logger.Error("prompt: open failed", "title", props.Title, "err", err)
		m.setStatus(err.Error(), true)
		return nil
	}
	return cmd
}

// replaceImage opens the replace form of the live image toolbar.
func (m *Model) replaceImage() tea.Cmd {
	for _, inst := range m.env.Toolbars() {
		l, ok := imagetoolbar.ReplaceLeaf(inst.Items())
		if !ok {
			continue
		}
		if !l.Item.EnabledIn(inst.View()) {
			m.setStatus(imagetoolbar.ReplaceTitle+" is not available here", true)
			return nil
		}
		inst.Show()
		return inst.Component().RunLeaf(l)
	}
	m.setStatus("select an image to replace it", true)
	return nil
}

// edit focuses the editor and runs cmd.
func (m *Model) edit(cmd editor.Command) {
	m.view.Focus()
	m.view.Run(cmd)
}

// handleMouse routes a press: toolbars hear it first, then a hit on an overlay
// runs its action, otherwise it moves the editor selection.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	screen := position.Point{X: msg.X, Y: msg.Y}
	page := m.view.ScreenToPage(screen)

	m.mouse.Clear()
	m.env.Surface.FillHitMap(m.mouse.HitMap)
	pm := msg
	pm.X, pm.Y = page.X, page.Y
	act := m.mouse.HandleMouse(pm)

	switch act.Type {
	case mouse.ActionScrollUp:
		m.scrollTo(m.view.Scroll().Y - scrollStep)
		return nil
	case mouse.ActionScrollDown:
		m.scrollTo(m.view.Scroll().Y + scrollStep)
		return nil
	case mouse.ActionClick, mouse.ActionDoubleClick:
	default:
		return nil
	}

	if m.palette != nil {
		m.closePalette()
	}
	m.env.Clicks.Emit(toolbar.ClickEvent{Screen: screen, Page: page})

	if act.Region != nil {
		if run, ok := act.Region.Data.(toolbar.Action); ok {
			return run()
		}
		return nil
	}
	if !m.view.ContainsScreen(screen) {
		m.view.Blur()
		return nil
	}
	m.view.Focus()
	if sel, ok := m.view.SelectionAt(page); ok {
		m.view.Run(editor.Select(sel))
	}
	return nil
}

func (m *Model) openPalette() {
	if !m.opts.Enabled(features.CommandPalette) {
		return
	}
	m.palette = newPalette()
	m.palette.refresh(m.env.Toolbars())
}

func (m *Model) closePalette() {
	m.palette = nil
}

func (m *Model) handlePaletteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePalette()
		return nil
	case tea.KeyUp, tea.KeyCtrlP:
		m.palette.move(-1)
		return nil
	case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
		m.palette.move(1)
		return nil
	case tea.KeyEnter:
		e, ok := m.palette.current()
		if !ok {
			return nil
		}
		if !e.Enabled {
			m.setStatus(fmt.Sprintf("%s is not available here", e.Label), true)
			return nil
		}
		m.closePalette()
		m.logger.Debug("palette: run", "action", e.Label, "toolbar", e.inst.ID())
		return e.inst.Component().RunLeaf(e.Leaf)
	}
	cmd := m.palette.update(msg)
	m.palette.refresh(m.env.Toolbars())
	return cmd
}

func (m *Model) save() tea.Cmd {
	path := m.opts.Path
	if path == "" {
		m.setStatus("no file to save to", true)
		return nil
	}
	doc := m.view.State().Doc
	store := m.opts.Store
	if store != nil && !m.opts.Enabled(features.Snapshots) {
		store = nil
	}
	baseDir := m.opts.BaseDir
	logger := m.logger

	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(editor.Markdown(doc)), 0644); err != nil {
			return savedMsg{doc: doc, err: fmt.Errorf("write %s: %w", path, err)}
		}
		msg := savedMsg{doc: doc}
		if store != nil {
			d, err := store.EnsureDocument(path)
			if err != nil {
				return savedMsg{doc: doc, err: fmt.Errorf("record document: %w", err)}
			}
			snap, err := store.SaveSnapshot(d.ID, doc)
			if err != nil {
				return savedMsg{doc: doc, err: fmt.Errorf("save snapshot: %w", err)}
			}
			msg.snapshot = snap
		}
		if baseDir != "" {
			if err := config.SetLastDocument(baseDir, path); err != nil {
				logger.Warn("save: remember document", "path", path, "err", err)
			}
		}
		return msg
	}
}

func (m *Model) handleSaved(msg savedMsg) {
	if msg.err != nil {
		m.logger.Error("save failed", "path", m.opts.Path, "err", msg.err)
		m.setStatus(msg.err.Error(), true)
		return
	}
	if msg.doc == m.view.State().Doc {
		m.dirty = false
	}
	status := "saved " + m.opts.Path
	if msg.snapshot != nil {
		status += " (" + msg.snapshot.ID + ")"
	}
	m.logger.Info("saved", "path", m.opts.Path, "blocks", msg.doc.Len())
	m.setStatus(status, false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) title() string {
	if m.opts.Path == "" {
		return "untitled"
	}
	return filepath.Base(m.opts.Path)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	page := m.env.Surface.Composite(m.view.Render())
	m.vp.SetContent(page)
	m.vp.SetYOffset(m.view.Scroll().Y)

	lines := []string{m.titleBar()}
	lines = append(lines, strings.Split(m.vp.View(), "\n")...)
	if m.palette != nil {
		w := min(paletteWidth, max(10, m.width-4))
		lines = overlay.Place(lines, m.palette.render(w), max(0, (m.width-w-2)/2), 1)
	}
	if len(lines) > m.height-1 {
		lines = lines[:m.height-1]
	}
	lines = append(lines, m.statusLine())
	return strings.Join(lines, "\n")
}

func (m *Model) titleBar() string {
	title := m.title()
	if m.dirty {
		title += dirtyStyle.Render(" ●")
	}
	return titleBarStyle.Width(m.width).Render(title)
}

func (m *Model) statusLine() string {
	style := statusStyle
	if m.statusErr {
		style = statusErrorStyle
	}
	left := style.Render(m.status)

	bindings := m.keys.ShortHelp()
	if len(m.env.Toolbars()) > 0 {
		bindings = append(bindings, m.env.KeyMap.ShortHelp()...)
	}
	right := m.help.ShortHelpView(bindings)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
