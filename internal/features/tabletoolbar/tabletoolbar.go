// Package tabletoolbar shows a floating toolbar over the table holding the
// selection, with row, column and cell operations.
package tabletoolbar

import (
	"log/slog"

	"github.com/marcus/folio/internal/features/floating"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/toolbar"
)

// PluginKey names the table toolbar plugin.
const PluginKey editor.PluginKey = "floatingTableToolbar"

// Options configures the table toolbar.
type Options struct {
	Logger *slog.Logger
	// Derive replaces the default menu.
	Derive toolbar.DeriveFunc
}

// NewPlugin returns the table toolbar plugin.
func NewPlugin(opts Options) editor.Plugin {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Derive == nil {
		opts.Derive = Derive
	}
	return editor.Plugin{
		Key: PluginKey,
		View: func(view *editor.View) editor.PluginView {
			return floating.New(floating.Config{
				Name:       string(PluginKey),
				Locate:     Locate,
				Derive:     opts.Derive,
				ShouldShow: ShouldShow,
				Logger:     opts.Logger,
			}).Sync(view)
		},
	}
}

// ShouldShow reports whether a focused view has its selection in a table.
func ShouldShow(view *editor.View) bool {
	return view != nil && view.HasFocus() && editor.IsInsideTable(view.State())
}

// Locate anchors to the table holding the selection.
func Locate(view *editor.View) (toolbar.Target, bool) {
	if !ShouldShow(view) {
		return nil, false
	}
	idx, _, _ := editor.SelectedTable(view.State())
	return editor.TargetFor(view, idx)
}

// Derive returns the table menu.
func Derive(*editor.View, toolbar.Target) ([]toolbar.MenuItem, error) {
	return append(Dropdowns(), DeleteButton()), nil
}

// DeleteButton removes the whole table.
func DeleteButton() toolbar.MenuItem {
	return toolbar.Button("Delete table", "deleteTable", editor.DeleteTable)
}

// Dropdowns returns the row, column and cell menus.
func Dropdowns() []toolbar.MenuItem {
	return []toolbar.MenuItem{
		toolbar.Dropdown("Row operations", "rowDropdown",
			toolbar.Button("Add row before", "addRowBefore", editor.AddRowBefore),
			toolbar.Button("Add row after", "addRowAfter", editor.AddRowAfter),
			toolbar.Button("Delete row", "deleteRow", editor.DeleteRow),
			toolbar.Button("Toggle header row", "toggleHeaderRow", editor.ToggleHeaderRow).
				WithActive(stateActive(editor.IsHeaderRowActive)),
		),
		toolbar.Dropdown("Column operations", "columnDropdown",
			toolbar.Button("Add column before", "addColumnBefore", editor.AddColumnBefore),
			toolbar.Button("Add column after", "addColumnAfter", editor.AddColumnAfter),
			toolbar.Button("Delete column", "deleteColumn", editor.DeleteColumn),
			toolbar.Button("Toggle header column", "toggleHeaderCol", editor.ToggleHeaderColumn).
				WithActive(stateActive(editor.IsHeaderColumnActive)),
		),
		toolbar.Dropdown("Cell operations", "cellDropdown",
			toolbar.Button("Merge cells", "mergeCells", editor.MergeCells),
			toolbar.Button("Split cell", "splitCell", editor.SplitCell),
			toolbar.Button("Toggle header cell", "toggleHeaderCell", editor.ToggleHeaderCell),
		),
	}
}

func stateActive(fn func(editor.State) bool) func(*editor.View) bool {
	return func(view *editor.View) bool {
		return view != nil && fn(view.State())
	}
}
