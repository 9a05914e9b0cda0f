// Package prompts holds the editor-level insert dialogs: tables by size and
// links by address.
package prompts

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/toolbar"
)

// Table size limits of the insert dialog.
const (
	DefaultTableSize = 3
	MaxTableSize     = 8
)

// TableProps returns the form that inserts a rows x cols table after the
// current block.
func TableProps() *toolbar.ModalFormProps {
	size := strconv.Itoa(DefaultTableSize)
	return &toolbar.ModalFormProps{
		Title: "Insert table",
		Fields: []toolbar.FormField{
			{Name: "rows", Label: "Rows", Type: toolbar.FieldNumber, Required: true, Min: 1, Max: MaxTableSize},
			{Name: "cols", Label: "Columns", Type: toolbar.FieldNumber, Required: true, Min: 1, Max: MaxTableSize},
		},
		Fallback: func(editor.State) toolbar.FormData {
			return toolbar.FormData{"rows": size, "cols": size}
		},
		OnSubmit: func(_ context.Context, _ editor.State, data toolbar.FormData) (editor.Command, error) {
			rows, err := tableSize(data["rows"])
			if err != nil {
				return nil, fmt.Errorf("rows: %w", err)
			}
			cols, err := tableSize(data["cols"])
			if err != nil {
				return nil, fmt.Errorf("cols: %w", err)
			}
			return editor.InsertTable(rows, cols), nil
		},
	}
}

func tableSize(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if n < 1 || n > MaxTableSize {
		return 0, fmt.Errorf("%d outside 1..%d", n, MaxTableSize)
	}
	return n, nil
}

// LinkProps returns the form that inserts a link at the caret. The text
// defaults to the address.
func LinkProps() *toolbar.ModalFormProps {
	return &toolbar.ModalFormProps{
		Title: "Insert link",
		Fields: []toolbar.FormField{
			{Name: "href", Label: "Address", Type: toolbar.FieldURL, Required: true, Placeholder: "https://, /, ./ or ../"},
			{Name: "text", Label: "Text"},
			{Name: "title", Label: "Title"},
		},
		OnSubmit: func(_ context.Context, _ editor.State, data toolbar.FormData) (editor.Command, error) {
			attrs := map[string]string{"href": strings.TrimSpace(data["href"])}
			if title := strings.TrimSpace(data["title"]); title != "" {
				attrs["title"] = title
			}
			return editor.InsertLink(strings.TrimSpace(data["text"]), attrs), nil
		},
	}
}

// CanInsertLink reports whether the selection is a text caret a link can go
// into.
func CanInsertLink(state editor.State) bool {
	return editor.InsertLink("", map[string]string{"href": "/"})(state, nil, nil)
}
