package toolbar

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/toolbar/position"
)

func tablePromptProps() *ModalFormProps {
	return &ModalFormProps{
		Title: "Insert table",
		Fields: []FormField{
			{Name: "rows", Type: FieldNumber, Required: true, Min: 1, Max: 8},
			{Name: "cols", Type: FieldNumber, Required: true, Min: 1, Max: 8},
		},
		Fallback: func(editor.State) FormData { return FormData{"rows": "2", "cols": "4"} },
		OnSubmit: func(_ context.Context, _ editor.State, data FormData) (editor.Command, error) {
			rows, _ := strconv.Atoi(data["rows"])
			cols, _ := strconv.Atoi(data["cols"])
			return editor.InsertTable(rows, cols), nil
		},
	}
}

func TestPromptSubmitRunsCommand(t *testing.T) {
	env, _ := testEnv(t)
	view := testView(t)
	p := NewPrompt(env, "prompt")
	defer p.Destroy()

	if env.Surface.Len() != 1 {
		t.Fatalf("surface has %d layers, want 1", env.Surface.Len())
	}
	if _, err := p.Open(tablePromptProps(), view); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !p.IsOpen() {
		t.Fatal("prompt should be open")
	}
	piece, ok := p.Modal().Piece()
	if !ok {
		t.Fatal("open prompt should draw")
	}
	// The selected image is block 0, so the form sits below it.
	r, _ := view.SelectionRect()
	if piece.At.Top <= r.Y {
		t.Errorf("prompt at %+v, want below selection %+v", piece.At, r)
	}

	deliver(t, p.Modal().Submit())

	_, tbl, ok := editor.SelectedTable(view.State())
	if !ok || tbl.NumRows() != 2 || tbl.NumCols() != 4 {
		t.Errorf("inserted table = %+v, %v", tbl, ok)
	}
}

func TestPromptRejectsOutOfRangeNumbers(t *testing.T) {
	env, _ := testEnv(t)
	view := testView(t)
	p := NewPrompt(env, "prompt")
	defer p.Destroy()

	props := tablePromptProps()
	props.Fallback = func(editor.State) FormData { return FormData{"rows": "9", "cols": "2"} }
	if _, err := p.Open(props, view); err != nil {
		t.Fatal(err)
	}
	if cmd := p.Modal().Submit(); cmd != nil {
		t.Error("nine rows should fail validation")
	}
	if !p.IsOpen() {
		t.Error("a failed submit should keep the prompt open")
	}
}

func TestPromptClosesOnOutsideClick(t *testing.T) {
	env, _ := testEnv(t)
	view := testView(t)
	p := NewPrompt(env, "prompt")
	defer p.Destroy()

	if _, err := p.Open(tablePromptProps(), view); err != nil {
		t.Fatal(err)
	}
	env.Clicks.Emit(ClickEvent{Page: position.Point{X: 79, Y: 200}})
	if p.IsOpen() {
		t.Error("outside click should close the prompt")
	}
}

func TestPromptOpenErrors(t *testing.T) {
	env, _ := testEnv(t)
	view := testView(t)
	p := NewPrompt(env, "prompt")

	bad := &ModalFormProps{Fields: []FormField{{Name: "n", Type: FieldNumber, Min: 5, Max: 2}}}
	if _, err := p.Open(bad, view); !errors.Is(err, ErrInvalidItem) {
		t.Errorf("inverted range: err = %v", err)
	}
	if _, err := p.Open(nil, view); !errors.Is(err, ErrInvalidItem) {
		t.Errorf("nil props: err = %v", err)
	}

	p.Destroy()
	if env.Surface.Len() != 0 {
		t.Errorf("destroyed prompt left %d layers", env.Surface.Len())
	}
	if _, err := p.Open(tablePromptProps(), view); err == nil {
		t.Error("destroyed prompt should refuse to open")
	}
}
