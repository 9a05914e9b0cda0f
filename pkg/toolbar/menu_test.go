package toolbar

import (
	"errors"
	"testing"

	"github.com/marcus/folio/pkg/editor"
)

func TestValidate(t *testing.T) {
	btn := Button("Copy", "copy", nil)
	tests := []struct {
		name string
		item MenuItem
		ok   bool
	}{
		{"button", btn, true},
		{"button with items", MenuItem{Kind: KindButton, Title: "x", Items: []MenuItem{btn}}, false},
		{"untitled", MenuItem{Kind: KindButton}, false},
		{"dropdown", Dropdown("Rows", "rowDropdown", btn), true},
		{"empty dropdown", Dropdown("Rows", "rowDropdown"), false},
		{"nested dropdown", Dropdown("Rows", "", Dropdown("Inner", "", btn)), false},
		{"modal", ModalTrigger("Edit", "edit", ModalFormProps{Fields: []FormField{{Name: "alt"}}}), true},
		{"modal without props", MenuItem{Kind: KindModal, Title: "Edit"}, false},
		{"duplicate fields", ModalTrigger("Edit", "", ModalFormProps{Fields: []FormField{{Name: "a"}, {Name: "a"}}}), false},
		{"bad field type", ModalTrigger("Edit", "", ModalFormProps{Fields: []FormField{{Name: "a", Type: "date"}}}), false},
		{"number field", ModalTrigger("Size", "", ModalFormProps{Fields: []FormField{{Name: "n", Type: FieldNumber, Min: 1, Max: 8}}}), true},
		{"inverted range", ModalTrigger("Size", "", ModalFormProps{Fields: []FormField{{Name: "n", Type: FieldNumber, Min: 9, Max: 8}}}), false},
		{"unknown kind", MenuItem{Kind: Kind(9), Title: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidItem) {
				t.Errorf("err = %v, want ErrInvalidItem", err)
			}
		})
	}
}

func TestEnabledPrefersEnabledCommand(t *testing.T) {
	v := testView(t)
	cmd := &counter{}
	gate := &counter{fail: true}

	item := Button("x", "", cmd.cmd).WithEnabled(gate.cmd)
	if item.EnabledIn(v) {
		t.Error("Enabled command should win")
	}
	if cmd.dry != 0 || gate.dry != 1 {
		t.Errorf("dry runs: cmd=%d gate=%d", cmd.dry, gate.dry)
	}

	if !Button("x", "", nil).EnabledIn(v) {
		t.Error("item without commands is enabled")
	}
	if Button("x", "", nil).EnabledIn(nil) {
		t.Error("nil view is never enabled")
	}
}

func TestChildPredicatesAreIndependent(t *testing.T) {
	v := testView(t)
	on := func(*editor.View) bool { return true }
	dd := Dropdown("Rows", "", Button("a", "", nil).WithActive(on), Button("b", "", nil))

	if dd.ActiveIn(v) {
		t.Error("parent has no active predicate")
	}
	if !dd.Items[0].ActiveIn(v) || dd.Items[1].ActiveIn(v) {
		t.Error("children should use their own predicates")
	}
}

func TestFlatten(t *testing.T) {
	items := twoDropdowns(&counter{}, &counter{})
	items = append(items, Button("Delete table", "deleteTable", nil))

	leaves := Flatten(items)
	if len(leaves) != 4 {
		t.Fatalf("leaves = %d, want 4", len(leaves))
	}
	if got := leaves[2].Label(); got != "Column operations › Add column before" {
		t.Errorf("label = %q", got)
	}
	if leaves[3].Child != -1 || leaves[3].Index != 2 {
		t.Errorf("top-level leaf = %+v", leaves[3])
	}
}

func TestLabel(t *testing.T) {
	if got := label(Button("Copy", "copy", nil)); got != "⧉" {
		t.Errorf("icon label = %q", got)
	}
	if got := label(Button("Copy", "copy", nil).WithVisibleTitle()); got != "⧉ Copy" {
		t.Errorf("titled label = %q", got)
	}
	if got := label(Dropdown("Rows", "", Button("a", "", nil))); got != "Rows ▾" {
		t.Errorf("dropdown label = %q", got)
	}
}
