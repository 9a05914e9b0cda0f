package features

import (
	"errors"
	"testing"

	"github.com/marcus/folio/internal/config"
)

func TestKnownFeatureDefaults(t *testing.T) {
	for _, feature := range ListAll() {
		if IsEnabledForProcess(feature.Name) != feature.Default {
			t.Fatalf("default mismatch for %s", feature.Name)
		}
	}
}

func TestIsEnabledForProcess_EnvVarOverride(t *testing.T) {
	t.Setenv("FOLIO_FEATURE_TABLE_TOOLBAR", "false")
	if IsEnabledForProcess(TableToolbar.Name) {
		t.Fatal("FOLIO_FEATURE_TABLE_TOOLBAR=false should disable table_toolbar")
	}

	t.Setenv("FOLIO_FEATURE_TABLE_TOOLBAR", "true")
	if !IsEnabledForProcess(TableToolbar.Name) {
		t.Fatal("FOLIO_FEATURE_TABLE_TOOLBAR=true should enable table_toolbar")
	}
}

func TestIsEnabledForProcess_EnableDisableLists(t *testing.T) {
	t.Setenv("FOLIO_ENABLE_FEATURE", "parallel_upload, snapshots")
	if !IsEnabledForProcess(ParallelUpload.Name) {
		t.Fatal("FOLIO_ENABLE_FEATURE should enable parallel_upload")
	}

	t.Setenv("FOLIO_DISABLE_FEATURE", "parallel_upload")
	if IsEnabledForProcess(ParallelUpload.Name) {
		t.Fatal("FOLIO_DISABLE_FEATURE should take precedence and disable parallel_upload")
	}
}

func TestIsEnabled_ProjectConfigAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()

	if err := config.SetFeatureFlag(dir, ImageToolbar.Name, false); err != nil {
		t.Fatalf("SetFeatureFlag failed: %v", err)
	}
	enabled, source := Resolve(dir, ImageToolbar.Name)
	if enabled || source != "config" {
		t.Fatalf("expected config=false, got enabled=%v source=%q", enabled, source)
	}

	t.Setenv("FOLIO_FEATURE_IMAGE_TOOLBAR", "true")
	enabled, source = Resolve(dir, ImageToolbar.Name)
	if !enabled || source != "env" {
		t.Fatalf("expected env=true to override config, got enabled=%v source=%q", enabled, source)
	}
}

func TestDisableExperimentalKillSwitch(t *testing.T) {
	t.Setenv("FOLIO_ENABLE_FEATURE", "parallel_upload")
	if !IsEnabledForProcess(ParallelUpload.Name) {
		t.Fatal("expected parallel_upload enabled before kill-switch")
	}

	t.Setenv("FOLIO_DISABLE_EXPERIMENTAL", "1")
	if IsEnabledForProcess(ParallelUpload.Name) {
		t.Fatal("kill-switch should disable parallel_upload")
	}
	if !IsEnabledForProcess(TableToolbar.Name) {
		t.Fatal("kill-switch should leave stable features alone")
	}
}

func TestUnknownFeature(t *testing.T) {
	if IsKnownFeature("nope") {
		t.Fatal("nope should be unknown")
	}
	if enabled, source := Resolve(t.TempDir(), "nope"); enabled || source != "unknown" {
		t.Fatalf("Resolve(nope) = %v, %q", enabled, source)
	}
}

func TestCheckSetPaletteNeedsToolbar(t *testing.T) {
	dir := t.TempDir()
	if err := CheckSet(dir, CommandPalette.Name, true); err != nil {
		t.Fatalf("palette with default toolbars: %v", err)
	}

	t.Setenv("FOLIO_DISABLE_FEATURE", "image_toolbar,table_toolbar")
	if AnyToolbar(dir) {
		t.Fatal("toolbars still enabled")
	}
	if err := CheckSet(dir, CommandPalette.Name, true); !errors.Is(err, ErrPaletteWithoutToolbars) {
		t.Errorf("CheckSet = %v, want ErrPaletteWithoutToolbars", err)
	}
	if err := CheckSet(dir, CommandPalette.Name, false); err != nil {
		t.Errorf("disabling the palette: %v", err)
	}
	if err := CheckSet(dir, "nope", true); err == nil {
		t.Error("unknown feature accepted")
	}
}

func TestGates(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range ListAll() {
		if f.Gate.Kind == "" || f.Gate.Name == "" {
			t.Errorf("%s has no gate", f.Name)
		}
		if seen[f.Gate.String()] {
			t.Errorf("gate %s listed twice", f.Gate)
		}
		seen[f.Gate.String()] = true
	}
	if ImageToolbar.Gate.String() != "plugin:floatingImageToolbar" {
		t.Errorf("image gate = %s", ImageToolbar.Gate)
	}
}

func TestParseBool(t *testing.T) {
	for raw, want := range map[string]bool{"on": true, "YES": true, "1": true, "off": false, " false ": false} {
		got, err := ParseBool(raw)
		if err != nil || got != want {
			t.Errorf("ParseBool(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Error("ParseBool(maybe) accepted")
	}
}
