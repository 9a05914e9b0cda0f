package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/pkg/toolbar/position"
)

func TestLoad(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		dir := t.TempDir()
		configDir := filepath.Join(dir, ".folio")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("setup: mkdir failed: %v", err)
		}

		expected := &models.Config{
			LastDocument: "notes.md",
			LogLevel:     models.LogDebug,
			Toolbar:      models.ToolbarConfig{Gap: 2, FocusKeys: []string{"ctrl+t"}},
			Upload:       models.UploadConfig{MaxBytes: 1024},
		}

		data, err := json.MarshalIndent(expected, "", "  ")
		if err != nil {
			t.Fatalf("setup: marshal failed: %v", err)
		}

		if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0644); err != nil {
			t.Fatalf("setup: write failed: %v", err)
		}

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if cfg.LastDocument != expected.LastDocument {
			t.Errorf("LastDocument: got %q, want %q", cfg.LastDocument, expected.LastDocument)
		}
		if cfg.LogLevel != expected.LogLevel {
			t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, expected.LogLevel)
		}
		if cfg.Toolbar.Gap != 2 || len(cfg.Toolbar.FocusKeys) != 1 {
			t.Errorf("Toolbar: got %+v", cfg.Toolbar)
		}
		if cfg.Upload.MaxBytes != 1024 {
			t.Errorf("Upload.MaxBytes: got %d", cfg.Upload.MaxBytes)
		}
	})

	t.Run("missing file returns empty config", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.LastDocument != "" || cfg.LogLevel != "" {
			t.Errorf("expected empty config, got %+v", cfg)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		configDir := filepath.Join(dir, ".folio")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatalf("setup: mkdir failed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("{not json"), 0644); err != nil {
			t.Fatalf("setup: write failed: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()

	if Exists(dir) {
		t.Fatal("Exists before save")
	}
	if err := Save(dir, &models.Config{LastDocument: "a.md"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !Exists(dir) {
		t.Error("config file not created")
	}
}

func TestLastDocument(t *testing.T) {
	dir := t.TempDir()

	if err := SetLastDocument(dir, "draft.md"); err != nil {
		t.Fatalf("SetLastDocument failed: %v", err)
	}
	got, err := GetLastDocument(dir)
	if err != nil {
		t.Fatalf("GetLastDocument failed: %v", err)
	}
	if got != "draft.md" {
		t.Errorf("got %q, want %q", got, "draft.md")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &models.Config{}

	opts := PositionOptions(cfg)
	want := position.Options{Gap: 1, Padding: 1, Fallback: position.Size{W: 24, H: 3}}
	if opts != want {
		t.Errorf("PositionOptions = %+v, want %+v", opts, want)
	}
	if SettleDelay(cfg) != 10*time.Millisecond {
		t.Errorf("SettleDelay = %v", SettleDelay(cfg))
	}
	if ThrottleInterval(cfg) != 16*time.Millisecond {
		t.Errorf("ThrottleInterval = %v", ThrottleInterval(cfg))
	}
	if LogLevel(cfg) != models.LogInfo {
		t.Errorf("LogLevel = %q", LogLevel(cfg))
	}
	if MaxUploadBytes(cfg) != DefaultMaxUploadBytes {
		t.Errorf("MaxUploadBytes = %d", MaxUploadBytes(cfg))
	}
	if got := LogFile("/base", cfg); got != filepath.Join("/base", ".folio", "folio.log") {
		t.Errorf("LogFile = %q", got)
	}
}

func TestOverrides(t *testing.T) {
	cfg := &models.Config{
		LogLevel: models.LogWarn,
		LogFile:  "/var/log/folio.log",
		Toolbar:  models.ToolbarConfig{Gap: 3, Padding: 2, SettleDelayMs: 50},
		Upload:   models.UploadConfig{Concurrency: 8, CacheSize: 16},
	}

	if opts := PositionOptions(cfg); opts.Gap != 3 || opts.Padding != 2 {
		t.Errorf("PositionOptions = %+v", opts)
	}
	if SettleDelay(cfg) != 50*time.Millisecond {
		t.Errorf("SettleDelay = %v", SettleDelay(cfg))
	}
	if LogLevel(cfg) != models.LogWarn {
		t.Errorf("LogLevel = %q", LogLevel(cfg))
	}
	if LogFile("/base", cfg) != "/var/log/folio.log" {
		t.Errorf("LogFile = %q", LogFile("/base", cfg))
	}
	if UploadConcurrency(cfg) != 8 || CacheSize(cfg) != 16 {
		t.Errorf("upload = %d/%d", UploadConcurrency(cfg), CacheSize(cfg))
	}
}

func TestFeatureFlags(t *testing.T) {
	dir := t.TempDir()

	if _, ok, err := GetFeatureFlag(dir, "table_toolbar"); err != nil || ok {
		t.Fatalf("GetFeatureFlag on empty config = %v, %v", ok, err)
	}
	if err := SetFeatureFlag(dir, "table_toolbar", false); err != nil {
		t.Fatalf("SetFeatureFlag failed: %v", err)
	}
	v, ok, err := GetFeatureFlag(dir, "table_toolbar")
	if err != nil || !ok || v {
		t.Errorf("GetFeatureFlag = %v, %v, %v", v, ok, err)
	}
	if err := UnsetFeatureFlag(dir, "table_toolbar"); err != nil {
		t.Fatalf("UnsetFeatureFlag failed: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FeatureFlags != nil {
		t.Errorf("FeatureFlags = %v, want nil", cfg.FeatureFlags)
	}
}
