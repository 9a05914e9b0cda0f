package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/pkg/toolbar/position"
)

const configFile = ".folio/config.json"

// Terminal-cell defaults for toolbar placement
const (
	DefaultGap            = 1
	DefaultPadding        = 1
	DefaultFallbackWidth  = 24
	DefaultFallbackHeight = 3

	DefaultMaxUploadBytes = 10 << 20
	DefaultConcurrency    = 4
	DefaultCacheSize      = 256
)

// Load reads the config from disk
func Load(baseDir string) (*models.Config, error) {
	configPath := filepath.Join(baseDir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Config{}, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(baseDir string, cfg *models.Config) error {
	configPath := filepath.Join(baseDir, configFile)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Exists reports whether a project config has been written
func Exists(baseDir string) bool {
	_, err := os.Stat(filepath.Join(baseDir, configFile))
	return err == nil
}

// SetLastDocument records the most recently edited document
func SetLastDocument(baseDir string, path string) error {
	cfg, err := Load(baseDir)
	if err != nil {
		return err
	}

	cfg.LastDocument = path
	return Save(baseDir, cfg)
}

// GetLastDocument returns the most recently edited document
func GetLastDocument(baseDir string) (string, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return "", err
	}
	return cfg.LastDocument, nil
}

// SetFeatureFlag stores a local feature flag override
func SetFeatureFlag(baseDir, name string, enabled bool) error {
	cfg, err := Load(baseDir)
	if err != nil {
		return err
	}
	if cfg.FeatureFlags == nil {
		cfg.FeatureFlags = make(map[string]bool)
	}
	cfg.FeatureFlags[name] = enabled
	return Save(baseDir, cfg)
}

// UnsetFeatureFlag removes a local feature flag override
func UnsetFeatureFlag(baseDir, name string) error {
	cfg, err := Load(baseDir)
	if err != nil {
		return err
	}
	if cfg.FeatureFlags == nil {
		return nil
	}
	delete(cfg.FeatureFlags, name)
	if len(cfg.FeatureFlags) == 0 {
		cfg.FeatureFlags = nil
	}
	return Save(baseDir, cfg)
}

// GetFeatureFlag returns the local override and whether one is set
func GetFeatureFlag(baseDir, name string) (bool, bool, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return false, false, err
	}
	v, ok := cfg.FeatureFlags[name]
	return v, ok, nil
}

// PositionOptions returns toolbar placement options in terminal cells
func PositionOptions(cfg *models.Config) position.Options {
	t := cfg.Toolbar
	return position.Options{
		Gap:     orDefault(t.Gap, DefaultGap),
		Padding: orDefault(t.Padding, DefaultPadding),
		Fallback: position.Size{
			W: orDefault(t.FallbackWidth, DefaultFallbackWidth),
			H: orDefault(t.FallbackHeight, DefaultFallbackHeight),
		},
	}
}

// SettleDelay returns the delayed recompute interval
func SettleDelay(cfg *models.Config) time.Duration {
	return time.Duration(orDefault(cfg.Toolbar.SettleDelayMs, 10)) * time.Millisecond
}

// ThrottleInterval returns the scroll/resize recompute interval
func ThrottleInterval(cfg *models.Config) time.Duration {
	return time.Duration(orDefault(cfg.Toolbar.ThrottleIntervalMs, 16)) * time.Millisecond
}

// LogLevel returns the configured level, defaulting to info
func LogLevel(cfg *models.Config) models.LogLevel {
	if models.IsValidLogLevel(cfg.LogLevel) {
		return cfg.LogLevel
	}
	return models.LogInfo
}

// LogFile returns the log path, relative paths resolved against baseDir
func LogFile(baseDir string, cfg *models.Config) string {
	p := cfg.LogFile
	if p == "" {
		p = ".folio/folio.log"
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// MaxUploadBytes returns the per-file upload limit
func MaxUploadBytes(cfg *models.Config) int64 {
	if cfg.Upload.MaxBytes > 0 {
		return cfg.Upload.MaxBytes
	}
	return DefaultMaxUploadBytes
}

// UploadConcurrency returns how many files upload at once
func UploadConcurrency(cfg *models.Config) int {
	return orDefault(cfg.Upload.Concurrency, DefaultConcurrency)
}

// CacheSize returns the upload metadata cache size
func CacheSize(cfg *models.Config) int {
	return orDefault(cfg.Upload.CacheSize, DefaultCacheSize)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
