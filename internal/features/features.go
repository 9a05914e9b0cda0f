// Package features resolves feature flags from defaults, project config and
// environment overrides.
package features

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/marcus/folio/internal/config"
)

// Feature is a named switch with a default
type Feature struct {
	Name         string
	Default      bool
	Experimental bool
	Description  string
	Gate         Gate
}

// GateKind says what sort of thing a flag switches.
type GateKind string

const (
	GatePlugin   GateKind = "plugin"
	GateCommand  GateKind = "command"
	GateKey      GateKind = "key"
	GateBehavior GateKind = "behavior"
)

// Gate names the editor plugin, CLI command, key or behavior a flag controls.
type Gate struct {
	Kind GateKind
	Name string
}

func (g Gate) String() string {
	return string(g.Kind) + ":" + g.Name
}

var (
	// ImageToolbar shows the floating toolbar on selected images
	ImageToolbar = Feature{
		Name:        "image_toolbar",
		Default:     true,
		Description: "Floating toolbar for selected images",
		Gate:        Gate{GatePlugin, "floatingImageToolbar"},
	}
	// TableToolbar shows the floating toolbar inside tables
	TableToolbar = Feature{
		Name:        "table_toolbar",
		Default:     true,
		Description: "Floating toolbar for table rows, columns and cells",
		Gate:        Gate{GatePlugin, "floatingTableToolbar"},
	}
	// CommandPalette enables fuzzy search over toolbar actions
	CommandPalette = Feature{
		Name:        "command_palette",
		Default:     true,
		Description: "Fuzzy search over toolbar actions",
		Gate:        Gate{GateKey, "ctrl+p"},
	}
	// Snapshots stores a revision on every save
	Snapshots = Feature{
		Name:        "snapshots",
		Default:     true,
		Description: "Store a document revision on every save",
		Gate:        Gate{GateCommand, "history"},
	}
	// ParallelUpload uploads several files at once
	ParallelUpload = Feature{
		Name:         "parallel_upload",
		Experimental: true,
		Description:  "Upload replacement images concurrently",
		Gate:         Gate{GateBehavior, "upload concurrency"},
	}
)

// ErrPaletteWithoutToolbars is returned when the palette would have no
// toolbar actions to search.
var ErrPaletteWithoutToolbars = errors.New("command_palette needs image_toolbar or table_toolbar enabled")

var all = []Feature{ImageToolbar, TableToolbar, CommandPalette, Snapshots, ParallelUpload}

// ListAll returns every known feature
func ListAll() []Feature {
	return append([]Feature(nil), all...)
}

// IsKnownFeature reports whether name is a known feature
func IsKnownFeature(name string) bool {
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (Feature, bool) {
	for _, f := range all {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// Lookup returns the feature called name.
func Lookup(name string) (Feature, bool) {
	return lookup(name)
}

// CheckSet reports whether setting name to enabled leaves a usable
// combination for the project at baseDir.
func CheckSet(baseDir, name string, enabled bool) error {
	if _, ok := lookup(name); !ok {
		return fmt.Errorf("unknown feature %q", name)
	}
	if name == CommandPalette.Name && enabled && !AnyToolbar(baseDir) {
		return ErrPaletteWithoutToolbars
	}
	return nil
}

// AnyToolbar reports whether at least one floating toolbar is enabled.
func AnyToolbar(baseDir string) bool {
	return IsEnabled(baseDir, ImageToolbar.Name) || IsEnabled(baseDir, TableToolbar.Name)
}

// IsEnabledForProcess resolves a flag from defaults and env only
func IsEnabledForProcess(name string) bool {
	enabled, _ := resolve("", name)
	return enabled
}

// IsEnabled resolves a flag for a project
func IsEnabled(baseDir, name string) bool {
	enabled, _ := Resolve(baseDir, name)
	return enabled
}

// Resolve returns the flag state and where it came from: "env", "config",
// "default" or "unknown".
func Resolve(baseDir, name string) (bool, string) {
	return resolve(baseDir, name)
}

func resolve(baseDir, name string) (bool, string) {
	f, ok := lookup(name)
	if !ok {
		return false, "unknown"
	}

	if f.Experimental && truthy(os.Getenv("FOLIO_DISABLE_EXPERIMENTAL")) {
		return false, "env"
	}
	if listContains(os.Getenv("FOLIO_DISABLE_FEATURE"), name) {
		return false, "env"
	}
	if raw, ok := os.LookupEnv(envName(name)); ok {
		if v, ok := parseBool(raw); ok {
			return v, "env"
		}
	}
	if listContains(os.Getenv("FOLIO_ENABLE_FEATURE"), name) {
		return true, "env"
	}

	if baseDir != "" {
		if v, ok, err := config.GetFeatureFlag(baseDir, name); err == nil && ok {
			return v, "config"
		}
	}
	return f.Default, "default"
}

func envName(name string) string {
	return "FOLIO_FEATURE_" + strings.ToUpper(name)
}

func listContains(list, name string) bool {
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(strings.ToLower(item)) == name {
			return true
		}
	}
	return false
}

func truthy(raw string) bool {
	v, ok := parseBool(raw)
	return ok && v
}

// ParseBool accepts the on/off spellings flags use in env and on the command
// line.
func ParseBool(raw string) (bool, error) {
	v, ok := parseBool(raw)
	if !ok {
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
	return v, nil
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	}
	return false, false
}
