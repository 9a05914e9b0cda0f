package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/marcus/folio/internal/config"
	"github.com/marcus/folio/internal/features"
	"github.com/marcus/folio/internal/output"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

// featureStatus is one resolved flag as printed by the feature commands.
type featureStatus struct {
	Name         string `json:"name"`
	Enabled      bool   `json:"enabled"`
	Source       string `json:"source"`
	Gate         string `json:"gate"`
	Experimental bool   `json:"experimental,omitempty"`
	Description  string `json:"description"`
}

func resolveFeature(dir string, f features.Feature) featureStatus {
	enabled, source := features.Resolve(dir, f.Name)
	return featureStatus{
		Name:         f.Name,
		Enabled:      enabled,
		Source:       source,
		Gate:         f.Gate.String(),
		Experimental: f.Experimental,
		Description:  f.Description,
	}
}

func (s featureStatus) state() string {
	if s.Enabled {
		return "on"
	}
	return "off"
}

func writeFeatureTable(w io.Writer, rows []featureStatus) {
	fmt.Fprintf(w, "%-16s  %-5s  %-7s  %-26s  %s\n", "NAME", "STATE", "SOURCE", "GATES", "DESCRIPTION")
	for _, s := range rows {
		desc := s.Description
		if s.Experimental {
			desc += output.Muted(" (experimental)")
		}
		fmt.Fprintf(w, "%-16s  %-5s  %-7s  %-26s  %s\n", s.Name, s.state(), s.Source, s.Gate, desc)
	}
}

// lookupFeatureArg resolves a user-typed flag name. Unknown names get the
// closest known names as suggestions.
func lookupFeatureArg(raw string) (features.Feature, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, "-", "_")
	if f, ok := features.Lookup(name); ok {
		return f, nil
	}

	var names []string
	for _, f := range features.ListAll() {
		names = append(names, f.Name)
	}
	var near []string
	for _, m := range fuzzy.Find(name, names) {
		near = append(near, m.Str)
	}
	if len(near) > 0 {
		return features.Feature{}, fmt.Errorf("unknown feature %q, did you mean %s?", name, strings.Join(near, " or "))
	}
	return features.Feature{}, fmt.Errorf("unknown feature %q (known: %s)", name, strings.Join(names, ", "))
}

// setFeature writes a project override after checking the combination still
// works.
func setFeature(dir string, f features.Feature, enabled bool) error {
	if err := features.CheckSet(dir, f.Name, enabled); err != nil {
		return err
	}
	if err := config.SetFeatureFlag(dir, f.Name, enabled); err != nil {
		return fmt.Errorf("set feature flag: %w", err)
	}
	if !enabled && f.Gate.Kind == features.GatePlugin &&
		!features.AnyToolbar(dir) && features.IsEnabled(dir, features.CommandPalette.Name) {
		output.Warning("no toolbar is enabled; %s has nothing to search", features.CommandPalette.Name)
	}
	return nil
}

var featureCmd = &cobra.Command{
	Use:     "feature",
	Short:   "Show and override feature flags",
	Long:    "Feature flags switch editor plugins, keys, commands and behaviors. Environment variables\n(FOLIO_FEATURE_<NAME>, FOLIO_ENABLE_FEATURE, FOLIO_DISABLE_FEATURE) win over project config.",
	GroupID: "system",
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feature flags, what they gate and where their state comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows []featureStatus
		for _, f := range features.ListAll() {
			rows = append(rows, resolveFeature(getBaseDir(), f))
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(rows)
		}
		writeFeatureTable(output.Stdout, rows)
		return nil
	},
}

var featureGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show one feature flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := lookupFeatureArg(args[0])
		if err != nil {
			return err
		}
		s := resolveFeature(getBaseDir(), f)
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(s)
		}
		fmt.Fprintf(output.Stdout, "%s=%t (source=%s, gates %s)\n", s.Name, s.Enabled, s.Source, s.Gate)
		return nil
	},
}

var featureSetCmd = &cobra.Command{
	Use:     "set <name> <on|off>",
	Short:   "Override a feature flag in the project config",
	Args:    cobra.ExactArgs(2),
	Example: "  folio feature set parallel_upload on\n  folio feature set table_toolbar off",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := lookupFeatureArg(args[0])
		if err != nil {
			return err
		}
		enabled, err := features.ParseBool(args[1])
		if err != nil {
			return err
		}
		if err := setFeature(getBaseDir(), f, enabled); err != nil {
			return err
		}
		output.Success("%s %s (%s)", f.Name, resolveFeature(getBaseDir(), f).state(), f.Gate)
		return nil
	},
}

var featureUnsetCmd = &cobra.Command{
	Use:   "unset <name>",
	Short: "Drop a project override so the default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := lookupFeatureArg(args[0])
		if err != nil {
			return err
		}
		if err := config.UnsetFeatureFlag(getBaseDir(), f.Name); err != nil {
			return fmt.Errorf("unset feature flag: %w", err)
		}
		s := resolveFeature(getBaseDir(), f)
		output.Success("%s override removed, now %s (%s)", f.Name, s.state(), s.Source)
		return nil
	},
}

func init() {
	featureListCmd.Flags().Bool("json", false, "Output JSON")
	featureGetCmd.Flags().Bool("json", false, "Output JSON")

	featureCmd.AddCommand(featureListCmd, featureGetCmd, featureSetCmd, featureUnsetCmd)
	rootCmd.AddCommand(featureCmd)
}
