package cmd

import (
	"github.com/marcus/folio/internal/features"
	"github.com/spf13/cobra"
)

// AddFeatureGatedCommand registers a command only when its feature is enabled
// for the current process (env overrides + defaults).
func AddFeatureGatedCommand(featureName string, command *cobra.Command) {
	if features.IsEnabledForProcess(featureName) {
		rootCmd.AddCommand(command)
	}
}
