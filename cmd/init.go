package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/marcus/folio/internal/config"
	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/internal/output"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create the .folio directory in the current directory",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := getBaseDir()

		database, err := db.Initialize(dir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		if !config.Exists(dir) {
			if err := config.Save(dir, &models.Config{LogLevel: models.LogInfo}); err != nil {
				output.Error("write config: %v", err)
				return err
			}
		}

		output.Success("initialized %s", filepath.Join(dir, ".folio"))
		fmt.Println(output.Muted("  schema version " + fmt.Sprint(db.SchemaVersion())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
