package cmd

import (
	"fmt"

	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/output"
	"github.com/spf13/cobra"
)

var uploadLogCmd = &cobra.Command{
	Use:     "upload-log",
	Short:   "View rejected upload attempts",
	Long:    `Shows files that were refused because they were too large or not a supported image.`,
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		clearFlag, _ := cmd.Flags().GetBool("clear")
		if clearFlag {
			if err := db.ClearUploadEvents(baseDir); err != nil {
				output.Error("failed to clear upload log: %v", err)
				return err
			}
			fmt.Println("Cleared upload log")
			return nil
		}

		events, err := db.ReadUploadEvents(baseDir)
		if err != nil {
			output.Error("failed to read upload log: %v", err)
			return err
		}

		jsonOut, _ := cmd.Flags().GetBool("json")
		if jsonOut {
			return output.JSON(events)
		}

		if len(events) == 0 {
			fmt.Println("No rejected uploads logged")
			return nil
		}

		fmt.Printf("Rejected uploads (%d):\n\n", len(events))
		for _, e := range events {
			ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
			size := ""
			if e.Size > 0 {
				size = " (" + output.FormatSize(e.Size) + ")"
			}
			fmt.Printf("%s  %s%s\n", ts, e.Name, size)
			fmt.Printf("  Reason: %s\n\n", e.Reason)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadLogCmd)

	uploadLogCmd.Flags().Bool("clear", false, "Clear the upload log")
	uploadLogCmd.Flags().Bool("json", false, "Output as JSON")
}
