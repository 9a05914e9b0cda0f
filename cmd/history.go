package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/features"
	"github.com/marcus/folio/internal/output"
	"github.com/marcus/folio/pkg/editor"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [file]",
	Short: "List or restore saved revisions of a document",
	Long: `List the snapshots stored each time the document was saved. Use --show to
print one as markdown, or --restore to write it back over the file.`,
	GroupID: "docs",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDocPath(args)
		if err != nil {
			return err
		}

		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		if id, _ := cmd.Flags().GetString("show"); id != "" {
			doc, err := database.LoadSnapshot(id)
			if err != nil {
				output.Error("load snapshot %s: %v", id, err)
				return err
			}
			fmt.Print(editor.Markdown(doc))
			return nil
		}

		if id, _ := cmd.Flags().GetString("restore"); id != "" {
			doc, err := database.LoadSnapshot(id)
			if err != nil {
				output.Error("load snapshot %s: %v", id, err)
				return err
			}
			if err := os.WriteFile(path, []byte(editor.Markdown(doc)), 0644); err != nil {
				output.Error("write %s: %v", path, err)
				return err
			}
			output.Success("restored %s from %s", path, db.NormalizeSnapshotID(id))
			return nil
		}

		document, err := database.GetDocumentByPath(path)
		if errors.Is(err, db.ErrNotFound) {
			fmt.Printf("No history for %s\n", path)
			return nil
		}
		if err != nil {
			output.Error("%v", err)
			return err
		}
		snaps, err := database.ListSnapshots(document.ID)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(snaps)
		}
		if len(snaps) == 0 {
			fmt.Printf("No history for %s\n", path)
			return nil
		}

		root := output.TreeNode{ID: document.ID, Title: document.Title}
		for _, s := range snaps {
			root.Children = append(root.Children, output.TreeNode{
				ID:     s.ID,
				Title:  fmt.Sprintf("%d blocks", s.Blocks),
				Detail: output.FormatSize(int64(s.Size)) + ", " + output.FormatTimeAgo(s.CreatedAt),
			})
		}
		fmt.Printf("%s: %s (%d snapshots)\n", document.ID, document.Title, len(snaps))
		fmt.Println(output.RenderTree(root, output.TreeRenderOptions{ShowDetail: true}))
		return nil
	},
}

func init() {
	historyCmd.Flags().String("show", "", "Print a snapshot as markdown")
	historyCmd.Flags().String("restore", "", "Overwrite the file with a snapshot")
	historyCmd.Flags().Bool("json", false, "Output as JSON")
	historyCmd.MarkFlagsMutuallyExclusive("show", "restore")

	AddFeatureGatedCommand(features.Snapshots.Name, historyCmd)
}
