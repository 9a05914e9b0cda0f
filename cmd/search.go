package cmd

import (
	"fmt"

	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/output"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search [query]",
	Short:   "Find documents by id, title or path",
	Long:    `Rank the documents folio has saved by how well their id, title or path match.`,
	GroupID: "docs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		query := args[0]
		results, err := database.SearchDocuments(query)
		if err != nil {
			output.Error("search failed: %v", err)
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(results) > limit {
			results = results[:limit]
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(results)
		}

		for _, r := range results {
			fmt.Printf("%s  %-30s  %s %s\n", r.Document.ID, r.Document.Title, r.Document.Path,
				output.Muted(fmt.Sprintf("(%s, %d)", r.MatchField, r.Score)))
		}

		if len(results) == 0 {
			fmt.Printf("No documents matching '%s'\n", query)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("limit", "n", 0, "Maximum results (0 = all)")
	searchCmd.Flags().Bool("json", false, "Output as JSON")
}
