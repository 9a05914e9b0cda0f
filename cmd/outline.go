package cmd

import (
	"fmt"

	"github.com/marcus/folio/internal/output"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:     "outline [file]",
	Short:   "Show the heading tree of a document with its tables and images",
	GroupID: "docs",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDocPath(args)
		if err != nil {
			return err
		}
		doc, err := loadDocument(path)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		depth, _ := cmd.Flags().GetInt("depth")
		nodes := output.Outline(doc)
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(nodes)
		}
		if len(nodes) == 0 {
			fmt.Println("No headings, tables or images")
			return nil
		}
		for _, line := range output.RenderTreeLines(nodes, output.TreeRenderOptions{
			MaxDepth:   depth,
			ShowDetail: true,
		}) {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)

	outlineCmd.Flags().Int("depth", 0, "Maximum depth (0 = unlimited)")
	outlineCmd.Flags().Bool("json", false, "Output as JSON")
}
