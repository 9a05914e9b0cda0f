package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/output"
	"github.com/marcus/folio/pkg/editor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Render a document as styled markdown",
	Long: `Render a document to the terminal. With --snapshot a stored revision is
rendered instead of the file on disk.`,
	GroupID: "docs",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, _ := cmd.Flags().GetString("snapshot")
		style, _ := cmd.Flags().GetString("style")
		width, _ := cmd.Flags().GetInt("width")

		var src string
		if snapshot != "" {
			database, err := db.Open(getBaseDir())
			if err != nil {
				output.Error("%v", err)
				return err
			}
			defer database.Close()
			doc, err := database.LoadSnapshot(snapshot)
			if err != nil {
				output.Error("load snapshot %s: %v", snapshot, err)
				return err
			}
			src = editor.Markdown(doc)
		} else {
			path, err := resolveDocPath(args)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			src = string(data)
		}

		out, err := renderMarkdown(src, style, previewWidth(width))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("snapshot", "", "Render a stored snapshot")
	previewCmd.Flags().String("style", "auto", "Glamour style (auto, dark, light, notty)")
	previewCmd.Flags().Int("width", 0, "Wrap width (default: terminal width)")
}

// previewWidth picks the wrap width: the flag, else the terminal, else 80.
func previewWidth(flag int) int {
	if flag > 0 {
		return flag
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func renderMarkdown(src, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(src)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
