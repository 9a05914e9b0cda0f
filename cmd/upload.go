package cmd

import (
	"fmt"

	"github.com/marcus/folio/internal/output"
	"github.com/marcus/folio/internal/serve"
	"github.com/marcus/folio/internal/upload"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Store image files for use in documents",
	Long: `Store image files in the project database and print the source to use in
an image block. When 'folio serve' is running the full URL is printed too.`,
	GroupID: "docs",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(true)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer p.Close()

		uploader, err := p.newUploader()
		if err != nil {
			return err
		}
		results := uploader.UploadFiles(cmd.Context(), args)

		jsonOut, _ := cmd.Flags().GetBool("json")
		if jsonOut {
			return output.JSON(uploadResultsJSON(results))
		}

		server, running := serve.Running(p.dir)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				output.Error("%s: %v", r.Path, r.Err)
				continue
			}
			src := r.Upload.Src()
			if running {
				src = server.URL() + src
			}
			output.Success("%s %s", r.Upload.Name, src)
			fmt.Println("  " + output.Muted(fmt.Sprintf("%s, %dx%d, %s",
				r.Upload.MediaType, r.Upload.Width, r.Upload.Height, output.FormatSize(r.Upload.Size))))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().Bool("json", false, "Output as JSON")
}

type uploadResultJSON struct {
	Path   string `json:"path"`
	Src    string `json:"src,omitempty"`
	Hash   string `json:"hash,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

func uploadResultsJSON(results []upload.Result) []uploadResultJSON {
	out := make([]uploadResultJSON, 0, len(results))
	for _, r := range results {
		j := uploadResultJSON{Path: r.Path}
		if r.Err != nil {
			j.Error = r.Err.Error()
		} else {
			j.Src = r.Upload.Src()
			j.Hash = r.Upload.Hash
			j.Width = r.Upload.Width
			j.Height = r.Upload.Height
		}
		out = append(out, j)
	}
	return out
}
