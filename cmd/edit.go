package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/marcus/folio/internal/app"
	"github.com/marcus/folio/internal/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Open a markdown document in the editor",
	Long: `Open a markdown document in the terminal editor. Without a file the last
edited document is reopened. A file that does not exist is created on save.`,
	GroupID: "docs",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the editor needs an interactive terminal; try 'folio preview' or 'folio outline'")
	}

	path, err := resolveDocPath(args)
	if err != nil {
		return err
	}
	doc, err := loadDocument(path)
	if err != nil {
		output.Error("%v", err)
		return err
	}

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

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p.log.Info("edit", "path", path, "blocks", doc.Len())
	return app.Run(app.Options{
		Path:    path,
		BaseDir: p.dir,
		Config:  p.cfg,
		Doc:     doc,
		Store:   p.db,
		Uploads: uploader,
		Logger:  p.log.Logger,
		Context: ctx,
	})
}
