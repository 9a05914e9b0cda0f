package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcus/folio/internal/config"
	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/features"
	"github.com/marcus/folio/internal/logging"
	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/internal/upload"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/schema"
)

// project bundles what most commands open: config, database and logger.
type project struct {
	dir string
	cfg *models.Config
	db  *db.DB
	log *logging.Logger
}

// openProject loads the project in the working directory. With create set
// a missing database is initialized.
func openProject(create bool) (*project, error) {
	dir := getBaseDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var database *db.DB
	if create {
		database, err = db.OpenOrInitialize(dir)
	} else {
		database, err = db.Open(dir)
	}
	if err != nil {
		return nil, err
	}

	level := config.LogLevel(cfg)
	if logLevel.level != "" {
		level = logLevel.level
	}
	return &project{
		dir: dir,
		cfg: cfg,
		db:  database,
		log: logging.New(config.LogFile(dir, cfg), level),
	}, nil
}

func (p *project) Close() {
	p.db.Close()
	p.log.Close()
}

// newUploader builds the uploader. Without the parallel_upload feature
// files are stored one at a time.
func (p *project) newUploader() (*upload.Uploader, error) {
	concurrency := 1
	if features.IsEnabled(p.dir, features.ParallelUpload.Name) {
		concurrency = config.UploadConcurrency(p.cfg)
	}
	return upload.New(p.db, upload.Options{
		MaxBytes:    config.MaxUploadBytes(p.cfg),
		Concurrency: concurrency,
		CacheSize:   config.CacheSize(p.cfg),
		EventsDir:   p.dir,
		Logger:      p.log.Logger,
	})
}

// resolveDocPath returns the absolute path of the document named by args,
// falling back to the last edited document.
func resolveDocPath(args []string) (string, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		last, err := config.GetLastDocument(getBaseDir())
		if err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
		path = last
	}
	if path == "" {
		return "", errors.New("no file given and no document edited yet")
	}
	return filepath.Abs(path)
}

// loadDocument parses a markdown file. A missing file yields an empty
// document so new files can be created from the editor.
func loadDocument(path string) (*editor.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return editor.NewDocument(editor.Block{Type: schema.Paragraph}), nil
	}
	if err != nil {
		return nil, err
	}
	doc, err := editor.ParseMarkdown(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
