// Package imagetoolbar shows a floating toolbar over the selected image with
// actions to edit its attributes, replace its file and copy its source.
package imagetoolbar

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/marcus/folio/internal/features/floating"
	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/internal/upload"
	"github.com/marcus/folio/pkg/editor"
	"github.com/marcus/folio/pkg/toolbar"
)

// PluginKey names the image toolbar plugin.
const PluginKey editor.PluginKey = "floatingImageToolbar"

// ReplaceTitle is the title of the replace action.
const ReplaceTitle = "Replace image file"

var errNoImage = errors.New("no image selected")

// Service is the upload backend the dialogs talk to.
type Service interface {
	Fetch(ctx context.Context, src string) (*models.Upload, error)
	UploadFiles(ctx context.Context, paths []string) []upload.Result
}

// Options configures the image toolbar.
type Options struct {
	// Service may be nil; the replace action is then disabled.
	Service Service
	// CopyText writes to the system clipboard.
	CopyText func(string) error
	Logger   *slog.Logger
	// Derive replaces the default menu.
	Derive toolbar.DeriveFunc
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Derive == nil {
		items := MenuItems(o)
		o.Derive = func(*editor.View, toolbar.Target) ([]toolbar.MenuItem, error) {
			return items, nil
		}
	}
	return o
}

// NewPlugin returns the image toolbar plugin.
func NewPlugin(opts Options) editor.Plugin {
	opts = opts.withDefaults()
	return editor.Plugin{
		Key: PluginKey,
		View: func(view *editor.View) editor.PluginView {
			return floating.New(floating.Config{
				Name:       string(PluginKey),
				Locate:     Locate,
				Derive:     opts.Derive,
				ShouldShow: editor.IsImageSelected,
				Logger:     opts.Logger,
			}).Sync(view)
		},
	}
}

// Locate anchors to the selected image of a focused view.
func Locate(view *editor.View) (toolbar.Target, bool) {
	if !editor.IsImageSelected(view) {
		return nil, false
	}
	idx, _, _ := editor.SelectedImage(view.State())
	return editor.TargetFor(view, idx)
}

// MenuItems returns the default image actions.
func MenuItems(opts Options) []toolbar.MenuItem {
	if opts.CopyText == nil {
		opts.CopyText = clipboard.WriteAll
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return []toolbar.MenuItem{
		toolbar.ModalTrigger("Edit image", "edit", editProps(opts.Service)).
			WithEnabled(imageSelected),
		toolbar.ModalTrigger(ReplaceTitle, "upload", replaceProps(opts.Service, opts.Logger)).
			WithEnabled(canReplace(opts.Service)),
		toolbar.Button("Copy source", "copy", copySource(opts.CopyText, opts.Logger)),
	}
}

func imageSelected(state editor.State, _ editor.Dispatch, _ *editor.View) bool {
	_, _, ok := editor.SelectedImage(state)
	return ok
}

func canReplace(svc Service) editor.Command {
	return func(state editor.State, dispatch editor.Dispatch, view *editor.View) bool {
		return svc != nil && imageSelected(state, dispatch, view)
	}
}

// attrsData seeds a form from the image's current attributes.
func attrsData(state editor.State) toolbar.FormData {
	_, b, ok := editor.SelectedImage(state)
	if !ok {
		return toolbar.FormData{}
	}
	return toolbar.FormData{
		"src":   b.Attr("src"),
		"alt":   b.Attr("alt"),
		"title": b.Attr("title"),
	}
}

func editProps(svc Service) toolbar.ModalFormProps {
	return toolbar.ModalFormProps{
		Title: "Edit image",
		Fields: []toolbar.FormField{
			{Name: "src", Label: "Source", Type: toolbar.FieldURL, Required: true, Placeholder: "/media/..."},
			{Name: "alt", Label: "Alt text"},
			{Name: "title", Label: "Title"},
			{Name: "upload", Type: toolbar.FieldHidden},
		},
		InitialData: func(ctx context.Context, state editor.State) (toolbar.FormData, error) {
			if _, _, ok := editor.SelectedImage(state); !ok {
				return nil, errNoImage
			}
			data := attrsData(state)
			if svc == nil {
				return data, nil
			}
			if _, ok := upload.HashFromSrc(data["src"]); !ok {
				return data, nil
			}
			rec, err := svc.Fetch(ctx, data["src"])
			if err != nil {
				return nil, err
			}
			data["upload"] = rec.ID
			if data["title"] == "" {
				data["title"] = rec.Name
			}
			return data, nil
		},
		Fallback: attrsData,
		OnSubmit: func(ctx context.Context, _ editor.State, data toolbar.FormData) (editor.Command, error) {
			attrs := map[string]string{
				"src":   strings.TrimSpace(data["src"]),
				"alt":   data["alt"],
				"title": data["title"],
			}
			if svc != nil {
				if rec, err := svc.Fetch(ctx, attrs["src"]); err == nil {
					addDimensions(attrs, rec)
				}
			}
			return editor.SetImageAttrs(attrs), nil
		},
	}
}

func replaceProps(svc Service, logger *slog.Logger) toolbar.ModalFormProps {
	return toolbar.ModalFormProps{
		Title: ReplaceTitle,
		Fields: []toolbar.FormField{
			{Name: "paths", Label: "Files", Required: true, Placeholder: "photo.png, other.jpg"},
		},
		OnSubmit: func(ctx context.Context, _ editor.State, data toolbar.FormData) (editor.Command, error) {
			if svc == nil {
				return nil, errors.New("uploads are not configured")
			}
			paths := SplitPaths(data["paths"])
			results := svc.UploadFiles(ctx, paths)
			rec, err := upload.FirstSuccess(results)
			if err != nil {
				return nil, err
			}
			if len(results) > 1 {
				logger.Info("image: replaced from batch", "used", rec.Name, "files", len(results))
			}
			attrs := map[string]string{"src": rec.Src()}
			addDimensions(attrs, rec)
			return editor.SetImageAttrs(attrs), nil
		},
	}
}

// InsertProps returns the form that uploads files and inserts the first
// stored one as a new image after the current block.
func InsertProps(svc Service, logger *slog.Logger) *toolbar.ModalFormProps {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &toolbar.ModalFormProps{
		Title: "Insert image",
		Fields: []toolbar.FormField{
			{Name: "paths", Label: "Files", Required: true, Placeholder: "photo.png, other.jpg"},
			{Name: "alt", Label: "Alt text"},
		},
		OnSubmit: func(ctx context.Context, _ editor.State, data toolbar.FormData) (editor.Command, error) {
			if svc == nil {
				return nil, errors.New("uploads are not configured")
			}
			results := svc.UploadFiles(ctx, SplitPaths(data["paths"]))
			rec, err := upload.FirstSuccess(results)
			if err != nil {
				return nil, err
			}
			logger.Info("image: inserted", "name", rec.Name, "files", len(results))
			attrs := map[string]string{"src": rec.Src(), "alt": data["alt"], "title": rec.Name}
			addDimensions(attrs, rec)
			return editor.InsertImage(attrs), nil
		},
	}
}

// ReplaceLeaf finds the replace action among a toolbar's items.
func ReplaceLeaf(items []toolbar.MenuItem) (toolbar.Leaf, bool) {
	for _, l := range toolbar.Flatten(items) {
		if l.Item.Title == ReplaceTitle && l.Item.Kind == toolbar.KindModal {
			return l, true
		}
	}
	return toolbar.Leaf{}, false
}

func copySource(copyText func(string) error, logger *slog.Logger) editor.Command {
	return func(state editor.State, dispatch editor.Dispatch, _ *editor.View) bool {
		_, b, ok := editor.SelectedImage(state)
		if !ok || b.Attr("src") == "" {
			return false
		}
		if dispatch == nil {
			return true
		}
		if err := copyText(b.Attr("src")); err != nil {
			logger.Warn("image: copy source failed", "err", err)
			return false
		}
		return true
	}
}

func addDimensions(attrs map[string]string, rec *models.Upload) {
	if rec.Width > 0 && rec.Height > 0 {
		attrs["width"] = strconv.Itoa(rec.Width)
		attrs["height"] = strconv.Itoa(rec.Height)
	}
}

// SplitPaths splits a comma or newline separated list of file paths.
func SplitPaths(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var paths []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			paths = append(paths, f)
		}
	}
	return paths
}
