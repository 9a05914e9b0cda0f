// Package upload stores image files and serves their metadata to the
// image toolbar's dialogs.
package upload

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/models"
	"golang.org/x/crypto/blake2b"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const mediaPrefix = "/media/"

var (
	// ErrTooLarge is returned for files over the configured limit.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupported is returned for content that is not a known image format.
	ErrUnsupported = errors.New("unsupported image format")
	// ErrNotFound is returned when a source does not name a stored upload.
	ErrNotFound = errors.New("upload not found")
)

// Store persists uploads. *db.DB implements it.
type Store interface {
	CreateUpload(u *models.Upload, data []byte) (*models.Upload, error)
	GetUploadByHash(hash string) (*models.Upload, error)
}

// Options configures an Uploader.
type Options struct {
	MaxBytes    int64
	Concurrency int
	CacheSize   int
	// EventsDir, when set, receives a jsonl record of rejected files.
	EventsDir string
	Logger    *slog.Logger
}

// Uploader hashes, inspects and stores image files.
type Uploader struct {
	store  Store
	opts   Options
	cache  *lru.Cache[string, models.Upload]
	logger *slog.Logger
}

// New creates an Uploader backed by store.
func New(store Store, opts Options) (*Uploader, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	cache, err := lru.New[string, models.Upload](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Uploader{store: store, opts: opts, cache: cache, logger: logger}, nil
}

// Hash returns the content address of data.
func Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Upload stores one file's content under name.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (*models.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if int64(len(data)) > u.opts.MaxBytes {
		u.reject(name, int64(len(data)), ErrTooLarge)
		return nil, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		u.reject(name, int64(len(data)), ErrUnsupported)
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
	}
	mediaType := models.MediaTypeForFormat(format)
	if mediaType == "" {
		u.reject(name, int64(len(data)), ErrUnsupported)
		return nil, fmt.Errorf("%s: %s: %w", name, format, ErrUnsupported)
	}

	rec, err := u.store.CreateUpload(&models.Upload{
		Hash:      Hash(data),
		Name:      name,
		MediaType: mediaType,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	u.cache.Add(rec.Hash, *rec)
	return rec, nil
}

// UploadFile reads and stores a file from disk.
func (u *Uploader) UploadFile(ctx context.Context, path string) (*models.Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Read one byte past the limit so oversized files are detected without
	// loading them whole.
	data, err := io.ReadAll(io.LimitReader(f, u.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return u.Upload(ctx, filepath.Base(path), data)
}

// Result is the outcome of one file in a batch.
type Result struct {
	Path   string
	Upload *models.Upload
	Err    error
}

// UploadFiles stores several files concurrently. It returns one result per
// path, in input order; a failing file does not stop the others.
func (u *Uploader) UploadFiles(ctx context.Context, paths []string) []Result {
	batch := uuid.NewString()
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)
	for i, p := range paths {
		g.Go(func() error {
			rec, err := u.UploadFile(ctx, p)
			results[i] = Result{Path: p, Upload: rec, Err: err}
			return nil
		})
	}
	g.Wait()

	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		} else {
			u.logger.Warn("upload: file failed", "batch", batch, "path", r.Path, "err", r.Err)
		}
	}
	u.logger.Info("upload: batch done", "batch", batch, "files", len(paths), "ok", ok)
	return results
}

// FirstSuccess returns the first stored upload of a batch, or the first
// error when every file failed.
func FirstSuccess(results []Result) (*models.Upload, error) {
	var firstErr error
	for _, r := range results {
		if r.Err == nil && r.Upload != nil {
			return r.Upload, nil
		}
		if firstErr == nil {
			firstErr = r.Err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("no files")
	}
	return nil, firstErr
}

// Fetch returns metadata for an image source of the form /media/<hash>.
func (u *Uploader) Fetch(ctx context.Context, src string) (*models.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, ok := HashFromSrc(src)
	if !ok {
		return nil, fmt.Errorf("%s: %w", src, ErrNotFound)
	}
	if rec, ok := u.cache.Get(hash); ok {
		return &rec, nil
	}
	rec, err := u.store.GetUploadByHash(hash)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", src, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	u.cache.Add(hash, *rec)
	return rec, nil
}

// HashFromSrc extracts the content hash from a media source.
func HashFromSrc(src string) (string, bool) {
	hash, ok := strings.CutPrefix(src, mediaPrefix)
	if !ok || hash == "" || strings.Contains(hash, "/") {
		return "", false
	}
	return hash, true
}

func (u *Uploader) reject(name string, size int64, reason error) {
	u.logger.Warn("upload: rejected", "name", name, "size", size, "reason", reason)
	if u.opts.EventsDir == "" {
		return
	}
	if err := db.LogUploadEvent(u.opts.EventsDir, db.UploadEvent{
		Name:   name,
		Size:   size,
		Reason: reason.Error(),
	}); err != nil {
		u.logger.Error("upload: log event", "err", err)
	}
}
