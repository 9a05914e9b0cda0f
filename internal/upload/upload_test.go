package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/models"
	"golang.org/x/image/bmp"
)

type memStore struct {
	mu      sync.Mutex
	byHash  map[string]models.Upload
	lookups int
}

func newMemStore() *memStore {
	return &memStore{byHash: map[string]models.Upload{}}
}

func (s *memStore) CreateUpload(u *models.Upload, data []byte) (*models.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byHash[u.Hash]; ok {
		return &existing, nil
	}
	rec := *u
	rec.ID = "up-" + u.Hash[:8]
	rec.Size = int64(len(data))
	s.byHash[u.Hash] = rec
	return &rec, nil
}

func (s *memStore) GetUploadByHash(hash string) (*models.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	rec, ok := s.byHash[hash]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &rec, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func bmpBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("bmp encode failed: %v", err)
	}
	return buf.Bytes()
}

func newUploader(t *testing.T, store Store, opts Options) *Uploader {
	t.Helper()
	u, err := New(store, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return u
}

func TestUploadRecordsDimensions(t *testing.T) {
	u := newUploader(t, newMemStore(), Options{})

	rec, err := u.Upload(context.Background(), "red.png", pngBytes(t, 7, 3))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if rec.Width != 7 || rec.Height != 3 || rec.MediaType != models.MediaPNG {
		t.Errorf("upload = %+v", rec)
	}
	if len(rec.Hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(rec.Hash))
	}

	rec, err = u.Upload(context.Background(), "gray.bmp", bmpBytes(t, 2, 5))
	if err != nil {
		t.Fatalf("Upload bmp failed: %v", err)
	}
	if rec.MediaType != models.MediaBMP || rec.Height != 5 {
		t.Errorf("bmp upload = %+v", rec)
	}
}

func TestUploadRejects(t *testing.T) {
	dir := t.TempDir()
	u := newUploader(t, newMemStore(), Options{MaxBytes: 64, EventsDir: dir})

	if _, err := u.Upload(context.Background(), "notes.txt", []byte("hello")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("text upload err = %v, want ErrUnsupported", err)
	}
	if _, err := u.Upload(context.Background(), "big.png", make([]byte, 65)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("large upload err = %v, want ErrTooLarge", err)
	}

	events, err := db.ReadUploadEvents(dir)
	if err != nil {
		t.Fatalf("ReadUploadEvents failed: %v", err)
	}
	if len(events) != 2 || events[1].Name != "big.png" {
		t.Errorf("events = %+v", events)
	}
}

func TestUploadCanceled(t *testing.T) {
	u := newUploader(t, newMemStore(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := u.Upload(ctx, "a.png", pngBytes(t, 1, 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestUploadFilesReportsEachFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(good, pngBytes(t, 4, 4), 0644); err != nil {
		t.Fatalf("setup: write failed: %v", err)
	}
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatalf("setup: write failed: %v", err)
	}
	missing := filepath.Join(dir, "missing.png")

	u := newUploader(t, newMemStore(), Options{Concurrency: 2})
	results := u.UploadFiles(context.Background(), []string{bad, good, missing})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Path != bad || !errors.Is(results[0].Err, ErrUnsupported) {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Err != nil || results[1].Upload == nil || results[1].Upload.Name != "good.png" {
		t.Errorf("results[1] = %+v", results[1])
	}
	if !errors.Is(results[2].Err, os.ErrNotExist) {
		t.Errorf("results[2] = %+v", results[2])
	}

	first, err := FirstSuccess(results)
	if err != nil || first.Name != "good.png" {
		t.Errorf("FirstSuccess = %+v, %v", first, err)
	}
	if _, err := FirstSuccess(results[:1]); !errors.Is(err, ErrUnsupported) {
		t.Errorf("FirstSuccess all failed err = %v", err)
	}
	if _, err := FirstSuccess(nil); err == nil {
		t.Error("FirstSuccess(nil) should fail")
	}
}

func TestFetchUsesCache(t *testing.T) {
	store := newMemStore()
	u := newUploader(t, store, Options{CacheSize: 2})

	rec, err := u.Upload(context.Background(), "a.png", pngBytes(t, 2, 2))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	got, err := u.Fetch(context.Background(), rec.Src())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.ID != rec.ID || store.lookups != 0 {
		t.Errorf("Fetch = %+v, lookups = %d", got, store.lookups)
	}

	u.cache.Purge()
	if _, err := u.Fetch(context.Background(), rec.Src()); err != nil {
		t.Fatalf("Fetch after purge failed: %v", err)
	}
	if store.lookups != 1 {
		t.Errorf("lookups = %d, want 1", store.lookups)
	}

	if _, err := u.Fetch(context.Background(), "/media/unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown hash err = %v", err)
	}
	if _, err := u.Fetch(context.Background(), "https://example.com/x.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign src err = %v", err)
	}
}

func TestHashFromSrc(t *testing.T) {
	tests := []struct {
		src  string
		hash string
		ok   bool
	}{
		{"/media/abc", "abc", true},
		{"/media/", "", false},
		{"/media/a/b", "", false},
		{"media/abc", "", false},
	}
	for _, tt := range tests {
		hash, ok := HashFromSrc(tt.src)
		if hash != tt.hash || ok != tt.ok {
			t.Errorf("HashFromSrc(%q) = %q, %v", tt.src, hash, ok)
		}
	}
}

func TestUploadIntoDatabase(t *testing.T) {
	store, err := db.Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer store.Close()

	u := newUploader(t, store, Options{})
	data := pngBytes(t, 3, 3)
	rec, err := u.Upload(context.Background(), "a.png", data)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	stored, err := store.UploadData(rec.Hash)
	if err != nil || !bytes.Equal(stored, data) {
		t.Errorf("stored data mismatch: %v", err)
	}
}
