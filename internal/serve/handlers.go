package serve

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/upload"
	"github.com/marcus/folio/pkg/editor"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]any{"status": "ok", "read_only": s.config.ReadOnly}, http.StatusOK)
}

// handleMedia serves stored image bytes. Uploads are content addressed, so
// responses are cacheable forever and the hash doubles as the ETag.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if !validHash(hash) {
		WriteError(w, ErrValidation, "invalid media hash", http.StatusBadRequest)
		return
	}

	etag := `"` + hash + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	meta, err := s.store.GetUploadByHash(hash)
	if err != nil {
		s.writeStoreError(w, err, "upload")
		return
	}
	data, err := s.store.UploadData(hash)
	if err != nil {
		s.writeStoreError(w, err, "upload")
		return
	}

	w.Header().Set("Content-Type", string(meta.MediaType))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(data)
	}
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		results, err := s.store.SearchDocuments(q)
		if err != nil {
			s.writeStoreError(w, err, "documents")
			return
		}
		dtos := make([]DocumentDTO, 0, len(results))
		for _, res := range results {
			dtos = append(dtos, SearchResultToDTO(res))
		}
		WriteSuccess(w, map[string]any{"documents": dtos}, http.StatusOK)
		return
	}

	docs, err := s.store.ListDocuments()
	if err != nil {
		s.writeStoreError(w, err, "documents")
		return
	}
	dtos := make([]DocumentDTO, 0, len(docs))
	for _, d := range docs {
		dtos = append(dtos, DocumentToDTO(d))
	}
	WriteSuccess(w, map[string]any{"documents": dtos}, http.StatusOK)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.ListSnapshots(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err, "document")
		return
	}
	dtos := make([]SnapshotDTO, 0, len(snaps))
	for _, sn := range snaps {
		dtos = append(dtos, SnapshotToDTO(sn))
	}
	WriteSuccess(w, map[string]any{"snapshots": dtos}, http.StatusOK)
}

// handleGetSnapshot returns a stored revision as markdown.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := db.NormalizeSnapshotID(r.PathValue("id"))
	doc, err := s.store.LoadSnapshot(id)
	if err != nil {
		s.writeStoreError(w, err, "snapshot")
		return
	}
	WriteSuccess(w, map[string]any{
		"id":       id,
		"blocks":   doc.Len(),
		"markdown": editor.Markdown(doc),
	}, http.StatusOK)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.store.ListUploads()
	if err != nil {
		s.writeStoreError(w, err, "uploads")
		return
	}
	dtos := make([]UploadDTO, 0, len(uploads))
	for _, u := range uploads {
		dtos = append(dtos, UploadToDTO(u))
	}
	WriteSuccess(w, map[string]any{"uploads": dtos}, http.StatusOK)
}

// handleCreateUpload stores the raw request body as an image. The file name
// comes from the name query parameter.
func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	if s.config.ReadOnly {
		WriteError(w, ErrForbidden, "server is read-only", http.StatusForbidden)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		WriteError(w, ErrValidation, "name is required", http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, ErrTooLarge, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		WriteError(w, ErrValidation, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := s.uploader.Upload(r.Context(), name, data)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		WriteError(w, ErrTooLarge, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, upload.ErrUnsupported):
		WriteError(w, ErrUnsupported, err.Error(), http.StatusUnsupportedMediaType)
		return
	case err != nil:
		s.logger.Error("store upload", "name", name, "err", err)
		WriteError(w, ErrInternal, "failed to store upload", http.StatusInternalServerError)
		return
	}
	WriteSuccess(w, UploadToDTO(*rec), http.StatusCreated)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, db.ErrNotFound) {
		WriteError(w, ErrNotFound, what+" not found", http.StatusNotFound)
		return
	}
	s.logger.Error("store", "what", what, "err", err)
	WriteError(w, ErrInternal, "failed to load "+what, http.StatusInternalServerError)
}

func validHash(h string) bool {
	if len(h) != 64 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}
