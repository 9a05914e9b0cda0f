package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/models"
)

// ============================================================================
// Response Envelope
// ============================================================================

// Envelope is the standard response wrapper for all API responses.
// Success: {"ok": true, "data": {...}}
// Error:   {"ok": false, "error": {"code": "...", "message": "..."}}
type Envelope struct {
	OK    bool          `json:"ok"`
	Data  any           `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload holds structured error information.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Standard error codes.
const (
	ErrValidation  = "validation_error" // 400
	ErrNotFound    = "not_found"        // 404
	ErrForbidden   = "forbidden"        // 403
	ErrTooLarge    = "too_large"        // 413
	ErrUnsupported = "unsupported"      // 415
	ErrInternal    = "internal"         // 500
)

// WriteSuccess writes a JSON success envelope with the given data and status.
func WriteSuccess(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{OK: true, Data: data}); err != nil {
		slog.Error("write success response", "err", err)
	}
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{
		OK:    false,
		Error: &ErrorPayload{Code: code, Message: message},
	}); err != nil {
		slog.Error("write error response", "err", err)
	}
}

// ============================================================================
// DTOs
// ============================================================================

// DocumentDTO is the API representation of a document. Score and Match are
// set only for search results.
type DocumentDTO struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Score     int    `json:"score,omitempty"`
	Match     string `json:"match,omitempty"`
}

// SnapshotDTO is the API representation of a snapshot.
type SnapshotDTO struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Blocks     int    `json:"blocks"`
	Size       int    `json:"size"`
	CreatedAt  string `json:"created_at"`
}

// UploadDTO is the API representation of an upload.
type UploadDTO struct {
	ID        string `json:"id"`
	Hash      string `json:"hash"`
	Src       string `json:"src"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DocumentToDTO converts a stored document.
func DocumentToDTO(d models.Document) DocumentDTO {
	return DocumentDTO{
		ID:        d.ID,
		Path:      d.Path,
		Title:     d.Title,
		CreatedAt: formatTime(d.CreatedAt),
		UpdatedAt: formatTime(d.UpdatedAt),
	}
}

// SearchResultToDTO converts a ranked search hit.
func SearchResultToDTO(r db.SearchResult) DocumentDTO {
	dto := DocumentToDTO(r.Document)
	dto.Score = r.Score
	dto.Match = r.MatchField
	return dto
}

// SnapshotToDTO converts a snapshot record.
func SnapshotToDTO(s models.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Blocks:     s.Blocks,
		Size:       s.Size,
		CreatedAt:  formatTime(s.CreatedAt),
	}
}

// UploadToDTO converts upload metadata.
func UploadToDTO(u models.Upload) UploadDTO {
	return UploadDTO{
		ID:        u.ID,
		Hash:      u.Hash,
		Src:       u.Src(),
		Name:      u.Name,
		MediaType: string(u.MediaType),
		Width:     u.Width,
		Height:    u.Height,
		Size:      u.Size,
		CreatedAt: formatTime(u.CreatedAt),
	}
}
