package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/marcus/folio/internal/models"
)

// CreateUpload stores an image. Content already stored under the same hash
// is not duplicated; the existing record is returned instead.
func (db *DB) CreateUpload(u *models.Upload, data []byte) (*models.Upload, error) {
	if !models.IsValidMediaType(u.MediaType) {
		return nil, fmt.Errorf("unsupported media type %q", u.MediaType)
	}

	var stored *models.Upload
	err := db.withWriteLock(func() error {
		existing, err := db.GetUploadByHash(u.Hash)
		if err == nil {
			stored = existing
			return nil
		}
		if err != ErrNotFound {
			return err
		}

		id, err := generateUploadID()
		if err != nil {
			return err
		}
		rec := *u
		rec.ID = id
		rec.Size = int64(len(data))
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}

		_, err = db.conn.Exec(`
			INSERT INTO uploads (id, hash, name, media_type, width, height, size, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.Hash, rec.Name, string(rec.MediaType), rec.Width, rec.Height, rec.Size, data, rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert upload: %w", err)
		}
		stored = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GetUploadByHash returns upload metadata without the file content
func (db *DB) GetUploadByHash(hash string) (*models.Upload, error) {
	var u models.Upload
	var mediaType string
	err := db.conn.QueryRow(`
		SELECT id, hash, name, media_type, width, height, size, created_at
		FROM uploads WHERE hash = ?
	`, hash).Scan(&u.ID, &u.Hash, &u.Name, &mediaType, &u.Width, &u.Height, &u.Size, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.MediaType = models.MediaType(mediaType)
	return &u, nil
}

// UploadData returns the stored bytes of an upload
func (db *DB) UploadData(hash string) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRow(`SELECT data FROM uploads WHERE hash = ?`, hash).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return data, err
}

// ListUploads returns upload metadata, newest first
func (db *DB) ListUploads() ([]models.Upload, error) {
	rows, err := db.conn.Query(`
		SELECT id, hash, name, media_type, width, height, size, created_at
		FROM uploads ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		var u models.Upload
		var mediaType string
		if err := rows.Scan(&u.ID, &u.Hash, &u.Name, &mediaType, &u.Width, &u.Height, &u.Size, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.MediaType = models.MediaType(mediaType)
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}
