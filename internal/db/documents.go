package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/pkg/editor"
)

// EnsureDocument returns the document stored for path, creating it if needed
func (db *DB) EnsureDocument(path string) (*models.Document, error) {
	doc, err := db.GetDocumentByPath(path)
	if err == nil {
		return doc, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	var created *models.Document
	err = db.withWriteLock(func() error {
		id, err := generateDocumentID()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		d := &models.Document{
			ID:        id,
			Path:      path,
			Title:     titleFromPath(path),
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = db.conn.Exec(`
			INSERT INTO documents (id, path, title, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, d.ID, d.Path, d.Title, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetDocumentByPath looks a document up by its file path
func (db *DB) GetDocumentByPath(path string) (*models.Document, error) {
	var d models.Document
	err := db.conn.QueryRow(`
		SELECT id, path, title, created_at, updated_at FROM documents WHERE path = ?
	`, path).Scan(&d.ID, &d.Path, &d.Title, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocuments returns all documents, most recently updated first
func (db *DB) ListDocuments() ([]models.Document, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, title, created_at, updated_at FROM documents ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Path, &d.Title, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SaveSnapshot stores the current content of a document as a new revision
func (db *DB) SaveSnapshot(documentID string, doc *editor.Document) (*models.Snapshot, error) {
	data, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	var snap *models.Snapshot
	err = db.withWriteLock(func() error {
		id, err := generateSnapshotID()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		s := &models.Snapshot{
			ID:         id,
			DocumentID: documentID,
			Blocks:     doc.Len(),
			Size:       len(data),
			CreatedAt:  now,
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`
			INSERT INTO snapshots (id, document_id, blocks, size, data, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, s.ID, s.DocumentID, s.Blocks, s.Size, data, s.CreatedAt); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		if _, err := tx.Exec(`UPDATE documents SET updated_at = ? WHERE id = ?`, now, documentID); err != nil {
			return fmt.Errorf("touch document: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns the revisions of a document, newest first
func (db *DB) ListSnapshots(documentID string) ([]models.Snapshot, error) {
	rows, err := db.conn.Query(`
		SELECT id, document_id, blocks, size, created_at
		FROM snapshots WHERE document_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.Blocks, &s.Size, &s.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// LoadSnapshot decodes a stored revision
func (db *DB) LoadSnapshot(id string) (*editor.Document, error) {
	var data []byte
	err := db.conn.QueryRow(`SELECT data FROM snapshots WHERE id = ?`, NormalizeSnapshotID(id)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return DecodeDocument(data)
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
