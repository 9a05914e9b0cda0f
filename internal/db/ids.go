package db

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const (
	documentIDPrefix = "doc-"
	snapshotIDPrefix = "sn-"
	uploadIDPrefix   = "up-"
)

// NormalizeSnapshotID ensures a snapshot ID has the sn- prefix
// Accepts bare hex IDs like "abc123" and returns "sn-abc123"
func NormalizeSnapshotID(id string) string {
	if id == "" {
		return id
	}
	if !strings.HasPrefix(id, snapshotIDPrefix) {
		return snapshotIDPrefix + id
	}
	return id
}

// idGenerator produces the random part of IDs.
// It can be replaced in tests to control ID generation.
var idGenerator = defaultGenerateID

func defaultGenerateID(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// generateDocumentID generates a unique document ID
func generateDocumentID() (string, error) {
	id, err := idGenerator(4) // 8 hex characters
	if err != nil {
		return "", err
	}
	return documentIDPrefix + id, nil
}

// generateSnapshotID generates a unique snapshot ID
func generateSnapshotID() (string, error) {
	id, err := idGenerator(3) // 6 hex characters, typed by hand in `folio history`
	if err != nil {
		return "", err
	}
	return snapshotIDPrefix + id, nil
}

// generateUploadID generates a unique upload ID
func generateUploadID() (string, error) {
	id, err := idGenerator(4)
	if err != nil {
		return "", err
	}
	return uploadIDPrefix + id, nil
}
