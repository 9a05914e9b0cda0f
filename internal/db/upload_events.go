package db

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const uploadEventsFile = ".folio/upload_events.jsonl"

// UploadEvent records a rejected or failed upload attempt
type UploadEvent struct {
	Timestamp time.Time `json:"ts"`
	Name      string    `json:"name"`
	Size      int64     `json:"size,omitempty"`
	Reason    string    `json:"reason"`
}

// LogUploadEvent appends an upload event to the jsonl file
func LogUploadEvent(baseDir string, event UploadEvent) error {
	path := filepath.Join(baseDir, uploadEventsFile)

	// Ensure .folio directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(data, '\n'))
	return err
}

// ReadUploadEvents reads all logged upload events
func ReadUploadEvents(baseDir string) ([]UploadEvent, error) {
	f, err := os.Open(filepath.Join(baseDir, uploadEventsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []UploadEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e UploadEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, scanner.Err()
}

// ClearUploadEvents removes the upload event log
func ClearUploadEvents(baseDir string) error {
	err := os.Remove(filepath.Join(baseDir, uploadEventsFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
