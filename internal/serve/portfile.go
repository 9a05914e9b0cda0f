package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	portFileName     = "media-port"
	portLockFileName = "media-port.lock"
	instancePrefix   = "med_"
	healthTimeout    = 2 * time.Second
)

// PortInfo is written next to the database while a media server runs, so
// other folio commands can build absolute media URLs.
type PortInfo struct {
	Port       int       `json:"port"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	InstanceID string    `json:"instance_id"`
}

// URL returns the server's base address.
func (p *PortInfo) URL() string {
	return fmt.Sprintf("http://localhost:%d", p.Port)
}

// GenerateInstanceID returns a short random id with the med_ prefix
// (e.g. "med_8f3b2c1a").
func GenerateInstanceID() string {
	return instancePrefix + uuid.NewString()[:8]
}

func portFilePath(baseDir string) string {
	return filepath.Join(baseDir, ".folio", portFileName)
}

func portLockFilePath(baseDir string) string {
	return filepath.Join(baseDir, ".folio", portLockFileName)
}

// WritePortFile records info under an exclusive lock. It fails when another
// live server already owns the file.
func WritePortFile(baseDir string, info *PortInfo) error {
	if err := os.MkdirAll(filepath.Join(baseDir, ".folio"), 0755); err != nil {
		return fmt.Errorf("create port dir: %w", err)
	}
	lock, err := lockPort(baseDir, lockWait)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	// Re-check under lock to avoid a startup race between parallel processes.
	if existing, err := ReadPortFile(baseDir); err == nil {
		if !IsPortFileStale(existing) {
			return fmt.Errorf("folio serve already running on port %d (pid %d)", existing.Port, existing.PID)
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal port info: %w", err)
	}
	if err := os.WriteFile(portFilePath(baseDir), data, 0644); err != nil {
		return fmt.Errorf("write port file: %w", err)
	}
	return nil
}

// ReadPortFile reads and validates the port file.
func ReadPortFile(baseDir string) (*PortInfo, error) {
	data, err := os.ReadFile(portFilePath(baseDir))
	if err != nil {
		return nil, fmt.Errorf("read port file: %w", err)
	}

	var info PortInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse port file: %w", err)
	}

	if info.Port == 0 {
		return nil, fmt.Errorf("port file missing required field: port")
	}
	if info.PID == 0 {
		return nil, fmt.Errorf("port file missing required field: pid")
	}
	if info.InstanceID == "" {
		return nil, fmt.Errorf("port file missing required field: instance_id")
	}
	return &info, nil
}

// DeletePortFile removes the port file. A missing file is not an error.
func DeletePortFile(baseDir string) error {
	if err := os.Remove(portFilePath(baseDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove port file: %w", err)
	}
	return nil
}

// Running returns the port info of a live server for baseDir, if any.
func Running(baseDir string) (*PortInfo, bool) {
	info, err := ReadPortFile(baseDir)
	if err != nil || IsPortFileStale(info) {
		return nil, false
	}
	return info, true
}

// IsServerHealthy reports whether GET /health on localhost:port answers 200.
func IsServerHealthy(port int) bool {
	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", port))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// IsPortFileStale reports whether info describes a server that is gone:
// the process is dead, or alive but not answering health checks.
func IsPortFileStale(info *PortInfo) bool {
	if !isProcessAlive(info.PID) {
		return true
	}
	return !IsServerHealthy(info.Port)
}
