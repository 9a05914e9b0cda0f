package models

import (
	"time"
)

// LogLevel is a logging verbosity
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValidLogLevel checks if a log level is valid
func IsValidLogLevel(l LogLevel) bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// MediaType is the content type of an uploaded image
type MediaType string

const (
	MediaPNG  MediaType = "image/png"
	MediaJPEG MediaType = "image/jpeg"
	MediaGIF  MediaType = "image/gif"
	MediaWebP MediaType = "image/webp"
	MediaBMP  MediaType = "image/bmp"
)

// IsValidMediaType checks if a media type is accepted for upload
func IsValidMediaType(m MediaType) bool {
	switch m {
	case MediaPNG, MediaJPEG, MediaGIF, MediaWebP, MediaBMP:
		return true
	}
	return false
}

// MediaTypeForFormat maps an image.DecodeConfig format name to a media type
func MediaTypeForFormat(format string) MediaType {
	switch format {
	case "png":
		return MediaPNG
	case "jpeg":
		return MediaJPEG
	case "gif":
		return MediaGIF
	case "webp":
		return MediaWebP
	case "bmp":
		return MediaBMP
	}
	return ""
}

// Document is a stored markdown document
type Document struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is a saved revision of a document
type Snapshot struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Blocks     int       `json:"blocks"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// Upload is a stored image file
type Upload struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash"`
	Name      string    `json:"name"`
	MediaType MediaType `json:"media_type"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Src returns the address documents use to reference the upload
func (u Upload) Src() string {
	return "/media/" + u.Hash
}

// ToolbarConfig tunes toolbar placement and timing. Zero values mean
// defaults.
type ToolbarConfig struct {
	Gap                int      `json:"gap,omitempty"`
	Padding            int      `json:"padding,omitempty"`
	FallbackWidth      int      `json:"fallback_width,omitempty"`
	FallbackHeight     int      `json:"fallback_height,omitempty"`
	SettleDelayMs      int      `json:"settle_delay_ms,omitempty"`
	ThrottleIntervalMs int      `json:"throttle_interval_ms,omitempty"`
	FocusKeys          []string `json:"focus_keys,omitempty"`
}

// UploadConfig limits uploads
type UploadConfig struct {
	MaxBytes    int64 `json:"max_bytes,omitempty"`
	Concurrency int   `json:"concurrency,omitempty"`
	CacheSize   int   `json:"cache_size,omitempty"`
}

// Config is the on-disk project configuration
type Config struct {
	LastDocument string        `json:"last_document,omitempty"`
	LogLevel     LogLevel      `json:"log_level,omitempty"`
	LogFile      string        `json:"log_file,omitempty"`
	Toolbar      ToolbarConfig `json:"toolbar,omitempty"`
	Upload       UploadConfig  `json:"upload,omitempty"`

	// FeatureFlags holds local overrides for feature flags
	FeatureFlags map[string]bool `json:"feature_flags,omitempty"`
}
