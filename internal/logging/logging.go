// Package logging configures the structured logger. The TUI owns the
// terminal, so records go to a rotating file.
package logging

import (
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/marcus/folio/internal/models"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a slog logger bound to its rotating file
type Logger struct {
	*slog.Logger
	LogFile string
	closer  io.Closer
}

// New opens path for rotating JSON logging at level
func New(path string, level models.LogLevel) *Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    16, // MB
		MaxBackups: 2,
	}
	if level == models.LogDebug {
		w.MaxSize = 128
	}

	l := &Logger{
		Logger:  NewWithWriter(w, level),
		LogFile: path,
		closer:  w,
	}
	l.Info("logging started",
		slog.Time("start", time.Now()),
		slog.String("GOOS", runtime.GOOS),
		slog.String("GOARCH", runtime.GOARCH))
	return l
}

// NewWithWriter builds a JSON logger writing to w
func NewWithWriter(w io.Writer, level models.LogLevel) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: Level(level)}))
}

// Level maps a configured level onto slog
func Level(level models.LogLevel) slog.Level {
	switch level {
	case models.LogDebug:
		return slog.LevelDebug
	case models.LogWarn:
		return slog.LevelWarn
	case models.LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
