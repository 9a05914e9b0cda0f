// Package serve is the folio media server: it serves stored uploads under
// /media/<hash> and a small read-only JSON API over documents and snapshots.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/marcus/folio/internal/db"
	"github.com/marcus/folio/internal/models"
	"github.com/marcus/folio/pkg/editor"
)

// Store is the storage the server reads from. *db.DB implements it.
type Store interface {
	ListDocuments() ([]models.Document, error)
	SearchDocuments(query string) ([]db.SearchResult, error)
	ListSnapshots(documentID string) ([]models.Snapshot, error)
	LoadSnapshot(id string) (*editor.Document, error)
	ListUploads() ([]models.Upload, error)
	GetUploadByHash(hash string) (*models.Upload, error)
	UploadData(hash string) ([]byte, error)
}

// Uploader stores posted images. *upload.Uploader implements it.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (*models.Upload, error)
}

// ServeConfig holds the configuration for the HTTP server.
type ServeConfig struct {
	Port       int
	Addr       string
	CORSOrigin string
	// MaxBodyBytes bounds POST /v1/uploads bodies.
	MaxBodyBytes int64
	// ReadOnly disables POST /v1/uploads.
	ReadOnly bool
}

// Server is the folio serve HTTP server.
type Server struct {
	store    Store
	uploader Uploader
	config   ServeConfig
	logger   *slog.Logger
	mux      *http.ServeMux
	http     *http.Server
	addr     net.Addr
}

// NewServer creates a Server and registers its routes. uploader may be nil,
// which makes the server read-only.
func NewServer(store Store, uploader Uploader, logger *slog.Logger, config ServeConfig) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 10 << 20
	}
	if uploader == nil {
		config.ReadOnly = true
	}
	s := &Server{
		store:    store,
		uploader: uploader,
		config:   config,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)

	// Final order (outermost to innermost):
	//   recovery -> logging -> CORS -> handler
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)

	return h
}

// Listen binds the configured address. Port 0 picks a free port; Addr
// reports the one chosen.
func (s *Server) Listen() (net.Listener, error) {
	addr := fmt.Sprintf("%s:%d", s.config.Addr, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	s.addr = ln.Addr()
	return ln, nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Serve runs the server on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ListenAndServe binds and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /media/{hash}", s.handleMedia)

	s.mux.HandleFunc("GET /v1/documents", s.handleListDocuments)
	s.mux.HandleFunc("GET /v1/documents/{id}/snapshots", s.handleListSnapshots)
	s.mux.HandleFunc("GET /v1/snapshots/{id}", s.handleGetSnapshot)

	s.mux.HandleFunc("GET /v1/uploads", s.handleListUploads)
	s.mux.HandleFunc("POST /v1/uploads", s.handleCreateUpload)
}

// ============================================================================
// Middleware
// ============================================================================

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

// recoveryMiddleware turns a handler panic into a logged 500 envelope.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				WriteError(w, ErrInternal, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sr, r)
		s.logger.Info("req",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.code,
			"dur", time.Since(start).String(),
		)
	})
}

// corsMiddleware sets CORS headers when CORSOrigin is configured and the
// request origin matches it (or the origin is "*").
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.config.CORSOrigin == "" || origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		if s.config.CORSOrigin != "*" && s.config.CORSOrigin != origin {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
