package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/cjeanneret/gpcam/internal/debug"
	"github.com/cjeanneret/gpcam/pkg/gphoto"
)

// Server wraps the HTTP server and handlers.
type Server struct {
	addr     string
	handlers *Handlers
}

// NewServer creates a server configured for the given address and dependencies.
func NewServer(addr string, broadcaster *StatusBroadcaster, cam *gphoto.Camera, runSession RunSessionFunc, defaults SessionDefaults) (*Server, error) {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("web: sub static fs: %w", err)
	}

	handlers := NewHandlers(broadcaster, cam, runSession, defaults, subFS)

	return &Server{
		addr:     addr,
		handlers: handlers,
	}, nil
}

// Mux returns an http.Handler with all routes registered.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/run", s.handlers.HandleRun)
	mux.HandleFunc("GET /api/defaults", s.handlers.HandleDefaults)
	mux.HandleFunc("GET /api/camera/summary", s.handlers.HandleSummary)
	mux.HandleFunc("GET /api/camera/abilities", s.handlers.HandleAbilities)
	mux.HandleFunc("GET /api/camera/storages", s.handlers.HandleStorages)
	mux.HandleFunc("GET /api/camera/config", s.handlers.HandleConfigTree)
	mux.HandleFunc("GET /api/camera/config/{key}", s.handlers.HandleConfigGet)
	mux.HandleFunc("PUT /api/camera/config/{key}", s.handlers.HandleConfigSet)
	mux.HandleFunc("GET /api/camera/files", s.handlers.HandleFiles)
	mux.HandleFunc("GET /api/camera/file", s.handlers.HandleDownload)
	mux.HandleFunc("GET /api/camera/preview", s.handlers.HandlePreview)
	mux.HandleFunc("GET /status/stream", s.handlers.HandleStatusStream)
	mux.HandleFunc("GET /events/ws", s.handlers.HandleEventsWS)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.handlers.staticFS))))
	mux.HandleFunc("GET /{$}", s.handlers.ServeIndex) // exact match for root only

	return mux
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully. Sessions started through the server are cancelled with ctx.
func (s *Server) Run(ctx context.Context) error {
	s.handlers.baseCtx = ctx
	srv := &http.Server{Addr: s.addr, Handler: s.Mux()}
	errCh := make(chan error, 1)
	go func() {
		debug.Info("web server listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
