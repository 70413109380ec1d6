package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/gpcam/internal/debug"
	"github.com/cjeanneret/gpcam/pkg/gphoto"
)

const (
	maxBodyBytes = 1 << 20
	maxShots     = 10000
	maxInterval  = 24 * 60 * 60 * 1000 // one day, in ms
	minRunGap    = 5 * time.Second
)

// RunRequest holds session parameters that override config defaults.
type RunRequest struct {
	Shots      int `json:"shots"`
	IntervalMs int `json:"interval_ms"`
}

// RunSessionFunc runs a tether session for job with the given parameters.
// It is called from the POST /api/run handler in a goroutine.
type RunSessionFunc func(ctx context.Context, job string, req RunRequest) error

// SessionDefaults holds default values for the session form (from config).
type SessionDefaults struct {
	Shots       int    `json:"shots"`
	IntervalMs  int    `json:"interval_ms"`
	Trigger     string `json:"trigger"`
	DownloadDir string `json:"download_dir"`
}

// ValidateRunRequest checks the bounds of a session request.
func ValidateRunRequest(req RunRequest) error {
	if req.Shots < 1 || req.Shots > maxShots {
		return fmt.Errorf("shots must be between 1 and %d", maxShots)
	}
	if req.IntervalMs < 0 || req.IntervalMs > maxInterval {
		return fmt.Errorf("interval_ms must be between 0 and %d", maxInterval)
	}
	return nil
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Camera      *gphoto.Camera
	RunSession  RunSessionFunc
	Defaults    SessionDefaults

	baseCtx   context.Context
	runningMu sync.Mutex
	running   bool
	lastRun   time.Time
	staticFS  fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If cam is nil the camera endpoints return 503 Service Unavailable, and so
// does POST /api/run when runSession is nil.
func NewHandlers(broadcaster *StatusBroadcaster, cam *gphoto.Camera, runSession RunSessionFunc, defaults SessionDefaults, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Camera:      cam,
		RunSession:  runSession,
		Defaults:    defaults,
		baseCtx:     context.Background(),
		staticFS:    staticFS,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorStatus maps camera errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, gphoto.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gphoto.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, gphoto.ErrInvalidChoice),
		errors.Is(err, gphoto.ErrOutOfRange),
		errors.Is(err, gphoto.ErrTypeMismatch),
		errors.Is(err, gphoto.ErrWrongWidgetType),
		errors.Is(err, gphoto.ErrReadOnly):
		return http.StatusBadRequest
	case errors.Is(err, gphoto.ErrReleased), errors.Is(err, gphoto.ErrDeviceNotFound):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func cameraError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		debug.Error(err)
	}
	http.Error(w, err.Error(), status)
}

// camera returns the camera or answers 503.
func (h *Handlers) camera(w http.ResponseWriter) *gphoto.Camera {
	if h.Camera == nil {
		http.Error(w, "camera not available", http.StatusServiceUnavailable)
	}
	return h.Camera
}

// HandleDefaults returns the session form defaults as JSON.
func (h *Handlers) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Defaults)
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleRun handles POST /api/run to start a tether session.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := ValidateRunRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.RunSession == nil {
		http.Error(w, "session runner not configured", http.StatusServiceUnavailable)
		return
	}

	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		http.Error(w, "session already in progress", http.StatusConflict)
		return
	}
	if !h.lastRun.IsZero() && time.Since(h.lastRun) < minRunGap {
		h.runningMu.Unlock()
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	h.running = true
	h.lastRun = time.Now()
	h.runningMu.Unlock()

	job := uuid.NewString()
	// Run in goroutine; clear running when done
	go func() {
		defer func() {
			h.runningMu.Lock()
			h.running = false
			h.runningMu.Unlock()
		}()

		h.Broadcaster.Broadcast("info", "Session "+job+" started")
		if err := h.RunSession(h.baseCtx, job, req); err != nil {
			h.Broadcaster.Broadcast("error", "Session failed: "+err.Error())
			debug.Error(fmt.Errorf("session %s: %w", job, err))
		} else {
			h.Broadcaster.Broadcast("info", "Session "+job+" complete")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started", "job": job})
}

// HandleSummary handles GET /api/camera/summary.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	summary, err := cam.Summary()
	if err != nil {
		cameraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// HandleAbilities handles GET /api/camera/abilities.
func (h *Handlers) HandleAbilities(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	a, err := cam.Abilities()
	if err != nil {
		cameraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleStorages handles GET /api/camera/storages.
func (h *Handlers) HandleStorages(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	s, err := cam.Storages()
	if err != nil {
		cameraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleConfigTree handles GET /api/camera/config with the whole tree.
func (h *Handlers) HandleConfigTree(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	root, err := cam.Config()
	if err != nil {
		cameraError(w, err)
		return
	}
	defer root.Close()
	snap, err := root.Snapshot()
	if err != nil {
		cameraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleConfigGet handles GET /api/camera/config/{key}.
func (h *Handlers) HandleConfigGet(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	widget, err := cam.ConfigKey(r.PathValue("key"))
	if err != nil {
		cameraError(w, err)
		return
	}
	defer widget.Close()
	snap, err := widget.Snapshot()
	if err != nil {
		cameraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// setRequest is the body of PUT /api/camera/config/{key}.
type setRequest struct {
	Value string `json:"value"`
}

// HandleConfigSet handles PUT /api/camera/config/{key}. The value is parsed
// according to the widget kind; buttons are pressed.
func (h *Handlers) HandleConfigSet(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	var req setRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	key := r.PathValue("key")
	widget, err := cam.ConfigKey(key)
	if err != nil {
		cameraError(w, err)
		return
	}
	defer widget.Close()

	if err := gphoto.SetFromString(widget, req.Value); err != nil {
		cameraError(w, err)
		return
	}
	if widget.Kind() != gphoto.KindButton {
		if err := cam.SetConfig(widget); err != nil {
			cameraError(w, err)
			return
		}
	}
	debug.Verbose("Config %s set to %q", key, req.Value)
	h.Broadcaster.Broadcast("info", fmt.Sprintf("%s set to %s", key, req.Value))

	snap, err := widget.Snapshot()
	if err != nil {
		cameraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// folderListing is the body of GET /api/camera/files.
type folderListing struct {
	Folder  string   `json:"folder"`
	Folders []string `json:"folders"`
	Files   []string `json:"files"`
}

// HandleFiles handles GET /api/camera/files?folder=/path.
func (h *Handlers) HandleFiles(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "/"
	}
	cfs := cam.FS()
	folders, err := cfs.ListFolders(folder)
	if err != nil {
		cameraError(w, err)
		return
	}
	files, err := cfs.ListFiles(folder)
	if err != nil {
		cameraError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folderListing{Folder: folder, Folders: folders, Files: files})
}

// HandleDownload handles GET /api/camera/file?path=/folder/name&type=normal.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	q := r.URL.Query()
	if q.Get("path") == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	kind := gphoto.FileNormal
	if t := q.Get("type"); t != "" {
		var err error
		if kind, err = gphoto.ParseFileType(t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	p := gphoto.ParseFilePath(q.Get("path"))
	cfs := cam.FS()
	info, err := cfs.FileInfo(p.Folder, p.Name)
	if err != nil {
		cameraError(w, err)
		return
	}
	// Download into memory first so a driver failure can still produce an
	// error status.
	var buf bytes.Buffer
	if err := cfs.Download(p, kind, &buf); err != nil {
		cameraError(w, err)
		return
	}
	contentType := "application/octet-stream"
	if kind == gphoto.FileNormal && info.Type != nil {
		contentType = *info.Type
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Name))
	w.Write(buf.Bytes())
}

// HandlePreview handles GET /api/camera/preview with one live-view frame.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	cam := h.camera(w)
	if cam == nil {
		return
	}
	var buf bytes.Buffer
	if err := cam.CapturePreview(&buf); err != nil {
		cameraError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
