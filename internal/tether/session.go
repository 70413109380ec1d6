// Package tether runs tethered shooting sessions: release the shutter,
// follow the camera events and download every new file.
package tether

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/debug"
	"github.com/cjeanneret/gpcam/internal/hw/trigger"
	"github.com/cjeanneret/gpcam/pkg/gphoto"
)

// ErrNoFile is returned when a shot produced no file within its budget.
var ErrNoFile = errors.New("tether: no new file reported by the camera")

// Record is one camera event seen during a session, as sent to sinks.
type Record struct {
	Session string             `json:"session"`
	Shot    int                `json:"shot"`
	Event   gphoto.CameraEvent `json:"event"`
	File    string             `json:"file,omitempty"` // local copy of a NewFile
	Time    time.Time          `json:"time"`
}

// Sink receives session records. Publish must not block for long.
type Sink interface {
	Publish(r Record)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record)

func (f SinkFunc) Publish(r Record) { f(r) }

// Params defines a session.
type Params struct {
	Shots        int
	Interval     time.Duration   // pause between shots
	Settle       time.Duration   // pause after the release before polling events
	EventTimeout time.Duration   // budget to wait for the files of one shot
	PollTimeout  time.Duration   // upper bound of a single WaitEvent call
	DownloadDir  string
	FileType     gphoto.FileType
	KeepOnCamera bool
}

// Result summarizes a finished session.
type Result struct {
	ID     string
	Shots  int
	Files  []string
	Events int
}

// Session contains the tethering logic for one camera.
type Session struct {
	id      string
	camera  *gphoto.Camera
	trigger trigger.Trigger
	sinks   []Sink
}

func NewSession(cam *gphoto.Camera, trig trigger.Trigger, sinks ...Sink) *Session {
	return NewSessionWithID(uuid.NewString(), cam, trig, sinks...)
}

// NewSessionWithID is NewSession with a caller-chosen identifier, such as
// a job id already handed out to a client.
func NewSessionWithID(id string, cam *gphoto.Camera, trig trigger.Trigger, sinks ...Sink) *Session {
	return &Session{
		id:      id,
		camera:  cam,
		trigger: trig,
		sinks:   sinks,
	}
}

// ID identifies the session in records and logs.
func (s *Session) ID() string { return s.id }

// Run fires p.Shots shots. After each shot it polls camera events until
// CaptureComplete, or until a timeout once at least one file arrived, or
// until p.EventTimeout elapses. Each NewFile is downloaded into
// p.DownloadDir.
func (s *Session) Run(ctx context.Context, p Params) (*Result, error) {
	if p.Shots <= 0 {
		p.Shots = 1
	}
	if p.PollTimeout <= 0 {
		p.PollTimeout = time.Second
	}
	if err := os.MkdirAll(p.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	debug.Section("Tether session " + s.id)
	debug.Value("Trigger", s.trigger.Name())
	debug.PrintStruct("Params", p)

	res := &Result{ID: s.id}
	for shot := 1; shot <= p.Shots; shot++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.trigger.Fire(ctx); err != nil {
			return res, fmt.Errorf("shot %d: trigger: %w", shot, err)
		}
		res.Shots++
		if err := sleep(ctx, p.Settle); err != nil {
			return res, err
		}
		before := len(res.Files)
		if err := s.collect(ctx, shot, p, res); err != nil {
			return res, fmt.Errorf("shot %d: %w", shot, err)
		}
		debug.Live("Shot %d/%d: %d file(s)", shot, p.Shots, len(res.Files)-before)
		if shot < p.Shots {
			if err := sleep(ctx, p.Interval); err != nil {
				return res, err
			}
		}
	}

	debug.Summary(fmt.Sprintf("Session %s complete: %d shots, %d files", s.id, res.Shots, len(res.Files)))
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Session) collect(ctx context.Context, shot int, p Params, res *Result) error {
	deadline := time.Now().Add(p.EventTimeout)
	files := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		ev, err := s.camera.WaitEvent(min(p.PollTimeout, remaining))
		if err != nil {
			return fmt.Errorf("wait event: %w", err)
		}

		rec := Record{Session: s.id, Shot: shot, Event: ev, Time: time.Now()}
		switch ev.Kind {
		case gphoto.EventTimeout:
			if files > 0 {
				return nil
			}
			continue
		case gphoto.EventUnknown:
			debug.Verbose("Ignoring camera event tag %d", ev.Tag)
			continue
		case gphoto.EventNewFile:
			local, err := s.download(ev.Path, p)
			if err != nil {
				return err
			}
			files++
			rec.File = local
			res.Files = append(res.Files, local)
			debug.Shot(shot, ev.Path.Path())
		}

		res.Events++
		debug.Event(ev.Kind.String(), pathOf(ev))
		s.publish(rec)
		if ev.Kind == gphoto.EventCaptureComplete && files > 0 {
			return nil
		}
	}
	if files == 0 {
		return ErrNoFile
	}
	return nil
}

func pathOf(ev gphoto.CameraEvent) string {
	if ev.HasPath() {
		return ev.Path.Path()
	}
	return ""
}

func (s *Session) publish(r Record) {
	for _, sink := range s.sinks {
		sink.Publish(r)
	}
}

// download copies the file into dir and removes it from the camera unless
// p.KeepOnCamera. A failed download leaves no local file behind.
func (s *Session) download(src gphoto.CameraFilePath, p Params) (string, error) {
	dest, f, err := createUnique(p.DownloadDir, src.Name)
	if err != nil {
		return "", err
	}
	fs := s.camera.FS()
	if err := fs.Download(src, p.FileType, f); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("download %s: %w", src.Path(), err)
	}
	size, _ := f.Seek(0, io.SeekCurrent)
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	debug.Download(src.Path(), dest, size)

	if !p.KeepOnCamera {
		if err := fs.DeleteFile(src); err != nil {
			return dest, fmt.Errorf("delete %s from camera: %w", src.Path(), err)
		}
	}
	return dest, nil
}

// createUnique creates dir/name, or dir/name_N.ext when it already exists.
func createUnique(dir, name string) (string, *os.File, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	for i := 0; i < 1000; i++ {
		candidate := base + ext
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("create %s: %w", path, err)
		}
	}
	return "", nil, fmt.Errorf("create %s: too many files with that name", filepath.Join(dir, name))
}

// ParamsFromConfig builds session parameters from the tether section.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Shots:        cfg.Tether.Shots,
		Interval:     cfg.Interval(),
		Settle:       cfg.PostShotDelay(),
		EventTimeout: cfg.EventTimeout(),
		DownloadDir:  cfg.Tether.DownloadDir,
		FileType:     cfg.FileType(),
		KeepOnCamera: cfg.Tether.KeepOnCamera,
	}
}
