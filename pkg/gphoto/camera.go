package gphoto

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// CaptureType selects what Capture records.
type CaptureType int

const (
	CaptureImage CaptureType = CaptureType(driver.CaptureImage)
	CaptureMovie CaptureType = CaptureType(driver.CaptureMovie)
	CaptureSound CaptureType = CaptureType(driver.CaptureSound)
)

// CameraListEntry names a detected device.
type CameraListEntry struct {
	Model string
	Port  string
}

// Camera owns an open device handle and a reference to its Context.
//
// All driver calls on one Camera are serialized, including WaitEvent: a
// SetConfig issued while another goroutine is polling waits until the poll
// returns. Independent cameras do not block each other.
type Camera struct {
	ctx    *Context
	drv    driver.Driver
	handle driver.CameraHandle

	mu     sync.Mutex
	closed bool
	trees  map[*widgetTree]struct{}
}

func newCamera(ctx *Context, h driver.CameraHandle) *Camera {
	return &Camera{
		ctx:    ctx,
		drv:    ctx.drv,
		handle: h,
		trees:  make(map[*widgetTree]struct{}),
	}
}

// do runs fn with the camera lock held, failing with ErrReleased once the
// camera is closed.
func (c *Camera) do(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrReleased
	}
	return fn()
}

// Close releases every widget tree still open on the camera, the device
// handle and the camera's context reference. Closing twice is a no-op.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	for t := range c.trees {
		t.releaseLocked()
	}
	st := c.drv.CloseCamera(c.handle, c.ctx.handle)
	c.ctx.release()
	return check(c.drv, "close camera", st)
}

// CaptureImage captures a still image and returns where the camera stored it.
func (c *Camera) CaptureImage() (CameraFilePath, error) {
	return c.Capture(CaptureImage)
}

// Capture captures the given type and returns its location on the device.
func (c *Camera) Capture(kind CaptureType) (CameraFilePath, error) {
	var p driver.FilePath
	err := c.do(func() error {
		var st driver.Status
		p, st = c.drv.Capture(c.handle, c.ctx.handle, driver.CaptureType(kind))
		return check(c.drv, "capture", st)
	})
	if err != nil {
		return CameraFilePath{}, err
	}
	return CameraFilePath(p), nil
}

// TriggerCapture fires the shutter without waiting for the file. The new
// file is reported by a later NewFile event.
func (c *Camera) TriggerCapture() error {
	return c.do(func() error {
		return check(c.drv, "trigger capture", c.drv.TriggerCapture(c.handle, c.ctx.handle))
	})
}

// CapturePreview writes one live-view frame to w.
func (c *Camera) CapturePreview(w io.Writer) error {
	return c.do(func() error {
		return check(c.drv, "capture preview", c.drv.CapturePreview(c.handle, c.ctx.handle, w))
	})
}

// Abilities returns what the driver reports the camera can do.
func (c *Camera) Abilities() (Abilities, error) {
	var rec driver.AbilitiesRecord
	err := c.do(func() error {
		var st driver.Status
		rec, st = c.drv.Abilities(c.handle)
		return check(c.drv, "abilities", st)
	})
	if err != nil {
		return Abilities{}, err
	}
	return newAbilities(rec), nil
}

func (c *Camera) text(op string, get func(driver.CameraHandle, driver.ContextHandle) ([]byte, driver.Status)) (string, error) {
	var raw []byte
	err := c.do(func() error {
		var st driver.Status
		raw, st = get(c.handle, c.ctx.handle)
		return check(c.drv, op, st)
	})
	if err != nil {
		return "", err
	}
	return decodeText(raw), nil
}

// Summary describes the camera model, settings and capabilities.
func (c *Camera) Summary() (string, error) {
	return c.text("summary", c.drv.Summary)
}

// About returns information about the camera driver.
func (c *Camera) About() (string, error) {
	return c.text("about", c.drv.About)
}

// Manual returns the driver's manual text. Many drivers have none and fail
// with an error matching ErrNotSupported.
func (c *Camera) Manual() (string, error) {
	return c.text("manual", c.drv.Manual)
}

// PortInfo describes the port the camera is connected to.
func (c *Camera) PortInfo() (PortInfo, error) {
	var rec driver.PortRecord
	err := c.do(func() error {
		var st driver.Status
		rec, st = c.drv.PortInfo(c.handle)
		return check(c.drv, "port info", st)
	})
	if err != nil {
		return PortInfo{}, err
	}
	return newPortInfo(rec), nil
}

// Storages lists the storage units of the camera in driver order.
func (c *Camera) Storages() ([]StorageInfo, error) {
	var recs []driver.StorageRecord
	err := c.do(func() error {
		var st driver.Status
		recs, st = c.drv.StorageInfo(c.handle, c.ctx.handle)
		return check(c.drv, "storage info", st)
	})
	if err != nil {
		return nil, err
	}
	out := make([]StorageInfo, 0, len(recs))
	for _, r := range recs {
		out = append(out, newStorageInfo(r))
	}
	return out, nil
}

// FS returns the filesystem view of the camera. The view fails with
// ErrReleased once the camera is closed.
func (c *Camera) FS() *CameraFS {
	return &CameraFS{cam: c}
}

// WaitEvent blocks until the camera reports an event or timeout elapses.
// A timeout is reported as an EventTimeout value, not as an error.
func (c *Camera) WaitEvent(timeout time.Duration) (CameraEvent, error) {
	var (
		tag     driver.EventTag
		payload any
	)
	err := c.do(func() error {
		var st driver.Status
		tag, payload, st = c.drv.WaitForEvent(c.handle, c.ctx.handle, timeout)
		return check(c.drv, "wait for event", st)
	})
	if err != nil {
		return CameraEvent{}, err
	}
	return DecodeEvent(tag, payload), nil
}

// Config reads the whole configuration tree. The returned root (kind
// Window) owns the tree; Close it when done, or it is released with the
// camera.
func (c *Camera) Config() (*Widget, error) {
	var root *Widget
	err := c.do(func() error {
		h, st := c.drv.GetConfig(c.handle, c.ctx.handle)
		if err := check(c.drv, "get config", st); err != nil {
			return err
		}
		var err error
		root, err = c.adoptLocked(h)
		return err
	})
	return root, err
}

// ConfigKey reads the single configuration widget named key.
func (c *Camera) ConfigKey(key string) (*Widget, error) {
	var w *Widget
	err := c.do(func() error {
		h, st := c.drv.GetSingleConfig(c.handle, c.ctx.handle, key)
		if err := check(c.drv, "get single config", st); err != nil {
			if st == driver.ErrorBadParameters {
				return fmt.Errorf("config key %q: %w: %w", key, ErrNotFound, err)
			}
			return err
		}
		var err error
		w, err = c.adoptLocked(h)
		return err
	})
	return w, err
}

// SetAllConfig writes a whole configuration tree back to the camera. The
// widget must be a Window as returned by Config; anything else fails with
// ErrTypeMismatch before the device is touched.
func (c *Camera) SetAllConfig(root *Widget) error {
	if root == nil {
		return fmt.Errorf("set all config: %w", ErrTypeMismatch)
	}
	if root.Kind() != KindWindow {
		return fmt.Errorf("set all config: root kind is %s, want %s: %w", root.Kind(), KindWindow, ErrTypeMismatch)
	}
	return c.do(func() error {
		if err := c.ownsLocked(root); err != nil {
			return err
		}
		return check(c.drv, "set config", c.drv.SetConfig(c.handle, c.ctx.handle, root.handle))
	})
}

// SetConfig writes a single widget to the camera under the widget's own
// name.
func (c *Camera) SetConfig(w *Widget) error {
	if w == nil {
		return errors.New("set config: nil widget")
	}
	return c.do(func() error {
		if err := c.ownsLocked(w); err != nil {
			return err
		}
		return check(c.drv, "set single config", c.drv.SetSingleConfig(c.handle, c.ctx.handle, w.Name(), w.handle))
	})
}

// adoptLocked registers a freshly read tree with the camera.
func (c *Camera) adoptLocked(h driver.WidgetHandle) (*Widget, error) {
	t := &widgetTree{cam: c, root: h}
	w, err := t.wrapLocked(h)
	if err != nil {
		c.drv.UnrefWidget(h)
		return nil, err
	}
	c.trees[t] = struct{}{}
	return w, nil
}

func (c *Camera) ownsLocked(w *Widget) error {
	if w.tree.cam != c {
		return errors.New("gphoto: widget belongs to another camera")
	}
	if w.tree.released {
		return ErrReleased
	}
	return nil
}
