package gphoto

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// Context is the driver-wide session state every camera operation runs in.
// It is reference counted: the caller holds one reference until Close, and
// each Camera opened from it holds another until the Camera is closed. The
// driver context is released when the last reference goes away.
type Context struct {
	drv       driver.Driver
	handle    driver.ContextHandle
	refs      atomic.Int32
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewContext creates a context on drv. The first context created in the
// process also routes driver logging to the package logger.
func NewContext(drv driver.Driver) (*Context, error) {
	installLogHook(drv)

	h, st := drv.NewContext()
	if err := check(drv, "new context", st); err != nil {
		return nil, err
	}
	c := &Context{drv: drv, handle: h}
	c.refs.Store(1)
	return c, nil
}

// Driver returns the driver the context was created on.
func (c *Context) Driver() driver.Driver { return c.drv }

// Close drops the caller's reference. Cameras opened from the context stay
// usable until they are closed themselves, but the context itself can no
// longer list or open cameras.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.release()
	})
	return nil
}

// tryAcquire takes a reference unless the context is closed or already
// released.
func (c *Context) tryAcquire() bool {
	if c.closed.Load() {
		return false
	}
	for {
		n := c.refs.Load()
		if n <= 0 {
			return false
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *Context) release() {
	if c.refs.Add(-1) == 0 {
		currentLogger().Debug("gphoto: releasing driver context")
		c.drv.UnrefContext(c.handle)
	}
}

// ListCameras returns the devices the driver can see.
func (c *Context) ListCameras() ([]CameraListEntry, error) {
	if !c.tryAcquire() {
		return nil, ErrReleased
	}
	defer c.release()
	var (
		entries []driver.CameraListEntry
		st      driver.Status
	)
	withDriverLock(func() {
		entries, st = c.drv.Autodetect(c.handle)
	})
	if err := check(c.drv, "autodetect", st); err != nil {
		return nil, err
	}
	out := make([]CameraListEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, CameraListEntry(e))
	}
	return out, nil
}

// AutodetectCamera opens the first camera the driver detects.
func (c *Context) AutodetectCamera() (*Camera, error) {
	entries, err := c.ListCameras()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrDeviceNotFound
	}
	return c.open("", "")
}

// GetCamera opens the camera of the given model on the given port, as
// reported by ListCameras.
func (c *Context) GetCamera(model, port string) (*Camera, error) {
	if model == "" || port == "" {
		return nil, fmt.Errorf("get camera: model and port are required: %w", ErrDeviceNotFound)
	}
	return c.open(model, port)
}

func (c *Context) open(model, port string) (*Camera, error) {
	if !c.tryAcquire() {
		return nil, ErrReleased
	}
	var (
		h  driver.CameraHandle
		st driver.Status
	)
	withDriverLock(func() {
		h, st = c.drv.OpenCamera(c.handle, model, port)
	})
	if err := check(c.drv, "open camera", st); err != nil {
		c.release()
		if model == "" {
			return nil, fmt.Errorf("%w: %w", ErrDeviceNotFound, err)
		}
		return nil, err
	}
	currentLogger().WithField("model", model).WithField("port", port).Debug("gphoto: camera opened")
	return newCamera(c, h), nil
}
