package gphoto

import (
	"errors"
	"fmt"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

var (
	ErrDeviceNotFound  = errors.New("gphoto: device not found")
	ErrNotFound        = errors.New("gphoto: not found")
	ErrNotSupported    = errors.New("gphoto: operation not supported by this device")
	ErrWrongWidgetType = errors.New("gphoto: wrong widget type")
	ErrInvalidChoice   = errors.New("gphoto: invalid choice")
	ErrOutOfRange      = errors.New("gphoto: value out of range")
	ErrTypeMismatch    = errors.New("gphoto: type mismatch")
	ErrReadOnly        = errors.New("gphoto: widget is read-only")
	// ErrReleased is returned by every call on a Camera, a widget tree or a
	// filesystem view after the owning value has been released.
	ErrReleased = errors.New("gphoto: use after release")
)

// DriverError is a negative status returned by the driver.
type DriverError struct {
	Op      string
	Code    int
	Message string
}

func (e *DriverError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("gphoto: %s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("gphoto: %s: %s (%d)", e.Op, e.Message, e.Code)
}

// Is lets errors.Is match the sentinel that corresponds to the code.
func (e *DriverError) Is(target error) bool {
	switch driver.Status(e.Code) {
	case driver.ErrorNotSupported:
		return target == ErrNotSupported
	case driver.ErrorFileNotFound, driver.ErrorDirectoryNotFound:
		return target == ErrNotFound
	case driver.ErrorModelNotFound, driver.ErrorUnknownPort, driver.ErrorIOUSBFind:
		return target == ErrDeviceNotFound
	}
	return false
}

// check converts a driver status into an error. Non-negative is success.
func check(drv driver.Driver, op string, st driver.Status) error {
	if !st.Failed() {
		return nil
	}
	return &DriverError{Op: op, Code: int(st), Message: drv.Describe(st)}
}
