//go:build !gphoto2

package driver

import "errors"

// NewLibgphoto2 reports that the binary was built without cgo libgphoto2
// support. Rebuild with -tags gphoto2.
func NewLibgphoto2() (Driver, error) {
	return nil, errors.New("driver: built without libgphoto2 support (rebuild with -tags gphoto2)")
}
