package gphoto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

func TestDriverError_Is(t *testing.T) {
	tests := []struct {
		code driver.Status
		want error
	}{
		{driver.ErrorNotSupported, ErrNotSupported},
		{driver.ErrorFileNotFound, ErrNotFound},
		{driver.ErrorDirectoryNotFound, ErrNotFound},
		{driver.ErrorModelNotFound, ErrDeviceNotFound},
		{driver.ErrorUnknownPort, ErrDeviceNotFound},
		{driver.ErrorIOUSBFind, ErrDeviceNotFound},
		{driver.ErrorIO, nil},
		{driver.ErrorCameraBusy, nil},
	}
	sentinels := []error{ErrNotSupported, ErrNotFound, ErrDeviceNotFound}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := error(&DriverError{Code: int(tt.code), Message: tt.code.String()})
			for _, s := range sentinels {
				assert.Equal(t, s == tt.want, errors.Is(err, s), "%v vs %v", tt.code, s)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	drv := driver.NewSimulated()

	assert.NoError(t, check(drv, "op", driver.OK))
	assert.NoError(t, check(drv, "op", 3), "positive results are success")

	err := check(drv, "get file", driver.ErrorFileNotFound)
	assert.EqualError(t, err, "gphoto: get file: File not found (-108)")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDriverError_MessageWithoutOp(t *testing.T) {
	err := &DriverError{Code: -1, Message: "Unspecified error"}
	assert.Equal(t, "gphoto: Unspecified error (-1)", err.Error())
}
