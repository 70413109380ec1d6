package gphoto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

const simPictures = "/store_00010001/DCIM/100CANON"

// openSim opens the simulated camera and closes everything on cleanup.
func openSim(t *testing.T) (*driver.Simulated, *Context, *Camera) {
	t.Helper()
	sim := driver.NewSimulated()
	return openOn(t, sim, sim)
}

func openOn(t *testing.T, sim *driver.Simulated, drv driver.Driver) (*driver.Simulated, *Context, *Camera) {
	t.Helper()
	ctx, err := NewContext(drv)
	require.NoError(t, err)
	cam, err := ctx.AutodetectCamera()
	require.NoError(t, err)
	t.Cleanup(func() {
		cam.Close()
		ctx.Close()
	})
	return sim, ctx, cam
}

func configKey(t *testing.T, cam *Camera, key string) *Widget {
	t.Helper()
	w, err := cam.ConfigKey(key)
	require.NoError(t, err)
	return w
}
