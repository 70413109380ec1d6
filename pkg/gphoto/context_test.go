package gphoto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

func TestContext_ListCameras(t *testing.T) {
	sim := driver.NewSimulated()
	ctx, err := NewContext(sim)
	require.NoError(t, err)
	defer ctx.Close()

	entries, err := ctx.ListCameras()
	require.NoError(t, err)
	assert.Equal(t, []CameraListEntry{{Model: driver.SimulatedModel, Port: driver.SimulatedPort}}, entries)
}

func TestContext_AutodetectNoDevice(t *testing.T) {
	sim := driver.NewSimulated()
	sim.SetConnected(false)
	ctx, err := NewContext(sim)
	require.NoError(t, err)
	defer ctx.Close()

	_, err = ctx.AutodetectCamera()
	assert.ErrorIs(t, err, ErrDeviceNotFound)
	assert.Equal(t, 0, sim.OpenCameras())
}

func TestContext_GetCamera(t *testing.T) {
	sim := driver.NewSimulated()
	ctx, err := NewContext(sim)
	require.NoError(t, err)
	defer ctx.Close()

	cam, err := ctx.GetCamera(driver.SimulatedModel, driver.SimulatedPort)
	require.NoError(t, err)
	require.NoError(t, cam.Close())

	tests := []struct {
		name        string
		model, port string
	}{
		{"unknown model", "Nikon D90", driver.SimulatedPort},
		{"unknown port", driver.SimulatedModel, "usb:009,009"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctx.GetCamera(tt.model, tt.port)
			assert.ErrorIs(t, err, ErrDeviceNotFound)
		})
	}
	assert.Equal(t, int32(1), ctx.refs.Load(), "failed opens must not leak context references")
}

func TestContext_RefcountOutlivesClose(t *testing.T) {
	sim := driver.NewSimulated()
	ctx, err := NewContext(sim)
	require.NoError(t, err)
	cam, err := ctx.AutodetectCamera()
	require.NoError(t, err)

	require.NoError(t, ctx.Close())
	assert.Equal(t, 1, sim.LiveContexts(), "camera still holds the context")

	_, err = cam.Summary()
	assert.NoError(t, err)

	require.NoError(t, cam.Close())
	assert.Equal(t, 0, sim.LiveContexts())
	assert.Equal(t, 0, sim.OpenCameras())
}

func TestContext_ClosedRejectsOpenWhileCameraLive(t *testing.T) {
	sim := driver.NewSimulated()
	ctx, err := NewContext(sim)
	require.NoError(t, err)
	cam, err := ctx.AutodetectCamera()
	require.NoError(t, err)
	defer cam.Close()

	require.NoError(t, ctx.Close())

	_, err = ctx.ListCameras()
	assert.ErrorIs(t, err, ErrReleased)
	cam2, err := ctx.AutodetectCamera()
	assert.ErrorIs(t, err, ErrReleased)
	assert.Nil(t, cam2)
	_, err = ctx.GetCamera(driver.SimulatedModel, driver.SimulatedPort)
	assert.ErrorIs(t, err, ErrReleased)
	assert.Equal(t, 1, sim.OpenCameras())

	_, err = cam.Summary()
	assert.NoError(t, err, "cameras opened before Close keep working")
}

func TestContext_CloseTwice(t *testing.T) {
	sim := driver.NewSimulated()
	ctx, err := NewContext(sim)
	require.NoError(t, err)

	require.NoError(t, ctx.Close())
	require.NoError(t, ctx.Close())
	assert.Equal(t, 0, sim.LiveContexts())

	_, err = ctx.ListCameras()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = ctx.AutodetectCamera()
	assert.ErrorIs(t, err, ErrReleased)
}

func TestContext_NewContextFailure(t *testing.T) {
	sim := driver.NewSimulated()
	sim.Fail("NewContext", driver.ErrorNoMemory)

	_, err := NewContext(sim)
	var de *DriverError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, int(driver.ErrorNoMemory), de.Code)
}
