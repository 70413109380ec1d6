package gphoto

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// overlapDriver flags driver calls on the camera that run concurrently.
type overlapDriver struct {
	*driver.Simulated
	inFlight atomic.Int32
	overlaps atomic.Int32
}

func (d *overlapDriver) enter() func() {
	if d.inFlight.Add(1) > 1 {
		d.overlaps.Add(1)
	}
	return func() { d.inFlight.Add(-1) }
}

func (d *overlapDriver) WaitForEvent(cam driver.CameraHandle, ctx driver.ContextHandle, timeout time.Duration) (driver.EventTag, any, driver.Status) {
	defer d.enter()()
	return d.Simulated.WaitForEvent(cam, ctx, timeout)
}

func (d *overlapDriver) SetSingleConfig(cam driver.CameraHandle, ctx driver.ContextHandle, name string, w driver.WidgetHandle) driver.Status {
	defer d.enter()()
	time.Sleep(time.Millisecond)
	return d.Simulated.SetSingleConfig(cam, ctx, name, w)
}

func TestCamera_SerializesWaitEventAndSetConfig(t *testing.T) {
	sim := driver.NewSimulated()
	drv := &overlapDriver{Simulated: sim}
	_, _, cam := openOn(t, sim, drv)

	iso := configKey(t, cam, "iso")
	require.NoError(t, iso.SetChoice("200"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_, err := cam.WaitEvent(2 * time.Millisecond)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			assert.NoError(t, cam.SetConfig(iso))
		}
	}()
	wg.Wait()

	assert.Zero(t, drv.overlaps.Load())
	assert.Equal(t, 20, sim.Writes())
}

func TestCamera_IndependentCamerasDoNotBlock(t *testing.T) {
	_, _, slow := openSim(t)
	_, _, fast := openSim(t)

	started := make(chan struct{})
	go func() {
		close(started)
		slow.WaitEvent(300 * time.Millisecond)
	}()
	<-started

	start := time.Now()
	_, err := fast.Summary()
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}
