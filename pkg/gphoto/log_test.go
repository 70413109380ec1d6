package gphoto

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// countingDriver counts log hook installations.
type countingDriver struct {
	*driver.Simulated
	installs atomic.Int32
}

func (d *countingDriver) SetLogFunc(min driver.LogLevel, fn driver.LogFunc) driver.Status {
	d.installs.Add(1)
	return d.Simulated.SetLogFunc(min, fn)
}

func captureLogs(t *testing.T) *test.Hook {
	t.Helper()
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	prev := currentLogger()
	SetLogger(l)
	t.Cleanup(func() { SetLogger(prev) })
	return hook
}

func TestLogHook_InstalledOnce(t *testing.T) {
	hookOnce = sync.Once{}
	hook := captureLogs(t)
	drv := &countingDriver{Simulated: driver.NewSimulated()}

	var ctxs []*Context
	for i := 0; i < 3; i++ {
		ctx, err := NewContext(drv)
		require.NoError(t, err)
		ctxs = append(ctxs, ctx)
	}
	assert.Equal(t, int32(1), drv.installs.Load())

	cam, err := ctxs[0].AutodetectCamera()
	require.NoError(t, err)
	require.NoError(t, cam.Close())
	for _, ctx := range ctxs {
		ctx.Close()
	}

	var forwarded *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Data["domain"] == "gphoto2::gp-camera" && e.Level == logrus.InfoLevel {
			forwarded = e
		}
	}
	require.NotNil(t, forwarded, "driver output should be forwarded")
	assert.Contains(t, forwarded.Message, driver.SimulatedModel)
}

func TestForwardDriverLog_Levels(t *testing.T) {
	hook := captureLogs(t)

	tests := []struct {
		level driver.LogLevel
		want  logrus.Level
	}{
		{driver.LogError, logrus.ErrorLevel},
		{driver.LogVerbose, logrus.InfoLevel},
		{driver.LogDebug, logrus.DebugLevel},
	}
	for _, tt := range tests {
		hook.Reset()
		forwardDriverLog(tt.level, "ptp2/usb", "message")
		e := hook.LastEntry()
		require.NotNil(t, e)
		assert.Equal(t, tt.want, e.Level)
		assert.Equal(t, "gphoto2::ptp2/usb", e.Data["domain"])
		assert.Equal(t, "message", e.Message)
	}

	assert.Panics(t, func() { forwardDriverLog(driver.LogData, "ptp2", "00 01 02") })
}
