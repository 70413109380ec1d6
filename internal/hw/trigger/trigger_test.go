package trigger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/hw/gpio"
)

// recordingDriver records GPIO calls for verification.
type recordingDriver struct {
	calls []gpioCall
}

type gpioCall struct {
	op    string
	pin   int
	level gpio.Level
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error {
	d.calls = append(d.calls, gpioCall{op: "setup", pin: pin})
	return nil
}

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	d.calls = append(d.calls, gpioCall{op: "write", pin: pin, level: level})
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) {
	return gpio.Low, nil
}

func (d *recordingDriver) Close() error { return nil }

func (d *recordingDriver) writeCalls() []gpioCall {
	var result []gpioCall
	for _, c := range d.calls {
		if c.op == "write" {
			result = append(result, c)
		}
	}
	return result
}

type expectedWrite struct {
	pin   int
	level gpio.Level
	desc  string
}

func checkWrites(t *testing.T, got []gpioCall, want []expectedWrite) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d writes, got %d: %v", len(want), len(got), got)
	}
	for i, exp := range want {
		if got[i].pin != exp.pin || got[i].level != exp.level {
			t.Errorf("step %d (%s): pin=%d level=%v, want pin=%d level=%v",
				i, exp.desc, got[i].pin, got[i].level, exp.pin, exp.level)
		}
	}
}

func TestRelease_PinsInitializedHigh(t *testing.T) {
	drv := &recordingDriver{}
	NewRelease(drv, 24, 25, 500*time.Millisecond, 200*time.Millisecond)

	checkWrites(t, drv.writeCalls(), []expectedWrite{
		{24, gpio.High, "focus released"},
		{25, gpio.High, "shutter released"},
	})
}

func TestRelease_FireSequence(t *testing.T) {
	drv := &recordingDriver{}
	r := NewRelease(drv, 24, 25, time.Microsecond, time.Microsecond)
	drv.calls = nil // reset after init

	if err := r.Fire(context.Background()); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	checkWrites(t, drv.writeCalls(), []expectedWrite{
		{24, gpio.Low, "focus LOW (activate AF)"},
		{25, gpio.Low, "shutter LOW (trigger)"},
		{25, gpio.High, "shutter HIGH (release)"},
		{24, gpio.High, "focus HIGH (release)"},
	})
}

func TestRelease_CancelledDuringFocus(t *testing.T) {
	drv := &recordingDriver{}
	r := NewRelease(drv, 24, 25, time.Hour, time.Microsecond)
	drv.calls = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	err := r.Fire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Fire error = %v, want deadline exceeded", err)
	}

	checkWrites(t, drv.writeCalls(), []expectedWrite{
		{24, gpio.Low, "focus LOW (activate AF)"},
		{25, gpio.High, "shutter released"},
		{24, gpio.High, "focus released"},
	})
}

func TestRelease_OnMockDriverLeavesLinesReleased(t *testing.T) {
	drv := gpio.NewMockDriver()
	r := NewRelease(drv, 24, 25, time.Microsecond, time.Microsecond)
	if err := r.Fire(context.Background()); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	for _, pin := range []int{24, 25} {
		if lvl, _ := drv.ReadPin(pin); lvl != gpio.High {
			t.Errorf("pin %d = %v after shot, want HIGH", pin, lvl)
		}
	}
}

type fakeCamera struct {
	triggers int
	err      error
}

func (f *fakeCamera) TriggerCapture() error {
	f.triggers++
	return f.err
}

func TestDriver_Fire(t *testing.T) {
	cam := &fakeCamera{}
	d := NewDriver(cam)
	if err := d.Fire(context.Background()); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if cam.triggers != 1 {
		t.Errorf("TriggerCapture called %d times, want 1", cam.triggers)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Fire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Fire on cancelled context = %v, want context.Canceled", err)
	}
	if cam.triggers != 1 {
		t.Error("cancelled Fire must not reach the camera")
	}
}

func TestNew(t *testing.T) {
	cam := &fakeCamera{}

	tr, err := New(&config.Config{Camera: config.CameraConfig{Trigger: config.TriggerDriver}}, cam, nil)
	if err != nil || tr.Name() != config.TriggerDriver {
		t.Errorf("driver trigger: %v, %v", tr, err)
	}

	gpioCfg := &config.Config{Camera: config.CameraConfig{Trigger: config.TriggerGPIO, FocusPin: 24, ShutterPin: 25}}
	tr, err = New(gpioCfg, cam, &recordingDriver{})
	if err != nil || tr.Name() != config.TriggerGPIO {
		t.Errorf("gpio trigger: %v, %v", tr, err)
	}
	if _, err := New(gpioCfg, cam, nil); err == nil {
		t.Error("gpio trigger without driver should fail")
	}
	if _, err := New(&config.Config{Camera: config.CameraConfig{Trigger: "infrared"}}, cam, nil); err == nil {
		t.Error("unknown trigger should fail")
	}
}
