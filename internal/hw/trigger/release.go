package trigger

import (
	"context"
	"time"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/debug"
	"github.com/cjeanneret/gpcam/internal/hw/gpio"
)

// Release drives a wired remote release (Nikon MC-DC2, Canon RS-60 and
// similar 3-pin connectors):
// - GND: connected to Raspberry Pi ground
// - FOCUS: autofocus (active LOW)
// - SHUTTER: trigger (active LOW)
//
// Trigger sequence:
// 1. FOCUS to LOW (activates autofocus)
// 2. Wait for autofocus to complete
// 3. SHUTTER to LOW (triggers the shot)
// 4. Hold for a moment
// 5. Set SHUTTER and FOCUS back to HIGH
type Release struct {
	gpio         gpio.Driver
	focusPin     int
	shutterPin   int
	focusDelay   time.Duration // time for autofocus
	shutterDelay time.Duration // shutter hold time
}

// NewRelease configures both lines as outputs, released (HIGH).
func NewRelease(g gpio.Driver, focusPin, shutterPin int, focusDelay, shutterDelay time.Duration) *Release {
	_ = g.SetupPin(focusPin, gpio.Output)
	_ = g.SetupPin(shutterPin, gpio.Output)
	_ = g.WritePin(focusPin, gpio.High)
	_ = g.WritePin(shutterPin, gpio.High)

	return &Release{
		gpio:         g,
		focusPin:     focusPin,
		shutterPin:   shutterPin,
		focusDelay:   focusDelay,
		shutterDelay: shutterDelay,
	}
}

func (r *Release) Name() string { return config.TriggerGPIO }

// Fire runs FOCUS -> wait for AF -> SHUTTER -> hold -> release. Both lines
// are released when ctx is cancelled mid-sequence.
func (r *Release) Fire(ctx context.Context) error {
	debug.Verbose("Release: firing (focus=%d, shutter=%d)", r.focusPin, r.shutterPin)

	if err := r.gpio.WritePin(r.focusPin, gpio.Low); err != nil {
		return err
	}
	if err := sleep(ctx, r.focusDelay); err != nil {
		r.releaseAll()
		return err
	}

	if err := r.gpio.WritePin(r.shutterPin, gpio.Low); err != nil {
		_ = r.gpio.WritePin(r.focusPin, gpio.High)
		return err
	}
	if err := sleep(ctx, r.shutterDelay); err != nil {
		r.releaseAll()
		return err
	}

	if err := r.gpio.WritePin(r.shutterPin, gpio.High); err != nil {
		return err
	}
	if err := r.gpio.WritePin(r.focusPin, gpio.High); err != nil {
		return err
	}
	debug.Verbose("Release: shot triggered")
	return nil
}

func (r *Release) releaseAll() {
	_ = r.gpio.WritePin(r.shutterPin, gpio.High)
	_ = r.gpio.WritePin(r.focusPin, gpio.High)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
