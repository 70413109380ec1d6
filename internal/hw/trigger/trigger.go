// Package trigger fires the camera shutter, either through the camera
// driver or through a wired remote release on GPIO pins.
package trigger

import (
	"context"
	"fmt"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/hw/gpio"
)

// Trigger is the high-level interface used by the tether session.
// The file produced by a shot is reported later as a camera event,
// whichever way the shutter was released.
type Trigger interface {
	// Fire releases the shutter once.
	Fire(ctx context.Context) error
	Name() string
}

// Capturer is the part of *gphoto.Camera a driver trigger needs.
type Capturer interface {
	TriggerCapture() error
}

// Driver fires through the camera driver.
type Driver struct {
	cam Capturer
}

func NewDriver(cam Capturer) *Driver { return &Driver{cam: cam} }

func (d *Driver) Name() string { return config.TriggerDriver }

func (d *Driver) Fire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.cam.TriggerCapture()
}

// New selects a trigger implementation based on configuration. g may be
// nil unless the configured trigger is gpio.
func New(cfg *config.Config, cam Capturer, g gpio.Driver) (Trigger, error) {
	switch cfg.Camera.Trigger {
	case config.TriggerDriver, "":
		return NewDriver(cam), nil
	case config.TriggerGPIO:
		if g == nil {
			return nil, fmt.Errorf("gpio trigger needs a GPIO driver")
		}
		return NewRelease(g, cfg.Camera.FocusPin, cfg.Camera.ShutterPin, cfg.FocusDelay(), cfg.ShutterDelay()), nil
	default:
		return nil, fmt.Errorf("unsupported trigger: %s", cfg.Camera.Trigger)
	}
}
