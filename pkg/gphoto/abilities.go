package gphoto

import (
	"fmt"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

//go:generate go run ./internal/flaggen -out abilities_flags.go

// Bit sets reported in Abilities and PortInfo. The flag constants and
// their accessors live in abilities_flags.go.
type (
	CameraOperation uint32
	FileOperation   uint32
	FolderOperation uint32
	PortType        uint32
)

// DriverStatus is the maturity of the camera driver.
type DriverStatus int

const (
	StatusProduction DriverStatus = iota
	StatusTesting
	StatusExperimental
	StatusDeprecated
)

func (s DriverStatus) String() string {
	switch s {
	case StatusProduction:
		return "production"
	case StatusTesting:
		return "testing"
	case StatusExperimental:
		return "experimental"
	case StatusDeprecated:
		return "deprecated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s DriverStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DeviceType tells still cameras from audio players.
type DeviceType int

const (
	DeviceStillCamera DeviceType = iota
	DeviceAudioPlayer
)

func (d DeviceType) String() string {
	switch d {
	case DeviceStillCamera:
		return "still_camera"
	case DeviceAudioPlayer:
		return "audio_player"
	}
	return fmt.Sprintf("device(%d)", int(d))
}

func (d DeviceType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Abilities is a snapshot of what the driver reports the camera can do.
type Abilities struct {
	Model            string          `json:"model"`
	Status           DriverStatus    `json:"status"`
	PortTypes        PortType        `json:"port_types"`
	Speeds           []int           `json:"speeds,omitempty"`
	Operations       CameraOperation `json:"operations"`
	FileOperations   FileOperation   `json:"file_operations"`
	FolderOperations FolderOperation `json:"folder_operations"`
	USBVendor        int             `json:"usb_vendor"`
	USBProduct       int             `json:"usb_product"`
	USBClass         int             `json:"usb_class"`
	USBSubclass      int             `json:"usb_subclass"`
	USBProtocol      int             `json:"usb_protocol"`
	Library          string          `json:"library"`
	ID               string          `json:"id"`
	DeviceType       DeviceType      `json:"device_type"`
}

func newAbilities(r driver.AbilitiesRecord) Abilities {
	return Abilities{
		Model:            r.Model,
		Status:           DriverStatus(r.Status),
		PortTypes:        PortType(r.PortTypes),
		Speeds:           append([]int(nil), r.Speeds...),
		Operations:       CameraOperation(r.Operations),
		FileOperations:   FileOperation(r.FileOperations),
		FolderOperations: FolderOperation(r.FolderOperations),
		USBVendor:        r.USBVendor,
		USBProduct:       r.USBProduct,
		USBClass:         r.USBClass,
		USBSubclass:      r.USBSubclass,
		USBProtocol:      r.USBProtocol,
		Library:          r.Library,
		ID:               r.ID,
		DeviceType:       DeviceType(r.DeviceType),
	}
}
