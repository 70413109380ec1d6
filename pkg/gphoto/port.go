package gphoto

import "github.com/cjeanneret/gpcam/pkg/gphoto/driver"

// PortInfo describes the port a camera is reached through.
type PortInfo struct {
	Type    PortType `json:"type"`
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Library string   `json:"library"`
}

func newPortInfo(r driver.PortRecord) PortInfo {
	return PortInfo{Type: PortType(r.Type), Name: r.Name, Path: r.Path, Library: r.Library}
}
