package gphoto

import (
	"fmt"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// EventKind identifies a camera event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventTimeout
	EventNewFile
	EventFileChanged
	EventNewFolder
	EventCaptureComplete
)

var eventNames = [...]string{
	EventUnknown:         "unknown",
	EventTimeout:         "timeout",
	EventNewFile:         "new_file",
	EventFileChanged:     "file_changed",
	EventNewFolder:       "new_folder",
	EventCaptureComplete: "capture_complete",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// CameraEvent is one event reported by WaitEvent. Path is set for
// NewFile, FileChanged and NewFolder. Tag keeps the raw driver tag of
// Unknown events.
type CameraEvent struct {
	Kind EventKind      `json:"kind"`
	Path CameraFilePath `json:"path"`
	Tag  int            `json:"tag,omitempty"`
}

// HasPath reports whether the event carries a file or folder location.
func (e CameraEvent) HasPath() bool {
	switch e.Kind {
	case EventNewFile, EventFileChanged, EventNewFolder:
		return true
	}
	return false
}

func (e CameraEvent) String() string {
	switch {
	case e.HasPath():
		return fmt.Sprintf("%s %s", e.Kind, e.Path.Path())
	case e.Kind == EventUnknown:
		return fmt.Sprintf("unknown (tag %d)", e.Tag)
	}
	return e.Kind.String()
}

// DecodeEvent turns a raw driver event into a CameraEvent. File and folder
// events whose payload is not a driver.FilePath decode as Unknown.
func DecodeEvent(tag driver.EventTag, payload any) CameraEvent {
	var kind EventKind
	switch tag {
	case driver.EventTimeout:
		return CameraEvent{Kind: EventTimeout}
	case driver.EventCaptureComplete:
		return CameraEvent{Kind: EventCaptureComplete}
	case driver.EventFileAdded:
		kind = EventNewFile
	case driver.EventFileChanged:
		kind = EventFileChanged
	case driver.EventFolderAdded:
		kind = EventNewFolder
	default:
		return CameraEvent{Kind: EventUnknown, Tag: int(tag)}
	}
	var p driver.FilePath
	switch v := payload.(type) {
	case driver.FilePath:
		p = v
	case *driver.FilePath:
		if v == nil {
			return CameraEvent{Kind: EventUnknown, Tag: int(tag)}
		}
		p = *v
	default:
		return CameraEvent{Kind: EventUnknown, Tag: int(tag)}
	}
	return CameraEvent{Kind: kind, Path: CameraFilePath(p)}
}
