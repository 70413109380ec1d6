// Package driver defines the operation set the gphoto wrapper calls on the
// native camera driver. Every operation reports a numeric Status the way
// libgphoto2 does: zero or positive is success, negative is an error code.
//
// Two implementations exist: Simulated, an in-memory camera used for
// development and tests, and the libgphoto2 binding, only compiled with the
// gphoto2 build tag.
package driver

import (
	"io"
	"time"
)

// Opaque handles. The zero value is never a valid handle.
type (
	ContextHandle uintptr
	CameraHandle  uintptr
	WidgetHandle  uintptr
)

// LogLevel is the severity the driver attaches to a log message.
type LogLevel int

const (
	LogError LogLevel = iota
	LogVerbose
	LogDebug
	LogData
)

// LogFunc receives every driver log message once installed with SetLogFunc.
type LogFunc func(level LogLevel, domain, msg string)

// WidgetKind is the raw widget type reported by the driver.
type WidgetKind int

const (
	WidgetWindow WidgetKind = iota
	WidgetSection
	WidgetText
	WidgetRange
	WidgetToggle
	WidgetRadio
	WidgetMenu
	WidgetButton
	WidgetDate
)

// EventTag tags the payload returned by WaitForEvent.
type EventTag int

const (
	EventUnknown EventTag = iota
	EventTimeout
	EventFileAdded
	EventFolderAdded
	EventCaptureComplete
	EventFileChanged
)

type CaptureType int

const (
	CaptureImage CaptureType = iota
	CaptureMovie
	CaptureSound
)

type FileType int

const (
	FilePreview FileType = iota
	FileNormal
	FileRaw
	FileAudio
	FileExif
	FileMetadata
)

// FilePath locates a file on the device.
type FilePath struct {
	Folder string
	Name   string
}

// CameraListEntry is one autodetected device.
type CameraListEntry struct {
	Model string
	Port  string
}

// WidgetInfo holds the descriptive attributes of a configuration widget.
type WidgetInfo struct {
	Name     string
	Label    string
	Info     string
	Kind     WidgetKind
	ID       int
	ReadOnly bool
	Changed  bool
}

// WidgetValue carries a widget value in the slot matching its kind:
// String for text, radio and menu; Float for range; Int for toggle and date.
type WidgetValue struct {
	String string
	Float  float32
	Int    int
}

// AbilitiesRecord mirrors CameraAbilities.
type AbilitiesRecord struct {
	Model            string
	Status           int
	PortTypes        uint32
	Speeds           []int
	Operations       uint32
	FileOperations   uint32
	FolderOperations uint32
	USBVendor        int
	USBProduct       int
	USBClass         int
	USBSubclass      int
	USBProtocol      int
	Library          string
	ID               string
	DeviceType       int
}

// PortRecord mirrors GPPortInfo.
type PortRecord struct {
	Type    uint32
	Name    string
	Path    string
	Library string
}

// StorageRecord mirrors CameraStorageInformation. Fields is the mask of
// populated members.
type StorageRecord struct {
	Fields      uint32
	Basedir     string
	Label       string
	Description string
	Type        int
	FSType      int
	Access      int
	CapacityKB  uint64
	FreeKB      uint64
	FreeImages  uint64
}

// Storage field mask bits.
const (
	StorageFieldBase uint32 = 1 << iota
	StorageFieldLabel
	StorageFieldDescription
	StorageFieldAccess
	StorageFieldType
	StorageFieldFSType
	StorageFieldCapacity
	StorageFieldFreeKB
	StorageFieldFreeImages
)

// FileInfoRecord mirrors the file part of CameraFileInfo.
type FileInfoRecord struct {
	Fields      uint32
	Type        string
	Size        uint64
	Width       int
	Height      int
	Permissions int
	Mtime       int64
}

// File info mask bits.
const (
	FileFieldType        uint32 = 1 << 0
	FileFieldSize        uint32 = 1 << 2
	FileFieldWidth       uint32 = 1 << 3
	FileFieldHeight      uint32 = 1 << 4
	FileFieldPermissions uint32 = 1 << 5
	FileFieldMtime       uint32 = 1 << 7
)

// Driver is the native operation set. Implementations need not be safe for
// concurrent use on the same CameraHandle; the caller serializes those.
type Driver interface {
	// Describe returns the driver's description of a status code.
	Describe(st Status) string
	SetLogFunc(min LogLevel, fn LogFunc) Status

	NewContext() (ContextHandle, Status)
	UnrefContext(ctx ContextHandle)

	Autodetect(ctx ContextHandle) ([]CameraListEntry, Status)
	// OpenCamera connects to model at port. Empty model and port open the
	// first detected device.
	OpenCamera(ctx ContextHandle, model, port string) (CameraHandle, Status)
	CloseCamera(cam CameraHandle, ctx ContextHandle) Status

	Capture(cam CameraHandle, ctx ContextHandle, kind CaptureType) (FilePath, Status)
	TriggerCapture(cam CameraHandle, ctx ContextHandle) Status
	CapturePreview(cam CameraHandle, ctx ContextHandle, w io.Writer) Status
	Abilities(cam CameraHandle) (AbilitiesRecord, Status)
	PortInfo(cam CameraHandle) (PortRecord, Status)
	Summary(cam CameraHandle, ctx ContextHandle) ([]byte, Status)
	About(cam CameraHandle, ctx ContextHandle) ([]byte, Status)
	Manual(cam CameraHandle, ctx ContextHandle) ([]byte, Status)
	StorageInfo(cam CameraHandle, ctx ContextHandle) ([]StorageRecord, Status)

	GetConfig(cam CameraHandle, ctx ContextHandle) (WidgetHandle, Status)
	GetSingleConfig(cam CameraHandle, ctx ContextHandle, name string) (WidgetHandle, Status)
	SetConfig(cam CameraHandle, ctx ContextHandle, w WidgetHandle) Status
	SetSingleConfig(cam CameraHandle, ctx ContextHandle, name string, w WidgetHandle) Status

	WidgetInfo(w WidgetHandle) (WidgetInfo, Status)
	WidgetChildCount(w WidgetHandle) (int, Status)
	WidgetChild(w WidgetHandle, i int) (WidgetHandle, Status)
	WidgetChildByName(w WidgetHandle, name string) (WidgetHandle, Status)
	WidgetChildByLabel(w WidgetHandle, label string) (WidgetHandle, Status)
	WidgetValue(w WidgetHandle) (WidgetValue, Status)
	SetWidgetValue(w WidgetHandle, v WidgetValue) Status
	SetWidgetChanged(w WidgetHandle, changed bool) Status
	WidgetRange(w WidgetHandle) (min, max, step float32, st Status)
	WidgetChoices(w WidgetHandle) ([]string, Status)
	// UnrefWidget releases a tree obtained from GetConfig or GetSingleConfig.
	UnrefWidget(w WidgetHandle)

	// WaitForEvent blocks up to timeout. File tags carry a FilePath payload.
	WaitForEvent(cam CameraHandle, ctx ContextHandle, timeout time.Duration) (EventTag, any, Status)

	ListFolders(cam CameraHandle, ctx ContextHandle, folder string) ([]string, Status)
	ListFiles(cam CameraHandle, ctx ContextHandle, folder string) ([]string, Status)
	FileInfo(cam CameraHandle, ctx ContextHandle, folder, name string) (FileInfoRecord, Status)
	GetFile(cam CameraHandle, ctx ContextHandle, folder, name string, kind FileType, w io.Writer) Status
	DeleteFile(cam CameraHandle, ctx ContextHandle, folder, name string) Status
	MakeDir(cam CameraHandle, ctx ContextHandle, parent, name string) Status
	RemoveDir(cam CameraHandle, ctx ContextHandle, parent, name string) Status
}

// NewDriver returns the simulated driver when mock is true, otherwise the
// libgphoto2 binding.
func NewDriver(mock bool) (Driver, error) {
	if mock {
		return NewSimulated(), nil
	}
	return NewLibgphoto2()
}
