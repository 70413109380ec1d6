package gphoto

import (
	"fmt"
	"io"
	"time"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// FileType selects which representation of a device file to download.
type FileType int

const (
	FilePreview  FileType = FileType(driver.FilePreview)
	FileNormal   FileType = FileType(driver.FileNormal)
	FileRaw      FileType = FileType(driver.FileRaw)
	FileAudio    FileType = FileType(driver.FileAudio)
	FileExif     FileType = FileType(driver.FileExif)
	FileMetadata FileType = FileType(driver.FileMetadata)
)

var fileTypeNames = map[FileType]string{
	FilePreview:  "preview",
	FileNormal:   "normal",
	FileRaw:      "raw",
	FileAudio:    "audio",
	FileExif:     "exif",
	FileMetadata: "metadata",
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("filetype(%d)", int(t))
}

// ParseFileType is the inverse of FileType.String.
func ParseFileType(s string) (FileType, error) {
	for t, name := range fileTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown file type %q", s)
}

// FilePermissions is the permission mask of a device file.
type FilePermissions int

const (
	PermRead   FilePermissions = 1 << 0
	PermDelete FilePermissions = 1 << 1
)

func (p FilePermissions) CanRead() bool   { return p&PermRead != 0 }
func (p FilePermissions) CanDelete() bool { return p&PermDelete != 0 }

// FileInfo describes a device file. Nil fields were not reported by the
// driver.
type FileInfo struct {
	Type        *string          `json:"type,omitempty"`
	Size        *uint64          `json:"size,omitempty"`
	Width       *int             `json:"width,omitempty"`
	Height      *int             `json:"height,omitempty"`
	Permissions *FilePermissions `json:"permissions,omitempty"`
	Mtime       *time.Time       `json:"mtime,omitempty"`
}

func newFileInfo(r driver.FileInfoRecord) FileInfo {
	var fi FileInfo
	if r.Fields&driver.FileFieldType != 0 {
		fi.Type = &r.Type
	}
	if r.Fields&driver.FileFieldSize != 0 {
		fi.Size = &r.Size
	}
	if r.Fields&driver.FileFieldWidth != 0 {
		fi.Width = &r.Width
	}
	if r.Fields&driver.FileFieldHeight != 0 {
		fi.Height = &r.Height
	}
	if r.Fields&driver.FileFieldPermissions != 0 {
		p := FilePermissions(r.Permissions)
		fi.Permissions = &p
	}
	if r.Fields&driver.FileFieldMtime != 0 {
		t := time.Unix(r.Mtime, 0)
		fi.Mtime = &t
	}
	return fi
}

// CameraFS is the filesystem view of a camera. It shares the camera's
// lifetime: every call fails with ErrReleased once the camera is closed.
type CameraFS struct {
	cam *Camera
}

func (fs *CameraFS) call(fn func(c *Camera) driver.Status, op string) error {
	c := fs.cam
	return c.do(func() error {
		return check(c.drv, op, fn(c))
	})
}

// ListFolders returns the names of the subfolders of folder.
func (fs *CameraFS) ListFolders(folder string) ([]string, error) {
	var out []string
	err := fs.call(func(c *Camera) driver.Status {
		var st driver.Status
		out, st = c.drv.ListFolders(c.handle, c.ctx.handle, folder)
		return st
	}, "list folders "+folder)
	return out, err
}

// ListFiles returns the names of the files in folder.
func (fs *CameraFS) ListFiles(folder string) ([]string, error) {
	var out []string
	err := fs.call(func(c *Camera) driver.Status {
		var st driver.Status
		out, st = c.drv.ListFiles(c.handle, c.ctx.handle, folder)
		return st
	}, "list files "+folder)
	return out, err
}

// FileInfo describes the file name in folder.
func (fs *CameraFS) FileInfo(folder, name string) (FileInfo, error) {
	var rec driver.FileInfoRecord
	err := fs.call(func(c *Camera) driver.Status {
		var st driver.Status
		rec, st = c.drv.FileInfo(c.handle, c.ctx.handle, folder, name)
		return st
	}, "file info "+CameraFilePath{folder, name}.Path())
	if err != nil {
		return FileInfo{}, err
	}
	return newFileInfo(rec), nil
}

// Download writes the requested representation of the file at p to w.
// Bytes already written are not rolled back on failure.
func (fs *CameraFS) Download(p CameraFilePath, kind FileType, w io.Writer) error {
	return fs.call(func(c *Camera) driver.Status {
		return c.drv.GetFile(c.handle, c.ctx.handle, p.Folder, p.Name, driver.FileType(kind), w)
	}, "get file "+p.Path())
}

// DeleteFile removes the file at p from the device.
func (fs *CameraFS) DeleteFile(p CameraFilePath) error {
	return fs.call(func(c *Camera) driver.Status {
		return c.drv.DeleteFile(c.handle, c.ctx.handle, p.Folder, p.Name)
	}, "delete file "+p.Path())
}

// MakeDir creates folder name inside parent.
func (fs *CameraFS) MakeDir(parent, name string) error {
	return fs.call(func(c *Camera) driver.Status {
		return c.drv.MakeDir(c.handle, c.ctx.handle, parent, name)
	}, "make dir "+CameraFilePath{parent, name}.Path())
}

// RemoveDir removes the empty folder name inside parent.
func (fs *CameraFS) RemoveDir(parent, name string) error {
	return fs.call(func(c *Camera) driver.Status {
		return c.drv.RemoveDir(c.handle, c.ctx.handle, parent, name)
	}, "remove dir "+CameraFilePath{parent, name}.Path())
}
