package gphoto

import "path"

// CameraFilePath locates a file on the device.
type CameraFilePath struct {
	Folder string `json:"folder"`
	Name   string `json:"name"`
}

// Path joins the folder and the name with a slash.
func (p CameraFilePath) Path() string {
	return path.Join(p.Folder, p.Name)
}

func (p CameraFilePath) String() string { return p.Path() }

// ParseFilePath splits an absolute device path into folder and name.
func ParseFilePath(s string) CameraFilePath {
	dir, name := path.Split(path.Clean(s))
	return CameraFilePath{Folder: path.Clean(dir), Name: name}
}
