// Package gphoto controls digital cameras through a handle based driver
// such as libgphoto2.
//
// A Context is created on a driver.Driver and opens Cameras. A Camera
// captures, reports its abilities and storages, exposes its files through
// CameraFS and its settings as a tree of Widgets, and reports device events
// through WaitEvent.
//
//	drv, _ := driver.NewDriver(false)
//	ctx, err := gphoto.NewContext(drv)
//	...
//	defer ctx.Close()
//	cam, err := ctx.AutodetectCamera()
//	...
//	defer cam.Close()
//	iso, err := cam.ConfigKey("iso")
//	...
//	iso.SetChoice("400")
//	cam.SetConfig(iso)
//
// Values derived from a Camera stay valid only while it is open; after
// Close they fail with ErrReleased. A Context stays alive until it and
// every Camera opened from it are closed.
//
// Driver output is logged through the logger set with SetLogger.
package gphoto
