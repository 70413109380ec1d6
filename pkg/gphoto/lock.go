package gphoto

import "sync"

// driverMu serializes the driver entry points that load camlibs or port
// drivers and so touch process-global state: autodetection, camera init and
// the abilities/port list loads behind them. It guards no data, only
// ordering, so a panic inside a guarded call must leave it usable.
var driverMu sync.Mutex

func withDriverLock(fn func()) {
	driverMu.Lock()
	defer driverMu.Unlock()
	fn()
}
