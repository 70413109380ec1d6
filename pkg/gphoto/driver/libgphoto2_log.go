//go:build gphoto2

package driver

// #include <gphoto2/gphoto2.h>
import "C"

//export goDriverLog
func goDriverLog(level C.int, domain, msg *C.char) {
	logMu.RLock()
	fn := logSink
	logMu.RUnlock()
	if fn == nil {
		return
	}
	fn(LogLevel(level), C.GoString(domain), C.GoString(msg))
}
