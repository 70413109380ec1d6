package driver

import (
	"math"
	"time"
)

// waitMillis converts an event timeout to the 32-bit millisecond count the
// driver takes. Negative timeouts poll once; longer ones are clamped.
func waitMillis(d time.Duration) int32 {
	ms := d.Milliseconds()
	switch {
	case ms < 0:
		return 0
	case ms > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(ms)
}

// dataLen converts a driver buffer size to a Go length, failing when the
// buffer cannot be addressed as a single slice.
func dataLen(size uint64) (int, bool) {
	if size > uint64(math.MaxInt) {
		return 0, false
	}
	return int(size), true
}
