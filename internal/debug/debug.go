package debug

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Debug levels
const (
	LevelOff     = 0 // Errors only
	LevelInfo    = 1 // Important info (camera model, session summary)
	LevelLive    = 2 // Live info (shots taken, events, downloads)
	LevelVerbose = 3 // Verbose (config values, driver debug output)
	LevelTrace   = 4 // Trace (GPIO, very low level)
)

var (
	level  int
	logger = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// Init initializes the debug system with a level (0-4).
// 0 = errors only
// 1 = important info (camera model, session summary)
// 2 = live info (shots, camera events, downloads)
// 3 = verbose (config values, driver debug output)
// 4 = trace (GPIO, very low level)
func Init(debugLevel int) {
	level = debugLevel
	switch {
	case level >= LevelTrace:
		logger.SetLevel(logrus.TraceLevel)
	case level >= LevelVerbose:
		logger.SetLevel(logrus.DebugLevel)
	case level >= LevelInfo:
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(logrus.ErrorLevel)
	}
}

// SetOutput redirects all debug output, e.g. to also feed the web status stream.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logger returns the underlying logger. The camera driver log hook writes to it.
func Logger() *logrus.Logger {
	return logger
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo {
		logger.Infof(format, args...)
	}
}

// Summary prints an important summary header (level 1).
func Summary(title string) {
	if level >= LevelInfo {
		logger.Info("═══════════════════════════════════════")
		logger.Infof("  %s", title)
		logger.Info("═══════════════════════════════════════")
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive {
		logger.WithField("stage", "live").Infof(format, args...)
	}
}

// Shot prints a photo capture (level 2).
func Shot(n int, path string) {
	if level >= LevelLive {
		logger.WithField("stage", "live").Infof("Photo %d stored on camera at %s", n, path)
	}
}

// Event prints a camera event (level 2).
func Event(kind, path string) {
	if level >= LevelLive {
		entry := logger.WithField("stage", "live").WithField("event", kind)
		if path != "" {
			entry = entry.WithField("path", path)
		}
		entry.Info("Camera event")
	}
}

// Download prints a completed download (level 2).
func Download(src, dest string, size int64) {
	if level >= LevelLive {
		logger.WithField("stage", "live").Infof("Downloaded %s to %s (%d bytes)", src, dest, size)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose {
		logger.Debugf(format, args...)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose {
		logger.Debugf("%s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose {
		logger.Debug("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Debugf("  %s", name)
		logger.Debug("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose {
		logger.Debugf("Step %d: %s", num, description)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo {
		logger.WithField(name, value).Info("value")
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace, GPIO).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace {
		logger.Tracef(format, args...)
	}
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	if level >= LevelTrace {
		logger.WithFields(logrus.Fields{"op": operation, "pin": pin, "value": value}).Trace("GPIO")
	}
}

// --- General functions ---

// Error prints an error. Errors are reported at every level.
func Error(err error) {
	logger.Error(err)
}
