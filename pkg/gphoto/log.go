package gphoto

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

var (
	logMu  sync.RWMutex
	logger logrus.FieldLogger = logrus.StandardLogger()

	hookOnce sync.Once
)

// SetLogger replaces the logger receiving driver output and wrapper
// diagnostics. The default is the logrus standard logger.
func SetLogger(l logrus.FieldLogger) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = l
}

func currentLogger() logrus.FieldLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// installLogHook routes driver log output through the logger. It runs once
// per process, whichever context triggers it first.
func installLogHook(drv driver.Driver) {
	hookOnce.Do(func() {
		if st := drv.SetLogFunc(driver.LogDebug, forwardDriverLog); st.Failed() {
			currentLogger().Warnf("gphoto: installing driver log hook failed: %s", drv.Describe(st))
		}
	})
}

func forwardDriverLog(level driver.LogLevel, domain, msg string) {
	entry := currentLogger().WithField("domain", "gphoto2::"+domain)
	switch level {
	case driver.LogError:
		entry.Error(msg)
	case driver.LogDebug:
		entry.Debug(msg)
	case driver.LogVerbose:
		entry.Info(msg)
	default:
		// The hook is installed at debug level; data messages never reach it.
		panic(fmt.Sprintf("gphoto: unexpected driver log level %d", level))
	}
}
