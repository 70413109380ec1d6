package debug

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, lvl int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	Init(lvl)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		Init(LevelOff)
	})
	return &buf
}

func TestInit_LevelGating(t *testing.T) {
	buf := capture(t, LevelLive)

	Info("camera %s", "ready")
	Live("shot %d", 1)
	Verbose("hidden %d", 3)
	Trace("hidden %d", 4)

	out := buf.String()
	if !strings.Contains(out, "camera ready") {
		t.Errorf("info message missing: %q", out)
	}
	if !strings.Contains(out, "shot 1") {
		t.Errorf("live message missing: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("verbose/trace output at live level: %q", out)
	}
}

func TestError_AlwaysReported(t *testing.T) {
	buf := capture(t, LevelOff)

	Info("quiet")
	Error(errors.New("device unplugged"))

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info output at level 0: %q", out)
	}
	if !strings.Contains(out, "device unplugged") {
		t.Errorf("error missing: %q", out)
	}
}

func TestLogger_DriverOutputFollowsLevel(t *testing.T) {
	buf := capture(t, LevelVerbose)

	Logger().WithField("domain", "gphoto2::ptp2").Debug("sending request")
	if !strings.Contains(buf.String(), "domain=\"gphoto2::ptp2\"") {
		t.Errorf("driver field missing: %q", buf.String())
	}

	buf.Reset()
	Init(LevelInfo)
	Logger().Debug("driver chatter")
	if buf.Len() != 0 {
		t.Errorf("debug output at info level: %q", buf.String())
	}
}

func TestSummaryAndStruct(t *testing.T) {
	buf := capture(t, LevelInfo)

	Summary("Session done")
	PrintStruct("Params", struct{ Shots int }{2})
	if !strings.Contains(buf.String(), "Session done") {
		t.Errorf("summary missing: %q", buf.String())
	}
	if strings.Contains(buf.String(), "Shots:2") {
		t.Errorf("struct dump at info level: %q", buf.String())
	}

	buf.Reset()
	Init(LevelVerbose)
	PrintStruct("Params", struct{ Shots int }{2})
	if !strings.Contains(buf.String(), "Shots:2") {
		t.Errorf("struct dump missing: %q", buf.String())
	}
}
