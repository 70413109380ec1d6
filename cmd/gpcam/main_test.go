package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/web"
	"github.com/cjeanneret/gpcam/pkg/gphoto"
	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

// ---------- webPortFlag ----------

func TestWebPortFlag_EmptyString(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set(""); err != nil {
		t.Fatalf("Set(\"\") error: %v", err)
	}
	if w.port() != 8080 {
		t.Errorf("expected default port 8080, got %d", w.port())
	}
}

func TestWebPortFlag_ValidPorts(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"8080", 8080},
		{"1", 1},
		{"65535", 65535},
		{"3000", 3000},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			w := &webPortFlag{defaultPort: 8080}
			if err := w.Set(tc.input); err != nil {
				t.Fatalf("Set(%q) error: %v", tc.input, err)
			}
			if w.port() != tc.want {
				t.Errorf("port() = %d, want %d", w.port(), tc.want)
			}
		})
	}
}

func TestWebPortFlag_InvalidPorts(t *testing.T) {
	cases := []string{"0", "65536", "-1", "abc", "8080.5"}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			w := &webPortFlag{defaultPort: 8080}
			if err := w.Set(input); err == nil {
				t.Errorf("Set(%q) should fail, got nil", input)
			}
		})
	}
}

func TestWebPortFlag_String(t *testing.T) {
	w := &webPortFlag{val: 0}
	if s := w.String(); s != "0" {
		t.Errorf("String() = %q, want \"0\"", s)
	}
	w.val = 9090
	if s := w.String(); s != "9090" {
		t.Errorf("String() = %q, want \"9090\"", s)
	}
}

// ---------- applyRunRequest ----------

func newTestConfig(t *testing.T) *config.Config {
	return &config.Config{
		Camera: config.CameraConfig{MockDriver: true, Trigger: config.TriggerDriver},
		Tether: config.TetherConfig{
			DownloadDir:    t.TempDir(),
			EventTimeoutMs: 1000,
			FileType:       "normal",
			Shots:          1,
			IntervalMs:     10,
		},
	}
}

func TestApplyRunRequest_NonZero(t *testing.T) {
	cfg := newTestConfig(t)
	out := applyRunRequest(cfg, web.RunRequest{Shots: 5, IntervalMs: 250})
	if out.Tether.Shots != 5 {
		t.Errorf("Shots = %d, want 5", out.Tether.Shots)
	}
	if out.Tether.IntervalMs != 250 {
		t.Errorf("IntervalMs = %d, want 250", out.Tether.IntervalMs)
	}
}

func TestApplyRunRequest_ZeroLeavesUnchanged(t *testing.T) {
	cfg := newTestConfig(t)
	out := applyRunRequest(cfg, web.RunRequest{})
	if out.Tether.Shots != 1 || out.Tether.IntervalMs != 10 {
		t.Errorf("tether = %+v, want config values", out.Tether)
	}
}

func TestApplyRunRequest_OriginalUnmutated(t *testing.T) {
	cfg := newTestConfig(t)
	out := applyRunRequest(cfg, web.RunRequest{Shots: 9})
	if cfg.Tether.Shots != 1 {
		t.Errorf("original Shots = %d, want 1", cfg.Tether.Shots)
	}
	if out == cfg {
		t.Error("applyRunRequest should return a new pointer")
	}
	if out.Tether.DownloadDir != cfg.Tether.DownloadDir || !out.Camera.MockDriver {
		t.Error("other fields should be preserved")
	}
}

// ---------- commands ----------

// runCmd runs one command against sim and returns its output.
func runCmd(t *testing.T, sim *driver.Simulated, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{cfg: cfg, out: &out, drv: sim}
	err := a.run(context.Background(), args)
	return out.String(), err
}

func mustRun(t *testing.T, sim *driver.Simulated, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := runCmd(t, sim, cfg, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	if sim.OpenCameras() != 0 || sim.LiveContexts() != 0 || sim.LiveWidgets() != 0 {
		t.Errorf("%v leaked handles: cameras=%d contexts=%d widgets=%d",
			args, sim.OpenCameras(), sim.LiveContexts(), sim.LiveWidgets())
	}
	return out
}

func TestRun_Usage(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	for _, args := range [][]string{nil, {"bogus"}, {"get"}, {"set", "iso"}, {"download"}, {"wait", "-n", "x"}} {
		if _, err := runCmd(t, sim, cfg, args...); !errors.Is(err, errUsage) {
			t.Errorf("%v: err = %v, want usage error", args, err)
		}
	}
}

func TestRun_List(t *testing.T) {
	sim := driver.NewSimulated()
	out := mustRun(t, sim, newTestConfig(t), "list")
	if !strings.Contains(out, driver.SimulatedModel) || !strings.Contains(out, "usb:001,004") {
		t.Errorf("list output = %q", out)
	}
}

func TestRun_NoCamera(t *testing.T) {
	sim := driver.NewSimulated()
	sim.SetConnected(false)
	_, err := runCmd(t, sim, newTestConfig(t), "summary")
	if !errors.Is(err, gphoto.ErrDeviceNotFound) {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestRun_ConfiguredModel(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	cfg.Camera.Model = driver.SimulatedModel
	cfg.Camera.Port = "usb:001,004"
	if out := mustRun(t, sim, cfg, "summary"); !strings.Contains(out, "Model: "+driver.SimulatedModel) {
		t.Errorf("summary = %q", out)
	}

	cfg.Camera.Port = ""
	mustRun(t, sim, cfg, "summary")

	cfg.Camera.Model = "Nikon D90"
	if _, err := runCmd(t, sim, cfg, "summary"); !errors.Is(err, gphoto.ErrDeviceNotFound) {
		t.Errorf("unknown model err = %v", err)
	}
}

func TestRun_Texts(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	if out := mustRun(t, sim, cfg, "about"); !strings.HasSuffix(out, "\n") || out == "\n" {
		t.Errorf("about = %q", out)
	}
	if _, err := runCmd(t, sim, cfg, "manual"); !errors.Is(err, gphoto.ErrNotSupported) {
		t.Errorf("manual err = %v, want ErrNotSupported", err)
	}
}

func TestRun_AbilitiesAndStorages(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	if out := mustRun(t, sim, cfg, "abilities"); !strings.Contains(out, `"model": "`+driver.SimulatedModel+`"`) {
		t.Errorf("abilities = %q", out)
	}
	if out := mustRun(t, sim, cfg, "storages"); !strings.HasPrefix(out, "[") {
		t.Errorf("storages = %q", out)
	}
}

func TestRun_Config(t *testing.T) {
	sim := driver.NewSimulated()
	out := mustRun(t, sim, newTestConfig(t), "config")
	for _, want := range []string{
		"/main/imgsettings/iso [radio] = Auto\n",
		"/main/capturesettings/zoom [range] = 0\n",
		"/main/actions/resetsettings [button]\n",
		"/main/settings/datetime [date] = ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("config output is missing %q", want)
		}
	}
}

func TestRun_GetSet(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)

	out := mustRun(t, sim, cfg, "get", "iso")
	for _, want := range []string{"Label: ISO Speed\n", "Type: radio\n", "Current: Auto\n", "Choice: 3 400\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("get output is missing %q:\n%s", want, out)
		}
	}

	mustRun(t, sim, cfg, "set", "iso", "400")
	if out := mustRun(t, sim, cfg, "get", "iso"); !strings.Contains(out, "Current: 400\n") {
		t.Errorf("after set: %s", out)
	}

	mustRun(t, sim, cfg, "set", "flashcompensation", "1.5")
	if out := mustRun(t, sim, cfg, "get", "flashcompensation"); !strings.Contains(out, "Current: 1.5\nBottom: -3\nTop: 3\nStep: 0.5\n") {
		t.Errorf("range get: %s", out)
	}

	mustRun(t, sim, cfg, "set", "resetsettings", "")
	if p := sim.Presses(); len(p) != 1 || p[0] != "resetsettings" {
		t.Errorf("presses = %v", p)
	}

	if _, err := runCmd(t, sim, cfg, "set", "iso", "12800"); !errors.Is(err, gphoto.ErrInvalidChoice) {
		t.Errorf("invalid choice err = %v", err)
	}
	if _, err := runCmd(t, sim, cfg, "get", "nope"); !errors.Is(err, gphoto.ErrNotFound) {
		t.Errorf("missing key err = %v", err)
	}
}

func TestRun_CaptureAndFiles(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	folder := "/store_00010001/DCIM/100CANON"

	if out := mustRun(t, sim, cfg, "capture"); out != folder+"/IMG_0002.JPG\n" {
		t.Errorf("capture = %q", out)
	}
	if out := mustRun(t, sim, cfg, "ls", folder); out != "IMG_0001.JPG\nIMG_0002.JPG\n" {
		t.Errorf("ls = %q", out)
	}
	if out := mustRun(t, sim, cfg, "ls"); out != "store_00010001/\n" {
		t.Errorf("ls / = %q", out)
	}

	dir := t.TempDir()
	out := mustRun(t, sim, cfg, "capture", "-download", dir)
	if !strings.Contains(out, "saved "+filepath.Join(dir, "IMG_0003.JPG")) {
		t.Errorf("capture -download = %q", out)
	}
	if out := mustRun(t, sim, cfg, "ls", folder); strings.Contains(out, "IMG_0003.JPG") {
		t.Error("downloaded capture should be deleted from the card")
	}

	dest := filepath.Join(dir, "first.jpg")
	mustRun(t, sim, cfg, "download", folder+"/IMG_0001.JPG", dest)
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Errorf("download is not a JPEG: %q", data)
	}

	missing := filepath.Join(dir, "missing.jpg")
	if _, err := runCmd(t, sim, cfg, "download", folder+"/NOPE.JPG", missing); !errors.Is(err, gphoto.ErrNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("failed download should not leave a file")
	}
}

func TestRun_Wait(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	sim.QueueEvent(driver.EventFolderAdded, driver.FilePath{Folder: "/store_00010001/DCIM", Name: "101CANON"})
	sim.QueueEvent(driver.EventCaptureComplete, nil)

	out := mustRun(t, sim, cfg, "wait", "-n", "2")
	if out != "new_folder /store_00010001/DCIM/101CANON\ncapture_complete\n" {
		t.Errorf("wait = %q", out)
	}
}

func TestRun_WaitCancelled(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	cfg.Tether.EventTimeoutMs = 20
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &app{cfg: cfg, out: &bytes.Buffer{}, drv: sim}
	if err := a.run(ctx, []string{"wait"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRun_Tether(t *testing.T) {
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)

	out := mustRun(t, sim, cfg, "tether", "-shots", "2")
	if !strings.Contains(out, "2 shots, 2 files") {
		t.Errorf("tether output = %q", out)
	}
	if !strings.Contains(out, "shot 1: new_file /store_00010001/DCIM/100CANON/IMG_0002.JPG -> ") {
		t.Errorf("tether output is missing the first file:\n%s", out)
	}
	for _, name := range []string{"IMG_0002.JPG", "IMG_0003.JPG"} {
		if _, err := os.Stat(filepath.Join(cfg.Tether.DownloadDir, name)); err != nil {
			t.Errorf("%s not downloaded: %v", name, err)
		}
	}
}

func TestRun_TetherGPIOMock(t *testing.T) {
	// The mock release does not reach the simulated camera, so no file
	// arrives within the budget.
	sim := driver.NewSimulated()
	cfg := newTestConfig(t)
	cfg.Camera.Trigger = config.TriggerGPIO
	cfg.Camera.MockGPIO = true
	cfg.Camera.FocusPin, cfg.Camera.ShutterPin = 17, 27
	cfg.Tether.EventTimeoutMs = 100

	out, err := runCmd(t, sim, cfg, "tether")
	if err == nil || !strings.Contains(err.Error(), "no new file") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out, "1 shots, 0 files") {
		t.Errorf("output = %q", out)
	}
}

func TestRun_TetherInvalidFlags(t *testing.T) {
	sim := driver.NewSimulated()
	if _, err := runCmd(t, sim, newTestConfig(t), "tether", "-shots", "-1"); !errors.Is(err, errUsage) {
		t.Errorf("err = %v, want usage error", err)
	}
}

func TestRunRequest_CLIAndWebProduceSameResult(t *testing.T) {
	cfg := newTestConfig(t)
	req := web.RunRequest{Shots: 4, IntervalMs: 500}
	a := applyRunRequest(cfg, req)
	b := applyRunRequest(cfg, req)
	if a.Tether != b.Tether {
		t.Errorf("CLI and web results differ: %+v vs %+v", a.Tether, b.Tether)
	}
}
