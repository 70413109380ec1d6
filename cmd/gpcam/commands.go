package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/debug"
	"github.com/cjeanneret/gpcam/internal/hw/gpio"
	"github.com/cjeanneret/gpcam/internal/hw/trigger"
	"github.com/cjeanneret/gpcam/internal/publish"
	"github.com/cjeanneret/gpcam/internal/tether"
	"github.com/cjeanneret/gpcam/internal/web"
	"github.com/cjeanneret/gpcam/pkg/gphoto"
	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

type command func(a *app, ctx context.Context, cam *gphoto.Camera, args []string) error

var commands = map[string]command{
	"summary":   textCommand((*gphoto.Camera).Summary),
	"about":     textCommand((*gphoto.Camera).About),
	"manual":    textCommand((*gphoto.Camera).Manual),
	"abilities": (*app).abilities,
	"storages":  (*app).storages,
	"config":    (*app).config,
	"get":       (*app).get,
	"set":       (*app).set,
	"capture":   (*app).capture,
	"ls":        (*app).ls,
	"download":  (*app).download,
	"wait":      (*app).wait,
	"tether":    (*app).tether,
	"serve":     (*app).serve,
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]
	if name == "list" {
		return a.list()
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}

	gctx, err := a.context()
	if err != nil {
		return err
	}
	defer gctx.Close()
	cam, err := a.openCamera(gctx)
	if err != nil {
		return err
	}
	defer cam.Close()

	return cmd(a, ctx, cam, rest)
}

func (a *app) context() (*gphoto.Context, error) {
	drv := a.drv
	if drv == nil {
		var err error
		if drv, err = driver.NewDriver(a.cfg.Camera.MockDriver); err != nil {
			return nil, fmt.Errorf("init camera driver: %w", err)
		}
	}
	gctx, err := gphoto.NewContext(drv)
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}
	return gctx, nil
}

// openCamera opens the configured model, or the first detected camera
// when no model is configured. A model without a port is looked up in the
// detected cameras.
func (a *app) openCamera(gctx *gphoto.Context) (*gphoto.Camera, error) {
	debug.Step(1, "Opening camera")
	model, port := a.cfg.Camera.Model, a.cfg.Camera.Port
	if model == "" {
		return gctx.AutodetectCamera()
	}
	if port == "" {
		cams, err := gctx.ListCameras()
		if err != nil {
			return nil, err
		}
		for _, c := range cams {
			if c.Model == model {
				port = c.Port
				break
			}
		}
		if port == "" {
			return nil, fmt.Errorf("camera %q not detected: %w", model, gphoto.ErrDeviceNotFound)
		}
	}
	debug.Value("Model", model)
	debug.Value("Port", port)
	return gctx.GetCamera(model, port)
}

func (a *app) list() error {
	gctx, err := a.context()
	if err != nil {
		return err
	}
	defer gctx.Close()
	cams, err := gctx.ListCameras()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Model\tPort")
	for _, c := range cams {
		fmt.Fprintf(tw, "%s\t%s\n", c.Model, c.Port)
	}
	return tw.Flush()
}

func textCommand(get func(*gphoto.Camera) (string, error)) command {
	return func(a *app, _ context.Context, cam *gphoto.Camera, _ []string) error {
		text, err := get(cam)
		if err != nil {
			return err
		}
		fmt.Fprint(a.out, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(a.out)
		}
		return nil
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) abilities(_ context.Context, cam *gphoto.Camera, _ []string) error {
	ab, err := cam.Abilities()
	if err != nil {
		return err
	}
	return a.printJSON(ab)
}

func (a *app) storages(_ context.Context, cam *gphoto.Camera, _ []string) error {
	s, err := cam.Storages()
	if err != nil {
		return err
	}
	return a.printJSON(s)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// config prints one line per value widget: path [kind] = value.
func (a *app) config(_ context.Context, cam *gphoto.Camera, _ []string) error {
	root, err := cam.Config()
	if err != nil {
		return err
	}
	defer root.Close()
	return printTree(a.out, root, "")
}

func printTree(out io.Writer, w *gphoto.Widget, prefix string) error {
	path := prefix + "/" + w.Name()
	if w.Kind().IsContainer() {
		children, err := w.Children()
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := printTree(out, c, path); err != nil {
				return err
			}
		}
		return nil
	}
	if w.Kind() == gphoto.KindButton {
		fmt.Fprintf(out, "%s [%s]\n", path, w.Kind())
		return nil
	}
	v, err := w.Value()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s [%s] = %s\n", path, w.Kind(), formatValue(v))
	return nil
}

func (a *app) get(_ context.Context, cam *gphoto.Camera, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("get needs a key: %w", errUsage)
	}
	w, err := cam.ConfigKey(args[0])
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(a.out, "Label: %s\n", w.Label())
	if w.Info() != "" {
		fmt.Fprintf(a.out, "Info: %s\n", w.Info())
	}
	fmt.Fprintf(a.out, "Type: %s\n", w.Kind())
	fmt.Fprintf(a.out, "Readonly: %t\n", w.ReadOnly())
	v, err := w.Value()
	if err != nil {
		return err
	}
	if v != nil {
		fmt.Fprintf(a.out, "Current: %s\n", formatValue(v))
	}
	switch w.Kind() {
	case gphoto.KindRange:
		min, max, step, err := w.Range()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Bottom: %g\nTop: %g\nStep: %g\n", min, max, step)
	case gphoto.KindRadio, gphoto.KindMenu:
		choices, err := w.Choices()
		if err != nil {
			return err
		}
		for i, c := range choices {
			fmt.Fprintf(a.out, "Choice: %d %s\n", i, c)
		}
	}
	return nil
}

func (a *app) set(_ context.Context, cam *gphoto.Camera, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("set needs a key and a value: %w", errUsage)
	}
	key, value := args[0], args[1]
	w, err := cam.ConfigKey(key)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := gphoto.SetFromString(w, value); err != nil {
		return err
	}
	// Pressing a button already wrote it.
	if w.Kind() != gphoto.KindButton {
		if err := cam.SetConfig(w); err != nil {
			return err
		}
	}
	debug.Verbose("%s set to %q", key, value)
	return nil
}

func (a *app) capture(_ context.Context, cam *gphoto.Camera, args []string) error {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dir := fs.String("download", "", "download the image into this directory")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("capture: %v: %w", err, errUsage)
	}

	p, err := cam.CaptureImage()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, p.Path())
	if *dir == "" {
		return nil
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(*dir, p.Name)
	if err := saveFile(cam, p, a.cfg.FileType(), dest); err != nil {
		return err
	}
	if !a.cfg.Tether.KeepOnCamera {
		if err := cam.FS().DeleteFile(p); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "saved %s\n", dest)
	return nil
}

// saveFile downloads p into dest, removing dest again on failure.
func saveFile(cam *gphoto.Camera, p gphoto.CameraFilePath, kind gphoto.FileType, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := cam.FS().Download(p, kind, f); err != nil {
		f.Close()
		os.Remove(dest)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

func (a *app) ls(_ context.Context, cam *gphoto.Camera, args []string) error {
	folder := "/"
	if len(args) > 0 {
		folder = args[0]
	}
	folders, err := cam.FS().ListFolders(folder)
	if err != nil {
		return err
	}
	files, err := cam.FS().ListFiles(folder)
	if err != nil {
		return err
	}
	for _, f := range folders {
		fmt.Fprintf(a.out, "%s/\n", f)
	}
	for _, f := range files {
		fmt.Fprintln(a.out, f)
	}
	return nil
}

func (a *app) download(_ context.Context, cam *gphoto.Camera, args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	kindName := fs.String("type", "normal", "file representation (normal, raw, preview, exif, audio, metadata)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("download: %v: %w", err, errUsage)
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("download needs a camera path: %w", errUsage)
	}
	kind, err := gphoto.ParseFileType(*kindName)
	if err != nil {
		return err
	}
	p := gphoto.ParseFilePath(fs.Arg(0))
	dest := p.Name
	if fs.NArg() == 2 {
		dest = fs.Arg(1)
	}
	if err := saveFile(cam, p, kind, dest); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved %s\n", dest)
	return nil
}

// wait prints events until count of them, timeouts excluded, were seen.
func (a *app) wait(ctx context.Context, cam *gphoto.Camera, args []string) error {
	fs := flag.NewFlagSet("wait", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	count := fs.Int("n", 1, "number of events to wait for")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("wait: %v: %w", err, errUsage)
	}

	poll := a.cfg.EventTimeout()
	if poll <= 0 {
		poll = time.Second
	}
	for seen := 0; seen < *count; {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := cam.WaitEvent(poll)
		if err != nil {
			return err
		}
		if ev.Kind == gphoto.EventTimeout {
			debug.Trace("No event within %s", poll)
			continue
		}
		fmt.Fprintln(a.out, ev)
		seen++
	}
	return nil
}

// applyRunRequest returns a copy of cfg with the non-zero fields of req
// applied. The CLI and the web interface share it.
func applyRunRequest(cfg *config.Config, req web.RunRequest) *config.Config {
	out := *cfg
	if req.Shots > 0 {
		out.Tether.Shots = req.Shots
	}
	if req.IntervalMs > 0 {
		out.Tether.IntervalMs = req.IntervalMs
	}
	return &out
}

// newTrigger builds the configured trigger. The returned cleanup closes the
// GPIO driver when one was opened.
func (a *app) newTrigger(cam *gphoto.Camera) (trigger.Trigger, func(), error) {
	var g gpio.Driver
	cleanup := func() {}
	if a.cfg.Camera.Trigger == config.TriggerGPIO {
		var err error
		if g, err = gpio.NewDriver(a.cfg.Camera.MockGPIO); err != nil {
			return nil, nil, fmt.Errorf("init GPIO failed: %w", err)
		}
		cleanup = func() {
			if err := g.Close(); err != nil {
				debug.Error(fmt.Errorf("closing GPIO driver failed: %w", err))
			}
		}
	}
	trig, err := trigger.New(a.cfg, cam, g)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return trig, cleanup, nil
}

// mqttSink starts the MQTT publisher when a broker is configured.
func (a *app) mqttSink() (*publish.Publisher, error) {
	if a.cfg.MQTT.Broker == "" {
		return nil, nil
	}
	p := publish.New(a.cfg.MQTT)
	if err := p.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *app) printSink() tether.Sink {
	return tether.SinkFunc(func(r tether.Record) {
		if r.File != "" {
			fmt.Fprintf(a.out, "shot %d: %s -> %s\n", r.Shot, r.Event, r.File)
			return
		}
		fmt.Fprintf(a.out, "shot %d: %s\n", r.Shot, r.Event)
	})
}

func (a *app) tether(ctx context.Context, cam *gphoto.Camera, args []string) error {
	fs := flag.NewFlagSet("tether", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	shots := fs.Int("shots", 0, "number of shots (default from config)")
	interval := fs.Int("interval", 0, "pause between shots in ms (default from config)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("tether: %v: %w", err, errUsage)
	}
	req := web.RunRequest{Shots: *shots, IntervalMs: *interval}
	if *shots < 0 || *interval < 0 {
		return fmt.Errorf("tether: shots and interval must not be negative: %w", errUsage)
	}
	cfg := applyRunRequest(a.cfg, req)

	trig, cleanup, err := a.newTrigger(cam)
	if err != nil {
		return err
	}
	defer cleanup()

	sinks := []tether.Sink{a.printSink()}
	pub, err := a.mqttSink()
	if err != nil {
		return err
	}
	if pub != nil {
		defer pub.Stop()
		sinks = append(sinks, pub)
	}

	res, err := tether.NewSession(cam, trig, sinks...).Run(ctx, tether.ParamsFromConfig(cfg))
	if res != nil {
		fmt.Fprintf(a.out, "session %s: %d shots, %d files\n", res.ID, res.Shots, len(res.Files))
	}
	return err
}

func (a *app) serve(ctx context.Context, cam *gphoto.Camera, _ []string) error {
	broadcaster := web.NewStatusBroadcaster()
	debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

	trig, cleanup, err := a.newTrigger(cam)
	if err != nil {
		return err
	}
	defer cleanup()

	sinks := []tether.Sink{broadcaster}
	pub, err := a.mqttSink()
	if err != nil {
		return err
	}
	if pub != nil {
		defer pub.Stop()
		sinks = append(sinks, pub)
	}

	runSession := func(ctx context.Context, job string, req web.RunRequest) error {
		cfg := applyRunRequest(a.cfg, req)
		_, err := tether.NewSessionWithID(job, cam, trig, sinks...).Run(ctx, tether.ParamsFromConfig(cfg))
		return err
	}
	defaults := web.SessionDefaults{
		Shots:       a.cfg.Tether.Shots,
		IntervalMs:  a.cfg.Tether.IntervalMs,
		Trigger:     trig.Name(),
		DownloadDir: a.cfg.Tether.DownloadDir,
	}
	srv, err := web.NewServer(a.cfg.Web.Addr, broadcaster, cam, runSession, defaults)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
