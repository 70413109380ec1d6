package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/debug"
	"github.com/cjeanneret/gpcam/pkg/gphoto"
	"github.com/cjeanneret/gpcam/pkg/gphoto/driver"
)

const usageText = `usage: gpcam [flags] <command> [args]

commands:
  list                          list detected cameras
  summary | about | manual      print camera texts
  abilities                     print driver abilities as JSON
  storages                      print storage units as JSON
  config                        print every configuration value
  get <key>                     print one configuration widget
  set <key> <value>             change one configuration value
  capture [-download dir]       capture an image
  ls [folder]                   list a camera folder
  download <path> [dest]        copy a camera file to disk
  wait [-n count]               print camera events
  tether [-shots n] [-interval ms]
                                run a tethered shooting session
  serve                         start the web interface

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		logrus.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}

	// Initialize debug system; driver messages go through the same logger.
	debug.Init(cfg.Defaults.DebugLevel)
	gphoto.SetLogger(debug.Logger())
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	args := flag.Args()
	if port := webPort.port(); port > 0 {
		cfg.Web.Addr = fmt.Sprintf(":%d", port)
		args = []string{"serve"}
	}

	app := &app{cfg: cfg, out: os.Stdout}
	if err := app.run(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		if errors.Is(err, context.Canceled) {
			debug.Info("Interrupted")
			return
		}
		debug.Logger().Fatal(err)
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }

// app runs one command against the configured camera.
type app struct {
	cfg *config.Config
	out io.Writer
	drv driver.Driver // nil selects the driver from cfg
}
