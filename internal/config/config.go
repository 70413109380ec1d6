package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/gpcam/pkg/gphoto"
)

// MaxConfigFileBytes bounds the size of a configuration file.
const MaxConfigFileBytes = 1 << 20

// EnvPrefix prefixes the environment overrides, e.g. GPCAM_CAMERA_MOCK_DRIVER.
const EnvPrefix = "GPCAM"

// Trigger kinds.
const (
	TriggerDriver = "driver" // capture through the camera driver
	TriggerGPIO   = "gpio"   // wired remote release on GPIO pins
)

// CameraConfig selects the camera and how its shutter is released.
// Model and Port are optional; when empty the first detected camera is used.
type CameraConfig struct {
	Model      string `yaml:"model" split_words:"true"`
	Port       string `yaml:"port" split_words:"true"`
	MockDriver bool   `yaml:"mock_driver" split_words:"true"` // simulated camera (true=dev/test)
	Trigger    string `yaml:"trigger" split_words:"true"`     // "driver" or "gpio"

	// Wired release, used when Trigger is "gpio".
	MockGPIO        bool `yaml:"mock_gpio" split_words:"true"`
	FocusPin        int  `yaml:"focus_pin" split_words:"true"`          // GPIO pin for FOCUS line
	ShutterPin      int  `yaml:"shutter_pin" split_words:"true"`        // GPIO pin for SHUTTER line
	FocusDelayMs    int  `yaml:"focus_delay_ms" split_words:"true"`     // autofocus delay (ms)
	ShutterDelayMs  int  `yaml:"shutter_delay_ms" split_words:"true"`   // shutter hold time (ms)
	PostShotDelayMs int  `yaml:"post_shot_delay_ms" split_words:"true"` // delay after a shot (ms)
}

// TetherConfig drives tethered shooting sessions.
type TetherConfig struct {
	DownloadDir    string `yaml:"download_dir" split_words:"true"`
	EventTimeoutMs int    `yaml:"event_timeout_ms" split_words:"true"` // budget to wait for the new file(s) of one shot
	KeepOnCamera   bool   `yaml:"keep_on_camera" split_words:"true"`
	FileType       string `yaml:"file_type" split_words:"true"` // normal, raw, preview...
	Shots          int    `yaml:"shots" split_words:"true"`
	IntervalMs     int    `yaml:"interval_ms" split_words:"true"`
}

// MQTTConfig is optional; an empty broker disables publishing.
type MQTTConfig struct {
	Broker      string `yaml:"broker" split_words:"true"` // e.g. tcp://localhost:1883
	ClientID    string `yaml:"client_id" split_words:"true"`
	Username    string `yaml:"username" split_words:"true"`
	Password    string `yaml:"password" split_words:"true"`
	TopicPrefix string `yaml:"topic_prefix" split_words:"true"`
	QoS         byte   `yaml:"qos" split_words:"true"`
}

// WebConfig configures the HTTP control surface.
type WebConfig struct {
	Addr string `yaml:"addr" split_words:"true"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int `yaml:"debug_level" split_words:"true"` // debug level 0-4 (0=errors, 1=info, 2=live, 3=verbose, 4=trace)
}

// Config aggregates all application configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Tether   TetherConfig   `yaml:"tether"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Web      WebConfig      `yaml:"web"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath accepts only .yaml files located in a configs/ directory.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	clean := filepath.Clean(path)
	if filepath.Ext(clean) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension: %s", path)
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config file must be in a configs/ directory: %s", path)
	}
	return nil
}

// Load reads a YAML file, applies GPCAM_* environment overrides and returns
// the validated configuration.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Camera.Trigger {
	case "":
		c.Camera.Trigger = TriggerDriver
	case TriggerDriver:
	case TriggerGPIO:
		if c.Camera.FocusPin <= 0 || c.Camera.ShutterPin <= 0 {
			return errors.New("camera.focus_pin and camera.shutter_pin are required for the gpio trigger")
		}
		if c.Camera.FocusPin == c.Camera.ShutterPin {
			return fmt.Errorf("camera.focus_pin and camera.shutter_pin must differ, both are %d", c.Camera.FocusPin)
		}
	default:
		return fmt.Errorf("camera.trigger must be %q or %q, got %q", TriggerDriver, TriggerGPIO, c.Camera.Trigger)
	}
	if c.Camera.Port != "" && c.Camera.Model == "" {
		return errors.New("camera.model is required when camera.port is set")
	}

	// Default values for release delays
	if c.Camera.FocusDelayMs <= 0 {
		c.Camera.FocusDelayMs = 500 // 500ms for autofocus
	}
	if c.Camera.ShutterDelayMs <= 0 {
		c.Camera.ShutterDelayMs = 200 // 200ms shutter hold
	}
	if c.Camera.PostShotDelayMs <= 0 {
		c.Camera.PostShotDelayMs = 300
	}

	if c.Tether.DownloadDir == "" {
		c.Tether.DownloadDir = "downloads"
	}
	if c.Tether.EventTimeoutMs <= 0 {
		c.Tether.EventTimeoutMs = 10000
	}
	if c.Tether.FileType == "" {
		c.Tether.FileType = gphoto.FileNormal.String()
	}
	if _, err := gphoto.ParseFileType(c.Tether.FileType); err != nil {
		return fmt.Errorf("tether.file_type: %w", err)
	}
	if c.Tether.Shots <= 0 {
		c.Tether.Shots = 1
	}
	if c.Tether.IntervalMs < 0 {
		return fmt.Errorf("tether.interval_ms must be >= 0, got %d", c.Tether.IntervalMs)
	}

	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "gpcam"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "gpcam"
	}

	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

// FileType returns the download representation of tethered shots.
func (c *Config) FileType() gphoto.FileType {
	ft, err := gphoto.ParseFileType(c.Tether.FileType)
	if err != nil {
		return gphoto.FileNormal
	}
	return ft
}

// EventTimeout returns the wait budget for the files of one shot.
func (c *Config) EventTimeout() time.Duration {
	return time.Duration(c.Tether.EventTimeoutMs) * time.Millisecond
}

// Interval returns the pause between two tethered shots.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Tether.IntervalMs) * time.Millisecond
}

// FocusDelay returns the autofocus delay duration.
func (c *Config) FocusDelay() time.Duration {
	return time.Duration(c.Camera.FocusDelayMs) * time.Millisecond
}

// ShutterDelay returns the shutter hold duration.
func (c *Config) ShutterDelay() time.Duration {
	return time.Duration(c.Camera.ShutterDelayMs) * time.Millisecond
}

// PostShotDelay returns the delay after a shot.
func (c *Config) PostShotDelay() time.Duration {
	return time.Duration(c.Camera.PostShotDelayMs) * time.Millisecond
}
