package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/kozaktomas/fingerprint-attendance/internal/constants"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "ATTENDANCE_"

type Config struct {
	Device   DeviceConfig   `yaml:"device" envPrefix:"DEVICE_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Matching MatchingConfig `yaml:"matching" envPrefix:"MATCHING_"`
	Station  StationConfig  `yaml:"station" envPrefix:"STATION_"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

type DeviceConfig struct {
	Port           string        `yaml:"port" env:"PORT"`
	BaudRate       int           `yaml:"baud_rate" env:"BAUD_RATE"`
	Address        uint32        `yaml:"address" env:"ADDRESS"`
	Password       uint32        `yaml:"password" env:"PASSWORD"`
	PacketSize     int           `yaml:"packet_size" env:"PACKET_SIZE"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	PollInterval   time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	CaptureTimeout time.Duration `yaml:"capture_timeout" env:"CAPTURE_TIMEOUT"` // 0 waits until interrupted
	RemoveDelay    time.Duration `yaml:"remove_delay" env:"REMOVE_DELAY"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver" env:"DRIVER"` // sqlite, postgres or mysql
	URL          string `yaml:"url" env:"URL"`       // file path for sqlite, DSN otherwise
	MaxOpenConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

type MatchingConfig struct {
	Threshold int `yaml:"threshold" env:"THRESHOLD"`
}

type StationConfig struct {
	Timezone string `yaml:"timezone" env:"TIMEZONE"` // IANA name, "Local" for the host zone
}

// Location resolves the configured timezone.
func (c *StationConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"` // node_exporter textfile collector output, empty disables
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // text or json
}

// Default returns the configuration of a stock station: a factory-configured
// sensor on /dev/ttyS0 and a local SQLite file.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Port:           constants.DefaultSerialPort,
			BaudRate:       constants.DefaultBaudRate,
			Address:        constants.DefaultSensorAddress,
			Password:       constants.DefaultSensorPassword,
			PacketSize:     constants.DefaultDataPacketSize,
			ReadTimeout:    constants.DefaultReadTimeout,
			PollInterval:   constants.DefaultPollInterval,
			CaptureTimeout: constants.DefaultCaptureTimeout,
			RemoveDelay:    constants.DefaultRemoveDelay,
		},
		Database: DatabaseConfig{
			Driver:       constants.DefaultDatabaseDriver,
			URL:          constants.DefaultDatabaseURL,
			MaxOpenConns: constants.DefaultMaxOpenConns,
			MaxIdleConns: constants.DefaultMaxIdleConns,
		},
		Matching: MatchingConfig{
			Threshold: constants.DefaultMatchThreshold,
		},
		Station: StationConfig{
			Timezone: "Local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and ATTENDANCE_* environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overlays ATTENDANCE_* environment variables onto target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

var knownDrivers = []string{"sqlite", "postgres", "mysql"}

// Validate rejects configurations the station cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Device.Port == "" {
		errs = append(errs, errors.New("device port is required"))
	}
	if c.Device.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("device baud rate must be positive, got %d", c.Device.BaudRate))
	}
	if c.Device.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("device poll interval must be positive, got %s", c.Device.PollInterval))
	}
	if c.Device.CaptureTimeout < 0 {
		errs = append(errs, fmt.Errorf("device capture timeout must not be negative, got %s", c.Device.CaptureTimeout))
	}
	if c.Device.RemoveDelay < 0 {
		errs = append(errs, fmt.Errorf("device remove delay must not be negative, got %s", c.Device.RemoveDelay))
	}

	driver := strings.ToLower(c.Database.Driver)
	known := false
	for _, d := range knownDrivers {
		if driver == d {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown database driver %q (want one of %s)", c.Database.Driver, strings.Join(knownDrivers, ", ")))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database URL is required"))
	}

	if c.Matching.Threshold < 0 {
		errs = append(errs, fmt.Errorf("matching threshold must not be negative, got %d", c.Matching.Threshold))
	}
	if _, err := c.Station.Location(); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
