package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kozaktomas/fingerprint-attendance/internal/config"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
	"github.com/kozaktomas/fingerprint-attendance/internal/metrics"
	"github.com/kozaktomas/fingerprint-attendance/internal/sensor"
	"github.com/kozaktomas/fingerprint-attendance/internal/station"

	// Storage backends register themselves with the database package.
	_ "github.com/kozaktomas/fingerprint-attendance/internal/database/mariadb"
	_ "github.com/kozaktomas/fingerprint-attendance/internal/database/postgres"
	_ "github.com/kozaktomas/fingerprint-attendance/internal/database/sqlite"
)

// app holds everything a command needs for one invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   database.Store
	metrics *metrics.Metrics
	station *station.Station
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp loads the configuration, opens and migrates the store and wires
// the station to the serial sensor.
func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Station.Location()
	if err != nil {
		return nil, err
	}

	store, err := database.OpenAndMigrate(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	st, err := station.New(station.Options{
		Opener:   sensor.NewOpener(&cfg.Device),
		Store:    store,
		Password: cfg.Device.Password,
		Capturer: fingerprint.Capturer{
			PollInterval: cfg.Device.PollInterval,
			Timeout:      cfg.Device.CaptureTimeout,
			RemoveDelay:  cfg.Device.RemoveDelay,
			Prompter:     newSpinnerPrompter(os.Stderr),
		},
		Threshold: cfg.Matching.Threshold,
		Location:  loc,
		Logger:    logger,
		Metrics:   m,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Debug("station ready", "database", cfg.Database.Driver, "port", cfg.Device.Port)
	return &app{cfg: cfg, logger: logger, store: store, metrics: m, station: st}, nil
}

// Close flushes metrics and closes the store.
func (a *app) Close() {
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		a.logger.Warn("failed to write metrics", "path", a.cfg.Metrics.TextfilePath, "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}
