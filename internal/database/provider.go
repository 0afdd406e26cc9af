package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kozaktomas/fingerprint-attendance/internal/config"
)

// OpenFunc opens a backend described by cfg. The returned store has not been migrated.
type OpenFunc func(ctx context.Context, cfg *config.DatabaseConfig) (Store, error)

var (
	drivers   = make(map[string]OpenFunc)
	driversMu sync.RWMutex
)

// RegisterDriver registers a storage backend under a driver name.
// This is called by the backend packages from init to avoid import cycles.
func RegisterDriver(name string, open OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if open == nil {
		panic("database: RegisterDriver open func is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("database: RegisterDriver called twice for driver " + name)
	}
	drivers[name] = open
}

// Drivers returns the sorted names of registered backends.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	name := strings.ToLower(cfg.Driver)

	driversMu.RLock()
	open, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("database driver %q not registered (have %s)", cfg.Driver, strings.Join(Drivers(), ", "))
	}

	store, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", name, err)
	}
	return store, nil
}

// OpenAndMigrate opens the configured backend and applies pending migrations.
func OpenAndMigrate(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	store, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}
