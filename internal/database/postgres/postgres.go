// Package postgres provides the PostgreSQL storage backend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/fingerprint-attendance/internal/config"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/database/postgres/migrations"
	"github.com/kozaktomas/fingerprint-attendance/internal/database/sqlstore"
	"github.com/lib/pq"
)

// DriverName is the config value selecting this backend.
const DriverName = "postgres"

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = pq.ErrorCode("23505")

func init() {
	database.RegisterDriver(DriverName, func(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
		return Open(ctx, cfg)
	})
}

// Dialect is the PostgreSQL flavour of SQL used by the shared store.
var Dialect = sqlstore.Dialect{
	Name:                 DriverName,
	NumberedPlaceholders: true,
	Returning:            true,
	IsUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
	},
}

// Open creates a PostgreSQL connection pool. Migrations are not applied.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sqlstore.Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Verify connection.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqlstore.New(db, Dialect, migrations.FS), nil
}
