// Package mariadb provides the MariaDB/MySQL storage backend.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kozaktomas/fingerprint-attendance/internal/config"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/database/mariadb/migrations"
	"github.com/kozaktomas/fingerprint-attendance/internal/database/sqlstore"
)

// DriverName is the config value selecting this backend.
const DriverName = "mysql"

// duplicateEntry is ER_DUP_ENTRY.
const duplicateEntry = 1062

const dialTimeout = 10 * time.Second

func init() {
	database.RegisterDriver(DriverName, func(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
		return Open(ctx, cfg)
	})
}

// Dialect is the MariaDB flavour of SQL used by the shared store.
var Dialect = sqlstore.Dialect{
	Name: DriverName,
	IsUniqueViolation: func(err error) bool {
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == duplicateEntry
	},
}

// ParseDSN validates dsn and forces the options the store relies on.
func ParseDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", errors.New("MariaDB DSN is required")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse MariaDB DSN: %w", err)
	}
	cfg.MultiStatements = false
	if cfg.Timeout == 0 {
		cfg.Timeout = dialTimeout
	}
	return cfg.FormatDSN(), nil
}

// Open creates a MariaDB connection pool. Migrations are not applied.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sqlstore.Store, error) {
	if cfg == nil {
		return nil, errors.New("MariaDB DSN is required")
	}
	dsn, err := ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return sqlstore.New(db, Dialect, migrations.FS), nil
}
