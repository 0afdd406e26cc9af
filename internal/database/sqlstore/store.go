// Package sqlstore implements database.Store on top of database/sql. Backend
// packages supply the connection, a Dialect and their embedded migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

// Store is a SQL-backed identity and attendance repository.
type Store struct {
	db         *sql.DB
	dialect    Dialect
	migrations fs.FS
}

var _ database.Store = (*Store)(nil)

// New wraps an open connection pool. migrations holds the backend's *.sql files at its root.
func New(db *sql.DB, dialect Dialect, migrations fs.FS) *Store {
	return &Store{db: db, dialect: dialect, migrations: migrations}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// insert runs an INSERT and returns the generated id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect.Returning {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Put inserts a new identity.
func (s *Store) Put(ctx context.Context, name string, tpl fingerprint.Template) (int64, error) {
	encoded, err := fingerprint.Encode(tpl)
	if err != nil {
		return 0, fmt.Errorf("encode template: %w", err)
	}
	id, err := s.insert(ctx,
		"INSERT INTO identities (name, template, created_at) VALUES (?, ?, ?)",
		name, encoded, toMillis(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert identity: %w", err)
	}
	return id, nil
}

// List returns id and name of every identity in insertion order.
func (s *Store) List(ctx context.Context) ([]database.IdentitySummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM identities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var out []database.IdentitySummary
	for rows.Next() {
		var summary database.IdentitySummary
		if err := rows.Scan(&summary.ID, &summary.Name); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

// GetAll returns every identity with its decoded template, ordered by id.
func (s *Store) GetAll(ctx context.Context) ([]database.Identity, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, template, created_at FROM identities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("get identities: %w", err)
	}
	defer rows.Close()

	var out []database.Identity
	for rows.Next() {
		var (
			identity  database.Identity
			encoded   []byte
			createdAt int64
		)
		if err := rows.Scan(&identity.ID, &identity.Name, &encoded, &createdAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.Template, err = fingerprint.Decode(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode template of identity %d: %w", identity.ID, err)
		}
		identity.CreatedAt = fromMillis(createdAt)
		out = append(out, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

// firstIDByName returns the lowest identity id carrying name.
func (s *Store) firstIDByName(ctx context.Context, tx *sql.Tx, name string) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		s.dialect.Rebind("SELECT id FROM identities WHERE name = ? ORDER BY id LIMIT 1"), name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find identity %q: %w", name, err)
	}
	return id, true, nil
}

// byName runs fn on the first identity with name inside a transaction.
func (s *Store) byName(ctx context.Context, name string, fn func(tx *sql.Tx, id int64) error) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, found, err := s.firstIDByName(ctx, tx, name)
	if err != nil || !found {
		return false, err
	}
	if err := fn(tx, id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// UpdateTemplate replaces the template of the first identity with name.
func (s *Store) UpdateTemplate(ctx context.Context, name string, tpl fingerprint.Template) (bool, error) {
	encoded, err := fingerprint.Encode(tpl)
	if err != nil {
		return false, fmt.Errorf("encode template: %w", err)
	}
	return s.byName(ctx, name, func(tx *sql.Tx, id int64) error {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind("UPDATE identities SET template = ? WHERE id = ?"), encoded, id); err != nil {
			return fmt.Errorf("update template of identity %d: %w", id, err)
		}
		return nil
	})
}

// Delete removes the first identity with name. Its attendance sessions are kept.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	return s.byName(ctx, name, func(tx *sql.Tx, id int64) error {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind("DELETE FROM identities WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete identity %d: %w", id, err)
		}
		return nil
	})
}

// FindOpen returns the open session of identityID on date, nil if none.
func (s *Store) FindOpen(ctx context.Context, identityID int64, date string) (*database.AttendanceSession, error) {
	query := s.dialect.Rebind(`
		SELECT id, identity_id, date, time_in
		FROM attendance_sessions
		WHERE identity_id = ? AND date = ? AND time_out IS NULL
		ORDER BY id
		LIMIT 1
	`)

	var session database.AttendanceSession
	err := s.db.QueryRowContext(ctx, query, identityID, date).Scan(
		&session.ID,
		&session.IdentityID,
		&session.Date,
		&session.TimeIn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open session: %w", err)
	}
	return &session, nil
}

// OpenSession inserts an open session.
func (s *Store) OpenSession(ctx context.Context, identityID int64, date, timeIn string) (int64, error) {
	id, err := s.insert(ctx,
		"INSERT INTO attendance_sessions (identity_id, date, time_in) VALUES (?, ?, ?)",
		identityID, date, timeIn,
	)
	if s.dialect.uniqueViolation(err) {
		return 0, database.ErrSessionAlreadyOpen
	}
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// CloseSession records the check-out time of an open session.
func (s *Store) CloseSession(ctx context.Context, sessionID int64, timeOut string) error {
	res, err := s.db.ExecContext(ctx,
		s.dialect.Rebind("UPDATE attendance_sessions SET time_out = ? WHERE id = ? AND time_out IS NULL"),
		timeOut, sessionID,
	)
	if err != nil {
		return fmt.Errorf("close session %d: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close session %d: %w", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("close session %d: %w", sessionID, database.ErrSessionNotOpen)
	}
	return nil
}

// ListByDate returns the sessions of date ordered by check-in time.
func (s *Store) ListByDate(ctx context.Context, date string) ([]database.SessionRecord, error) {
	query := s.dialect.Rebind(`
		SELECT s.id, s.identity_id, s.date, s.time_in, s.time_out, i.name
		FROM attendance_sessions s
		LEFT JOIN identities i ON i.id = s.identity_id
		WHERE s.date = ?
		ORDER BY s.time_in, s.id
	`)

	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []database.SessionRecord
	for rows.Next() {
		var (
			record  database.SessionRecord
			timeOut sql.NullString
			name    sql.NullString
		)
		if err := rows.Scan(
			&record.ID,
			&record.IdentityID,
			&record.Date,
			&record.TimeIn,
			&timeOut,
			&name,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if timeOut.Valid {
			record.TimeOut = &timeOut.String
		}
		record.Name = name.String
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
