package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/soyeahso/assistloop/internal/logging"
)

// DB wraps a SQLite connection with migration support and implements Store
// on the config_parameters table.
type DB struct {
	sql  *sql.DB
	path string
	log  *logging.Logger
}

// Open opens (or creates) a SQLite database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// One connection serializes writers, avoiding SQLITE_BUSY, and keeps a
	// ":memory:" database from being split across pooled connections.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	db := &DB{sql: sqlDB, path: path, log: log.Sub("store")}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	db.log.Info().Str("path", path).Msg("database opened")
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.log.Info().Msg("closing database")
	return db.sql.Close()
}

// Path returns the file the database was opened from.
func (db *DB) Path() string { return db.path }

func (db *DB) Lookup(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := db.sql.QueryRowContext(ctx, "SELECT value FROM config_parameters WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapClosed(fmt.Errorf("reading %s: %w", key, err))
	}
	return val, true, nil
}

func (db *DB) Set(ctx context.Context, key, value string) error {
	_, err := db.sql.ExecContext(ctx, `
		INSERT INTO config_parameters (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value)
	if err != nil {
		return wrapClosed(fmt.Errorf("writing %s: %w", key, err))
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.sql.ExecContext(ctx, "DELETE FROM config_parameters WHERE key = ?", key); err != nil {
		return wrapClosed(fmt.Errorf("deleting %s: %w", key, err))
	}
	return nil
}

func (db *DB) List(ctx context.Context, prefix string) ([]Param, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT key, value FROM config_parameters WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		likePrefix(prefix))
	if err != nil {
		return nil, wrapClosed(fmt.Errorf("listing parameters: %w", err))
	}
	defer rows.Close()

	var out []Param
	for rows.Next() {
		var p Param
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (db *DB) migrate() error {
	if _, err := db.sql.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := db.isMigrationApplied(m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := db.sql.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func (db *DB) isMigrationApplied(version int) (bool, error) {
	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking migration %d: %w", version, err)
	}
	return count > 0, nil
}

// wrapClosed maps database/sql's closed-pool error onto ErrClosed.
func wrapClosed(err error) error {
	if strings.Contains(err.Error(), "sql: database is closed") {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}
