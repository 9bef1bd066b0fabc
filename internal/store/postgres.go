package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// PostgresStore reads and writes the host CMS's own parameter table
// (ir_config_parameter by default) so settings are shared with the CMS.
type PostgresStore struct {
	db    *sql.DB
	table string // quoted identifier
}

// PostgresConfig tunes the connection pool.
type PostgresConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultPostgresConfig returns pool settings sized for an admin service.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn, table string, cfg PostgresConfig) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgresStore(db, table), nil
}

// NewPostgresStore wraps an open *sql.DB. An empty table means
// ir_config_parameter.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	if table == "" {
		table = "ir_config_parameter"
	}
	return &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	var val sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM "+s.table+" WHERE key = $1", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapClosed(fmt.Errorf("reading %s: %w", key, err))
	}
	// a NULL value is treated as unset, like the CMS does
	if !val.Valid {
		return "", false, nil
	}
	return val.String, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.table+" (key, value, create_date, write_date) "+
			"VALUES ($1, $2, now() AT TIME ZONE 'UTC', now() AT TIME ZONE 'UTC') "+
			"ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, write_date = EXCLUDED.write_date",
		key, value)
	if err != nil {
		return wrapClosed(fmt.Errorf("writing %s: %w", key, err))
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE key = $1", key); err != nil {
		return wrapClosed(fmt.Errorf("deleting %s: %w", key, err))
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]Param, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM "+s.table+` WHERE key LIKE $1 ESCAPE '\' AND value IS NOT NULL ORDER BY key`,
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
