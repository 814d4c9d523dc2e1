package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/foodtracker/backend/internal/domain"
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 10

	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 2

	// DefaultConnMaxLifetime is the default maximum lifetime of a connection
	DefaultConnMaxLifetime = 5 * time.Minute
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const selectValueSQL = `SELECT value FROM cache_entries WHERE key = $1`

const upsertValueSQL = `INSERT INTO cache_entries (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// PostgresCache stores values in a single cache_entries table. Rows never
// expire; staleness is decided by the caller.
type PostgresCache struct {
	db     *sqlx.DB
	prefix string
}

// NewPostgresCache connects to PostgreSQL using dsn, verifies the
// connection and creates the cache table if needed
func NewPostgresCache(dsn, prefix string) (*PostgresCache, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	c := NewPostgresCacheFromDB(db, prefix)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := c.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewPostgresCacheFromDB wraps an existing connection
func NewPostgresCacheFromDB(db *sqlx.DB, prefix string) *PostgresCache {
	return &PostgresCache{db: db, prefix: prefix}
}

// EnsureSchema creates the cache table if it does not exist
func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Get retrieves a value from the cache table
func (c *PostgresCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.GetContext(ctx, &value, selectValueSQL, c.prefix+key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}
	return value, nil
}

// Set inserts or replaces a value in the cache table
func (c *PostgresCache) Set(ctx context.Context, key string, value []byte) error {
	if _, err := c.db.ExecContext(ctx, upsertValueSQL, c.prefix+key, value); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresCache) Close() error {
	return c.db.Close()
}
