// package database provides connection management for the event store.
package database

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB wraps a postgresql connection pool and GORM instance. When no database
// URL is configured it falls back to a local sqlite file and Pool stays nil
// (raw-SQL consumers must degrade gracefully).
type DB struct {
	Pool *pgxpool.Pool
	GORM *gorm.DB
}

// New opens the event store. An empty databaseURL selects the embedded
// sqlite fallback at sqlitePath.
func New(ctx context.Context, databaseURL, sqlitePath string) (*DB, error) {
	if databaseURL == "" {
		gormDB, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &DB{GORM: gormDB}, nil
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return &DB{
		Pool: pool,
		GORM: gormDB,
	}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is reachable. The sqlite fallback is always
// considered reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return nil
	}
	return db.Pool.Ping(ctx)
}
