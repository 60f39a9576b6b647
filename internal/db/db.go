package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool            *pgxpool.Pool
	startingBalance int64
}

// New connects to PostgreSQL and checks the connection. Accounts read before their first
// write start at startingBalance.
func New(ctx context.Context, databaseURL string, startingBalance int64) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if poolConfig.MaxConns < 4 {
		poolConfig.MaxConns = 4
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool, startingBalance: startingBalance}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// Pool exposes the underlying pool for health checks.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// RunMigrations creates the ledger tables if they do not exist.
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			earned BIGINT NOT NULL DEFAULT 0,
			balance BIGINT NOT NULL DEFAULT 0,
			picross_count BIGINT NOT NULL DEFAULT 0,
			submitted_channels TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS guilds (
			id TEXT PRIMARY KEY,
			earned BIGINT NOT NULL DEFAULT 0,
			shop_channel_id TEXT,
			shop_message_id TEXT
		);
	`)
	return err
}
