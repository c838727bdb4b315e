package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xtrntr/tradedesk/internal/models"
	"github.com/xtrntr/tradedesk/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
	name       TEXT PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// DB wraps a PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB initializes a new database connection pool
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close(ctx context.Context) error {
	db.Pool.Close()
	return nil
}

// Migrate creates the preferences table if needed
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// LoadSnapshot returns the named record, or nil if it does not exist
func (db *DB) LoadSnapshot(ctx context.Context, name string) (*models.Snapshot, error) {
	var data []byte
	err := db.Pool.QueryRow(ctx,
		"SELECT snapshot FROM preferences WHERE name = $1", name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap, err := store.DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveSnapshot inserts or replaces the named record
func (db *DB) SaveSnapshot(ctx context.Context, name string, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO preferences (name, snapshot, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (name) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = NOW()`,
		name, data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot removes the named record
func (db *DB) DeleteSnapshot(ctx context.Context, name string) error {
	if _, err := db.Pool.Exec(ctx, "DELETE FROM preferences WHERE name = $1", name); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// ListSnapshotNames returns every stored record name, oldest update first
func (db *DB) ListSnapshotNames(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, "SELECT name FROM preferences ORDER BY updated_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Persister binds one record name to the database
func (db *DB) Persister(name string) store.Persister {
	return &postgresPersister{db: db, name: name}
}

type postgresPersister struct {
	db   *DB
	name string
}

func (p *postgresPersister) Load(ctx context.Context) (*models.Snapshot, error) {
	return p.db.LoadSnapshot(ctx, p.name)
}

func (p *postgresPersister) Save(ctx context.Context, snap models.Snapshot) error {
	return p.db.SaveSnapshot(ctx, p.name, snap)
}
