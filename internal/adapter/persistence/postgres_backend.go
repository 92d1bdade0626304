package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/purochile/pcbot/internal/ports"
)

const createCollectionsTable = `
	CREATE TABLE IF NOT EXISTS bot_collections (
		name       TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresBackend stores collections as JSONB rows in PostgreSQL
type PostgresBackend struct {
	db *sql.DB
}

var _ ports.RecordBackend = (*PostgresBackend)(nil)

// OpenPostgres connects to databaseURL and ensures the schema exists
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	b := NewPostgresBackend(db)
	if err := b.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackend wraps an open database handle
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the collections table if needed
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, createCollectionsTable); err != nil {
		return fmt.Errorf("failed to create collections table: %w", err)
	}
	return nil
}

// Read returns the stored payload, or nil if the row does not exist
func (b *PostgresBackend) Read(ctx context.Context, collection string) ([]byte, error) {
	query := `SELECT payload FROM bot_collections WHERE name = $1`

	var payload []byte
	err := b.db.QueryRowContext(ctx, query, collection).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}
	return payload, nil
}

// Write upserts the payload in a single statement. The payload is sent as
// text because lib/pq encodes []byte as bytea.
func (b *PostgresBackend) Write(ctx context.Context, collection string, data []byte) error {
	query := `
		INSERT INTO bot_collections (name, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	if _, err := b.db.ExecContext(ctx, query, collection, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	return nil
}

// Close closes the database handle
func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
