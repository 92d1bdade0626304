package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/purochile/pcbot/internal/ports"
)

// collectionRow is one persisted collection
type collectionRow struct {
	Name      string `gorm:"primaryKey"`
	Payload   string `gorm:"not null"`
	UpdatedAt string
}

func (collectionRow) TableName() string { return "collections" }

// SQLiteBackend stores collections as rows of a SQLite table through gorm
type SQLiteBackend struct {
	db *gorm.DB
}

var _ ports.RecordBackend = (*SQLiteBackend)(nil)

// OpenSQLite opens (and migrates) the SQLite database at dsn
func OpenSQLite(dsn string) (*SQLiteBackend, error) {
	if err := ensureSQLiteDirectory(dsn); err != nil {
		return nil, err
	}
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	return NewSQLiteBackend(db)
}

// NewSQLiteBackend wraps an open gorm handle and migrates the schema
func NewSQLiteBackend(db *gorm.DB) (*SQLiteBackend, error) {
	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		return nil, fmt.Errorf("migrate collections table: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Read returns the stored payload, or nil if the row does not exist
func (b *SQLiteBackend) Read(ctx context.Context, collection string) ([]byte, error) {
	var row collectionRow
	err := b.db.WithContext(ctx).Where("name = ?", collection).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	return []byte(row.Payload), nil
}

// Write upserts the payload in a single statement
func (b *SQLiteBackend) Write(ctx context.Context, collection string, data []byte) error {
	row := collectionRow{
		Name:      collection,
		Payload:   string(data),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"payload":    row.Payload,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", collection, err)
	}
	return nil
}

// Close closes the underlying connection pool
func (b *SQLiteBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureSQLiteDirectory(dsn string) error {
	candidate := strings.TrimSpace(dsn)
	if candidate == "" || strings.Contains(candidate, ":memory:") {
		return nil
	}
	candidate = strings.TrimPrefix(candidate, "file:")
	if idx := strings.Index(candidate, "?"); idx >= 0 {
		candidate = candidate[:idx]
	}
	dir := filepath.Dir(candidate)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory %q: %w", dir, err)
	}
	return nil
}
