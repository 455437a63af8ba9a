package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/silentcam/silentcam-go/internal/conf"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return fmt.Errorf("sqlite path is not configured")
	}
	return nil
}

// Open sets up the SQLite database connection and runs auto-migration.
// The schema is single-version: auto-migration establishes the key field and
// the captured_at index on first open, with no migration path across versions.
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	path := store.Settings.Output.SQLite.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	logLevel := gormlogger.Silent
	if store.Settings.Debug {
		logLevel = gormlogger.Info
	}

	// TranslateError maps the driver's UNIQUE constraint violation onto
	// gorm.ErrDuplicatedKey, which Save relies on for duplicate detection.
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.AutoMigrate(&Photo{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	store.DB = db
	getLogger().Info("photo store opened", "path", path)
	return nil
}
