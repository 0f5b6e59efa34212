// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"carrental/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated SQLite database in a temp file. A file rather than
// :memory: keeps every pooled connection on the same data, which concurrent
// tests depend on.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)&_txlock=immediate", path)

	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
