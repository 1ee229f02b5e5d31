package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/veridoc-app/veridoc/internal/repo"
)

func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repo.Open(filepath.Join(t.TempDir(), "veridoc_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repo.ApplyMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
