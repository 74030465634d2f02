package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated run-history store in t.TempDir() with the
// same write/read pool split the server uses, and closes both pools on
// cleanup. Tests that don't care about the split can use writeDB for
// everything.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "run_history.sqlite")

	writeDB, readDB, err := OpenSQLitePair(path, 2)
	if err != nil {
		t.Fatalf("open run-history sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := RunMigrations(writeDB); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	return writeDB, readDB
}
