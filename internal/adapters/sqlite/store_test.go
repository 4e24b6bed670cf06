package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/rover/internal/adapters/sqlite"
	"github.com/aretw0/rover/pkg/ports/tests"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "layouts.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	tests.LayoutStoreContractTest(t, store)
}

func TestSQLiteStore_CorruptTimestamp(t *testing.T) {
	// A row whose taken column cannot be parsed must surface as a load
	// error, not as a snapshot with a zero timestamp.
	path := filepath.Join(t.TempDir(), "layouts.db")
	store, err := sqlite.New(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(
		`INSERT INTO layouts (routine, taken, nodes) VALUES (?, ?, ?)`,
		"corrupt", "yesterday-ish", "[]",
	); err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}

	_, err = store.Load(context.Background(), "corrupt")
	if err == nil {
		t.Fatal("Load() should fail on an unparsable timestamp")
	}
	if !strings.Contains(err.Error(), "timestamp") {
		t.Errorf("Load() error = %v, want timestamp parse failure", err)
	}
}
