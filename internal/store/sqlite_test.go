// ABOUTME: Tests for store open/close behavior
// ABOUTME: Covers file creation, directory creation, and repeated opens of one path

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestNewSQLiteStore_SchemaVersionAfterOpen(t *testing.T) {
	store := setupTestStore(t)

	version, err := schemaVersion(store.db)
	if err != nil {
		t.Fatalf("schemaVersion failed: %v", err)
	}
	if want := latestVersion(migrations); version != want {
		t.Errorf("schema version after open: got %d, want %d", version, want)
	}
}

func TestNewSQLiteStore_ReopenIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	first, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// A second open migrates independently and must apply nothing.
	second, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer second.Close()

	var versionRows int
	err = second.db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&versionRows)
	if err != nil {
		t.Fatalf("counting schema_version rows: %v", err)
	}
	if versionRows != len(migrations) {
		t.Errorf("schema_version rows after reopen: got %d, want %d", versionRows, len(migrations))
	}
}

func TestNewSQLiteStore_ConcurrentHandles(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	a, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	defer a.Close()

	b, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer b.Close()

	// Writes through one handle are visible through the other.
	ctx := context.Background()
	session := &Session{Prompt: "shared", AgentsRequested: `{}`}
	if err := a.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := b.GetSession(ctx, session.ID); err != nil {
		t.Errorf("GetSession through second handle failed: %v", err)
	}
}
