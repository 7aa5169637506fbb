package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "tally-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("GetValues on empty store returns no keys", func(t *testing.T) {
		values, err := store.GetValues(ctx, "cashReceived", "items")
		if err != nil {
			t.Fatalf("GetValues failed: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("Expected no values, got %v", values)
		}
	})

	t.Run("SetValues then GetValues", func(t *testing.T) {
		err := store.SetValues(ctx, map[string]string{
			"cashReceived": "20",
			"items":        `[{"name":"pen","quantity":3,"unitPrice":2,"lineTotal":6}]`,
		})
		if err != nil {
			t.Fatalf("SetValues failed: %v", err)
		}

		values, err := store.GetValues(ctx, "cashReceived", "items", "missing")
		if err != nil {
			t.Fatalf("GetValues failed: %v", err)
		}
		if values["cashReceived"] != "20" {
			t.Errorf("cashReceived mismatch: got %q, want %q", values["cashReceived"], "20")
		}
		if _, ok := values["missing"]; ok {
			t.Error("Expected missing key to be absent")
		}
		if len(values) != 2 {
			t.Errorf("Expected 2 values, got %d", len(values))
		}
	})

	t.Run("SetValues overwrites existing keys", func(t *testing.T) {
		if err := store.SetValues(ctx, map[string]string{"cashReceived": "50"}); err != nil {
			t.Fatalf("SetValues failed: %v", err)
		}

		values, err := store.GetValues(ctx, "cashReceived", "items")
		if err != nil {
			t.Fatalf("GetValues failed: %v", err)
		}
		if values["cashReceived"] != "50" {
			t.Errorf("cashReceived mismatch: got %q, want %q", values["cashReceived"], "50")
		}
		if values["items"] == "" {
			t.Error("Expected untouched key to survive the overwrite")
		}
	})

	t.Run("SetValues with no values is a no-op", func(t *testing.T) {
		if err := store.SetValues(ctx, nil); err != nil {
			t.Errorf("SetValues(nil) failed: %v", err)
		}
	})

	t.Run("GetValues with no keys", func(t *testing.T) {
		values, err := store.GetValues(ctx)
		if err != nil {
			t.Fatalf("GetValues failed: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("Expected empty map, got %v", values)
		}
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.SetValues(ctx, map[string]string{"language": "true"}); err != nil {
		t.Fatalf("SetValues failed: %v", err)
	}
	store.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	values, err := reopened.GetValues(ctx, "language")
	if err != nil {
		t.Fatalf("GetValues failed: %v", err)
	}
	if values["language"] != "true" {
		t.Errorf("language mismatch after reopen: got %q, want %q", values["language"], "true")
	}
}

func TestSQLiteStoreClosed(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	store.Close()

	if err := store.SetValues(context.Background(), map[string]string{"k": "v"}); err == nil {
		t.Error("Expected error writing to a closed store, got nil")
	}
}
