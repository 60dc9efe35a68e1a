package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveStaleSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte(`{"completed": true, "success": true}`), 0644); err != nil {
		t.Fatalf("writing stale document: %v", err)
	}

	if err := removeStaleSnapshot(path); err != nil {
		t.Fatalf("removeStaleSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected stale document removed")
	}

	// absent document is fine
	if err := removeStaleSnapshot(path); err != nil {
		t.Errorf("missing document must not be an error: %v", err)
	}
}
