package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sgrayson/netreach/internal/ledger"
)

func TestMarkAndSeen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messaged_ledger.json")

	l, err := ledger.Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if l.Seen("urn:li:123") {
		t.Error("fresh ledger should be empty")
	}

	if err := l.Mark("urn:li:123"); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	if !l.Seen("urn:li:123") {
		t.Error("expected key to be seen after Mark")
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", l.Len())
	}

	// Marks persist across reopen.
	reopened, err := ledger.Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if !reopened.Seen("urn:li:123") {
		t.Error("expected persisted key after reopen")
	}
}

func TestCorruptLedgerStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messaged_ledger.json")
	if err := os.WriteFile(path, []byte("][junk"), 0644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	l, err := ledger.Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty ledger, got %d entries", l.Len())
	}

	// A later Mark repairs the file.
	if err := l.Mark("urn:li:456"); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}
	reopened, err := ledger.Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if !reopened.Seen("urn:li:456") {
		t.Error("expected repaired ledger to hold the new key")
	}
}
