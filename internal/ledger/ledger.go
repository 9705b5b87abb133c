// Package ledger tracks targets an agent has already acted on (profiles
// messaged, invites withdrawn, notifications handled), so reruns never
// repeat an action. One JSON file per ledger name, hand-editable.
package ledger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sgrayson/netreach/internal/models"
)

// Ledger is a durable set of acted-on keys with the time each was marked.
// Single-writer, like the other state files.
type Ledger struct {
	path    string
	entries map[string]time.Time
}

// Open loads a ledger file. A missing file starts empty; a corrupt file
// also starts empty after a warning, matching the degrade-and-continue
// policy of the parameter store.
func Open(path string, log *slog.Logger) (*Ledger, error) {
	l := &Ledger{path: path, entries: make(map[string]time.Time)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, &models.StorageError{Op: "read", Path: path, Err: err}
	}

	if err := json.Unmarshal(data, &l.entries); err != nil {
		if log != nil {
			log.Warn("ledger unreadable, starting empty", "path", path, "error", err)
		}
		l.entries = make(map[string]time.Time)
	}
	return l, nil
}

// Seen reports whether a key was already acted on.
func (l *Ledger) Seen(key string) bool {
	_, ok := l.entries[key]
	return ok
}

// Mark records a key as acted on now and persists immediately.
func (l *Ledger) Mark(key string) error {
	l.entries[key] = time.Now().UTC()
	return l.persist()
}

// Len returns the number of recorded keys.
func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) persist() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode", Path: l.path, Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return &models.StorageError{Op: "write", Path: l.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.StorageError{Op: "write", Path: l.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "close", Path: l.path, Err: err}
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "rename", Path: l.path, Err: err}
	}
	return nil
}
