// Package history is the durable, append-only log of per-run outcome
// records. One RunMetric is appended per completed agent session; records
// are never rewritten, and the tuner only ever reads a bounded recent window
// per agent type.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sgrayson/netreach/internal/models"
)

// Store persists run metrics as JSON lines, one record per line. The file is
// human-inspectable and safe to repair by hand. Single-writer: concurrent
// processes appending to the same file are unsupported.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path. The file is
// created on first Record.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Record appends a metric to the log. The record is written with a single
// append, so a failure never damages previously recorded metrics.
func (s *Store) Record(m models.RunMetric) error {
	if m.AgentType == "" {
		return &models.StorageError{Op: "append", Path: s.path, Err: fmt.Errorf("metric has no agent_type")}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return &models.StorageError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return &models.StorageError{Op: "append", Path: s.path, Err: err}
	}

	// A torn line left by an interrupted append must not swallow this
	// record: start it on a fresh line.
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return &models.StorageError{Op: "append", Path: s.path, Err: err}
	}
	if st.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, st.Size()-1); err != nil {
			f.Close()
			return &models.StorageError{Op: "append", Path: s.path, Err: err}
		}
		if last[0] != '\n' {
			data = append([]byte{'\n'}, data...)
		}
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return &models.StorageError{Op: "append", Path: s.path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &models.StorageError{Op: "append", Path: s.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &models.StorageError{Op: "sync", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &models.StorageError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

// Recent returns the most recent limit records for the agent type in
// chronological order, newest last. An unknown agent type or a missing log
// file yields an empty slice, not an error.
func (s *Store) Recent(agentType string, limit int) ([]models.RunMetric, error) {
	all, err := s.All(agentType)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// All returns every record for the agent type in chronological order.
func (s *Store) All(agentType string) ([]models.RunMetric, error) {
	var out []models.RunMetric
	err := s.scan(func(m models.RunMetric) {
		if m.AgentType == agentType {
			out = append(out, m)
		}
	})
	return out, err
}

// AgentTypes returns the distinct agent types present in the log, in first
// appearance order.
func (s *Store) AgentTypes() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	err := s.scan(func(m models.RunMetric) {
		if !seen[m.AgentType] {
			seen[m.AgentType] = true
			out = append(out, m.AgentType)
		}
	})
	return out, err
}

func (s *Store) scan(fn func(models.RunMetric)) error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &models.StorageError{Op: "read", Path: s.path, Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var m models.RunMetric
		if err := json.Unmarshal(line, &m); err != nil {
			// A torn trailing line from an interrupted append is not fatal;
			// every complete record before it is still readable.
			continue
		}
		fn(m)
	}
	if err := sc.Err(); err != nil {
		return &models.StorageError{Op: "read", Path: s.path, Err: err}
	}
	return nil
}
