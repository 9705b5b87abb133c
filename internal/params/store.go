// Package params holds the current tunable configuration per agent type,
// addressed by dotted key path ("outreach_agent.scroll_wait"). Values are
// clamped into schema bounds on every write and persisted immediately, so a
// crash between calls loses at most the last unwritten update.
package params

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sgrayson/netreach/internal/models"
)

// Provider is the read surface agents consume before each gated action.
// Implementations never fail a lookup; an unknown key yields the given
// default.
type Provider interface {
	Get(key string, def float64) float64
}

type paramFile struct {
	Params       map[string]map[string]float64 `json:"params"`
	TunedThrough map[string]time.Time          `json:"tuned_through,omitempty"`
}

// FileStore is a Provider backed by a single JSON file. Single-writer: two
// processes mutating the same file are unsupported.
type FileStore struct {
	path   string
	schema models.Schema
	state  paramFile
}

// Open loads the parameter file, seeding from schema defaults when the file
// does not exist. A file that cannot be parsed, or that contains keys
// outside the schema, returns a usable store operating on defaults together
// with a ConfigCorruptError; callers log the warning and continue.
func Open(path string, schema models.Schema) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		schema: schema,
		state: paramFile{
			Params:       make(map[string]map[string]float64),
			TunedThrough: make(map[string]time.Time),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, &models.StorageError{Op: "read", Path: path, Err: err}
	}

	var loaded paramFile
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s, &models.ConfigCorruptError{Path: path, Err: err}
	}
	for agentType, vals := range loaded.Params {
		for name := range vals {
			if _, ok := schema.Spec(agentType, name); !ok {
				return s, &models.ConfigCorruptError{
					Path: path,
					Err:  fmt.Errorf("unknown parameter %s.%s", agentType, name),
				}
			}
		}
	}

	if loaded.Params != nil {
		s.state.Params = loaded.Params
	}
	if loaded.TunedThrough != nil {
		s.state.TunedThrough = loaded.TunedThrough
	}
	// Clamp loaded values in case bounds tightened since they were written.
	for agentType, vals := range s.state.Params {
		for name, v := range vals {
			spec, _ := schema.Spec(agentType, name)
			vals[name] = spec.Clamp(v)
		}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the current value for a dotted key. Falls back to the schema
// default, then to def for keys outside the schema. Never fails.
func (s *FileStore) Get(key string, def float64) float64 {
	agentType, name, err := splitKey(key)
	if err != nil {
		return def
	}
	if vals, ok := s.state.Params[agentType]; ok {
		if v, ok := vals[name]; ok {
			return v
		}
	}
	if spec, ok := s.schema.Spec(agentType, name); ok {
		return spec.Default
	}
	return def
}

// Set clamps value into the key's schema bounds and writes through to disk
// immediately. Keys outside the schema are rejected.
func (s *FileStore) Set(key string, value float64) error {
	agentType, name, err := splitKey(key)
	if err != nil {
		return &models.ConfigCorruptError{Path: s.path, Err: err}
	}
	spec, ok := s.schema.Spec(agentType, name)
	if !ok {
		return &models.ConfigCorruptError{
			Path: s.path,
			Err:  fmt.Errorf("unknown parameter %s", key),
		}
	}

	if s.state.Params[agentType] == nil {
		s.state.Params[agentType] = make(map[string]float64)
	}
	s.state.Params[agentType][name] = spec.Clamp(value)
	return s.persist()
}

// Watermark returns the timestamp of the newest metric the tuner has already
// acted on for the agent type, zero if it has never tuned.
func (s *FileStore) Watermark(agentType string) time.Time {
	return s.state.TunedThrough[agentType]
}

// SetWatermark records the tuner's progress marker and persists.
func (s *FileStore) SetWatermark(agentType string, t time.Time) error {
	s.state.TunedThrough[agentType] = t
	return s.persist()
}

// Values returns the effective parameter values for an agent type: schema
// defaults overlaid with any stored overrides.
func (s *FileStore) Values(agentType string) map[string]float64 {
	a, ok := s.schema.Agents[agentType]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(a.Params))
	for _, p := range a.Params {
		out[p.Name] = p.Default
	}
	for name, v := range s.state.Params[agentType] {
		out[name] = v
	}
	return out
}

// persist rewrites the whole file through a temp file and rename, so an
// interrupted write leaves the previous file intact.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &models.StorageError{Op: "write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.StorageError{Op: "sync", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "close", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}

func splitKey(key string) (agentType, name string, err error) {
	agentType, name, ok := strings.Cut(key, ".")
	if !ok || agentType == "" || name == "" {
		return "", "", fmt.Errorf("key %q is not of the form agent_type.parameter", key)
	}
	return agentType, name, nil
}
