package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sgrayson/netreach/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.DataDir != "data" {
		t.Errorf("expected default data_dir 'data', got %s", cfg.DataDir)
	}
	if cfg.Tuner.Window != 5 {
		t.Errorf("expected default window 5, got %d", cfg.Tuner.Window)
	}
	if cfg.Tuner.MinRuns != 2 {
		t.Errorf("expected default min_runs 2, got %d", cfg.Tuner.MinRuns)
	}
	if cfg.Tuner.LowThreshold != 0.7 {
		t.Errorf("expected default low_threshold 0.7, got %f", cfg.Tuner.LowThreshold)
	}
	if cfg.Tuner.HighThreshold != 0.95 {
		t.Errorf("expected default high_threshold 0.95, got %f", cfg.Tuner.HighThreshold)
	}
}

func TestLoad(t *testing.T) {
	yaml := `data_dir: /var/lib/netreach
history_file: runs.jsonl
log_level: debug
tuner:
  window: 8
  min_runs: 3
  low_threshold: 0.6
  high_threshold: 0.9
`
	tmpFile := filepath.Join(t.TempDir(), "netreach.yaml")
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	cfg, err := config.Load(tmpFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDir != "/var/lib/netreach" {
		t.Errorf("expected data_dir /var/lib/netreach, got %s", cfg.DataDir)
	}
	if cfg.HistoryFile != "runs.jsonl" {
		t.Errorf("expected history_file runs.jsonl, got %s", cfg.HistoryFile)
	}
	// Unset fields keep their defaults.
	if cfg.ParamsFile != "agent_params.json" {
		t.Errorf("expected default params_file, got %s", cfg.ParamsFile)
	}
	if cfg.Tuner.Window != 8 {
		t.Errorf("expected window 8, got %d", cfg.Tuner.Window)
	}
	if cfg.Tuner.LowThreshold != 0.6 {
		t.Errorf("expected low_threshold 0.6, got %f", cfg.Tuner.LowThreshold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("expected defaults, got data_dir %s", cfg.DataDir)
	}

	// An explicitly named missing file is an error.
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicit missing file")
	}
}

func TestLoadRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"low above high", "tuner:\n  low_threshold: 0.9\n  high_threshold: 0.8\n"},
		{"low out of range", "tuner:\n  low_threshold: 1.5\n"},
		{"min_runs above window", "tuner:\n  window: 3\n  min_runs: 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "netreach.yaml")
			if err := os.WriteFile(tmpFile, []byte(tt.yaml), 0644); err != nil {
				t.Fatalf("writing temp file: %v", err)
			}
			if _, err := config.Load(tmpFile); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPathResolution(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "/srv/netreach"

	if got := cfg.HistoryPath(); got != "/srv/netreach/agent_history.jsonl" {
		t.Errorf("unexpected history path %s", got)
	}
	if got := cfg.LedgerPath("messaged"); got != "/srv/netreach/messaged_ledger.json" {
		t.Errorf("unexpected ledger path %s", got)
	}

	cfg.ParamsFile = "/etc/netreach/params.json"
	if got := cfg.ParamsPath(); got != "/etc/netreach/params.json" {
		t.Errorf("absolute path should pass through, got %s", got)
	}
}
