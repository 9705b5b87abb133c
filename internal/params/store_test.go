package params_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sgrayson/netreach/internal/models"
	"github.com/sgrayson/netreach/internal/params"
)

func openStore(t *testing.T) (*params.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.json")
	s, err := params.Open(path, params.DefaultSchema())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, path
}

func TestGetFallsBackToSchemaDefault(t *testing.T) {
	s, _ := openStore(t)

	if v := s.Get("outreach_agent.scroll_wait", 0); v != 3000 {
		t.Errorf("expected schema default 3000, got %v", v)
	}
	if v := s.Get("outreach_agent.no_such_param", 42); v != 42 {
		t.Errorf("expected caller default 42, got %v", v)
	}
	if v := s.Get("malformed-key", 7); v != 7 {
		t.Errorf("expected caller default 7, got %v", v)
	}
}

func TestSetClampsIntoBounds(t *testing.T) {
	s, _ := openStore(t)

	tests := []struct {
		key   string
		value float64
		want  float64
	}{
		{"outreach_agent.scroll_wait", 4000, 4000},
		{"outreach_agent.scroll_wait", 100, 2000},    // below min
		{"outreach_agent.scroll_wait", 99999, 30000}, // above max
		{"outreach_agent.chat_open_retries", 2.4, 2}, // counts rounded
		{"notification_agent.invite_delay", 100, 15},
	}
	for _, tt := range tests {
		if err := s.Set(tt.key, tt.value); err != nil {
			t.Fatalf("Set(%s, %v) failed: %v", tt.key, tt.value, err)
		}
		if got := s.Get(tt.key, 0); got != tt.want {
			t.Errorf("Set(%s, %v): expected %v, got %v", tt.key, tt.value, tt.want, got)
		}
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	s, _ := openStore(t)

	var corrupt *models.ConfigCorruptError
	if err := s.Set("outreach_agent.no_such_param", 1); !errors.As(err, &corrupt) {
		t.Errorf("expected ConfigCorruptError for unknown parameter, got %v", err)
	}
	if err := s.Set("no-dot", 1); !errors.As(err, &corrupt) {
		t.Errorf("expected ConfigCorruptError for malformed key, got %v", err)
	}
}

func TestWriteThroughSurvivesReopen(t *testing.T) {
	s, path := openStore(t)

	if err := s.Set("outreach_agent.scroll_wait", 5000); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.SetWatermark("outreach_agent", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SetWatermark failed: %v", err)
	}

	reopened, err := params.Open(path, params.DefaultSchema())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if v := reopened.Get("outreach_agent.scroll_wait", 0); v != 5000 {
		t.Errorf("expected persisted 5000, got %v", v)
	}
	if wm := reopened.Watermark("outreach_agent"); wm.IsZero() {
		t.Error("expected persisted watermark")
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	s, err := params.Open(path, params.DefaultSchema())
	var corrupt *models.ConfigCorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected ConfigCorruptError, got %v", err)
	}
	if s == nil {
		t.Fatal("expected a usable store despite corruption")
	}

	// Defaults apply, and a corrective persist succeeds without manual repair.
	if v := s.Get("outreach_agent.scroll_wait", 0); v != 3000 {
		t.Errorf("expected default 3000, got %v", v)
	}
	if err := s.Set("outreach_agent.scroll_wait", 4000); err != nil {
		t.Fatalf("corrective Set failed: %v", err)
	}

	reopened, err := params.Open(path, params.DefaultSchema())
	if err != nil {
		t.Fatalf("reopen after corrective persist failed: %v", err)
	}
	if v := reopened.Get("outreach_agent.scroll_wait", 0); v != 4000 {
		t.Errorf("expected repaired value 4000, got %v", v)
	}
}

func TestKeysOutsideSchemaAreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	blob := `{"params":{"outreach_agent":{"made_up_param":123}}}`
	if err := os.WriteFile(path, []byte(blob), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	s, err := params.Open(path, params.DefaultSchema())
	var corrupt *models.ConfigCorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected ConfigCorruptError for out-of-schema key, got %v", err)
	}
	if v := s.Get("outreach_agent.scroll_wait", 0); v != 3000 {
		t.Errorf("expected default after fallback, got %v", v)
	}
}

func TestLoadedValuesClampedToCurrentBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	blob := `{"params":{"outreach_agent":{"scroll_wait":99999}}}`
	if err := os.WriteFile(path, []byte(blob), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	s, err := params.Open(path, params.DefaultSchema())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if v := s.Get("outreach_agent.scroll_wait", 0); v != 30000 {
		t.Errorf("expected value clamped to 30000, got %v", v)
	}
}

func TestValues(t *testing.T) {
	s, _ := openStore(t)

	if err := s.Set("outreach_agent.scroll_wait", 5000); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	vals := s.Values("outreach_agent")
	if vals["scroll_wait"] != 5000 {
		t.Errorf("expected override 5000, got %v", vals["scroll_wait"])
	}
	if vals["message_send_wait"] != 3000 {
		t.Errorf("expected default 3000, got %v", vals["message_send_wait"])
	}
	if s.Values("no_such_agent") != nil {
		t.Error("expected nil for unknown agent type")
	}
}
