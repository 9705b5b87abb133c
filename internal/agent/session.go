// Package agent provides the run-session boundary the workflow processes
// use: a Session accumulates outcome counts while a workflow drives the
// browser, and on finish emits one immutable RunMetric and triggers a
// best-effort tuning pass.
package agent

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sgrayson/netreach/internal/models"
)

// Recorder appends finished run metrics to durable history.
type Recorder interface {
	Record(m models.RunMetric) error
}

// Tuner runs one tuning pass for an agent type.
type Tuner interface {
	Tune(agentType string) error
}

// Session tracks the outcomes of one agent run. Not safe for concurrent
// use; an agent run is single-threaded by design.
type Session struct {
	agentType string
	recorder  Recorder
	tuner     Tuner
	log       *slog.Logger

	started  time.Time
	counts   map[string]int
	rates    map[string]float64
	notes    []string
	finished bool
}

// NewSession starts a session for one agent run. The tuner may be nil when
// the caller only wants metrics recorded.
func NewSession(agentType string, recorder Recorder, tuner Tuner, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		agentType: agentType,
		recorder:  recorder,
		tuner:     tuner,
		log:       log.With("agent", agentType),
		started:   time.Now(),
		counts:    make(map[string]int),
		rates:     make(map[string]float64),
	}
}

// Count increments a named outcome counter by one.
func (s *Session) Count(outcome string) {
	s.CountN(outcome, 1)
}

// CountN increments a named outcome counter by n.
func (s *Session) CountN(outcome string, n int) {
	s.counts[outcome] += n
}

// Rate records a precomputed rate under a signal name, for outcomes the
// workflow measures directly rather than via counter pairs.
func (s *Session) Rate(signal string, v float64) {
	s.rates[signal] = v
}

// Note appends a free-form note to the run record.
func (s *Session) Note(format string, args ...any) {
	s.notes = append(s.notes, fmt.Sprintf(format, args...))
}

// Metric builds the RunMetric for the session as recorded so far.
func (s *Session) Metric() models.RunMetric {
	m := models.RunMetric{
		RunID:     uuid.NewString(),
		AgentType: s.agentType,
		Timestamp: time.Now(),
		Notes:     s.notes,
	}
	if len(s.counts) > 0 {
		m.Counts = make(map[string]int, len(s.counts))
		for k, v := range s.counts {
			m.Counts[k] = v
		}
	}
	if len(s.rates) > 0 {
		m.Rates = make(map[string]float64, len(s.rates))
		for k, v := range s.rates {
			m.Rates[k] = v
		}
	}
	return m
}

// Finish appends the run metric to history and runs the tuner. A recording
// failure is returned; a tuning failure is only logged, since tuning is
// best-effort and must never abort the agent's primary task. Finish is
// idempotent: second and later calls do nothing.
func (s *Session) Finish() (models.RunMetric, error) {
	if s.finished {
		return models.RunMetric{}, fmt.Errorf("session already finished")
	}
	s.finished = true

	m := s.Metric()
	s.log.Info("run finished",
		"run_id", m.RunID,
		"duration", time.Since(s.started).Round(time.Millisecond),
		"outcomes", len(m.Counts))

	if err := s.recorder.Record(m); err != nil {
		return m, fmt.Errorf("recording run metric: %w", err)
	}

	if s.tuner != nil {
		if err := s.tuner.Tune(s.agentType); err != nil {
			s.log.Warn("tuning pass failed, continuing with current parameters", "error", err)
		}
	}
	return m, nil
}
