// Package tuner implements the run-history feedback loop: it reads the
// recent window of run metrics for an agent type, aggregates success rates
// per rule, and nudges the associated parameters. Slow-downs are large and
// fire on a single bad window; speed-ups are small and require a full window
// of sustained good performance.
package tuner

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/sgrayson/netreach/internal/models"
)

// Options are the exposed control-loop constants. The exact values are
// empirically chosen defaults, not correctness requirements.
type Options struct {
	// Window is the number of recent runs considered per decision.
	Window int
	// MinRuns is the evidence threshold below which tuning is skipped.
	MinRuns int
	// LowThreshold is the success rate below which a parameter is increased.
	LowThreshold float64
	// HighThreshold is the success rate at or above which a parameter is
	// decreased, given a full window.
	HighThreshold float64
}

// DefaultOptions returns the standard control-loop constants.
func DefaultOptions() Options {
	return Options{
		Window:        5,
		MinRuns:       2,
		LowThreshold:  0.7,
		HighThreshold: 0.95,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Window <= 0 {
		o.Window = def.Window
	}
	if o.MinRuns <= 0 {
		o.MinRuns = def.MinRuns
	}
	if o.LowThreshold <= 0 {
		o.LowThreshold = def.LowThreshold
	}
	if o.HighThreshold <= 0 {
		o.HighThreshold = def.HighThreshold
	}
	return o
}

// MetricSource supplies the recent metric window per agent type.
type MetricSource interface {
	Recent(agentType string, limit int) ([]models.RunMetric, error)
}

// ParamStore is the mutable parameter state the engine adjusts. The
// watermark tracks the newest metric already acted on, so re-running the
// engine on an unchanged history is a no-op rather than a double-applied
// delta.
type ParamStore interface {
	Get(key string, def float64) float64
	Set(key string, value float64) error
	Watermark(agentType string) time.Time
	SetWatermark(agentType string, t time.Time) error
}

// Engine translates outcome statistics into parameter adjustments.
type Engine struct {
	schema  models.Schema
	metrics MetricSource
	params  ParamStore
	opts    Options
	log     *slog.Logger
}

// New creates an engine. A nil logger discards tuning output.
func New(schema models.Schema, metrics MetricSource, params ParamStore, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		schema:  schema,
		metrics: metrics,
		params:  params,
		opts:    opts.withDefaults(),
		log:     log,
	}
}

// TuneAll runs one tuning pass for every agent type in the schema.
func (e *Engine) TuneAll() error {
	types := make([]string, 0, len(e.schema.Agents))
	for t := range e.schema.Agents {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, agentType := range types {
		if err := e.Tune(agentType); err != nil {
			return fmt.Errorf("tuning %s: %w", agentType, err)
		}
	}
	return nil
}

// Tune runs one tuning pass for a single agent type. Insufficient evidence
// and nominal rates are normal no-op outcomes; only storage failures are
// errors. Rules are independent, so one rule skipping never blocks another.
func (e *Engine) Tune(agentType string) error {
	a, ok := e.schema.Agents[agentType]
	if !ok {
		return nil
	}

	window, err := e.metrics.Recent(agentType, e.opts.Window)
	if err != nil {
		return err
	}
	if len(window) < e.opts.MinRuns {
		e.log.Debug("tuning skipped, insufficient runs",
			"agent", agentType, "runs", len(window), "min", e.opts.MinRuns)
		return nil
	}

	newest := window[len(window)-1].Timestamp
	if !newest.After(e.params.Watermark(agentType)) {
		e.log.Debug("tuning skipped, no new evidence", "agent", agentType)
		return nil
	}
	full := len(window) >= e.opts.Window

	for _, rule := range a.Rules {
		rate, evidence := windowRate(window, rule)
		if evidence == 0 {
			continue
		}

		spec, ok := a.Spec(rule.Param)
		if !ok {
			continue
		}
		key := agentType + "." + rule.Param
		cur := e.params.Get(key, spec.Default)

		switch {
		case rate < e.opts.LowThreshold:
			next := spec.StepUp(cur)
			if next > cur {
				e.log.Info("low success rate, slowing down",
					"agent", agentType, "signal", rule.Signal,
					"rate", rate, "param", rule.Param, "from", cur, "to", next)
				if err := e.params.Set(key, next); err != nil {
					return err
				}
			}
		case rate >= e.opts.HighThreshold && full:
			next := spec.StepDown(cur)
			if next < cur {
				e.log.Info("sustained high success rate, speeding up",
					"agent", agentType, "signal", rule.Signal,
					"rate", rate, "param", rule.Param, "from", cur, "to", next)
				if err := e.params.Set(key, next); err != nil {
					return err
				}
			}
		}
	}

	return e.params.SetWatermark(agentType, newest)
}

// windowRate aggregates a rule's success rate across the window. Counter
// pairs are preferred; runs that carry no counters for the pair contribute a
// caller-supplied rate under the signal name instead. Zero evidence means
// the rule must be skipped.
func windowRate(window []models.RunMetric, rule models.Rule) (rate float64, evidence int) {
	var successes, failures int
	var rateSum float64
	var rateRuns int

	for _, m := range window {
		s, f := m.Count(rule.Success), m.Count(rule.Failure)
		if s+f > 0 {
			successes += s
			failures += f
			continue
		}
		if r, ok := m.Rate(rule.Signal); ok {
			rateSum += r
			rateRuns++
		}
	}

	if successes+failures > 0 {
		return float64(successes) / float64(successes+failures), successes + failures
	}
	if rateRuns > 0 {
		return rateSum / float64(rateRuns), rateRuns
	}
	return 0, 0
}
