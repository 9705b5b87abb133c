package models

import "math"

// Unit describes how a parameter value is interpreted.
type Unit string

const (
	UnitMillis  Unit = "ms"
	UnitSeconds Unit = "sec"
	UnitCount   Unit = "count"
)

// ParamSpec describes one tunable parameter: its default, bounds and the
// step sizes the tuner applies. Bounds are fixed at design time and are not
// persisted per run. A percentage step takes precedence over an absolute one.
type ParamSpec struct {
	Name        string  `toml:"name"`
	Unit        Unit    `toml:"unit"`
	Default     float64 `toml:"default"`
	Min         float64 `toml:"min"`
	Max         float64 `toml:"max"`
	StepUpPct   float64 `toml:"step_up_pct,omitempty"`
	StepUpAbs   float64 `toml:"step_up_abs,omitempty"`
	StepDownPct float64 `toml:"step_down_pct,omitempty"`
	StepDownAbs float64 `toml:"step_down_abs,omitempty"`
}

// Clamp constrains v to the spec's closed interval. Count-valued parameters
// are rounded to whole numbers.
func (p ParamSpec) Clamp(v float64) float64 {
	if p.Unit == UnitCount {
		v = math.Round(v)
	}
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// StepUp returns the slowed-down value: the larger corrective step taken
// when a rule's success rate falls below the low threshold.
func (p ParamSpec) StepUp(cur float64) float64 {
	next := cur
	switch {
	case p.StepUpPct > 0:
		next = cur * (1 + p.StepUpPct)
	case p.StepUpAbs > 0:
		next = cur + p.StepUpAbs
	}
	return p.Clamp(next)
}

// StepDown returns the sped-up value: the smaller step taken only on
// sustained good performance.
func (p ParamSpec) StepDown(cur float64) float64 {
	next := cur
	switch {
	case p.StepDownPct > 0:
		next = cur * (1 - p.StepDownPct)
	case p.StepDownAbs > 0:
		next = cur - p.StepDownAbs
	}
	return p.Clamp(next)
}

// Rule ties one outcome-rate signal to the parameter it adjusts. The rate is
// derived from the success/failure counter pair; when a run carries no
// counters for the pair, a caller-supplied rate stored under the signal name
// is used instead.
type Rule struct {
	Signal  string `toml:"signal"`
	Success string `toml:"success"`
	Failure string `toml:"failure"`
	Param   string `toml:"param"`
}

// AgentSchema is the full tunable surface of one agent type.
type AgentSchema struct {
	Params []ParamSpec `toml:"params"`
	Rules  []Rule      `toml:"rules"`
}

// Spec returns the ParamSpec with the given name.
func (a AgentSchema) Spec(name string) (ParamSpec, bool) {
	for _, p := range a.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Schema maps agent types to their tunable parameters and tuning rules.
type Schema struct {
	Agents map[string]AgentSchema `toml:"agents"`
}

// Spec resolves a parameter spec by agent type and parameter name.
func (s Schema) Spec(agentType, param string) (ParamSpec, bool) {
	a, ok := s.Agents[agentType]
	if !ok {
		return ParamSpec{}, false
	}
	return a.Spec(param)
}
