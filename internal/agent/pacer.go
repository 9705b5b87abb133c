package agent

import (
	"context"
	"time"

	"github.com/sgrayson/netreach/internal/models"
	"github.com/sgrayson/netreach/internal/params"
)

// Pacer gates workflow actions on the current tuned parameters. Workflows
// call Wait before each gated step (a scroll, a send) so that the next run
// picks up whatever the tuner decided after the last one.
type Pacer struct {
	agentType string
	provider  params.Provider
	schema    models.Schema
}

// NewPacer creates a pacer for one agent type.
func NewPacer(agentType string, provider params.Provider, schema models.Schema) *Pacer {
	return &Pacer{agentType: agentType, provider: provider, schema: schema}
}

// Wait sleeps for the duration configured under the named parameter,
// honoring context cancellation. Unknown or non-positive parameters do not
// wait.
func (p *Pacer) Wait(ctx context.Context, param string) error {
	d := p.duration(param)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Budget returns a retry budget from a count-valued parameter, falling back
// to def for unknown keys.
func (p *Pacer) Budget(param string, def int) int {
	v := p.provider.Get(p.agentType+"."+param, float64(def))
	if v < 0 {
		return 0
	}
	return int(v)
}

func (p *Pacer) duration(param string) time.Duration {
	v := p.provider.Get(p.agentType+"."+param, 0)
	if v <= 0 {
		return 0
	}
	unit := models.UnitMillis
	if spec, ok := p.schema.Spec(p.agentType, param); ok {
		unit = spec.Unit
	}
	switch unit {
	case models.UnitSeconds:
		return time.Duration(v * float64(time.Second))
	default:
		return time.Duration(v * float64(time.Millisecond))
	}
}
