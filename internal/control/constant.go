package control

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/san-kum/mobikin/internal/dynamo"
)

// Constant returns the same udot every step. It may be changed from another
// goroutine, e.g. an interactive view, while a run is in progress.
type Constant struct {
	mu sync.RWMutex
	u  dynamo.Control
}

func NewConstant(udot []float64) *Constant {
	return &Constant{u: append(dynamo.Control(nil), udot...)}
}

// SetControl replaces udot. The length must not change.
func (c *Constant) SetControl(udot []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(udot) != len(c.u) {
		return errors.Wrapf(dynamo.ErrDimensionMismatch, "control has %d entries, want %d", len(udot), len(c.u))
	}
	copy(c.u, udot)
	return nil
}

func (c *Constant) Compute(dynamo.State, float64) dynamo.Control {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(dynamo.Control, len(c.u))
	copy(out, c.u)
	return out
}
