package metrics

import (
	"math"

	"github.com/san-kum/mobikin/internal/dynamo"
)

// PeakNorm tracks the largest Euclidean norm of x[from:to] over a run.
type PeakNorm struct {
	name     string
	from, to int
	peak     float64
}

func NewPeakNorm(name string, from, to int) *PeakNorm {
	return &PeakNorm{name: name, from: from, to: to}
}

func (p *PeakNorm) Name() string { return p.name }

func (p *PeakNorm) Observe(x dynamo.State, _ dynamo.Control, _ float64) {
	to := p.to
	if to > len(x) {
		to = len(x)
	}
	if p.from >= to {
		return
	}
	p.peak = math.Max(p.peak, x[p.from:to].Norm())
}

func (p *PeakNorm) Value() float64 { return p.peak }
func (p *PeakNorm) Reset()         { p.peak = 0 }
