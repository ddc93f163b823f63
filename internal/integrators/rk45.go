package integrators

import (
	"math"

	"github.com/san-kum/mobikin/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. The last stage is evaluated at the new state,
// so its derivative is available for the error estimate.
var (
	dpC = []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [][]float64{
		nil,
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	dpB = []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0}
	// fifth minus fourth order weights
	dpE = []float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	ks       []dynamo.State
	scratch  dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		ks:       make([]dynamo.State, len(dpC)),
	}
}

func (r *RK45) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	next, _, _ := r.StepAdaptive(sys, x, u, t, dt, 1e-6)
	return next
}

// StepAdaptive takes one step of size dt and proposes the next step size
// from the embedded error estimate.
func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	n := len(x)
	r.ks = ensure(r.ks, n)
	if len(r.scratch) != n {
		r.scratch = make(dynamo.State, n)
	}
	explicitStages(sys, x, u, t, dt, dpC, dpA, r.ks, r.scratch)

	next := make(dynamo.State, n)
	combine(next, x, dt, dpB, r.ks)
	if !next.IsValid() {
		return next, dt, dynamo.ErrInvalidState
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := 0.0
		for j, e := range dpE {
			est += e * r.ks[j][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*r.ks[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}

	ratio := errMax / tol
	switch {
	case ratio > 1:
		return next, dt * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25)), nil
	case ratio > 0:
		return next, dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2)), nil
	default:
		return next, dt * r.maxScale, nil
	}
}
