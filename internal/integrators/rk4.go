package integrators

import "github.com/san-kum/mobikin/internal/dynamo"

var (
	rk4C = []float64{0, 0.5, 0.5, 1}
	rk4A = [][]float64{
		nil,
		{0.5},
		{0, 0.5},
		{0, 0, 1},
	}
	rk4B = []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6}
)

// RK4 is the classical fourth-order Runge-Kutta method. It reuses its stage
// buffers between steps and is not safe for concurrent use.
type RK4 struct {
	ks      []dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{ks: make([]dynamo.State, 4)}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ks = ensure(r.ks, n)
	if len(r.scratch) != n {
		r.scratch = make(dynamo.State, n)
	}
	explicitStages(sys, x, u, t, dt, rk4C, rk4A, r.ks, r.scratch)

	out := make(dynamo.State, n)
	combine(out, x, dt, rk4B, r.ks)
	return out
}
