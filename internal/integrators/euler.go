package integrators

import "github.com/san-kum/mobikin/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	out := make(dynamo.State, len(x))
	axpy(out, x, dt, sys.Derive(x, u, t))
	return out
}
