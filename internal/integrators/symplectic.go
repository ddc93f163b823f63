package integrators

import "github.com/san-kum/mobikin/internal/dynamo"

// SemiImplicitEuler updates the speeds first and then the coordinates from
// the new speeds. It needs the system to report where the speeds start;
// otherwise it falls back to explicit Euler.
type SemiImplicitEuler struct {
	scratch dynamo.State
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	sp, ok := sys.(dynamo.Splitter)
	if !ok {
		return NewEuler().Step(sys, x, u, t, dt)
	}
	n := len(x)
	split := sp.SplitIndex()
	if len(s.scratch) != n {
		s.scratch = make(dynamo.State, n)
	}

	dx := sys.Derive(x, u, t)
	copy(s.scratch, x)
	axpy(s.scratch[split:], x[split:], dt, dx[split:])

	dxNew := sys.Derive(s.scratch, u, t+dt)
	out := make(dynamo.State, n)
	copy(out[split:], s.scratch[split:])
	axpy(out[:split], x[:split], dt, dxNew[:split])
	return out
}
