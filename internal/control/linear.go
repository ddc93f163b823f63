package control

import "github.com/san-kum/mobikin/internal/dynamo"

// Linear is state feedback udot = -K (x - Target). Missing target entries
// are zero and K may be narrower than the state.
type Linear struct {
	K      [][]float64
	Target dynamo.State
}

func NewLinear(k [][]float64, target dynamo.State) *Linear {
	return &Linear{K: k, Target: target}
}

// NewDamping returns udot = -c*u for a state [q; u] with nq coordinates and
// nu speeds.
func NewDamping(nq, nu int, c float64) *Linear {
	k := make([][]float64, nu)
	for i := range k {
		k[i] = make([]float64, nq+nu)
		k[i][nq+i] = c
	}
	return &Linear{K: k}
}

func (l *Linear) Compute(x dynamo.State, _ float64) dynamo.Control {
	u := make(dynamo.Control, len(l.K))
	for i := range u {
		for j := range x {
			if j >= len(l.K[i]) {
				break
			}
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			u[i] -= l.K[i][j] * (x[j] - target)
		}
	}
	return u
}
