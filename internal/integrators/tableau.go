package integrators

import "github.com/san-kum/mobikin/internal/dynamo"

// axpy sets dst = x + h*k.
func axpy(dst, x dynamo.State, h float64, k dynamo.State) {
	for i := range dst {
		dst[i] = x[i] + h*k[i]
	}
}

// combine sets dst = x + h * sum_j w[j]*ks[j], skipping zero weights.
func combine(dst, x dynamo.State, h float64, w []float64, ks []dynamo.State) {
	copy(dst, x)
	for j, wj := range w {
		if wj == 0 {
			continue
		}
		f := h * wj
		k := ks[j]
		for i := range dst {
			dst[i] += f * k[i]
		}
	}
}

// explicitStages evaluates the stages of an explicit Runge-Kutta tableau
// into ks, using scratch for the intermediate states.
func explicitStages(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64,
	c []float64, a [][]float64, ks []dynamo.State, scratch dynamo.State) {
	for s := range c {
		if s == 0 {
			copy(ks[0], sys.Derive(x, u, t))
			continue
		}
		combine(scratch, x, dt, a[s], ks[:s])
		copy(ks[s], sys.Derive(scratch, u, t+c[s]*dt))
	}
}

func ensure(ks []dynamo.State, n int) []dynamo.State {
	for i := range ks {
		if len(ks[i]) != n {
			ks[i] = make(dynamo.State, n)
		}
	}
	return ks
}
