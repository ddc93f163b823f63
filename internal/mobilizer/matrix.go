package mobilizer

import (
	"github.com/san-kum/mobikin/internal/digest"
	"gonum.org/v1/gonum/mat"
)

// The helpers below materialize the kinematic coupling matrices by applying
// the MultiplyBy* operators to unit vectors. They are meant for inspection
// and testing; the simulation path never forms N.

// NMatrix returns N as an NQ x NU matrix.
func NMatrix(m Mobilizer, d *digest.Digest) *mat.Dense {
	return materialize(m.NQ(), m.NU(), func(in, out []float64) { m.MultiplyByN(d, MatrixOnLeft, in, out) })
}

// NInvMatrix returns NInv as an NU x NQ matrix.
func NInvMatrix(m Mobilizer, d *digest.Digest) *mat.Dense {
	return materialize(m.NU(), m.NQ(), func(in, out []float64) { m.MultiplyByNInv(d, MatrixOnLeft, in, out) })
}

// NDotMatrix returns NDot as an NQ x NU matrix.
func NDotMatrix(m Mobilizer, d *digest.Digest) *mat.Dense {
	return materialize(m.NQ(), m.NU(), func(in, out []float64) { m.MultiplyByNDot(d, MatrixOnLeft, in, out) })
}

func materialize(rows, cols int, apply func(in, out []float64)) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	a := mat.NewDense(rows, cols, nil)
	in := make([]float64, cols)
	out := make([]float64, rows)
	for j := 0; j < cols; j++ {
		in[j] = 1
		apply(in, out)
		a.SetCol(j, out)
		in[j] = 0
	}
	return a
}
