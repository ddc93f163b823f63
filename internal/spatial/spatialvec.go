package spatial

import (
	"math"

	"github.com/golang/geo/r3"
)

// SpatialVec pairs an angular part W with a linear part V.
type SpatialVec struct {
	W r3.Vector
	V r3.Vector
}

func (s SpatialVec) Add(o SpatialVec) SpatialVec {
	return SpatialVec{W: s.W.Add(o.W), V: s.V.Add(o.V)}
}

func (s SpatialVec) Sub(o SpatialVec) SpatialVec {
	return SpatialVec{W: s.W.Sub(o.W), V: s.V.Sub(o.V)}
}

func (s SpatialVec) Scale(f float64) SpatialVec {
	return SpatialVec{W: s.W.Mul(f), V: s.V.Mul(f)}
}

func (s SpatialVec) Dot(o SpatialVec) float64 {
	return s.W.Dot(o.W) + s.V.Dot(o.V)
}

func (s SpatialVec) Norm() float64 {
	return math.Sqrt(s.Dot(s))
}

func (s SpatialVec) IsZero() bool {
	return s == SpatialVec{}
}

func (s SpatialVec) AlmostEqual(o SpatialVec, tol float64) bool {
	return s.Sub(o).Norm() <= tol
}

// Combine returns sum_i cols[i]*coef[i], e.g. H*u.
func Combine(cols []SpatialVec, coef []float64) SpatialVec {
	var out SpatialVec
	for i, c := range cols {
		out = out.Add(c.Scale(coef[i]))
	}
	return out
}
