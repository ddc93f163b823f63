package spatial

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Mat33 is a row-major 3x3 matrix.
type Mat33 [3][3]float64

// Identity33 returns the 3x3 identity.
func Identity33() Mat33 {
	return Mat33{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Skew returns the cross product matrix of v, so that Skew(v).MulVec(w) == v.Cross(w).
func Skew(v r3.Vector) Mat33 {
	return Mat33{
		{0, -v.Z, v.Y},
		{v.Z, 0, -v.X},
		{-v.Y, v.X, 0},
	}
}

// Mat33FromRows builds a matrix from three row vectors.
func Mat33FromRows(r0, r1, r2 r3.Vector) Mat33 {
	return Mat33{{r0.X, r0.Y, r0.Z}, {r1.X, r1.Y, r1.Z}, {r2.X, r2.Y, r2.Z}}
}

// Mat33FromCols builds a matrix from three column vectors.
func Mat33FromCols(c0, c1, c2 r3.Vector) Mat33 {
	return Mat33{{c0.X, c1.X, c2.X}, {c0.Y, c1.Y, c2.Y}, {c0.Z, c1.Z, c2.Z}}
}

func (m Mat33) Row(i int) r3.Vector {
	return r3.Vector{X: m[i][0], Y: m[i][1], Z: m[i][2]}
}

func (m Mat33) Col(j int) r3.Vector {
	return r3.Vector{X: m[0][j], Y: m[1][j], Z: m[2][j]}
}

func (m Mat33) T() Mat33 {
	var t Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

func (m Mat33) Mul(o Mat33) Mat33 {
	var p Mat33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return p
}

// MulVec returns m*v.
func (m Mat33) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// RowMul returns the row vector v*m, stored as an r3.Vector.
func (m Mat33) RowMul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: v.X*m[0][0] + v.Y*m[1][0] + v.Z*m[2][0],
		Y: v.X*m[0][1] + v.Y*m[1][1] + v.Z*m[2][1],
		Z: v.X*m[0][2] + v.Y*m[1][2] + v.Z*m[2][2],
	}
}

func (m Mat33) Add(o Mat33) Mat33 {
	for i := range m {
		for j := range m[i] {
			m[i][j] += o[i][j]
		}
	}
	return m
}

func (m Mat33) Sub(o Mat33) Mat33 {
	for i := range m {
		for j := range m[i] {
			m[i][j] -= o[i][j]
		}
	}
	return m
}

func (m Mat33) Scale(f float64) Mat33 {
	for i := range m {
		for j := range m[i] {
			m[i][j] *= f
		}
	}
	return m
}

// MaxAbs is the largest absolute element.
func (m Mat33) MaxAbs() float64 {
	max := 0.0
	for i := range m {
		for j := range m[i] {
			max = math.Max(max, math.Abs(m[i][j]))
		}
	}
	return max
}

// AlmostEqual reports whether every element differs by at most tol.
func (m Mat33) AlmostEqual(o Mat33, tol float64) bool {
	return m.Sub(o).MaxAbs() <= tol
}

// Dense copies m into a gonum matrix.
func (m Mat33) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// Cond returns the 2-norm condition number of m. It is +Inf for a singular matrix.
func (m Mat33) Cond() float64 {
	return mat.Cond(m.Dense(), 2)
}

// Vec3FromSlice reads three consecutive values.
func Vec3FromSlice(s []float64) r3.Vector {
	return r3.Vector{X: s[0], Y: s[1], Z: s[2]}
}

// PutVec3 writes v into the first three elements of s.
func PutVec3(s []float64, v r3.Vector) {
	s[0], s[1], s[2] = v.X, v.Y, v.Z
}
