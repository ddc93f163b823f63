package spatial

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Mat43 is a 4x3 matrix mapping angular velocity to quaternion rates.
type Mat43 [4][3]float64

// QuaternionN returns N such that qdot = N * w_F for a quaternion (scalar
// first) and an angular velocity expressed in the parent frame. For a unit
// quaternion the inverse map is 4*N^T. N is linear in e, so NDot = QuaternionN(edot).
func QuaternionN(e quat.Number) Mat43 {
	w, x, y, z := e.Real, e.Imag, e.Jmag, e.Kmag
	return Mat43{
		{-x / 2, -y / 2, -z / 2},
		{w / 2, z / 2, -y / 2},
		{-z / 2, w / 2, x / 2},
		{y / 2, -x / 2, w / 2},
	}
}

// MulVec returns N*v.
func (n Mat43) MulVec(v r3.Vector) [4]float64 {
	var out [4]float64
	for i := 0; i < 4; i++ {
		out[i] = n[i][0]*v.X + n[i][1]*v.Y + n[i][2]*v.Z
	}
	return out
}

// RowMul returns the row vector a*N.
func (n Mat43) RowMul(a [4]float64) r3.Vector {
	var v r3.Vector
	for i := 0; i < 4; i++ {
		v.X += a[i] * n[i][0]
		v.Y += a[i] * n[i][1]
		v.Z += a[i] * n[i][2]
	}
	return v
}

// QuaternionRate is qdot = 1/2 w (x) e with w a pure quaternion.
func QuaternionRate(e quat.Number, w r3.Vector) quat.Number {
	return quat.Scale(0.5, quat.Mul(quat.Number{Imag: w.X, Jmag: w.Y, Kmag: w.Z}, e))
}

func QuatFromSlice(s []float64) quat.Number {
	return quat.Number{Real: s[0], Imag: s[1], Jmag: s[2], Kmag: s[3]}
}

func PutQuat(s []float64, q quat.Number) {
	s[0], s[1], s[2], s[3] = q.Real, q.Imag, q.Jmag, q.Kmag
}

func Quat4(q quat.Number) [4]float64 {
	return [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

// UnitQuaternion scales e to unit length. The zero quaternion maps to the
// identity rotation.
func UnitQuaternion(e quat.Number) quat.Number {
	n := quat.Abs(e)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, e)
}
