package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/spatial"
	"gonum.org/v1/gonum/num/quat"
)

// Quaternion kinematics shared by Ball and Free. e is scalar first and is
// taken from the normalized cache; w is expressed in F.
//
//	qdot = N(e)*w,  N(e) = 1/2 [-e_v^T; e_s*I + [e_v]x]
//	w    = 4*N(e)^T*qdot  (for unit e)
//	NDot = N(edot)

func normalizeQuat(s []float64) quat.Number {
	return spatial.UnitQuaternion(spatial.QuatFromSlice(s))
}

func quat4(s []float64) [4]float64 {
	return [4]float64{s[0], s[1], s[2], s[3]}
}

func put4(s []float64, a [4]float64) {
	copy(s[:4], a[:])
}

func scale4(f float64, a [4]float64) [4]float64 {
	for i := range a {
		a[i] *= f
	}
	return a
}

// quatN applies N(e): left maps 3 speeds to 4 rates, right maps 4 to 3.
func quatN(n spatial.Mat43, side Side, in, out []float64) {
	if side == MatrixOnRight {
		spatial.PutVec3(out, n.RowMul(quat4(in)))
		return
	}
	put4(out, n.MulVec(spatial.Vec3FromSlice(in)))
}

// quatNInv applies 4*N(e)^T: left maps 4 rates to 3 speeds, right maps 3 to 4.
func quatNInv(n spatial.Mat43, side Side, in, out []float64) {
	if side == MatrixOnRight {
		put4(out, scale4(4, n.MulVec(spatial.Vec3FromSlice(in))))
		return
	}
	spatial.PutVec3(out, n.RowMul(quat4(in)).Mul(4))
}

// quatQDotDot is N(e)*wdot + N(edot)*w.
func quatQDotDot(e, edot quat.Number, w, wdot r3.Vector, out []float64) {
	a := spatial.QuaternionN(e).MulVec(wdot)
	b := spatial.QuaternionN(edot).MulVec(w)
	for i := range a {
		out[i] = a[i] + b[i]
	}
}
