package spatial

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// singularCos is the cosine of the middle Euler angle below which angle
// extraction treats the rotation as gimbal locked.
const singularCos = 1e-12

// Rotation is an orthonormal 3x3 matrix R_FM whose columns are the axes of
// frame M expressed in frame F, so that v_F = R_FM * v_M.
type Rotation Mat33

// IdentityRotation returns the zero rotation.
func IdentityRotation() Rotation {
	return Rotation(Identity33())
}

func RotationX(a float64) Rotation {
	s, c := math.Sincos(a)
	return Rotation{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

func RotationY(a float64) Rotation {
	s, c := math.Sincos(a)
	return Rotation{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

func RotationZ(a float64) Rotation {
	s, c := math.Sincos(a)
	return Rotation{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// NewRotationBodyFixedXYZ composes rotations about X, then the new Y, then
// the new Z axis: R = Rx(q.X) * Ry(q.Y) * Rz(q.Z).
func NewRotationBodyFixedXYZ(q r3.Vector) Rotation {
	return NewBodyXYZ(q).Rotation()
}

// RotationAboutAxis returns the rotation by angle about a unit axis.
func RotationAboutAxis(axis r3.Vector, angle float64) Rotation {
	half := angle / 2
	s, c := math.Sincos(half)
	a := axis.Normalize()
	return RotationFromQuaternion(quat.Number{Real: c, Imag: s * a.X, Jmag: s * a.Y, Kmag: s * a.Z})
}

// RotationFromQuaternion builds the rotation for a quaternion with the
// scalar part first. The quaternion is normalized; a zero quaternion maps to
// the identity.
func RotationFromQuaternion(q quat.Number) Rotation {
	n := quat.Abs(q)
	if n == 0 {
		return IdentityRotation()
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Rotation{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

func (r Rotation) Mat() Mat33 { return Mat33(r) }

func (r Rotation) Mul(o Rotation) Rotation {
	return Rotation(Mat33(r).Mul(Mat33(o)))
}

// Inverse is the transpose.
func (r Rotation) Inverse() Rotation {
	return Rotation(Mat33(r).T())
}

// Apply re-expresses a vector given in M into F.
func (r Rotation) Apply(v r3.Vector) r3.Vector {
	return Mat33(r).MulVec(v)
}

// ApplyInverse re-expresses a vector given in F into M.
func (r Rotation) ApplyInverse(v r3.Vector) r3.Vector {
	return Mat33(r).RowMul(v)
}

func (r Rotation) AlmostEqual(o Rotation, tol float64) bool {
	return Mat33(r).AlmostEqual(Mat33(o), tol)
}

// BodyFixedXYZ extracts body-fixed 1-2-3 angles such that
// NewRotationBodyFixedXYZ(r.BodyFixedXYZ()) reproduces r. The middle angle
// lies in [-pi/2, pi/2]. At the singularity the third angle is reported as
// zero and the first carries the whole rotation about the aligned axes.
func (r Rotation) BodyFixedXYZ() r3.Vector {
	c1 := math.Hypot(r[0][0], r[0][1])
	q1 := math.Atan2(r[0][2], c1)
	if c1 < singularCos {
		return r3.Vector{X: math.Atan2(r[2][1], r[1][1]), Y: q1, Z: 0}
	}
	return r3.Vector{
		X: math.Atan2(-r[1][2], r[2][2]),
		Y: q1,
		Z: math.Atan2(-r[0][1], r[0][0]),
	}
}

// OneAxisAngle returns the angle of the rotation about coordinate axis
// (0, 1 or 2) that best approximates r.
func (r Rotation) OneAxisAngle(axis int) float64 {
	switch axis {
	case 0:
		return math.Atan2(r[2][1]-r[1][2], r[1][1]+r[2][2])
	case 1:
		return math.Atan2(r[0][2]-r[2][0], r[2][2]+r[0][0])
	default:
		return math.Atan2(r[1][0]-r[0][1], r[0][0]+r[1][1])
	}
}

// Quaternion converts r to a unit quaternion with a non-negative scalar part.
func (r Rotation) Quaternion() quat.Number {
	tr := r[0][0] + r[1][1] + r[2][2]
	var q quat.Number
	switch {
	case tr >= r[0][0] && tr >= r[1][1] && tr >= r[2][2]:
		w := math.Sqrt(1+tr) / 2
		q = quat.Number{Real: w, Imag: (r[2][1] - r[1][2]) / (4 * w), Jmag: (r[0][2] - r[2][0]) / (4 * w), Kmag: (r[1][0] - r[0][1]) / (4 * w)}
	case r[0][0] >= r[1][1] && r[0][0] >= r[2][2]:
		x := math.Sqrt(1+r[0][0]-r[1][1]-r[2][2]) / 2
		q = quat.Number{Real: (r[2][1] - r[1][2]) / (4 * x), Imag: x, Jmag: (r[0][1] + r[1][0]) / (4 * x), Kmag: (r[0][2] + r[2][0]) / (4 * x)}
	case r[1][1] >= r[2][2]:
		y := math.Sqrt(1+r[1][1]-r[0][0]-r[2][2]) / 2
		q = quat.Number{Real: (r[0][2] - r[2][0]) / (4 * y), Imag: (r[0][1] + r[1][0]) / (4 * y), Jmag: y, Kmag: (r[1][2] + r[2][1]) / (4 * y)}
	default:
		z := math.Sqrt(1+r[2][2]-r[0][0]-r[1][1]) / 2
		q = quat.Number{Real: (r[1][0] - r[0][1]) / (4 * z), Imag: (r[0][2] + r[2][0]) / (4 * z), Jmag: (r[1][2] + r[2][1]) / (4 * z), Kmag: z}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return quat.Scale(1/quat.Abs(q), q)
}

// AngleTo is the angle of the relative rotation between r and o.
func (r Rotation) AngleTo(o Rotation) float64 {
	d := r.Inverse().Mul(o)
	c := (d[0][0] + d[1][1] + d[2][2] - 1) / 2
	return math.Acos(math.Max(-1, math.Min(1, c)))
}
