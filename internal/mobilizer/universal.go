package mobilizer

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Universal is R_FM = Rx(q0)*Ry(q1). The second axis is y rotated by q0
// about x, so its Jacobian column turns with q0.
type Universal struct {
	Base
	identityN
}

func NewUniversal(alloc *SlotAllocator) *Universal {
	return &Universal{Base: newBase(KindUniversal, alloc, 2, 2)}
}

func (j *Universal) IsUsingAngles() (start, n int, ok bool) { return 0, 2, true }

func (j *Universal) SetQFromRotation(r spatial.Rotation, q []float64) {
	lq := j.fromQ(q)
	lq[0] = math.Atan2(r[2][1], r[1][1])
	lq[1] = math.Atan2(r[0][2], r[0][0])
}

func (j *Universal) SetQFromTranslation(r3.Vector, []float64) {}

// SetUFromAngularVelocity projects w onto the two joint axes, which are
// orthonormal for every q.
func (j *Universal) SetUFromAngularVelocity(q []float64, w r3.Vector, u []float64) {
	s, c := math.Sincos(j.fromQ(q)[0])
	lu := j.fromU(u)
	lu[0] = w.X
	lu[1] = w.Dot(r3.Vector{Y: c, Z: s})
}

func (j *Universal) SetUFromLinearVelocity([]float64, r3.Vector, []float64) {}

func (j *Universal) ComputeTrigCache(q, sin, cos, _ []float64) { j.angleSinCos(q, sin, cos, 0, 2) }

func (j *Universal) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	lq := j.fromQ(q)
	return spatial.Transform{R: spatial.RotationX(lq[0]).Mul(spatial.RotationY(lq[1]))}
}

func (j *Universal) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	s, c := j.fromQ(d.Sin())[0], j.fromQ(d.Cos())[0]
	h[0] = angular(xAxis)
	h[1] = angular(r3.Vector{Y: c, Z: s})
}

func (j *Universal) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	s, c := j.fromQ(d.Sin())[0], j.fromQ(d.Cos())[0]
	u0 := j.fromU(d.U())[0]
	hdot[0] = spatial.SpatialVec{}
	hdot[1] = angular(r3.Vector{Y: -s * u0, Z: c * u0})
}

func (j *Universal) ComputeQDot(d *digest.Digest, u, qdot []float64) { j.qdotFromU(d, u, qdot) }

func (j *Universal) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	j.qdotdotFromUDot(d, udot, qdotdot)
}
