package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Ball is a singularity-free orientation joint: q is a quaternion (scalar
// first) and u is w_FM expressed in F. The quaternion is normalized on read
// and may drift between projections.
type Ball struct {
	Base
}

func NewBall(alloc *SlotAllocator) *Ball {
	return &Ball{Base: newBase(KindBall, alloc, 4, 3)}
}

func (b *Ball) IsUsingQuaternion() (start int, ok bool) { return 0, true }

func (b *Ball) SetQFromRotation(r spatial.Rotation, q []float64) {
	spatial.PutQuat(b.fromQ(q), r.Quaternion())
}

func (b *Ball) SetQFromTranslation(r3.Vector, []float64) {}

func (b *Ball) SetUFromAngularVelocity(_ []float64, w r3.Vector, u []float64) {
	spatial.PutVec3(b.fromU(u), w)
}

func (b *Ball) SetUFromLinearVelocity([]float64, r3.Vector, []float64) {}

func (b *Ball) ComputeTrigCache(q, _, _, qnorm []float64) {
	spatial.PutQuat(b.fromQ(qnorm), normalizeQuat(b.fromQ(q)))
}

func (b *Ball) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	return spatial.Transform{R: spatial.RotationFromQuaternion(spatial.QuatFromSlice(b.fromQ(q)))}
}

func (b *Ball) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0], h[1], h[2] = angular(xAxis), angular(yAxis), angular(zAxis)
}

func (b *Ball) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	zeroVecs(hdot[:3])
}

func (b *Ball) n(d *digest.Digest) spatial.Mat43 {
	return spatial.QuaternionN(spatial.QuatFromSlice(b.fromQ(d.QNorm())))
}

func (b *Ball) ComputeQDot(d *digest.Digest, u, qdot []float64) {
	b.MultiplyByN(d, MatrixOnLeft, b.fromU(u), b.fromQ(qdot))
}

func (b *Ball) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	d.Require(digest.Velocity, "ComputeQDotDot")
	quatQDotDot(
		spatial.QuatFromSlice(b.fromQ(d.QNorm())),
		spatial.QuatFromSlice(b.fromQ(d.QDot())),
		spatial.Vec3FromSlice(b.fromU(d.U())),
		spatial.Vec3FromSlice(b.fromU(udot)),
		b.fromQ(qdotdot),
	)
}

func (b *Ball) MultiplyByN(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByN")
	quatN(b.n(d), side, in, out)
}

func (b *Ball) MultiplyByNInv(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByNInv")
	quatNInv(b.n(d), side, in, out)
}

func (b *Ball) MultiplyByNDot(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Velocity, "MultiplyByNDot")
	quatN(spatial.QuaternionN(spatial.QuatFromSlice(b.fromQ(d.QDot()))), side, in, out)
}
