package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Free has six degrees of freedom. q = (quaternion, p_FM) and
// u = (w_FM, v_FM), all expressed in F, so H is the identity.
type Free struct {
	Base
}

func NewFree(alloc *SlotAllocator) *Free {
	return &Free{Base: newBase(KindFree, alloc, 7, 6)}
}

func (f *Free) IsUsingQuaternion() (start int, ok bool) { return 0, true }

func (f *Free) SetQFromRotation(r spatial.Rotation, q []float64) {
	spatial.PutQuat(f.fromQ(q), r.Quaternion())
}

func (f *Free) SetQFromTranslation(p r3.Vector, q []float64) {
	spatial.PutVec3(f.fromQ(q)[4:], p)
}

func (f *Free) SetUFromAngularVelocity(_ []float64, w r3.Vector, u []float64) {
	spatial.PutVec3(f.fromU(u), w)
}

func (f *Free) SetUFromLinearVelocity(_ []float64, v r3.Vector, u []float64) {
	spatial.PutVec3(f.fromU(u)[3:], v)
}

func (f *Free) ComputeTrigCache(q, _, _, qnorm []float64) {
	spatial.PutQuat(f.fromQ(qnorm), normalizeQuat(f.fromQ(q)))
}

func (f *Free) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	lq := f.fromQ(q)
	return spatial.Transform{
		R: spatial.RotationFromQuaternion(spatial.QuatFromSlice(lq)),
		P: spatial.Vec3FromSlice(lq[4:]),
	}
}

func (f *Free) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0], h[1], h[2] = angular(xAxis), angular(yAxis), angular(zAxis)
	h[3], h[4], h[5] = linear(xAxis), linear(yAxis), linear(zAxis)
}

func (f *Free) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	zeroVecs(hdot[:6])
}

func (f *Free) n(d *digest.Digest) spatial.Mat43 {
	return spatial.QuaternionN(spatial.QuatFromSlice(f.fromQ(d.QNorm())))
}

func (f *Free) ComputeQDot(d *digest.Digest, u, qdot []float64) {
	f.MultiplyByN(d, MatrixOnLeft, f.fromU(u), f.fromQ(qdot))
}

func (f *Free) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	d.Require(digest.Velocity, "ComputeQDotDot")
	lu, lud, out := f.fromU(d.U()), f.fromU(udot), f.fromQ(qdotdot)
	quatQDotDot(
		spatial.QuatFromSlice(f.fromQ(d.QNorm())),
		spatial.QuatFromSlice(f.fromQ(d.QDot())),
		spatial.Vec3FromSlice(lu),
		spatial.Vec3FromSlice(lud),
		out,
	)
	copy(out[4:], lud[3:])
}

// rotBlock returns the input and output sizes of the rotational block for
// an operator shaped like N (nShape) or like NInv. The translational block
// is always the trailing 3 entries.
func rotBlock(side Side, nShape bool) (in, out int) {
	if nShape == (side == MatrixOnLeft) {
		return 3, 4
	}
	return 4, 3
}

func (f *Free) MultiplyByN(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByN")
	i, o := rotBlock(side, true)
	quatN(f.n(d), side, in[:i], out[:o])
	copy(out[o:o+3], in[i:i+3])
}

func (f *Free) MultiplyByNInv(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByNInv")
	i, o := rotBlock(side, false)
	quatNInv(f.n(d), side, in[:i], out[:o])
	copy(out[o:o+3], in[i:i+3])
}

func (f *Free) MultiplyByNDot(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Velocity, "MultiplyByNDot")
	nd := spatial.QuaternionN(spatial.QuatFromSlice(f.fromQ(d.QDot())))
	i, o := rotBlock(side, true)
	quatN(nd, side, in[:i], out[:o])
	zero(out[o : o+3])
}
