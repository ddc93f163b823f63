package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Gimbal is a three-angle orientation joint. The coordinates are body-fixed
// X-Y-Z Euler angles, R_FM = Rx(q0)*Ry(q1)*Rz(q2), and the speeds are the
// angular velocity w_FM expressed in F. It has no translation.
//
// The angle rates are qdot = N_B * R_FM^T * u where N_B is the body-frame
// rate matrix of the angle sequence. N_B is singular at |q1| = pi/2; the
// conditioning of N grows without bound as the middle angle approaches it.
type Gimbal struct {
	Base
}

func NewGimbal(alloc *SlotAllocator) *Gimbal {
	return &Gimbal{Base: newBase(KindGimbal, alloc, 3, 3)}
}

func (g *Gimbal) IsUsingAngles() (start, n int, ok bool) { return 0, 3, true }

func (g *Gimbal) SetQFromRotation(r spatial.Rotation, q []float64) {
	spatial.PutVec3(g.fromQ(q), r.BodyFixedXYZ())
}

// SetQFromTranslation is a no-op; a gimbal cannot translate.
func (g *Gimbal) SetQFromTranslation(r3.Vector, []float64) {}

func (g *Gimbal) SetUFromAngularVelocity(_ []float64, w r3.Vector, u []float64) {
	spatial.PutVec3(g.fromU(u), w)
}

func (g *Gimbal) SetUFromLinearVelocity([]float64, r3.Vector, []float64) {}

func (g *Gimbal) ComputeTrigCache(q, sin, cos, _ []float64) {
	g.angleSinCos(q, sin, cos, 0, 3)
}

func (g *Gimbal) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	return spatial.Transform{R: spatial.NewRotationBodyFixedXYZ(spatial.Vec3FromSlice(g.fromQ(q)))}
}

// ComputeVelocityJacobian writes the three parent-frame unit rotations.
func (g *Gimbal) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0], h[1], h[2] = angular(xAxis), angular(yAxis), angular(zAxis)
}

func (g *Gimbal) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	zeroVecs(hdot[:3])
}

func (g *Gimbal) rates(d *digest.Digest) spatial.BodyXYZ {
	return spatial.BodyXYZFromSinCos(g.fromQ(d.Sin()), g.fromQ(d.Cos()))
}

func (g *Gimbal) rotation(d *digest.Digest) spatial.Rotation {
	return d.Transform(g.node).R
}

// ComputeQDot re-expresses u in M and converts it to angle rates. It shares
// MultiplyByN's arithmetic so the two agree exactly.
func (g *Gimbal) ComputeQDot(d *digest.Digest, u, qdot []float64) {
	g.MultiplyByN(d, MatrixOnLeft, g.fromU(u), g.fromQ(qdot))
}

func (g *Gimbal) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	g.QDotDot(d, g.fromU(udot), g.fromQ(qdotdot))
}

// QDotDot is ComputeQDotDot on node-local udot and qdotdot, each of length 3.
func (g *Gimbal) QDotDot(d *digest.Digest, udot, qdotdot []float64) {
	d.Require(digest.Velocity, "QDotDot")
	r := g.rotation(d)
	wB := r.ApplyInverse(spatial.Vec3FromSlice(g.fromU(d.U())))
	wDotB := r.ApplyInverse(spatial.Vec3FromSlice(udot))
	spatial.PutVec3(qdotdot, g.rates(d).QDotDot(wB, wDotB))
}

// MultiplyByN applies N = N_B * R_FM^T.
func (g *Gimbal) MultiplyByN(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByN")
	rT := g.rotation(d).Inverse().Mat()
	spatial.PutVec3(out, sandwich(side, g.rates(d).N(), rT, spatial.Vec3FromSlice(in)))
}

// MultiplyByNInv applies NInv = R_FM * NInv_B.
func (g *Gimbal) MultiplyByNInv(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByNInv")
	r := g.rotation(d).Mat()
	spatial.PutVec3(out, sandwich(side, r, g.rates(d).NInv(), spatial.Vec3FromSlice(in)))
}

// MultiplyByNDot applies NDot = NDot_B*R^T - N_B*R^T*[w_FM]x. The second term
// is the rate of R^T and vanishes when applied to u itself.
func (g *Gimbal) MultiplyByNDot(d *digest.Digest, side Side, in, out []float64) {
	d.Require(digest.Velocity, "MultiplyByNDot")
	b := g.rates(d)
	rT := g.rotation(d).Inverse().Mat()
	w := spatial.Vec3FromSlice(g.fromU(d.U()))
	qdot := spatial.Vec3FromSlice(g.fromQ(d.QDot()))
	v := spatial.Vec3FromSlice(in)
	first := sandwich(side, b.NDot(qdot), rT, v)
	second := sandwich(side, b.N(), rT.Mul(spatial.Skew(w)), v)
	spatial.PutVec3(out, first.Sub(second))
}
