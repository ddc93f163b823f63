package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Planar moves M in the x-y plane of F: q = (angle about z, x, y). The
// translation is expressed in F.
type Planar struct {
	Base
	identityN
}

func NewPlanar(alloc *SlotAllocator) *Planar {
	return &Planar{Base: newBase(KindPlanar, alloc, 3, 3)}
}

func (p *Planar) IsUsingAngles() (start, n int, ok bool) { return 0, 1, true }

func (p *Planar) SetQFromRotation(r spatial.Rotation, q []float64) {
	p.fromQ(q)[0] = r.OneAxisAngle(2)
}

func (p *Planar) SetQFromTranslation(v r3.Vector, q []float64) {
	lq := p.fromQ(q)
	lq[1], lq[2] = v.X, v.Y
}

func (p *Planar) SetUFromAngularVelocity(_ []float64, w r3.Vector, u []float64) {
	p.fromU(u)[0] = w.Z
}

func (p *Planar) SetUFromLinearVelocity(_ []float64, v r3.Vector, u []float64) {
	lu := p.fromU(u)
	lu[1], lu[2] = v.X, v.Y
}

func (p *Planar) ComputeTrigCache(q, sin, cos, _ []float64) { p.angleSinCos(q, sin, cos, 0, 1) }

func (p *Planar) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	lq := p.fromQ(q)
	return spatial.Transform{R: spatial.RotationZ(lq[0]), P: r3.Vector{X: lq[1], Y: lq[2]}}
}

func (p *Planar) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0], h[1], h[2] = angular(zAxis), linear(xAxis), linear(yAxis)
}

func (p *Planar) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	zeroVecs(hdot[:3])
}

func (p *Planar) ComputeQDot(d *digest.Digest, u, qdot []float64) { p.qdotFromU(d, u, qdot) }

func (p *Planar) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	p.qdotdotFromUDot(d, udot, qdotdot)
}
