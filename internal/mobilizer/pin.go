package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Pin rotates M about the shared z axis of F and M by q0.
type Pin struct {
	Base
	identityN
}

func NewPin(alloc *SlotAllocator) *Pin {
	return &Pin{Base: newBase(KindPin, alloc, 1, 1)}
}

func (p *Pin) IsUsingAngles() (start, n int, ok bool) { return 0, 1, true }

func (p *Pin) SetQFromRotation(r spatial.Rotation, q []float64) {
	p.fromQ(q)[0] = r.OneAxisAngle(2)
}

func (p *Pin) SetQFromTranslation(r3.Vector, []float64) {}

func (p *Pin) SetUFromAngularVelocity(_ []float64, w r3.Vector, u []float64) {
	p.fromU(u)[0] = w.Z
}

func (p *Pin) SetUFromLinearVelocity([]float64, r3.Vector, []float64) {}

func (p *Pin) ComputeTrigCache(q, sin, cos, _ []float64) { p.angleSinCos(q, sin, cos, 0, 1) }

func (p *Pin) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	return spatial.Transform{R: spatial.RotationZ(p.fromQ(q)[0])}
}

func (p *Pin) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0] = angular(zAxis)
}

func (p *Pin) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	hdot[0] = spatial.SpatialVec{}
}

func (p *Pin) ComputeQDot(d *digest.Digest, u, qdot []float64) { p.qdotFromU(d, u, qdot) }

func (p *Pin) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	p.qdotdotFromUDot(d, udot, qdotdot)
}
