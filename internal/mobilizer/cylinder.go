package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Cylinder rotates about and translates along the shared z axis:
// q = (angle, distance).
type Cylinder struct {
	Base
	identityN
}

func NewCylinder(alloc *SlotAllocator) *Cylinder {
	return &Cylinder{Base: newBase(KindCylinder, alloc, 2, 2)}
}

func (c *Cylinder) IsUsingAngles() (start, n int, ok bool) { return 0, 1, true }

func (c *Cylinder) SetQFromRotation(r spatial.Rotation, q []float64) {
	c.fromQ(q)[0] = r.OneAxisAngle(2)
}

func (c *Cylinder) SetQFromTranslation(p r3.Vector, q []float64) {
	c.fromQ(q)[1] = p.Z
}

func (c *Cylinder) SetUFromAngularVelocity(_ []float64, w r3.Vector, u []float64) {
	c.fromU(u)[0] = w.Z
}

func (c *Cylinder) SetUFromLinearVelocity(_ []float64, v r3.Vector, u []float64) {
	c.fromU(u)[1] = v.Z
}

func (c *Cylinder) ComputeTrigCache(q, sin, cos, _ []float64) { c.angleSinCos(q, sin, cos, 0, 1) }

func (c *Cylinder) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	lq := c.fromQ(q)
	return spatial.Transform{R: spatial.RotationZ(lq[0]), P: r3.Vector{Z: lq[1]}}
}

func (c *Cylinder) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0], h[1] = angular(zAxis), linear(zAxis)
}

func (c *Cylinder) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	zeroVecs(hdot[:2])
}

func (c *Cylinder) ComputeQDot(d *digest.Digest, u, qdot []float64) { c.qdotFromU(d, u, qdot) }

func (c *Cylinder) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	c.qdotdotFromUDot(d, udot, qdotdot)
}
