package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Slider translates M along the shared x axis of F and M.
type Slider struct {
	Base
	identityN
}

func NewSlider(alloc *SlotAllocator) *Slider {
	return &Slider{Base: newBase(KindSlider, alloc, 1, 1)}
}

func (s *Slider) SetQFromRotation(spatial.Rotation, []float64) {}

func (s *Slider) SetQFromTranslation(p r3.Vector, q []float64) {
	s.fromQ(q)[0] = p.X
}

func (s *Slider) SetUFromAngularVelocity([]float64, r3.Vector, []float64) {}

func (s *Slider) SetUFromLinearVelocity(_ []float64, v r3.Vector, u []float64) {
	s.fromU(u)[0] = v.X
}

func (s *Slider) ComputeTrigCache(_, _, _, _ []float64) {}

func (s *Slider) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	return spatial.Transform{R: spatial.IdentityRotation(), P: r3.Vector{X: s.fromQ(q)[0]}}
}

func (s *Slider) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0] = linear(xAxis)
}

func (s *Slider) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	hdot[0] = spatial.SpatialVec{}
}

func (s *Slider) ComputeQDot(d *digest.Digest, u, qdot []float64) { s.qdotFromU(d, u, qdot) }

func (s *Slider) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	s.qdotdotFromUDot(d, udot, qdotdot)
}
