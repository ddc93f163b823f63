package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Weld rigidly attaches M to F. X_FM is the identity and it owns no slots.
type Weld struct {
	Base
	identityN
}

func NewWeld(alloc *SlotAllocator) *Weld {
	return &Weld{Base: newBase(KindWeld, alloc, 0, 0)}
}

func (w *Weld) SetQFromRotation(spatial.Rotation, []float64)            {}
func (w *Weld) SetQFromTranslation(r3.Vector, []float64)                {}
func (w *Weld) SetUFromAngularVelocity([]float64, r3.Vector, []float64) {}
func (w *Weld) SetUFromLinearVelocity([]float64, r3.Vector, []float64)  {}
func (w *Weld) ComputeTrigCache(_, _, _, _ []float64)                   {}

func (w *Weld) ComputeAcrossJointTransform([]float64) spatial.Transform {
	return spatial.IdentityTransform()
}

func (w *Weld) ComputeVelocityJacobian(d *digest.Digest, _ []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
}

func (w *Weld) ComputeVelocityJacobianDot(d *digest.Digest, _ []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
}

func (w *Weld) ComputeQDot(d *digest.Digest, u, qdot []float64) { w.qdotFromU(d, u, qdot) }

func (w *Weld) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	w.qdotdotFromUDot(d, udot, qdotdot)
}
