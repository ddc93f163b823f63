package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Translation is a free translation with fixed orientation: q = p_FM, u = v_FM.
type Translation struct {
	Base
	identityN
}

func NewTranslation(alloc *SlotAllocator) *Translation {
	return &Translation{Base: newBase(KindTranslation, alloc, 3, 3)}
}

func (t *Translation) SetQFromRotation(spatial.Rotation, []float64) {}

func (t *Translation) SetQFromTranslation(p r3.Vector, q []float64) {
	spatial.PutVec3(t.fromQ(q), p)
}

func (t *Translation) SetUFromAngularVelocity([]float64, r3.Vector, []float64) {}

func (t *Translation) SetUFromLinearVelocity(_ []float64, v r3.Vector, u []float64) {
	spatial.PutVec3(t.fromU(u), v)
}

func (t *Translation) ComputeTrigCache(_, _, _, _ []float64) {}

func (t *Translation) ComputeAcrossJointTransform(q []float64) spatial.Transform {
	return spatial.Transform{R: spatial.IdentityRotation(), P: spatial.Vec3FromSlice(t.fromQ(q))}
}

func (t *Translation) ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobian")
	h[0], h[1], h[2] = linear(xAxis), linear(yAxis), linear(zAxis)
}

func (t *Translation) ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec) {
	d.Require(digest.Position, "ComputeVelocityJacobianDot")
	zeroVecs(hdot[:3])
}

func (t *Translation) ComputeQDot(d *digest.Digest, u, qdot []float64) { t.qdotFromU(d, u, qdot) }

func (t *Translation) ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64) {
	t.qdotdotFromUDot(d, udot, qdotdot)
}
