package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/spatial"
)

var (
	xAxis = r3.Vector{X: 1}
	yAxis = r3.Vector{Y: 1}
	zAxis = r3.Vector{Z: 1}
)

func angular(axis r3.Vector) spatial.SpatialVec { return spatial.SpatialVec{W: axis} }
func linear(axis r3.Vector) spatial.SpatialVec  { return spatial.SpatialVec{V: axis} }

// sandwich applies the product a*b to v from the given side:
// left (a*b)*v, right v^T*(a*b). The product is never formed.
func sandwich(side Side, a, b spatial.Mat33, v r3.Vector) r3.Vector {
	if side == MatrixOnRight {
		return b.RowMul(a.RowMul(v))
	}
	return a.MulVec(b.MulVec(v))
}

// identityN covers the variants whose speeds are the coordinate rates.
type identityN struct{}

func (identityN) MultiplyByN(d *digest.Digest, _ Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByN")
	copy(out, in)
}

func (identityN) MultiplyByNInv(d *digest.Digest, _ Side, in, out []float64) {
	d.Require(digest.Position, "MultiplyByNInv")
	copy(out, in)
}

func (identityN) MultiplyByNDot(d *digest.Digest, _ Side, _, out []float64) {
	d.Require(digest.Velocity, "MultiplyByNDot")
	zero(out)
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}

func zeroVecs(s []spatial.SpatialVec) {
	for i := range s {
		s[i] = spatial.SpatialVec{}
	}
}

// qdotFromU is the shared q = u kinematics.
func (b *Base) qdotFromU(d *digest.Digest, u, qdot []float64) {
	d.Require(digest.Position, "ComputeQDot")
	copy(b.fromQ(qdot), b.fromU(u))
}

func (b *Base) qdotdotFromUDot(d *digest.Digest, udot, qdotdot []float64) {
	d.Require(digest.Velocity, "ComputeQDotDot")
	copy(b.fromQ(qdotdot), b.fromU(udot))
}

// angleSinCos fills the trig cache for n angles starting at local index start.
func (b *Base) angleSinCos(q, sin, cos []float64, start, n int) {
	lo, hi := b.qIndex+start, b.qIndex+start+n
	dynamo.SinCos(q[lo:hi], sin[lo:hi], cos[lo:hi])
}
