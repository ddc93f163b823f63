// Package mobilizer defines the kinematic contract between a body and its
// parent in a kinematic tree, and the joint variants that implement it.
//
// A mobilizer maps its generalized coordinates q and generalized speeds u to
// the transform X_FM of its child (M) frame in its parent (F) frame and to
// the spatial velocity V_FM = H_FM * u. The coordinate rates are related to
// the speeds by qdot = N * u, which for some variants is not the identity.
//
// # Argument conventions
//
// Arguments named q, u, udot, qdot, qdotdot, sin, cos and qnorm are the full
// tree-wide arrays; a mobilizer reads and writes only its own slot range.
// Jacobian columns and the in/out vectors of the MultiplyBy* operations are
// local to the mobilizer.
//
// # Stages
//
// Operations that depend on cached position quantities require the digest
// to be at digest.Position; rate derivative operations require
// digest.Velocity. Violations panic with a *digest.StageError.
package mobilizer

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Side selects whether a matrix multiplies a vector from the left (out = M*in)
// or from the right (out^T = in^T*M).
type Side int

const (
	MatrixOnLeft Side = iota
	MatrixOnRight
)

func (s Side) String() string {
	if s == MatrixOnRight {
		return "right"
	}
	return "left"
}

type Mobilizer interface {
	Type() string
	Node() int
	NQ() int
	NU() int
	QIndex() int
	UIndex() int
	USqIndex() int

	// IsUsingAngles reports the local range of coordinates that are angles
	// and wrap around.
	IsUsingAngles() (start, n int, ok bool)
	// IsUsingQuaternion reports the local start of a four-element unit quaternion.
	IsUsingQuaternion() (start int, ok bool)

	// SetQFromRotation writes coordinates whose transform best represents R_FM.
	SetQFromRotation(r spatial.Rotation, q []float64)
	// SetQFromTranslation writes coordinates whose transform best represents
	// p_FM. Components the joint cannot produce are dropped silently.
	SetQFromTranslation(p r3.Vector, q []float64)
	// SetUFromAngularVelocity writes speeds producing w_FM (expressed in F)
	// as nearly as the joint allows.
	SetUFromAngularVelocity(q []float64, w r3.Vector, u []float64)
	// SetUFromLinearVelocity writes speeds producing v_FM (expressed in F)
	// as nearly as the joint allows.
	SetUFromLinearVelocity(q []float64, v r3.Vector, u []float64)

	// ComputeTrigCache fills sines and cosines of angular coordinates and
	// the normalized copy of any quaternion.
	ComputeTrigCache(q, sin, cos, qnorm []float64)
	ComputeAcrossJointTransform(q []float64) spatial.Transform
	ComputeVelocityJacobian(d *digest.Digest, h []spatial.SpatialVec)
	ComputeVelocityJacobianDot(d *digest.Digest, hdot []spatial.SpatialVec)
	ComputeQDot(d *digest.Digest, u, qdot []float64)
	ComputeQDotDot(d *digest.Digest, udot, qdotdot []float64)

	// MultiplyByN computes N*in (in has NU entries, out NQ) or in^T*N
	// (in has NQ entries, out NU).
	MultiplyByN(d *digest.Digest, side Side, in, out []float64)
	// MultiplyByNInv computes NInv*in (NQ in, NU out) or in^T*NInv (NU in, NQ out).
	MultiplyByNInv(d *digest.Digest, side Side, in, out []float64)
	// MultiplyByNDot has the shape of MultiplyByN.
	MultiplyByNDot(d *digest.Digest, side Side, in, out []float64)
}

// SlotAllocator hands out node numbers and slot ranges while a tree is
// built. Every constructor advances it past the ranges it takes.
type SlotAllocator struct {
	NextNode int
	NextU    int
	NextUSq  int
	NextQ    int
}

// Layout sizes a digest for everything allocated so far.
func (a *SlotAllocator) Layout() digest.Layout {
	return digest.Layout{Nodes: a.NextNode, NQ: a.NextQ, NU: a.NextU, NUSq: a.NextUSq}
}

// Base records the slots of one mobilizer. It is embedded by every variant.
type Base struct {
	kind     string
	node     int
	qIndex   int
	uIndex   int
	uSqIndex int
	nq, nu   int
}

func newBase(kind string, alloc *SlotAllocator, nq, nu int) Base {
	if alloc == nil {
		panic("mobilizer: nil slot allocator")
	}
	b := Base{
		kind:     kind,
		node:     alloc.NextNode,
		qIndex:   alloc.NextQ,
		uIndex:   alloc.NextU,
		uSqIndex: alloc.NextUSq,
		nq:       nq,
		nu:       nu,
	}
	alloc.NextNode++
	alloc.NextQ += nq
	alloc.NextU += nu
	alloc.NextUSq += nu * nu
	return b
}

func (b *Base) Type() string  { return b.kind }
func (b *Base) Node() int     { return b.node }
func (b *Base) NQ() int       { return b.nq }
func (b *Base) NU() int       { return b.nu }
func (b *Base) QIndex() int   { return b.qIndex }
func (b *Base) UIndex() int   { return b.uIndex }
func (b *Base) USqIndex() int { return b.uSqIndex }

func (b *Base) IsUsingAngles() (start, n int, ok bool)  { return 0, 0, false }
func (b *Base) IsUsingQuaternion() (start int, ok bool) { return 0, false }

func (b *Base) fromQ(q []float64) []float64 { return q[b.qIndex : b.qIndex+b.nq] }
func (b *Base) fromU(u []float64) []float64 { return u[b.uIndex : b.uIndex+b.nu] }
