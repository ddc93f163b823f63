// Package digest holds the per-state storage shared by every node of a
// kinematic tree: the generalized coordinate and speed arrays, their
// derivatives, and the caches derived from them at each computation stage.
//
// A Digest is owned by the caller that realizes the tree. Nodes read and
// write only their own slot ranges; the stage machine guards the order in
// which quantities become valid. Asking for a quantity before its stage has
// been realized is a programming error and panics with a *StageError.
package digest

import (
	"fmt"

	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Stage orders the validity of cached quantities.
type Stage int

const (
	// Empty is the zero value: no storage has been allocated.
	Empty Stage = iota
	// Topology means slots are assigned and q, u may be read.
	Topology
	// Position means transforms and trig caches are valid for the current q.
	Position
	// Velocity means Jacobians, qdot and spatial velocities are valid for the current u.
	Velocity
	// Acceleration means qdotdot and relative accelerations are valid for the current udot.
	Acceleration
)

var stageNames = [...]string{"empty", "topology", "position", "velocity", "acceleration"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageError reports an access that the current stage does not support.
type StageError struct {
	Op   string
	Have Stage
	Need Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("digest: %s requires stage %s, have %s", e.Op, e.Need, e.Have)
}

// Layout sizes the storage of a digest.
type Layout struct {
	Nodes int
	NQ    int
	NU    int
	NUSq  int
}

type Digest struct {
	stage  Stage
	layout Layout

	q, u, udot    dynamo.State
	qdot, qdotdot dynamo.State

	sin, cos, qnorm []float64

	xfm []spatial.Transform
	xgb []spatial.Transform
	vfm []spatial.SpatialVec
	vgb []spatial.SpatialVec
	afm []spatial.SpatialVec

	h, hdot []spatial.SpatialVec
	usq     []float64
}

// New allocates storage for the layout. The digest starts at Topology with
// all coordinates and speeds zero.
func New(l Layout) *Digest {
	return &Digest{
		stage:   Topology,
		layout:  l,
		q:       make(dynamo.State, l.NQ),
		u:       make(dynamo.State, l.NU),
		udot:    make(dynamo.State, l.NU),
		qdot:    make(dynamo.State, l.NQ),
		qdotdot: make(dynamo.State, l.NQ),
		sin:     make([]float64, l.NQ),
		cos:     make([]float64, l.NQ),
		qnorm:   make([]float64, l.NQ),
		xfm:     make([]spatial.Transform, l.Nodes),
		xgb:     make([]spatial.Transform, l.Nodes),
		vfm:     make([]spatial.SpatialVec, l.Nodes),
		vgb:     make([]spatial.SpatialVec, l.Nodes),
		afm:     make([]spatial.SpatialVec, l.Nodes),
		h:       make([]spatial.SpatialVec, l.NU),
		hdot:    make([]spatial.SpatialVec, l.NU),
		usq:     make([]float64, l.NUSq),
	}
}

func (d *Digest) Stage() Stage   { return d.stage }
func (d *Digest) Layout() Layout { return d.layout }

// Require panics with a *StageError unless stage need has been realized.
func (d *Digest) Require(need Stage, op string) {
	if d == nil {
		panic(&StageError{Op: op, Have: Empty, Need: need})
	}
	if d.stage < need {
		panic(&StageError{Op: op, Have: d.stage, Need: need})
	}
}

// Realize marks stage s valid. Stages must be realized in order.
func (d *Digest) Realize(s Stage) {
	if d.stage != s-1 {
		panic(&StageError{Op: "realize " + s.String(), Have: d.stage, Need: s - 1})
	}
	d.stage = s
}

// Invalidate drops the stage to at most s.
func (d *Digest) Invalidate(s Stage) {
	if d.stage > s {
		d.stage = s
	}
}

// SetQ copies q and invalidates everything above Topology.
func (d *Digest) SetQ(q []float64) {
	d.Require(Topology, "SetQ")
	d.checkLen("SetQ", len(q), d.layout.NQ)
	copy(d.q, q)
	d.Invalidate(Topology)
}

// SetU copies u and invalidates everything above Position.
func (d *Digest) SetU(u []float64) {
	d.Require(Topology, "SetU")
	d.checkLen("SetU", len(u), d.layout.NU)
	copy(d.u, u)
	d.Invalidate(Position)
}

// SetUDot copies udot and invalidates everything above Velocity.
func (d *Digest) SetUDot(udot []float64) {
	d.Require(Topology, "SetUDot")
	d.checkLen("SetUDot", len(udot), d.layout.NU)
	copy(d.udot, udot)
	d.Invalidate(Velocity)
}

func (d *Digest) checkLen(op string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("digest: %s length %d, want %d", op, got, want))
	}
}

// Q, U and UDot are the inputs; callers must not modify the returned slices.
func (d *Digest) Q() dynamo.State    { return d.q }
func (d *Digest) U() dynamo.State    { return d.u }
func (d *Digest) UDot() dynamo.State { return d.udot }

func (d *Digest) QDot() dynamo.State {
	d.Require(Velocity, "QDot")
	return d.qdot
}

func (d *Digest) QDotDot() dynamo.State {
	d.Require(Acceleration, "QDotDot")
	return d.qdotdot
}

// Upd* return writable caches for use while realizing the next stage.
func (d *Digest) UpdQDot() dynamo.State    { return d.qdot }
func (d *Digest) UpdQDotDot() dynamo.State { return d.qdotdot }
func (d *Digest) UpdSin() []float64        { return d.sin }
func (d *Digest) UpdCos() []float64        { return d.cos }
func (d *Digest) UpdQNorm() []float64      { return d.qnorm }
func (d *Digest) UpdH() []spatial.SpatialVec {
	return d.h
}
func (d *Digest) UpdHDot() []spatial.SpatialVec {
	return d.hdot
}
func (d *Digest) UpdUSq() []float64 { return d.usq }

func (d *Digest) Sin() []float64 {
	d.Require(Position, "Sin")
	return d.sin
}

func (d *Digest) Cos() []float64 {
	d.Require(Position, "Cos")
	return d.cos
}

func (d *Digest) QNorm() []float64 {
	d.Require(Position, "QNorm")
	return d.qnorm
}

func (d *Digest) H() []spatial.SpatialVec {
	d.Require(Velocity, "H")
	return d.h
}

func (d *Digest) HDot() []spatial.SpatialVec {
	d.Require(Acceleration, "HDot")
	return d.hdot
}

func (d *Digest) USq() []float64 {
	d.Require(Velocity, "USq")
	return d.usq
}

// Transform is X_FM of node.
func (d *Digest) Transform(node int) spatial.Transform {
	d.Require(Position, "Transform")
	return d.xfm[node]
}

func (d *Digest) SetTransform(node int, x spatial.Transform) { d.xfm[node] = x }

// BodyPose is X_GB of node.
func (d *Digest) BodyPose(node int) spatial.Transform {
	d.Require(Position, "BodyPose")
	return d.xgb[node]
}

func (d *Digest) SetBodyPose(node int, x spatial.Transform) { d.xgb[node] = x }

// RelVelocity is V_FM of node, expressed in F.
func (d *Digest) RelVelocity(node int) spatial.SpatialVec {
	d.Require(Velocity, "RelVelocity")
	return d.vfm[node]
}

func (d *Digest) SetRelVelocity(node int, v spatial.SpatialVec) { d.vfm[node] = v }

// BodyVelocity is V_GB of node: angular velocity and the velocity of the
// body origin, both expressed in ground.
func (d *Digest) BodyVelocity(node int) spatial.SpatialVec {
	d.Require(Velocity, "BodyVelocity")
	return d.vgb[node]
}

func (d *Digest) SetBodyVelocity(node int, v spatial.SpatialVec) { d.vgb[node] = v }

// RelAcceleration is A_FM of node, expressed in F.
func (d *Digest) RelAcceleration(node int) spatial.SpatialVec {
	d.Require(Acceleration, "RelAcceleration")
	return d.afm[node]
}

func (d *Digest) SetRelAcceleration(node int, a spatial.SpatialVec) { d.afm[node] = a }
