package tree

import (
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/dynamo"
)

// KinematicSystem integrates a tree with prescribed accelerations. The state
// is [q; u], the control is udot and the derivative is [qdot; udot].
//
// It owns a digest and is not safe for concurrent use.
type KinematicSystem struct {
	tree *Tree
	d    *digest.Digest
}

func NewKinematicSystem(t *Tree) *KinematicSystem {
	return &KinematicSystem{tree: t, d: t.NewDigest()}
}

func (s *KinematicSystem) Tree() *Tree { return s.tree }

// Digest is realized to Velocity at the most recent state passed to Derive
// or Realize.
func (s *KinematicSystem) Digest() *digest.Digest { return s.d }

func (s *KinematicSystem) StateDim() int   { return s.tree.layout.NQ + s.tree.layout.NU }
func (s *KinematicSystem) ControlDim() int { return s.tree.layout.NU }

func (s *KinematicSystem) SplitIndex() int { return s.tree.layout.NQ }

// Split returns views of the q and u parts of x.
func (s *KinematicSystem) Split(x dynamo.State) (q, u []float64) {
	nq := s.tree.layout.NQ
	return x[:nq], x[nq:]
}

// State packs q and u into a new state vector.
func (s *KinematicSystem) State(q, u []float64) dynamo.State {
	x := make(dynamo.State, 0, s.StateDim())
	x = append(x, q...)
	return append(x, u...)
}

// Realize loads x into the digest and realizes it to Velocity.
func (s *KinematicSystem) Realize(x dynamo.State) {
	q, u := s.Split(x)
	s.d.SetQ(q)
	s.tree.RealizePosition(s.d)
	s.d.SetU(u)
	s.tree.RealizeVelocity(s.d)
}

func (s *KinematicSystem) Derive(x dynamo.State, ctrl dynamo.Control, t float64) dynamo.State {
	s.Realize(x)
	nq := s.tree.layout.NQ
	dx := make(dynamo.State, s.StateDim())
	copy(dx[:nq], s.d.QDot())
	copy(dx[nq:], ctrl)
	return dx
}

// Project renormalizes quaternions, which integration lets drift.
func (s *KinematicSystem) Project(x dynamo.State) dynamo.State {
	out := x.Clone()
	q, _ := s.Split(out)
	s.tree.NormalizeQuaternions(q)
	return out
}
