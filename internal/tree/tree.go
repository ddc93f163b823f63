// Package tree assembles mobilizers into a kinematic tree and realizes the
// position, velocity and acceleration stages of a digest for it. It models
// kinematics only: bodies carry no mass and no forces are applied.
package tree

import (
	"maps"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/mobilizer"
	"github.com/san-kum/mobikin/internal/spatial"
)

// Ground is the parent name and index of bodies attached to the ground frame.
const (
	Ground      = "ground"
	GroundIndex = -1
)

// FitTolerance is the residual above which a fit is reported as unrepresentable.
const FitTolerance = 1e-9

// Body is one node of the tree. F is fixed on the parent at XPF and M is
// fixed on this body at XBM.
type Body struct {
	Name   string
	Parent int
	Mob    mobilizer.Mobilizer
	XPF    spatial.Transform
	XBM    spatial.Transform
}

type Tree struct {
	bodies    []Body
	byName    map[string]int
	layout    digest.Layout
	log       *zap.SugaredLogger
	parChunk  int
	tolerance float64
}

type Builder struct {
	log    *zap.SugaredLogger
	alloc  mobilizer.SlotAllocator
	bodies []Body
	byName map[string]int
}

func NewBuilder(log *zap.SugaredLogger) *Builder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Builder{log: log, byName: make(map[string]int)}
}

// AddBody appends a body. Parents must be added before their children; use
// Ground (or "") for bodies attached to the ground frame.
func (b *Builder) AddBody(name, parent, kind string, xPF, xBM spatial.Transform) (int, error) {
	if name == "" || name == Ground {
		return 0, errors.Errorf("tree: invalid body name %q", name)
	}
	if _, dup := b.byName[name]; dup {
		return 0, errors.Wrapf(ErrDuplicateBody, "%q", name)
	}
	p := GroundIndex
	if parent != "" && parent != Ground {
		idx, ok := b.byName[parent]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownParent, "%q (parent of %q)", parent, name)
		}
		p = idx
	}
	m, err := mobilizer.New(kind, &b.alloc)
	if err != nil {
		return 0, errors.Wrapf(err, "body %q", name)
	}

	idx := len(b.bodies)
	b.bodies = append(b.bodies, Body{Name: name, Parent: p, Mob: m, XPF: xPF, XBM: xBM})
	b.byName[name] = idx
	b.log.Debugw("added body",
		"name", name, "kind", kind, "node", m.Node(), "parent", p,
		"q", m.QIndex(), "nq", m.NQ(), "u", m.UIndex(), "nu", m.NU(), "usq", m.USqIndex())
	return idx, nil
}

// Build freezes the tree and returns a digest sized for it, at Topology.
// Bodies added to the builder afterwards do not reach the returned tree.
func (b *Builder) Build() (*Tree, *digest.Digest) {
	t := &Tree{
		bodies:    append([]Body(nil), b.bodies...),
		byName:    maps.Clone(b.byName),
		layout:    b.alloc.Layout(),
		log:       b.log,
		tolerance: FitTolerance,
	}
	b.log.Infow("built tree", "bodies", len(t.bodies), "nq", t.layout.NQ, "nu", t.layout.NU)
	return t, t.NewDigest()
}

// NewDigest returns a fresh digest with the default coordinates loaded.
func (t *Tree) NewDigest() *digest.Digest {
	d := digest.New(t.layout)
	d.SetQ(t.DefaultQ())
	return d
}

// SetParallel realizes per-node caches on several goroutines once the tree
// has more than minChunk bodies. Zero disables it.
func (t *Tree) SetParallel(minChunk int) { t.parChunk = minChunk }

func (t *Tree) Len() int              { return len(t.bodies) }
func (t *Tree) Layout() digest.Layout { return t.layout }
func (t *Tree) Body(i int) Body       { return t.bodies[i] }

func (t *Tree) Bodies() []Body {
	out := make([]Body, len(t.bodies))
	copy(out, t.bodies)
	return out
}

func (t *Tree) Lookup(name string) (int, error) {
	idx, ok := t.byName[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownBody, "%q", name)
	}
	return idx, nil
}

// DefaultQ is all zeros except for identity quaternions.
func (t *Tree) DefaultQ() []float64 {
	q := make([]float64, t.layout.NQ)
	for _, b := range t.bodies {
		if start, ok := b.Mob.IsUsingQuaternion(); ok {
			q[b.Mob.QIndex()+start] = 1
		}
	}
	return q
}

// NormalizeQuaternions rescales every quaternion block of q to unit length.
func (t *Tree) NormalizeQuaternions(q []float64) {
	for _, b := range t.bodies {
		start, ok := b.Mob.IsUsingQuaternion()
		if !ok {
			continue
		}
		blk := q[b.Mob.QIndex()+start : b.Mob.QIndex()+start+4]
		spatial.PutQuat(blk, spatial.UnitQuaternion(spatial.QuatFromSlice(blk)))
	}
}
