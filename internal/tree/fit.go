package tree

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/mobilizer"
	"github.com/san-kum/mobikin/internal/spatial"
)

// FitTransform sets the coordinates of one node so that its X_FM matches x
// as nearly as the joint allows, and realizes Position. The returned
// residual combines the rotation angle error and the translation error.
func (t *Tree) FitTransform(d *digest.Digest, node int, x spatial.Transform) (float64, error) {
	b := t.bodies[node]
	q := d.Q().Clone()
	b.Mob.SetQFromRotation(x.R, q)
	b.Mob.SetQFromTranslation(x.P, q)
	d.SetQ(q)
	t.RealizePosition(d)

	got := d.Transform(node)
	residual := math.Hypot(got.R.AngleTo(x.R), got.P.Sub(x.P).Norm())
	if residual > t.tolerance {
		t.log.Warnw("transform not representable",
			"body", b.Name, "kind", b.Mob.Type(), "residual", residual)
		return residual, errors.Wrapf(ErrUnrepresentable, "body %q: transform residual %.3g", b.Name, residual)
	}
	return residual, nil
}

// FitVelocity sets the speeds of one node so that V_FM matches v (expressed
// in F) as nearly as possible, and realizes Velocity. The digest must be at
// Position or beyond. If the joint's own setters leave more error than the
// least-squares solution, the least-squares speeds are used instead.
func (t *Tree) FitVelocity(d *digest.Digest, node int, v spatial.SpatialVec) (float64, error) {
	d.Require(digest.Position, "FitVelocity")
	b := t.bodies[node]
	u := d.U().Clone()
	b.Mob.SetUFromAngularVelocity(d.Q(), v.W, u)
	b.Mob.SetUFromLinearVelocity(d.Q(), v.V, u)
	d.SetU(u)
	t.RealizeVelocity(d)
	residual := d.RelVelocity(node).Sub(v).Norm()

	if residual > t.tolerance && b.Mob.NU() > 0 {
		ls, err := t.LeastSquaresSpeeds(d, node, v)
		if err == nil {
			lo, _ := t.uRange(node)
			trial := d.U().Clone()
			copy(trial[lo:], ls)
			r := spatial.Combine(d.H()[lo:lo+len(ls)], ls).Sub(v).Norm()
			if r < residual-t.tolerance {
				d.SetU(trial)
				t.RealizeVelocity(d)
				residual = r
			}
		}
	}

	if residual > t.tolerance {
		t.log.Warnw("velocity not representable",
			"body", b.Name, "kind", b.Mob.Type(), "residual", residual)
		return residual, errors.Wrapf(ErrUnrepresentable, "body %q: velocity residual %.3g", b.Name, residual)
	}
	return residual, nil
}

// LeastSquaresSpeeds solves (H^T*H) u = H^T*v for one node using the Gram
// block cached in the digest. The digest must be at Velocity.
func (t *Tree) LeastSquaresSpeeds(d *digest.Digest, node int, v spatial.SpatialVec) ([]float64, error) {
	m := t.bodies[node].Mob
	n := m.NU()
	if n == 0 {
		return nil, nil
	}
	lo, hi := t.uRange(node)
	h := d.H()[lo:hi]
	g := mat.NewSymDense(n, nil)
	usq := d.USq()[m.USqIndex() : m.USqIndex()+n*n]
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			g.SetSym(r, c, usq[r*n+c])
		}
	}
	rhs := mat.NewVecDense(n, nil)
	for r := range h {
		rhs.SetVec(r, h[r].Dot(v))
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(g); !ok {
		return nil, errors.Errorf("tree: body %q: joint Gram matrix is not positive definite", t.bodies[node].Name)
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, rhs); err != nil {
		return nil, errors.Wrapf(err, "body %q", t.bodies[node].Name)
	}
	return x.RawVector().Data, nil
}

// Conditioning returns the largest 2-norm condition number of NInv over the
// three-angle nodes, and the node it occurs at (-1 if there is none). It
// grows without bound as a gimbal approaches lock.
func (t *Tree) Conditioning(d *digest.Digest) (float64, int) {
	d.Require(digest.Position, "Conditioning")
	worst, at := 0.0, -1
	for i, b := range t.bodies {
		_, n, ok := b.Mob.IsUsingAngles()
		if !ok || n != 3 || b.Mob.NQ() != 3 || b.Mob.NU() != 3 {
			continue
		}
		c := mat.Cond(mobilizer.NInvMatrix(b.Mob, d), 2)
		if math.IsNaN(c) {
			c = math.Inf(1)
		}
		if c > worst || at < 0 {
			worst, at = c, i
		}
	}
	return worst, at
}
