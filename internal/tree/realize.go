package tree

import (
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/spatial"
)

// forEachNode runs fn for every body, split across goroutines when enabled.
// fn must only touch the slots of its own node.
func (t *Tree) forEachNode(fn func(i int)) {
	if t.parChunk <= 0 {
		for i := range t.bodies {
			fn(i)
		}
		return
	}
	dynamo.ParallelFor(len(t.bodies), t.parChunk, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

func (t *Tree) uRange(i int) (lo, hi int) {
	m := t.bodies[i].Mob
	return m.UIndex(), m.UIndex() + m.NU()
}

// RealizePosition fills the trig caches and X_FM of every node from the
// digest's q, then composes the ground poses X_GB parent first.
func (t *Tree) RealizePosition(d *digest.Digest) {
	d.Invalidate(digest.Topology)
	q, sin, cos, qnorm := d.Q(), d.UpdSin(), d.UpdCos(), d.UpdQNorm()
	t.forEachNode(func(i int) {
		m := t.bodies[i].Mob
		m.ComputeTrigCache(q, sin, cos, qnorm)
		d.SetTransform(i, m.ComputeAcrossJointTransform(q))
	})
	d.Realize(digest.Position)

	for i, b := range t.bodies {
		xgp := spatial.IdentityTransform()
		if b.Parent != GroundIndex {
			xgp = d.BodyPose(b.Parent)
		}
		d.SetBodyPose(i, xgp.Compose(b.XPF).Compose(d.Transform(i)).Compose(b.XBM.Inverse()))
	}
}

// RealizeVelocity computes H, qdot, V_FM and the H^T*H blocks of every node,
// then the ground-frame body velocities parent first.
func (t *Tree) RealizeVelocity(d *digest.Digest) {
	d.Require(digest.Position, "RealizeVelocity")
	d.Invalidate(digest.Position)
	u, h, qdot, usq := d.U(), d.UpdH(), d.UpdQDot(), d.UpdUSq()
	t.forEachNode(func(i int) {
		m := t.bodies[i].Mob
		lo, hi := t.uRange(i)
		m.ComputeVelocityJacobian(d, h[lo:hi])
		m.ComputeQDot(d, u, qdot)
		d.SetRelVelocity(i, spatial.Combine(h[lo:hi], u[lo:hi]))
		gram(h[lo:hi], usq[m.USqIndex():m.USqIndex()+m.NU()*m.NU()])
	})
	d.Realize(digest.Velocity)

	for i, b := range t.bodies {
		var vgp spatial.SpatialVec
		xgp := spatial.IdentityTransform()
		if b.Parent != GroundIndex {
			vgp = d.BodyVelocity(b.Parent)
			xgp = d.BodyPose(b.Parent)
		}
		rGF := xgp.Compose(b.XPF).R
		vfm := d.RelVelocity(i)
		// B's origin relative to M, expressed in F.
		rMB := d.Transform(i).R.Apply(b.XBM.Inverse().P)
		pGB := d.BodyPose(i).P

		w := vgp.W.Add(rGF.Apply(vfm.W))
		v := vgp.V.
			Add(vgp.W.Cross(pGB.Sub(xgp.P))).
			Add(rGF.Apply(vfm.V.Add(vfm.W.Cross(rMB))))
		d.SetBodyVelocity(i, spatial.SpatialVec{W: w, V: v})
	}
}

// RealizeAcceleration computes HDot, qdotdot and A_FM = H*udot + HDot*u.
func (t *Tree) RealizeAcceleration(d *digest.Digest) {
	d.Require(digest.Velocity, "RealizeAcceleration")
	d.Invalidate(digest.Velocity)
	u, udot, h := d.U(), d.UDot(), d.H()
	hdot, qdotdot := d.UpdHDot(), d.UpdQDotDot()
	t.forEachNode(func(i int) {
		m := t.bodies[i].Mob
		lo, hi := t.uRange(i)
		m.ComputeVelocityJacobianDot(d, hdot[lo:hi])
		m.ComputeQDotDot(d, udot, qdotdot)
		a := spatial.Combine(h[lo:hi], udot[lo:hi]).Add(spatial.Combine(hdot[lo:hi], u[lo:hi]))
		d.SetRelAcceleration(i, a)
	})
	d.Realize(digest.Acceleration)
}

// Realize brings d up to stage s, recomputing every stage on the way.
func (t *Tree) Realize(d *digest.Digest, s digest.Stage) {
	if s >= digest.Position {
		t.RealizePosition(d)
	}
	if s >= digest.Velocity {
		t.RealizeVelocity(d)
	}
	if s >= digest.Acceleration {
		t.RealizeAcceleration(d)
	}
}

// gram writes the row-major n x n block H^T*H.
func gram(h []spatial.SpatialVec, out []float64) {
	n := len(h)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out[r*n+c] = h[r].Dot(h[c])
		}
	}
}
