package mobilizer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
)

// fixture holds one mobilizer placed after a slider so its slots do not
// start at zero.
type fixture struct {
	m Mobilizer
	d *digest.Digest
}

func newFixture(t *testing.T, kind string) *fixture {
	t.Helper()
	alloc := &SlotAllocator{}
	NewSlider(alloc)
	m, err := New(kind, alloc)
	if err != nil {
		t.Fatalf("New(%q): %v", kind, err)
	}
	return &fixture{m: m, d: digest.New(alloc.Layout())}
}

// randomState draws local q and u. Angles stay clear of the gimbal
// singularity and quaternions are unit length.
func randomState(m Mobilizer, rng *rand.Rand) (q, u []float64) {
	q = make([]float64, m.NQ())
	u = make([]float64, m.NU())
	for i := range q {
		q[i] = rng.Float64()*2 - 1
	}
	for i := range u {
		u[i] = rng.Float64()*2 - 1
	}
	if start, ok := m.IsUsingQuaternion(); ok {
		e := normalizeQuat(q[start : start+4])
		spatial.PutQuat(q[start:start+4], e)
	}
	return q, u
}

func (f *fixture) global(local []float64, n, at int) []float64 {
	g := make([]float64, n)
	copy(g[at:], local)
	return g
}

func (f *fixture) localQ(g []float64) []float64 { return g[f.m.QIndex() : f.m.QIndex()+f.m.NQ()] }
func (f *fixture) localU(g []float64) []float64 { return g[f.m.UIndex() : f.m.UIndex()+f.m.NU()] }

// setQ stores local q in the digest and realizes Position.
func (f *fixture) setQ(q []float64) {
	l := f.d.Layout()
	f.d.SetQ(f.global(q, l.NQ, f.m.QIndex()))
	f.m.ComputeTrigCache(f.d.Q(), f.d.UpdSin(), f.d.UpdCos(), f.d.UpdQNorm())
	f.d.SetTransform(f.m.Node(), f.m.ComputeAcrossJointTransform(f.d.Q()))
	f.d.Realize(digest.Position)
}

// setU stores local u and realizes Velocity. Position must be realized.
func (f *fixture) setU(u []float64) {
	l := f.d.Layout()
	f.d.SetU(f.global(u, l.NU, f.m.UIndex()))
	f.m.ComputeVelocityJacobian(f.d, f.h())
	f.m.ComputeQDot(f.d, f.d.U(), f.d.UpdQDot())
	f.d.Realize(digest.Velocity)
}

func (f *fixture) h() []spatial.SpatialVec {
	return f.d.UpdH()[f.m.UIndex() : f.m.UIndex()+f.m.NU()]
}

func (f *fixture) realize(q, u []float64) {
	f.setQ(q)
	f.setU(u)
}

func (f *fixture) transformAt(q []float64) spatial.Transform {
	return f.m.ComputeAcrossJointTransform(f.global(q, f.d.Layout().NQ, f.m.QIndex()))
}

func (f *fixture) qdot() []float64 {
	return clone(f.localQ(f.d.QDot()))
}

// jacobianAt returns H at local q with local u, leaving the fixture
// realized at that state.
func (f *fixture) jacobianAt(q, u []float64) []spatial.SpatialVec {
	f.realize(q, u)
	return append([]spatial.SpatialVec(nil), f.h()...)
}

func (f *fixture) jacobianDot() []spatial.SpatialVec {
	hdot := make([]spatial.SpatialVec, f.m.NU())
	f.m.ComputeVelocityJacobianDot(f.d, hdot)
	return hdot
}

func step(q, dir []float64, h float64) []float64 {
	out := make([]float64, len(q))
	for i := range q {
		out[i] = q[i] + h*dir[i]
	}
	return out
}

func maxDiff(a, b []float64) float64 {
	m := 0.0
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}
	return m
}

// angularRate extracts w from Rdot*R^T.
func angularRate(rp, rm, r spatial.Rotation, h float64) spatial.SpatialVec {
	rdot := rp.Mat().Sub(rm.Mat()).Scale(1 / (2 * h))
	w := rdot.Mul(r.Inverse().Mat())
	return spatial.SpatialVec{W: spatial.Vec3FromSlice([]float64{
		(w[2][1] - w[1][2]) / 2,
		(w[0][2] - w[2][0]) / 2,
		(w[1][0] - w[0][1]) / 2,
	})}
}

func clone(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
