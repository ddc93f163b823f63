package mobilizer

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/spatial"
	"gonum.org/v1/gonum/mat"
)

const fdStep = 1e-6

func TestSlotAllocation(t *testing.T) {
	type slots struct {
		Kind                    string
		Node, Q, U, USq, NQ, NU int
	}
	alloc := &SlotAllocator{}
	var got []slots
	for _, kind := range []string{KindGimbal, KindWeld, KindBall, KindPin, KindFree} {
		m, err := New(kind, alloc)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, slots{m.Type(), m.Node(), m.QIndex(), m.UIndex(), m.USqIndex(), m.NQ(), m.NU()})
	}
	want := []slots{
		{KindGimbal, 0, 0, 0, 0, 3, 3},
		{KindWeld, 1, 3, 3, 9, 0, 0},
		{KindBall, 2, 3, 3, 9, 4, 3},
		{KindPin, 3, 7, 6, 18, 1, 1},
		{KindFree, 4, 8, 7, 19, 7, 6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slot layout mismatch (-want +got):\n%s", diff)
	}
	wantLayout := digest.Layout{Nodes: 5, NQ: 15, NU: 13, NUSq: 55}
	if diff := cmp.Diff(wantLayout, alloc.Layout()); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownKind(t *testing.T) {
	alloc := &SlotAllocator{NextNode: 2, NextQ: 5}
	_, err := New("hinge", alloc)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if alloc.NextNode != 2 || alloc.NextQ != 5 {
		t.Errorf("allocator advanced on error: %+v", alloc)
	}
}

func TestKindProperties(t *testing.T) {
	tests := []struct {
		kind       string
		nq, nu     int
		angles     [2]int
		usesAngles bool
		usesQuat   bool
	}{
		{KindWeld, 0, 0, [2]int{}, false, false},
		{KindPin, 1, 1, [2]int{0, 1}, true, false},
		{KindSlider, 1, 1, [2]int{}, false, false},
		{KindCylinder, 2, 2, [2]int{0, 1}, true, false},
		{KindUniversal, 2, 2, [2]int{0, 2}, true, false},
		{KindPlanar, 3, 3, [2]int{0, 1}, true, false},
		{KindTranslation, 3, 3, [2]int{}, false, false},
		{KindGimbal, 3, 3, [2]int{0, 3}, true, false},
		{KindBall, 4, 3, [2]int{}, false, true},
		{KindFree, 7, 6, [2]int{}, false, true},
	}
	if len(tests) != len(Kinds()) {
		t.Fatalf("table covers %d kinds, registry has %d", len(tests), len(Kinds()))
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			m, err := New(tt.kind, &SlotAllocator{})
			if err != nil {
				t.Fatal(err)
			}
			if m.NQ() != tt.nq || m.NU() != tt.nu {
				t.Errorf("nq, nu = %d, %d, want %d, %d", m.NQ(), m.NU(), tt.nq, tt.nu)
			}
			start, n, ok := m.IsUsingAngles()
			if ok != tt.usesAngles || (ok && [2]int{start, n} != tt.angles) {
				t.Errorf("IsUsingAngles = %d, %d, %v", start, n, ok)
			}
			qs, ok := m.IsUsingQuaternion()
			if ok != tt.usesQuat || (ok && qs != 0) {
				t.Errorf("IsUsingQuaternion = %d, %v", qs, ok)
			}
		})
	}
}

func TestVelocityJacobianMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			for trial := 0; trial < 5; trial++ {
				q, u := randomState(f.m, rng)
				h := f.jacobianAt(q, u)
				qdot := f.qdot()
				want := spatial.Combine(h, u)

				xp := f.transformAt(step(q, qdot, fdStep))
				xm := f.transformAt(step(q, qdot, -fdStep))
				x := f.transformAt(q)
				got := angularRate(xp.R, xm.R, x.R, fdStep)
				got.V = xp.P.Sub(xm.P).Mul(1 / (2 * fdStep))

				if !got.AlmostEqual(want, 1e-6) {
					t.Errorf("trial %d: finite difference V_FM = %v, H*u = %v", trial, got, want)
				}
			}
		})
	}
}

func TestQDotMatchesMultiplyByN(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			q, u := randomState(f.m, rng)
			f.realize(q, u)
			out := make([]float64, f.m.NQ())
			f.m.MultiplyByN(f.d, MatrixOnLeft, u, out)
			if diff := cmp.Diff(out, f.qdot()); diff != "" {
				t.Errorf("ComputeQDot differs from MultiplyByN (-N*u +qdot):\n%s", diff)
			}
		})
	}
}

func TestNInvIsLeftInverseOfN(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			if f.m.NU() == 0 {
				return
			}
			q, u := randomState(f.m, rng)
			f.realize(q, u)
			n, ninv := NMatrix(f.m, f.d), NInvMatrix(f.m, f.d)

			var prod mat.Dense
			prod.Mul(ninv, n)
			if !mat.EqualApprox(&prod, eye(f.m.NU()), 1e-10) {
				t.Errorf("NInv*N = %v", mat.Formatted(&prod))
			}
			if _, quat := f.m.IsUsingQuaternion(); !quat {
				prod.Reset()
				prod.Mul(n, ninv)
				if !mat.EqualApprox(&prod, eye(f.m.NQ()), 1e-10) {
					t.Errorf("N*NInv = %v", mat.Formatted(&prod))
				}
			}
		})
	}
}

func TestRightMultiplyIsTransposeOfLeft(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			if f.m.NU() == 0 {
				return
			}
			q, u := randomState(f.m, rng)
			f.realize(q, u)

			ops := []struct {
				name  string
				full  *mat.Dense
				apply func(side Side, in, out []float64)
			}{
				{"N", NMatrix(f.m, f.d), func(s Side, in, out []float64) { f.m.MultiplyByN(f.d, s, in, out) }},
				{"NInv", NInvMatrix(f.m, f.d), func(s Side, in, out []float64) { f.m.MultiplyByNInv(f.d, s, in, out) }},
				{"NDot", NDotMatrix(f.m, f.d), func(s Side, in, out []float64) { f.m.MultiplyByNDot(f.d, s, in, out) }},
			}
			for _, op := range ops {
				rows, cols := op.full.Dims()
				in := make([]float64, rows)
				for i := range in {
					in[i] = rng.Float64()*2 - 1
				}
				got := make([]float64, cols)
				op.apply(MatrixOnRight, in, got)

				want := mat.NewVecDense(cols, nil)
				want.MulVec(op.full.T(), mat.NewVecDense(rows, in))
				if d := maxDiff(got, want.RawVector().Data); d > 1e-12 {
					t.Errorf("%s: right multiply differs from transpose by %g", op.name, d)
				}
			}
		})
	}
}

func TestNDotMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			if f.m.NU() == 0 {
				return
			}
			q, u := randomState(f.m, rng)
			f.realize(q, u)
			ndot := NDotMatrix(f.m, f.d)
			qdot := f.qdot()

			f.realize(step(q, qdot, fdStep), u)
			np := NMatrix(f.m, f.d)
			f.realize(step(q, qdot, -fdStep), u)
			nm := NMatrix(f.m, f.d)

			var fd mat.Dense
			fd.Sub(np, nm)
			fd.Scale(1/(2*fdStep), &fd)
			if !mat.EqualApprox(&fd, ndot, 1e-6) {
				t.Errorf("NDot = %v\nfinite difference = %v", mat.Formatted(ndot), mat.Formatted(&fd))
			}
		})
	}
}

func TestVelocityJacobianDotMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			q, u := randomState(f.m, rng)
			f.realize(q, u)
			hdot := f.jacobianDot()
			qdot := f.qdot()

			hp := f.jacobianAt(step(q, qdot, fdStep), u)
			hm := f.jacobianAt(step(q, qdot, -fdStep), u)
			for i := range hdot {
				fd := hp[i].Sub(hm[i]).Scale(1 / (2 * fdStep))
				if !fd.AlmostEqual(hdot[i], 1e-6) {
					t.Errorf("column %d: HDot = %v, finite difference = %v", i, hdot[i], fd)
				}
			}
		})
	}
}

func TestQDotDot(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			q, u := randomState(f.m, rng)
			_, udot := randomState(f.m, rng)
			f.realize(q, u)
			qdot := f.qdot()

			l := f.d.Layout()
			qdd := make([]float64, l.NQ)
			f.m.ComputeQDotDot(f.d, f.global(udot, l.NU, f.m.UIndex()), qdd)
			got := f.localQ(qdd)

			// qddot = NDot*u + N*udot
			a := make([]float64, f.m.NQ())
			b := make([]float64, f.m.NQ())
			f.m.MultiplyByNDot(f.d, MatrixOnLeft, u, a)
			f.m.MultiplyByN(f.d, MatrixOnLeft, udot, b)
			for i := range a {
				a[i] += b[i]
			}
			if d := maxDiff(got, a); d > 1e-12 {
				t.Errorf("ComputeQDotDot differs from NDot*u + N*udot by %g", d)
			}

			// qddot is the rate of qdot along q(t) = q + t*qdot, u(t) = u + t*udot.
			f.realize(step(q, qdot, fdStep), step(u, udot, fdStep))
			qp := f.qdot()
			f.realize(step(q, qdot, -fdStep), step(u, udot, -fdStep))
			qm := f.qdot()
			fd := step(qp, qm, -1)
			for i := range fd {
				fd[i] /= 2 * fdStep
			}
			if d := maxDiff(got, fd); d > 1e-6 {
				t.Errorf("ComputeQDotDot differs from finite difference by %g: %v vs %v", d, got, fd)
			}
		})
	}
}

func TestSetQRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			q, _ := randomState(f.m, rng)
			want := f.transformAt(q)

			g := make([]float64, f.d.Layout().NQ)
			f.m.SetQFromRotation(want.R, g)
			f.m.SetQFromTranslation(want.P, g)
			got := f.m.ComputeAcrossJointTransform(g)
			if !got.AlmostEqual(want, 1e-12) {
				t.Errorf("X_FM after round trip = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSetURoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			q, u := randomState(f.m, rng)
			v := spatial.Combine(f.jacobianAt(q, u), u)

			l := f.d.Layout()
			gq := f.global(q, l.NQ, f.m.QIndex())
			gu := make([]float64, l.NU)
			f.m.SetUFromAngularVelocity(gq, v.W, gu)
			f.m.SetUFromLinearVelocity(gq, v.V, gu)
			if d := maxDiff(f.localU(gu), u); d > 1e-12 {
				t.Errorf("u after round trip = %v, want %v", f.localU(gu), u)
			}
		})
	}
}

func TestUnrepresentableComponentsAreIgnored(t *testing.T) {
	tests := []struct {
		kind string
		set  func(m Mobilizer, q, u []float64)
	}{
		{KindPin, func(m Mobilizer, q, u []float64) { m.SetQFromTranslation(spatial.Vec3FromSlice([]float64{1, 2, 3}), q) }},
		{KindSlider, func(m Mobilizer, q, u []float64) { m.SetQFromRotation(spatial.RotationX(1), q) }},
		{KindGimbal, func(m Mobilizer, q, u []float64) { m.SetQFromTranslation(spatial.Vec3FromSlice([]float64{1, 2, 3}), q) }},
		{KindGimbal, func(m Mobilizer, q, u []float64) {
			m.SetUFromLinearVelocity(q, spatial.Vec3FromSlice([]float64{1, 2, 3}), u)
		}},
		{KindBall, func(m Mobilizer, q, u []float64) {
			m.SetUFromLinearVelocity(q, spatial.Vec3FromSlice([]float64{1, 0, 0}), u)
		}},
		{KindTranslation, func(m Mobilizer, q, u []float64) {
			m.SetUFromAngularVelocity(q, spatial.Vec3FromSlice([]float64{0, 0, 1}), u)
		}},
		{KindWeld, func(m Mobilizer, q, u []float64) { m.SetQFromRotation(spatial.RotationZ(1), q) }},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			m, err := New(tt.kind, &SlotAllocator{})
			if err != nil {
				t.Fatal(err)
			}
			q := make([]float64, m.NQ())
			u := make([]float64, m.NU())
			for i := range q {
				q[i] = 0.25
			}
			for i := range u {
				u[i] = -0.5
			}
			wantQ, wantU := clone(q), clone(u)
			tt.set(m, q, u)
			if diff := cmp.Diff(wantQ, q); diff != "" {
				t.Errorf("q changed (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantU, u); diff != "" {
				t.Errorf("u changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStageRequirements(t *testing.T) {
	f := newFixture(t, KindGimbal)
	q := []float64{0.1, 0.2, 0.3}
	u := []float64{1, 2, 3}
	out := make([]float64, 3)

	expectStage := func(name string, need digest.Stage, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			err, ok := r.(error)
			var se *digest.StageError
			if !ok || !errors.As(err, &se) {
				t.Errorf("%s: expected *digest.StageError panic, got %v", name, r)
				return
			}
			if se.Need != need {
				t.Errorf("%s: need = %v, want %v", name, se.Need, need)
			}
		}()
		fn()
	}

	expectStage("ComputeQDot", digest.Position, func() { f.m.ComputeQDot(f.d, f.d.U(), f.d.UpdQDot()) })
	expectStage("MultiplyByNInv", digest.Position, func() { f.m.MultiplyByNInv(f.d, MatrixOnLeft, q, out) })
	expectStage("ComputeVelocityJacobian", digest.Position, func() { f.m.ComputeVelocityJacobian(f.d, f.h()) })

	f.setQ(q)
	expectStage("MultiplyByNDot", digest.Velocity, func() { f.m.MultiplyByNDot(f.d, MatrixOnLeft, u, out) })
	expectStage("ComputeQDotDot", digest.Velocity, func() { f.m.ComputeQDotDot(f.d, f.d.UDot(), f.d.UpdQDotDot()) })
	expectStage("nil digest", digest.Position, func() { f.m.MultiplyByN(nil, MatrixOnLeft, u, out) })
}

func TestSlotIsolation(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t, kind)
			q, u := randomState(f.m, rng)
			f.realize(q, u)
			l := f.d.Layout()
			qdot := make([]float64, l.NQ)
			for i := range qdot {
				qdot[i] = math.NaN()
			}
			f.m.ComputeQDot(f.d, f.d.U(), qdot)
			for i, v := range qdot {
				inside := i >= f.m.QIndex() && i < f.m.QIndex()+f.m.NQ()
				if inside == math.IsNaN(v) {
					t.Errorf("qdot[%d] = %v; mobilizer owns [%d, %d)", i, v, f.m.QIndex(), f.m.QIndex()+f.m.NQ())
				}
			}
		})
	}
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
