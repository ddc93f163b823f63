package digest

import (
	"errors"
	"testing"
)

func expectStagePanic(t *testing.T, need Stage, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
		var se *StageError
		if !errors.As(err, &se) {
			t.Fatalf("panic %v is not a StageError", err)
		}
		if se.Need != need {
			t.Errorf("need = %s, want %s", se.Need, need)
		}
	}()
	fn()
}

func TestStageOrdering(t *testing.T) {
	d := New(Layout{Nodes: 1, NQ: 3, NU: 3, NUSq: 9})
	if d.Stage() != Topology {
		t.Fatalf("new digest at %s", d.Stage())
	}

	expectStagePanic(t, Position, func() { d.Transform(0) })
	expectStagePanic(t, Velocity, func() { d.QDot() })
	expectStagePanic(t, Velocity, func() { d.Realize(Acceleration) })

	d.Realize(Position)
	d.Realize(Velocity)
	_ = d.QDot()
	d.Realize(Acceleration)
	_ = d.QDotDot()
}

func TestSettersInvalidate(t *testing.T) {
	tests := []struct {
		name string
		set  func(d *Digest)
		want Stage
	}{
		{"q", func(d *Digest) { d.SetQ([]float64{1, 2, 3}) }, Topology},
		{"u", func(d *Digest) { d.SetU([]float64{1, 2, 3}) }, Position},
		{"udot", func(d *Digest) { d.SetUDot([]float64{1, 2, 3}) }, Velocity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(Layout{Nodes: 1, NQ: 3, NU: 3})
			d.Realize(Position)
			d.Realize(Velocity)
			d.Realize(Acceleration)
			tt.set(d)
			if d.Stage() != tt.want {
				t.Errorf("stage after set = %s, want %s", d.Stage(), tt.want)
			}
		})
	}
}

func TestSetQCopies(t *testing.T) {
	d := New(Layout{NQ: 2})
	q := []float64{1, 2}
	d.SetQ(q)
	q[0] = 99
	if d.Q()[0] != 1 {
		t.Error("SetQ did not copy its input")
	}
}

func TestZeroDigestPanics(t *testing.T) {
	var d *Digest
	expectStagePanic(t, Topology, func() { d.Require(Topology, "test") })
	expectStagePanic(t, Topology, func() { (&Digest{}).SetQ(nil) })
}

func TestStageString(t *testing.T) {
	if Velocity.String() != "velocity" {
		t.Errorf("Velocity.String() = %q", Velocity.String())
	}
	err := &StageError{Op: "QDot", Have: Position, Need: Velocity}
	if err.Error() != "digest: QDot requires stage velocity, have position" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
