package control

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/san-kum/mobikin/internal/dynamo"
)

func TestNone(t *testing.T) {
	u := NewNone(3).Compute(dynamo.State{1, 2}, 0)
	if len(u) != 3 || u[0] != 0 || u[1] != 0 || u[2] != 0 {
		t.Errorf("None = %v", u)
	}
}

func TestConstant(t *testing.T) {
	c := NewConstant([]float64{1, 2})
	u := c.Compute(nil, 0)
	u[0] = 99
	if got := c.Compute(nil, 0); got[0] != 1 || got[1] != 2 {
		t.Errorf("Compute leaked its buffer: %v", got)
	}
	if err := c.SetControl([]float64{3, 4}); err != nil {
		t.Fatal(err)
	}
	if got := c.Compute(nil, 1); got[0] != 3 || got[1] != 4 {
		t.Errorf("after SetControl: %v", got)
	}
	if err := c.SetControl([]float64{1}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("short control: %v", err)
	}
}

func TestServo(t *testing.T) {
	s := NewServo(3, 1, 2, 10, 0.1, 5, 0)
	u := s.Compute(dynamo.State{0, 1, 0, 0}, 0)
	if len(u) != 3 || u[2] >= 0 || u[0] != 0 || u[1] != 0 {
		t.Fatalf("first output %v", u)
	}

	// error shrinking from -1 to -0.5 over 0.1 s: derivative +5
	u = s.Compute(dynamo.State{0, 0.5, 0, 0}, 0.1)
	want := 10*(-0.5) + 0.1*(-0.05) + 5*5
	if math.Abs(u[2]-want) > 1e-12 {
		t.Errorf("second output %g, want %g", u[2], want)
	}

	s.SetParam("Target", 2)
	if s.GetParams()["Target"] != 2 {
		t.Error("SetParam did not update Target")
	}
	s.Reset()
	u = s.Compute(dynamo.State{0, 0, 0, 0}, 5)
	if u[2] != 20 {
		t.Errorf("after reset %g, want Kp*err = 20", u[2])
	}
}

func TestDamping(t *testing.T) {
	l := NewDamping(4, 3, 0.5)
	u := l.Compute(dynamo.State{1, 0, 0, 0, 2, -4, 6}, 0)
	want := dynamo.Control{-1, 2, -3}
	for i := range want {
		if u[i] != want[i] {
			t.Errorf("udot[%d] = %g, want %g", i, u[i], want[i])
		}
	}
}

func TestLinearTarget(t *testing.T) {
	l := NewLinear([][]float64{{2, 0}, {0, 1}}, dynamo.State{1})
	u := l.Compute(dynamo.State{3, 4, 100}, 0)
	if u[0] != -4 || u[1] != -4 {
		t.Errorf("udot = %v", u)
	}
}
