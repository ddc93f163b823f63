package tree

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/mobilizer"
	"github.com/san-kum/mobikin/internal/spatial"
)

func TestKinematicSystemDerive(t *testing.T) {
	tr, _ := build(t,
		bodySpec{"g", Ground, mobilizer.KindGimbal, spatial.IdentityTransform(), spatial.IdentityTransform()},
		bodySpec{"s", "g", mobilizer.KindSlider, spatial.IdentityTransform(), spatial.IdentityTransform()},
	)
	sys := NewKinematicSystem(tr)
	if sys.StateDim() != 8 || sys.ControlDim() != 4 {
		t.Fatalf("dims = %d, %d", sys.StateDim(), sys.ControlDim())
	}
	x := sys.State([]float64{math.Pi / 2, 0, 0, 0.5}, []float64{0, 0, 1, 2})
	dx := sys.Derive(x, dynamo.Control{1, 2, 3, 4}, 0)

	want := dynamo.State{0, 1, 0, 2, 1, 2, 3, 4}
	for i := range want {
		if math.Abs(dx[i]-want[i]) > 1e-15 {
			t.Errorf("dx[%d] = %g, want %g", i, dx[i], want[i])
		}
	}
}

func TestKinematicSystemProject(t *testing.T) {
	tr, _ := build(t, bodySpec{"b", Ground, mobilizer.KindBall, spatial.IdentityTransform(), spatial.IdentityTransform()})
	sys := NewKinematicSystem(tr)
	x := dynamo.State{0, 0, 0, 2, 1, 2, 3}
	p := sys.Project(x)
	if x[3] != 2 {
		t.Error("Project modified its input")
	}
	q, u := sys.Split(p)
	if q[3] != 1 || u[0] != 1 || u[2] != 3 {
		t.Errorf("projected state = %v", p)
	}
}

func TestKinematicSystemMatchesRotationRate(t *testing.T) {
	tr, _ := build(t, bodySpec{"b", Ground, mobilizer.KindBall, spatial.IdentityTransform(), spatial.IdentityTransform()})
	sys := NewKinematicSystem(tr)
	e := spatial.RotationAboutAxis(r3.Vector{X: 1, Y: 1}.Normalize(), 0.8).Quaternion()
	w := r3.Vector{X: 0.1, Y: -0.4, Z: 0.9}
	qa := spatial.Quat4(e)
	x := sys.State(qa[:], []float64{w.X, w.Y, w.Z})
	dx := sys.Derive(x, nil, 0)
	want := spatial.Quat4(spatial.QuaternionRate(e, w))
	for i := 0; i < 4; i++ {
		if math.Abs(dx[i]-want[i]) > 1e-15 {
			t.Errorf("qdot[%d] = %g, want %g", i, dx[i], want[i])
		}
	}
}
