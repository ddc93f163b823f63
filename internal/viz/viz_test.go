package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mobikin/internal/control"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/integrators"
	"github.com/san-kum/mobikin/internal/mobilizer"
	"github.com/san-kum/mobikin/internal/spatial"
	"github.com/san-kum/mobikin/internal/tree"
)

func gimbalModel(t *testing.T) Model {
	t.Helper()
	b := tree.NewBuilder(nil)
	id := spatial.IdentityTransform()
	link := spatial.NewTransform(spatial.IdentityRotation(), r3.Vector{X: 1})
	if _, err := b.AddBody("rotor", tree.Ground, mobilizer.KindGimbal, id, id); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddBody("tip", "rotor", mobilizer.KindPin, link, id); err != nil {
		t.Fatal(err)
	}
	tr, _ := b.Build()
	sys := tree.NewKinematicSystem(tr)
	x0 := dynamo.State{0, 0.3, 0, 0, 0.5, 0, 1, 0.2}
	return NewModel(sys, integrators.NewRK4(), control.NewNone(sys.ControlDim()), x0, 0.01, "gimbal")
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.Dots(); w != 8 || h != 8 {
		t.Fatalf("dots = %dx%d", w, h)
	}
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("dot (%d,%d) not set", i, i)
		}
	}
	if c.IsSet(7, 0) {
		t.Error("off-line dot set")
	}
	c.Set(100, 100)
	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("clear left dots behind")
	}
}

func TestCameraProjectsOriginToCenter(t *testing.T) {
	cam := NewCamera()
	x, y, _, ok := cam.Project(r3.Vector{}, 40, 20)
	if !ok || x != 20 || y != 10 {
		t.Errorf("origin projected to (%d,%d) visible=%v", x, y, ok)
	}
	cam.Distance = 1
	if _, _, _, ok := cam.Project(cam.View.ApplyInverse(r3.Vector{Z: 5}), 40, 20); ok {
		t.Error("point behind the eye reported visible")
	}
}

func TestTickAdvancesAndPauses(t *testing.T) {
	m := gimbalModel(t)
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	if len(m.history) != 2 || m.t < 0.0199 {
		t.Fatalf("after two ticks: t=%g history=%d", m.t, len(m.history))
	}
	if m.history[1].Conditioning <= 1 {
		t.Errorf("conditioning at nonzero pitch = %g, want > 1", m.history[1].Conditioning)
	}

	m = update(m, key(" "))
	before := m.t
	m = update(m, TickMsg{})
	if m.t != before {
		t.Error("paused model advanced")
	}
}

func TestScrubAndReset(t *testing.T) {
	m := gimbalModel(t)
	for i := 0; i < 5; i++ {
		m = update(m, TickMsg{})
	}
	m = update(m, key("["))
	x, tm := m.shown()
	if m.running || tm != m.history[3].Time || x[0] != m.history[3].State[0] {
		t.Errorf("scrub back: running=%v t=%g", m.running, tm)
	}

	m = update(m, key("r"))
	if m.t != 0 || len(m.history) != 0 || !m.running || m.playHead != -1 {
		t.Errorf("reset: t=%g history=%d running=%v", m.t, len(m.history), m.running)
	}
	if m.state[1] != 0.3 {
		t.Errorf("reset state = %v", m.state)
	}
}

func TestViewListsBodies(t *testing.T) {
	m := gimbalModel(t)
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	v := m.View()
	for _, want := range []string{"GIMBAL", "rotor", "tip", "gimbal", "pin", "RUNNING"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = update(m, key("?"))
	if !strings.Contains(m.View(), "KEYS") {
		t.Error("help overlay not shown")
	}
}

func TestOrbitKeys(t *testing.T) {
	m := gimbalModel(t)
	start := m.camera.View
	m = update(m, key("x"))
	m = update(m, key("X"))
	if !m.camera.View.AlmostEqual(start, 1e-12) {
		t.Error("x then X should cancel")
	}
	m = update(m, key("z"))
	if m.camera.View.AlmostEqual(start, 1e-6) {
		t.Error("z did not orbit")
	}
}

func TestQuit(t *testing.T) {
	m := gimbalModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestSparklineAndBar(t *testing.T) {
	s := Sparkline([]float64{0, 1, 2, 3}, 4)
	if s != "▁▃▅█" {
		t.Errorf("sparkline = %q", s)
	}
	if Sparkline(nil, 3) != "───" {
		t.Error("empty sparkline")
	}
	if got := ConditioningBar(1, 10); !strings.Contains(got, strings.Repeat("░", 10)) {
		t.Errorf("bar at cond 1 = %q", got)
	}
}

func TestMatrix(t *testing.T) {
	out := Matrix("N", mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
	if !strings.Contains(out, "1.0000") || !strings.Contains(out, "N") {
		t.Errorf("matrix render = %q", out)
	}
	if !strings.Contains(Matrix("weld", &mat.Dense{}), "empty") {
		t.Error("empty matrix")
	}
}
