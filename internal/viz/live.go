package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"

	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/tree"
)

const (
	width           = 60
	height          = 22
	historyCapacity = 600
	frameRate       = 60
)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State        dynamo.State
	Time         float64
	Conditioning float64
}

type TickMsg time.Time

// Model animates a kinematic tree: each tick takes one integrator step and
// redraws every body frame.
type Model struct {
	sys        *tree.KinematicSystem
	integrator dynamo.Integrator
	controller dynamo.Controller
	state      dynamo.State
	initial    dynamo.State
	t, dt      float64
	name       string

	canvas *Canvas
	camera *Camera
	scene  *Scene

	running  bool
	failed   error
	history  []Snapshot
	playHead int
	showHelp bool
}

func NewModel(sys *tree.KinematicSystem, integ dynamo.Integrator, ctrl dynamo.Controller, x0 dynamo.State, dt float64, name string) Model {
	return Model{
		sys:        sys,
		integrator: integ,
		controller: ctrl,
		state:      sys.Project(x0),
		initial:    x0.Clone(),
		dt:         dt,
		name:       name,
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		scene:      NewScene(sys.Tree()),
		running:    true,
		history:    make([]Snapshot, 0, historyCapacity),
		playHead:   -1,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.running = !m.running && m.failed == nil
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "?":
			m.showHelp = !m.showHelp
		case "x", "X", "y", "Y", "z", "Z":
			axis := int(strings.ToLower(msg.String())[0] - 'x')
			angle := 0.1
			if msg.String() != strings.ToLower(msg.String()) {
				angle = -angle
			}
			m.camera.Orbit(axis, angle)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// step advances one integrator step and records it.
func (m *Model) step() {
	u := m.controller.Compute(m.state, m.t)
	next := m.sys.Project(m.integrator.Step(m.sys, m.state, u, m.t, m.dt))
	if !next.IsValid() {
		m.failed = errors.Wrapf(dynamo.ErrInvalidState, "t=%.3f", m.t+m.dt)
		m.running = false
		return
	}
	m.state = next
	m.t += m.dt

	m.history = append(m.history, Snapshot{State: next.Clone(), Time: m.t, Conditioning: m.conditioning(next)})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) conditioning(x dynamo.State) float64 {
	m.sys.Realize(x)
	c, _ := m.sys.Tree().Conditioning(m.sys.Digest())
	return c
}

// scrub moves the replay position through the recorded history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) reset() {
	m.t = 0
	m.state = m.sys.Project(m.initial)
	m.history = m.history[:0]
	m.playHead = -1
	m.failed = nil
	m.running = true
	if r, ok := m.controller.(interface{ Reset() }); ok {
		r.Reset()
	}
}

// shown returns the state and time on screen, which differ from the live
// ones during replay.
func (m Model) shown() (dynamo.State, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		s := m.history[m.playHead]
		return s.State, s.Time
	}
	return m.state, m.t
}

func (m Model) status() string {
	switch {
	case m.failed != nil:
		return StatusFailed.Render("FAILED: " + m.failed.Error())
	case m.playHead != -1:
		ago := m.history[m.playHead].Time - m.t
		if m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAYING (%.1fs)", ago))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.1fs)", ago))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	x, t := m.shown()
	m.sys.Realize(x)
	d := m.sys.Digest()
	m.scene.Draw(m.canvas, m.camera, d)
	cond, worst := m.sys.Tree().Conditioning(d)

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(Row("Time", fmt.Sprintf("%.2fs", t)) + "\n")
	if worst >= 0 {
		s.WriteString(Row("Cond(N⁻¹)", ConditionStyle(cond).Render(fmt.Sprintf("%.3g", cond))) + "\n")
		s.WriteString(Row("", ConditioningBar(cond, 20)) + "\n")
		s.WriteString(Row("Worst", m.sys.Tree().Body(worst).Name) + "\n")
	}

	if len(m.history) > 1 {
		logc := make([]float64, len(m.history))
		for i, h := range m.history {
			logc[i] = math.Log10(math.Max(h.Conditioning, 1))
		}
		if worst >= 0 {
			chart := asciigraph.Plot(logc, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("log10 cond"))
			s.WriteString("\n" + chart + "\n")
		}
	}

	s.WriteString("\n" + Title.Render("BODIES") + "\n")
	q, u := m.sys.Split(x)
	for _, b := range m.sys.Tree().Bodies() {
		mob := b.Mob
		bq := append([]float64(nil), q[mob.QIndex():mob.QIndex()+mob.NQ()]...)
		if start, n, ok := mob.IsUsingAngles(); ok {
			for i := start; i < start+n; i++ {
				bq[i] = dynamo.WrapAngle(bq[i])
			}
		}
		line := fmt.Sprintf("%-8s %-11s q=%s", b.Name, mob.Type(), formatSlice(bq))
		s.WriteString(line + "\n")
		if mob.NU() > 0 {
			s.WriteString(Subtle.Render(fmt.Sprintf("%-20s u=%s", "", formatSlice(u[mob.UIndex():mob.UIndex()+mob.NU()]))) + "\n")
		}
	}
	s.WriteString(KeyHint.Render("\nSP:Pause R:Reset Q:Quit ?:Help\n[ ]:Replay x/y/z:Orbit +/-:Zoom"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, Panel.Render(m.canvas.String()), Panel.Render(s.String()))
	if m.showHelp {
		help := Panel.Render(strings.Join([]string{
			Title.Render("KEYS"),
			"Space/P  pause or resume",
			"R        reset to the initial state",
			"[ ]      step through recorded history",
			"x y z    orbit the camera (shift reverses)",
			"+ -      zoom",
			"Q        quit",
		}, "\n"))
		return help + "\n" + main
	}
	return main
}

func formatSlice(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%+.3f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
