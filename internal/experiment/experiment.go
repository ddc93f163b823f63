// Package experiment turns a config into a tree, an initial state and a
// simulator, and runs it.
package experiment

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/mobikin/internal/config"
	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/sim"
	"github.com/san-kum/mobikin/internal/spatial"
	"github.com/san-kum/mobikin/internal/tree"
)

type Experiment struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	tree      *tree.Tree
	sys       *tree.KinematicSystem
	x0        dynamo.State
	udot      []float64
	simulator *sim.Simulator
}

// New validates cfg, builds its tree and fits the initial state.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Experiment, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, err := BuildTree(cfg, log)
	if err != nil {
		return nil, err
	}
	sys := tree.NewKinematicSystem(t)
	x0, udot, err := InitialState(t, cfg)
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, log: log, tree: t, sys: sys, x0: x0, udot: udot}, nil
}

// Setup creates the simulator from the registry's integrator, controller
// and default metrics.
func (e *Experiment) Setup(reg *Registry) error {
	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := reg.GetController(e.cfg.Controller, e.cfg, e.tree, e.udot)
	if err != nil {
		return err
	}
	e.simulator = sim.New(e.sys, integ, ctrl)
	e.simulator.SetLogger(e.log)
	for _, m := range reg.DefaultMetrics(e.tree) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, errors.New("experiment not setup")
	}
	e.log.Infow("running", "model", e.cfg.Model, "integrator", e.cfg.Integrator,
		"controller", e.cfg.Controller, "bodies", e.tree.Len())
	return e.simulator.Run(ctx, e.x0, e.cfg.RunConfig())
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Config() *config.Config             { return e.cfg }
func (e *Experiment) Tree() *tree.Tree                   { return e.tree }
func (e *Experiment) System() *tree.KinematicSystem      { return e.sys }
func (e *Experiment) InitialState() dynamo.State         { return e.x0.Clone() }
func (e *Experiment) PrescribedAccelerations() []float64 { return append([]float64(nil), e.udot...) }

// BuildTree adds the configured bodies in order.
func BuildTree(cfg *config.Config, log *zap.SugaredLogger) (*tree.Tree, error) {
	b := tree.NewBuilder(log)
	for _, bc := range cfg.Bodies {
		if _, err := b.AddBody(bc.Name, bc.Parent, bc.Joint, bc.InParent.Transform(), bc.InBody.Transform()); err != nil {
			return nil, err
		}
	}
	t, _ := b.Build()
	return t, nil
}

// InitialState assembles [q; u] and the prescribed udot for a tree built
// from cfg. Raw coordinates and speeds are loaded first, then orientations,
// translations and velocities are fitted through each joint. Fits a joint
// cannot represent are all reported, wrapping tree.ErrUnrepresentable.
func InitialState(t *tree.Tree, cfg *config.Config) (dynamo.State, []float64, error) {
	if len(cfg.Bodies) != t.Len() {
		return nil, nil, errors.Wrapf(dynamo.ErrDimensionMismatch, "%d body configs for %d bodies", len(cfg.Bodies), t.Len())
	}
	l := t.Layout()
	d := t.NewDigest()
	q := d.Q().Clone()
	u := make([]float64, l.NU)
	udot := make([]float64, l.NU)

	var errs error
	for i, bc := range cfg.Bodies {
		m := t.Body(i).Mob
		errs = multierr.Append(errs, load(bc.Name, "q", bc.Init.Q, q[m.QIndex():m.QIndex()+m.NQ()]))
		errs = multierr.Append(errs, load(bc.Name, "u", bc.Init.U, u[m.UIndex():m.UIndex()+m.NU()]))
		errs = multierr.Append(errs, load(bc.Name, "udot", bc.Init.UDot, udot[m.UIndex():m.UIndex()+m.NU()]))
	}
	if errs != nil {
		return nil, nil, errs
	}
	t.NormalizeQuaternions(q)
	d.SetQ(q)
	t.RealizePosition(d)

	for i, bc := range cfg.Bodies {
		in := bc.Init
		if in.Orientation == nil && in.Translation == nil {
			continue
		}
		x := d.Transform(i)
		if in.Orientation != nil {
			x.R = config.Rotation(in.Orientation)
		}
		if in.Translation != nil {
			x.P = config.Vec3(in.Translation)
		}
		if _, err := t.FitTransform(d, i, x); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if d.Stage() < digest.Position {
		t.RealizePosition(d)
	}

	d.SetU(u)
	for i, bc := range cfg.Bodies {
		in := bc.Init
		if in.AngularVelocity == nil && in.LinearVelocity == nil {
			continue
		}
		t.RealizeVelocity(d)
		v := d.RelVelocity(i)
		if in.AngularVelocity != nil {
			v.W = config.Vec3(in.AngularVelocity)
		}
		if in.LinearVelocity != nil {
			v.V = config.Vec3(in.LinearVelocity)
		}
		if _, err := t.FitVelocity(d, i, v); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, nil, errs
	}

	x0 := make(dynamo.State, 0, l.NQ+l.NU)
	x0 = append(x0, d.Q()...)
	x0 = append(x0, d.U()...)
	return x0, udot, nil
}

func load(body, field string, src, dst []float64) error {
	if src == nil {
		return nil
	}
	if len(src) != len(dst) {
		return errors.Wrapf(dynamo.ErrDimensionMismatch, "body %q: %s has %d values, joint takes %d", body, field, len(src), len(dst))
	}
	copy(dst, src)
	return nil
}

// Orientation returns the ground-frame orientation of every body at x.
func (e *Experiment) Orientation(x dynamo.State) []spatial.Rotation {
	e.sys.Realize(x)
	d := e.sys.Digest()
	out := make([]spatial.Rotation, e.tree.Len())
	for i := range out {
		out[i] = d.BodyPose(i).R
	}
	return out
}
