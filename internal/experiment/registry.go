package experiment

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/mobikin/internal/config"
	"github.com/san-kum/mobikin/internal/control"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/integrators"
	"github.com/san-kum/mobikin/internal/metrics"
	"github.com/san-kum/mobikin/internal/tree"
)

// StabilityThreshold is the speed norm above which a run counts as diverged.
const StabilityThreshold = 1e3

// ControllerFactory builds a controller for a tree. udot holds the
// prescribed accelerations gathered from the body configs.
type ControllerFactory func(cfg *config.Config, t *tree.Tree, udot []float64) (dynamo.Controller, error)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]ControllerFactory),
	}

	r.integrators[config.IntegratorEuler] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators[config.IntegratorRK4] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators[config.IntegratorRK45] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.integrators[config.IntegratorSymplectic] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }

	r.controllers[config.ControllerNone] = func(_ *config.Config, t *tree.Tree, _ []float64) (dynamo.Controller, error) {
		return control.NewNone(t.Layout().NU), nil
	}
	r.controllers[config.ControllerConstant] = func(_ *config.Config, _ *tree.Tree, udot []float64) (dynamo.Controller, error) {
		return control.NewConstant(udot), nil
	}
	r.controllers[config.ControllerDamping] = func(cfg *config.Config, t *tree.Tree, _ []float64) (dynamo.Controller, error) {
		l := t.Layout()
		return control.NewDamping(l.NQ, l.NU, cfg.ControllerParams.Damping), nil
	}
	r.controllers[config.ControllerServo] = newServo

	return r
}

func newServo(cfg *config.Config, t *tree.Tree, _ []float64) (dynamo.Controller, error) {
	p := cfg.ControllerParams
	idx, err := t.Lookup(p.Body)
	if err != nil {
		return nil, errors.Wrap(err, "servo")
	}
	m := t.Body(idx).Mob
	if p.Axis < 0 || p.Axis >= m.NQ() || p.Axis >= m.NU() {
		return nil, errors.Wrapf(config.ErrInvalid, "servo: body %q (%s) has no axis %d", p.Body, m.Type(), p.Axis)
	}
	if _, ok := m.IsUsingQuaternion(); ok {
		return nil, errors.Wrapf(config.ErrInvalid, "servo: body %q uses a quaternion", p.Body)
	}
	nu := t.Layout().NU
	return control.NewServo(nu, m.QIndex()+p.Axis, m.UIndex()+p.Axis, p.Kp, p.Ki, p.Kd, p.Target), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, errors.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, cfg *config.Config, t *tree.Tree, udot []float64) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, errors.Errorf("unknown controller: %s", name)
	}
	return fn(cfg, t, udot)
}

func (r *Registry) ListIntegrators() []string { return keys(r.integrators) }
func (r *Registry) ListControllers() []string { return keys(r.controllers) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the metrics every run records.
func (r *Registry) DefaultMetrics(t *tree.Tree) []dynamo.Metric {
	l := t.Layout()
	return []dynamo.Metric{
		metrics.NewConditioning(t),
		metrics.NewStability(StabilityThreshold, l.NQ),
		metrics.NewControlEffort(),
		metrics.NewPeakNorm("peak_speed", l.NQ, l.NQ+l.NU),
	}
}
