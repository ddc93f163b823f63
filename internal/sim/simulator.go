// Package sim runs a dynamo.System forward in time with an integrator and a
// controller, collecting states, controls and metrics.
package sim

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/mobikin/internal/dynamo"
)

type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	log        *zap.SugaredLogger
}

func New(sys dynamo.System, integrator dynamo.Integrator, controller dynamo.Controller) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		controller: controller,
		log:        zap.NewNop().Sugar(),
	}
}

func (s *Simulator) SetLogger(log *zap.SugaredLogger) { s.log = log }
func (s *Simulator) AddMetric(m dynamo.Metric)        { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer)    { s.observers = append(s.observers, o) }
func (s *Simulator) System() dynamo.System            { return s.sys }

// Run integrates from x0 for cfg.Duration. Metrics and observers see the
// state at the start of every step. A non-finite state stops the run and is
// recorded in Result.Errors; cancellation returns the partial result.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, errors.Wrapf(dynamo.ErrDimensionMismatch, "state has %d entries, system wants %d", len(x0), s.sys.StateDim())
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &dynamo.Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.project(x0.Clone())
	t := 0.0
	dt := cfg.Dt
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	s.log.Debugw("run started", "dt", cfg.Dt, "duration", cfg.Duration, "adaptive", cfg.Adaptive)
	for i := 0; ; i++ {
		if cfg.Adaptive {
			if t >= cfg.Duration-cfg.MinDt {
				break
			}
			dt = math.Min(dt, cfg.Duration-t)
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.controller.Compute(x, t)
		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, o := range s.observers {
			o.OnStep(x, u, t)
		}

		var next dynamo.State
		taken := dt
		if cfg.Adaptive {
			var err error
			next, taken, dt, err = s.adaptiveStep(x, u, t, dt, cfg)
			if err != nil {
				result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: err})
				break
			}
		} else {
			next = s.integrator.Step(s.sys, x, u, t, dt)
		}
		next = s.project(next)

		if cfg.ValidateState && !next.IsValid() {
			result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: dynamo.ErrInvalidState})
			s.log.Warnw("invalid state", "step", i, "t", t)
			break
		}

		x = next
		t += taken
		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.log.Debugw("run finished", "steps", result.StepsTaken, "t", t, "errors", len(result.Errors))
	return result, nil
}

func (s *Simulator) project(x dynamo.State) dynamo.State {
	if p, ok := s.sys.(dynamo.Projector); ok {
		return p.Project(x)
	}
	return x
}

func validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "duration must be positive, got %g", cfg.Duration)
	}
	if cfg.Adaptive {
		if cfg.Tolerance <= 0 {
			return errors.Wrap(dynamo.ErrParameterBounds, "tolerance must be positive for adaptive stepping")
		}
		if cfg.MinDt <= 0 || cfg.MaxDt < cfg.MinDt {
			return errors.Wrapf(dynamo.ErrParameterBounds, "invalid step bounds [%g, %g]", cfg.MinDt, cfg.MaxDt)
		}
	}
	return nil
}

// rejectFactor separates a rejected embedded step, whose proposal falls
// below the integrator's safety factor, from an accepted one.
const rejectFactor = 0.9 * (1 - 1e-9)

// adaptiveStep returns the accepted state, the step it used and the step to
// try next. Integrators without an error estimate use step doubling.
func (s *Simulator) adaptiveStep(x dynamo.State, u dynamo.Control, t, dt float64, cfg dynamo.Config) (dynamo.State, float64, float64, error) {
	clamp := func(h float64) float64 { return math.Min(math.Max(h, cfg.MinDt), cfg.MaxDt) }
	for {
		if dt < cfg.MinDt {
			return nil, dt, dt, dynamo.ErrStepTooSmall
		}

		if a, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok {
			next, proposed, err := a.StepAdaptive(s.sys, x, u, t, dt, cfg.Tolerance)
			if err != nil {
				return nil, dt, dt, err
			}
			if proposed >= rejectFactor*dt {
				return next, dt, clamp(proposed), nil
			}
			dt = proposed
			continue
		}

		full := s.integrator.Step(s.sys, x, u, t, dt)
		half := s.integrator.Step(s.sys, x, u, t, dt/2)
		next := s.integrator.Step(s.sys, half, u, t+dt/2, dt/2)
		errEst := full.Sub(next).Norm()
		if errEst > cfg.Tolerance {
			dt /= 2
			continue
		}
		proposed := dt
		if errEst < cfg.Tolerance/10 {
			proposed = 2 * dt
		}
		return next, dt, clamp(proposed), nil
	}
}

// RunWithCallback integrates with fixed steps until the duration elapses or
// callback returns false. It keeps no history.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(dynamo.State, dynamo.Control, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	x := s.project(x0.Clone())
	steps := int(math.Round(cfg.Duration / cfg.Dt))
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		u := s.controller.Compute(x, t)
		if !callback(x, u, t) || i == steps {
			return nil
		}

		x = s.project(s.integrator.Step(s.sys, x, u, t, cfg.Dt))
		if cfg.ValidateState && !x.IsValid() {
			return errors.Wrapf(dynamo.ErrInvalidState, "t=%.4f", t+cfg.Dt)
		}
	}
	return nil
}
