package experiment

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/mobikin/internal/config"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/sim"
)

// SweepPoint is one member of a sweep. Result is nil if the run failed.
type SweepPoint struct {
	Angle        float64
	Conditioning float64
	Result       *dynamo.Result
}

// Sweep runs one copy of base per angle, with the initial orientation of
// body about the given axis (0, 1 or 2, body-fixed XYZ order) set to that
// angle in degrees. Runs execute concurrently on an ensemble; failures are
// combined into the returned error and leave their point's Result nil.
func Sweep(ctx context.Context, base *config.Config, reg *Registry, log *zap.SugaredLogger,
	body string, axis int, angles []float64, workers int) ([]SweepPoint, error) {
	if axis < 0 || axis > 2 {
		return nil, errors.Wrapf(config.ErrInvalid, "sweep axis %d", axis)
	}

	jobs := make([]sim.Job, len(angles))
	for i, a := range angles {
		cfg := base.Clone()
		found := false
		for j := range cfg.Bodies {
			if cfg.Bodies[j].Name != body {
				continue
			}
			o := cfg.Bodies[j].Init.Orientation
			if o == nil {
				o = make([]float64, 3)
			}
			o[axis] = a
			cfg.Bodies[j].Init.Orientation = o
			found = true
		}
		if !found {
			return nil, errors.Wrapf(config.ErrInvalid, "sweep body %q is not defined", body)
		}

		e, err := New(cfg, log)
		if err != nil {
			return nil, errors.Wrapf(err, "angle %g", a)
		}
		if err := e.Setup(reg); err != nil {
			return nil, err
		}
		jobs[i] = sim.Job{Sim: e.GetSimulator(), X0: e.InitialState(), Cfg: cfg.RunConfig()}
	}

	results, err := sim.NewEnsemble(workers).Run(ctx, jobs)
	points := make([]SweepPoint, len(angles))
	for i, a := range angles {
		points[i] = SweepPoint{Angle: a, Result: results[i]}
		if results[i] != nil {
			points[i].Conditioning = results[i].Metrics["max_conditioning"]
		}
	}
	return points, err
}
