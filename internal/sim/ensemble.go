package sim

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/san-kum/mobikin/internal/dynamo"
)

// Job is one member of an ensemble. Every job needs its own simulator since
// systems may keep per-run caches.
type Job struct {
	Name string
	Sim  *Simulator
	X0   dynamo.State
	Cfg  dynamo.Config
}

type Ensemble struct {
	workers int
}

func NewEnsemble(workers int) *Ensemble {
	if workers < 1 {
		workers = dynamo.DefaultWorkers
	}
	return &Ensemble{workers: workers}
}

// Run executes the jobs concurrently. Results are in job order; a job that
// failed has a nil result and its error is included in the combined error.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(jobs))
	errs := make([]error, len(jobs))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			j := jobs[idx]
			res, err := j.Sim.Run(ctx, j.X0, j.Cfg)
			if err != nil {
				errs[idx] = &dynamo.SimulationError{Wrapped: err}
				return
			}
			results[idx] = res
		}(i)
	}
	wg.Wait()

	return results, multierr.Combine(errs...)
}
