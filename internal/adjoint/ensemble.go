package adjoint

import (
	"context"

	"github.com/san-kum/parode/internal/term"
	"golang.org/x/sync/errgroup"
)

// Job is one independent solve of an Ensemble.
type Job struct {
	Problem *Problem
	Term    *term.Term
	Dt0     []float64
}

// Ensemble solves independent problems concurrently with a shared solver.
type Ensemble struct {
	solver  *AutoDiffAdjoint
	workers int
}

func NewEnsemble(solver *AutoDiffAdjoint, workers int) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	return &Ensemble{solver: solver, workers: workers}
}

// Run solves every job and returns the solutions in job order. The first
// failure cancels jobs that have not started yet; running solves finish.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Solution, error) {
	results := make([]*Solution, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sol, err := e.solver.Solve(job.Problem, job.Term, job.Dt0)
			if err != nil {
				return err
			}
			results[i] = sol
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
