package adjoint

import (
	"fmt"

	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/term"
)

// Program is a solve loop specialized to one problem shape. It owns every
// buffer the loop needs and reuses them between calls.
type Program struct {
	solver   *AutoDiffAdjoint
	batch    int
	features int
	frame    *frame
}

func (p *Program) Shape() (batch, features int) { return p.batch, p.features }

// Solve behaves like AutoDiffAdjoint.Solve for problems of the compiled shape.
func (p *Program) Solve(prob *Problem, f *term.Term, dt0 []float64) (*Solution, error) {
	if prob.BatchSize() != p.batch || prob.Features() != p.features {
		return nil, fmt.Errorf("%w: compiled for %dx%d, got %dx%d",
			dynamo.ErrShapeMismatch, p.batch, p.features, prob.BatchSize(), prob.Features())
	}
	if err := prob.Validate(); err != nil {
		return nil, err
	}
	return p.solver.run(prob, f, dt0, p.frame)
}

// Forward is equivalent to Solve.
func (p *Program) Forward(prob *Problem, f *term.Term, dt0 []float64) (*Solution, error) {
	return p.Solve(prob, f, dt0)
}
