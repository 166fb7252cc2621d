package adjoint

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/parode/internal/dynamo"
)

// Problem is a batch of initial value problems. Element i starts at
// TStart[i] from row i of Y0 and ends at TEnd[i]. TEval, when set, lists
// the times at which the solution is sampled for element i.
type Problem struct {
	Y0     *dynamo.Batch
	TStart []float64
	TEnd   []float64
	TEval  [][]float64
}

func NewProblem(y0 *dynamo.Batch, tStart, tEnd []float64) (*Problem, error) {
	p := &Problem{
		Y0:     y0.Clone(),
		TStart: append([]float64(nil), tStart...),
		TEnd:   append([]float64(nil), tEnd...),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewProblemEval builds a problem whose span per element runs from the first
// to the last entry of its evaluation grid.
func NewProblemEval(y0 *dynamo.Batch, tEval [][]float64) (*Problem, error) {
	if len(tEval) != y0.Rows {
		return nil, fmt.Errorf("%w: %d evaluation grids for %d elements", dynamo.ErrDimensionMismatch, len(tEval), y0.Rows)
	}
	p := &Problem{
		Y0:     y0.Clone(),
		TStart: make([]float64, y0.Rows),
		TEnd:   make([]float64, y0.Rows),
		TEval:  make([][]float64, y0.Rows),
	}
	for i, grid := range tEval {
		if len(grid) < 2 {
			return nil, fmt.Errorf("%w: element %d needs at least 2 evaluation points", dynamo.ErrInvalidProblem, i)
		}
		p.TEval[i] = append([]float64(nil), grid...)
		p.TStart[i] = grid[0]
		p.TEnd[i] = grid[len(grid)-1]
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Problem) BatchSize() int { return p.Y0.Rows }
func (p *Problem) Features() int  { return p.Y0.Cols }

func (p *Problem) Validate() error {
	n := p.Y0.Rows
	if n == 0 || p.Y0.Cols == 0 {
		return fmt.Errorf("%w: empty initial state", dynamo.ErrInvalidProblem)
	}
	if len(p.TStart) != n || len(p.TEnd) != n {
		return fmt.Errorf("%w: %d elements but %d start and %d end times", dynamo.ErrDimensionMismatch, n, len(p.TStart), len(p.TEnd))
	}
	if !p.Y0.IsValid() {
		return fmt.Errorf("%w: initial state is not finite", dynamo.ErrInvalidProblem)
	}
	for i := 0; i < n; i++ {
		t0, t1 := p.TStart[i], p.TEnd[i]
		if math.IsNaN(t0) || math.IsInf(t0, 0) || math.IsNaN(t1) || math.IsInf(t1, 0) || t1 <= t0 {
			return fmt.Errorf("%w: element %d has span [%g, %g]", dynamo.ErrInvalidProblem, i, t0, t1)
		}
	}
	if p.TEval == nil {
		return nil
	}
	if len(p.TEval) != n {
		return fmt.Errorf("%w: %d evaluation grids for %d elements", dynamo.ErrDimensionMismatch, len(p.TEval), n)
	}
	for i, grid := range p.TEval {
		if !sort.Float64sAreSorted(grid) {
			return fmt.Errorf("%w: evaluation grid of element %d is not sorted", dynamo.ErrInvalidProblem, i)
		}
		if len(grid) > 0 && (grid[0] < p.TStart[i] || grid[len(grid)-1] > p.TEnd[i]) {
			return fmt.Errorf("%w: evaluation grid of element %d leaves [%g, %g]", dynamo.ErrInvalidProblem, i, p.TStart[i], p.TEnd[i])
		}
	}
	return nil
}
