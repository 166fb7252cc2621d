package problems

import (
	"fmt"
	"sort"

	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/term"
)

var models = map[string]func() Model{
	"sine":      func() Model { return NewSine() },
	"decay":     func() Model { return NewDecay() },
	"vanderpol": func() Model { return NewVanDerPol() },
	"lorenz":    func() Model { return NewLorenz() },
	"pendulum":  func() Model { return NewPendulum() },
}

func Lookup(name string) (Model, error) {
	fn, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get builds a batch of the named problem with one element per evaluation
// grid. Element i starts from the model's initial state at tEval[i][0] and
// ends at the last entry of tEval[i].
func Get(name string, tEval [][]float64) (*dynamo.Batch, *term.Term, *adjoint.Problem, error) {
	m, err := Lookup(name)
	if err != nil {
		return nil, nil, nil, err
	}
	y0, err := InitialBatch(m, tEval)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := adjoint.NewProblemEval(y0, tEval)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("problem %s: %w", name, err)
	}
	return y0, NewTerm(m), p, nil
}

// InitialBatch stacks the model's initial state at the first time of every grid.
func InitialBatch(m Model, tEval [][]float64) (*dynamo.Batch, error) {
	if len(tEval) == 0 {
		return nil, fmt.Errorf("%w: no evaluation grids", dynamo.ErrInvalidProblem)
	}
	y0 := dynamo.NewBatch(len(tEval), m.Dim())
	for i, grid := range tEval {
		if len(grid) == 0 {
			return nil, fmt.Errorf("%w: empty evaluation grid for element %d", dynamo.ErrInvalidProblem, i)
		}
		copy(y0.Row(i), m.Initial(grid[0]))
	}
	return y0, nil
}
