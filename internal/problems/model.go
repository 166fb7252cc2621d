package problems

import (
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/term"
)

type Model interface {
	Name() string
	Dim() int
	// Derive writes f(t, y) into dy.
	Derive(t float64, y, dy dynamo.State)
	// Initial returns the state the model starts from at t0.
	Initial(t0 float64) dynamo.State
}

type Exact interface {
	Solution(t float64) dynamo.State
}

type Hamiltonian interface {
	Energy(y dynamo.State) float64
}

// NewTerm lifts a model to a batched term that evaluates every row.
func NewTerm(m Model) *term.Term {
	return term.New(m.Name(), func(t []float64, y, dy *dynamo.Batch) {
		for i := 0; i < y.Rows; i++ {
			m.Derive(t[i], y.Row(i), dy.Row(i))
		}
	})
}
