package metrics

import (
	"math"

	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/problems"
	"gonum.org/v1/gonum/floats"
)

// GlobalError is the largest absolute deviation from the exact solution.
type GlobalError struct {
	exact problems.Exact
	max   float64
}

func NewGlobalError(exact problems.Exact) *GlobalError {
	return &GlobalError{exact: exact}
}

func (g *GlobalError) Name() string { return "global_error" }

func (g *GlobalError) Observe(t float64, y dynamo.State) {
	g.max = math.Max(g.max, floats.Norm(y.Sub(g.exact.Solution(t)), math.Inf(1)))
}

func (g *GlobalError) Value() float64 { return g.max }
func (g *GlobalError) Reset()         { g.max = 0 }
