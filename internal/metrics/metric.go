package metrics

import (
	"math"

	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/problems"
)

// Metric observes the accepted points of one trajectory in time order.
type Metric interface {
	Name() string
	Observe(t float64, y dynamo.State)
	Value() float64
	Reset()
}

// Default returns the metrics that apply to a model.
func Default(m problems.Model) []Metric {
	out := []Metric{NewStability(1e6), NewMinStep()}
	if ex, ok := m.(problems.Exact); ok {
		out = append(out, NewGlobalError(ex))
	}
	if h, ok := m.(problems.Hamiltonian); ok {
		out = append(out, NewEnergyDrift(h))
	}
	return out
}

// Evaluate runs every metric over each element of sol and reports the worst
// value across elements. Stability is a fraction, so its worst is the minimum.
func Evaluate(ms []Metric, sol *adjoint.Solution) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		worst := math.NaN()
		for i := range sol.Ts {
			m.Reset()
			for k, t := range sol.Ts[i] {
				m.Observe(t, sol.Ys[i][k])
			}
			v := m.Value()
			switch {
			case math.IsNaN(worst):
				worst = v
			case m.Name() == "stability" || m.Name() == "min_step":
				worst = math.Min(worst, v)
			default:
				worst = math.Max(worst, v)
			}
		}
		out[m.Name()] = worst
	}
	return out
}
