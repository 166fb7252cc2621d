package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/control"
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/integrators"
	"github.com/san-kum/parode/internal/problems"
)

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(problems.NewSine())

	m.Observe(0, dynamo.State{0, 1})
	m.Observe(1, dynamo.State{math.Sin(1), math.Cos(1)})
	if m.Value() > 1e-15 {
		t.Errorf("expected no drift on the exact trajectory, got %g", m.Value())
	}

	m.Observe(2, dynamo.State{0, 1.1})
	if math.Abs(m.Value()-0.21) > 1e-12 {
		t.Errorf("expected drift 0.21, got %g", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	s.Observe(0, dynamo.State{1, 2})
	s.Observe(1, dynamo.State{100, 2})
	s.Observe(2, dynamo.State{math.NaN(), 0})
	s.Observe(3, dynamo.State{0, 0})

	if s.Value() != 0.5 {
		t.Errorf("expected stability 0.5, got %f", s.Value())
	}
	s.Reset()
	if s.Value() != 1 {
		t.Errorf("expected stability 1 after reset, got %f", s.Value())
	}
}

func TestMinStep(t *testing.T) {
	m := NewMinStep()
	for _, tt := range []float64{0, 0.5, 0.6, 1.0} {
		m.Observe(tt, nil)
	}
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected min step 0.1, got %g", m.Value())
	}
}

func TestEvaluate(t *testing.T) {
	_, f, p, err := problems.Get("sine", [][]float64{{0.1, 0.15, 1.0}, {1.0, 1.9, 2.0}})
	if err != nil {
		t.Fatal(err)
	}
	sol, err := adjoint.New(integrators.NewDopri5(f), control.NewIntegral(1e-6, 1e-6)).Solve(p, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := Evaluate(Default(problems.NewSine()), sol)
	for _, name := range []string{"stability", "min_step", "global_error", "energy_drift"} {
		if _, ok := got[name]; !ok {
			t.Fatalf("missing metric %s", name)
		}
	}
	if got["stability"] != 1 {
		t.Errorf("expected stability 1, got %g", got["stability"])
	}
	if got["global_error"] > 1e-4 {
		t.Errorf("global error %g too large", got["global_error"])
	}
	if got["energy_drift"] > 1e-4 {
		t.Errorf("energy drift %g too large", got["energy_drift"])
	}
	if got["min_step"] <= 0 || got["min_step"] > 0.9 {
		t.Errorf("unexpected min step %g", got["min_step"])
	}
}

func TestDefaultWithoutExactSolution(t *testing.T) {
	ms := Default(problems.NewLorenz())
	if len(ms) != 2 {
		t.Errorf("expected 2 metrics for lorenz, got %d", len(ms))
	}
}
