package metrics

import (
	"math"

	"github.com/san-kum/parode/internal/dynamo"
)

// Stability is the fraction of points that are finite and within threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(_ float64, y dynamo.State) {
	s.samples++
	if !y.IsValid() {
		s.violations++
		return
	}
	for _, val := range y {
		if math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MinStep is the smallest accepted step.
type MinStep struct {
	last  float64
	min   float64
	begun bool
}

func NewMinStep() *MinStep {
	return &MinStep{min: math.Inf(1)}
}

func (m *MinStep) Name() string { return "min_step" }

func (m *MinStep) Observe(t float64, _ dynamo.State) {
	if m.begun {
		m.min = math.Min(m.min, t-m.last)
	}
	m.last = t
	m.begun = true
}

func (m *MinStep) Value() float64 { return m.min }

func (m *MinStep) Reset() {
	m.min = math.Inf(1)
	m.begun = false
}
