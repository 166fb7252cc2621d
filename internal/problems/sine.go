package problems

import (
	"math"

	"github.com/san-kum/parode/internal/dynamo"
)

// Sine is the harmonic oscillator y0' = y1, y1' = -y0 started on the
// trajectory y = [sin t, cos t].
type Sine struct{}

func NewSine() *Sine { return &Sine{} }

func (s *Sine) Name() string { return "sine" }
func (s *Sine) Dim() int     { return 2 }

func (s *Sine) Derive(_ float64, y, dy dynamo.State) {
	dy[0] = y[1]
	dy[1] = -y[0]
}

func (s *Sine) Initial(t0 float64) dynamo.State { return s.Solution(t0) }

func (s *Sine) Solution(t float64) dynamo.State {
	return dynamo.State{math.Sin(t), math.Cos(t)}
}

func (s *Sine) Energy(y dynamo.State) float64 {
	return 0.5 * (y[0]*y[0] + y[1]*y[1])
}
