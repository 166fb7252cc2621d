package problems

import (
	"math"

	"github.com/san-kum/parode/internal/dynamo"
)

// Decay is y' = -k y with y(0) = [1, 2].
type Decay struct {
	K float64
}

func NewDecay() *Decay { return &Decay{K: 0.5} }

func (d *Decay) Name() string { return "decay" }
func (d *Decay) Dim() int     { return 2 }

func (d *Decay) Derive(_ float64, y, dy dynamo.State) {
	for i, v := range y {
		dy[i] = -d.K * v
	}
}

func (d *Decay) Initial(t0 float64) dynamo.State { return d.Solution(t0) }

func (d *Decay) Solution(t float64) dynamo.State {
	e := math.Exp(-d.K * t)
	return dynamo.State{e, 2 * e}
}
