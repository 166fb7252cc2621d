package problems

import "github.com/san-kum/parode/internal/dynamo"

// VanDerPol implements the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
type VanDerPol struct {
	Mu float64 // Nonlinearity parameter
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{
		Mu: 1.0, // Classic value for limit cycle
	}
}

func (v *VanDerPol) Name() string { return "vanderpol" }
func (v *VanDerPol) Dim() int     { return 2 }

func (v *VanDerPol) Derive(_ float64, state, dy dynamo.State) {
	x, y := state[0], state[1]
	dy[0] = y
	dy[1] = v.Mu*(1-x*x)*y - x
}

func (v *VanDerPol) Initial(float64) dynamo.State {
	return dynamo.State{2.0, 0.0}
}
