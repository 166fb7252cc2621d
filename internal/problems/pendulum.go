package problems

import (
	"math"

	"github.com/san-kum/parode/internal/dynamo"
)

type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
	Theta0  float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
		Theta0:  0.5,
	}
}

func (p *Pendulum) Name() string { return "pendulum" }
func (p *Pendulum) Dim() int     { return 2 }

func (p *Pendulum) Derive(_ float64, x, dy dynamo.State) {
	theta, omega := x[0], x[1]
	dy[0] = omega
	dy[1] = (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta)) / (p.Mass * p.Length * p.Length)
}

func (p *Pendulum) Initial(float64) dynamo.State { return dynamo.State{p.Theta0, 0} }

func (p *Pendulum) Energy(x dynamo.State) float64 {
	// KE = 0.5 * m * (L*omega)^2
	// PE = m * g * L * (1 - cos(theta))
	v := p.Length * x[1]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(x[0]))
	return ke + pe
}
