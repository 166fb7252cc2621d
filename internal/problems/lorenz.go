package problems

import "github.com/san-kum/parode/internal/dynamo"

type Lorenz struct{ Sigma, Rho, Beta float64 }

func NewLorenz() *Lorenz { return &Lorenz{10.0, 28.0, 8.0 / 3.0} }

func (l *Lorenz) Name() string { return "lorenz" }
func (l *Lorenz) Dim() int     { return 3 }

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz) Derive(_ float64, s, dy dynamo.State) {
	dy[0] = l.Sigma * (s[1] - s[0])
	dy[1] = s[0]*(l.Rho-s[2]) - s[1]
	dy[2] = s[0]*s[1] - l.Beta*s[2]
}

func (l *Lorenz) Initial(float64) dynamo.State { return dynamo.State{1.0, 1.0, 1.0} }
