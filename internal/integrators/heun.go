package integrators

import "github.com/san-kum/parode/internal/term"

// NewHeun returns the Heun-Euler 2(1) embedded pair.
func NewHeun(t *term.Term) *RK {
	return NewRK(heunTableau, t)
}
