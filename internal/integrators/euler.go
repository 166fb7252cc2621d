package integrators

import "github.com/san-kum/parode/internal/term"

// NewEuler returns the explicit Euler method. It has no error estimate, so
// solves using it need an explicit initial step.
func NewEuler(t *term.Term) *RK {
	return NewRK(eulerTableau, t)
}
