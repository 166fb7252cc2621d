package integrators

import "github.com/san-kum/parode/internal/term"

// NewDopri5 returns the Dormand-Prince 5(4) method.
func NewDopri5(t *term.Term) *RK {
	return NewRK(dopri5Tableau, t)
}
