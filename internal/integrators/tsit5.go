package integrators

import "github.com/san-kum/parode/internal/term"

// NewTsit5 returns the Tsitouras 5(4) method.
func NewTsit5(t *term.Term) *RK {
	return NewRK(tsit5Tableau, t)
}
