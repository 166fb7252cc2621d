package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/parode/internal/term"
)

var constructors = map[string]func(*term.Term) *RK{
	"euler":  NewEuler,
	"heun":   NewHeun,
	"dopri5": NewDopri5,
	"tsit5":  NewTsit5,
}

// ByName builds the named step method with t bound (t may be nil).
func ByName(name string, t *term.Term) (Method, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown step method: %s (available: %v)", name, Names())
	}
	return fn(t), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
