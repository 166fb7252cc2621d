// Package term wraps the right-hand side of dy/dt = f(t, y) and resolves which
// term a solve uses.
package term

import (
	"fmt"

	"github.com/san-kum/parode/internal/dynamo"
)

// Func writes f(t_i, y_i) into row i of dy for every batch element. t holds
// one time per row. Implementations must not retain y or dy.
type Func func(t []float64, y, dy *dynamo.Batch)

type Term struct {
	name string
	fn   Func
}

func New(name string, fn Func) *Term {
	return &Term{name: name, fn: fn}
}

func (t *Term) Name() string { return t.name }

// Eval evaluates the vector field into dy, which must have the shape of y.
func (t *Term) Eval(ts []float64, y, dy *dynamo.Batch) {
	t.fn(ts, y, dy)
}

// EvalNew is Eval with a freshly allocated output.
func (t *Term) EvalNew(ts []float64, y *dynamo.Batch) *dynamo.Batch {
	dy := dynamo.NewBatch(y.Rows, y.Cols)
	t.fn(ts, y, dy)
	return dy
}

// Source records where the term of a solve came from.
type Source int

const (
	Bound Source = iota
	Supplied
)

func (s Source) String() string {
	if s == Supplied {
		return "supplied"
	}
	return "bound"
}

// Binding is the term chosen for one solve. It is resolved once per call and
// never changes while the loop runs.
type Binding struct {
	Source Source
	Term   *Term
}

// Resolve picks the supplied term when present and the bound term otherwise.
func Resolve(bound, supplied *Term) (Binding, error) {
	switch {
	case supplied != nil:
		return Binding{Source: Supplied, Term: supplied}, nil
	case bound != nil:
		return Binding{Source: Bound, Term: bound}, nil
	default:
		return Binding{}, fmt.Errorf("resolve term: %w", dynamo.ErrUnboundTerm)
	}
}
