package integrators

import (
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/term"
)

// Method advances a batch by one step of per-row size dt.
//
// Step evaluates the stages of the method at (t, y) given f0 = f(t, y) and
// returns the candidate next state together with the embedded error estimate.
// The returned batches live in ws and are overwritten by the next call.
type Method interface {
	Name() string
	Order() int
	Stages() int
	// Adaptive reports whether Step produces an error estimate.
	Adaptive() bool
	// Term is the term bound at construction, or nil.
	Term() *term.Term
	Step(f *term.Term, t, dt []float64, y, f0 *dynamo.Batch, ws *Workspace) Result
}

// Result of a single step. Err is nil when the method has no embedded
// estimator. F1 is f(t+dt, Y) when the method computes it for free (FSAL),
// nil otherwise.
type Result struct {
	Y   *dynamo.Batch
	Err *dynamo.Batch
	F1  *dynamo.Batch
}

// Workspace holds the stage buffers of one running solve.
type Workspace struct {
	k     []*dynamo.Batch
	stage *dynamo.Batch
	ts    []float64
	y     *dynamo.Batch
	err   *dynamo.Batch
}

func NewWorkspace(m Method, rows, cols int) *Workspace {
	ws := &Workspace{
		k:     make([]*dynamo.Batch, m.Stages()),
		stage: dynamo.NewBatch(rows, cols),
		ts:    make([]float64, rows),
		y:     dynamo.NewBatch(rows, cols),
	}
	for i := range ws.k {
		ws.k[i] = dynamo.NewBatch(rows, cols)
	}
	if m.Adaptive() {
		ws.err = dynamo.NewBatch(rows, cols)
	}
	return ws
}

// Fits reports whether ws was allocated for m and the given shape.
func (ws *Workspace) Fits(m Method, rows, cols int) bool {
	return len(ws.k) == m.Stages() && ws.y.Rows == rows && ws.y.Cols == cols &&
		(ws.err != nil) == m.Adaptive()
}

// RK is an explicit Runge-Kutta method defined by a Tableau.
type RK struct {
	tab  *Tableau
	term *term.Term
}

func NewRK(tab *Tableau, t *term.Term) *RK {
	return &RK{tab: tab, term: t}
}

func (r *RK) Name() string     { return r.tab.Name }
func (r *RK) Order() int       { return r.tab.Order }
func (r *RK) Stages() int      { return r.tab.Stages() }
func (r *RK) Adaptive() bool   { return r.tab.E != nil }
func (r *RK) Term() *term.Term { return r.term }

func (r *RK) Step(f *term.Term, t, dt []float64, y, f0 *dynamo.Batch, ws *Workspace) Result {
	tab := r.tab
	ws.k[0].CopyFrom(f0)

	for s := 1; s < tab.Stages(); s++ {
		combine(ws.stage, y, dt, tab.A[s], ws.k)
		for i := range ws.ts {
			ws.ts[i] = t[i] + tab.C[s]*dt[i]
		}
		f.Eval(ws.ts, ws.stage, ws.k[s])
	}

	combine(ws.y, y, dt, tab.B, ws.k)
	res := Result{Y: ws.y}

	if tab.E != nil {
		for i := range ws.err.Data {
			ws.err.Data[i] = 0
		}
		for s, e := range tab.E {
			if e != 0 {
				dynamo.AddScaledRows(ws.err, e, dt, ws.k[s])
			}
		}
		res.Err = ws.err
	}
	if tab.FSAL {
		res.F1 = ws.k[tab.Stages()-1]
	}
	return res
}

// combine sets dst = y + dt * sum_j coef[j]*k[j] row by row.
func combine(dst, y *dynamo.Batch, dt []float64, coef []float64, k []*dynamo.Batch) {
	dst.CopyFrom(y)
	for j, a := range coef {
		if a != 0 {
			dynamo.AddScaledRows(dst, a, dt, k[j])
		}
	}
}
