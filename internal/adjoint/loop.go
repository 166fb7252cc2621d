package adjoint

import (
	"fmt"
	"math"

	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/parode/internal/control"
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/integrators"
	"github.com/san-kum/parode/internal/term"
)

// frame is the mutable state of one running solve.
type frame struct {
	t       []float64
	tEnd    []float64
	dt      []float64
	dtStep  []float64
	y       *dynamo.Batch
	f       *dynamo.Batch
	fNext   *dynamo.Batch
	active  []bool
	accept  []bool
	rejects []int
	mem     []control.Memory
	ws      *integrators.Workspace
}

func newFrame(rows, cols int) *frame {
	return &frame{
		t:       make([]float64, rows),
		tEnd:    make([]float64, rows),
		dt:      make([]float64, rows),
		dtStep:  make([]float64, rows),
		y:       dynamo.NewBatch(rows, cols),
		f:       dynamo.NewBatch(rows, cols),
		fNext:   dynamo.NewBatch(rows, cols),
		active:  make([]bool, rows),
		accept:  make([]bool, rows),
		rejects: make([]int, rows),
		mem:     make([]control.Memory, rows),
	}
}

// workspace returns the stage buffers of the frame, allocating them on first
// use. A frame kept by a Program hands out the same buffers on every call.
func (fr *frame) workspace(m integrators.Method) *integrators.Workspace {
	if fr.ws == nil || !fr.ws.Fits(m, fr.y.Rows, fr.y.Cols) {
		fr.ws = integrators.NewWorkspace(m, fr.y.Rows, fr.y.Cols)
	}
	return fr.ws
}

func (fr *frame) reset(p *Problem) {
	copy(fr.t, p.TStart)
	copy(fr.tEnd, p.TEnd)
	fr.y.CopyFrom(p.Y0)
	for i := range fr.active {
		fr.active[i] = true
		fr.accept[i] = false
		fr.rejects[i] = 0
		fr.mem[i] = control.NewMemory()
	}
}

func (a *AutoDiffAdjoint) run(p *Problem, supplied *term.Term, dt0 []float64, fr *frame) (*Solution, error) {
	binding, err := term.Resolve(a.boundTerm(), supplied)
	if err != nil {
		return nil, err
	}
	rows := p.BatchSize()
	if err := a.checkDt0(dt0, rows); err != nil {
		return nil, err
	}

	f := binding.Term
	m := a.method
	order := m.Order()
	sol := newSolution(rows)

	fr.reset(p)
	f.Eval(fr.t, fr.y, fr.f)
	if dt0 == nil {
		copy(fr.dt, a.ctrl.InitialStep(f, fr.t, fr.tEnd, fr.y, fr.f, order))
		for i := range sol.Stats {
			sol.Stats[i].FEvals++
		}
	} else {
		for i, dt := range dt0 {
			fr.dt[i] = a.ctrl.Clamp(dt)
		}
	}
	for i := 0; i < rows; i++ {
		sol.Stats[i].FEvals++
		sol.append(i, fr.t[i], fr.y.Row(i), fr.f.Row(i))
	}

	level.Debug(a.logger).Log("msg", "solve started", "method", m.Name(), "term", f.Name(), "binding", binding.Source, "batch", rows)

	ws := fr.workspace(m)
	remaining := rows
	for iter := 0; iter < a.maxSteps && remaining > 0; iter++ {
		for i := 0; i < rows; i++ {
			fr.accept[i] = false
			if fr.active[i] {
				fr.dtStep[i] = math.Min(fr.dt[i], fr.tEnd[i]-fr.t[i])
			} else {
				fr.dtStep[i] = 0
			}
		}

		res := m.Step(f, fr.t, fr.dtStep, fr.y, fr.f, ws)

		accepted := false
		for i := 0; i < rows; i++ {
			if !fr.active[i] {
				continue
			}
			st := &sol.Stats[i]
			st.Steps++
			st.FEvals += m.Stages() - 1

			var errEst dynamo.State
			if res.Err != nil {
				errEst = res.Err.Row(i)
			}
			var d control.Decision
			d, fr.mem[i] = a.ctrl.Decide(errEst, fr.y.Row(i), res.Y.Row(i), fr.dtStep[i], order, fr.mem[i])

			if !d.Accept {
				st.Rejected++
				fr.rejects[i]++
				fr.dt[i] = d.Next
				level.Debug(a.logger).Log("msg", "step rejected", "element", i, "t", fr.t[i], "dt", fr.dtStep[i], "ratio", d.Ratio)
				switch {
				case d.Stalled:
					return nil, a.fail(dynamo.ReachedDtMin, i, iter, fr)
				case fr.rejects[i] > a.maxRejects:
					return nil, a.fail(dynamo.TooManyRejections, i, iter, fr)
				}
				continue
			}

			tNext := fr.t[i] + fr.dtStep[i]
			if fr.dt[i] >= fr.tEnd[i]-fr.t[i] || tNext >= fr.tEnd[i] {
				tNext = fr.tEnd[i]
				fr.active[i] = false
				remaining--
			}
			if tNext <= fr.t[i] {
				return nil, a.fail(dynamo.ReachedDtMin, i, iter, fr)
			}

			st.Accepted++
			fr.rejects[i] = 0
			fr.t[i] = tNext
			fr.dt[i] = d.Next
			fr.accept[i] = true
			accepted = true
		}

		if !accepted {
			continue
		}
		fr.y.Select(fr.accept, res.Y)
		if res.F1 != nil {
			fr.f.Select(fr.accept, res.F1)
		} else {
			f.Eval(fr.t, fr.y, fr.fNext)
			fr.f.Select(fr.accept, fr.fNext)
		}
		for i := 0; i < rows; i++ {
			if !fr.accept[i] {
				continue
			}
			if res.F1 == nil {
				sol.Stats[i].FEvals++
			}
			sol.append(i, fr.t[i], fr.y.Row(i), fr.f.Row(i))
			if !fr.active[i] {
				sol.Status[i] = dynamo.Success
			}
		}
	}

	for i := 0; i < rows; i++ {
		if fr.active[i] {
			return nil, a.fail(dynamo.ReachedMaxSteps, i, a.maxSteps, fr)
		}
	}
	if p.TEval != nil {
		sol.Eval = sol.sample(p.TEval)
	}

	total := sol.Total()
	level.Debug(a.logger).Log("msg", "solve finished", "method", m.Name(), "accepted", total.Accepted, "rejected", total.Rejected, "f_evals", total.FEvals)
	return sol, nil
}

func (a *AutoDiffAdjoint) fail(status dynamo.Status, i, step int, fr *frame) error {
	err := &dynamo.SolveError{
		Status:  status,
		Element: i,
		Step:    step,
		Time:    fr.t[i],
		Dt:      fr.dt[i],
		Wrapped: dynamo.ErrNonConvergence,
	}
	level.Warn(a.logger).Log("msg", "solve failed", "err", err)
	return fmt.Errorf("%s: %w", a.method.Name(), err)
}
