package adjoint

import (
	"fmt"
	"math"

	"github.com/go-kit/kit/log"
	"github.com/san-kum/parode/internal/control"
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/integrators"
	"github.com/san-kum/parode/internal/term"
)

const (
	DefaultMaxSteps   = 10000
	DefaultMaxRejects = 64
)

// StepSizeController decides whether a step is accepted and how large the
// next one is. *control.Controller implements it.
type StepSizeController interface {
	Term() *term.Term
	Validate() error
	Decide(errEst, y, yNext dynamo.State, dt float64, order int, mem control.Memory) (control.Decision, control.Memory)
	InitialStep(f *term.Term, t0, tEnd []float64, y0, f0 *dynamo.Batch, order int) []float64
	Clamp(dt float64) float64
}

type AutoDiffAdjoint struct {
	method     integrators.Method
	ctrl       StepSizeController
	maxSteps   int
	maxRejects int
	logger     log.Logger
}

type Option func(*AutoDiffAdjoint)

// WithMaxSteps bounds the number of loop iterations of one solve.
func WithMaxSteps(n int) Option {
	return func(a *AutoDiffAdjoint) { a.maxSteps = n }
}

// WithMaxRejects bounds the number of consecutive rejected steps of one element.
func WithMaxRejects(n int) Option {
	return func(a *AutoDiffAdjoint) { a.maxRejects = n }
}

func WithLogger(l log.Logger) Option {
	return func(a *AutoDiffAdjoint) { a.logger = l }
}

func New(method integrators.Method, ctrl StepSizeController, opts ...Option) *AutoDiffAdjoint {
	a := &AutoDiffAdjoint{
		method:     method,
		ctrl:       ctrl,
		maxSteps:   DefaultMaxSteps,
		maxRejects: DefaultMaxRejects,
		logger:     log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AutoDiffAdjoint) Method() integrators.Method { return a.method }

// Forward solves the problem. It is equivalent to Solve.
func (a *AutoDiffAdjoint) Forward(p *Problem, f *term.Term, dt0 []float64) (*Solution, error) {
	return a.Solve(p, f, dt0)
}

// Solve integrates every element of p from its start to its end time. f
// overrides the term bound at construction; dt0 may be nil for methods with
// an error estimate. Either the whole batch is solved or an error is
// returned.
func (a *AutoDiffAdjoint) Solve(p *Problem, f *term.Term, dt0 []float64) (*Solution, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	fr := newFrame(p.BatchSize(), p.Features())
	return a.run(p, f, dt0, fr)
}

// Compile specializes the solve loop to problems with the given batch size
// and number of features.
func (a *AutoDiffAdjoint) Compile(batch, features int) (*Program, error) {
	if batch <= 0 || features <= 0 {
		return nil, fmt.Errorf("%w: cannot compile for shape %dx%d", dynamo.ErrDimensionMismatch, batch, features)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	fr := newFrame(batch, features)
	fr.workspace(a.method)
	return &Program{
		solver:   a,
		batch:    batch,
		features: features,
		frame:    fr,
	}, nil
}

func (a *AutoDiffAdjoint) validate() error {
	if a.maxSteps <= 0 {
		return fmt.Errorf("%w: max steps %d", dynamo.ErrInvalidConfig, a.maxSteps)
	}
	if a.maxRejects <= 0 {
		return fmt.Errorf("%w: max rejects %d", dynamo.ErrInvalidConfig, a.maxRejects)
	}
	return a.ctrl.Validate()
}

// boundTerm is the term bound at construction, preferring the step method's.
func (a *AutoDiffAdjoint) boundTerm() *term.Term {
	if t := a.method.Term(); t != nil {
		return t
	}
	return a.ctrl.Term()
}

func (a *AutoDiffAdjoint) checkDt0(dt0 []float64, rows int) error {
	if dt0 == nil {
		if !a.method.Adaptive() {
			return fmt.Errorf("%w: %s has no error estimate and needs an initial step", dynamo.ErrInvalidStepSize, a.method.Name())
		}
		return nil
	}
	if len(dt0) != rows {
		return fmt.Errorf("%w: %d initial steps for %d elements", dynamo.ErrInvalidStepSize, len(dt0), rows)
	}
	for i, dt := range dt0 {
		if !(dt > 0) || math.IsInf(dt, 0) {
			return fmt.Errorf("%w: initial step %g of element %d", dynamo.ErrInvalidStepSize, dt, i)
		}
	}
	return nil
}
