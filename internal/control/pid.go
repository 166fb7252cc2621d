package control

import (
	"fmt"
	"math"

	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/term"
)

const (
	DefaultSafety    = 0.9
	DefaultFactorMin = 0.2
	DefaultFactorMax = 10.0

	// ratios below this are treated as this when raised to negative powers
	minRatio = 1e-10
)

// Controller is a PID step size controller. The integral controller is the
// special case pcoeff = dcoeff = 0, icoeff = 1.
type Controller struct {
	kind      string
	atol      float64
	rtol      float64
	pcoeff    float64
	icoeff    float64
	dcoeff    float64
	safety    float64
	factorMin float64
	factorMax float64
	dtMin     float64
	dtMax     float64
	order     int
	term      *term.Term
}

type Option func(*Controller)

// WithSafety sets the safety factor applied to every proposed step.
func WithSafety(s float64) Option {
	return func(c *Controller) { c.safety = s }
}

// WithFactorBounds bounds the ratio between consecutive step sizes.
func WithFactorBounds(lo, hi float64) Option {
	return func(c *Controller) {
		c.factorMin = lo
		c.factorMax = hi
	}
}

// WithDtBounds bounds every proposed step size. hi <= 0 means unbounded.
func WithDtBounds(lo, hi float64) Option {
	return func(c *Controller) {
		c.dtMin = lo
		c.dtMax = hi
		if hi <= 0 {
			c.dtMax = math.Inf(1)
		}
	}
}

// WithOrder overrides the exponent order q in r^(-1/q). By default the
// convergence order of the step method is used.
func WithOrder(q int) Option {
	return func(c *Controller) { c.order = q }
}

// WithTerm binds a term used to estimate the initial step when no other term
// is bound or supplied.
func WithTerm(t *term.Term) Option {
	return func(c *Controller) { c.term = t }
}

func NewIntegral(atol, rtol float64, opts ...Option) *Controller {
	return newController("integral", atol, rtol, 0, 1, 0, opts)
}

func NewPID(atol, rtol, pcoeff, icoeff, dcoeff float64, opts ...Option) *Controller {
	return newController("pid", atol, rtol, pcoeff, icoeff, dcoeff, opts)
}

func newController(kind string, atol, rtol, p, i, d float64, opts []Option) *Controller {
	c := &Controller{
		kind:      kind,
		atol:      atol,
		rtol:      rtol,
		pcoeff:    p,
		icoeff:    i,
		dcoeff:    d,
		safety:    DefaultSafety,
		factorMin: DefaultFactorMin,
		factorMax: DefaultFactorMax,
		dtMin:     0,
		dtMax:     math.Inf(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Kind() string                 { return c.kind }
func (c *Controller) Term() *term.Term             { return c.term }
func (c *Controller) DtBounds() (float64, float64) { return c.dtMin, c.dtMax }

// Validate checks the configuration once, before any solve uses it.
func (c *Controller) Validate() error {
	if c.dtMin < 0 || c.dtMin > c.dtMax || math.IsNaN(c.dtMin) || math.IsNaN(c.dtMax) {
		return fmt.Errorf("%w: dt bounds [%g, %g]", dynamo.ErrInvalidStepSize, c.dtMin, c.dtMax)
	}
	if c.atol < 0 || c.rtol < 0 || c.atol+c.rtol == 0 {
		return fmt.Errorf("%w: tolerances atol=%g rtol=%g", dynamo.ErrInvalidConfig, c.atol, c.rtol)
	}
	if c.safety <= 0 || c.safety > 1 {
		return fmt.Errorf("%w: safety %g not in (0, 1]", dynamo.ErrInvalidConfig, c.safety)
	}
	if c.factorMin <= 0 || c.factorMin >= 1 || c.factorMax <= 1 {
		return fmt.Errorf("%w: factor bounds [%g, %g]", dynamo.ErrInvalidConfig, c.factorMin, c.factorMax)
	}
	if c.order < 0 {
		return fmt.Errorf("%w: order %d", dynamo.ErrInvalidConfig, c.order)
	}
	return nil
}

// Memory holds the error ratios of the two previously accepted steps.
type Memory struct {
	Prev1 float64
	Prev2 float64
}

func NewMemory() Memory {
	return Memory{Prev1: 1, Prev2: 1}
}

type Decision struct {
	Accept bool
	Next   float64
	Ratio  float64
	// Stalled is set when a step at the minimum step size was rejected.
	Stalled bool
}

// Decide accepts or rejects a step of size dt from y to yNext with local error
// estimate errEst and proposes the next step size. A nil errEst accepts the
// step and keeps dt. order is the convergence order of the step method.
func (c *Controller) Decide(errEst, y, yNext dynamo.State, dt float64, order int, mem Memory) (Decision, Memory) {
	if errEst == nil {
		return Decision{Accept: true, Next: c.Clamp(dt)}, mem
	}

	q := float64(order)
	if c.order > 0 {
		q = float64(c.order)
	}

	ratio := c.ErrorRatio(errEst, y, yNext)
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		next := c.Clamp(dt * c.factorMin)
		return Decision{Ratio: ratio, Next: next, Stalled: next >= dt}, mem
	}

	if ratio > 1 {
		factor := math.Max(c.factorMin, c.safety*math.Pow(ratio, -1/q))
		next := c.Clamp(dt * factor)
		return Decision{Ratio: ratio, Next: next, Stalled: next >= dt}, mem
	}

	beta1 := (c.pcoeff + c.icoeff + c.dcoeff) / q
	beta2 := -(c.pcoeff + 2*c.dcoeff) / q
	beta3 := c.dcoeff / q

	r := math.Max(ratio, minRatio)
	factor := c.safety * math.Pow(r, -beta1)
	if beta2 != 0 {
		factor *= math.Pow(math.Max(mem.Prev1, minRatio), -beta2)
	}
	if beta3 != 0 {
		factor *= math.Pow(math.Max(mem.Prev2, minRatio), -beta3)
	}
	factor = math.Min(c.factorMax, math.Max(c.factorMin, factor))

	return Decision{Accept: true, Ratio: ratio, Next: c.Clamp(dt * factor)}, Memory{Prev1: ratio, Prev2: mem.Prev1}
}

// ErrorRatio is the RMS over features of errEst scaled by atol + rtol*max(|y|, |yNext|).
func (c *Controller) ErrorRatio(errEst, y, yNext dynamo.State) float64 {
	if len(errEst) == 0 {
		return 0
	}
	scaled := make(dynamo.State, len(errEst))
	for i, e := range errEst {
		scaled[i] = e / (c.atol + c.rtol*math.Max(math.Abs(y[i]), math.Abs(yNext[i])))
	}
	return scaled.RMS()
}

// Clamp limits dt to the configured step size bounds.
func (c *Controller) Clamp(dt float64) float64 {
	return math.Min(c.dtMax, math.Max(c.dtMin, dt))
}
