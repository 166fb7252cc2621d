package config

import (
	"fmt"
	"os"

	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/control"
	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/integrators"
	"github.com/san-kum/parode/internal/problems"
	"github.com/san-kum/parode/internal/term"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAtol      = 1e-6
	DefaultRtol      = 1e-3
	DefaultSafety    = 0.9
	DefaultFactorMin = 0.2
	DefaultFactorMax = 10.0
	DefaultTEnd      = 10.0
)

type Config struct {
	Problem    string           `yaml:"problem"`
	Method     string           `yaml:"method"`
	Controller ControllerConfig `yaml:"controller"`
	Dt0        float64          `yaml:"dt0,omitempty"`
	MaxSteps   int              `yaml:"max_steps"`
	MaxRejects int              `yaml:"max_rejects"`

	// TEval holds one evaluation grid per batch element.
	TEval [][]float64 `yaml:"t_eval"`
}

type ControllerConfig struct {
	Kind      string  `yaml:"kind"`
	Atol      float64 `yaml:"atol"`
	Rtol      float64 `yaml:"rtol"`
	Safety    float64 `yaml:"safety"`
	FactorMin float64 `yaml:"factor_min"`
	FactorMax float64 `yaml:"factor_max"`
	DtMin     float64 `yaml:"dt_min"`
	DtMax     float64 `yaml:"dt_max"`
	PCoeff    float64 `yaml:"pcoeff"`
	ICoeff    float64 `yaml:"icoeff"`
	DCoeff    float64 `yaml:"dcoeff"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem: "sine",
		Method:  "dopri5",
		Controller: ControllerConfig{
			Kind:      "integral",
			Atol:      DefaultAtol,
			Rtol:      DefaultRtol,
			Safety:    DefaultSafety,
			FactorMin: DefaultFactorMin,
			FactorMax: DefaultFactorMax,
			ICoeff:    1,
		},
		MaxSteps:   adjoint.DefaultMaxSteps,
		MaxRejects: adjoint.DefaultMaxRejects,
		TEval:      [][]float64{{0, DefaultTEnd}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := problems.Lookup(c.Problem); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if _, err := integrators.ByName(c.Method, nil); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if c.MaxSteps <= 0 || c.MaxRejects <= 0 {
		return fmt.Errorf("%w: max_steps and max_rejects must be positive", dynamo.ErrInvalidConfig)
	}
	if c.Dt0 < 0 {
		return fmt.Errorf("%w: dt0 %g", dynamo.ErrInvalidStepSize, c.Dt0)
	}
	if len(c.TEval) == 0 {
		return fmt.Errorf("%w: t_eval is empty", dynamo.ErrInvalidConfig)
	}
	ctrl, err := c.BuildController(nil)
	if err != nil {
		return err
	}
	return ctrl.Validate()
}

// BuildMethod returns the configured step method bound to f.
func (c *Config) BuildMethod(f *term.Term) (integrators.Method, error) {
	return integrators.ByName(c.Method, f)
}

// BuildController returns the configured step size controller bound to f.
func (c *Config) BuildController(f *term.Term) (*control.Controller, error) {
	cc := c.Controller
	opts := []control.Option{
		control.WithSafety(cc.Safety),
		control.WithFactorBounds(cc.FactorMin, cc.FactorMax),
		control.WithDtBounds(cc.DtMin, cc.DtMax),
		control.WithTerm(f),
	}
	switch cc.Kind {
	case "", "integral":
		return control.NewIntegral(cc.Atol, cc.Rtol, opts...), nil
	case "pid":
		return control.NewPID(cc.Atol, cc.Rtol, cc.PCoeff, cc.ICoeff, cc.DCoeff, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown controller kind %q", dynamo.ErrInvalidConfig, cc.Kind)
	}
}

// BuildSolver assembles the solver for f along with the initial steps to
// pass to it, which are nil when the controller should estimate them.
func (c *Config) BuildSolver(f *term.Term, opts ...adjoint.Option) (*adjoint.AutoDiffAdjoint, []float64, error) {
	m, err := c.BuildMethod(f)
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := c.BuildController(f)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]adjoint.Option{adjoint.WithMaxSteps(c.MaxSteps), adjoint.WithMaxRejects(c.MaxRejects)}, opts...)

	var dt0 []float64
	if c.Dt0 > 0 {
		dt0 = make([]float64, len(c.TEval))
		for i := range dt0 {
			dt0[i] = c.Dt0
		}
	}
	return adjoint.New(m, ctrl, opts...), dt0, nil
}
