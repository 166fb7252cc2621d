package config

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/parode/internal/dynamo"
	"github.com/san-kum/parode/internal/problems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "sine", cfg.Problem)
	assert.Equal(t, "dopri5", cfg.Method)
	assert.Equal(t, "integral", cfg.Controller.Kind)
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("sine", "tight")
	require.NotNil(t, cfg)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	cfg := DefaultConfig()
	cfg.Controller.DtMin = 1
	cfg.Controller.DtMax = 0.5
	require.NoError(t, Save(path, cfg))

	_, err := Load(path)
	assert.ErrorIs(t, err, dynamo.ErrInvalidStepSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown problem", func(c *Config) { c.Problem = "cartpole" }, dynamo.ErrInvalidConfig},
		{"unknown method", func(c *Config) { c.Method = "rk4" }, dynamo.ErrInvalidConfig},
		{"unknown controller", func(c *Config) { c.Controller.Kind = "lqr" }, dynamo.ErrInvalidConfig},
		{"negative tolerance", func(c *Config) { c.Controller.Atol = -1 }, dynamo.ErrInvalidConfig},
		{"zero max steps", func(c *Config) { c.MaxSteps = 0 }, dynamo.ErrInvalidConfig},
		{"negative dt0", func(c *Config) { c.Dt0 = -0.1 }, dynamo.ErrInvalidStepSize},
		{"no grid", func(c *Config) { c.TEval = nil }, dynamo.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestBuildController(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Controller.DtMax = 0

	ctrl, err := cfg.BuildController(nil)
	require.NoError(t, err)
	assert.Equal(t, "integral", ctrl.Kind())
	lo, hi := ctrl.DtBounds()
	assert.Equal(t, 0.0, lo)
	assert.True(t, math.IsInf(hi, 1))

	cfg.Controller.Kind = "pid"
	ctrl, err = cfg.BuildController(nil)
	require.NoError(t, err)
	assert.Equal(t, "pid", ctrl.Kind())
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("sine", "scenario")
	require.NotNil(t, cfg)
	assert.Equal(t, 1e-3, cfg.Controller.Atol)
	assert.Equal(t, DefaultSafety, cfg.Controller.Safety)
	assert.Equal(t, [][]float64{{0.1, 0.15, 1.0}, {1.0, 1.9, 2.0}}, cfg.TEval)

	assert.Nil(t, GetPreset("sine", "missing"))
	assert.Nil(t, GetPreset("missing", "scenario"))
	assert.Equal(t, []string{"fixed", "scenario", "tight"}, PresetNames("sine"))
}

// Every preset must be valid and solvable.
func TestPresetsSolve(t *testing.T) {
	for problem := range Presets {
		for _, name := range PresetNames(problem) {
			t.Run(problem+"/"+name, func(t *testing.T) {
				cfg := GetPreset(problem, name)
				require.NoError(t, cfg.Validate())

				_, f, p, err := problems.Get(cfg.Problem, cfg.TEval)
				require.NoError(t, err)
				solver, dt0, err := cfg.BuildSolver(f)
				require.NoError(t, err)

				sol, err := solver.Solve(p, nil, dt0)
				require.NoError(t, err)
				for i := range sol.Ts {
					assert.Equal(t, p.TEnd[i], sol.Ts[i][len(sol.Ts[i])-1])
				}
			})
		}
	}
}
