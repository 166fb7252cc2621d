package config

import "sort"

var Presets = map[string]map[string]*Config{
	"sine": {
		"scenario": {
			Problem: "sine", Method: "dopri5",
			Controller: ControllerConfig{Kind: "integral", Atol: 1e-3, Rtol: 1e-3},
			TEval:      [][]float64{{0.1, 0.15, 1.0}, {1.0, 1.9, 2.0}},
		},
		"tight": {
			Problem: "sine", Method: "tsit5",
			Controller: ControllerConfig{Kind: "pid", Atol: 1e-9, Rtol: 1e-9, PCoeff: 0.2, ICoeff: 0.4},
			TEval:      [][]float64{{0, 3.14159, 6.28318}},
		},
		"fixed": {
			Problem: "sine", Method: "euler", Dt0: 0.01,
			Controller: ControllerConfig{Kind: "integral", Atol: 1e-3, Rtol: 1e-3},
			TEval:      [][]float64{{0, 1, 2}},
		},
	},
	"decay": {
		"batch": {
			Problem: "decay", Method: "heun",
			Controller: ControllerConfig{Kind: "integral", Atol: 1e-6, Rtol: 1e-4},
			TEval:      [][]float64{{0, 1}, {0, 2}, {0, 4}, {0, 8}},
		},
	},
	"vanderpol": {
		"relaxation": {
			Problem: "vanderpol", Method: "dopri5",
			Controller: ControllerConfig{Kind: "pid", Atol: 1e-6, Rtol: 1e-6, PCoeff: 0.2, ICoeff: 0.4},
			TEval:      [][]float64{{0, 20}},
		},
	},
	"lorenz": {
		"attractor": {
			Problem: "lorenz", Method: "tsit5",
			Controller: ControllerConfig{Kind: "integral", Atol: 1e-8, Rtol: 1e-6, DtMax: 0.05},
			TEval:      [][]float64{{0, 5, 10, 20}},
		},
	},
	"pendulum": {
		"damped": {
			Problem: "pendulum", Method: "dopri5",
			Controller: ControllerConfig{Kind: "integral", Atol: 1e-6, Rtol: 1e-6},
			TEval:      [][]float64{{0, 5, 10, 20}},
		},
	},
}

// GetPreset returns a copy of the named preset with unset fields taken from
// DefaultConfig, or nil if there is none.
func GetPreset(problem, name string) *Config {
	p, ok := Presets[problem][name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Problem = p.Problem
	cfg.Method = p.Method
	cfg.Dt0 = p.Dt0
	cfg.TEval = make([][]float64, len(p.TEval))
	for i, grid := range p.TEval {
		cfg.TEval[i] = append([]float64(nil), grid...)
	}

	cc := p.Controller
	cfg.Controller.Kind = cc.Kind
	cfg.Controller.Atol = cc.Atol
	cfg.Controller.Rtol = cc.Rtol
	cfg.Controller.DtMin = cc.DtMin
	cfg.Controller.DtMax = cc.DtMax
	if cc.Kind == "pid" {
		cfg.Controller.PCoeff = cc.PCoeff
		cfg.Controller.ICoeff = cc.ICoeff
		cfg.Controller.DCoeff = cc.DCoeff
	}
	return cfg
}

// PresetNames lists the presets available for a problem.
func PresetNames(problem string) []string {
	names := make([]string, 0, len(Presets[problem]))
	for name := range Presets[problem] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
