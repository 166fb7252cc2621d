// Package problems provides reference ODE models and a fixture loader that
// turns them into batched problems.
//
// Each model implements [Model], defining the right-hand side for a single
// state:
//
//   - [Sine]: harmonic oscillator with solution y = [sin t, cos t]
//   - [Decay]: linear exponential decay
//   - [VanDerPol]: relaxation oscillator
//   - [Lorenz]: butterfly attractor
//   - [Pendulum]: damped nonlinear pendulum
//
// Models with a closed form solution also implement [Exact]; models with a mechanical
// energy implement [Hamiltonian] so its drift can be measured.
//
//	y0, f, problem, err := problems.Get("sine", [][]float64{{0.1, 0.15, 1.0}, {1.0, 1.9, 2.0}})
package problems
