// Package adjoint drives the integration loop of a batch of initial value
// problems.
//
// An [AutoDiffAdjoint] combines a step method with a step size controller:
//
//	method := integrators.NewDopri5(f)
//	ctrl := control.NewIntegral(1e-3, 1e-3)
//	solver := adjoint.New(method, ctrl)
//	sol, err := solver.Solve(problem, nil, nil)
//
// The term may be bound to the step method at construction or passed to
// Solve; a passed term takes precedence. The initial step dt0 may be nil for
// methods with an error estimate, in which case it is estimated per element.
//
// # Loop
//
// All batch elements advance in lock-step. Each iteration takes one step for
// every element, accepts or rejects it per element and freezes elements that
// reached their end time. The number of iterations is bounded by
// [WithMaxSteps], so the loop always terminates.
//
// [AutoDiffAdjoint.Compile] specializes the loop to a problem shape and
// preallocates every buffer it needs. A [Program] returns exactly the same
// solution as the eager Solve.
//
// # Thread Safety
//
// AutoDiffAdjoint is safe for concurrent use: every call to Solve owns its
// own state. A Program reuses its buffers and is NOT safe for concurrent use.
// Use [Ensemble] to solve many problems in parallel.
package adjoint
