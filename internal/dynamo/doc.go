// Package dynamo provides the numeric primitives shared by the solver packages.
//
// The solver integrates a batch of independent initial value problems
//
//	dy/dt = f(t, y),  y(t0) = y0
//
// in lock-step. Batch data is stored in a [Batch], a row-major matrix with one
// row per batch element; a single row is a [State].
//
//   - [Batch]: dense rows x features matrix
//   - [State]: one feature vector
//   - [Status]: per-element termination status of a solve
//   - [SolveError]: a solve failure tied to one batch element
//
// # Example
//
//	y0 := dynamo.NewBatch(2, 2)
//	copy(y0.Row(0), []float64{0, 1})
//	copy(y0.Row(1), []float64{1, 0})
//
// # Thread Safety
//
// Batch values are plain data. Nothing in this package synchronizes access; a
// Batch owned by a running solve must not be shared with another goroutine.
package dynamo
