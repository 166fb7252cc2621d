// Package control provides adaptive step size controllers.
//
// A controller turns the embedded error estimate of a step into an
// accept/reject decision and the next step size:
//
//   - [NewIntegral]: classic integral (I) controller, factor = safety * r^(-1/q)
//   - [NewPID]: PID controller over the current and two previous error ratios
//
// # Usage
//
//	ctrl := control.NewIntegral(1e-3, 1e-3)          // atol, rtol
//	ctrl := control.NewPID(1e-6, 1e-6, 0.2, 0.4, 0)  // + pcoeff, icoeff, dcoeff
//
// Controllers hold configuration only. Error ratios from earlier steps are
// carried in a [Memory] value owned by the caller, so Decide is a pure
// function of its arguments and one Controller can serve concurrent solves.
package control
