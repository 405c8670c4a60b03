// Package dynamo provides the core value types shared by the solving pipeline.
//
// The package defines the contracts that connect the expression compiler,
// the integrators and the step-size-bounded driver:
//
//   - [State]: vector representing the dependent variables
//   - [Problem]: right-hand side of y' = f(t, y)
//   - [Stepper]: attempts one adaptive step
//   - [IntegratorConfig]: tolerance and step-size bounds for one run
//   - [Trajectory]: the samples produced by one solve
//
// # Example
//
//	stepper := integrators.NewRKF45(dynamo.DefaultIntegratorConfig())
//	traj, err := sim.New(stepper).Solve(problem, dynamo.Span{0, 10}, 1e-3, []float64{1})
//
// # Thread Safety
//
// Steppers keep scratch buffers and are NOT safe for concurrent use. Build
// one stepper per solve; see sim.Batch for running independent solves in
// parallel.
package dynamo
