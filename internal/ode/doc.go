// Package ode wires the solving pipeline together: settings snapshot,
// coordinate transform, expression compile, RHS adapter and driver.
//
// A Solver is stateless between calls. A Session adds the two pieces of
// state an interactive host needs: the last good Solution, kept for display
// while the user fixes a broken expression, and a compiled evaluator cached
// by exact expression text and frame.
package ode
