// Package viz draws solved trajectories in the terminal.
//
//   - [Canvas]: braille dot canvas with a plane [Window] mapping
//   - [Explorer]: Bubble Tea model that re-solves on every edit
//
// # Key Bindings
//
//	e/enter - edit the expression (enter applies, esc cancels)
//	arrows  - move the initial condition
//	f       - toggle cartesian/polar
//	+/-     - lengthen or shorten the integration
//	m       - cycle integration methods
//	t       - cycle themes
//	r       - reset to the loaded configuration
//	q       - quit
package viz
