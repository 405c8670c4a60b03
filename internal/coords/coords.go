// Package coords maps initial conditions and integration bounds between the
// user's plane and the frame the solver integrates in.
//
// In the Cartesian frame the ODE is y' = f(x, y): the abscissa is the
// independent variable and the ordinate is the state. In the Polar frame the
// ODE is theta' = f(r, theta): the radius is the independent variable and the
// angle is the state.
package coords

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/odesketch/internal/dynamo"
)

type Frame uint8

const (
	Cartesian Frame = iota
	Polar
)

func (f Frame) String() string {
	switch f {
	case Cartesian:
		return "cartesian"
	case Polar:
		return "polar"
	default:
		return fmt.Sprintf("Frame(%d)", uint8(f))
	}
}

// Vars returns the frame's symbol pair in binding order: the independent
// variable first, then the state variable.
func (f Frame) Vars() [2]string {
	if f == Polar {
		return [2]string{"r", "theta"}
	}
	return [2]string{"x", "y"}
}

// Toggle returns the other frame.
func (f Frame) Toggle() Frame {
	if f == Polar {
		return Cartesian
	}
	return Polar
}

func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cartesian", "cart", "xy":
		return Cartesian, nil
	case "polar", "rtheta":
		return Polar, nil
	}
	return Cartesian, fmt.Errorf("unknown coordinate frame %q (want cartesian or polar)", s)
}

func (f Frame) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Frame) UnmarshalText(b []byte) error {
	v, err := ParseFrame(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Point is a sample in the user's (x, y) plane.
type Point struct {
	X float64
	Y float64
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// ToSolverFrame converts the initial point and the integration length into an
// initial state and a span.
//
// For Polar the terminal radius is hypot(x0+length, y0): it reuses the
// initial ordinate rather than anything derived from the trajectory. The
// resulting span can run backwards when the shifted point is closer to the
// origin; the driver then returns the initial sample only.
func ToSolverFrame(frame Frame, ics Point, length float64) (dynamo.State, dynamo.Span) {
	switch frame {
	case Polar:
		r0 := math.Hypot(ics.X, ics.Y)
		rn := math.Hypot(ics.X+length, ics.Y)
		theta0 := math.Atan2(ics.Y, ics.X)
		return dynamo.State{theta0}, dynamo.Span{r0, rn}
	default:
		return dynamo.State{ics.Y}, dynamo.Span{ics.X, ics.X + length}
	}
}

// FromSolverPoint maps one (independent, state) pair back into the plane.
func FromSolverPoint(frame Frame, t, v float64) Point {
	if frame == Polar {
		return Point{X: t * math.Cos(v), Y: t * math.Sin(v)}
	}
	return Point{X: t, Y: v}
}

// FromSolverFrame maps every sample of a trajectory back into the plane using
// the first state component.
func FromSolverFrame(frame Frame, tr *dynamo.Trajectory) []Point {
	if tr == nil {
		return nil
	}
	pts := make([]Point, len(tr.Times))
	for i, t := range tr.Times {
		v := math.NaN()
		if len(tr.States[i]) > 0 {
			v = tr.States[i][0]
		}
		pts[i] = FromSolverPoint(frame, t, v)
	}
	return pts
}
