package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Problem is the right-hand side of y' = f(t, y). RHS writes f(t, y) into dy;
// both slices must have length Dim().
type Problem interface {
	RHS(t float64, y, dy []float64) error
	Dim() int
}

// ProblemFunc adapts a plain function to the Problem interface.
type ProblemFunc struct {
	N  int
	Fn func(t float64, y, dy []float64)
}

func (p ProblemFunc) Dim() int { return p.N }

func (p ProblemFunc) RHS(t float64, y, dy []float64) error {
	if err := CheckDim("y", y, p.N); err != nil {
		return err
	}
	if err := CheckDim("dy", dy, p.N); err != nil {
		return err
	}
	p.Fn(t, y, dy)
	return nil
}

// StepResult describes one accepted step.
type StepResult struct {
	// Taken is the step size that produced the new state.
	Taken float64
	// Next is the proposed size for the following step.
	Next float64
	// Rejected counts the attempts discarded before acceptance.
	Rejected int
	// Evaluations counts RHS calls made during the step.
	Evaluations int
}

// Stepper attempts one step from (t, y) with tentative size dt. On success y
// holds the new state. ErrReachedMaxStepIter is returned when no step was
// accepted within the iteration budget; y is left untouched in that case.
type Stepper interface {
	Name() string
	Step(p Problem, t float64, y State, dt float64) (StepResult, error)
}

type IntegratorConfig struct {
	Tolerance     float64
	SafetyFactor  float64
	MinStep       float64
	MaxStep       float64
	MaxIterations int
}

func DefaultIntegratorConfig() IntegratorConfig {
	return IntegratorConfig{
		Tolerance:     1e-4,
		SafetyFactor:  0.9,
		MinStep:       1e-6,
		MaxStep:       1e-2,
		MaxIterations: 1000,
	}
}

func (c IntegratorConfig) Validate() error {
	if !(c.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalidConfig, c.Tolerance)
	}
	if !(c.SafetyFactor > 0 && c.SafetyFactor <= 1) {
		return fmt.Errorf("%w: safety factor must be in (0, 1], got %g", ErrInvalidConfig, c.SafetyFactor)
	}
	if !(c.MinStep > 0) {
		return fmt.Errorf("%w: min step must be positive, got %g", ErrInvalidConfig, c.MinStep)
	}
	if !(c.MaxStep >= c.MinStep) {
		return fmt.Errorf("%w: max step %g is below min step %g", ErrInvalidConfig, c.MaxStep, c.MinStep)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	return nil
}

// Clamp bounds dt into [MinStep, MaxStep].
func (c IntegratorConfig) Clamp(dt float64) float64 {
	return math.Min(math.Max(dt, c.MinStep), c.MaxStep)
}

// Span is the integration interval [Span[0], Span[1]].
type Span [2]float64

func (s Span) Start() float64 { return s[0] }
func (s Span) End() float64   { return s[1] }
func (s Span) Length() float64 {
	return s[1] - s[0]
}

type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
}

// Trajectory holds the samples of one solve. Times are strictly increasing and
// Times[0] is the start of the span.
type Trajectory struct {
	Times     []float64
	States    []State
	Truncated bool
	Stats     Stats
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Last returns the final sample.
func (tr *Trajectory) Last() (float64, State) {
	n := len(tr.Times) - 1
	return tr.Times[n], tr.States[n]
}

// Component returns the i-th state component of every sample.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for j, s := range tr.States {
		if i < len(s) {
			out[j] = s[i]
		}
	}
	return out
}
