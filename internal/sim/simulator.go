package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/odesketch/internal/dynamo"
)

// Solver drives a stepper across a span. It owns the (t, dt, y) triple of a
// solve and is the only writer of the returned trajectory.
type Solver struct {
	stepper dynamo.Stepper
}

func New(stepper dynamo.Stepper) *Solver {
	return &Solver{stepper: stepper}
}

func (s *Solver) Stepper() dynamo.Stepper { return s.stepper }

// Solve integrates p from span.Start() towards span.End() starting at ics
// with tentative step dt.
//
// The trajectory always holds the initial sample and its times are strictly
// increasing. The last step is shortened to land exactly on span.End(). A
// stepper that exhausts its iteration budget ends the solve early with
// Truncated set; that is not an error. A span that is empty or runs
// backwards yields the initial sample only.
func (s *Solver) Solve(p dynamo.Problem, span dynamo.Span, dt float64, ics []float64) (*dynamo.Trajectory, error) {
	if err := s.validate(p, span, dt, ics); err != nil {
		return nil, err
	}

	t, t1 := span.Start(), span.End()
	y := dynamo.State(ics).Clone()

	tr := &dynamo.Trajectory{
		Times:  []float64{t},
		States: []dynamo.State{y.Clone()},
	}

	for t < t1 {
		h := math.Min(dt, t1-t)
		res, err := s.stepper.Step(p, t, y, h)
		tr.Stats.Rejected += res.Rejected
		tr.Stats.Evaluations += res.Evaluations
		if errors.Is(err, dynamo.ErrReachedMaxStepIter) {
			tr.Truncated = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("step at t=%g: %w", t, err)
		}

		next := t + res.Taken
		if res.Taken >= t1-t {
			next = t1
		}
		if !(res.Taken > 0) || next <= t {
			// step underflowed t; nothing further can be appended
			tr.Truncated = true
			break
		}

		t = next
		dt = res.Next
		tr.Stats.Accepted++
		tr.Times = append(tr.Times, t)
		tr.States = append(tr.States, y.Clone())
	}

	return tr, nil
}

func (s *Solver) validate(p dynamo.Problem, span dynamo.Span, dt float64, ics []float64) error {
	if s.stepper == nil {
		return fmt.Errorf("%w: no stepper", dynamo.ErrInvalidConfig)
	}
	if err := dynamo.CheckDim("initial conditions", ics, p.Dim()); err != nil {
		return err
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: initial step must be positive and finite, got %g", dynamo.ErrInvalidConfig, dt)
	}
	for _, v := range span {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: span %v is not finite", dynamo.ErrInvalidConfig, [2]float64(span))
		}
	}
	return nil
}
