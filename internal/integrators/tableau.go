package integrators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/odesketch/internal/dynamo"
)

// Tableau is an explicit Runge-Kutta Butcher tableau. B holds the weights of
// the propagated solution. E holds B minus the weights of the embedded
// solution and is nil for methods without an error estimate.
type Tableau struct {
	Name string
	// Order is the exponent denominator of the step-size controller, the
	// order of the lower of the two embedded solutions.
	Order int
	C     []float64
	A     [][]float64
	B     []float64
	E     []float64
}

func (tb *Tableau) Stages() int { return len(tb.C) }

func (tb *Tableau) Embedded() bool { return tb.E != nil }

// stages holds per-stepper scratch buffers for evaluating a tableau.
type stages struct {
	tab  *Tableau
	k    []dynamo.State
	tmp  dynamo.State
	ynew dynamo.State
	errv dynamo.State
}

func (s *stages) ensureScratch(n int) {
	if len(s.tmp) != n || len(s.k) != s.tab.Stages() {
		s.k = make([]dynamo.State, s.tab.Stages())
		for i := range s.k {
			s.k[i] = make(dynamo.State, n)
		}
		s.tmp = make(dynamo.State, n)
		s.ynew = make(dynamo.State, n)
		s.errv = make(dynamo.State, n)
	}
}

// attempt evaluates every stage from (t, y) with step h and leaves the
// propagated solution in s.ynew. finite is false when a derivative or the
// new state is NaN or infinite.
func (s *stages) attempt(p dynamo.Problem, t float64, y dynamo.State, h float64) (finite bool, err error) {
	tab := s.tab
	for i := range tab.C {
		copy(s.tmp, y)
		for j, a := range tab.A[i] {
			if a != 0 {
				floats.AddScaled(s.tmp, h*a, s.k[j])
			}
		}
		if err := p.RHS(t+tab.C[i]*h, s.tmp, s.k[i]); err != nil {
			return false, err
		}
		if !s.k[i].IsValid() {
			return false, nil
		}
	}

	copy(s.ynew, y)
	for j, b := range tab.B {
		if b != 0 {
			floats.AddScaled(s.ynew, h*b, s.k[j])
		}
	}
	return s.ynew.IsValid(), nil
}

// errorNorm is the max-norm of h * sum(E_j * k_j).
func (s *stages) errorNorm(h float64) float64 {
	for i := range s.errv {
		s.errv[i] = 0
	}
	for j, e := range s.tab.E {
		if e != 0 {
			floats.AddScaled(s.errv, h*e, s.k[j])
		}
	}
	return floats.Norm(s.errv, math.Inf(1))
}

// shrink proposes the retry size after a rejected attempt at h. It never
// exceeds h, so a final short step is not stretched back up to MinStep.
func shrink(cfg dynamo.IntegratorConfig, h, proposal float64) float64 {
	return math.Min(h, math.Max(proposal, cfg.MinStep))
}

func (tb *Tableau) validate() error {
	n := len(tb.C)
	if len(tb.A) != n || len(tb.B) != n || (tb.E != nil && len(tb.E) != n) {
		return fmt.Errorf("tableau %s: inconsistent stage count", tb.Name)
	}
	for i, row := range tb.A {
		if len(row) > i {
			return fmt.Errorf("tableau %s: row %d is not explicit", tb.Name, i)
		}
	}
	return nil
}
