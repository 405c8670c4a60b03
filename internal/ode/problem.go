package ode

import (
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/expr"
	"github.com/san-kum/odesketch/internal/sim"
)

// ExpressionProblem adapts a compiled evaluator to dynamo.Problem. It keeps
// no state between calls; each RHS call takes a zeroed input buffer from a
// pool, so it is safe for concurrent use.
type ExpressionProblem struct {
	ev   *expr.Evaluator
	bufs *sim.BufferPool
}

func NewExpressionProblem(ev *expr.Evaluator) *ExpressionProblem {
	return &ExpressionProblem{ev: ev, bufs: sim.NewBufferPool(ev.NumInputs())}
}

func (p *ExpressionProblem) Dim() int { return p.ev.Dim() }

func (p *ExpressionProblem) Evaluator() *expr.Evaluator { return p.ev }

// RHS evaluates the expressions at [t, y...]. y and dy must both have Dim
// entries.
func (p *ExpressionProblem) RHS(t float64, y, dy []float64) error {
	n := p.ev.Dim()
	if err := dynamo.CheckDim("y", y, n); err != nil {
		return err
	}
	if err := dynamo.CheckDim("dy", dy, n); err != nil {
		return err
	}
	in := p.bufs.Get()
	defer p.bufs.Put(in)
	in[0] = t
	copy(in[1:], y)
	return p.ev.Eval(in, dy)
}
