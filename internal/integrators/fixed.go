package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/odesketch/internal/dynamo"
)

// Fixed is a non-adaptive stepper. Every finite attempt is accepted and the
// requested size is proposed again; only a non-finite derivative triggers a
// shrink and retry.
type Fixed struct {
	stages
	cfg dynamo.IntegratorConfig
}

func NewFixed(tab *Tableau, cfg dynamo.IntegratorConfig) (*Fixed, error) {
	if err := tab.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", tab.Name, err)
	}
	return &Fixed{stages: stages{tab: tab}, cfg: cfg}, nil
}

func (s *Fixed) Name() string { return s.tab.Name }

func (s *Fixed) Config() dynamo.IntegratorConfig { return s.cfg }

func (s *Fixed) Step(p dynamo.Problem, t float64, y dynamo.State, dt float64) (dynamo.StepResult, error) {
	n := p.Dim()
	if err := dynamo.CheckDim("y", y, n); err != nil {
		return dynamo.StepResult{}, err
	}
	s.ensureScratch(n)

	h := math.Min(dt, s.cfg.MaxStep)
	var res dynamo.StepResult
	for iter := 0; iter < s.cfg.MaxIterations; iter++ {
		finite, err := s.attempt(p, t, y, h)
		res.Evaluations += s.tab.Stages()
		if err != nil {
			return res, err
		}
		if finite {
			copy(y, s.ynew)
			res.Taken = h
			res.Next = math.Min(dt, s.cfg.MaxStep)
			return res, nil
		}
		res.Rejected++
		h = shrink(s.cfg, h, h*minScale)
	}
	res.Next = h
	return res, dynamo.ErrReachedMaxStepIter
}
