package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/odesketch/internal/dynamo"
)

const (
	// minScale bounds the shrink factor after a non-finite attempt.
	minScale = 0.2
)

// Embedded is an adaptive stepper over an embedded tableau.
//
// An attempt is accepted when the error estimate is strictly below
// Tolerance. Either way the next size is
//
//	SafetyFactor * h * (Tolerance / err)^(1/Order)
//
// clamped to [MinStep, MaxStep]. A zero error proposes MaxStep. Non-finite
// derivatives count as a rejection and shrink h by minScale.
type Embedded struct {
	stages
	cfg dynamo.IntegratorConfig
}

func NewEmbedded(tab *Tableau, cfg dynamo.IntegratorConfig) (*Embedded, error) {
	if err := tab.validate(); err != nil {
		return nil, err
	}
	if !tab.Embedded() {
		return nil, fmt.Errorf("tableau %s has no error estimate", tab.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Embedded{stages: stages{tab: tab}, cfg: cfg}, nil
}

func (s *Embedded) Name() string { return s.tab.Name }

func (s *Embedded) Config() dynamo.IntegratorConfig { return s.cfg }

func (s *Embedded) Step(p dynamo.Problem, t float64, y dynamo.State, dt float64) (dynamo.StepResult, error) {
	n := p.Dim()
	if err := dynamo.CheckDim("y", y, n); err != nil {
		return dynamo.StepResult{}, err
	}
	s.ensureScratch(n)

	cfg := s.cfg
	h := math.Min(dt, cfg.MaxStep)
	inv := 1 / float64(s.tab.Order)
	var res dynamo.StepResult

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		finite, err := s.attempt(p, t, y, h)
		res.Evaluations += s.tab.Stages()
		if err != nil {
			return res, err
		}

		est := math.NaN()
		if finite {
			est = s.errorNorm(h)
		}
		if math.IsNaN(est) || math.IsInf(est, 0) {
			res.Rejected++
			h = shrink(cfg, h, h*minScale)
			continue
		}

		if est < cfg.Tolerance {
			copy(y, s.ynew)
			res.Taken = h
			if est == 0 {
				res.Next = cfg.MaxStep
			} else {
				res.Next = cfg.Clamp(cfg.SafetyFactor * h * math.Pow(cfg.Tolerance/est, inv))
			}
			return res, nil
		}

		res.Rejected++
		h = shrink(cfg, h, cfg.SafetyFactor*h*math.Pow(cfg.Tolerance/est, inv))
	}

	res.Next = h
	return res, dynamo.ErrReachedMaxStepIter
}
