package ode

import (
	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/expr"
)

// Session re-solves on every change for an interactive host.
//
// A failed solve returns its error and leaves Last untouched, so the host
// can keep drawing the previous curve. The compiled evaluator is reused
// while the exact expression texts and the frame stay the same.
type Session struct {
	solver *Solver

	key    string
	frame  coords.Frame
	cached *expr.Evaluator

	last    *Solution
	lastErr error

	hits   int
	misses int
}

func NewSession(solver *Solver) *Session {
	if solver == nil {
		solver = NewSolver()
	}
	return &Session{solver: solver}
}

func (s *Session) Solve(settings Settings) (*Solution, error) {
	sol, err := s.solve(settings)
	s.lastErr = err
	if err != nil {
		s.solver.logger.Error("solve failed; keeping previous trajectory", "err", err)
		return nil, err
	}
	s.last = sol
	return sol, nil
}

func (s *Session) solve(settings Settings) (*Solution, error) {
	if err := settings.Validate(); err != nil {
		return nil, &SolveError{Stage: StageTransform, Err: err}
	}

	key := settings.Inputs.Key()
	if s.cached != nil && key == s.key && settings.Frame == s.frame {
		s.hits++
	} else {
		s.misses++
		s.cached = nil
		ev, err := s.solver.Compile(settings)
		if err != nil {
			return nil, err
		}
		s.key, s.frame, s.cached = key, settings.Frame, ev
	}
	return s.solver.solveCompiled(settings, s.cached)
}

// Last returns the most recent successful solution, or nil.
func (s *Session) Last() *Solution { return s.last }

// Err returns the error of the most recent solve, or nil if it succeeded.
func (s *Session) Err() error { return s.lastErr }

// CacheStats reports evaluator cache hits and misses.
func (s *Session) CacheStats() (hits, misses int) { return s.hits, s.misses }

func (s *Session) Solver() *Solver { return s.solver }
