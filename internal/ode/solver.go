package ode

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/expr"
	"github.com/san-kum/odesketch/internal/integrators"
	"github.com/san-kum/odesketch/internal/logging"
	"github.com/san-kum/odesketch/internal/sim"
)

type Stage string

const (
	StageTransform Stage = "transform"
	StageCompile   Stage = "compile"
	StageSolve     Stage = "solve"
)

// SolveError names the pipeline stage that failed. No trajectory accompanies
// it.
type SolveError struct {
	Stage Stage
	Err   error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}

// Solution is the result of one successful solve.
type Solution struct {
	Trajectory *dynamo.Trajectory
	// Display holds the trajectory mapped back into the (x, y) plane.
	Display []coords.Point
	Span    dynamo.Span
	Frame   coords.Frame
	Method  string
	Exprs   []string
	Elapsed time.Duration
}

type Solver struct {
	table    *expr.Table
	registry *integrators.Registry
	logger   *log.Logger
	metrics  *log.Logger
}

type Option func(*Solver)

func WithLogger(l *log.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithRegistry(r *integrators.Registry) Option {
	return func(s *Solver) { s.registry = r }
}

func WithTable(t *expr.Table) Option {
	return func(s *Solver) { s.table = t }
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{}
	for _, opt := range opts {
		opt(s)
	}
	if s.table == nil {
		s.table = expr.DefaultTable()
	}
	if s.registry == nil {
		s.registry = integrators.NewRegistry()
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.metrics = logging.Metrics(s.logger)
	return s
}

func (s *Solver) Registry() *integrators.Registry { return s.registry }

// Compile builds the evaluator for the settings' expressions and frame.
func (s *Solver) Compile(settings Settings) (*expr.Evaluator, error) {
	ev, err := expr.Compile(settings.Inputs.Parsed(), settings.Frame, s.table)
	if err != nil {
		return nil, &SolveError{Stage: StageCompile, Err: err}
	}
	return ev, nil
}

// Solve runs the whole pipeline on a snapshot of settings.
func (s *Solver) Solve(settings Settings) (*Solution, error) {
	if err := settings.Validate(); err != nil {
		return nil, &SolveError{Stage: StageTransform, Err: err}
	}
	ev, err := s.Compile(settings)
	if err != nil {
		return nil, err
	}
	return s.solveCompiled(settings, ev)
}

// solveCompiled runs transform, adapter and driver with an evaluator that
// was compiled from settings. settings must already be valid.
func (s *Solver) solveCompiled(settings Settings, ev *expr.Evaluator) (*Solution, error) {
	y0, span := coords.ToSolverFrame(settings.Frame, settings.Point(), settings.IntegrationLength)

	stepper, err := s.registry.Get(settings.Method, settings.Integrator)
	if err != nil {
		return nil, &SolveError{Stage: StageSolve, Err: err}
	}

	cfg := settings.Integrator
	s.metrics.Debug("solve",
		"frame", settings.Frame,
		"span", [2]float64(span),
		"dt", settings.InitialStep,
		"ics", []float64(y0),
		"method", stepper.Name(),
		"tolerance", cfg.Tolerance,
		"safety", cfg.SafetyFactor,
		"min_step", cfg.MinStep,
		"max_step", cfg.MaxStep,
		"max_iterations", cfg.MaxIterations,
	)

	start := time.Now()
	tr, err := sim.New(stepper).Solve(NewExpressionProblem(ev), span, settings.InitialStep, y0)
	if err != nil {
		return nil, &SolveError{Stage: StageSolve, Err: err}
	}
	elapsed := time.Since(start)

	s.metrics.Info("solved",
		"elapsed", elapsed,
		"points", tr.Len(),
		"accepted", tr.Stats.Accepted,
		"rejected", tr.Stats.Rejected,
		"evaluations", tr.Stats.Evaluations,
		"truncated", tr.Truncated,
	)
	if tr.Truncated {
		last, _ := tr.Last()
		s.logger.Warn("iteration budget exhausted; trajectory truncated", "t", last, "end", span.End())
	}

	return &Solution{
		Trajectory: tr,
		Display:    coords.FromSolverFrame(settings.Frame, tr),
		Span:       span,
		Frame:      settings.Frame,
		Method:     stepper.Name(),
		Exprs:      ev.Expressions(),
		Elapsed:    elapsed,
	}, nil
}
