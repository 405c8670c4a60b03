package ode

import (
	"context"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/sim"
)

// Compare solves the same settings once per method, concurrently. The
// expression is compiled once and shared; every method gets its own
// stepper. Solutions come back in the order of methods.
func (s *Solver) Compare(ctx context.Context, settings Settings, methods []string) ([]*Solution, error) {
	if err := settings.Validate(); err != nil {
		return nil, &SolveError{Stage: StageTransform, Err: err}
	}
	ev, err := s.Compile(settings)
	if err != nil {
		return nil, err
	}
	y0, span := coords.ToSolverFrame(settings.Frame, settings.Point(), settings.IntegrationLength)
	problem := NewExpressionProblem(ev)

	jobs := make([]sim.Job, 0, len(methods))
	for _, name := range methods {
		stepper, err := s.registry.Get(name, settings.Integrator)
		if err != nil {
			return nil, &SolveError{Stage: StageSolve, Err: err}
		}
		jobs = append(jobs, sim.Job{
			Name:    stepper.Name(),
			Stepper: stepper,
			Problem: problem,
			Span:    span,
			Dt:      settings.InitialStep,
			ICs:     y0,
		})
	}

	s.metrics.Debug("compare", "methods", methods, "span", [2]float64(span), "dt", settings.InitialStep)

	outcomes, err := sim.Batch(ctx, jobs, 0)
	if err != nil {
		return nil, &SolveError{Stage: StageSolve, Err: err}
	}

	out := make([]*Solution, len(outcomes))
	for i, o := range outcomes {
		tr := o.Trajectory
		s.metrics.Info("solved",
			"method", o.Name,
			"elapsed", o.Elapsed,
			"points", tr.Len(),
			"accepted", tr.Stats.Accepted,
			"rejected", tr.Stats.Rejected,
			"evaluations", tr.Stats.Evaluations,
			"truncated", tr.Truncated,
		)
		out[i] = &Solution{
			Trajectory: tr,
			Display:    coords.FromSolverFrame(settings.Frame, tr),
			Span:       span,
			Frame:      settings.Frame,
			Method:     o.Name,
			Exprs:      ev.Expressions(),
			Elapsed:    o.Elapsed,
		}
	}
	return out, nil
}
