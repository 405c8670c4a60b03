package sim

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/odesketch/internal/dynamo"
)

// Job is one independent solve. Steppers keep scratch buffers, so every job
// needs its own; Problem must be safe for concurrent RHS calls.
type Job struct {
	Name    string
	Stepper dynamo.Stepper
	Problem dynamo.Problem
	Span    dynamo.Span
	Dt      float64
	ICs     []float64
}

type Outcome struct {
	Name       string
	Trajectory *dynamo.Trajectory
	Elapsed    time.Duration
}

// Batch runs jobs concurrently, at most limit at a time (limit <= 0 means no
// limit). Outcomes are returned in job order. The first failure cancels jobs
// that have not started yet.
func Batch(ctx context.Context, jobs []Job, limit int) ([]Outcome, error) {
	out := make([]Outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			tr, err := New(job.Stepper).Solve(job.Problem, job.Span, job.Dt, job.ICs)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			out[i] = Outcome{Name: job.Name, Trajectory: tr, Elapsed: time.Since(start)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
