package ode

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/expr"
)

func compileProblem(t *testing.T, text string, frame coords.Frame) *ExpressionProblem {
	t.Helper()
	ev, err := expr.Compile([]*expr.Parsed{expr.Parse(text)}, frame, expr.DefaultTable())
	if err != nil {
		t.Fatal(err)
	}
	return NewExpressionProblem(ev)
}

func TestExpressionProblem_RHS(t *testing.T) {
	p := compileProblem(t, "x^2 - 7y - 10", coords.Cartesian)
	if p.Dim() != 1 {
		t.Fatalf("Dim = %d", p.Dim())
	}
	dy := make([]float64, 1)
	if err := p.RHS(2, []float64{1}, dy); err != nil {
		t.Fatal(err)
	}
	if dy[0] != 4-7-10 {
		t.Errorf("dy = %v, want -13", dy[0])
	}
}

func TestExpressionProblem_DimensionErrors(t *testing.T) {
	p := compileProblem(t, "y", coords.Cartesian)
	tests := []struct {
		name string
		y    []float64
		dy   []float64
	}{
		{"long y", []float64{1, 2}, make([]float64, 1)},
		{"empty y", nil, make([]float64, 1)},
		{"long dy", []float64{1}, make([]float64, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.RHS(0, tt.y, tt.dy)
			var de *dynamo.DimensionError
			if !errors.As(err, &de) {
				t.Fatalf("expected DimensionError, got %v", err)
			}
		})
	}
}

func TestExpressionProblem_Reentrant(t *testing.T) {
	p := compileProblem(t, "sin(x) * y", coords.Cartesian)
	want := math.Sin(0.3) * 2

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dy := make([]float64, 1)
			for i := 0; i < 1000; i++ {
				if err := p.RHS(0.3, []float64{2}, dy); err != nil || dy[0] != want {
					errs <- "inconsistent evaluation"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
