package ode

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/expr"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if s.Inputs.Text(0) != "x^2 - 7y - 10" || s.IntegrationLength != 10 || s.InitialStep != 1e-3 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.Inputs.Err() != nil {
		t.Errorf("default expression does not parse: %v", s.Inputs.Err())
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		target error
	}{
		{"two dimensions", func(s *Settings) { s.Dimensions = 2 }, dynamo.ErrUnimplementedSystem},
		{"zero dimensions", func(s *Settings) { s.Dimensions = 0 }, errInvalidSettings},
		{"three ics", func(s *Settings) { s.InitialConditions = []float64{1, 2, 3} }, errInvalidSettings},
		{"NaN ic", func(s *Settings) { s.InitialConditions = []float64{math.NaN(), 1} }, errInvalidSettings},
		{"negative length", func(s *Settings) { s.IntegrationLength = -1 }, errInvalidSettings},
		{"bad tolerance", func(s *Settings) { s.Integrator.Tolerance = 0 }, dynamo.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, tt.target) {
				t.Errorf("Validate() = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestInputs_SetReplacesWholesale(t *testing.T) {
	in := NewInputs("x + y")
	before := in.Parsed()
	first := before[0]

	in.Set(0, "x +")
	if in.Err() == nil || !errors.Is(in.Err(), expr.ErrParse) {
		t.Fatalf("expected a parse error, got %v", in.Err())
	}
	if before[0] != first || before[0].Err() != nil {
		t.Error("earlier snapshot was modified")
	}
	if in.Text(0) != "x +" {
		t.Errorf("Text(0) = %q", in.Text(0))
	}

	in.Set(0, "x - y")
	if in.Err() != nil {
		t.Errorf("unexpected error after fixing text: %v", in.Err())
	}
	if in.Parsed()[0] == first {
		t.Error("parsed value reused instead of replaced")
	}
}

func TestInputs_SetGrows(t *testing.T) {
	in := NewInputs("y")
	in.Set(2, "x")
	if in.Len() != 3 {
		t.Fatalf("Len = %d", in.Len())
	}
	if in.Err() == nil {
		t.Error("gap entries should be empty and fail to parse")
	}
}

func TestInputs_Key(t *testing.T) {
	a := NewInputs("x", "y")
	b := NewInputs("x", "y")
	c := NewInputs("x y")
	if a.Key() != b.Key() {
		t.Error("identical texts must share a key")
	}
	if a.Key() == c.Key() {
		t.Error("different texts must not share a key")
	}
}
