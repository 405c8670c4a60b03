package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/ode"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Expression != "x^2 - 7y - 10" {
		t.Errorf("expected default expression, got %s", cfg.Expression)
	}
	if cfg.Method != "rkf45" {
		t.Errorf("expected method rkf45, got %s", cfg.Method)
	}
	if diff := cmp.Diff([]float64{1, 1}, cfg.InitialConditions); diff != "" {
		t.Errorf("initial conditions (-want +got):\n%s", diff)
	}
	if cfg.IntegratorConfig() != dynamo.DefaultIntegratorConfig() {
		t.Errorf("integrator defaults drifted: %+v", cfg.Integrator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odesketch.yaml")
	data := []byte(`expression: "sin(theta) / r"
frame: polar
initial_conditions: [2, 0.5]
integrator:
  tolerance: 1.0e-6
  max_iterations: 50
plot:
  x_min: -3
  x_max: 3
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Expression != "sin(theta) / r" || cfg.Frame != "polar" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Integrator.Tolerance != 1e-6 || cfg.Integrator.MaxIterations != 50 {
		t.Errorf("integrator overrides not applied: %+v", cfg.Integrator)
	}
	if cfg.Integrator.SafetyFactor != 0.9 || cfg.IntegrationLength != 10 {
		t.Errorf("unset fields should keep defaults: %+v", cfg)
	}
	if cfg.Plot.XMin != -3 || cfg.Plot.YMax != DefaultPlotBound {
		t.Errorf("plot window = %+v", cfg.Plot)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("initial_conditions: {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty expression", func(c *Config) { c.Expression = "  " }},
		{"bad frame", func(c *Config) { c.Frame = "cylindrical" }},
		{"short ics", func(c *Config) { c.InitialConditions = []float64{1} }},
		{"negative length", func(c *Config) { c.IntegrationLength = -2 }},
		{"zero dimensions", func(c *Config) { c.Dimensions = 0 }},
		{"zero initial step", func(c *Config) { c.InitialStep = 0 }},
		{"unknown method", func(c *Config) { c.Method = "verlet" }},
		{"bad tolerance", func(c *Config) { c.Integrator.Tolerance = 0 }},
		{"empty plot", func(c *Config) { c.Plot.XMax = c.Plot.XMin }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frame = "polar"
	cfg.InitialConditions = []float64{3, 4}

	s, err := cfg.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if s.Frame != coords.Polar || s.Inputs.Text(0) != cfg.Expression {
		t.Errorf("unexpected settings %+v", s)
	}
	s.InitialConditions[0] = 99
	if cfg.InitialConditions[0] != 3 {
		t.Error("settings share the config's initial conditions")
	}

	cfg.Dimensions = 2
	s, err = cfg.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ode.NewSolver().Solve(s); !errors.Is(err, dynamo.ErrUnimplementedSystem) {
		t.Errorf("two dimensions should be refused by the solver, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("logistic")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Expression != "y(1 - y)" {
		t.Errorf("unexpected expression %q", cfg.Expression)
	}
	cfg.Expression = "changed"
	if GetPreset("logistic").Expression == "changed" {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestPresetsSolve(t *testing.T) {
	solver := ode.NewSolver()
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("preset invalid: %v", err)
			}
			s, err := cfg.Settings()
			if err != nil {
				t.Fatal(err)
			}
			sol, err := solver.Solve(s)
			if err != nil {
				t.Fatalf("preset does not solve: %v", err)
			}
			if sol.Trajectory.Len() < 2 {
				t.Errorf("preset produced %d samples", sol.Trajectory.Len())
			}
		})
	}
}
