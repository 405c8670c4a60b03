package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/integrators"
	"github.com/san-kum/odesketch/internal/ode"
)

const (
	DefaultFrame      = "cartesian"
	DefaultDimensions = 1
	DefaultPlotBound  = 10.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Expression        string           `yaml:"expression"`
	Frame             string           `yaml:"frame"`
	InitialConditions []float64        `yaml:"initial_conditions"`
	IntegrationLength float64          `yaml:"integration_length"`
	Dimensions        int              `yaml:"dimensions"`
	Method            string           `yaml:"method"`
	InitialStep       float64          `yaml:"initial_step"`
	Integrator        IntegratorConfig `yaml:"integrator"`
	Plot              PlotConfig       `yaml:"plot"`
}

type IntegratorConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	SafetyFactor  float64 `yaml:"safety_factor"`
	MinStep       float64 `yaml:"min_step"`
	MaxStep       float64 `yaml:"max_step"`
	MaxIterations int     `yaml:"max_iterations"`
}

// PlotConfig is the visible window of the (x, y) plane.
type PlotConfig struct {
	XMin float64 `yaml:"x_min"`
	XMax float64 `yaml:"x_max"`
	YMin float64 `yaml:"y_min"`
	YMax float64 `yaml:"y_max"`
}

func DefaultConfig() *Config {
	ic := dynamo.DefaultIntegratorConfig()
	return &Config{
		Expression:        ode.DefaultExpression,
		Frame:             DefaultFrame,
		InitialConditions: []float64{1, 1},
		IntegrationLength: ode.DefaultIntegrationLength,
		Dimensions:        DefaultDimensions,
		Method:            integrators.DefaultMethod,
		InitialStep:       ode.DefaultInitialStep,
		Integrator: IntegratorConfig{
			Tolerance:     ic.Tolerance,
			SafetyFactor:  ic.SafetyFactor,
			MinStep:       ic.MinStep,
			MaxStep:       ic.MaxStep,
			MaxIterations: ic.MaxIterations,
		},
		Plot: DefaultPlot(),
	}
}

func DefaultPlot() PlotConfig {
	return PlotConfig{XMin: -DefaultPlotBound, XMax: DefaultPlotBound, YMin: -DefaultPlotBound, YMax: DefaultPlotBound}
}

// Load overlays the YAML file at path on the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver overlays the YAML file at path on a copy of base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Clone() *Config {
	out := *c
	out.InitialConditions = append([]float64(nil), c.InitialConditions...)
	return &out
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Expression) == "" {
		return fmt.Errorf("%w: expression is empty", ErrInvalid)
	}
	if _, err := coords.ParseFrame(c.Frame); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.InitialConditions) != 2 {
		return fmt.Errorf("%w: initial_conditions must be [x, y], got %v", ErrInvalid, c.InitialConditions)
	}
	if c.IntegrationLength < 0 {
		return fmt.Errorf("%w: integration_length must not be negative", ErrInvalid)
	}
	if c.Dimensions < 1 {
		return fmt.Errorf("%w: dimensions must be at least 1", ErrInvalid)
	}
	if c.InitialStep <= 0 {
		return fmt.Errorf("%w: initial_step must be positive", ErrInvalid)
	}
	if _, err := integrators.NewRegistry().Get(c.Method, c.IntegratorConfig()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !(c.Plot.XMin < c.Plot.XMax && c.Plot.YMin < c.Plot.YMax) {
		return fmt.Errorf("%w: plot window is empty", ErrInvalid)
	}
	return nil
}

func (c *Config) IntegratorConfig() dynamo.IntegratorConfig {
	return dynamo.IntegratorConfig{
		Tolerance:     c.Integrator.Tolerance,
		SafetyFactor:  c.Integrator.SafetyFactor,
		MinStep:       c.Integrator.MinStep,
		MaxStep:       c.Integrator.MaxStep,
		MaxIterations: c.Integrator.MaxIterations,
	}
}

// Settings converts the configuration into the snapshot the solver reads.
// Dimensions above one are passed through; the solver refuses them.
func (c *Config) Settings() (ode.Settings, error) {
	frame, err := coords.ParseFrame(c.Frame)
	if err != nil {
		return ode.Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	texts := []string{c.Expression}
	for i := 1; i < c.Dimensions; i++ {
		texts = append(texts, c.Expression)
	}
	return ode.Settings{
		Inputs:            ode.NewInputs(texts...),
		Frame:             frame,
		InitialConditions: append([]float64(nil), c.InitialConditions...),
		IntegrationLength: c.IntegrationLength,
		Dimensions:        c.Dimensions,
		Method:            c.Method,
		InitialStep:       c.InitialStep,
		Integrator:        c.IntegratorConfig(),
	}, nil
}
