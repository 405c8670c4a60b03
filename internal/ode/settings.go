package ode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/expr"
	"github.com/san-kum/odesketch/internal/integrators"
)

const (
	DefaultExpression        = "x^2 - 7y - 10"
	DefaultIntegrationLength = 10.0
	DefaultInitialStep       = 1e-3
)

// Inputs holds one expression source per equation and its parsed form.
// Set replaces the parsed set wholesale; slices handed out earlier are never
// written again.
type Inputs struct {
	texts  []string
	parsed []*expr.Parsed
}

func NewInputs(texts ...string) Inputs {
	in := Inputs{texts: append([]string(nil), texts...), parsed: make([]*expr.Parsed, len(texts))}
	for i, t := range texts {
		in.parsed[i] = expr.Parse(t)
	}
	return in
}

func (in Inputs) Len() int { return len(in.texts) }

func (in Inputs) Text(i int) string { return in.texts[i] }

func (in Inputs) Texts() []string { return append([]string(nil), in.texts...) }

// Set re-parses equation i from text, growing the set if needed.
func (in *Inputs) Set(i int, text string) {
	n := len(in.texts)
	if i >= n {
		n = i + 1
	}
	texts := make([]string, n)
	parsed := make([]*expr.Parsed, n)
	copy(texts, in.texts)
	copy(parsed, in.parsed)
	for j := len(in.texts); j < n; j++ {
		parsed[j] = expr.Parse("")
	}
	texts[i] = text
	parsed[i] = expr.Parse(text)
	in.texts, in.parsed = texts, parsed
}

func (in Inputs) Parsed() []*expr.Parsed { return in.parsed }

// Err returns the first parse failure, or nil.
func (in Inputs) Err() error {
	for _, p := range in.parsed {
		if err := p.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Key identifies the exact source texts.
func (in Inputs) Key() string { return strings.Join(in.texts, "\x00") }

// Settings is the snapshot a host hands to the solver. The solver only
// reads it.
type Settings struct {
	Inputs Inputs
	Frame  coords.Frame
	// InitialConditions is the initial point (x, y) in the plane.
	InitialConditions []float64
	IntegrationLength float64
	Dimensions        int
	Method            string
	InitialStep       float64
	Integrator        dynamo.IntegratorConfig
}

func DefaultSettings() Settings {
	return Settings{
		Inputs:            NewInputs(DefaultExpression),
		Frame:             coords.Cartesian,
		InitialConditions: []float64{1, 1},
		IntegrationLength: DefaultIntegrationLength,
		Dimensions:        1,
		Method:            integrators.DefaultMethod,
		InitialStep:       DefaultInitialStep,
		Integrator:        dynamo.DefaultIntegratorConfig(),
	}
}

var errInvalidSettings = errors.New("invalid settings")

// Validate checks the shape of the snapshot. It does not parse or compile.
func (s Settings) Validate() error {
	if s.Dimensions > 1 {
		return fmt.Errorf("%d equations requested: %w", s.Dimensions, dynamo.ErrUnimplementedSystem)
	}
	if s.Dimensions != 1 {
		return fmt.Errorf("%w: dimensions must be 1, got %d", errInvalidSettings, s.Dimensions)
	}
	if s.Inputs.Len() != s.Dimensions {
		return fmt.Errorf("%w: %d expressions for %d dimensions", errInvalidSettings, s.Inputs.Len(), s.Dimensions)
	}
	if len(s.InitialConditions) != 2 {
		return fmt.Errorf("%w: initial conditions must be a point (x, y), got %d values", errInvalidSettings, len(s.InitialConditions))
	}
	for _, v := range append([]float64{s.IntegrationLength}, s.InitialConditions...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value %g", errInvalidSettings, v)
		}
	}
	if s.IntegrationLength < 0 {
		return fmt.Errorf("%w: integration length must not be negative, got %g", errInvalidSettings, s.IntegrationLength)
	}
	return s.Integrator.Validate()
}

func (s Settings) Point() coords.Point {
	return coords.Point{X: s.InitialConditions[0], Y: s.InitialConditions[1]}
}

// WithPoint returns a copy with a new initial point.
func (s Settings) WithPoint(p coords.Point) Settings {
	s.InitialConditions = []float64{p.X, p.Y}
	return s
}
