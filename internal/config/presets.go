package config

import "sort"

type Preset struct {
	Description string
	Config      *Config
}

func preset(desc, expression, frame string, x, y, length float64, method string) Preset {
	cfg := DefaultConfig()
	cfg.Expression = expression
	cfg.Frame = frame
	cfg.InitialConditions = []float64{x, y}
	cfg.IntegrationLength = length
	if method != "" {
		cfg.Method = method
	}
	return Preset{Description: desc, Config: cfg}
}

var Presets = map[string]Preset{
	"default":  preset("quadratic forcing with linear damping", "x^2 - 7y - 10", "cartesian", 1, 1, 10, ""),
	"decay":    preset("exponential decay", "-y", "cartesian", 0, 8, 10, ""),
	"logistic": preset("logistic growth towards 1", "y(1 - y)", "cartesian", -5, 0.05, 15, ""),
	"forced":   preset("damped response to a periodic force", "cos(x) - y/2", "cartesian", -10, 0, 20, ""),
	"riccati":  preset("finite-time blow-up near x = 2", "x^2 + y^2", "cartesian", 0, 0, 3, ""),
	"stiff":    preset("fast relaxation onto cos(x)", "-50(y - cos(x))", "cartesian", -8, 5, 16, "bs23"),
	"spiral":   preset("angle grows as the log of the radius", "1/r", "polar", 1, 0, 8, ""),
	"wobble":   preset("angle oscillates with the radius", "sin(3r)/2", "polar", 2, 0, 6, "dp45"),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Config.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
