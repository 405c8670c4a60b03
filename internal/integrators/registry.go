package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/odesketch/internal/dynamo"
)

// DefaultMethod is the stepper used when none is named.
const DefaultMethod = "rkf45"

type Constructor func(cfg dynamo.IntegratorConfig) (dynamo.Stepper, error)

type Registry struct {
	steppers map[string]Constructor
	about    map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		steppers: make(map[string]Constructor),
		about:    make(map[string]string),
	}

	r.Register("rkf45", "Runge-Kutta-Fehlberg 4(5), adaptive", adaptive(RKF45Tableau))
	r.Register("dp45", "Dormand-Prince 5(4), adaptive", adaptive(DP45Tableau))
	r.Register("bs23", "Bogacki-Shampine 3(2), adaptive", adaptive(BS23Tableau))
	r.Register("rk4", "classic Runge-Kutta, fixed step", fixed(RK4Tableau))
	r.Register("euler", "explicit Euler, fixed step", fixed(EulerTableau))

	return r
}

func adaptive(tab *Tableau) Constructor {
	return func(cfg dynamo.IntegratorConfig) (dynamo.Stepper, error) {
		s, err := NewEmbedded(tab, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func fixed(tab *Tableau) Constructor {
	return func(cfg dynamo.IntegratorConfig) (dynamo.Stepper, error) {
		s, err := NewFixed(tab, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func (r *Registry) Register(name, about string, fn Constructor) {
	r.steppers[name] = fn
	r.about[name] = about
}

// Get builds a fresh stepper. Steppers keep scratch buffers, so each
// goroutine needs its own.
func (r *Registry) Get(name string, cfg dynamo.IntegratorConfig) (dynamo.Stepper, error) {
	if name == "" {
		name = DefaultMethod
	}
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(cfg)
}

func (r *Registry) Describe(name string) string { return r.about[name] }

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
