package integrators

import "github.com/san-kum/odesketch/internal/dynamo"

var RK4Tableau = &Tableau{
	Name:  "rk4",
	Order: 4,
	C:     []float64{0, 0.5, 0.5, 1},
	A: [][]float64{
		{},
		{0.5},
		{0, 0.5},
		{0, 0, 1},
	},
	B: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
}

func NewRK4(cfg dynamo.IntegratorConfig) (*Fixed, error) {
	return NewFixed(RK4Tableau, cfg)
}
