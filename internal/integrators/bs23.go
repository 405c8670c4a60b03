package integrators

import "github.com/san-kum/odesketch/internal/dynamo"

// Bogacki-Shampine 3(2).
var BS23Tableau = &Tableau{
	Name:  "bs23",
	Order: 2,
	C:     []float64{0, 1.0 / 2.0, 3.0 / 4.0, 1},
	A: [][]float64{
		{},
		{1.0 / 2.0},
		{0, 3.0 / 4.0},
		{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
	},
	B: []float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0, 0},
	E: []float64{2.0/9.0 - 7.0/24.0, 1.0/3.0 - 1.0/4.0, 4.0/9.0 - 1.0/3.0, -1.0 / 8.0},
}

func NewBS23(cfg dynamo.IntegratorConfig) (*Embedded, error) {
	return NewEmbedded(BS23Tableau, cfg)
}
