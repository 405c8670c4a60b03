package integrators

import "github.com/san-kum/odesketch/internal/dynamo"

var EulerTableau = &Tableau{
	Name:  "euler",
	Order: 1,
	C:     []float64{0},
	A:     [][]float64{{}},
	B:     []float64{1},
}

func NewEuler(cfg dynamo.IntegratorConfig) (*Fixed, error) {
	return NewFixed(EulerTableau, cfg)
}
