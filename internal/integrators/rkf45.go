package integrators

import "github.com/san-kum/odesketch/internal/dynamo"

// Runge-Kutta-Fehlberg 4(5). The fifth-order solution is propagated and the
// step size is controlled with the fourth-order exponent.
var RKF45Tableau = &Tableau{
	Name:  "rkf45",
	Order: 4,
	C:     []float64{0, 1.0 / 4.0, 3.0 / 8.0, 12.0 / 13.0, 1, 1.0 / 2.0},
	A: [][]float64{
		{},
		{1.0 / 4.0},
		{3.0 / 32.0, 9.0 / 32.0},
		{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0},
		{439.0 / 216.0, -8, 3680.0 / 513.0, -845.0 / 4104.0},
		{-8.0 / 27.0, 2, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0},
	},
	B: []float64{16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0},
	E: []float64{
		16.0/135.0 - 25.0/216.0,
		0,
		6656.0/12825.0 - 1408.0/2565.0,
		28561.0/56430.0 - 2197.0/4104.0,
		-9.0/50.0 + 1.0/5.0,
		2.0 / 55.0,
	},
}

func NewRKF45(cfg dynamo.IntegratorConfig) (*Embedded, error) {
	return NewEmbedded(RKF45Tableau, cfg)
}
