package expr

import (
	"math"
	"sort"
)

type builtin struct {
	minArgs int
	maxArgs int
	fn      func(args []float64) float64
}

func unary(f func(float64) float64) builtin {
	return builtin{minArgs: 1, maxArgs: 1, fn: func(a []float64) float64 { return f(a[0]) }}
}

func binary(f func(float64, float64) float64) builtin {
	return builtin{minArgs: 2, maxArgs: 2, fn: func(a []float64) float64 { return f(a[0], a[1]) }}
}

var builtins = map[string]builtin{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"atan2": binary(math.Atan2),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"exp":   unary(math.Exp),
	"ln":    unary(math.Log),
	"log":   {minArgs: 1, maxArgs: 2, fn: logBase},
	"log10": unary(math.Log10),
	"log2":  unary(math.Log2),
	"sqrt":  unary(math.Sqrt),
	"cbrt":  unary(math.Cbrt),
	"abs":   unary(math.Abs),
	"sign":  unary(sign),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"min":   {minArgs: 1, maxArgs: -1, fn: minOf},
	"max":   {minArgs: 1, maxArgs: -1, fn: maxOf},
	"pow":   binary(math.Pow),
	"hypot": binary(math.Hypot),
}

// log(x) is the natural logarithm; log(x, b) takes base b.
func logBase(a []float64) float64 {
	if len(a) == 1 {
		return math.Log(a[0])
	}
	return math.Log(a[0]) / math.Log(a[1])
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	case x == 0:
		return 0
	}
	return math.NaN()
}

func minOf(a []float64) float64 {
	m := a[0]
	for _, v := range a[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(a []float64) float64 {
	m := a[0]
	for _, v := range a[1:] {
		m = math.Max(m, v)
	}
	return m
}

func isBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Functions lists the builtin function names, sorted.
func Functions() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
