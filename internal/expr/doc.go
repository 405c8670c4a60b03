// Package expr compiles a free-standing scalar expression into a numeric
// evaluator.
//
// Text is parsed into a Parsed value, which is immutable and is replaced
// wholesale whenever the text changes. Compile binds one or more parsed
// expressions to a coordinate frame and lowers them into stack programs:
//
//	p := expr.Parse("x^2 - 7y - 10")
//	ev, err := expr.Compile([]*expr.Parsed{p}, coords.Cartesian, expr.DefaultTable())
//	out := make([]float64, ev.Dim())
//	err = ev.Eval([]float64{t, y}, out)
//
// The evaluator input is [t, v...]: the frame's first symbol is bound to t and
// its second symbol to the first state component.
//
// Grammar, loosest binding first:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary | juxtaposed unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "^" unary ]
//	primary = number | ident | call | "(" sum ")"
//
// Juxtaposition multiplies, so 7y, 2(x+1) and 3sin(x) all parse.
package expr
