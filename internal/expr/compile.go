package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
)

type opcode uint8

const (
	opConst opcode = iota
	opLoad
	opNeg
	opAdd
	opSub
	opMul
	opDiv
	opPow
	opCall
)

type instr struct {
	op   opcode
	val  float64
	slot int
	argc int
	fn   func([]float64) float64
}

type program struct {
	code  []instr
	depth int
}

// slotNode is an identifier resolved to an evaluator input.
type slotNode struct {
	name string
	slot int
}

func (slotNode) prec() int                  { return precAtom }
func (n slotNode) write(b *strings.Builder) { b.WriteString(n.name) }

// Evaluator is the compiled form of one or more expressions. It holds no
// mutable state; Eval may be called concurrently.
type Evaluator struct {
	frame  coords.Frame
	exprs  []string
	progs  []program
	inputs int
	depth  int
}

// Compile binds exprs to the symbols of frame and lowers them. The input
// vector of the result is [t, v0, v1, ...] with one output per expression.
//
// A Parsed value that failed to parse yields its ParseFailed error. Unknown
// identifiers, symbols of the other frame and malformed calls yield
// BuildFailed.
func Compile(exprs []*Parsed, frame coords.Frame, table *Table) (*Evaluator, error) {
	if len(exprs) == 0 {
		return nil, buildError("", "no expressions to compile")
	}
	vars := frame.Vars()
	bind := make(map[string]int, len(vars))
	for i, name := range vars {
		if _, ok := table.Lookup(name); !ok {
			return nil, buildError("", "symbol %q of the %s frame is missing from the symbol table", name, frame)
		}
		bind[name] = i
	}

	ev := &Evaluator{
		frame:  frame,
		exprs:  make([]string, len(exprs)),
		progs:  make([]program, len(exprs)),
		inputs: 1 + len(exprs),
	}
	for i, p := range exprs {
		if p == nil {
			return nil, buildError("", "expression %d is missing", i)
		}
		if p.err != nil {
			return nil, p.err
		}
		c := &compiler{text: p.text, frame: frame, table: table, bind: bind}
		folded, err := c.fold(p.root)
		if err != nil {
			return nil, err
		}
		c.emit(folded)
		ev.exprs[i] = p.text
		ev.progs[i] = program{code: c.code, depth: c.maxDepth}
		if c.maxDepth > ev.depth {
			ev.depth = c.maxDepth
		}
	}
	return ev, nil
}

func (e *Evaluator) Dim() int              { return len(e.progs) }
func (e *Evaluator) NumInputs() int        { return e.inputs }
func (e *Evaluator) Frame() coords.Frame   { return e.frame }
func (e *Evaluator) Expressions() []string { return append([]string(nil), e.exprs...) }

// Eval writes one derivative per expression into out. in must hold
// NumInputs values and out Dim values.
func (e *Evaluator) Eval(in, out []float64) error {
	if err := dynamo.CheckDim("evaluator input", in, e.inputs); err != nil {
		return err
	}
	if err := dynamo.CheckDim("evaluator output", out, len(e.progs)); err != nil {
		return err
	}
	stack := make([]float64, 0, e.depth)
	for i := range e.progs {
		stack = run(e.progs[i].code, in, stack[:0])
		out[i] = stack[0]
	}
	return nil
}

func run(code []instr, in, stack []float64) []float64 {
	for k := range code {
		ins := &code[k]
		n := len(stack)
		switch ins.op {
		case opConst:
			stack = append(stack, ins.val)
		case opLoad:
			stack = append(stack, in[ins.slot])
		case opNeg:
			stack[n-1] = -stack[n-1]
		case opCall:
			v := ins.fn(stack[n-ins.argc:])
			stack = append(stack[:n-ins.argc], v)
		default:
			stack[n-2] = applyBinary(ins.op, stack[n-2], stack[n-1])
			stack = stack[:n-1]
		}
	}
	return stack
}

func applyBinary(op opcode, a, b float64) float64 {
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	case opDiv:
		return a / b
	case opPow:
		return math.Pow(a, b)
	}
	panic(fmt.Sprintf("expr: bad binary opcode %d", op))
}

func binaryOpcode(op byte) opcode {
	switch op {
	case '+':
		return opAdd
	case '-':
		return opSub
	case '*':
		return opMul
	case '/':
		return opDiv
	default:
		return opPow
	}
}

type compiler struct {
	text  string
	frame coords.Frame
	table *Table
	bind  map[string]int

	code     []instr
	depth    int
	maxDepth int
}

// fold resolves identifiers and evaluates constant subtrees with the same
// arithmetic the stack machine uses, so folding never changes a result.
func (c *compiler) fold(n node) (node, *CompileError) {
	switch n := n.(type) {
	case numNode:
		return n, nil
	case identNode:
		if slot, ok := c.bind[n.name]; ok {
			return slotNode{name: n.name, slot: slot}, nil
		}
		if v, ok := constants[n.name]; ok {
			return numNode{v: v}, nil
		}
		if _, ok := c.table.Lookup(n.name); ok {
			v := c.frame.Vars()
			return nil, buildError(c.text, "symbol %q is not available in the %s frame (use %s and %s)", n.name, c.frame, v[0], v[1])
		}
		if isBuiltin(n.name) {
			return nil, buildError(c.text, "function %s used without arguments", n.name)
		}
		return nil, buildError(c.text, "unknown symbol %q", n.name)
	case unaryNode:
		x, err := c.fold(n.x)
		if err != nil {
			return nil, err
		}
		if n.op == '+' {
			return x, nil
		}
		if num, ok := x.(numNode); ok {
			return numNode{v: -num.v}, nil
		}
		return unaryNode{op: n.op, x: x}, nil
	case binaryNode:
		l, err := c.fold(n.left)
		if err != nil {
			return nil, err
		}
		r, err := c.fold(n.right)
		if err != nil {
			return nil, err
		}
		ln, lok := l.(numNode)
		rn, rok := r.(numNode)
		if lok && rok {
			return numNode{v: applyBinary(binaryOpcode(n.op), ln.v, rn.v)}, nil
		}
		return binaryNode{op: n.op, left: l, right: r}, nil
	case callNode:
		b, ok := builtins[n.name]
		if !ok {
			return nil, buildError(c.text, "unknown function %q", n.name)
		}
		if len(n.args) < b.minArgs || (b.maxArgs >= 0 && len(n.args) > b.maxArgs) {
			return nil, buildError(c.text, "%s expects %s, got %d", n.name, arity(b), len(n.args))
		}
		args := make([]node, len(n.args))
		vals := make([]float64, len(n.args))
		constant := true
		for i, a := range n.args {
			f, err := c.fold(a)
			if err != nil {
				return nil, err
			}
			args[i] = f
			if num, ok := f.(numNode); ok {
				vals[i] = num.v
			} else {
				constant = false
			}
		}
		if constant {
			return numNode{v: b.fn(vals)}, nil
		}
		return callNode{name: n.name, args: args}, nil
	}
	return nil, buildError(c.text, "cannot lower %T", n)
}

func arity(b builtin) string {
	switch {
	case b.maxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", b.minArgs)
	case b.minArgs == b.maxArgs:
		return fmt.Sprintf("%d argument(s)", b.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", b.minArgs, b.maxArgs)
	}
}

func (c *compiler) push(in instr, delta int) {
	c.code = append(c.code, in)
	c.depth += delta
	if c.depth > c.maxDepth {
		c.maxDepth = c.depth
	}
}

func (c *compiler) emit(n node) {
	switch n := n.(type) {
	case numNode:
		c.push(instr{op: opConst, val: n.v}, 1)
	case slotNode:
		c.push(instr{op: opLoad, slot: n.slot}, 1)
	case unaryNode:
		c.emit(n.x)
		c.push(instr{op: opNeg}, 0)
	case binaryNode:
		c.emit(n.left)
		c.emit(n.right)
		c.push(instr{op: binaryOpcode(n.op)}, -1)
	case callNode:
		for _, a := range n.args {
			c.emit(a)
		}
		c.push(instr{op: opCall, argc: len(n.args), fn: builtins[n.name].fn}, 1-len(n.args))
	}
}
