package expr

import (
	"strconv"
	"strings"
)

type node interface {
	prec() int
	write(b *strings.Builder)
}

const (
	precSum = iota + 1
	precProduct
	precUnary
	precPower
	precAtom
)

type numNode struct{ v float64 }

type identNode struct{ name string }

type unaryNode struct {
	op byte
	x  node
}

type binaryNode struct {
	op          byte
	left, right node
}

type callNode struct {
	name string
	args []node
}

func (numNode) prec() int   { return precAtom }
func (identNode) prec() int { return precAtom }
func (unaryNode) prec() int { return precUnary }
func (callNode) prec() int  { return precAtom }

func (n binaryNode) prec() int {
	switch n.op {
	case '+', '-':
		return precSum
	case '*', '/':
		return precProduct
	default:
		return precPower
	}
}

func (n numNode) write(b *strings.Builder) {
	if n.v < 0 {
		b.WriteByte('(')
		b.WriteString(strconv.FormatFloat(n.v, 'g', -1, 64))
		b.WriteByte(')')
		return
	}
	b.WriteString(strconv.FormatFloat(n.v, 'g', -1, 64))
}

func (n identNode) write(b *strings.Builder) { b.WriteString(n.name) }

func (n unaryNode) write(b *strings.Builder) {
	b.WriteByte(n.op)
	writeChild(b, n.x, n.x.prec() < precUnary)
}

func (n binaryNode) write(b *strings.Builder) {
	p := n.prec()
	if p == precPower {
		// right-associative
		writeChild(b, n.left, n.left.prec() <= p)
		b.WriteByte('^')
		writeChild(b, n.right, n.right.prec() < precUnary)
		return
	}
	writeChild(b, n.left, n.left.prec() < p)
	b.WriteByte(' ')
	b.WriteByte(n.op)
	b.WriteByte(' ')
	writeChild(b, n.right, n.right.prec() <= p)
}

func (n callNode) write(b *strings.Builder) {
	b.WriteString(n.name)
	b.WriteByte('(')
	for i, a := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.write(b)
	}
	b.WriteByte(')')
}

func writeChild(b *strings.Builder, n node, paren bool) {
	if paren {
		b.WriteByte('(')
	}
	n.write(b)
	if paren {
		b.WriteByte(')')
	}
}

func nodeString(n node) string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

// collectIdents appends the distinct identifiers referenced by n, in order of
// first appearance. Function names are not included.
func collectIdents(n node, seen map[string]bool, out []string) []string {
	switch n := n.(type) {
	case identNode:
		if !seen[n.name] {
			seen[n.name] = true
			out = append(out, n.name)
		}
	case unaryNode:
		out = collectIdents(n.x, seen, out)
	case binaryNode:
		out = collectIdents(n.left, seen, out)
		out = collectIdents(n.right, seen, out)
	case callNode:
		for _, a := range n.args {
			out = collectIdents(a, seen, out)
		}
	}
	return out
}
