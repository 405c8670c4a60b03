package expr

import (
	"fmt"
	"math"
	"sort"
)

// Symbol is a variable name bound to a numeric slot.
type Symbol struct {
	Name string
	Slot int
}

// Table is the fixed set of variables expressions may reference. Names are
// unique.
type Table struct {
	syms  []Symbol
	index map[string]int
}

func NewTable(names ...string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(names))}
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("expr: empty symbol name")
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("expr: duplicate symbol %q", name)
		}
		if _, isConst := constants[name]; isConst {
			return nil, fmt.Errorf("expr: symbol %q shadows a constant", name)
		}
		if _, isFn := builtins[name]; isFn {
			return nil, fmt.Errorf("expr: symbol %q shadows a function", name)
		}
		t.index[name] = len(t.syms)
		t.syms = append(t.syms, Symbol{Name: name, Slot: len(t.syms)})
	}
	return t, nil
}

// DefaultTable holds the Cartesian and Polar symbols.
func DefaultTable() *Table {
	t, err := NewTable("x", "y", "r", "theta")
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Lookup(name string) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return Symbol{}, false
	}
	return t.syms[i], true
}

func (t *Table) Len() int { return len(t.syms) }

func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, len(t.syms))
	copy(out, t.syms)
	return out
}

var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
}

// Constants lists the named constants, sorted.
func Constants() []string {
	names := make([]string, 0, len(constants))
	for k := range constants {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
