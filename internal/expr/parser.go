package expr

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokComma
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// identAliases maps alternative spellings onto symbol names.
var identAliases = map[string]string{
	"θ": "theta",
	"π": "pi",
}

type lexer struct {
	s string
	i int
}

func (l *lexer) next() token {
	for l.i < len(l.s) {
		r, size := utf8.DecodeRuneInString(l.s[l.i:])
		if !unicode.IsSpace(r) {
			break
		}
		l.i += size
	}
	if l.i >= len(l.s) {
		return token{kind: tokEOF, pos: l.i}
	}

	start := l.i
	single := func(k tokenKind) token {
		l.i++
		return token{kind: k, text: l.s[start:l.i], pos: start}
	}
	switch l.s[l.i] {
	case '+':
		return single(tokPlus)
	case '-':
		return single(tokMinus)
	case '*':
		return single(tokStar)
	case '/':
		return single(tokSlash)
	case '^':
		return single(tokCaret)
	case '(', '[':
		return single(tokLParen)
	case ')', ']':
		return single(tokRParen)
	case ',':
		return single(tokComma)
	}

	r, size := utf8.DecodeRuneInString(l.s[l.i:])
	if isIdentStart(r) {
		l.i += size
		for l.i < len(l.s) {
			r, size = utf8.DecodeRuneInString(l.s[l.i:])
			if !isIdentContinue(r) {
				break
			}
			l.i += size
		}
		text := l.s[start:l.i]
		if alias, ok := identAliases[text]; ok {
			text = alias
		}
		return token{kind: tokIdent, text: text, pos: start}
	}
	if r == '.' || (r >= '0' && r <= '9') {
		l.i = scanNumber(l.s, l.i)
		text := l.s[start:l.i]
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{kind: tokInvalid, text: text, pos: start}
		}
		return token{kind: tokNumber, text: text, num: v, pos: start}
	}

	l.i += size
	return token{kind: tokInvalid, text: string(r), pos: start}
}

// scanNumber consumes digits, an optional fraction and an optional exponent.
// An 'e' not followed by digits is left for the identifier scanner, so 2e
// lexes as 2 then e.
func scanNumber(s string, i int) int {
	digits := func(i int) int {
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i
	}
	i = digits(i)
	if i < len(s) && s[i] == '.' {
		i = digits(i + 1)
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if k := digits(j); k > j {
			i = k
		}
	}
	return i
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

type parser struct {
	text string
	l    lexer
	cur  token
}

// Parsed is the result of parsing one expression source. It is never mutated
// after Parse returns; edits produce a new value.
type Parsed struct {
	text string
	root node
	err  *CompileError
}

// Parse parses text. The returned value always records the source text; on
// failure Err reports a ParseFailed error and the value compiles to that same
// error.
func Parse(text string) *Parsed {
	p := &parser{text: text, l: lexer{s: text}}
	p.next()
	if p.cur.kind == tokEOF {
		return &Parsed{text: text, err: parseError(text, "empty expression")}
	}
	root, err := p.parseSum()
	if err == nil && p.cur.kind != tokEOF {
		err = p.unexpected()
	}
	if err != nil {
		return &Parsed{text: text, err: err}
	}
	return &Parsed{text: text, root: root}
}

// Text returns the source the value was parsed from.
func (p *Parsed) Text() string { return p.text }

// Err returns the parse failure, or nil.
func (p *Parsed) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// String returns the canonical form of the expression, or the source text
// when parsing failed.
func (p *Parsed) String() string {
	if p.root == nil {
		return p.text
	}
	return nodeString(p.root)
}

// Idents returns the identifiers the expression references, constants
// included, in order of first appearance.
func (p *Parsed) Idents() []string {
	if p.root == nil {
		return nil
	}
	return collectIdents(p.root, make(map[string]bool), nil)
}

func (p *parser) next() { p.cur = p.l.next() }

func (p *parser) unexpected() *CompileError {
	switch p.cur.kind {
	case tokEOF:
		return parseError(p.text, "unexpected end of input")
	case tokInvalid:
		return parseError(p.text, "invalid character %q at offset %d", p.cur.text, p.cur.pos)
	default:
		return parseError(p.text, "unexpected %q at offset %d", p.cur.text, p.cur.pos)
	}
}

func (p *parser) parseSum() (node, *CompileError) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.text[0]
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (node, *CompileError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch p.cur.kind {
		case tokStar, tokSlash:
			op = p.cur.text[0]
			p.next()
		case tokIdent, tokLParen:
			op = '*'
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, *CompileError) {
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.text[0]
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, x: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, *CompileError) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokCaret {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: '^', left: base, right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, *CompileError) {
	switch p.cur.kind {
	case tokNumber:
		v := p.cur.num
		p.next()
		return numNode{v: v}, nil
	case tokIdent:
		name := p.cur.text
		p.next()
		// Only builtins take call syntax; x(y+1) is a product.
		if p.cur.kind == tokLParen && isBuiltin(name) {
			return p.parseCall(name)
		}
		return identNode{name: name}, nil
	case tokLParen:
		p.next()
		ex, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, parseError(p.text, "expected ')' at offset %d", p.cur.pos)
		}
		p.next()
		return ex, nil
	default:
		return nil, p.unexpected()
	}
}

func (p *parser) parseCall(name string) (node, *CompileError) {
	p.next()
	var args []node
	if p.cur.kind != tokRParen {
		for {
			ex, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			args = append(args, ex)
			if p.cur.kind == tokComma {
				p.next()
				continue
			}
			break
		}
	}
	if p.cur.kind != tokRParen {
		return nil, parseError(p.text, "expected ')' to close %s( at offset %d", name, p.cur.pos)
	}
	p.next()
	return callNode{name: name, args: args}, nil
}
