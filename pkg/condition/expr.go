// Package condition compiles and evaluates the small boolean expressions
// carried by node conditions, for example
//
//	status == "ready" && count > 0
//	!target.disabled || self.force
//
// Identifiers are dot paths into an Env. Literals are strings (single or
// double quoted), numbers, true, false and null.
package condition

import (
	"fmt"
	"sort"
	"strings"
)

// Env supplies identifier values. Keys may themselves contain dots; an exact
// key match wins over path traversal.
type Env map[string]any

// Expr is a compiled expression. The zero value and the empty expression
// evaluate to true.
type Expr struct {
	src  string
	root node
}

// Compile parses src.
func Compile(src string) (*Expr, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return &Expr{}, nil
	}
	tokens, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("condition: unexpected %q at offset %d", tok.text, tok.pos)
	}
	return &Expr{src: trimmed, root: root}, nil
}

// MustCompile is Compile for static expressions; it panics on error.
func MustCompile(src string) *Expr {
	expr, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return expr
}

// Evaluate compiles and evaluates src in one step.
func Evaluate(src string, env Env) (bool, error) {
	expr, err := Compile(src)
	if err != nil {
		return false, err
	}
	return expr.Eval(env), nil
}

// Eval evaluates the expression. Missing identifiers read as null.
func (e *Expr) Eval(env Env) bool {
	if e == nil || e.root == nil {
		return true
	}
	return truthy(e.root.value(env))
}

// Identifiers lists the distinct identifiers the expression reads, sorted.
func (e *Expr) Identifiers() []string {
	if e == nil || e.root == nil {
		return nil
	}
	seen := make(map[string]struct{})
	e.root.idents(seen)
	out := make([]string, 0, len(seen))
	for ident := range seen {
		out = append(out, ident)
	}
	sort.Strings(out)
	return out
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.src
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kinds ...tokenKind) (token, bool) {
	tok, ok := p.peek()
	if !ok {
		return token{}, false
	}
	for _, kind := range kinds {
		if tok.kind == kind {
			p.pos++
			return tok, true
		}
	}
	return token{}, false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(tokOr); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept(tokAnd); !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if _, ok := p.accept(tokNot); ok {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := p.accept(tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte)
	if !ok {
		return left, nil
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return compareNode{op: op.kind, left: left, right: right}, nil
}

func (p *parser) parseOperand() (node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("condition: expression ends early")
	}
	p.pos++
	switch tok.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tokRParen); !ok {
			return nil, fmt.Errorf("condition: missing ')' for '(' at offset %d", tok.pos)
		}
		return inner, nil
	case tokIdent:
		return identNode{path: tok.text}, nil
	case tokString:
		return literalNode{val: tok.text}, nil
	case tokNumber:
		n, _ := toNumber(tok.text)
		return literalNode{val: n}, nil
	case tokBool:
		return literalNode{val: tok.text == "true"}, nil
	case tokNull:
		return literalNode{val: nil}, nil
	default:
		return nil, fmt.Errorf("condition: unexpected %q at offset %d", tok.text, tok.pos)
	}
}
