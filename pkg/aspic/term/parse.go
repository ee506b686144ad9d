package term

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
)

// infixOperators are the comparison and arithmetic operators understood by
// the reader, ordered so that longer spellings are matched first.
var infixOperators = []string{"=:=", "=\\=", "\\==", "==", "=<", ">=", "\\=", "=", "<", ">", "+", "-", "*", "/"}

var comparisonOperators = map[string]bool{
	"=": true, "\\=": true, "==": true, "\\==": true,
	"<": true, ">": true, "=<": true, ">=": true,
	"=:=": true, "=\\=": true, "is": true,
}

// IsInfixOperator reports whether functor is written infix by Inspect.
func IsInfixOperator(functor string) bool {
	switch functor {
	case "+", "-", "*", "/":
		return true
	}
	return comparisonOperators[functor]
}

// IsComparison reports whether functor is a comparison (or `is`) operator.
func IsComparison(functor string) bool {
	return comparisonOperators[functor]
}

// Parse reads a single element written in term notation:
//
//	p(X, c)   ~q   X > 3   Y is X * 2   'quoted atom'   0.5
//
// Identifiers starting with an upper case letter or underscore are variables.
// Parse reads terms only; rule arrows and degrees of belief are not part of
// this notation.
func Parse(input string) (Element, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek().text)
	}
	return e, nil
}

// ParseList reads a comma separated conjunction. Variables with the same
// name share identity across the whole list.
func ParseList(input string) (ElementList, error) {
	if strings.TrimSpace(input) == "" {
		return ElementList{}, nil
	}
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	var out ElementList
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.done() {
			return out, nil
		}
		if !p.accept(",") {
			return nil, p.errorf("expected ',' but found %q", p.peek().text)
		}
	}
}

// MustParse is Parse that panics on error. Intended for tests and literals.
func MustParse(input string) Element {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

// MustParseList is ParseList that panics on error.
func MustParseList(input string) ElementList {
	l, err := ParseList(input)
	if err != nil {
		panic(err)
	}
	return l
}

type tokenKind int

const (
	tokAtom tokenKind = iota
	tokVar
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input     string
	toks      []token
	i         int
	anonymous int
}

func newParser(input string) (*parser, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	return &parser{input: input, toks: toks}, nil
}

func (p *parser) done() bool { return p.i >= len(p.toks) }

func (p *parser) peek() token {
	if p.done() {
		return token{kind: tokPunct, text: "<end>", pos: len(p.input)}
	}
	return p.toks[p.i]
}

func (p *parser) accept(punct string) bool {
	t := p.peek()
	if !p.done() && t.kind == tokPunct && t.text == punct {
		p.i++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: parse %q at %d: %s", internalerr.ErrInvalidInput,
		p.input, p.peek().pos, fmt.Sprintf(format, args...))
}

// expr := arith (comparison arith)?
func (p *parser) expr() (Element, error) {
	left, err := p.arith()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if !p.done() && (t.kind == tokPunct || t.kind == tokAtom) && comparisonOperators[t.text] {
		p.i++
		right, err := p.arith()
		if err != nil {
			return nil, err
		}
		return Term{Functor: t.text, Args: []Element{left, right}}, nil
	}
	return left, nil
}

// arith := product (('+'|'-') product)*
func (p *parser) arith() (Element, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if p.done() || t.kind != tokPunct || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.i++
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = Term{Functor: t.text, Args: []Element{left, right}}
	}
}

// product := unary (('*'|'/') unary)*
func (p *parser) product() (Element, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if p.done() || t.kind != tokPunct || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.i++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = Term{Functor: t.text, Args: []Element{left, right}}
	}
}

func (p *parser) unary() (Element, error) {
	if p.accept(NegationFunctor) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Negate(inner), nil
	}
	if p.accept("-") {
		t := p.peek()
		if p.done() || t.kind != tokNumber {
			return nil, p.errorf("expected number after '-'")
		}
		p.i++
		return Constant{Name: "-" + t.text}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Element, error) {
	if p.done() {
		return nil, p.errorf("unexpected end of input")
	}
	t := p.toks[p.i]
	switch t.kind {
	case tokNumber:
		p.i++
		return Constant{Name: t.text}, nil
	case tokVar:
		p.i++
		if t.text == "_" {
			p.anonymous++
			return Variable{Name: "_" + strconv.Itoa(p.anonymous)}, nil
		}
		return Variable{Name: t.text}, nil
	case tokAtom:
		p.i++
		if !p.accept("(") {
			return Constant{Name: t.text}, nil
		}
		var args []Element
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.accept(")") {
				return NewTerm(t.text, args...), nil
			}
			if !p.accept(",") {
				return nil, p.errorf("expected ',' or ')' in arguments of %s", t.text)
			}
		}
	case tokPunct:
		if p.accept("(") {
			inner, err := p.expr()
			if err != nil {
				return nil, err
			}
			if !p.accept(")") {
				return nil, p.errorf("expected ')'")
			}
			return inner, nil
		}
	}
	return nil, p.errorf("unexpected %q", t.text)
}

func lex(input string) ([]token, error) {
	var toks []token
	rs := []rune(input)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '\'':
			j := i + 1
			var b strings.Builder
			for j < len(rs) && rs[j] != '\'' {
				if rs[j] == '\\' && j+1 < len(rs) {
					j++
				}
				b.WriteRune(rs[j])
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("%w: parse %q: unterminated quoted atom", internalerr.ErrInvalidInput, input)
			}
			toks = append(toks, token{kind: tokAtom, text: b.String(), pos: i})
			i = j + 1
		case unicode.IsDigit(r):
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.' && j+1 < len(rs) && unicode.IsDigit(rs[j+1])) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j]), pos: i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			word := string(rs[i:j])
			kind := tokAtom
			if unicode.IsUpper(r) || r == '_' {
				kind = tokVar
			}
			toks = append(toks, token{kind: kind, text: word, pos: i})
			i = j
		case r == '(' || r == ')' || r == ',' || r == '~':
			toks = append(toks, token{kind: tokPunct, text: string(r), pos: i})
			i++
		default:
			matched := false
			for _, op := range infixOperators {
				if strings.HasPrefix(string(rs[i:]), op) {
					toks = append(toks, token{kind: tokPunct, text: op, pos: i})
					i += len([]rune(op))
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("%w: parse %q: unexpected character %q at %d",
					internalerr.ErrInvalidInput, input, r, i)
			}
		}
	}
	return toks, nil
}
