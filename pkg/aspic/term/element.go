// Package term implements the logic data model used by the argumentation
// engine: constants, compound terms, variables and element lists, together
// with substitutions and Prolog-style unification.
//
// Every variant implements Element. Negation is not a separate variant: the
// negation of x is the compound term ~(x), and negating ~(x) yields x again.
package term

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NegationFunctor is the functor used to express classical negation.
const NegationFunctor = "~"

// Element is the capability shared by every term variant.
type Element interface {
	// Apply returns the element with every bound variable replaced.
	Apply(s Substitution) Element
	// Variables returns the distinct variables in order of first occurrence.
	Variables() []Variable
	// Inspect renders the element in prolog-like notation.
	Inspect() string
	IsGround() bool
	Equal(other Element) bool

	// unify handles the non-variable cases of Unify for this variant.
	unify(other Element, s Substitution) (Substitution, bool)
	collectVariables(seen map[Variable]struct{}, out []Variable) []Variable
}

// Constant is an atomic proposition or value (a 0-arity term).
type Constant struct {
	Name string
}

// NewConstant returns the constant with the given name.
func NewConstant(name string) Constant {
	return Constant{Name: name}
}

// NewNumber returns a numeric constant.
func NewNumber(f float64) Constant {
	return Constant{Name: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Number reports the numeric value of the constant, if it has one.
func (c Constant) Number() (float64, bool) {
	f, err := strconv.ParseFloat(c.Name, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (c Constant) Apply(Substitution) Element { return c }
func (c Constant) Variables() []Variable      { return nil }
func (c Constant) IsGround() bool             { return true }

func (c Constant) Inspect() string {
	if needsQuotes(c.Name) {
		return "'" + strings.ReplaceAll(c.Name, "'", "\\'") + "'"
	}
	return c.Name
}

func (c Constant) Equal(other Element) bool {
	o, ok := other.(Constant)
	if !ok {
		return false
	}
	if o.Name == c.Name {
		return true
	}
	a, aok := c.Number()
	b, bok := o.Number()
	return aok && bok && a == b
}

func (c Constant) unify(other Element, s Substitution) (Substitution, bool) {
	return s, c.Equal(other)
}

func (c Constant) collectVariables(_ map[Variable]struct{}, out []Variable) []Variable {
	return out
}

// Term is a compound term: a functor applied to ordered arguments.
type Term struct {
	Functor string
	Args    []Element
}

// NewTerm builds a compound term. Without arguments it returns a Constant,
// so 0-arity terms always behave as constants.
func NewTerm(functor string, args ...Element) Element {
	if len(args) == 0 {
		return Constant{Name: functor}
	}
	return Term{Functor: functor, Args: args}
}

func (t Term) Apply(s Substitution) Element {
	if s.Len() == 0 || t.IsGround() {
		return t
	}
	args := make([]Element, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return Term{Functor: t.Functor, Args: args}
}

func (t Term) Variables() []Variable {
	return t.collectVariables(map[Variable]struct{}{}, nil)
}

func (t Term) collectVariables(seen map[Variable]struct{}, out []Variable) []Variable {
	for _, a := range t.Args {
		out = a.collectVariables(seen, out)
	}
	return out
}

func (t Term) IsGround() bool {
	for _, a := range t.Args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

func (t Term) Inspect() string {
	if t.Functor == NegationFunctor && len(t.Args) == 1 {
		return NegationFunctor + t.Args[0].Inspect()
	}
	if len(t.Args) == 2 && IsInfixOperator(t.Functor) {
		return t.Args[0].Inspect() + " " + t.Functor + " " + t.Args[1].Inspect()
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.Inspect()
	}
	return Constant{Name: t.Functor}.Inspect() + "(" + strings.Join(parts, ", ") + ")"
}

func (t Term) Equal(other Element) bool {
	o, ok := other.(Term)
	if !ok || o.Functor != t.Functor || len(o.Args) != len(t.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t Term) unify(other Element, s Substitution) (Substitution, bool) {
	o, ok := other.(Term)
	if !ok || o.Functor != t.Functor || len(o.Args) != len(t.Args) {
		return s, false
	}
	for i := range t.Args {
		s, ok = Unify(t.Args[i], o.Args[i], s)
		if !ok {
			return s, false
		}
	}
	return s, true
}

// Variable is a named placeholder. ID is zero for variables written by users
// and positive for variables renamed apart during proof search.
type Variable struct {
	Name string
	ID   int
}

// NewVariable returns a user variable.
func NewVariable(name string) Variable {
	return Variable{Name: name}
}

func (v Variable) Apply(s Substitution) Element {
	if bound, ok := s.Lookup(v); ok {
		return bound.Apply(s)
	}
	return v
}

func (v Variable) Variables() []Variable { return []Variable{v} }
func (v Variable) IsGround() bool        { return false }

func (v Variable) Inspect() string {
	if v.ID == 0 {
		return v.Name
	}
	return fmt.Sprintf("%s_%d", v.Name, v.ID)
}

func (v Variable) Equal(other Element) bool {
	o, ok := other.(Variable)
	return ok && o == v
}

func (v Variable) unify(other Element, s Substitution) (Substitution, bool) {
	return Unify(v, other, s)
}

func (v Variable) collectVariables(seen map[Variable]struct{}, out []Variable) []Variable {
	if _, ok := seen[v]; ok {
		return out
	}
	seen[v] = struct{}{}
	return append(out, v)
}

// ElementList is an ordered sequence of elements. It is used both as a rule
// antecedent and as an ad hoc conjunctive query.
type ElementList []Element

// List builds an ElementList.
func List(elems ...Element) ElementList {
	return ElementList(elems)
}

func (l ElementList) Apply(s Substitution) Element {
	return s.ApplyList(l)
}

func (l ElementList) Variables() []Variable {
	return l.collectVariables(map[Variable]struct{}{}, nil)
}

func (l ElementList) collectVariables(seen map[Variable]struct{}, out []Variable) []Variable {
	for _, e := range l {
		out = e.collectVariables(seen, out)
	}
	return out
}

func (l ElementList) IsGround() bool {
	for _, e := range l {
		if !e.IsGround() {
			return false
		}
	}
	return true
}

func (l ElementList) Inspect() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Inspect()
	}
	return strings.Join(parts, ", ")
}

func (l ElementList) Equal(other Element) bool {
	o, ok := other.(ElementList)
	if !ok || len(o) != len(l) {
		return false
	}
	for i := range l {
		if !l[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (l ElementList) unify(other Element, s Substitution) (Substitution, bool) {
	o, ok := other.(ElementList)
	if !ok || len(o) != len(l) {
		return s, false
	}
	for i := range l {
		s, ok = Unify(l[i], o[i], s)
		if !ok {
			return s, false
		}
	}
	return s, true
}

// Copy returns a shallow copy that can be appended to without aliasing.
func (l ElementList) Copy() ElementList {
	out := make(ElementList, len(l), len(l)+1)
	copy(out, l)
	return out
}

// Negate returns the classical negation of e. Negating a negation strips it.
func Negate(e Element) Element {
	if t, ok := e.(Term); ok && t.Functor == NegationFunctor && len(t.Args) == 1 {
		return t.Args[0]
	}
	return Term{Functor: NegationFunctor, Args: []Element{e}}
}

// IsNegated reports whether e is of the form ~x.
func IsNegated(e Element) bool {
	t, ok := e.(Term)
	return ok && t.Functor == NegationFunctor && len(t.Args) == 1
}

// Indicator returns the functor and arity of e. Variables and lists have
// arity -1.
func Indicator(e Element) (string, int) {
	switch v := e.(type) {
	case Constant:
		return v.Name, 0
	case Term:
		return v.Functor, len(v.Args)
	default:
		return "", -1
	}
}

// SortVariables orders variables by name, then by renaming id.
func SortVariables(vars []Variable) {
	sort.Slice(vars, func(i, j int) bool {
		if vars[i].Name != vars[j].Name {
			return vars[i].Name < vars[j].Name
		}
		return vars[i].ID < vars[j].ID
	})
}

func needsQuotes(name string) bool {
	if name == "" {
		return true
	}
	if _, err := strconv.ParseFloat(name, 64); err == nil {
		return false
	}
	if IsInfixOperator(name) || name == NegationFunctor {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_'):
		default:
			return true
		}
	}
	return false
}
