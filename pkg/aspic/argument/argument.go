// Package argument builds structured arguments from a rule base.
//
// An argument is a proof tree: its top rule is instantiated so that the
// consequent matches the claim, and each sub-argument proves one conjunct of
// the rule's body. For proper rules the rule's name is the final conjunct, so
// every argument built from a proper rule carries a sub-argument for the
// rule's hook fact. Arguments are rebuilt for every query and never cached.
package argument

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// RuleArgument is a proof of Claim with strength Support.
type RuleArgument struct {
	Claim        term.Element
	Support      float64
	Substitution term.Substitution
	// Rule is the top rule instantiated under Substitution.
	Rule         *kb.Rule
	SubArguments *RuleArgumentList
	// Atomic arguments are built from a fact, a belief or a builtin goal.
	Atomic  bool
	Builtin bool

	Party string
	Level int
	DTop  int
}

// RuleArgumentList jointly proves a conjunction.
type RuleArgumentList struct {
	Arguments    []*RuleArgument
	Substitution term.Substitution
}

// Valuate aggregates the list into the support of an argument built on top.
func (l *RuleArgumentList) Valuate(v Valuator, top *kb.Rule) float64 {
	return v.Valuate(top, l)
}

func (l *RuleArgumentList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Arguments)
}

// Children returns the immediate sub-arguments.
func (a *RuleArgument) Children() []*RuleArgument {
	if a.SubArguments == nil {
		return nil
	}
	return a.SubArguments.Arguments
}

// IsHook reports whether the argument proves a rule hook.
func (a *RuleArgument) IsHook() bool {
	return a.Atomic && a.Rule.IsHook()
}

// IsAxiom reports whether the argument is a strict fact. Axioms cannot be
// attacked.
func (a *RuleArgument) IsAxiom() bool {
	return a.Atomic && a.Rule.IsStrict()
}

// IsStrictAndFirm reports whether every rule in the tree is strict.
func (a *RuleArgument) IsStrictAndFirm() bool {
	firm := true
	a.Walk(func(sub *RuleArgument) bool {
		if !sub.Rule.IsStrict() {
			firm = false
		}
		return firm
	})
	return firm
}

// Walk visits the argument and its sub-arguments in pre-order until fn
// returns false.
func (a *RuleArgument) Walk(fn func(*RuleArgument) bool) bool {
	if !fn(a) {
		return false
	}
	for _, sub := range a.Children() {
		if !sub.Walk(fn) {
			return false
		}
	}
	return true
}

// Subs returns the argument and all of its sub-arguments in pre-order.
func (a *RuleArgument) Subs() []*RuleArgument {
	var out []*RuleArgument
	a.Walk(func(sub *RuleArgument) bool {
		out = append(out, sub)
		return true
	})
	return out
}

// Premises returns the atomic leaves of the tree, hooks and builtins included.
func (a *RuleArgument) Premises() []*RuleArgument {
	var out []*RuleArgument
	a.Walk(func(sub *RuleArgument) bool {
		if sub.Atomic {
			out = append(out, sub)
		}
		return true
	})
	return out
}

// Rules returns the instantiated top rules of every non-atomic node.
func (a *RuleArgument) Rules() []*kb.Rule {
	var out []*kb.Rule
	a.Walk(func(sub *RuleArgument) bool {
		if !sub.Atomic {
			out = append(out, sub.Rule)
		}
		return true
	})
	return out
}

// SemanticallyEqual reports whether both arguments reach the same claim with
// the same instantiated rules and premises, regardless of order.
func (a *RuleArgument) SemanticallyEqual(o *RuleArgument) bool {
	if !a.Claim.Equal(o.Claim) {
		return false
	}
	return equalStrings(ruleSet(a), ruleSet(o))
}

func ruleSet(a *RuleArgument) []string {
	var out []string
	a.Walk(func(sub *RuleArgument) bool {
		out = append(out, sub.Rule.Inspect())
		return true
	})
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Key is a structural fingerprint. Arguments that differ only in the naming
// of their free variables share a key.
func (a *RuleArgument) Key() string {
	var elems term.ElementList
	var shape strings.Builder
	a.Walk(func(sub *RuleArgument) bool {
		r := sub.Rule
		elems = append(elems, r.Consequent)
		elems = append(elems, r.Antecedent...)
		if r.Name != nil {
			elems = append(elems, r.Name)
		}
		shape.WriteString(strconv.Itoa(len(sub.Children())))
		shape.WriteString(":")
		shape.WriteString(strconv.FormatFloat(r.Dob, 'g', -1, 64))
		if sub.Builtin {
			shape.WriteString("b")
		}
		shape.WriteString(";")
		return true
	})
	vars := elems.Variables()
	canon := make(map[term.Variable]term.Element, len(vars))
	for i, v := range vars {
		canon[v] = term.Variable{Name: "#", ID: i + 1}
	}
	return shape.String() + elems.Apply(term.NewSubstitution(canon)).Inspect()
}

// Inspect renders the argument tree with rule hooks hidden, for example
// `a 0.8 <- (b, c)`.
func (a *RuleArgument) Inspect() string {
	return a.InspectWith(kb.InspectOptions{})
}

// InspectWith renders the argument tree; hooks are shown when opts.ShowHooks.
func (a *RuleArgument) InspectWith(opts kb.InspectOptions) string {
	var b strings.Builder
	a.inspect(&b, opts)
	return b.String()
}

func (a *RuleArgument) inspect(b *strings.Builder, opts kb.InspectOptions) {
	b.WriteString(a.Claim.Inspect())
	if a.Support != kb.StrictDob {
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(a.Support, 'f', -1, 64))
	}
	if a.Atomic {
		return
	}
	b.WriteString(" <- (")
	first := true
	for _, sub := range a.Children() {
		if sub.IsHook() && !opts.ShowHooks {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		sub.inspect(b, opts)
	}
	b.WriteString(")")
}

func (a *RuleArgument) String() string {
	return a.Inspect()
}
