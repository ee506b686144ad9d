package argument

import (
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// IsBuiltin reports whether goal is evaluated directly instead of being
// proved from rules.
func IsBuiltin(goal term.Element) bool {
	t, ok := goal.(term.Term)
	return ok && len(t.Args) == 2 && term.IsComparison(t.Functor)
}

// evalBuiltin solves a comparison goal. It returns the bindings the goal
// produces and whether it holds. Comparisons over unbound operands fail.
func evalBuiltin(goal term.Term) (term.Substitution, bool) {
	left, right := goal.Args[0], goal.Args[1]
	none := term.Substitution{}
	switch goal.Functor {
	case "=":
		return term.Unify(left, right, none)
	case "\\=":
		return none, !term.Unifiable(left, right)
	case "==":
		return none, left.Equal(right)
	case "\\==":
		return none, !left.Equal(right)
	case "is":
		v, ok := evalArith(right)
		if !ok {
			return none, false
		}
		return term.Unify(left, term.NewNumber(v), none)
	}

	l, lok := evalArith(left)
	r, rok := evalArith(right)
	if !lok || !rok {
		return none, false
	}
	switch goal.Functor {
	case "<":
		return none, l < r
	case ">":
		return none, l > r
	case "=<":
		return none, l <= r
	case ">=":
		return none, l >= r
	case "=:=":
		return none, l == r
	case "=\\=":
		return none, l != r
	}
	return none, false
}

func evalArith(e term.Element) (float64, bool) {
	switch x := e.(type) {
	case term.Constant:
		return x.Number()
	case term.Term:
		if len(x.Args) != 2 {
			return 0, false
		}
		l, ok := evalArith(x.Args[0])
		if !ok {
			return 0, false
		}
		r, ok := evalArith(x.Args[1])
		if !ok {
			return 0, false
		}
		switch x.Functor {
		case "+":
			return l + r, true
		case "-":
			return l - r, true
		case "*":
			return l * r, true
		case "/":
			if r == 0 {
				return 0, false
			}
			return l / r, true
		}
	}
	return 0, false
}

// builtinArgument wraps a solved comparison as a strict atomic argument.
func builtinArgument(goal term.Term, s term.Substitution, f frame, party string) *RuleArgument {
	claim := goal.Apply(s)
	return &RuleArgument{
		Claim:        claim,
		Support:      kb.StrictDob,
		Substitution: s,
		Rule: &kb.Rule{
			Consequent: claim,
			Antecedent: term.ElementList{},
			Dob:        kb.StrictDob,
		},
		Atomic:  true,
		Builtin: true,
		Party:   party,
		Level:   f.level,
		DTop:    f.dTop,
	}
}
