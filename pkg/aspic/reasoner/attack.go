package reasoner

import (
	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// AttackKind distinguishes where an attack lands.
type AttackKind int

const (
	// Rebut attacks the conclusion of a rule application.
	Rebut AttackKind = iota + 1
	// Undermine attacks a defeasible premise used inside an argument.
	Undermine
	// Undercut attacks the rule hook, i.e. the applicability of a rule.
	Undercut
)

func (k AttackKind) String() string {
	switch k {
	case Rebut:
		return "rebut"
	case Undermine:
		return "undermine"
	case Undercut:
		return "undercut"
	default:
		return "unknown"
	}
}

// Attack records that Attacker attacks Target at its sub-argument At.
type Attack struct {
	Attacker *argument.RuleArgument
	Target   *argument.RuleArgument
	At       *argument.RuleArgument
	Kind     AttackKind
}

// Defeats reports whether the attack succeeds: it does unless the attacked
// sub-argument is strictly stronger than the attacker.
func (a Attack) Defeats() bool {
	return !(a.At.Support > a.Attacker.Support)
}

// attackable reports whether sub, a sub-argument of target, can be attacked
// at all, and by which kind of attack.
func attackable(target, sub *argument.RuleArgument, restricted bool) (AttackKind, bool) {
	switch {
	case sub.Builtin:
		return 0, false
	case sub.IsHook():
		// Hooks of strict rules are axioms: strict rules cannot be undercut.
		if sub.Rule.IsStrict() {
			return 0, false
		}
		return Undercut, true
	case sub.IsAxiom():
		return 0, false
	case sub.Atomic && sub != target:
		return Undermine, true
	}
	if !sub.Rule.IsStrict() {
		return Rebut, true
	}
	if !restricted && !sub.IsStrictAndFirm() {
		return Rebut, true
	}
	return 0, false
}

// attackLiteral is the claim an attacker of sub must have.
func attackLiteral(sub *argument.RuleArgument) term.Element {
	return term.Negate(sub.Claim)
}

// attacksOn lists every way attacker attacks target.
func attacksOn(attacker, target *argument.RuleArgument, restricted bool) []Attack {
	var out []Attack
	for _, sub := range target.Subs() {
		kind, ok := attackable(target, sub, restricted)
		if !ok {
			continue
		}
		if !attacker.Claim.Equal(attackLiteral(sub)) {
			continue
		}
		out = append(out, Attack{Attacker: attacker, Target: target, At: sub, Kind: kind})
	}
	return out
}
