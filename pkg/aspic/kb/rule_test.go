package kb

import (
	"errors"
	"math"
	"testing"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

func TestNewRuleRejectsInvalidDob(t *testing.T) {
	for _, dob := range []float64{0, -0.1, 1.01, math.NaN()} {
		_, err := NewRule(term.MustParse("a"), nil, dob, nil)
		if !errors.Is(err, ErrInvalidDob) {
			t.Errorf("dob %v: expected ErrInvalidDob, got %v", dob, err)
		}
		if !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("dob %v: error should wrap ErrInvalidInput", dob)
		}
	}
}

func TestNewRuleRejectsForeignNameVariables(t *testing.T) {
	_, err := NewRule(term.MustParse("p(X)"), term.MustParseList("q(X)"), 0.5, term.MustParse("n(Y)"))
	if !errors.Is(err, ErrForeignNameVariables) {
		t.Fatalf("expected ErrForeignNameVariables, got %v", err)
	}
	if !IsInvalidRule(err) {
		t.Error("IsInvalidRule should hold")
	}
}

func TestNewRuleRejectsVariableConsequent(t *testing.T) {
	if _, err := NewRule(term.MustParse("X"), nil, 1.0, nil); !errors.Is(err, ErrInvalidConsequent) {
		t.Fatalf("expected ErrInvalidConsequent, got %v", err)
	}
}

func TestFactIsStrictWhenDobIsOne(t *testing.T) {
	f, err := NewFact(term.MustParse("b"))
	if err != nil {
		t.Fatalf("NewFact: %v", err)
	}
	if !f.IsFact() || !f.IsStrict() {
		t.Errorf("fact b should be a strict fact")
	}
	belief, _ := NewBelief(term.MustParse("c"), 0.3)
	if !belief.IsFact() || belief.IsStrict() {
		t.Errorf("belief c 0.3 should be a defeasible fact")
	}
}

func TestApplyOnGroundRuleReturnsSameRule(t *testing.T) {
	r := MustRule(term.MustParse("a"), term.MustParseList("b, c"), 0.8, nil)
	s := term.Substitution{}.Bind(term.NewVariable("X"), term.NewConstant("z"))
	if got := r.Apply(s); got != r {
		t.Errorf("Apply on ground rule returned a new rule %s", got.Inspect())
	}
}

func TestApplyInstantiatesRuleAndCaption(t *testing.T) {
	r := MustRule(term.MustParse("likes(X, Y)"), term.MustParseList("friend(X, Y)"), 0.7,
		term.MustParse("liking(X, Y)"),
		WithCaption("{X} likes {Y}"), WithDescription("{X} is a friend of {Y}"))

	s := term.Substitution{}.Bind(term.NewVariable("X"), term.NewConstant("ann"))
	partial := r.Apply(s)
	if got := partial.Inspect(); got != "[liking(ann, Y)] likes(ann, Y) <- friend(ann, Y) 0.7" {
		t.Errorf("Inspect = %q", got)
	}
	if partial.Caption != "ann likes {Y}" {
		t.Errorf("Caption = %q", partial.Caption)
	}

	full := partial.Apply(term.Substitution{}.Bind(term.NewVariable("Y"), term.NewConstant("bob")))
	if full.Description != "ann is a friend of bob" {
		t.Errorf("Description = %q", full.Description)
	}
	if r.Caption != "{X} likes {Y}" {
		t.Error("Apply must not modify the original rule")
	}
}

func TestRenameStandardisesApart(t *testing.T) {
	var renamer term.Renamer
	r := MustRule(term.MustParse("p(X)"), term.MustParseList("q(X, Y)"), 0.5, term.MustParse("n(X)"))
	a, b := r.Rename(&renamer), r.Rename(&renamer)
	if a.Consequent.Equal(b.Consequent) {
		t.Fatalf("renamed copies share variables: %s", a.Inspect())
	}
	if !term.EqualModuloVariables(a.Name, r.Name) {
		t.Errorf("renamed name %s is not a variant of %s", a.Name.Inspect(), r.Name.Inspect())
	}
}

func TestInspectOmitsStrictDob(t *testing.T) {
	r := MustRule(term.MustParse("a"), term.MustParseList("b, ~c"), 1.0, term.MustParse("n1"))
	if got := r.Inspect(); got != "[n1] a <- b, ~c" {
		t.Errorf("Inspect = %q", got)
	}
}
