package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnifyConstants(t *testing.T) {
	if _, ok := Unify(NewConstant("a"), NewConstant("a"), Substitution{}); !ok {
		t.Fatal("expected identical constants to unify")
	}
	if _, ok := Unify(NewConstant("a"), NewConstant("b"), Substitution{}); ok {
		t.Fatal("expected distinct constants not to unify")
	}
	if _, ok := Unify(MustParse("1"), MustParse("1.0"), Substitution{}); !ok {
		t.Fatal("expected numerically equal constants to unify")
	}
}

func TestUnifyBindsVariables(t *testing.T) {
	a := MustParse("p(X, b, f(Y))")
	b := MustParse("p(a, Z, f(c))")

	s, ok := Unify(a, b, Substitution{})
	if !ok {
		t.Fatalf("expected %s and %s to unify", a.Inspect(), b.Inspect())
	}

	want := map[string]string{"X": "a", "Z": "b", "Y": "c"}
	got := map[string]string{}
	for _, v := range s.Variables() {
		got[v.Inspect()] = s.Apply(v).Inspect()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestUnifyRespectsExistingSubstitution(t *testing.T) {
	existing := Substitution{}.Bind(NewVariable("X"), NewConstant("a"))

	if _, ok := Unify(MustParse("p(X)"), MustParse("p(b)"), existing); ok {
		t.Fatal("expected clash with existing binding X/a")
	}
	s, ok := Unify(MustParse("p(X)"), MustParse("p(Y)"), existing)
	if !ok {
		t.Fatal("expected p(X) and p(Y) to unify under X/a")
	}
	if got := s.Apply(NewVariable("Y")).Inspect(); got != "a" {
		t.Errorf("Y = %s, want a", got)
	}
}

func TestUnifyFunctorAndArityMismatch(t *testing.T) {
	cases := [][2]string{
		{"p(a)", "q(a)"},
		{"p(a)", "p(a, b)"},
		{"p", "p(a)"},
		{"~a", "a"},
	}
	for _, c := range cases {
		if Unifiable(MustParse(c[0]), MustParse(c[1])) {
			t.Errorf("expected %s and %s not to unify", c[0], c[1])
		}
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	if Unifiable(MustParse("X"), MustParse("f(X)")) {
		t.Fatal("expected X and f(X) not to unify")
	}
}

func TestUnifierMakesTermsIdentical(t *testing.T) {
	pairs := [][2]string{
		{"p(X, f(Y), Y)", "p(g(Z), f(a), W)"},
		{"q(X, X)", "q(Y, b)"},
		{"r(A, B, C)", "r(B, C, d)"},
		{"~s(X)", "~s(t(Y))"},
	}
	for _, pair := range pairs {
		a, b := MustParse(pair[0]), MustParse(pair[1])

		ab, ok := Unify(a, b, Substitution{})
		if !ok {
			t.Fatalf("expected %s and %s to unify", pair[0], pair[1])
		}
		if !ab.Apply(a).Equal(ab.Apply(b)) {
			t.Errorf("mgu %s does not make %s and %s identical", ab.Inspect(), pair[0], pair[1])
		}

		ba, ok := Unify(b, a, Substitution{})
		if !ok {
			t.Fatalf("expected unification to be symmetric for %s and %s", pair[0], pair[1])
		}
		if !EqualModuloVariables(ab.Apply(a), ba.Apply(a)) {
			t.Errorf("unifiers differ beyond renaming: %s vs %s", ab.Apply(a).Inspect(), ba.Apply(a).Inspect())
		}
	}
}

func TestComposeChainsSubstitutions(t *testing.T) {
	x, y := NewVariable("X"), NewVariable("Y")
	s := Substitution{}.Bind(x, MustParse("f(Y)"))
	u := Substitution{}.Bind(y, NewConstant("a"))

	c := s.Compose(u)
	if got := c.Apply(x).Inspect(); got != "f(a)" {
		t.Errorf("X = %s, want f(a)", got)
	}
	if got := c.Apply(y).Inspect(); got != "a" {
		t.Errorf("Y = %s, want a", got)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestGroundElementUnchangedByApply(t *testing.T) {
	s := Substitution{}.Bind(NewVariable("X"), NewConstant("z"))
	for _, in := range []string{"a", "p(a, b)", "~q(f(c))", "3 > 2"} {
		e := MustParse(in)
		if !e.Apply(s).Equal(e) {
			t.Errorf("Apply changed ground element %s", in)
		}
	}
}

func TestRenamerStandardisesApart(t *testing.T) {
	var r Renamer
	e := MustParse("p(X, Y, X)")

	first := e.Apply(r.Rename(e.Variables()))
	second := e.Apply(r.Rename(e.Variables()))

	if !EqualModuloVariables(first, e) || !EqualModuloVariables(second, e) {
		t.Fatal("renaming must produce variants of the original")
	}
	for _, v := range first.Variables() {
		for _, w := range second.Variables() {
			if v == w {
				t.Errorf("variable %s shared between renamings", v.Inspect())
			}
		}
	}
}

func TestRestrictDropsUnboundVariables(t *testing.T) {
	x, y, z := NewVariable("X"), NewVariable("Y"), NewVariable("Z")
	s := Substitution{}.Bind(x, y).Bind(y, NewConstant("a"))

	r := s.Restrict([]Variable{x, z})
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	if got := r.Inspect(); got != "{X/a}" {
		t.Errorf("Inspect = %s, want {X/a}", got)
	}
}
