package kb

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

func rule(t *testing.T, head, body string, dob float64, name string) *Rule {
	t.Helper()
	var n term.Element
	if name != "" {
		n = term.MustParse(name)
	}
	r, err := NewRule(term.MustParse(head), term.MustParseList(body), dob, n)
	if err != nil {
		t.Fatalf("NewRule(%s <- %s): %v", head, body, err)
	}
	return r
}

func TestAddUnnamedRuleCreatesHook(t *testing.T) {
	base := New()
	stored, err := base.AddRule(rule(t, "a", "b", 0.8, ""))
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	if base.Len() != 2 {
		t.Fatalf("Len = %d, want 2", base.Len())
	}
	if got := stored.Name.Inspect(); got != "r1" {
		t.Errorf("auto name = %s, want r1", got)
	}
	if !stored.AutoNamed {
		t.Error("stored rule should be marked auto named")
	}

	hook, ok := base.HookFor(stored)
	if !ok {
		t.Fatal("no hook for stored rule")
	}
	if !hook.IsHook() || hook.Dob != 0.8 || hook.Consequent.Inspect() != "r1" {
		t.Errorf("unexpected hook %s", hook.Inspect())
	}

	if got := base.Inspect(); got != "a <- b 0.8.\n" {
		t.Errorf("Inspect = %q", got)
	}
	want := "[r1] a <- b 0.8.\nr1 0.8.\n"
	if got := base.InspectWith(ShowAll); got != want {
		t.Errorf("InspectWith(ShowAll) = %q, want %q", got, want)
	}
}

func TestNamedRuleKeepsNameAndGetsHook(t *testing.T) {
	base := New()
	stored, err := base.AddRule(rule(t, "flies(X)", "bird(X)", 0.9, "n(X)"))
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if stored.AutoNamed {
		t.Error("user named rule must not be marked auto named")
	}
	if got := base.Inspect(); got != "[n(X)] flies(X) <- bird(X) 0.9.\n" {
		t.Errorf("Inspect = %q", got)
	}
	hook, _ := base.HookFor(stored)
	if got := hook.Consequent.Inspect(); got != "n(X)" {
		t.Errorf("hook claim = %s", got)
	}
}

func TestFactsHaveNoHook(t *testing.T) {
	base := New()
	stored, err := base.AddRule(rule(t, "b", "", 1.0, ""))
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if stored.Name != nil {
		t.Errorf("facts are not named automatically, got %s", stored.Name.Inspect())
	}
	if base.Len() != 1 {
		t.Errorf("Len = %d, want 1", base.Len())
	}
}

func TestAutoNamesSkipExistingNames(t *testing.T) {
	base := New()
	if _, err := base.AddRule(rule(t, "r1", "", 1.0, "")); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	stored, err := base.AddRule(rule(t, "a", "b", 0.5, ""))
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if got := stored.Name.Inspect(); got != "r2" {
		t.Errorf("auto name = %s, want r2", got)
	}
}

func TestReservedNamesRejected(t *testing.T) {
	base := New()
	_, err := base.AddRule(rule(t, "a", "b", 0.5, "r7"))
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("expected ErrReservedName, got %v", err)
	}
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("ErrReservedName should wrap ErrInvalidInput")
	}
	if base.Len() != 0 {
		t.Errorf("rejected rule was stored")
	}
}

func TestFactCannotReuseAutomaticName(t *testing.T) {
	base := New()
	stored, err := base.AddRule(rule(t, "a", "b", 0.5, ""))
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if got := stored.Name.Inspect(); got != "r1" {
		t.Fatalf("auto name = %s, want r1", got)
	}
	before := base.Len()

	_, err = base.AddRule(rule(t, "r1", "", 0.9, ""))
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("expected ErrReservedName, got %v", err)
	}
	_, err = base.AddRule(rule(t, "r1", "c", 0.9, ""))
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("expected ErrReservedName for a rule concluding r1, got %v", err)
	}
	if base.Len() != before {
		t.Errorf("Len = %d, want %d", base.Len(), before)
	}

	// Undercutters of the automatic name stay allowed.
	if _, err := base.AddRule(rule(t, "~r1", "", 0.9, "")); err != nil {
		t.Errorf("AddRule(~r1): %v", err)
	}
	// Names not yet assigned are still free to use as facts.
	if _, err := base.AddRule(rule(t, "r5", "", 1.0, "")); err != nil {
		t.Errorf("AddRule(r5): %v", err)
	}
}

func TestAddingHookDirectlyFails(t *testing.T) {
	base := New()
	stored, _ := base.AddRule(rule(t, "a", "b", 0.5, ""))
	hook, _ := base.HookFor(stored)

	other := New()
	if _, err := other.AddRule(hook); !errors.Is(err, ErrSynthesizedRule) {
		t.Fatalf("expected ErrSynthesizedRule, got %v", err)
	}
	if _, err := other.AddRules(base.UserRules()); err != nil {
		t.Fatalf("copying user rules: %v", err)
	}
	if other.Len() != 2 {
		t.Errorf("Len = %d, want 2", other.Len())
	}
}

func TestDuplicateRulesStoredOnce(t *testing.T) {
	base := New()
	first, _ := base.AddRule(rule(t, "a", "b", 0.5, ""))
	second, err := base.AddRule(rule(t, "a", "b", 0.5, ""))
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if first != second {
		t.Error("duplicate add should return the stored rule")
	}
	if base.Len() != 2 {
		t.Errorf("Len = %d, want 2", base.Len())
	}
}

func TestRemoveRuleRemovesHook(t *testing.T) {
	base := New()
	original := rule(t, "a", "b", 0.5, "")
	if _, err := base.AddRule(original); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if _, err := base.AddRule(rule(t, "b", "", 1.0, "")); err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	if !base.Contains(original) {
		t.Fatal("Contains should match the unnamed original")
	}
	if !base.RemoveRule(original) {
		t.Fatal("RemoveRule returned false")
	}
	if got := base.InspectWith(ShowAll); got != "b.\n" {
		t.Errorf("remaining = %q", got)
	}
	if base.RemoveRule(original) {
		t.Error("second RemoveRule should report false")
	}
}

func TestScopeAddsAndRemovesTemporaryRules(t *testing.T) {
	base := New()
	base.AddRule(rule(t, "b", "", 1.0, ""))

	scope, err := base.Scope(rule(t, "a", "b", 0.6, ""), rule(t, "c", "", 0.4, ""))
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	if n := len(scope.Rules()); n != 4 {
		t.Errorf("rules in scope = %d, want 4", n)
	}
	if err := scope.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := scope.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := base.InspectWith(ShowAll); got != "b.\n" {
		t.Errorf("after Close = %q", got)
	}
}

func TestScopeKeepsPreexistingDuplicates(t *testing.T) {
	base := New()
	base.AddRule(rule(t, "b", "", 1.0, ""))

	scope, err := base.Scope(rule(t, "b", "", 1.0, ""))
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	scope.Close()
	if base.Len() != 1 {
		t.Errorf("pre-existing rule removed by scope, Len = %d", base.Len())
	}
}

func TestScopeRollsBackOnFailure(t *testing.T) {
	base := New()
	base.AddRule(rule(t, "b", "", 1.0, ""))

	_, err := base.Scope(rule(t, "a", "b", 0.6, ""), rule(t, "c", "b", 0.6, "r9"))
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("expected ErrReservedName, got %v", err)
	}
	if base.Len() != 1 {
		t.Errorf("Len after failed scope = %d, want 1", base.Len())
	}

	// The query lock must have been released.
	scope, err := base.Scope()
	if err != nil {
		t.Fatalf("Scope after rollback: %v", err)
	}
	scope.Close()
}

func TestScopeAdd(t *testing.T) {
	base := New()
	scope, err := base.Scope()
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	added, err := scope.Add(rule(t, "q", "p", 1.0, ""))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(added) != 1 || added[0].Name == nil {
		t.Fatalf("unexpected added rules %v", added)
	}
	scope.Close()
	if base.Len() != 0 {
		t.Errorf("Len = %d, want 0", base.Len())
	}
}

func TestExporterWritesRules(t *testing.T) {
	base := New()
	r, _ := NewRule(term.MustParse("likes(X, Y)"), term.MustParseList("friend(X, Y)"), 0.7, nil,
		WithCaption("{X} likes {Y}"))
	base.AddRule(r)
	base.AddRule(rule(t, "friend(ann, bob)", "", 1.0, ""))

	var buf bytes.Buffer
	exp := Exporter{Writer: StreamWriter{W: &buf}, Comments: true}
	if err := exp.Export(context.Background(), base); err != nil {
		t.Fatalf("Export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"likes(X, Y) <- friend(X, Y) 0.7. % {X} likes {Y}",
		"friend(ann, bob).",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExporterNilWriter(t *testing.T) {
	exp := Exporter{}
	if err := exp.Export(context.Background(), New()); err == nil {
		t.Fatal("expected error")
	}
}
