package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
)

func TestParseEngineDefaults(t *testing.T) {
	cfg, err := ParseEngine([]byte("party: proponent\n"))
	if err != nil {
		t.Fatalf("ParseEngine failed: %v", err)
	}
	if cfg.Semantics != string(reasoner.Grounded) {
		t.Errorf("Semantics = %q, want grounded", cfg.Semantics)
	}
	if cfg.Valuation != argument.WeakestLinkName {
		t.Errorf("Valuation = %q, want %q", cfg.Valuation, argument.WeakestLinkName)
	}
	if cfg.RestrictedRebutting == nil || !*cfg.RestrictedRebutting {
		t.Error("restricted rebutting should default to true")
	}
	if cfg.Party != "proponent" {
		t.Errorf("Party = %q, want proponent", cfg.Party)
	}
}

func TestParseEngineOverrides(t *testing.T) {
	data := []byte(`
semantics: preferred-skeptical
valuation: last-link
restricted_rebutting: false
max_depth: 10
max_arguments: 50
`)
	cfg, err := ParseEngine(data)
	if err != nil {
		t.Fatalf("ParseEngine failed: %v", err)
	}
	opts, err := cfg.Options(nil)
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.Semantics != reasoner.PreferredSkeptical {
		t.Errorf("Semantics = %q", opts.Semantics)
	}
	if opts.RestrictedRebutting {
		t.Error("restricted rebutting should be off")
	}
	if opts.MaxDepth != 10 || opts.MaxArguments != 50 {
		t.Errorf("bounds = %d/%d, want 10/50", opts.MaxDepth, opts.MaxArguments)
	}
	if opts.Valuator == nil {
		t.Error("valuator should be resolved")
	}
	// Defaults must not be shared between calls.
	if !*DefaultEngine().RestrictedRebutting {
		t.Error("decoding leaked into the defaults")
	}
}

func TestParseEngineRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"semantics", "semantics: stable\n"},
		{"valuation", "valuation: average\n"},
		{"depth", "max_depth: -1\n"},
		{"arguments", "max_arguments: -5\n"},
		{"syntax", "semantics: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEngine([]byte(tt.data))
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadEngineMissingFile(t *testing.T) {
	if _, err := LoadEngine("/nonexistent/engine.yaml"); err == nil {
		t.Error("Should error on nonexistent engine config")
	}
}

func TestKnowledgeBaseFileEntries(t *testing.T) {
	data := []byte(`
name: birds
text: |
  bird(tweety)
rules:
  - name: flies(X)
    consequent: flies(X)
    antecedent: ["bird(X)"]
    dob: 0.8
    caption: "{X} flies"
  - consequent: penguin(opus)
`)
	f, err := ParseKnowledgeBaseFile(data)
	if err != nil {
		t.Fatalf("ParseKnowledgeBaseFile failed: %v", err)
	}
	rules, err := f.KnowledgeBaseRules()
	if err != nil {
		t.Fatalf("KnowledgeBaseRules failed: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}
	if got := rules[0].Inspect(); got != "bird(tweety)" {
		t.Errorf("text rule = %q", got)
	}
	if rules[1].Dob != 0.8 || rules[1].Name == nil {
		t.Errorf("entry rule = %s", rules[1].Inspect())
	}
	if !rules[2].IsStrict() {
		t.Error("an entry without dob should be strict")
	}

	base, err := f.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// Three rules plus the hook of the named rule.
	if base.Len() != 4 {
		t.Errorf("base.Len() = %d, want 4", base.Len())
	}
}

func TestKnowledgeBaseFileInvalidRule(t *testing.T) {
	f := &KnowledgeBaseFile{Rules: []RuleEntry{{Consequent: "a", Dob: ptr(1.5)}}}
	if _, err := f.Build(); err == nil {
		t.Error("Should reject a dob above 1")
	}

	f = &KnowledgeBaseFile{Rules: []RuleEntry{{Consequent: "a(", Antecedent: []string{"b"}}}}
	if _, err := f.Build(); err == nil {
		t.Error("Should reject an unparsable consequent")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	f := &KnowledgeBaseFile{Text: "[n1] a <- b 0.7\nb\nc <- a, b 0.6 % c holds\n"}
	base, err := f.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := Marshal("demo", base)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadKnowledgeBaseFile(path)
	if err != nil {
		t.Fatalf("LoadKnowledgeBaseFile failed: %v", err)
	}
	if loaded.Name != "demo" {
		t.Errorf("Name = %q, want demo", loaded.Name)
	}
	again, err := loaded.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got, want := again.Inspect(), base.Inspect(); got != want {
		t.Errorf("reloaded base differs:\n got %q\nwant %q", got, want)
	}
	if again.Len() != base.Len() {
		t.Errorf("Len = %d, want %d", again.Len(), base.Len())
	}
}

func ptr(f float64) *float64 { return &f }
