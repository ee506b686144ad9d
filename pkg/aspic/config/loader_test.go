package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Empty loader should succeed: %v", err)
	}
	if comp.Reasoner == nil {
		t.Fatal("Should have a reasoner with default options")
	}
	if comp.Reasoner.Options().Semantics != reasoner.Grounded {
		t.Errorf("Semantics = %q, want grounded", comp.Reasoner.Options().Semantics)
	}
	if len(comp.Bases) != 0 || len(comp.Names) != 0 {
		t.Errorf("Should have no bases, got %v", comp.Names)
	}
}

func TestLoaderNonExistentEngine(t *testing.T) {
	loader := Loader{EnginePath: "/nonexistent/engine.yaml"}
	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent engine config")
	}
}

func TestLoaderNonExistentKnowledgeBase(t *testing.T) {
	loader := Loader{KnowledgeBasePaths: []string{"/nonexistent/rules.pl"}}
	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent knowledge base")
	}
}

func TestLoaderValidFiles(t *testing.T) {
	tmpDir := t.TempDir()

	enginePath := filepath.Join(tmpDir, "engine.yaml")
	writeFile(t, enginePath, "semantics: preferred-credulous\nparty: opponent\n")

	textPath := filepath.Join(tmpDir, "cycle.pl")
	writeFile(t, textPath, "% symmetric conflict\na 0.8\n~a 0.8\n")

	yamlPath := filepath.Join(tmpDir, "birds.yml")
	writeFile(t, yamlPath, "rules:\n  - consequent: bird(tweety)\n")

	loader := Loader{EnginePath: enginePath, KnowledgeBasePaths: []string{textPath, yamlPath}}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if comp.Engine.Party != "opponent" {
		t.Errorf("Party = %q, want opponent", comp.Engine.Party)
	}
	if len(comp.Names) != 2 || comp.Names[0] != "cycle" || comp.Names[1] != "birds" {
		t.Errorf("Names = %v, want [cycle birds]", comp.Names)
	}

	args, err := comp.Reasoner.Query(context.Background(), comp.Bases["cycle"], term.MustParseList("a"), 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(args) != 1 {
		t.Errorf("credulous semantics should accept a, got %d arguments", len(args))
	}
}

func TestLoaderDuplicateBaseName(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "a", "rules.pl")
	second := filepath.Join(tmpDir, "b", "rules.pl")
	writeFile(t, first, "a\n")
	writeFile(t, second, "b\n")

	loader := Loader{KnowledgeBasePaths: []string{first, second}}
	_, err := loader.Load()
	if !errors.Is(err, internalerr.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
