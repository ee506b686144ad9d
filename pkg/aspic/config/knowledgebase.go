package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// KnowledgeBaseFile represents a rule base stored as YAML. Rules may be
// given as structured entries, as rule lines in Text, or both; Text lines
// come first.
type KnowledgeBaseFile struct {
	Name  string      `yaml:"name"`
	Text  string      `yaml:"text,omitempty"`
	Rules []RuleEntry `yaml:"rules,omitempty"`
}

// RuleEntry is one structured rule. A missing dob means strict.
type RuleEntry struct {
	Name        string   `yaml:"name,omitempty"`
	Consequent  string   `yaml:"consequent"`
	Antecedent  []string `yaml:"antecedent,omitempty"`
	Dob         *float64 `yaml:"dob,omitempty"`
	Caption     string   `yaml:"caption,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// LoadKnowledgeBaseFile reads a rule base file. Files ending in .yaml or
// .yml are decoded as KnowledgeBaseFile; anything else is read as rule
// lines. The base name defaults to the file name without extension.
func LoadKnowledgeBaseFile(path string) (*KnowledgeBaseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := ParseKnowledgeBaseFile(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if f.Name == "" {
			f.Name = name
		}
		return f, nil
	default:
		return &KnowledgeBaseFile{Name: name, Text: string(data)}, nil
	}
}

// ParseKnowledgeBaseFile decodes a YAML rule base.
func ParseKnowledgeBaseFile(data []byte) (*KnowledgeBaseFile, error) {
	var f KnowledgeBaseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidInput, err)
	}
	return &f, nil
}

// Rule builds the rule described by the entry.
func (e RuleEntry) Rule() (*kb.Rule, error) {
	head, err := term.Parse(e.Consequent)
	if err != nil {
		return nil, fmt.Errorf("consequent: %w", err)
	}
	body := make(term.ElementList, 0, len(e.Antecedent))
	for _, src := range e.Antecedent {
		el, err := term.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("antecedent %q: %w", src, err)
		}
		body = append(body, el)
	}
	var name term.Element
	if e.Name != "" {
		if name, err = term.Parse(e.Name); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
	}
	dob := kb.StrictDob
	if e.Dob != nil {
		dob = *e.Dob
	}
	return kb.NewRule(head, body, dob, name, kb.WithCaption(e.Caption), kb.WithDescription(e.Description))
}

// KnowledgeBaseRules returns the rules of the file in order.
func (f *KnowledgeBaseFile) KnowledgeBaseRules() ([]*kb.Rule, error) {
	var out []*kb.Rule
	if strings.TrimSpace(f.Text) != "" {
		rules, err := kb.ParseRules(f.Text)
		if err != nil {
			return nil, err
		}
		out = append(out, rules...)
	}
	for i, e := range f.Rules {
		r, err := e.Rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Build creates a knowledge base holding the file's rules.
func (f *KnowledgeBaseFile) Build() (*kb.KnowledgeBase, error) {
	rules, err := f.KnowledgeBaseRules()
	if err != nil {
		return nil, err
	}
	base := kb.New()
	if _, err := base.AddRules(rules); err != nil {
		return nil, err
	}
	return base, nil
}

// EntryFor describes a user rule as a YAML entry. Automatic names are
// dropped so that a reloaded base names the rule afresh.
func EntryFor(r *kb.Rule) RuleEntry {
	e := RuleEntry{
		Consequent:  r.Consequent.Inspect(),
		Caption:     r.Caption,
		Description: r.Description,
	}
	for _, el := range r.Antecedent {
		e.Antecedent = append(e.Antecedent, el.Inspect())
	}
	if r.Name != nil && !r.AutoNamed {
		e.Name = r.Name.Inspect()
	}
	if r.Dob != kb.StrictDob {
		dob := r.Dob
		e.Dob = &dob
	}
	return e
}

// Marshal encodes the user rules of base as a YAML rule base.
func Marshal(name string, base *kb.KnowledgeBase) ([]byte, error) {
	f := KnowledgeBaseFile{Name: name}
	for _, r := range base.UserRules() {
		f.Rules = append(f.Rules, EntryFor(r))
	}
	return yaml.Marshal(&f)
}
