// Package kb holds rules and the knowledge bases that collect them.
//
// A Rule carries a consequent, an antecedent, a degree of belief (dob) in
// (0, 1] and an optional name. Facts and beliefs are rules with an empty
// antecedent. The name of a proper rule acts as a hidden premise: adding a
// proper rule to a KnowledgeBase also adds a "rule hook" fact whose claim is
// the rule's name, so that an argument against the name undercuts every
// application of the rule.
package kb

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

var (
	// ErrInvalidDob is returned for a degree of belief outside (0, 1].
	ErrInvalidDob = fmt.Errorf("%w: degree of belief outside (0, 1]", internalerr.ErrInvalidInput)
	// ErrForeignNameVariables is returned when a rule name mentions
	// variables that occur neither in the consequent nor in the antecedent.
	ErrForeignNameVariables = fmt.Errorf("%w: rule name contains variables that are not in the rule", internalerr.ErrInvalidInput)
	// ErrInvalidConsequent is returned for a missing or variable consequent.
	ErrInvalidConsequent = fmt.Errorf("%w: consequent must be a constant or term", internalerr.ErrInvalidInput)
)

// StrictDob is the degree of belief of strict rules and axioms.
const StrictDob = 1.0

// Rule is an inference rule. Rules are immutable once added to a knowledge
// base; Apply and Rename return new rules.
type Rule struct {
	Consequent term.Element
	Antecedent term.ElementList
	Dob        float64
	// Name is nil until the rule is named by its author or a knowledge base.
	Name term.Element

	// AutoGenerated marks rule hooks and other synthesized rules.
	AutoGenerated bool
	// AutoNamed marks rules whose name was assigned by a knowledge base.
	AutoNamed bool

	Caption     string
	Description string
}

// RuleOption customises a rule at construction.
type RuleOption func(*Rule)

// WithCaption sets a human readable caption. {Var} placeholders are filled
// in when the rule is instantiated.
func WithCaption(caption string) RuleOption {
	return func(r *Rule) { r.Caption = caption }
}

// WithDescription sets a human readable description with {Var} placeholders.
func WithDescription(desc string) RuleOption {
	return func(r *Rule) { r.Description = desc }
}

// NewRule validates and builds a rule. name may be nil.
func NewRule(consequent term.Element, antecedent term.ElementList, dob float64, name term.Element, opts ...RuleOption) (*Rule, error) {
	if err := checkDob(dob); err != nil {
		return nil, err
	}
	switch consequent.(type) {
	case term.Constant, term.Term:
	default:
		return nil, ErrInvalidConsequent
	}
	if antecedent == nil {
		antecedent = term.ElementList{}
	}
	r := &Rule{
		Consequent: consequent,
		Antecedent: antecedent,
		Dob:        dob,
		Name:       name,
	}
	if err := r.checkName(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewFact builds a strict fact.
func NewFact(claim term.Element) (*Rule, error) {
	return NewRule(claim, nil, StrictDob, nil)
}

// NewBelief builds a defeasible fact with the given degree of belief.
func NewBelief(claim term.Element, dob float64) (*Rule, error) {
	return NewRule(claim, nil, dob, nil)
}

// MustRule is NewRule that panics on invalid input. Intended for tests and
// static rule tables.
func MustRule(consequent term.Element, antecedent term.ElementList, dob float64, name term.Element, opts ...RuleOption) *Rule {
	r, err := NewRule(consequent, antecedent, dob, name, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// IsFact reports whether the rule has an empty antecedent.
func (r *Rule) IsFact() bool {
	return len(r.Antecedent) == 0
}

// IsStrict reports whether the rule's degree of belief is 1.0.
func (r *Rule) IsStrict() bool {
	return r.Dob == StrictDob
}

// IsHook reports whether the rule is a synthesized rule hook.
func (r *Rule) IsHook() bool {
	return r.AutoGenerated && r.IsFact()
}

// IsGround reports whether consequent, antecedent and name are variable free.
func (r *Rule) IsGround() bool {
	if !r.Consequent.IsGround() || !r.Antecedent.IsGround() {
		return false
	}
	return r.Name == nil || r.Name.IsGround()
}

// Variables returns the distinct variables of the rule, name included.
func (r *Rule) Variables() []term.Variable {
	elems := term.ElementList{r.Consequent}
	elems = append(elems, r.Antecedent...)
	if r.Name != nil {
		elems = append(elems, r.Name)
	}
	return elems.Variables()
}

// Apply returns a more grounded copy of the rule. Ground rules are returned
// unchanged. Caption and description placeholders whose variables become
// ground are filled in.
func (r *Rule) Apply(s term.Substitution) *Rule {
	if r.IsGround() || s.Len() == 0 {
		return r
	}
	out := r.clone()
	out.Consequent = r.Consequent.Apply(s)
	out.Antecedent = s.ApplyList(r.Antecedent)
	if r.Name != nil {
		out.Name = r.Name.Apply(s)
	}
	vars := r.Variables()
	out.Caption = instantiate(r.Caption, vars, s)
	out.Description = instantiate(r.Description, vars, s)
	return out
}

// Rename returns a copy of the rule with its variables standardised apart.
// Caption placeholders still refer to the variables by name.
func (r *Rule) Rename(renamer *term.Renamer) *Rule {
	vars := r.Variables()
	if len(vars) == 0 {
		return r
	}
	s := renamer.Rename(vars)
	out := r.clone()
	out.Consequent = r.Consequent.Apply(s)
	out.Antecedent = s.ApplyList(r.Antecedent)
	if r.Name != nil {
		out.Name = r.Name.Apply(s)
	}
	return out
}

// Equal compares rules structurally, bookkeeping flags and captions included.
func (r *Rule) Equal(o *Rule) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil {
		return false
	}
	if r.Dob != o.Dob || r.AutoGenerated != o.AutoGenerated || r.AutoNamed != o.AutoNamed {
		return false
	}
	if r.Caption != o.Caption || r.Description != o.Description {
		return false
	}
	if (r.Name == nil) != (o.Name == nil) || (r.Name != nil && !r.Name.Equal(o.Name)) {
		return false
	}
	return r.Consequent.Equal(o.Consequent) && r.Antecedent.Equal(o.Antecedent)
}

// InspectOptions control which synthesized artifacts Inspect renders.
type InspectOptions struct {
	ShowAutoNames bool
	ShowHooks     bool
}

// ShowAll renders auto names and rule hooks.
var ShowAll = InspectOptions{ShowAutoNames: true, ShowHooks: true}

// Inspect renders the rule with every synthesized artifact visible.
func (r *Rule) Inspect() string {
	return r.InspectWith(ShowAll)
}

// InspectWith renders the rule as `[name] head <- a, b 0.8`. Hidden hooks
// render as the empty string.
func (r *Rule) InspectWith(opts InspectOptions) string {
	if r.AutoGenerated && !opts.ShowHooks {
		return ""
	}
	var b strings.Builder
	if r.Name != nil && (!r.AutoNamed || opts.ShowAutoNames) {
		b.WriteString("[")
		b.WriteString(r.Name.Inspect())
		b.WriteString("] ")
	}
	b.WriteString(r.Consequent.Inspect())
	if !r.IsFact() {
		b.WriteString(" <- ")
		b.WriteString(r.Antecedent.Inspect())
	}
	if !r.IsStrict() {
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(r.Dob, 'f', -1, 64))
	}
	return b.String()
}

func (r *Rule) String() string {
	return r.Inspect()
}

func (r *Rule) clone() *Rule {
	c := *r
	return &c
}

func (r *Rule) checkName() error {
	if r.Name == nil {
		return nil
	}
	nameVars := r.Name.Variables()
	if len(nameVars) == 0 {
		return nil
	}
	known := map[term.Variable]struct{}{}
	for _, v := range r.Consequent.Variables() {
		known[v] = struct{}{}
	}
	for _, v := range r.Antecedent.Variables() {
		known[v] = struct{}{}
	}
	for _, v := range nameVars {
		if _, ok := known[v]; !ok {
			return fmt.Errorf("%w: %s", ErrForeignNameVariables, v.Inspect())
		}
	}
	return nil
}

func checkDob(dob float64) error {
	if dob > StrictDob || dob <= 0.0 || dob != dob {
		return fmt.Errorf("%w: %v", ErrInvalidDob, dob)
	}
	return nil
}

var placeholder = regexp.MustCompile(`\{([A-Z_][A-Za-z0-9_]*)\}`)

// instantiate fills {Var} placeholders whose variable is ground under s.
func instantiate(template string, vars []term.Variable, s term.Substitution) string {
	if template == "" || !strings.Contains(template, "{") {
		return template
	}
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		for _, v := range vars {
			if v.Name != name {
				continue
			}
			if bound := v.Apply(s); bound.IsGround() {
				return bound.Inspect()
			}
		}
		return m
	})
}

// IsInvalidRule reports whether err came from rule validation.
func IsInvalidRule(err error) bool {
	return errors.Is(err, ErrInvalidDob) || errors.Is(err, ErrForeignNameVariables) || errors.Is(err, ErrInvalidConsequent)
}
