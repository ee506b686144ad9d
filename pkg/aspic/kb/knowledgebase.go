package kb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

var (
	// ErrReservedName is returned when a user supplied rule name falls in the
	// namespace reserved for automatically assigned names.
	ErrReservedName = fmt.Errorf("%w: rule name is reserved for automatic naming", internalerr.ErrInvalidInput)
	// ErrSynthesizedRule is returned when a rule hook is added directly.
	ErrSynthesizedRule = fmt.Errorf("%w: rule hooks are generated by the knowledge base", internalerr.ErrInvalidInput)
)

// AutoNamePrefix prefixes automatically assigned rule names: r1, r2, ...
const AutoNamePrefix = "r"

var reservedName = regexp.MustCompile(`^` + AutoNamePrefix + `[0-9]+$`)

// KnowledgeBase is an ordered set of rules.
//
// Mutations are safe for concurrent use. Queries are serialised through
// Scope, so rules added for one query are never visible to another.
type KnowledgeBase struct {
	mu      sync.RWMutex
	rules   []*Rule
	hooks   map[*Rule]*Rule
	counter int

	queryMu sync.Mutex
}

// New returns an empty knowledge base.
func New() *KnowledgeBase {
	return &KnowledgeBase{hooks: make(map[*Rule]*Rule)}
}

// AddRule stores a copy of r. A proper rule without a name receives a fresh
// automatic name, and every proper rule gets a rule hook fact. Adding a rule
// that is already present returns the stored rule.
func (kb *KnowledgeBase) AddRule(r *Rule) (*Rule, error) {
	stored, _, err := kb.addRule(r)
	return stored, err
}

// AddRules adds rules in order, stopping at the first error.
func (kb *KnowledgeBase) AddRules(rules []*Rule) ([]*Rule, error) {
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		stored, err := kb.AddRule(r)
		if err != nil {
			return out, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (kb *KnowledgeBase) addRule(r *Rule) (*Rule, bool, error) {
	if r == nil {
		return nil, false, fmt.Errorf("%w: nil rule", internalerr.ErrInvalidInput)
	}
	if r.AutoGenerated {
		return nil, false, ErrSynthesizedRule
	}
	if r.Name != nil && !r.AutoNamed {
		if c, ok := r.Name.(term.Constant); ok && reservedName.MatchString(c.Name) {
			return nil, false, fmt.Errorf("%w: %s", ErrReservedName, c.Name)
		}
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if existing := kb.findLocked(r); existing != nil {
		return existing, false, nil
	}
	if c, ok := r.Consequent.(term.Constant); ok && kb.autoNameLocked(c) {
		return nil, false, fmt.Errorf("%w: %s names an existing rule", ErrReservedName, c.Name)
	}

	stored := r.clone()
	if stored.AutoNamed {
		stored.Name = nil
		stored.AutoNamed = false
	}
	if !stored.IsFact() && stored.Name == nil {
		stored.Name = kb.nextNameLocked()
		stored.AutoNamed = true
	}
	kb.rules = append(kb.rules, stored)

	if !stored.IsFact() {
		hook := &Rule{
			Consequent:    stored.Name,
			Antecedent:    term.ElementList{},
			Dob:           stored.Dob,
			AutoGenerated: true,
		}
		kb.rules = append(kb.rules, hook)
		kb.hooks[stored] = hook
	}
	return stored, true, nil
}

// RemoveRule removes the stored rule matching r together with its hook.
// It reports whether anything was removed.
func (kb *KnowledgeBase) RemoveRule(r *Rule) bool {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	stored := kb.findLocked(r)
	if stored == nil {
		return false
	}
	kb.removeLocked(stored)
	return true
}

// RemoveRules removes each rule and returns how many were found.
func (kb *KnowledgeBase) RemoveRules(rules []*Rule) int {
	n := 0
	for _, r := range rules {
		if kb.RemoveRule(r) {
			n++
		}
	}
	return n
}

// Contains reports whether a rule matching r is stored.
func (kb *KnowledgeBase) Contains(r *Rule) bool {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.findLocked(r) != nil
}

// Rules returns a snapshot of every stored rule, hooks included, in order.
func (kb *KnowledgeBase) Rules() []*Rule {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	out := make([]*Rule, len(kb.rules))
	copy(out, kb.rules)
	return out
}

// UserRules returns the stored rules without hooks.
func (kb *KnowledgeBase) UserRules() []*Rule {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	out := make([]*Rule, 0, len(kb.rules))
	for _, r := range kb.rules {
		if !r.AutoGenerated {
			out = append(out, r)
		}
	}
	return out
}

// HookFor returns the rule hook generated for a stored proper rule.
func (kb *KnowledgeBase) HookFor(r *Rule) (*Rule, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	h, ok := kb.hooks[r]
	return h, ok
}

// Len returns the number of stored rules, hooks included.
func (kb *KnowledgeBase) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.rules)
}

// Inspect renders the base with automatic names and hooks hidden.
func (kb *KnowledgeBase) Inspect() string {
	return kb.InspectWith(InspectOptions{})
}

// InspectWith renders one rule per line, each terminated by a full stop.
func (kb *KnowledgeBase) InspectWith(opts InspectOptions) string {
	var b strings.Builder
	for _, r := range kb.Rules() {
		line := r.InspectWith(opts)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString(".\n")
	}
	return b.String()
}

// findLocked looks a rule up by identity, then structurally. A rule that was
// named automatically matches its unnamed original.
func (kb *KnowledgeBase) findLocked(r *Rule) *Rule {
	for _, s := range kb.rules {
		if s == r {
			return s
		}
	}
	for _, s := range kb.rules {
		if s.AutoGenerated {
			continue
		}
		if s.Equal(r) {
			return s
		}
		if s.AutoNamed && (r.Name == nil || r.AutoNamed) {
			probe := *r
			probe.Name, probe.AutoNamed = s.Name, true
			if s.Equal(&probe) {
				return s
			}
		}
	}
	return nil
}

func (kb *KnowledgeBase) removeLocked(stored *Rule) {
	hook := kb.hooks[stored]
	delete(kb.hooks, stored)
	out := kb.rules[:0]
	for _, r := range kb.rules {
		if r == stored || (hook != nil && r == hook) {
			continue
		}
		out = append(out, r)
	}
	for i := len(out); i < len(kb.rules); i++ {
		kb.rules[i] = nil
	}
	kb.rules = out
}

// nextNameLocked returns the next automatic name not used by any stored
// rule name or claim.
func (kb *KnowledgeBase) nextNameLocked() term.Element {
	for {
		kb.counter++
		name := term.NewConstant(AutoNamePrefix + strconv.Itoa(kb.counter))
		if !kb.usesLocked(name) {
			return name
		}
	}
}

// autoNameLocked reports whether name was assigned to a stored rule.
func (kb *KnowledgeBase) autoNameLocked(name term.Constant) bool {
	if !reservedName.MatchString(name.Name) {
		return false
	}
	for _, r := range kb.rules {
		if r.AutoNamed && r.Name.Equal(name) {
			return true
		}
	}
	return false
}

func (kb *KnowledgeBase) usesLocked(name term.Constant) bool {
	for _, r := range kb.rules {
		if r.Name != nil && r.Name.Equal(name) {
			return true
		}
		if r.Consequent.Equal(name) {
			return true
		}
	}
	return false
}
