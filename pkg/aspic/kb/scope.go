package kb

import "fmt"

// Scope is a query-time augmentation of a knowledge base. While a scope is
// open it holds the base's query lock; Close removes every rule the scope
// added and releases the lock.
//
// Opening a second scope on the same base from the goroutine that holds the
// first one deadlocks.
type Scope struct {
	kb     *KnowledgeBase
	added  []*Rule
	closed bool
}

// Scope acquires the query lock and pushes extra rules. If any rule fails to
// be added, the rules already pushed are removed and the lock is released.
func (kb *KnowledgeBase) Scope(extra ...*Rule) (*Scope, error) {
	kb.queryMu.Lock()
	s := &Scope{kb: kb}
	if _, err := s.Add(extra...); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Add pushes further temporary rules. Rules already present in the base are
// left in place when the scope closes.
func (s *Scope) Add(rules ...*Rule) ([]*Rule, error) {
	if s.closed {
		return nil, fmt.Errorf("scope already closed")
	}
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		stored, added, err := s.kb.addRule(r)
		if err != nil {
			return out, fmt.Errorf("push temporary rule: %w", err)
		}
		if added {
			s.added = append(s.added, stored)
		}
		out = append(out, stored)
	}
	return out, nil
}

// Rules returns a snapshot of the augmented base.
func (s *Scope) Rules() []*Rule {
	return s.kb.Rules()
}

// KnowledgeBase returns the augmented base.
func (s *Scope) KnowledgeBase() *KnowledgeBase {
	return s.kb
}

// Close removes the temporary rules in reverse order and releases the query
// lock. It is safe to call more than once.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.kb.mu.Lock()
	for i := len(s.added) - 1; i >= 0; i-- {
		s.kb.removeLocked(s.added[i])
	}
	s.kb.mu.Unlock()
	s.added = nil
	s.kb.queryMu.Unlock()
	return nil
}
