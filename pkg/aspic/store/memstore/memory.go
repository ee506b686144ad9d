package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/aspic/pkg/aspic/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	bases map[string]base
	cards map[string]store.Card
	now   func() time.Time
}

type base struct {
	rules     []store.RuleRecord
	updatedAt time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		bases: make(map[string]base),
		cards: make(map[string]store.Card),
		now:   time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRules replaces the rules stored under name.
func (s *Store) SaveRules(ctx context.Context, name string, rules []store.RuleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bases[name] = base{rules: copyRecords(rules), updatedAt: s.now().UTC()}
	return nil
}

// LoadRules returns the rules stored under name in position order.
func (s *Store) LoadRules(ctx context.Context, name string) ([]store.RuleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrBaseNotFound, name)
	}
	out := copyRecords(b.rules)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// ListKnowledgeBases returns the stored bases sorted by name.
func (s *Store) ListKnowledgeBases(ctx context.Context) ([]store.BaseInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.BaseInfo, 0, len(s.bases))
	for name, b := range s.bases {
		out = append(out, store.BaseInfo{Name: name, Rules: len(b.rules), UpdatedAt: b.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteKnowledgeBase removes a base and its cards.
func (s *Store) DeleteKnowledgeBase(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bases[name]; !ok {
		return fmt.Errorf("%w: %s", store.ErrBaseNotFound, name)
	}
	delete(s.bases, name)
	for id, c := range s.cards {
		if c.Base == name {
			delete(s.cards, id)
		}
	}
	return nil
}

// UpsertCard inserts or replaces a card, keyed by ID. The card's base must
// exist.
func (s *Store) UpsertCard(ctx context.Context, c store.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bases[c.Base]; !ok {
		return fmt.Errorf("%w: %s", store.ErrBaseNotFound, c.Base)
	}
	c.Bullets = append([]string(nil), c.Bullets...)
	s.cards[c.ID] = c
	return nil
}

// GetCardsByBase returns up to k cards of a base, newest first.
func (s *Store) GetCardsByBase(ctx context.Context, name string, k int) ([]store.Card, error) {
	if k <= 0 {
		k = 10
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Card
	for _, c := range s.cards {
		if c.Base == name {
			c.Bullets = append([]string(nil), c.Bullets...)
			out = append(out, c)
		}
	}
	// ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func copyRecords(in []store.RuleRecord) []store.RuleRecord {
	out := make([]store.RuleRecord, len(in))
	for i, r := range in {
		r.Antecedent = append([]string(nil), r.Antecedent...)
		out[i] = r
	}
	return out
}
