// Package store persists rule bases and explanation cards. Constructed
// arguments are never stored; they are rebuilt by every query.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// ErrBaseNotFound is returned for an unknown knowledge base name.
var ErrBaseNotFound = fmt.Errorf("%w: knowledge base", internalerr.ErrNotFound)

// ErrUnavailable wraps failures to open a backing database.
var ErrUnavailable = internalerr.ErrStoreUnavailable

// Store is the main interface for persisting rule bases
type Store interface {
	Close() error

	// Knowledge bases
	SaveRules(ctx context.Context, base string, rules []RuleRecord) error
	LoadRules(ctx context.Context, base string) ([]RuleRecord, error)
	ListKnowledgeBases(ctx context.Context) ([]BaseInfo, error)
	DeleteKnowledgeBase(ctx context.Context, base string) error

	// Cards
	UpsertCard(ctx context.Context, c Card) error
	GetCardsByBase(ctx context.Context, base string, k int) ([]Card, error)
}

// RuleRecord is the stored form of a user rule
type RuleRecord struct {
	ID          string
	Position    int
	Consequent  string
	Antecedent  []string
	Dob         float64
	Name        string
	Caption     string
	Description string
}

// BaseInfo summarises a stored knowledge base
type BaseInfo struct {
	Name      string
	Rules     int
	UpdatedAt time.Time
}

// Card represents a stored explanation card
type Card struct {
	ID        string
	Base      string
	QueryID   string
	Title     string
	Bullets   []string
	ScoreJSON string
}

// Records converts the user rules of base into records in base order.
// Automatic names are not stored.
func Records(base *kb.KnowledgeBase) []RuleRecord {
	rules := base.UserRules()
	out := make([]RuleRecord, 0, len(rules))
	for i, r := range rules {
		rec := RuleRecord{
			ID:          ulid.Make().String(),
			Position:    i,
			Consequent:  r.Consequent.Inspect(),
			Dob:         r.Dob,
			Caption:     r.Caption,
			Description: r.Description,
		}
		for _, el := range r.Antecedent {
			rec.Antecedent = append(rec.Antecedent, el.Inspect())
		}
		if r.Name != nil && !r.AutoNamed {
			rec.Name = r.Name.Inspect()
		}
		out = append(out, rec)
	}
	return out
}

// Rule parses the record back into a rule.
func (rec RuleRecord) Rule() (*kb.Rule, error) {
	head, err := term.Parse(rec.Consequent)
	if err != nil {
		return nil, err
	}
	body := make(term.ElementList, 0, len(rec.Antecedent))
	for _, src := range rec.Antecedent {
		el, err := term.Parse(src)
		if err != nil {
			return nil, err
		}
		body = append(body, el)
	}
	var name term.Element
	if rec.Name != "" {
		if name, err = term.Parse(rec.Name); err != nil {
			return nil, err
		}
	}
	return kb.NewRule(head, body, rec.Dob, name, kb.WithCaption(rec.Caption), kb.WithDescription(rec.Description))
}

// Build creates a knowledge base from records.
func Build(records []RuleRecord) (*kb.KnowledgeBase, error) {
	base := kb.New()
	for _, rec := range records {
		r, err := rec.Rule()
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rec.ID, err)
		}
		if _, err := base.AddRule(r); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rec.ID, err)
		}
	}
	return base, nil
}

// Save stores the user rules of base under name, replacing any earlier
// version.
func Save(ctx context.Context, st Store, name string, base *kb.KnowledgeBase) error {
	if name == "" {
		return fmt.Errorf("%w: empty knowledge base name", internalerr.ErrInvalidInput)
	}
	return st.SaveRules(ctx, name, Records(base))
}

// Load rebuilds the knowledge base stored under name.
func Load(ctx context.Context, st Store, name string) (*kb.KnowledgeBase, error) {
	records, err := st.LoadRules(ctx, name)
	if err != nil {
		return nil, err
	}
	return Build(records)
}

// IsNotFound reports whether err marks a missing knowledge base.
func IsNotFound(err error) bool {
	return errors.Is(err, internalerr.ErrNotFound)
}
