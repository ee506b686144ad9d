// Package cards turns query evaluations into explanation cards.
package cards

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// Builder constructs explanation cards
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a new card builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Card explains the verdict on one argument of a query
type Card struct {
	ID      string
	QueryID string
	Title   string
	// Bullets list the rules applied in the argument, top rule first.
	// Sources add the facts and beliefs it rests on.
	Bullets        []string
	Sources        []RuleRef
	ScoreBreakdown map[string]float64
	Explain        Explain
}

// RuleRef references a rule of the knowledge base
type RuleRef struct {
	Rule    string
	Caption string
	Dob     float64
}

// Explain records how the verdict was reached
type Explain struct {
	Goal      string
	Semantics string
	Label     string
	Accepted  bool
	Bindings  string
	Attacks   []AttackRef
}

// AttackRef describes one attack on the argument
type AttackRef struct {
	Kind     string
	Attacker string
	At       string
	Defeats  bool
	// Status is the grounded label of the attacker.
	Status string
}

// Build creates a card for an argument of the evaluation
func (b *Builder) Build(ev *reasoner.Evaluation, arg *argument.RuleArgument) Card {
	status, _ := ev.Status(arg)
	card := Card{
		ID:             b.newID(),
		QueryID:        ev.QueryID,
		Title:          title(arg, status.Accepted),
		ScoreBreakdown: make(map[string]float64),
		Explain: Explain{
			Goal:      ev.Goal.Inspect(),
			Semantics: string(ev.Semantics),
			Label:     status.Label.String(),
			Accepted:  status.Accepted,
		},
	}
	if vars := ev.Goal.Variables(); len(vars) > 0 {
		card.Explain.Bindings = arg.Substitution.Restrict(vars).Inspect()
	}

	arg.Walk(func(sub *argument.RuleArgument) bool {
		if sub.Builtin || sub.IsHook() || isQueryRule(sub.Rule) {
			return true
		}
		if !sub.Atomic {
			card.Bullets = append(card.Bullets, bullet(sub.Rule))
		}
		card.Sources = append(card.Sources, RuleRef{
			Rule:    sub.Rule.InspectWith(kb.InspectOptions{}),
			Caption: sub.Rule.Caption,
			Dob:     sub.Rule.Dob,
		})
		return true
	})

	attacks := ev.Framework.AttacksOn(arg)
	defeats := 0
	for _, at := range attacks {
		ref := AttackRef{
			Kind:     at.Kind.String(),
			Attacker: at.Attacker.Inspect(),
			At:       at.At.Claim.Inspect(),
			Defeats:  at.Defeats(),
		}
		if s, ok := ev.Status(at.Attacker); ok {
			ref.Status = s.Label.String()
		}
		if ref.Defeats {
			defeats++
		}
		card.Explain.Attacks = append(card.Explain.Attacks, ref)
	}

	card.ScoreBreakdown["support"] = arg.Support
	card.ScoreBreakdown["needed"] = ev.Needed
	card.ScoreBreakdown["attacks"] = float64(len(attacks))
	card.ScoreBreakdown["defeats"] = float64(defeats)
	card.ScoreBreakdown["extensions"] = float64(status.Extensions)
	return card
}

// BuildAll creates one card per query argument of the evaluation
func (b *Builder) BuildAll(ev *reasoner.Evaluation) []Card {
	out := make([]Card, 0, len(ev.Query))
	for _, arg := range ev.Query {
		out = append(out, b.Build(ev, arg))
	}
	return out
}

func (b *Builder) newID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ulid.MustNew(ulid.Now(), b.entropy).String()
}

func title(arg *argument.RuleArgument, accepted bool) string {
	verdict := "rejected"
	if accepted {
		verdict = "accepted"
	}
	return fmt.Sprintf("%s (%s, support %g)", arg.Claim.Inspect(), verdict, arg.Support)
}

func isQueryRule(r *kb.Rule) bool {
	functor, _ := term.Indicator(r.Consequent)
	return functor == reasoner.QueryFunctor
}

func bullet(r *kb.Rule) string {
	if r.Caption != "" {
		return r.Caption
	}
	return r.InspectWith(kb.InspectOptions{})
}
