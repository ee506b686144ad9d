package reasoner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// FindProofs returns every argument for goal with support >= needed,
// regardless of whether it survives its attackers.
func (e *Engine) FindProofs(ctx context.Context, base *kb.KnowledgeBase, goal term.ElementList, needed float64, opts ...QueryOption) ([]*argument.RuleArgument, error) {
	cfg := e.configure(opts)
	if err := checkQuery(goal, needed); err != nil {
		return nil, err
	}
	scope, err := base.Scope(cfg.assumptions...)
	if err != nil {
		return nil, fmt.Errorf("add assumptions: %w", err)
	}
	defer scope.Close()

	literal, err := goalLiteral(scope, goal)
	if err != nil {
		return nil, err
	}
	builder := e.newBuilder(scope.Rules(), cfg.party, e.logger)
	var out []*argument.RuleArgument
	it := builder.ArgumentsFor(literal, needed)
	for it.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, it.Next())
		if len(out) > e.opts.MaxArguments {
			return nil, fmt.Errorf("%w: more than %d proofs", ErrTooManyArguments, e.opts.MaxArguments)
		}
	}
	return out, nil
}

// SatisfiedGoals returns the goals that become provable once option is
// assumed as a fact.
func (e *Engine) SatisfiedGoals(ctx context.Context, base *kb.KnowledgeBase, option term.Element, goals []term.Element, opts ...QueryOption) ([]term.Element, error) {
	assumed, err := kb.NewFact(option)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithAssumptions(assumed))
	var out []term.Element
	for _, g := range goals {
		proofs, err := e.FindProofs(ctx, base, term.List(g), 0, opts...)
		if err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.Inspect(), err)
		}
		if len(proofs) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

// Rebuttal returns an argument that rebuts target on its conclusion and is
// strong enough to defeat it, or nil. Arguments given with WithExclude are
// skipped.
func (e *Engine) Rebuttal(ctx context.Context, base *kb.KnowledgeBase, target *argument.RuleArgument, opts ...QueryOption) (*argument.RuleArgument, error) {
	kind, ok := attackable(target, target, e.opts.RestrictedRebutting)
	if !ok || kind != Rebut {
		return nil, nil
	}
	return e.counterAt(ctx, base, target, opts)
}

// UnderminerOrUndercutter returns an argument that defeats target on one of
// its premises or rule hooks, searching the tree top-down, or nil.
func (e *Engine) UnderminerOrUndercutter(ctx context.Context, base *kb.KnowledgeBase, target *argument.RuleArgument, opts ...QueryOption) (*argument.RuleArgument, error) {
	for _, sub := range target.Subs() {
		kind, ok := attackable(target, sub, e.opts.RestrictedRebutting)
		if !ok || kind == Rebut {
			continue
		}
		found, err := e.counterAt(ctx, base, sub, opts)
		if err != nil || found != nil {
			return found, err
		}
	}
	return nil, nil
}

// CounterArgument tries a rebuttal first, then an underminer or undercutter.
func (e *Engine) CounterArgument(ctx context.Context, base *kb.KnowledgeBase, target *argument.RuleArgument, opts ...QueryOption) (*argument.RuleArgument, error) {
	found, err := e.Rebuttal(ctx, base, target, opts...)
	if err != nil || found != nil {
		return found, err
	}
	return e.UnderminerOrUndercutter(ctx, base, target, opts...)
}

// CounterArguments lists every attack on target by an argument from base
// that defeats it.
func (e *Engine) CounterArguments(ctx context.Context, base *kb.KnowledgeBase, target *argument.RuleArgument, opts ...QueryOption) ([]Attack, error) {
	var out []Attack
	seen := make(map[string]bool)
	for _, sub := range target.Subs() {
		if _, ok := attackable(target, sub, e.opts.RestrictedRebutting); !ok {
			continue
		}
		proofs, err := e.FindProofs(ctx, base, term.List(attackLiteral(sub)), sub.Support, opts...)
		if err != nil {
			return nil, err
		}
		for _, p := range proofs {
			if seen[p.Key()] {
				continue
			}
			seen[p.Key()] = true
			for _, at := range attacksOn(p, target, e.opts.RestrictedRebutting) {
				if at.Defeats() {
					out = append(out, at)
				}
			}
		}
	}
	return out, nil
}

// counterAt returns the first defeater of sub not excluded by the caller.
func (e *Engine) counterAt(ctx context.Context, base *kb.KnowledgeBase, sub *argument.RuleArgument, opts []QueryOption) (*argument.RuleArgument, error) {
	cfg := e.configure(opts)
	proofs, err := e.FindProofs(ctx, base, term.List(attackLiteral(sub)), sub.Support, opts...)
	if err != nil {
		return nil, err
	}
	for _, p := range proofs {
		if excluded(p, cfg.exclude) {
			e.logger.Debug("counter-argument already used", zap.String("argument", p.Inspect()))
			continue
		}
		return p, nil
	}
	return nil, nil
}

func excluded(a *argument.RuleArgument, used []*argument.RuleArgument) bool {
	for _, u := range used {
		if a.SemanticallyEqual(u) {
			return true
		}
	}
	return false
}
