package argument

import (
	"go.uber.org/zap"

	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// DefaultMaxDepth bounds the depth of argument trees.
const DefaultMaxDepth = 64

// Options configure a Builder.
type Options struct {
	// Valuator aggregates sub-argument supports; WeakestLink when nil.
	Valuator Valuator
	Logger   *zap.Logger
	// Party names the searching side in logs.
	Party string
	// RestrictedRebutting is recorded on the builder for the defeat layer.
	RestrictedRebutting bool
	// MaxDepth bounds the argument tree depth; DefaultMaxDepth when zero.
	MaxDepth int
}

// Builder constructs arguments lazily over a fixed snapshot of rules. A
// Builder belongs to a single query and is not safe for concurrent use.
type Builder struct {
	rules    []*kb.Rule
	valuator Valuator
	logger   *zap.Logger
	party    string
	restrict bool
	maxDepth int

	renamer     term.Renamer
	constructed int
}

// NewBuilder returns a builder over rules, searched in order. Rules should
// come from a KnowledgeBase so that proper rules carry a name and a hook; a
// proper rule without a name is built without the hook premise and cannot
// be undercut.
func NewBuilder(rules []*kb.Rule, opts Options) *Builder {
	b := &Builder{
		rules:    rules,
		valuator: opts.Valuator,
		logger:   opts.Logger,
		party:    opts.Party,
		restrict: opts.RestrictedRebutting,
		maxDepth: opts.MaxDepth,
	}
	if b.valuator == nil {
		b.valuator = WeakestLink
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.maxDepth <= 0 {
		b.maxDepth = DefaultMaxDepth
	}
	return b
}

// RestrictedRebutting reports the rebutting mode the builder was created with.
func (b *Builder) RestrictedRebutting() bool { return b.restrict }

// Valuator returns the strength aggregation in use.
func (b *Builder) Valuator() Valuator { return b.valuator }

// Constructed returns how many arguments the builder has emitted so far,
// sub-arguments included.
func (b *Builder) Constructed() int { return b.constructed }

// ArgumentsFor returns every argument for literal with support >= needed,
// in rule order.
func (b *Builder) ArgumentsFor(literal term.Element, needed float64) Iterator[*RuleArgument] {
	return b.argumentsFor(literal, needed, frame{})
}

// ArgumentsAt is ArgumentsFor for a search that starts dTop levels below the
// top of an existing argument, as when looking for counter-arguments.
func (b *Builder) ArgumentsAt(literal term.Element, needed float64, dTop int) Iterator[*RuleArgument] {
	return b.argumentsFor(literal, needed, frame{dTop: dTop})
}

// ListArgumentsFor returns every joint proof of the conjunction goals in
// which each conjunct has support >= needed.
func (b *Builder) ListArgumentsFor(goals term.ElementList, needed float64) Iterator[*RuleArgumentList] {
	return b.conjunction(goals, term.Substitution{}, needed, frame{})
}

// frame carries the recursion state of one branch of the search.
type frame struct {
	level     int
	dTop      int
	ancestors []term.Element
}

func (f frame) child(goal term.Element) frame {
	anc := make([]term.Element, len(f.ancestors), len(f.ancestors)+1)
	copy(anc, f.ancestors)
	return frame{level: f.level + 1, dTop: f.dTop + 1, ancestors: append(anc, goal)}
}

// repeats reports whether a ground goal is already being proved further up
// the branch.
func (f frame) repeats(goal term.Element) bool {
	for _, a := range f.ancestors {
		if a.Equal(goal) {
			return true
		}
	}
	return false
}

func (b *Builder) fields(f frame, extra ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("party", b.party),
		zap.Int("level", f.level),
		zap.Int("d_top", f.dTop),
		zap.Bool("restricted_rebutting", b.restrict),
	}, extra...)
}

func (b *Builder) argumentsFor(literal term.Element, needed float64, f frame) Iterator[*RuleArgument] {
	if goal, ok := literal.(term.Term); ok && IsBuiltin(goal) {
		s, ok := evalBuiltin(goal)
		if !ok || needed > kb.StrictDob {
			if ce := b.logger.Check(zap.DebugLevel, "builtin fails"); ce != nil {
				ce.Write(b.fields(f, zap.String("goal", goal.Inspect()))...)
			}
			return Empty[*RuleArgument]()
		}
		b.constructed++
		return Single(builtinArgument(goal, s, f, b.party))
	}
	if f.level > b.maxDepth {
		b.logger.Debug("depth limit reached", b.fields(f, zap.Int("max_depth", b.maxDepth))...)
		return Empty[*RuleArgument]()
	}
	if literal.IsGround() && f.repeats(literal) {
		if ce := b.logger.Check(zap.DebugLevel, "circular goal pruned"); ce != nil {
			ce.Write(b.fields(f, zap.String("goal", literal.Inspect()))...)
		}
		return Empty[*RuleArgument]()
	}

	functor, arity := term.Indicator(literal)
	next := 0
	var current Iterator[*RuleArgument]
	return NewLookahead(func() (*RuleArgument, bool) {
		for {
			if current != nil && current.HasNext() {
				return current.Next(), true
			}
			if next >= len(b.rules) {
				return nil, false
			}
			r := b.rules[next]
			next++
			if arity >= 0 {
				if fn, ar := term.Indicator(r.Consequent); fn != functor || ar != arity {
					continue
				}
			}
			current = b.ruleArguments(r, literal, needed, f)
		}
	})
}

// ruleArguments develops every argument for literal whose top rule is r.
func (b *Builder) ruleArguments(r *kb.Rule, literal term.Element, needed float64, f frame) Iterator[*RuleArgument] {
	renamed := r.Rename(&b.renamer)
	unifier, ok := term.Unify(literal, renamed.Consequent, term.Substitution{})
	if !ok {
		if ce := b.logger.Check(zap.DebugLevel, "unification fails"); ce != nil {
			ce.Write(b.fields(f,
				zap.String("literal", literal.Inspect()),
				zap.String("consequent", r.Consequent.Inspect()))...)
		}
		return nil
	}
	inst := renamed.Apply(unifier)
	if unifier.Len() > 0 {
		if ce := b.logger.Check(zap.DebugLevel, "instantiated"); ce != nil {
			ce.Write(b.fields(f, zap.String("rule", inst.Inspect()))...)
		}
	}

	// The name of a proper rule is its last, hidden premise.
	coisa := inst.Antecedent.Copy()
	if !inst.IsFact() && inst.Name != nil {
		coisa = append(coisa, inst.Name)
	}
	if len(coisa) > 0 {
		if ce := b.logger.Check(zap.DebugLevel, "searching"); ce != nil {
			ce.Write(b.fields(f, zap.String("goals", coisa.Inspect()))...)
		}
	}
	lists := b.conjunction(coisa, term.Substitution{}, b.valuator.SubThreshold(needed), f.child(literal.Apply(unifier)))

	return NewLookahead(func() (*RuleArgument, bool) {
		for lists.HasNext() {
			subs := lists.Next()
			deeper := unifier.Compose(subs.Substitution)
			support := r.Dob
			if subs.Len() > 0 {
				support = subs.Valuate(b.valuator, inst)
			}
			if support < needed {
				continue
			}
			top := inst.Apply(deeper)
			b.constructed++
			return &RuleArgument{
				Claim:        top.Consequent,
				Support:      support,
				Substitution: deeper,
				Rule:         top,
				SubArguments: subs,
				Atomic:       top.IsFact(),
				Party:        b.party,
				Level:        f.level,
				DTop:         f.dTop,
			}, true
		}
		return nil, false
	})
}

// conjunction enumerates joint proofs of goals under s, left to right. The
// bindings of each proved conjunct are visible to the ones after it.
func (b *Builder) conjunction(goals term.ElementList, s term.Substitution, needed float64, f frame) Iterator[*RuleArgumentList] {
	if len(goals) == 0 {
		return Single(&RuleArgumentList{Arguments: nil, Substitution: s})
	}
	first := goals[0].Apply(s)
	heads := b.argumentsFor(first, needed, f)
	rest := goals[1:]

	var head *RuleArgument
	var tails Iterator[*RuleArgumentList]
	return NewLookahead(func() (*RuleArgumentList, bool) {
		for {
			if tails != nil && tails.HasNext() {
				tail := tails.Next()
				args := make([]*RuleArgument, 0, len(tail.Arguments)+1)
				args = append(args, head)
				args = append(args, tail.Arguments...)
				return &RuleArgumentList{Arguments: args, Substitution: tail.Substitution}, true
			}
			if !heads.HasNext() {
				return nil, false
			}
			head = heads.Next()
			bound := head.Substitution.Restrict(first.Variables())
			tails = b.conjunction(rest, s.Compose(bound), needed, f)
		}
	})
}
