// Package reasoner turns constructed arguments into justified conclusions.
//
// For a query it builds the arguments for the goal, searches transitively for
// every argument strong enough to defeat one of their sub-arguments, links
// the resulting attack graph and selects the accepted arguments under
// grounded or preferred semantics.
package reasoner

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// QueryFunctor heads the strict rule that answers a conjunctive goal.
const QueryFunctor = "$query"

// DefaultMaxArguments bounds the size of a framework.
const DefaultMaxArguments = 10000

// Options configure an Engine.
type Options struct {
	Semantics Semantics
	// Valuator aggregates sub-argument supports; WeakestLink when nil.
	Valuator argument.Valuator
	// RestrictedRebutting only allows rebuttals on defeasible rules.
	RestrictedRebutting bool
	MaxDepth            int
	MaxArguments        int
	Party               string
	Logger              *zap.Logger
}

// DefaultOptions returns grounded semantics, weakest link and restricted
// rebutting.
func DefaultOptions() Options {
	return Options{
		Semantics:           Grounded,
		Valuator:            argument.WeakestLink,
		RestrictedRebutting: true,
		MaxDepth:            argument.DefaultMaxDepth,
		MaxArguments:        DefaultMaxArguments,
		Party:               "engine",
	}
}

// Engine answers queries over knowledge bases. It holds no per-query state
// and may be shared; queries against one knowledge base are serialised by
// the base's scope.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// New creates an engine. Zero fields of opts take their defaults.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Semantics == "" {
		opts.Semantics = def.Semantics
	}
	if opts.Valuator == nil {
		opts.Valuator = def.Valuator
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = def.MaxDepth
	}
	if opts.MaxArguments <= 0 {
		opts.MaxArguments = def.MaxArguments
	}
	if opts.Party == "" {
		opts.Party = def.Party
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{opts: opts, logger: logger}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// QueryOption adjusts a single query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	semantics   Semantics
	party       string
	assumptions []*kb.Rule
	exclude     []*argument.RuleArgument
}

// WithAssumptions adds rules to the knowledge base for the duration of one
// query only.
func WithAssumptions(rules ...*kb.Rule) QueryOption {
	return func(c *queryConfig) { c.assumptions = append(c.assumptions, rules...) }
}

// WithSemantics overrides the engine's semantics for one query.
func WithSemantics(s Semantics) QueryOption {
	return func(c *queryConfig) { c.semantics = s }
}

// WithParty names the searching party in logs.
func WithParty(party string) QueryOption {
	return func(c *queryConfig) { c.party = party }
}

// WithExclude skips counter-arguments semantically equal to the given ones.
func WithExclude(args ...*argument.RuleArgument) QueryOption {
	return func(c *queryConfig) { c.exclude = append(c.exclude, args...) }
}

func (e *Engine) configure(opts []QueryOption) queryConfig {
	cfg := queryConfig{semantics: e.opts.Semantics, party: e.opts.Party}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Query returns the arguments for goal that are accepted under the
// configured semantics and have support >= needed, in construction order.
func (e *Engine) Query(ctx context.Context, base *kb.KnowledgeBase, goal term.ElementList, needed float64, opts ...QueryOption) ([]*argument.RuleArgument, error) {
	ev, err := e.Evaluate(ctx, base, goal, needed, opts...)
	if err != nil {
		return nil, err
	}
	return ev.Accepted(), nil
}

// Evaluate runs a query and returns the complete evaluation: the framework,
// its defeats, the extensions and the status of every argument.
func (e *Engine) Evaluate(ctx context.Context, base *kb.KnowledgeBase, goal term.ElementList, needed float64, opts ...QueryOption) (*Evaluation, error) {
	cfg := e.configure(opts)
	if err := checkQuery(goal, needed); err != nil {
		return nil, err
	}

	queryID := ulid.Make().String()
	logger := e.logger.With(zap.String("query_id", queryID), zap.String("party", cfg.party))
	logger.Debug("query started",
		zap.String("goal", goal.Inspect()),
		zap.Float64("needed", needed),
		zap.String("semantics", string(cfg.semantics)),
		zap.Int("assumptions", len(cfg.assumptions)))

	scope, err := base.Scope(cfg.assumptions...)
	if err != nil {
		return nil, fmt.Errorf("add assumptions: %w", err)
	}
	defer scope.Close()

	literal, err := goalLiteral(scope, goal)
	if err != nil {
		return nil, err
	}

	builder := e.newBuilder(scope.Rules(), cfg.party, logger)
	var query []*argument.RuleArgument
	it := builder.ArgumentsFor(literal, needed)
	for it.HasNext() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		query = append(query, it.Next())
		if len(query) > e.opts.MaxArguments {
			return nil, fmt.Errorf("%w: more than %d arguments for %s", ErrTooManyArguments, e.opts.MaxArguments, goal.Inspect())
		}
	}

	fb := &frameworkBuilder{
		builder:    builder,
		restricted: e.opts.RestrictedRebutting,
		limit:      e.opts.MaxArguments,
		logger:     logger,
	}
	fw, err := fb.build(ctx, query)
	if err != nil {
		return nil, err
	}

	ev, err := evaluate(fw, query, cfg.semantics, needed)
	if err != nil {
		return nil, err
	}
	ev.QueryID = queryID
	ev.Goal = goal

	logger.Debug("query finished",
		zap.Int("arguments", len(query)),
		zap.Int("framework", fw.Len()),
		zap.Int("accepted", len(ev.Accepted())),
		zap.Int("constructed", builder.Constructed()))
	return ev, nil
}

func (e *Engine) newBuilder(rules []*kb.Rule, party string, logger *zap.Logger) *argument.Builder {
	return argument.NewBuilder(rules, argument.Options{
		Valuator:            e.opts.Valuator,
		Logger:              logger,
		Party:               party,
		RestrictedRebutting: e.opts.RestrictedRebutting,
		MaxDepth:            e.opts.MaxDepth,
	})
}

func checkQuery(goal term.ElementList, needed float64) error {
	if len(goal) == 0 {
		return fmt.Errorf("%w: empty goal", internalerr.ErrInvalidInput)
	}
	if needed < 0 || needed > kb.StrictDob || needed != needed {
		return fmt.Errorf("%w: needed support %v outside [0, 1]", internalerr.ErrInvalidInput, needed)
	}
	return nil
}

// goalLiteral returns the literal to prove. A conjunctive goal is answered
// through a temporary strict rule whose head collects the goal's variables.
func goalLiteral(scope *kb.Scope, goal term.ElementList) (term.Element, error) {
	if len(goal) == 1 {
		return goal[0], nil
	}
	vars := goal.Variables()
	args := make([]term.Element, len(vars))
	for i, v := range vars {
		args[i] = v
	}
	head := term.NewTerm(QueryFunctor, args...)
	rule, err := kb.NewRule(head, goal, kb.StrictDob, nil)
	if err != nil {
		return nil, fmt.Errorf("query rule: %w", err)
	}
	if _, err := scope.Add(rule); err != nil {
		return nil, err
	}
	return head, nil
}
