// Package aspic wires persistence, configuration and the argumentation
// engine into a single entry point for applications.
package aspic

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/aspic/pkg/aspic/cards"
	"github.com/cognicore/aspic/pkg/aspic/config"
	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
	"github.com/cognicore/aspic/pkg/aspic/store"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// Aspic is the main argumentation engine facade
type Aspic struct {
	store  store.Store
	engine *reasoner.Engine
	cards  *cards.Builder
	logger *zap.Logger
	keep   bool
}

// Options configures an Aspic instance
type Options struct {
	Store  store.Store
	Engine reasoner.Options
	Logger *zap.Logger
	// KeepCards stores the explanation cards of every query.
	KeepCards bool
}

// New creates an Aspic instance with the given dependencies
func New(opts Options) *Aspic {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Engine.Logger == nil {
		opts.Engine.Logger = logger
	}
	return &Aspic{
		store:  opts.Store,
		engine: reasoner.New(opts.Engine),
		cards:  cards.New(),
		logger: logger,
		keep:   opts.KeepCards,
	}
}

// Close cleanly shuts down the Aspic instance
func (a *Aspic) Close() error {
	return a.store.Close()
}

// Engine returns the underlying reasoner.
func (a *Aspic) Engine() *reasoner.Engine { return a.engine }

// Import stores base under name, replacing any earlier version.
func (a *Aspic) Import(ctx context.Context, name string, base *kb.KnowledgeBase) error {
	if err := store.Save(ctx, a.store, name, base); err != nil {
		return fmt.Errorf("import %s: %w", name, err)
	}
	a.logger.Info("knowledge base imported", zap.String("base", name), zap.Int("rules", len(base.UserRules())))
	return nil
}

// ImportFile loads a rule file and stores it under its base name.
func (a *Aspic) ImportFile(ctx context.Context, path string) (string, error) {
	f, err := config.LoadKnowledgeBaseFile(path)
	if err != nil {
		return "", err
	}
	base, err := f.Build()
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return f.Name, a.Import(ctx, f.Name, base)
}

// KnowledgeBase loads a stored base.
func (a *Aspic) KnowledgeBase(ctx context.Context, name string) (*kb.KnowledgeBase, error) {
	return store.Load(ctx, a.store, name)
}

// List returns the stored bases.
func (a *Aspic) List(ctx context.Context) ([]store.BaseInfo, error) {
	return a.store.ListKnowledgeBases(ctx)
}

// Delete removes a stored base.
func (a *Aspic) Delete(ctx context.Context, name string) error {
	return a.store.DeleteKnowledgeBase(ctx, name)
}

// QueryRequest defines a query against a stored base
type QueryRequest struct {
	Base string
	// Goal is a conjunction in term notation, e.g. "p(X), q(X)".
	Goal   string
	Needed float64
	// Semantics overrides the engine's semantics when set.
	Semantics string
	// Assumptions are rule lines added for this query only.
	Assumptions []string
}

// Answer is one accepted argument
type Answer struct {
	Claim    string
	Support  float64
	Bindings string
	Argument string
}

// QueryResponse contains the accepted answers and one explanation card per
// argument built for the goal
type QueryResponse struct {
	QueryID string
	Answers []Answer
	Cards   []cards.Card
}

// Query evaluates a goal against a stored base.
func (a *Aspic) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	base, err := a.KnowledgeBase(ctx, req.Base)
	if err != nil {
		return QueryResponse{}, err
	}
	ev, err := a.Evaluate(ctx, base, req)
	if err != nil {
		return QueryResponse{}, err
	}

	resp := QueryResponse{QueryID: ev.QueryID, Cards: a.cards.BuildAll(ev)}
	vars := ev.Goal.Variables()
	for _, arg := range ev.Accepted() {
		ans := Answer{
			Claim:    arg.Claim.Inspect(),
			Support:  arg.Support,
			Argument: arg.Inspect(),
		}
		if len(vars) > 0 {
			ans.Bindings = arg.Substitution.Restrict(vars).Inspect()
		}
		resp.Answers = append(resp.Answers, ans)
	}

	if a.keep {
		for _, c := range resp.Cards {
			if err := a.saveCard(ctx, req.Base, c); err != nil {
				return QueryResponse{}, err
			}
		}
	}
	return resp, nil
}

// Evaluate runs req against base, which need not be stored. req.Base is
// ignored.
func (a *Aspic) Evaluate(ctx context.Context, base *kb.KnowledgeBase, req QueryRequest) (*reasoner.Evaluation, error) {
	goal, err := term.ParseList(req.Goal)
	if err != nil {
		return nil, fmt.Errorf("%w: goal: %v", internalerr.ErrInvalidInput, err)
	}
	var opts []reasoner.QueryOption
	if req.Semantics != "" {
		sem, err := reasoner.ParseSemantics(req.Semantics)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reasoner.WithSemantics(sem))
	}
	if len(req.Assumptions) > 0 {
		assumed := make([]*kb.Rule, 0, len(req.Assumptions))
		for _, line := range req.Assumptions {
			r, err := kb.ParseRule(line)
			if err != nil {
				return nil, fmt.Errorf("%w: assumption %q: %v", internalerr.ErrInvalidInput, line, err)
			}
			assumed = append(assumed, r)
		}
		opts = append(opts, reasoner.WithAssumptions(assumed...))
	}
	return a.engine.Evaluate(ctx, base, goal, req.Needed, opts...)
}

// Cards returns the newest stored cards of a base.
func (a *Aspic) Cards(ctx context.Context, base string, k int) ([]store.Card, error) {
	return a.store.GetCardsByBase(ctx, base, k)
}

func (a *Aspic) saveCard(ctx context.Context, base string, c cards.Card) error {
	score, err := json.Marshal(c.ScoreBreakdown)
	if err != nil {
		return err
	}
	return a.store.UpsertCard(ctx, store.Card{
		ID:        c.ID,
		Base:      base,
		QueryID:   c.QueryID,
		Title:     c.Title,
		Bullets:   c.Bullets,
		ScoreJSON: string(score),
	})
}
