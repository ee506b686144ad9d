package aspic

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/kb"
	"github.com/cognicore/aspic/pkg/aspic/reasoner"
	"github.com/cognicore/aspic/pkg/aspic/store"
	"github.com/cognicore/aspic/pkg/aspic/store/memstore"
)

func newTestAspic(t *testing.T, keep bool) *Aspic {
	t.Helper()
	a := New(Options{Store: memstore.New(), Engine: reasoner.DefaultOptions(), KeepCards: keep})
	t.Cleanup(func() { a.Close() })
	return a
}

func importText(t *testing.T, a *Aspic, name, text string) {
	t.Helper()
	base, err := kb.FromText(text)
	require.NoError(t, err)
	require.NoError(t, a.Import(context.Background(), name, base))
}

func TestQueryStoredBase(t *testing.T) {
	a := newTestAspic(t, false)
	importText(t, a, "demo", "a <- b, c 0.8\nb\nc\n")

	resp, err := a.Query(context.Background(), QueryRequest{Base: "demo", Goal: "a"})
	require.NoError(t, err)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "a", resp.Answers[0].Claim)
	assert.Equal(t, 0.8, resp.Answers[0].Support)
	assert.Equal(t, "a 0.8 <- (b, c)", resp.Answers[0].Argument)
	assert.NotEmpty(t, resp.QueryID)
	require.Len(t, resp.Cards, 1)
	assert.Equal(t, resp.QueryID, resp.Cards[0].QueryID)
}

func TestQueryWithAssumptionsAndSemantics(t *testing.T) {
	a := newTestAspic(t, false)
	importText(t, a, "cycle", "g <- o 0.8\n~g 0.8\n")
	ctx := context.Background()

	resp, err := a.Query(ctx, QueryRequest{Base: "cycle", Goal: "g", Assumptions: []string{"o"}})
	require.NoError(t, err)
	assert.Empty(t, resp.Answers, "grounded semantics leaves the cycle undecided")

	resp, err = a.Query(ctx, QueryRequest{Base: "cycle", Goal: "g", Assumptions: []string{"o"}, Semantics: "preferred-credulous"})
	require.NoError(t, err)
	assert.Len(t, resp.Answers, 1)

	resp, err = a.Query(ctx, QueryRequest{Base: "cycle", Goal: "g", Semantics: "preferred-credulous"})
	require.NoError(t, err)
	assert.Empty(t, resp.Answers, "assumptions must not persist")
}

func TestQueryBindings(t *testing.T) {
	a := newTestAspic(t, false)
	importText(t, a, "p", "p(a)\np(b)\nq(b) 0.6\n")

	resp, err := a.Query(context.Background(), QueryRequest{Base: "p", Goal: "p(X), q(X)", Needed: 0.5})
	require.NoError(t, err)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "{X/b}", resp.Answers[0].Bindings)
}

func TestQueryErrors(t *testing.T) {
	a := newTestAspic(t, false)
	importText(t, a, "demo", "a\n")
	ctx := context.Background()

	_, err := a.Query(ctx, QueryRequest{Base: "missing", Goal: "a"})
	assert.True(t, store.IsNotFound(err))

	_, err = a.Query(ctx, QueryRequest{Base: "demo", Goal: "a("})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = a.Query(ctx, QueryRequest{Base: "demo", Goal: "a", Assumptions: []string{"b <-"}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = a.Query(ctx, QueryRequest{Base: "demo", Goal: "a", Semantics: "stable"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestKeepCards(t *testing.T) {
	a := newTestAspic(t, true)
	importText(t, a, "demo", "[n1] a <- b 0.7\nb\n~n1 0.9\n")
	ctx := context.Background()

	resp, err := a.Query(ctx, QueryRequest{Base: "demo", Goal: "a"})
	require.NoError(t, err)
	assert.Empty(t, resp.Answers)

	stored, err := a.Cards(ctx, "demo", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, resp.Cards[0].ID, stored[0].ID)
	assert.Contains(t, stored[0].ScoreJSON, `"defeats":1`)
}

func TestImportFileListDelete(t *testing.T) {
	a := newTestAspic(t, false)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "birds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - consequent: bird(tweety)\n  - consequent: flies(X)\n    antecedent: [bird(X)]\n    dob: 0.9\n"), 0o644))

	name, err := a.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "birds", name)

	infos, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].Rules)

	resp, err := a.Query(ctx, QueryRequest{Base: "birds", Goal: "flies(tweety)"})
	require.NoError(t, err)
	assert.Len(t, resp.Answers, 1)

	require.NoError(t, a.Delete(ctx, "birds"))
	infos, err = a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
