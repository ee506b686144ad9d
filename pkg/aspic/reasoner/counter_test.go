package reasoner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/aspic/pkg/aspic/term"
)

func TestFindProofsIgnoresDefeat(t *testing.T) {
	base := mustBase(t, "a 0.5\n~a 0.9\n")
	proofs, err := New(DefaultOptions()).FindProofs(context.Background(), base, goal("a"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, claimsOf(proofs))
}

func TestRebuttalAndExclusion(t *testing.T) {
	base := mustBase(t, "a 0.5\n~a 0.9\n")
	engine := New(DefaultOptions())
	ctx := context.Background()

	proofs, err := engine.FindProofs(ctx, base, goal("a"), 0)
	require.NoError(t, err)
	require.Len(t, proofs, 1)

	rebuttal, err := engine.Rebuttal(ctx, base, proofs[0])
	require.NoError(t, err)
	require.NotNil(t, rebuttal)
	assert.Equal(t, "~a", rebuttal.Claim.Inspect())

	again, err := engine.Rebuttal(ctx, base, proofs[0], WithExclude(rebuttal))
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestCounterArgumentFindsUndercutter(t *testing.T) {
	base := mustBase(t, "[n1] a <- b 0.7\nb\n~n1 0.9\n")
	engine := New(DefaultOptions())
	ctx := context.Background()

	proofs, err := engine.FindProofs(ctx, base, goal("a"), 0)
	require.NoError(t, err)
	require.Len(t, proofs, 1)

	counter, err := engine.CounterArgument(ctx, base, proofs[0])
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, "~n1", counter.Claim.Inspect())

	attacks, err := engine.CounterArguments(ctx, base, proofs[0])
	require.NoError(t, err)
	require.Len(t, attacks, 1)
	assert.Equal(t, Undercut, attacks[0].Kind)
}

func TestUnderminerSkipsAxioms(t *testing.T) {
	base := mustBase(t, "a <- b, c 0.9\nb\nc 0.7\n~b 0.95\n~c 0.8\n")
	engine := New(DefaultOptions())
	ctx := context.Background()

	proofs, err := engine.FindProofs(ctx, base, goal("a"), 0)
	require.NoError(t, err)
	require.Len(t, proofs, 1)

	found, err := engine.UnderminerOrUndercutter(ctx, base, proofs[0])
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "~c", found.Claim.Inspect())
}

func TestSatisfiedGoals(t *testing.T) {
	base := mustBase(t, "cheap <- bike 0.8\nfast <- car 0.9\nhealthy <- bike, weather_ok 0.7\nweather_ok 0.6\n")
	goals := []term.Element{term.MustParse("cheap"), term.MustParse("fast"), term.MustParse("healthy")}

	got, err := New(DefaultOptions()).SatisfiedGoals(context.Background(), base, term.MustParse("bike"), goals)
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap", "healthy"}, inspectAll(got))
	assert.Equal(t, 7, base.Len(), "the assumed option must not stay in the base")
}

func inspectAll(elems []term.Element) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.Inspect()
	}
	return out
}
