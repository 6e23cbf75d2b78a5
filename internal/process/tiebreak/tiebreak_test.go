package tiebreak

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaplisting/photoset/internal/core/domain"
	apperrors "github.com/snaplisting/photoset/internal/core/errors"
	"github.com/snaplisting/photoset/internal/core/llm"
)

const testMinScore = 3.0

// fakeClient returns a canned decision and records the request it saw.
type fakeClient struct {
	decision llm.Decision
	err      error
	lastReq  llm.TieBreakRequest
}

func (f *fakeClient) ResolvePairs(_ context.Context, _, _ string, payload any) (llm.Decision, error) {
	if req, ok := payload.(llm.TieBreakRequest); ok {
		f.lastReq = req
	}

	return f.decision, f.err
}

func testRows() []*domain.ImageFeatureRow {
	return []*domain.ImageFeatureRow{
		{URL: "f1", Role: domain.RoleFront, BrandRaw: "Acme"},
		{URL: "f2", Role: domain.RoleFront, BrandRaw: "Bloom"},
		{URL: "b1", Role: domain.RoleBack},
		{URL: "b2", Role: domain.RoleBack},
		{URL: "b3", Role: domain.RoleBack},
	}
}

func testCands() map[string][]domain.CandidateScore {
	return map[string][]domain.CandidateScore{
		"f1": {
			{BackURL: "b1", PreScore: 2.5},
			{BackURL: "b2", PreScore: 2.2},
		},
		"f2": {
			{BackURL: "b2", PreScore: 2.4},
			{BackURL: "b3", PreScore: 2.1},
		},
	}
}

func newResolver(client llm.Client) *Resolver {
	logger := zerolog.Nop()
	return New(client, testMinScore, &logger)
}

func TestResolveAcceptsValidDecision(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Pairs: []llm.PairDecision{
			{FrontURL: "f1", BackURL: "b1", MatchScore: 7.0, Reason: "same label"},
		},
		Singletons: []llm.SingletonDecision{
			{URL: "f2", Reason: "declined despite candidates: no shared signal"},
		},
	}}

	usedBacks := map[string]bool{}
	resolvedFronts := map[string]bool{}

	pairs, singletons, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), usedBacks, resolvedFronts)
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, "b1", pairs[0].BackURL)
	assert.Equal(t, domain.ProvenanceModel, pairs[0].Provenance)
	assert.True(t, usedBacks["b1"])
	assert.True(t, resolvedFronts["f1"])

	require.Len(t, singletons, 1)
	assert.Equal(t, "f2", singletons[0].URL)
	assert.True(t, resolvedFronts["f2"])
}

func TestResolveRejectsBackOutsideAllowedList(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Pairs: []llm.PairDecision{
			{FrontURL: "f1", BackURL: "b3", MatchScore: 8.0}, // b3 not allowed for f1
		},
		Singletons: []llm.SingletonDecision{
			{URL: "f2", Reason: "declined despite candidates: x"},
		},
	}}

	_, _, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), map[string]bool{}, map[string]bool{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrContractViolation))
}

func TestResolveRejectsHallucinatedFront(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Pairs: []llm.PairDecision{
			{FrontURL: "f-ghost", BackURL: "b1", MatchScore: 8.0},
		},
	}}

	_, _, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), map[string]bool{}, map[string]bool{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrContractViolation))
}

func TestResolveRejectsReusedBack(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Pairs: []llm.PairDecision{
			{FrontURL: "f1", BackURL: "b2", MatchScore: 7.0},
			{FrontURL: "f2", BackURL: "b2", MatchScore: 7.0},
		},
	}}

	_, _, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), map[string]bool{}, map[string]bool{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrContractViolation))
}

func TestResolveRejectsMissingDecision(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Pairs: []llm.PairDecision{
			{FrontURL: "f1", BackURL: "b1", MatchScore: 7.0},
		},
		// f2 left undecided
	}}

	_, _, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), map[string]bool{}, map[string]bool{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrContractViolation))
}

func TestResolveRejectsNonConformingSingletonReason(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Pairs: []llm.PairDecision{
			{FrontURL: "f1", BackURL: "b1", MatchScore: 7.0},
		},
		Singletons: []llm.SingletonDecision{
			{URL: "f2", Reason: "could not decide"},
		},
	}}

	_, _, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), map[string]bool{}, map[string]bool{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrContractViolation))
}

func TestResolveDemotesLowScorePair(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Pairs: []llm.PairDecision{
			{FrontURL: "f1", BackURL: "b1", MatchScore: 2.1},
		},
		Singletons: []llm.SingletonDecision{
			{URL: "f2", Reason: "declined despite candidates: nothing matched"},
		},
	}}

	usedBacks := map[string]bool{}
	resolvedFronts := map[string]bool{}

	pairs, singletons, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), usedBacks, resolvedFronts)
	require.NoError(t, err, "a low score is a data judgement, not a contract violation")

	assert.Empty(t, pairs)
	require.Len(t, singletons, 2)
	assert.Equal(t, "f1", singletons[0].URL)
	assert.Contains(t, singletons[0].Reason, "score=2.10")
	assert.False(t, usedBacks["b1"], "demoted pair must not consume the back")
	assert.True(t, resolvedFronts["f1"])
}

func TestResolveFiltersUsedBacksFromRequest(t *testing.T) {
	client := &fakeClient{decision: llm.Decision{
		Singletons: []llm.SingletonDecision{
			{URL: "f1", Reason: "declined despite candidates: only used backs left"},
			{URL: "f2", Reason: "declined despite candidates: only used backs left"},
		},
	}}

	usedBacks := map[string]bool{"b1": true}

	_, _, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), usedBacks, map[string]bool{})
	require.NoError(t, err)

	for _, front := range client.lastReq.Fronts {
		for _, c := range front.AllowedBacks {
			assert.NotEqual(t, "b1", c.BackURL, "used backs must not reach the model")
		}
	}
}

func TestResolveTransportErrorAbortsBatch(t *testing.T) {
	transportErr := errors.New("upstream timeout")
	client := &fakeClient{err: transportErr}

	usedBacks := map[string]bool{}
	resolvedFronts := map[string]bool{}

	pairs, singletons, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), usedBacks, resolvedFronts)
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.Nil(t, pairs, "a failed call must not yield partial pairs")
	assert.Nil(t, singletons)
	assert.Empty(t, usedBacks)
	assert.Empty(t, resolvedFronts)
}

func TestResolveUnparsableFallsThrough(t *testing.T) {
	client := &fakeClient{err: apperrors.ErrUnparsableResponse}

	resolvedFronts := map[string]bool{}

	pairs, singletons, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), map[string]bool{}, resolvedFronts)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Empty(t, singletons)
	assert.Empty(t, resolvedFronts, "fronts stay unresolved for the leftover stage")
}

func TestResolveSkipsWhenNothingToDecide(t *testing.T) {
	client := &fakeClient{}

	resolvedFronts := map[string]bool{"f1": true, "f2": true}

	pairs, singletons, err := newResolver(client).Resolve(context.Background(), testRows(), testCands(), map[string]bool{}, resolvedFronts)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Empty(t, singletons)
}
