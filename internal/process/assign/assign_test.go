package assign

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/snaplisting/photoset/internal/core/domain"
)

func TestEligible(t *testing.T) {
	front := func(url string) *domain.ImageFeatureRow {
		return &domain.ImageFeatureRow{URL: url, Role: domain.RoleFront}
	}
	back := func(url string) *domain.ImageFeatureRow {
		return &domain.ImageFeatureRow{URL: url, Role: domain.RoleBack}
	}
	other := func(url string) *domain.ImageFeatureRow {
		return &domain.ImageFeatureRow{URL: url, Role: domain.RoleOther}
	}

	tests := []struct {
		name string
		rows []*domain.ImageFeatureRow
		want bool
	}{
		{
			name: "clean_two_shot",
			rows: []*domain.ImageFeatureRow{front("f1"), back("b1"), front("f2"), back("b2")},
			want: true,
		},
		{
			name: "uneven_counts",
			rows: []*domain.ImageFeatureRow{front("f1"), front("f2"), back("b1")},
			want: false,
		},
		{
			name: "leftover_other",
			rows: []*domain.ImageFeatureRow{front("f1"), back("b1"), other("o1")},
			want: false,
		},
		{
			name: "empty",
			rows: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(tt.rows))
		})
	}
}

func TestMaximizeOptimalOverGreedy(t *testing.T) {
	// Greedy would take (0,0)=5 first, forcing (1,1)=1 for a total of 6.
	// The optimum is (0,1)=4 + (1,0)=4 = 8.
	scores := mat.NewDense(2, 2, []float64{
		5, 4,
		4, 1,
	})

	assignment := maximize(scores)

	require.Len(t, assignment, 2)
	assert.Equal(t, 1, assignment[0])
	assert.Equal(t, 0, assignment[1])
}

func TestMaximizeIdentity(t *testing.T) {
	scores := mat.NewDense(3, 3, []float64{
		9, 1, 1,
		1, 9, 1,
		1, 1, 9,
	})

	assignment := maximize(scores)
	assert.Equal(t, []int{0, 1, 2}, assignment)
}

func TestMaximizeHandlesNegativeScores(t *testing.T) {
	scores := mat.NewDense(2, 2, []float64{
		-1, -5,
		-5, -1,
	})

	assignment := maximize(scores)
	assert.Equal(t, []int{0, 1}, assignment)
}

func TestSolvePairsEveryFront(t *testing.T) {
	logger := zerolog.Nop()

	rows := []*domain.ImageFeatureRow{
		{
			URL: "f1", Role: domain.RoleFront, BrandNorm: "acme",
			ProductTokens: domain.NewTokenSet("vitamin", "c"),
		},
		{
			URL: "f2", Role: domain.RoleFront, BrandNorm: "bloom",
			ProductTokens: domain.NewTokenSet("rose", "shampoo"),
		},
		{
			URL: "b1", Role: domain.RoleBack, BrandNorm: "acme",
			ProductTokens: domain.NewTokenSet("vitamin", "c", "ingredients"),
		},
		{
			URL: "b2", Role: domain.RoleBack, BrandNorm: "bloom",
			ProductTokens: domain.NewTokenSet("rose", "shampoo", "ingredients"),
		},
	}

	usedBacks := map[string]bool{}
	resolvedFronts := map[string]bool{}

	pairs, err := New(&logger).Solve(rows, usedBacks, resolvedFronts)
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	byFront := map[string]domain.Pair{}
	for _, p := range pairs {
		byFront[p.FrontURL] = p

		assert.Equal(t, domain.ProvenanceGlobalSolver, p.Provenance)
		assert.InDelta(t, 0.98, p.Confidence, 1e-9)
	}

	assert.Equal(t, "b1", byFront["f1"].BackURL)
	assert.Equal(t, "b2", byFront["f2"].BackURL)
	assert.True(t, usedBacks["b1"] && usedBacks["b2"])
	assert.True(t, resolvedFronts["f1"] && resolvedFronts["f2"])
}

func TestSolveRejectsUnevenSplit(t *testing.T) {
	logger := zerolog.Nop()

	rows := []*domain.ImageFeatureRow{
		{URL: "f1", Role: domain.RoleFront},
		{URL: "f2", Role: domain.RoleFront},
		{URL: "b1", Role: domain.RoleBack},
	}

	_, err := New(&logger).Solve(rows, map[string]bool{}, map[string]bool{})
	require.Error(t, err)
}
