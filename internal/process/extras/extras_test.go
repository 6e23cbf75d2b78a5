package extras

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaplisting/photoset/internal/core/domain"
)

// fakeEmbedder serves canned vectors. URLs without an entry are declined
// with a nil vector, matching the real service's null response.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) GetImageEmbedding(_ context.Context, url string) ([]float32, error) {
	return f.vectors[url], nil
}

func testFloors() Floors {
	return Floors{TextScore: 1.0, VisualSimilarity: 0.82}
}

func newResolver(embedder *fakeEmbedder) *Resolver {
	logger := zerolog.Nop()
	return New(embedder, testFloors(), &logger)
}

func TestAttachPromotesDistinguishingSoloFront(t *testing.T) {
	rows := []*domain.ImageFeatureRow{
		{URL: "f1", Role: domain.RoleFront, BrandRaw: "Acme", BrandNorm: "acme", ProductRaw: "Vitamin C Serum"},
	}

	products, singletons, attached := newResolver(&fakeEmbedder{}).Attach(context.Background(), rows, indexOf(rows), nil)

	require.Len(t, products, 1)
	assert.True(t, products[0].Solo)
	assert.Equal(t, "f1", products[0].FrontURL)
	assert.Equal(t, "Acme", products[0].Brand)
	assert.Empty(t, singletons)
	assert.Zero(t, attached)
}

func TestAttachDemotesIndistinctFront(t *testing.T) {
	rows := []*domain.ImageFeatureRow{
		{URL: "f1", Role: domain.RoleFront, ProductTokens: domain.NewTokenSet("serum")},
	}

	products, singletons, _ := newResolver(&fakeEmbedder{}).Attach(context.Background(), rows, indexOf(rows), nil)

	assert.Empty(t, products)
	require.Len(t, singletons, 1)
	assert.Equal(t, "f1", singletons[0].URL)
	assert.Equal(t, "no matching product or unique brand", singletons[0].Reason)
}

func TestAttachByTextSignal(t *testing.T) {
	front := &domain.ImageFeatureRow{
		URL: "f1", Role: domain.RoleFront,
		BrandRaw: "Acme", BrandNorm: "acme",
		ProductTokens: domain.NewTokenSet("vitamin", "serum"),
	}
	extra := &domain.ImageFeatureRow{
		URL: "x1", Role: domain.RoleOther,
		BrandRaw: "Acme", BrandNorm: "acme",
		ProductTokens: domain.NewTokenSet("vitamin", "serum"),
	}

	rowIndex := map[string]*domain.ImageFeatureRow{"f1": front, "x1": extra}
	products := []domain.Product{{FrontURL: "f1", BackURL: "b1"}}

	products, singletons, attached := newResolver(&fakeEmbedder{}).Attach(
		context.Background(), []*domain.ImageFeatureRow{extra}, rowIndex, products)

	assert.Empty(t, singletons)
	assert.Equal(t, 1, attached)
	require.Len(t, products, 1)
	assert.Equal(t, []string{"x1"}, products[0].Extras)
}

func TestAttachByVisualSimilarity(t *testing.T) {
	front := &domain.ImageFeatureRow{URL: "f1", Role: domain.RoleFront}
	extra := &domain.ImageFeatureRow{URL: "x1", Role: domain.RoleOther}

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"x1": {1, 0, 0},
		"f1": {1, 0, 0},
	}}

	rowIndex := map[string]*domain.ImageFeatureRow{"f1": front, "x1": extra}
	products := []domain.Product{{FrontURL: "f1"}}

	products, singletons, attached := newResolver(embedder).Attach(
		context.Background(), []*domain.ImageFeatureRow{extra}, rowIndex, products)

	assert.Empty(t, singletons)
	assert.Equal(t, 1, attached)
	assert.Equal(t, []string{"x1"}, products[0].Extras)
}

func TestAttachDeclinedWhenNoSignal(t *testing.T) {
	front := &domain.ImageFeatureRow{URL: "f1", Role: domain.RoleFront}
	extra := &domain.ImageFeatureRow{URL: "x1", Role: domain.RoleOther}

	// Embedder declines everything; text score stays at zero.
	embedder := &fakeEmbedder{}

	rowIndex := map[string]*domain.ImageFeatureRow{"f1": front, "x1": extra}
	products := []domain.Product{{FrontURL: "f1"}}

	products, singletons, attached := newResolver(embedder).Attach(
		context.Background(), []*domain.ImageFeatureRow{extra}, rowIndex, products)

	assert.Zero(t, attached)
	assert.Empty(t, products[0].Extras)
	require.Len(t, singletons, 1)
	assert.Equal(t, "x1", singletons[0].URL)
}

func TestAttachPrefersStrongerProduct(t *testing.T) {
	acme := &domain.ImageFeatureRow{
		URL: "f1", Role: domain.RoleFront,
		BrandNorm: "acme", ProductTokens: domain.NewTokenSet("vitamin", "serum"),
	}
	bloom := &domain.ImageFeatureRow{
		URL: "f2", Role: domain.RoleFront,
		BrandNorm: "bloom", ProductTokens: domain.NewTokenSet("night", "cream"),
	}
	extra := &domain.ImageFeatureRow{
		URL: "x1", Role: domain.RoleOther,
		BrandNorm: "bloom", ProductTokens: domain.NewTokenSet("night", "cream"),
	}

	rowIndex := map[string]*domain.ImageFeatureRow{"f1": acme, "f2": bloom, "x1": extra}
	products := []domain.Product{{FrontURL: "f1"}, {FrontURL: "f2"}}

	products, _, attached := newResolver(&fakeEmbedder{}).Attach(
		context.Background(), []*domain.ImageFeatureRow{extra}, rowIndex, products)

	assert.Equal(t, 1, attached)
	assert.Empty(t, products[0].Extras)
	assert.Equal(t, []string{"x1"}, products[1].Extras)
}

func TestAttachSoloFrontAcceptsExtras(t *testing.T) {
	front := &domain.ImageFeatureRow{
		URL: "f1", Role: domain.RoleFront,
		BrandRaw: "Acme", BrandNorm: "acme",
		ProductTokens: domain.NewTokenSet("vitamin", "serum"),
	}
	extra := &domain.ImageFeatureRow{
		URL: "x1", Role: domain.RoleOther,
		BrandNorm:     "acme",
		ProductTokens: domain.NewTokenSet("vitamin", "serum"),
	}

	rows := []*domain.ImageFeatureRow{front, extra}

	products, singletons, attached := newResolver(&fakeEmbedder{}).Attach(
		context.Background(), rows, indexOf(rows), nil)

	require.Len(t, products, 1)
	assert.True(t, products[0].Solo)
	assert.Equal(t, []string{"x1"}, products[0].Extras)
	assert.Equal(t, 1, attached)
	assert.Empty(t, singletons)
}

func indexOf(rows []*domain.ImageFeatureRow) map[string]*domain.ImageFeatureRow {
	index := make(map[string]*domain.ImageFeatureRow, len(rows))
	for _, row := range rows {
		index[row.URL] = row
	}

	return index
}
