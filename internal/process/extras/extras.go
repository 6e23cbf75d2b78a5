// Package extras assigns the remaining images: extra angle shots attach
// to the nearest product, distinguishable solo fronts become stand-alone
// products, and the rest end as singletons.
package extras

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/core/domain"
	"github.com/snaplisting/photoset/internal/core/embeddings"
	"github.com/snaplisting/photoset/internal/process/candidates"
)

// Floors configures attachment acceptance.
type Floors struct {
	// TextScore is the minimum heuristic score for a text-signal attach.
	TextScore float64
	// VisualSimilarity is the minimum cosine similarity for a visual
	// attach once text signals are exhausted.
	VisualSimilarity float64
}

// Resolver attaches extras and promotes or demotes whatever remains.
type Resolver struct {
	embedder embeddings.Client
	floors   Floors
	logger   *zerolog.Logger
}

// New creates an extras resolver.
func New(embedder embeddings.Client, floors Floors, logger *zerolog.Logger) *Resolver {
	return &Resolver{embedder: embedder, floors: floors, logger: logger}
}

// Attach processes the images left after all pairing stages. Unresolved
// fronts are promoted first so later extras can attach to them too.
// products is mutated in place; the returned values are the appended
// product list, new singletons, and the count of attached extras.
func (r *Resolver) Attach(
	ctx context.Context,
	unassigned []*domain.ImageFeatureRow,
	rowIndex map[string]*domain.ImageFeatureRow,
	products []domain.Product,
) ([]domain.Product, []domain.Singleton, int) {
	var singletons []domain.Singleton

	var leftovers []*domain.ImageFeatureRow

	for _, row := range unassigned {
		if row.Role != domain.RoleFront {
			leftovers = append(leftovers, row)
			continue
		}

		if distinguishing(row) {
			r.logger.Info().Str("url", row.URL).Msg("promoting unpaired front to solo product")

			products = append(products, domain.Product{
				FrontURL: row.URL,
				Brand:    row.BrandRaw,
				Product:  row.ProductRaw,
				Variant:  row.VariantRaw,
				Solo:     true,
			})
		} else {
			singletons = append(singletons, domain.Singleton{
				URL:    row.URL,
				Reason: "no matching product or unique brand",
			})
		}
	}

	attached := 0

	for _, row := range leftovers {
		if idx, ok := r.bestProduct(ctx, row, products, rowIndex); ok {
			products[idx].Extras = append(products[idx].Extras, row.URL)
			attached++

			r.logger.Info().Str("url", row.URL).Str("front", products[idx].FrontURL).Msg("attached extra to product")

			continue
		}

		singletons = append(singletons, domain.Singleton{
			URL:    row.URL,
			Reason: "no matching product or unique brand",
		})
	}

	return products, singletons, attached
}

// distinguishing reports whether a solo front carries enough brand or
// product signal to stand as its own listing.
func distinguishing(row *domain.ImageFeatureRow) bool {
	return row.BrandNorm != "" || len(row.ProductTokens) >= 2
}

// bestProduct finds the product whose front best matches the image. Text
// signals decide when they clear the floor; otherwise the memoized
// embedding service gets one chance to confirm the match visually.
func (r *Resolver) bestProduct(
	ctx context.Context,
	row *domain.ImageFeatureRow,
	products []domain.Product,
	rowIndex map[string]*domain.ImageFeatureRow,
) (int, bool) {
	bestIdx := -1
	bestScore := 0.0

	for i, product := range products {
		front, ok := rowIndex[product.FrontURL]
		if !ok {
			continue
		}

		score := candidates.Score(front, row).PreScore
		if bestIdx == -1 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx == -1 {
		return 0, false
	}

	if bestScore >= r.floors.TextScore {
		return bestIdx, true
	}

	if r.visualMatch(ctx, row, products[bestIdx]) {
		return bestIdx, true
	}

	return 0, false
}

func (r *Resolver) visualMatch(ctx context.Context, row *domain.ImageFeatureRow, product domain.Product) bool {
	rowVec, err := r.embedder.GetImageEmbedding(ctx, row.URL)
	if err != nil || rowVec == nil {
		return false
	}

	for _, url := range []string{product.FrontURL, product.BackURL} {
		if url == "" {
			continue
		}

		vec, err := r.embedder.GetImageEmbedding(ctx, url)
		if err != nil || vec == nil {
			continue
		}

		if float64(embeddings.CosineSimilarity(rowVec, vec)) >= r.floors.VisualSimilarity {
			return true
		}
	}

	return false
}
