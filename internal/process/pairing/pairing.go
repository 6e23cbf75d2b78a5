// Package pairing holds helpers shared by the pairing stages: pair
// construction, evidence formatting, and row lookup.
package pairing

import (
	"fmt"

	"github.com/snaplisting/photoset/internal/core/domain"
)

// Index builds a URL -> row lookup.
func Index(rows []*domain.ImageFeatureRow) map[string]*domain.ImageFeatureRow {
	idx := make(map[string]*domain.ImageFeatureRow, len(rows))
	for _, row := range rows {
		idx[row.URL] = row
	}

	return idx
}

// Build assembles a Pair from its two rows plus the stage's verdict.
func Build(front, back *domain.ImageFeatureRow, score, confidence float64, prov domain.Provenance, evidence []string) domain.Pair {
	return domain.Pair{
		FrontURL:   front.URL,
		BackURL:    back.URL,
		MatchScore: score,
		Brand:      front.BrandRaw,
		Product:    front.ProductRaw,
		Variant:    front.VariantRaw,
		SizeFront:  front.SizeCanonical,
		SizeBack:   back.SizeCanonical,
		Evidence:   evidence,
		Confidence: confidence,
		Provenance: prov,
	}
}

// Evidence renders a candidate score breakdown as ordered human-readable
// justification lines.
func Evidence(cs domain.CandidateScore) []string {
	lines := []string{fmt.Sprintf("preScore=%.2f", cs.PreScore)}

	if cs.BrandMatch {
		lines = append(lines, "brand match")
	}

	if cs.BrandMismatch {
		lines = append(lines, "brand mismatch")
	}

	if cs.ProdJaccard > 0 {
		lines = append(lines, fmt.Sprintf("product token jaccard=%.2f", cs.ProdJaccard))
	}

	if cs.VarJaccard > 0 {
		lines = append(lines, fmt.Sprintf("variant token jaccard=%.2f", cs.VarJaccard))
	}

	if cs.SizeEq {
		lines = append(lines, "size equal")
	}

	if cs.PkgMatch {
		lines = append(lines, "packaging match")
	}

	if cs.PackagingBoost {
		lines = append(lines, "high-precision packaging")
	}

	if cs.CatTailOverlap {
		lines = append(lines, "category tail overlap")
	}

	if cs.CosmeticBackCue {
		lines = append(lines, "cosmetic back cue (ingredient text)")
	}

	return lines
}
