// Package candidates scores plausible back matches for every front image.
package candidates

import (
	"regexp"
	"strings"

	"github.com/snaplisting/photoset/internal/core/domain"
)

// Signal weights for the aggregate preScore. Brand mismatch is penalized
// rather than filtered because OCR brand detection is unreliable on back
// labels.
const (
	brandMatchWeight    = 2.5
	brandMismatchWeight = -1.5
	prodJaccardWeight   = 2.0
	varJaccardWeight    = 1.0
	sizeEqBoost         = 1.0
	pkgMatchBoost       = 0.75
	pkgPrecisionBoost   = 0.5
	catTailBoost        = 0.75
	cosmeticCueBoost    = 1.25
)

// highPrecisionPackaging are packaging types specific enough that matching
// on them earns an extra boost.
var highPrecisionPackaging = map[string]bool{
	"jar":    true,
	"tub":    true,
	"sachet": true,
}

// inciCueRegex matches ingredient-list language typical of cosmetic and
// skincare back labels that lack brand text.
var inciCueRegex = regexp.MustCompile(`(?i)\b(ingredients|inci|aqua|glycerin|parfum|dimethicone|cocamidopropyl|sodium\s+laureth|paraben|tocopherol)\b`)

// Score computes the heuristic edge score from one front to one back.
// Pure and deterministic for identical inputs.
func Score(front, back *domain.ImageFeatureRow) domain.CandidateScore {
	cs := domain.CandidateScore{BackURL: back.URL}

	var score float64

	if front.BrandNorm != "" && back.BrandNorm != "" {
		if front.BrandNorm == back.BrandNorm {
			cs.BrandMatch = true
			score += brandMatchWeight
		} else {
			cs.BrandMismatch = true
			score += brandMismatchWeight
		}
	}

	cs.ProdJaccard = front.ProductTokens.Jaccard(back.ProductTokens)
	score += cs.ProdJaccard * prodJaccardWeight

	cs.VarJaccard = front.VariantTokens.Jaccard(back.VariantTokens)
	score += cs.VarJaccard * varJaccardWeight

	if front.SizeCanonical != "" && front.SizeCanonical == back.SizeCanonical {
		cs.SizeEq = true
		score += sizeEqBoost
	}

	if front.PackagingHint != "" && front.PackagingHint != "unknown" && front.PackagingHint == back.PackagingHint {
		cs.PkgMatch = true
		score += pkgMatchBoost

		if highPrecisionPackaging[front.PackagingHint] {
			cs.PackagingBoost = true
			score += pkgPrecisionBoost
		}
	}

	if categoryTailOverlap(front.CategoryPath, back.CategoryPath) {
		cs.CatTailOverlap = true
		score += catTailBoost
	}

	if HasCosmeticBackCue(back) {
		cs.CosmeticBackCue = true
		score += cosmeticCueBoost
	}

	cs.PreScore = score

	return cs
}

// HasCosmeticBackCue reports ingredient-list language in the extracted text.
func HasCosmeticBackCue(row *domain.ImageFeatureRow) bool {
	return inciCueRegex.MatchString(row.TextExtracted)
}

// categoryTailOverlap reports whether two category paths share the same
// leaf segment. Paths are "/"- or ">"-separated.
func categoryTailOverlap(a, b string) bool {
	tailA := categoryTail(a)
	tailB := categoryTail(b)

	return tailA != "" && tailA == tailB
}

func categoryTail(path string) string {
	path = strings.ReplaceAll(path, ">", "/")

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if tail := strings.ToLower(strings.TrimSpace(segments[i])); tail != "" {
			return tail
		}
	}

	return ""
}
