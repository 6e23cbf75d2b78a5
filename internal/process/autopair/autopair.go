// Package autopair accepts high-confidence candidates outright using
// score and margin thresholds.
package autopair

import (
	"math"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/core/domain"
	"github.com/snaplisting/photoset/internal/process/pairing"
)

// Thresholds configures both auto-pair passes.
type Thresholds struct {
	Score         float64
	Gap           float64
	CosmeticScore float64
	CosmeticGap   float64
}

const (
	confidenceAuto       = 0.95
	confidenceDomainAuto = 0.9
)

// cosmeticCategoryRegex detects hair/cosmetic category paths eligible for
// the relaxed domain-specific pass.
var cosmeticCategoryRegex = regexp.MustCompile(`(?i)\b(hair|cosmetic|skin\s*care|skincare|beauty|shampoo|conditioner|makeup)\b`)

// Pairer runs the two auto-pair passes.
type Pairer struct {
	thresholds Thresholds
	logger     *zerolog.Logger
}

// New creates an auto-pairer.
func New(thresholds Thresholds, logger *zerolog.Logger) *Pairer {
	return &Pairer{thresholds: thresholds, logger: logger}
}

// Run executes the general pass then the cosmetic pass. Accepted backs are
// recorded in usedBacks and accepted fronts in resolvedFronts, removing
// them from all later stages. The pass order is intentional: the general
// pass may consume backs the cosmetic pass would have preferred.
func (p *Pairer) Run(
	rows []*domain.ImageFeatureRow,
	cands map[string][]domain.CandidateScore,
	usedBacks, resolvedFronts map[string]bool,
) []domain.Pair {
	index := pairing.Index(rows)

	var pairs []domain.Pair

	pairs = append(pairs, p.generalPass(rows, cands, index, usedBacks, resolvedFronts)...)
	pairs = append(pairs, p.cosmeticPass(rows, cands, index, usedBacks, resolvedFronts)...)

	return pairs
}

// generalPass accepts the best candidate when both the absolute score and
// the margin over the runner-up clear their thresholds (inclusive).
func (p *Pairer) generalPass(
	rows []*domain.ImageFeatureRow,
	cands map[string][]domain.CandidateScore,
	index map[string]*domain.ImageFeatureRow,
	usedBacks, resolvedFronts map[string]bool,
) []domain.Pair {
	var pairs []domain.Pair

	for _, front := range rows {
		if front.Role != domain.RoleFront || resolvedFronts[front.URL] {
			continue
		}

		best, gap, ok := bestAvailable(cands[front.URL], usedBacks)
		if !ok {
			continue
		}

		if best.PreScore >= p.thresholds.Score && gap >= p.thresholds.Gap {
			pairs = append(pairs, p.accept(front, index[best.BackURL], best, confidenceAuto, domain.ProvenanceAuto, usedBacks, resolvedFronts))
		}
	}

	return pairs
}

// cosmeticPass applies the relaxed threshold for hair/cosmetic categories.
// Cosmetic backs frequently lack brand and product text, so the margin
// rule also accepts a best candidate carrying the ingredient-list cue.
func (p *Pairer) cosmeticPass(
	rows []*domain.ImageFeatureRow,
	cands map[string][]domain.CandidateScore,
	index map[string]*domain.ImageFeatureRow,
	usedBacks, resolvedFronts map[string]bool,
) []domain.Pair {
	var pairs []domain.Pair

	for _, front := range rows {
		if front.Role != domain.RoleFront || resolvedFronts[front.URL] {
			continue
		}

		if !cosmeticCategoryRegex.MatchString(front.CategoryPath) {
			continue
		}

		best, gap, ok := bestAvailable(cands[front.URL], usedBacks)
		if !ok {
			continue
		}

		marginOK := gap >= p.thresholds.CosmeticGap || best.CosmeticBackCue
		if best.PreScore >= p.thresholds.CosmeticScore && marginOK {
			pairs = append(pairs, p.accept(front, index[best.BackURL], best, confidenceDomainAuto, domain.ProvenanceDomainAuto, usedBacks, resolvedFronts))
		}
	}

	return pairs
}

// bestAvailable returns the best unused candidate and its margin over the
// next unused candidate. The runner-up score is -Inf when absent.
func bestAvailable(cands []domain.CandidateScore, usedBacks map[string]bool) (domain.CandidateScore, float64, bool) {
	available := make([]domain.CandidateScore, 0, len(cands))

	for _, c := range cands {
		if !usedBacks[c.BackURL] {
			available = append(available, c)
		}
	}

	if len(available) == 0 {
		return domain.CandidateScore{}, 0, false
	}

	gap := math.Inf(1)
	if len(available) > 1 {
		gap = available[0].PreScore - available[1].PreScore
	}

	return available[0], gap, true
}

func (p *Pairer) accept(
	front, back *domain.ImageFeatureRow,
	best domain.CandidateScore,
	confidence float64,
	prov domain.Provenance,
	usedBacks, resolvedFronts map[string]bool,
) domain.Pair {
	usedBacks[back.URL] = true
	resolvedFronts[front.URL] = true

	p.logger.Info().
		Str("front", front.URL).
		Str("back", back.URL).
		Float64("preScore", best.PreScore).
		Str("provenance", string(prov)).
		Msg("auto-paired")

	return pairing.Build(front, back, best.PreScore, confidence, prov, pairing.Evidence(best))
}

// CosmeticCategory reports whether the row's category path is in scope for
// the domain-specific pass.
func CosmeticCategory(row *domain.ImageFeatureRow) bool {
	return cosmeticCategoryRegex.MatchString(row.CategoryPath)
}
