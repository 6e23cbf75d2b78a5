// Package leftover gives completely unpaired fronts and backs one
// unconstrained LLM pass: any front may pair with any back in the set.
package leftover

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/core/domain"
	"github.com/snaplisting/photoset/internal/core/llm"
	"github.com/snaplisting/photoset/internal/process/pairing"
)

const confidenceLeftover = 0.90

// Resolver runs the unconstrained leftover pass.
type Resolver struct {
	client llm.Client
	logger *zerolog.Logger
}

// New creates a leftover resolver.
func New(client llm.Client, logger *zerolog.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Resolve issues one unconstrained request when both unpaired sets are
// nonempty. There is no allowed-backs contract here; the only structural
// checks are that proposed URLs exist in the leftover sets and no back is
// reused. Any failure degrades to "no pairs": unresolved images fall
// through to the extras resolver.
func (r *Resolver) Resolve(
	ctx context.Context,
	rows []*domain.ImageFeatureRow,
	usedBacks, resolvedFronts map[string]bool,
) []domain.Pair {
	index := pairing.Index(rows)
	request, frontSet, backSet := buildRequest(rows, usedBacks, resolvedFronts)

	if len(request.Fronts) == 0 || len(request.Backs) == 0 {
		return nil
	}

	decision, err := r.client.ResolvePairs(ctx, llm.KindLeftover, llm.LeftoverSystemPrompt, request)
	if err != nil {
		r.logger.Warn().Err(err).Msg("leftover llm pass failed, images fall through unpaired")

		return nil
	}

	var pairs []domain.Pair

	for _, p := range decision.Pairs {
		if !frontSet[p.FrontURL] || !backSet[p.BackURL] || usedBacks[p.BackURL] || resolvedFronts[p.FrontURL] {
			r.logger.Warn().Str("front", p.FrontURL).Str("back", p.BackURL).Msg("ignoring leftover pair outside the leftover set")

			continue
		}

		usedBacks[p.BackURL] = true
		resolvedFronts[p.FrontURL] = true

		evidence := []string{fmt.Sprintf("leftover model decision, score=%.2f", p.MatchScore)}
		if p.Reason != "" {
			evidence = append(evidence, p.Reason)
		}

		r.logger.Info().Str("front", p.FrontURL).Str("back", p.BackURL).Msg("leftover-paired")

		pairs = append(pairs, pairing.Build(index[p.FrontURL], index[p.BackURL], p.MatchScore, confidenceLeftover, domain.ProvenanceLLMLeftover, evidence))
	}

	return pairs
}

func buildRequest(
	rows []*domain.ImageFeatureRow,
	usedBacks, resolvedFronts map[string]bool,
) (llm.LeftoverRequest, map[string]bool, map[string]bool) {
	var request llm.LeftoverRequest

	frontSet := make(map[string]bool)
	backSet := make(map[string]bool)

	for _, row := range rows {
		switch {
		case row.Role == domain.RoleFront && !resolvedFronts[row.URL]:
			frontSet[row.URL] = true
			request.Fronts = append(request.Fronts, llm.Summarize(row))
		case row.Role == domain.RoleBack && !usedBacks[row.URL]:
			backSet[row.URL] = true
			request.Backs = append(request.Backs, llm.Summarize(row))
		}
	}

	return request, frontSet, backSet
}
