// Package tiebreak delegates ambiguous fronts to the LLM, restricted to
// the precomputed candidate lists, and validates the response against a
// strict output contract.
package tiebreak

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/core/domain"
	apperrors "github.com/snaplisting/photoset/internal/core/errors"
	"github.com/snaplisting/photoset/internal/core/llm"
	"github.com/snaplisting/photoset/internal/platform/observability"
	"github.com/snaplisting/photoset/internal/process/pairing"
)

const confidenceModel = 0.85

// Resolver runs the constrained arbitration stage.
type Resolver struct {
	client   llm.Client
	minScore float64
	logger   *zerolog.Logger
}

// New creates a tie-break resolver. minScore is the floor below which an
// otherwise valid model pair is demoted to a singleton.
func New(client llm.Client, minScore float64, logger *zerolog.Logger) *Resolver {
	return &Resolver{client: client, minScore: minScore, logger: logger}
}

// Resolve arbitrates every unresolved front that still has at least one
// unused candidate. Contract violations abort the batch: they indicate an
// upstream integration bug, not a data problem. A response that stays
// unparsable after recovery is treated as "the model returned nothing" and
// every requested front falls through to the leftover stage.
func (r *Resolver) Resolve(
	ctx context.Context,
	rows []*domain.ImageFeatureRow,
	cands map[string][]domain.CandidateScore,
	usedBacks, resolvedFronts map[string]bool,
) ([]domain.Pair, []domain.Singleton, error) {
	request, allowed := r.buildRequest(rows, cands, usedBacks, resolvedFronts)
	if len(request.Fronts) == 0 {
		return nil, nil, nil
	}

	decision, err := r.client.ResolvePairs(ctx, llm.KindTieBreak, llm.TieBreakSystemPrompt, request)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnparsableResponse) || errors.Is(err, apperrors.ErrEmptyResponse) {
			r.logger.Warn().Err(err).Msg("tie-break response unusable, fronts fall through to leftover stage")

			return nil, nil, nil
		}

		return nil, nil, fmt.Errorf("tie-break llm call: %w", err)
	}

	return r.applyDecision(decision, rows, allowed, usedBacks, resolvedFronts)
}

// buildRequest assembles the payload and the per-front allowed-back sets
// used for validation. Already-used backs are filtered out.
func (r *Resolver) buildRequest(
	rows []*domain.ImageFeatureRow,
	cands map[string][]domain.CandidateScore,
	usedBacks, resolvedFronts map[string]bool,
) (llm.TieBreakRequest, map[string]map[string]bool) {
	index := pairing.Index(rows)
	allowed := make(map[string]map[string]bool)

	var request llm.TieBreakRequest

	backSeen := make(map[string]bool)

	for _, front := range rows {
		if front.Role != domain.RoleFront || resolvedFronts[front.URL] {
			continue
		}

		var summaries []llm.CandidateSummary

		for _, c := range cands[front.URL] {
			if usedBacks[c.BackURL] {
				continue
			}

			summaries = append(summaries, llm.CandidateSummary{BackURL: c.BackURL, PreScore: c.PreScore})

			if !backSeen[c.BackURL] {
				backSeen[c.BackURL] = true
				request.Backs = append(request.Backs, llm.Summarize(index[c.BackURL]))
			}
		}

		if len(summaries) == 0 {
			continue
		}

		allowed[front.URL] = make(map[string]bool, len(summaries))
		for _, s := range summaries {
			allowed[front.URL][s.BackURL] = true
		}

		request.Fronts = append(request.Fronts, llm.FrontRequest{
			Image:        llm.Summarize(front),
			AllowedBacks: summaries,
		})
	}

	sort.Slice(request.Backs, func(i, j int) bool { return request.Backs[i].URL < request.Backs[j].URL })

	return request, allowed
}

//nolint:gocognit // the contract checks read best as one linear validation pass
func (r *Resolver) applyDecision(
	decision llm.Decision,
	rows []*domain.ImageFeatureRow,
	allowed map[string]map[string]bool,
	usedBacks, resolvedFronts map[string]bool,
) ([]domain.Pair, []domain.Singleton, error) {
	index := pairing.Index(rows)
	decided := make(map[string]bool, len(allowed))
	backsInDecision := make(map[string]bool)

	// Structural validation first, over the raw decision. Low-score
	// demotion happens after, since it is a data judgement, not a
	// contract matter.
	for _, p := range decision.Pairs {
		backs, requested := allowed[p.FrontURL]

		switch {
		case !requested:
			return nil, nil, r.violation("pair references front not in request: %s", p.FrontURL)
		case decided[p.FrontURL]:
			return nil, nil, r.violation("two decisions for front: %s", p.FrontURL)
		case !backs[p.BackURL]:
			return nil, nil, r.violation("back %s not in allowed list for front %s", p.BackURL, p.FrontURL)
		case usedBacks[p.BackURL]:
			return nil, nil, r.violation("back already used by an earlier stage: %s", p.BackURL)
		case backsInDecision[p.BackURL]:
			return nil, nil, r.violation("back reused across two pairs: %s", p.BackURL)
		}

		decided[p.FrontURL] = true
		backsInDecision[p.BackURL] = true
	}

	for _, s := range decision.Singletons {
		if _, requested := allowed[s.URL]; !requested {
			return nil, nil, r.violation("singleton references front not in request: %s", s.URL)
		}

		if decided[s.URL] {
			return nil, nil, r.violation("two decisions for front: %s", s.URL)
		}

		if !strings.HasPrefix(s.Reason, llm.DeclinedReasonPrefix) {
			return nil, nil, r.violation("singleton for front %s lacks conforming reason: %q", s.URL, s.Reason)
		}

		decided[s.URL] = true
	}

	for frontURL := range allowed {
		if !decided[frontURL] {
			return nil, nil, r.violation("no decision for front: %s", frontURL)
		}
	}

	return r.collectDecisions(decision, index, usedBacks, resolvedFronts), r.collectSingletons(decision, resolvedFronts), nil
}

// collectDecisions converts validated pairs, demoting those under the
// score floor: low-confidence model pairs are empirically more often wrong
// than "no match".
func (r *Resolver) collectDecisions(
	decision llm.Decision,
	index map[string]*domain.ImageFeatureRow,
	usedBacks, resolvedFronts map[string]bool,
) []domain.Pair {
	var pairs []domain.Pair

	for _, p := range decision.Pairs {
		if p.MatchScore < r.minScore {
			continue
		}

		front := index[p.FrontURL]
		back := index[p.BackURL]

		usedBacks[p.BackURL] = true
		resolvedFronts[p.FrontURL] = true

		evidence := []string{fmt.Sprintf("model decision, score=%.2f", p.MatchScore)}
		if p.Reason != "" {
			evidence = append(evidence, p.Reason)
		}

		r.logger.Info().
			Str("front", p.FrontURL).
			Str("back", p.BackURL).
			Float64("score", p.MatchScore).
			Msg("model-paired")

		pairs = append(pairs, pairing.Build(front, back, p.MatchScore, confidenceModel, domain.ProvenanceModel, evidence))
	}

	return pairs
}

func (r *Resolver) collectSingletons(decision llm.Decision, resolvedFronts map[string]bool) []domain.Singleton {
	var singletons []domain.Singleton

	for _, p := range decision.Pairs {
		if p.MatchScore >= r.minScore {
			continue
		}

		resolvedFronts[p.FrontURL] = true

		reason := fmt.Sprintf("declined: llm pair score=%.2f below floor %.2f", p.MatchScore, r.minScore)
		r.logger.Info().Str("front", p.FrontURL).Float64("score", p.MatchScore).Msg("model pair demoted to singleton")

		singletons = append(singletons, domain.Singleton{URL: p.FrontURL, Reason: reason})
	}

	for _, s := range decision.Singletons {
		resolvedFronts[s.URL] = true

		singletons = append(singletons, domain.Singleton{URL: s.URL, Reason: s.Reason})
	}

	return singletons
}

func (r *Resolver) violation(format string, args ...any) error {
	observability.ContractViolationsTotal.Inc()

	detail := fmt.Sprintf(format, args...)
	r.logger.Error().Str("detail", detail).Msg("tie-break contract violation")

	return fmt.Errorf("%w: %s", apperrors.ErrContractViolation, detail)
}
