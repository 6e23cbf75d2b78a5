// Package assign implements the two-shot global solver: a maximum-weight
// one-to-one assignment between all fronts and all backs, used when the
// batch is known to contain exactly one front and one back per product.
package assign

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/snaplisting/photoset/internal/core/domain"
	apperrors "github.com/snaplisting/photoset/internal/core/errors"
	"github.com/snaplisting/photoset/internal/process/candidates"
	"github.com/snaplisting/photoset/internal/process/pairing"
)

const solverConfidence = 0.98

// Eligible reports the two-shot trigger condition: equal nonzero front and
// back counts, and nothing else in the batch.
func Eligible(rows []*domain.ImageFeatureRow) bool {
	var fronts, backs int

	for _, row := range rows {
		switch row.Role {
		case domain.RoleFront:
			fronts++
		case domain.RoleBack:
			backs++
		}
	}

	return fronts > 0 && fronts == backs && fronts+backs == len(rows)
}

// Solver computes the global optimal assignment.
type Solver struct {
	logger *zerolog.Logger
}

// New creates a solver.
func New(logger *zerolog.Logger) *Solver {
	return &Solver{logger: logger}
}

// Solve pairs every front with exactly one back, maximizing the total
// match score over the full pairwise matrix (no top-K truncation). A
// locally greedy pass can mis-assign ambiguous cases that the global
// optimum resolves; this mode never produces singletons.
func (s *Solver) Solve(rows []*domain.ImageFeatureRow, usedBacks, resolvedFronts map[string]bool) ([]domain.Pair, error) {
	var fronts, backs []*domain.ImageFeatureRow

	for _, row := range rows {
		switch row.Role {
		case domain.RoleFront:
			fronts = append(fronts, row)
		case domain.RoleBack:
			backs = append(backs, row)
		}
	}

	if len(fronts) == 0 || len(fronts) != len(backs) {
		return nil, fmt.Errorf("%w: %d fronts, %d backs", apperrors.ErrNotSquare, len(fronts), len(backs))
	}

	// Deterministic matrix layout.
	sort.Slice(fronts, func(i, j int) bool { return fronts[i].URL < fronts[j].URL })
	sort.Slice(backs, func(i, j int) bool { return backs[i].URL < backs[j].URL })

	n := len(fronts)
	scores := mat.NewDense(n, n, nil)
	breakdown := make([][]domain.CandidateScore, n)

	for i, front := range fronts {
		breakdown[i] = make([]domain.CandidateScore, n)

		for j, back := range backs {
			cs := candidates.Score(front, back)
			breakdown[i][j] = cs
			scores.Set(i, j, cs.PreScore)
		}
	}

	assignment := maximize(scores)

	pairs := make([]domain.Pair, 0, n)

	for i, j := range assignment {
		front := fronts[i]
		back := backs[j]
		cs := breakdown[i][j]

		usedBacks[back.URL] = true
		resolvedFronts[front.URL] = true

		s.logger.Info().
			Str("front", front.URL).
			Str("back", back.URL).
			Float64("score", cs.PreScore).
			Msg("globally solved pair")

		pairs = append(pairs, pairing.Build(front, back, cs.PreScore, solverConfidence, domain.ProvenanceGlobalSolver, pairing.Evidence(cs)))
	}

	return pairs, nil
}
