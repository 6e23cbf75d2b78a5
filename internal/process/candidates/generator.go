package candidates

import (
	"sort"
	"sync"

	"github.com/snaplisting/photoset/internal/core/domain"
)

// Generate scores every back/other image against each front and returns
// the top-K candidate lists keyed by front URL. Scoring only reads the
// feature rows, so fronts are scored in parallel; ordering is still
// deterministic (descending preScore, ties broken by ascending back URL).
func Generate(rows []*domain.ImageFeatureRow, topK int) map[string][]domain.CandidateScore {
	var fronts, backs []*domain.ImageFeatureRow

	for _, row := range rows {
		switch row.Role {
		case domain.RoleFront:
			fronts = append(fronts, row)
		case domain.RoleBack, domain.RoleOther:
			backs = append(backs, row)
		}
	}

	result := make(map[string][]domain.CandidateScore, len(fronts))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, front := range fronts {
		wg.Add(1)

		go func(front *domain.ImageFeatureRow) {
			defer wg.Done()

			scored := scoreAll(front, backs, topK)

			mu.Lock()
			result[front.URL] = scored
			mu.Unlock()
		}(front)
	}

	wg.Wait()

	return result
}

func scoreAll(front *domain.ImageFeatureRow, backs []*domain.ImageFeatureRow, topK int) []domain.CandidateScore {
	scored := make([]domain.CandidateScore, 0, len(backs))

	for _, back := range backs {
		if back.URL == front.URL {
			continue
		}

		scored = append(scored, Score(front, back))
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].PreScore != scored[j].PreScore {
			return scored[i].PreScore > scored[j].PreScore
		}

		return scored[i].BackURL < scored[j].BackURL
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}

	return scored
}
