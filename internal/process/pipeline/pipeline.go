// Package pipeline orchestrates the pairing stages for one batch of
// images. Stages run strictly in order because each one consumes the
// shared used-backs / resolved-fronts state left by its predecessor.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/core/domain"
	"github.com/snaplisting/photoset/internal/core/embeddings"
	"github.com/snaplisting/photoset/internal/core/llm"
	"github.com/snaplisting/photoset/internal/platform/config"
	"github.com/snaplisting/photoset/internal/platform/observability"
	"github.com/snaplisting/photoset/internal/process/assign"
	"github.com/snaplisting/photoset/internal/process/autopair"
	"github.com/snaplisting/photoset/internal/process/candidates"
	"github.com/snaplisting/photoset/internal/process/extras"
	"github.com/snaplisting/photoset/internal/process/features"
	"github.com/snaplisting/photoset/internal/process/leftover"
	"github.com/snaplisting/photoset/internal/process/pairing"
	"github.com/snaplisting/photoset/internal/process/tiebreak"
)

// Pipeline runs the full pairing sequence. Batches are independent; a
// Pipeline is safe to reuse across concurrent batches because all mutable
// per-run state lives in the run itself.
type Pipeline struct {
	cfg      *config.Config
	llm      llm.Client
	embedder embeddings.Client
	logger   *zerolog.Logger
}

// New creates a pipeline.
func New(cfg *config.Config, llmClient llm.Client, embedder embeddings.Client, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		llm:      llmClient,
		embedder: embedder,
		logger:   logger,
	}
}

// run carries the per-batch state threaded through the stages.
type run struct {
	rows           []*domain.ImageFeatureRow
	usedBacks      map[string]bool
	resolvedFronts map[string]bool
	pairs          []domain.Pair
	singletons     []domain.Singleton
	debug          []string
	metrics        domain.Metrics
	logger         zerolog.Logger
}

func (r *run) note(format string, args ...any) {
	r.debug = append(r.debug, fmt.Sprintf(format, args...))
}

// Run executes the pipeline for one batch. The caller always receives a
// complete well-formed result except on contract violations, which abort
// with no partial result.
func (p *Pipeline) Run(ctx context.Context, raw []domain.RawImage) (*domain.Result, error) {
	start := time.Now()
	defer func() {
		observability.BatchDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	logger := p.logger.With().Str("correlation_id", uuid.New().String()).Logger()
	logger.Info().Int("images", len(raw)).Msg("starting pairing batch")

	r := &run{
		usedBacks:      make(map[string]bool),
		resolvedFronts: make(map[string]bool),
		logger:         logger,
	}

	r.rows = features.New(p.cfg.TextExtractMaxChars, &logger).Build(raw)
	r.metrics.Images = len(r.rows)
	r.metrics.Config = p.cfg.Snapshot()
	r.note("features: %d of %d records kept", len(r.rows), len(raw))

	if assign.Eligible(r.rows) {
		if err := p.runGlobalSolver(r); err != nil {
			return nil, err
		}
	} else if err := p.runHeuristicStages(ctx, r); err != nil {
		return nil, err
	}

	result := p.assemble(ctx, r)

	logger.Info().
		Int("pairs", len(result.Pairs)).
		Int("products", len(result.Products)).
		Int("singletons", len(result.Singletons)).
		Msg("pairing batch complete")

	return result, nil
}

// runGlobalSolver handles the two-shot case: the global optimum replaces
// auto-pairing, tie-breaking and leftover resolution entirely.
func (p *Pipeline) runGlobalSolver(r *run) error {
	pairs, err := assign.New(&r.logger).Solve(r.rows, r.usedBacks, r.resolvedFronts)
	if err != nil {
		return fmt.Errorf("global solver: %w", err)
	}

	r.pairs = append(r.pairs, pairs...)
	r.metrics.GlobalSolved = len(pairs)
	r.note("global solver: two-shot dataset, %d pairs", len(pairs))
	observability.PairsTotal.WithLabelValues(string(domain.ProvenanceGlobalSolver)).Add(float64(len(pairs)))

	return nil
}

func (p *Pipeline) runHeuristicStages(ctx context.Context, r *run) error {
	cands := candidates.Generate(r.rows, p.cfg.TopKCandidates)
	r.note("candidates: top-%d lists for %d fronts", p.cfg.TopKCandidates, len(cands))

	thresholds := autopair.Thresholds{
		Score:         p.cfg.ScoreThreshold,
		Gap:           p.cfg.GapThreshold,
		CosmeticScore: p.cfg.CosmeticScoreThreshold,
		CosmeticGap:   p.cfg.CosmeticGapThreshold,
	}

	autoPairs := autopair.New(thresholds, &r.logger).Run(r.rows, cands, r.usedBacks, r.resolvedFronts)
	r.pairs = append(r.pairs, autoPairs...)
	r.metrics.AutoPaired = len(autoPairs)
	r.note("auto-pair: %d pairs", len(autoPairs))

	for _, pair := range autoPairs {
		observability.PairsTotal.WithLabelValues(string(pair.Provenance)).Inc()
	}

	modelPairs, modelSingletons, err := tiebreak.New(p.llm, p.cfg.MinLLMMatchScore, &r.logger).
		Resolve(ctx, r.rows, cands, r.usedBacks, r.resolvedFronts)
	if err != nil {
		return err
	}

	r.pairs = append(r.pairs, modelPairs...)
	r.singletons = append(r.singletons, modelSingletons...)
	r.metrics.ModelPaired = len(modelPairs)
	r.note("tie-break: %d pairs, %d singletons", len(modelPairs), len(modelSingletons))
	observability.PairsTotal.WithLabelValues(string(domain.ProvenanceModel)).Add(float64(len(modelPairs)))

	leftoverPairs := leftover.New(p.llm, &r.logger).Resolve(ctx, r.rows, r.usedBacks, r.resolvedFronts)
	r.pairs = append(r.pairs, leftoverPairs...)
	r.metrics.LeftoverPaired = len(leftoverPairs)
	r.note("leftover: %d pairs", len(leftoverPairs))
	observability.PairsTotal.WithLabelValues(string(domain.ProvenanceLLMLeftover)).Add(float64(len(leftoverPairs)))

	return nil
}

// assemble turns pairs into products, resolves extras and remaining
// images, and finalizes metrics.
func (p *Pipeline) assemble(ctx context.Context, r *run) *domain.Result {
	index := pairing.Index(r.rows)
	products := make([]domain.Product, 0, len(r.pairs))

	for _, pair := range r.pairs {
		products = append(products, domain.Product{
			FrontURL: pair.FrontURL,
			BackURL:  pair.BackURL,
			Brand:    pair.Brand,
			Product:  pair.Product,
			Variant:  pair.Variant,
		})
	}

	assigned := make(map[string]bool, len(r.rows))

	for _, pair := range r.pairs {
		assigned[pair.FrontURL] = true
		assigned[pair.BackURL] = true
	}

	for _, s := range r.singletons {
		assigned[s.URL] = true
	}

	var unassigned []*domain.ImageFeatureRow

	for _, row := range r.rows {
		if !assigned[row.URL] {
			unassigned = append(unassigned, row)
		}
	}

	floors := extras.Floors{
		TextScore:        p.cfg.ExtrasAttachFloor,
		VisualSimilarity: p.cfg.VisualSimilarityFloor,
	}

	products, extraSingletons, attached := extras.New(p.embedder, floors, &r.logger).
		Attach(ctx, unassigned, index, products)

	r.singletons = append(r.singletons, extraSingletons...)
	r.metrics.ExtrasAttached = attached
	r.metrics.Singletons = len(r.singletons)
	r.note("extras: %d attached, %d solo products, %d singletons total",
		attached, countSolo(products), len(r.singletons))

	observability.ExtrasAttachedTotal.Add(float64(attached))
	observability.SingletonsTotal.Add(float64(len(r.singletons)))

	return &domain.Result{
		Pairs:        r.pairs,
		Products:     products,
		Singletons:   r.singletons,
		DebugSummary: r.debug,
		Metrics:      r.metrics,
	}
}

func countSolo(products []domain.Product) int {
	count := 0

	for _, p := range products {
		if p.Solo {
			count++
		}
	}

	return count
}
