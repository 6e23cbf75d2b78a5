package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PairsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoset_pairs_total",
		Help: "The total number of front/back pairs produced, by stage",
	}, []string{"stage"})

	SingletonsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoset_singletons_total",
		Help: "The total number of images ending a run without a product assignment",
	})

	ExtrasAttachedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoset_extras_attached_total",
		Help: "The total number of extra angle shots attached to products",
	})

	ImagesDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoset_images_dropped_total",
		Help: "Total number of input records dropped before scoring, by reason",
	}, []string{"reason"})

	ContractViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photoset_contract_violations_total",
		Help: "Total number of tie-breaker responses that violated the allowed-backs contract",
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photoset_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	EmbeddingLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photoset_embedding_lookups_total",
		Help: "Embedding service lookups, by outcome (hit, miss, error)",
	}, []string{"outcome"})

	BatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "photoset_batch_duration_seconds",
		Help:    "Duration in seconds to run the full pairing pipeline for a batch",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})
)
