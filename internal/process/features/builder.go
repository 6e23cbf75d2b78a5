// Package features normalizes raw vision output into comparable feature
// records for the pairing stages.
package features

import (
	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/core/domain"
	"github.com/snaplisting/photoset/internal/platform/observability"
)

// Builder turns vision records into ImageFeatureRows.
type Builder struct {
	maxTextChars int
	logger       *zerolog.Logger
}

// New creates a feature builder. maxTextChars caps the OCR snippet kept on
// each row.
func New(maxTextChars int, logger *zerolog.Logger) *Builder {
	return &Builder{
		maxTextChars: maxTextChars,
		logger:       logger,
	}
}

// Build normalizes the batch. Records without a URL are dropped with a log
// line, never failing the batch; duplicate URLs keep the first record so
// the identity key stays unique across the collection. After construction
// the one documented role transition is applied per group: a group holding
// exactly one front, one "other" and no back promotes the other to back.
func (b *Builder) Build(raw []domain.RawImage) []*domain.ImageFeatureRow {
	rows := make([]*domain.ImageFeatureRow, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, rec := range raw {
		if rec.URL == "" {
			observability.ImagesDroppedTotal.WithLabelValues("missing_url").Inc()
			b.logger.Warn().Str("brand", rec.Brand).Str("product", rec.Product).Msg("dropping vision record without URL")

			continue
		}

		if seen[rec.URL] {
			observability.ImagesDroppedTotal.WithLabelValues("duplicate_url").Inc()
			b.logger.Warn().Str("url", rec.URL).Msg("dropping duplicate vision record")

			continue
		}

		seen[rec.URL] = true

		rows = append(rows, b.buildRow(rec))
	}

	b.promoteLoneOthers(rows)

	return rows
}

func (b *Builder) buildRow(rec domain.RawImage) *domain.ImageFeatureRow {
	role := parseRole(rec.Role)

	return &domain.ImageFeatureRow{
		URL:           rec.URL,
		Role:          role,
		OriginalRole:  role,
		GroupID:       rec.GroupID,
		BrandRaw:      rec.Brand,
		BrandNorm:     normalizeBrand(rec.Brand),
		ProductRaw:    rec.Product,
		VariantRaw:    rec.Variant,
		ProductTokens: tokenize(rec.Product),
		VariantTokens: tokenize(rec.Variant),
		SizeCanonical: canonicalSize(rec.Size),
		ColorKey:      normalizeText(rec.Color),
		PackagingHint: packagingHint(rec.Packaging),
		CategoryPath:  rec.CategoryPath,
		TextExtracted: truncateText(rec.OCRText, b.maxTextChars),
	}
}

// promoteLoneOthers applies the other->back promotion. The transition is
// logged and OriginalRole keeps the pre-promotion value for audit.
func (b *Builder) promoteLoneOthers(rows []*domain.ImageFeatureRow) {
	groups := make(map[string][]*domain.ImageFeatureRow)

	for _, row := range rows {
		if row.GroupID != "" {
			groups[row.GroupID] = append(groups[row.GroupID], row)
		}
	}

	for groupID, members := range groups {
		var fronts, backs, others int

		var lone *domain.ImageFeatureRow

		for _, row := range members {
			switch row.Role {
			case domain.RoleFront:
				fronts++
			case domain.RoleBack:
				backs++
			case domain.RoleOther:
				others++
				lone = row
			}
		}

		if fronts == 1 && backs == 0 && others == 1 {
			lone.Role = domain.RoleBack
			b.logger.Info().
				Str("url", lone.URL).
				Str("group", groupID).
				Msg("promoted lone other to back")
		}
	}
}
