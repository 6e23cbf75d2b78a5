package llm

import (
	"strings"

	"github.com/snaplisting/photoset/internal/core/domain"
)

// ImageSummary is the per-image feature digest sent to the model.
type ImageSummary struct {
	URL          string `json:"url"`
	Role         string `json:"role"`
	Brand        string `json:"brand,omitempty"`
	Product      string `json:"product,omitempty"`
	Variant      string `json:"variant,omitempty"`
	Size         string `json:"size,omitempty"`
	Color        string `json:"color,omitempty"`
	Packaging    string `json:"packaging,omitempty"`
	CategoryPath string `json:"categoryPath,omitempty"`
	Text         string `json:"text,omitempty"`
}

// CandidateSummary is one precomputed allowed back for a front.
type CandidateSummary struct {
	BackURL  string  `json:"backId"`
	PreScore float64 `json:"preScore"`
}

// FrontRequest is one undecided front plus its allowed backs.
type FrontRequest struct {
	Image        ImageSummary       `json:"image"`
	AllowedBacks []CandidateSummary `json:"allowedBacks"`
}

// TieBreakRequest is the constrained arbitration payload. The model must
// return, for every front, either a pair using one of its allowed backs or
// an explicit singleton whose reason starts with DeclinedReasonPrefix.
type TieBreakRequest struct {
	Fronts []FrontRequest `json:"fronts"`
	Backs  []ImageSummary `json:"backs"`
}

// LeftoverRequest is the unconstrained payload: any front may pair with
// any back in the set.
type LeftoverRequest struct {
	Fronts []ImageSummary `json:"fronts"`
	Backs  []ImageSummary `json:"backs"`
}

// DeclinedReasonPrefix is the required prefix for a conforming tie-breaker
// "no match" decision.
const DeclinedReasonPrefix = "declined despite candidates"

// Summarize condenses a feature row for the model payload.
func Summarize(row *domain.ImageFeatureRow) ImageSummary {
	return ImageSummary{
		URL:          row.URL,
		Role:         string(row.Role),
		Brand:        row.BrandRaw,
		Product:      strings.Join(row.ProductTokens.Sorted(), " "),
		Variant:      strings.Join(row.VariantTokens.Sorted(), " "),
		Size:         row.SizeCanonical,
		Color:        row.ColorKey,
		Packaging:    row.PackagingHint,
		CategoryPath: row.CategoryPath,
		Text:         row.TextExtracted,
	}
}
