// Package domain holds the core types shared across the pairing pipeline.
package domain

// Role classifies an image within a product photo set.
type Role string

// Role constants.
const (
	RoleFront Role = "front"
	RoleBack  Role = "back"
	RoleOther Role = "other"
)

// Provenance identifies which pipeline stage produced a pair.
type Provenance string

// Provenance constants.
const (
	ProvenanceAuto         Provenance = "auto"
	ProvenanceDomainAuto   Provenance = "domain-auto"
	ProvenanceModel        Provenance = "model"
	ProvenanceGlobalSolver Provenance = "global-solver"
	ProvenanceLLMLeftover  Provenance = "llm-leftover"
)

// RawImage is one per-image record from the vision service, already
// deduplicated by URL upstream. Group membership is a hint only.
type RawImage struct {
	URL          string `json:"url"`
	Role         string `json:"role,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Product      string `json:"product,omitempty"`
	Variant      string `json:"variant,omitempty"`
	Size         string `json:"size,omitempty"`
	Color        string `json:"color,omitempty"`
	Packaging    string `json:"packaging,omitempty"`
	CategoryPath string `json:"categoryPath,omitempty"`
	OCRText      string `json:"ocrText,omitempty"`
	GroupID      string `json:"groupId,omitempty"`
}

// ImageFeatureRow is the normalized feature record for one image.
// Role is mutable during the pipeline (the documented other->back
// promotion); OriginalRole never changes after construction.
type ImageFeatureRow struct {
	URL           string
	Role          Role
	OriginalRole  Role
	GroupID       string
	BrandRaw      string
	BrandNorm     string
	ProductRaw    string
	VariantRaw    string
	ProductTokens TokenSet
	VariantTokens TokenSet
	SizeCanonical string
	ColorKey      string
	PackagingHint string
	CategoryPath  string
	TextExtracted string
}

// CandidateScore is a directional scored edge from one front to one back.
type CandidateScore struct {
	BackURL         string  `json:"backUrl"`
	PreScore        float64 `json:"preScore"`
	BrandMatch      bool    `json:"brandMatch"`
	BrandMismatch   bool    `json:"brandMismatch"`
	ProdJaccard     float64 `json:"prodJaccard"`
	VarJaccard      float64 `json:"varJaccard"`
	SizeEq          bool    `json:"sizeEq"`
	PkgMatch        bool    `json:"pkgMatch"`
	PackagingBoost  bool    `json:"packagingBoost"`
	CatTailOverlap  bool    `json:"catTailOverlap"`
	CosmeticBackCue bool    `json:"cosmeticBackCue"`
}

// Pair is one front image matched with one back image.
type Pair struct {
	FrontURL   string     `json:"frontUrl"`
	BackURL    string     `json:"backUrl"`
	MatchScore float64    `json:"matchScore"`
	Brand      string     `json:"brand,omitempty"`
	Product    string     `json:"product,omitempty"`
	Variant    string     `json:"variant,omitempty"`
	SizeFront  string     `json:"sizeFront,omitempty"`
	SizeBack   string     `json:"sizeBack,omitempty"`
	Evidence   []string   `json:"evidence,omitempty"`
	Confidence float64    `json:"confidence"`
	Provenance Provenance `json:"provenance"`
}

// Product is the final grouping unit: a paired or solo front plus any
// extra angle shots attached by the extras resolver.
type Product struct {
	FrontURL string   `json:"frontUrl"`
	BackURL  string   `json:"backUrl,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	Product  string   `json:"product,omitempty"`
	Variant  string   `json:"variant,omitempty"`
	Extras   []string `json:"extras,omitempty"`
	Solo     bool     `json:"solo,omitempty"`
}

// Singleton is an image that ends the pipeline with no product
// assignment. Terminal; surfaced for manual review.
type Singleton struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ConfigSnapshot records the thresholds a run was executed with so the
// result is reproducible.
type ConfigSnapshot struct {
	ScoreThreshold         float64 `json:"scoreThreshold"`
	GapThreshold           float64 `json:"gapThreshold"`
	CosmeticScoreThreshold float64 `json:"cosmeticScoreThreshold"`
	CosmeticGapThreshold   float64 `json:"cosmeticGapThreshold"`
	TopKCandidates         int     `json:"topKCandidates"`
	MinLLMMatchScore       float64 `json:"minLlmMatchScore"`
	VisualSimilarityFloor  float64 `json:"visualSimilarityFloor"`
	ExtrasAttachFloor      float64 `json:"extrasAttachFloor"`
}

// Metrics captures per-stage counts for one pipeline run.
type Metrics struct {
	Images         int            `json:"images"`
	AutoPaired     int            `json:"autoPaired"`
	ModelPaired    int            `json:"modelPaired"`
	GlobalSolved   int            `json:"globalSolved"`
	LeftoverPaired int            `json:"leftoverPaired"`
	ExtrasAttached int            `json:"extrasAttached"`
	Singletons     int            `json:"singletons"`
	Config         ConfigSnapshot `json:"config"`
}

// Result is the complete output of one pipeline run. Every input image
// appears in exactly one of pairs, product extras, or singletons.
type Result struct {
	Pairs        []Pair      `json:"pairs"`
	Products     []Product   `json:"products"`
	Singletons   []Singleton `json:"singletons"`
	DebugSummary []string    `json:"debugSummary,omitempty"`
	Metrics      Metrics     `json:"metrics"`
}
