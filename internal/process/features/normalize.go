package features

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/snaplisting/photoset/internal/core/domain"
)

var (
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s.]+`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)

	// NFD + strip combining marks + NFC, so "Frucht-Müsli" and
	// "Frucht Musli" tokenize identically.
	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// stopWords are dropped from product/variant token sets. Includes basic
// English stop words plus retail packaging noise that carries no matching
// signal.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"new": true, "improved": true, "value": true, "pack": true,
	"size": true, "each": true, "per": true, "bonus": true,
}

func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}

	s = punctuationRegex.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, ".", " ")

	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

func tokenize(s string) domain.TokenSet {
	set := domain.TokenSet{}

	for _, tok := range strings.Fields(normalizeText(s)) {
		if stopWords[tok] {
			continue
		}

		set[tok] = struct{}{}
	}

	return set
}

// normalizeBrand lower-cases and strips punctuation so "L'Oréal" and
// "loreal" compare equal.
func normalizeBrand(s string) string {
	return strings.ReplaceAll(normalizeText(s), " ", "")
}

// sizeUnitAliases folds unit spellings into one canonical form.
var sizeUnitAliases = map[string]string{
	"ct":     "count",
	"cnt":    "count",
	"ounce":  "oz",
	"ounces": "oz",
	"floz":   "fl oz",
	"litre":  "l",
	"liter":  "l",
	"liters": "l",
	"grams":  "g",
	"gram":   "g",
}

// canonicalSize normalizes size/quantity strings: "60 Count" -> "60 count",
// "16.9 FL OZ" -> "16.9 fl oz". Returns "" when no size was extracted.
func canonicalSize(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	if lowered == "" {
		return ""
	}

	lowered = strings.ReplaceAll(lowered, "fl. oz.", "fl oz")
	lowered = strings.ReplaceAll(lowered, "fl.oz", "fl oz")

	fields := strings.Fields(whitespaceRegex.ReplaceAllString(lowered, " "))
	for i, f := range fields {
		trimmed := strings.TrimSuffix(f, ".")
		if alias, ok := sizeUnitAliases[trimmed]; ok {
			fields[i] = alias
		} else {
			fields[i] = trimmed
		}
	}

	return strings.Join(fields, " ")
}

// packagingTypes is the closed set of recognized packaging hints.
var packagingTypes = map[string]string{
	"bottle": "bottle",
	"jar":    "jar",
	"tub":    "tub",
	"pouch":  "pouch",
	"box":    "box",
	"sachet": "sachet",
	"tube":   "tube",
	"can":    "can",
}

// packagingHint maps a free-form packaging guess onto the closed hint set,
// defaulting to "unknown".
func packagingHint(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	if hint, ok := packagingTypes[lowered]; ok {
		return hint
	}

	// The vision model sometimes qualifies ("plastic bottle", "glass jar").
	for _, tok := range strings.Fields(lowered) {
		if hint, ok := packagingTypes[tok]; ok {
			return hint
		}
	}

	return "unknown"
}

func parseRole(s string) domain.Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front":
		return domain.RoleFront
	case "back":
		return domain.RoleBack
	default:
		return domain.RoleOther
	}
}

func truncateText(s string, max int) string {
	s = whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")

	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
