package domain

import "sort"

// TokenSet is a set of normalized word tokens.
type TokenSet map[string]struct{}

// NewTokenSet builds a set from a slice of tokens.
func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		if t != "" {
			s[t] = struct{}{}
		}
	}

	return s
}

// Contains reports whether the token is in the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the tokens in ascending order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}

	sort.Strings(out)

	return out
}

// Jaccard returns |A∩B| / |A∪B|, or 0 when both sets are empty.
func (s TokenSet) Jaccard(other TokenSet) float64 {
	if len(s) == 0 && len(other) == 0 {
		return 0
	}

	intersection := 0

	for t := range s {
		if other.Contains(t) {
			intersection++
		}
	}

	union := len(s) + len(other) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
