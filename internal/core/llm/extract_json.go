package llm

import (
	"encoding/json"
	"strings"
)

// extractJSON tries to extract one JSON value from a response that might
// carry extra prose or markdown fences. Arrays are preferred over objects.
// Bracket scanning is string-aware so brackets inside string literals do
// not confuse the match. Returns the input unchanged when nothing valid is
// found.
func extractJSON(text string) string {
	cleaned := strings.TrimSpace(stripMarkdownFences(text))

	if json.Valid([]byte(cleaned)) {
		return cleaned
	}

	if candidate := scanBalanced(cleaned, '[', ']'); candidate != "" {
		return candidate
	}

	if candidate := scanBalanced(cleaned, '{', '}'); candidate != "" {
		return candidate
	}

	return text
}

// stripMarkdownFences removes ```json ... ``` style wrappers.
func stripMarkdownFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}

// scanBalanced finds the first balanced open..close run that parses as JSON.
func scanBalanced(text string, open, close byte) string {
	for start := 0; start < len(text); start++ {
		if text[start] != open {
			continue
		}

		if end := matchBalanced(text, start, open, close); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}

	return ""
}

// matchBalanced returns the index of the close byte balancing text[start],
// skipping string literals, or -1.
func matchBalanced(text string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
