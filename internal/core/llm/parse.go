package llm

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/snaplisting/photoset/internal/core/errors"
)

// ParseDecision parses raw model output into a Decision. The raw text is
// tried as-is first; on failure, incidental formatting wrappers are
// stripped and the parse is attempted once more. A response that still
// does not parse is reported as ErrUnparsableResponse so callers can treat
// it as "the model returned nothing".
func ParseDecision(content string) (Decision, error) {
	if content == "" {
		return Decision{}, apperrors.ErrEmptyResponse
	}

	var decision Decision
	if err := json.Unmarshal([]byte(content), &decision); err == nil {
		return decision, nil
	}

	cleaned := extractJSON(content)
	if err := json.Unmarshal([]byte(cleaned), &decision); err != nil {
		return Decision{}, fmt.Errorf("%w: %s", apperrors.ErrUnparsableResponse, truncateForLog(content))
	}

	return decision, nil
}

const logSnippetMax = 200

func truncateForLog(s string) string {
	if len(s) <= logSnippetMax {
		return s
	}

	return s[:logSnippetMax] + "..."
}
