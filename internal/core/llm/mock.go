package llm

import "context"

// mockClient implements Client for offline runs. It pairs nothing: every
// tie-break front gets a conforming decline so contract validation passes,
// and the leftover pass returns no matches.
type mockClient struct{}

// NewMock creates a mock arbitration client.
func NewMock() Client {
	return &mockClient{}
}

func (m *mockClient) ResolvePairs(_ context.Context, _, _ string, payload any) (Decision, error) {
	req, ok := payload.(TieBreakRequest)
	if !ok {
		return Decision{}, nil
	}

	decision := Decision{Singletons: make([]SingletonDecision, 0, len(req.Fronts))}
	for _, front := range req.Fronts {
		decision.Singletons = append(decision.Singletons, SingletonDecision{
			URL:    front.Image.URL,
			Reason: DeclinedReasonPrefix + ": mock arbitration client",
		})
	}

	return decision, nil
}

// Ensure mockClient implements Client interface.
var _ Client = (*mockClient)(nil)
