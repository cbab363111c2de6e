package extract

import "context"

// FallbackEngine is the deterministic engine used when the model-backed engine
// is unavailable or errors. It is pure and total: every input maps to a
// well-formed candidate and Extract never fails.
type FallbackEngine struct{}

// NewFallbackEngine creates the deterministic fallback engine.
func NewFallbackEngine() *FallbackEngine {
	return &FallbackEngine{}
}

// Extract implements Engine. The returned error is always nil.
func (e *FallbackEngine) Extract(_ context.Context, text string) (Candidate, error) {
	match, ok := ParseAmount(text)
	if !ok {
		// No numeric token anywhere: keep the full text as description so the
		// caller can still see what was said.
		return Candidate{Amount: 0, Description: text, IsExpense: false}, nil
	}

	return Candidate{
		Amount:      match.Value,
		Description: NormalizeDescription(text, match.Token),
		IsExpense:   Classify(match.Value),
	}, nil
}
