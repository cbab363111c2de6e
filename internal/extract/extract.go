// Package extract turns free-form WhatsApp-style messages into structured
// expense candidates. Two engines implement the same contract: a model-backed
// primary engine and a deterministic regex fallback. The Extractor orchestrates
// them so that every input text maps to a well-formed candidate.
package extract

import "context"

// Candidate is the transient result of running an extraction engine over a
// message. It is never persisted directly; the caller maps an accepted
// candidate into an expense record.
type Candidate struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	IsExpense   bool    `json:"isExpense"`
}

// Engine is a single extraction strategy. Implementations return an error to
// signal that the strategy is unavailable for this input; the orchestrator
// decides what happens next.
type Engine interface {
	Extract(ctx context.Context, text string) (Candidate, error)
}

// postValidate corrects candidates where an engine asserted an expense without
// populating the required fields. Applied uniformly after either engine runs.
func postValidate(c Candidate) Candidate {
	if c.IsExpense && (c.Amount <= 0 || c.Description == "") {
		c.IsExpense = false
	}
	return c
}
