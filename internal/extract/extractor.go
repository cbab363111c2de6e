package extract

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Extractor orchestrates the two engines: the higher-fidelity primary engine
// is tried first and the deterministic fallback runs on any failure signal,
// strictly after the primary attempt, never speculatively. The result is
// post-validated, so callers always receive a well-formed candidate and never
// observe an error.
type Extractor struct {
	primary  Engine
	fallback *FallbackEngine
	log      zerolog.Logger
}

// NewExtractor creates the extraction pipeline. primary may be nil, in which
// case every message is handled by the deterministic fallback.
func NewExtractor(primary Engine, log zerolog.Logger) *Extractor {
	return &Extractor{
		primary:  primary,
		fallback: NewFallbackEngine(),
		log:      log,
	}
}

// Extract produces a candidate for the given message text. Empty or
// whitespace-only input short-circuits to a zero candidate without invoking
// any model.
func (x *Extractor) Extract(ctx context.Context, text string) Candidate {
	sanitized := strings.TrimSpace(text)
	if sanitized == "" {
		return Candidate{Amount: 0, Description: "", IsExpense: false}
	}

	if x.primary != nil {
		c, err := x.primary.Extract(ctx, sanitized)
		if err == nil {
			return postValidate(c)
		}
		x.log.Warn().Err(err).Msg("Primary extraction failed, falling back to regex engine")
	}

	c, _ := x.fallback.Extract(ctx, sanitized)
	return postValidate(c)
}
