package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/genai"
)

// DefaultModelName is the default Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

// candidateSchema constrains the model to return exactly the three candidate
// fields.
var candidateSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"amount": {
			Type:        genai.TypeNumber,
			Description: "Valor numérico da despesa",
		},
		"description": {
			Type:        genai.TypeString,
			Description: "O que foi comprado ou pago",
		},
		"isExpense": {
			Type:        genai.TypeBoolean,
			Description: "Se o texto representa um gasto válido",
		},
	},
	Required: []string{"amount", "description", "isExpense"},
}

// GeminiEngine extracts expense candidates with a Gemini model constrained to
// a strict JSON response schema. Unlike the fallback it can reason over full
// sentence semantics, which is why multiplier phrasings ("2 ingressos por 120")
// resolve to the total on this path.
type GeminiEngine struct {
	model string
}

// NewGeminiEngine creates a Gemini-backed engine for the given model name,
// defaulting to DefaultModelName.
func NewGeminiEngine(model string) *GeminiEngine {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiEngine{model: model}
}

// Extract implements Engine. Any failure (client construction, model call,
// malformed output) is returned to the caller, which decides whether to fall
// back; this engine never invents a candidate on error.
func (e *GeminiEngine) Extract(ctx context.Context, text string) (Candidate, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("GeminiEngine.Extract: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: text}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    candidateSchema,
	}

	var raw string
	err = retry.Do(
		func() error {
			resp, err := client.Models.GenerateContent(ctx, e.model, contents, cfg)
			if err != nil {
				return err
			}
			if resp.Text() == "" {
				return fmt.Errorf("empty response from model")
			}
			raw = resp.Text()
			return nil
		},
		retry.Attempts(2),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Candidate{}, fmt.Errorf("GeminiEngine.Extract: generate content: %w", err)
	}

	return decodeCandidate(raw)
}

// decodeCandidate parses model output into a candidate. A response missing any
// of the three required fields is rejected so the caller can fall back.
func decodeCandidate(raw string) (Candidate, error) {
	clean := cleanModelJSON(raw)

	var fields struct {
		Amount      *float64 `json:"amount"`
		Description *string  `json:"description"`
		IsExpense   *bool    `json:"isExpense"`
	}
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return Candidate{}, fmt.Errorf("decodeCandidate: unmarshal JSON: %w\nraw response: %s", err, raw)
	}
	if fields.Amount == nil || fields.Description == nil || fields.IsExpense == nil {
		return Candidate{}, fmt.Errorf("decodeCandidate: response missing required fields: %s", clean)
	}

	return Candidate{
		Amount:      *fields.Amount,
		Description: *fields.Description,
		IsExpense:   *fields.IsExpense,
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding prose the model
// sometimes adds despite the instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}' if junk remains around the
	// object.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
