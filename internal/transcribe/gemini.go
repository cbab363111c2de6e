package transcribe

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// transcribePrompt asks the model for a bare transcription, no commentary.
const transcribePrompt = "Transcreva o áudio a seguir em português do Brasil. Responda apenas com o texto transcrito, sem comentários."

// AudioFetcher retrieves the raw audio bytes behind a message reference.
type AudioFetcher interface {
	Fetch(ctx context.Context, ref string) (data []byte, mimeType string, err error)
}

// Gemini transcribes voice notes by sending the raw audio bytes to a Gemini
// model as an inline part.
type Gemini struct {
	model   string
	fetcher AudioFetcher
}

// NewGemini creates a Gemini-backed transcriber.
func NewGemini(model string, fetcher AudioFetcher) *Gemini {
	return &Gemini{model: model, fetcher: fetcher}
}

// Transcribe implements Transcriber. An empty transcription is an error, so
// downstream extraction never confuses a failed transcription with an empty
// text message.
func (g *Gemini) Transcribe(ctx context.Context, audioRef string) (string, error) {
	data, mimeType, err := g.fetcher.Fetch(ctx, audioRef)
	if err != nil {
		return "", fmt.Errorf("Gemini.Transcribe: fetch audio %s: %w", audioRef, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Gemini.Transcribe: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: transcribePrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini.Transcribe: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Gemini.Transcribe: empty transcription for %s", audioRef)
	}
	return text, nil
}
