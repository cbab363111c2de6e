// Package ingest turns one inbound WhatsApp message into an expense record.
// It validates the webhook payload, transcribes audio messages, runs the
// extraction pipeline and persists accepted candidates.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-flow/internal/extract"
	"github.com/dvloznov/expense-flow/internal/store"
	"github.com/dvloznov/expense-flow/internal/transcribe"
)

// Payload is the wire shape of an inbound webhook message.
type Payload struct {
	From             string `json:"from"`
	MessageType      string `json:"message_type"`
	Text             string `json:"text,omitempty"`
	AudioURL         string `json:"audio_url,omitempty"`
	MessageTimestamp string `json:"message_timestamp"`
}

// Message is a validated inbound message ready for processing.
type Message struct {
	From             string
	Type             store.Source
	Text             string
	AudioURL         string
	MessageTimestamp string
}

// ParsePayload validates a webhook payload and converts it to a Message.
func ParsePayload(p *Payload) (*Message, error) {
	if p.From == "" {
		return nil, fmt.Errorf("ParsePayload: from is required")
	}
	if p.MessageTimestamp != "" {
		if _, err := time.Parse(time.RFC3339, p.MessageTimestamp); err != nil {
			return nil, fmt.Errorf("ParsePayload: message_timestamp is not RFC3339: %w", err)
		}
	}

	switch p.MessageType {
	case "text":
		if p.Text == "" {
			return nil, fmt.Errorf("ParsePayload: text message without text")
		}
		if p.AudioURL != "" {
			return nil, fmt.Errorf("ParsePayload: text message carries audio_url")
		}
		return &Message{
			From:             p.From,
			Type:             store.SourceText,
			Text:             p.Text,
			MessageTimestamp: p.MessageTimestamp,
		}, nil
	case "audio":
		if p.AudioURL == "" {
			return nil, fmt.Errorf("ParsePayload: audio message without audio_url")
		}
		if p.Text != "" {
			return nil, fmt.Errorf("ParsePayload: audio message carries text")
		}
		return &Message{
			From:             p.From,
			Type:             store.SourceAudio,
			AudioURL:         p.AudioURL,
			MessageTimestamp: p.MessageTimestamp,
		}, nil
	default:
		return nil, fmt.Errorf("ParsePayload: unsupported message_type %q", p.MessageType)
	}
}

// Result is the outcome of processing one message.
type Result struct {
	Candidate  extract.Candidate `json:"candidate"`
	Stored     bool              `json:"stored"`
	Expense    *store.Expense    `json:"expense,omitempty"`
	Transcript string            `json:"transcript,omitempty"`
}

// Extractor produces an expense candidate from message text.
type Extractor interface {
	Extract(ctx context.Context, text string) extract.Candidate
}

// Recorder persists accepted expense records.
type Recorder interface {
	InsertExpense(e *store.Expense) error
}

// Processor runs the transcribe-extract-persist pipeline.
type Processor struct {
	extractor   Extractor
	transcriber transcribe.Transcriber
	recorder    Recorder
	log         zerolog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(extractor Extractor, transcriber transcribe.Transcriber, recorder Recorder, log zerolog.Logger) *Processor {
	return &Processor{
		extractor:   extractor,
		transcriber: transcriber,
		recorder:    recorder,
		log:         log,
	}
}

// Process handles one validated message. Audio messages are transcribed first;
// a transcription failure aborts processing. A candidate that is not an
// expense is reported but never persisted.
func (p *Processor) Process(ctx context.Context, msg *Message) (*Result, error) {
	text := msg.Text
	result := &Result{}

	if msg.Type == store.SourceAudio {
		transcript, err := p.transcriber.Transcribe(ctx, msg.AudioURL)
		if err != nil {
			return nil, fmt.Errorf("Process: transcribe audio: %w", err)
		}
		p.log.Debug().Str("from", msg.From).Str("transcript", transcript).Msg("Audio transcribed")
		text = transcript
		result.Transcript = transcript
	}

	result.Candidate = p.extractor.Extract(ctx, text)

	if !result.Candidate.IsExpense {
		p.log.Info().Str("from", msg.From).Msg("Message rejected as non-expense")
		return result, nil
	}

	expense := &store.Expense{
		PhoneNumber:      msg.From,
		Amount:           result.Candidate.Amount,
		Description:      result.Candidate.Description,
		Source:           msg.Type,
		MessageTimestamp: msg.MessageTimestamp,
	}
	if err := p.recorder.InsertExpense(expense); err != nil {
		return nil, fmt.Errorf("Process: insert expense: %w", err)
	}

	result.Stored = true
	result.Expense = expense

	p.log.Info().
		Str("from", msg.From).
		Float64("amount", expense.Amount).
		Str("description", expense.Description).
		Str("expense_id", expense.ID).
		Msg("Expense recorded")

	return result, nil
}
