// Package handlers implements the HTTP endpoints: the WhatsApp webhook, the
// dashboard API and the job status endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-flow/internal/api/middleware"
	"github.com/dvloznov/expense-flow/internal/ingest"
	"github.com/dvloznov/expense-flow/internal/jobs"
)

// WebhookHandler handles inbound WhatsApp messages.
type WebhookHandler struct {
	publisher jobs.Publisher
	processor *ingest.Processor
	log       zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(publisher jobs.Publisher, processor *ingest.Processor, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		publisher: publisher,
		processor: processor,
		log:       log,
	}
}

// HandleWebhook handles POST /webhook. The message is validated, enqueued and
// processed asynchronously; the provider gets an immediate 202 with a job id.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload ingest.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := ingest.ParsePayload(&payload)
	if err != nil {
		h.log.Warn().Err(err).Msg("Rejected webhook payload")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.MessageJob{
		From:             msg.From,
		MessageType:      string(msg.Type),
		Text:             msg.Text,
		AudioURL:         msg.AudioURL,
		MessageTimestamp: msg.MessageTimestamp,
	}

	if err := h.publisher.PublishMessage(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue message job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue message")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("from", msg.From).Msg("Message job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// HandleSimulate handles POST /api/webhook/simulate. The message runs through
// the full pipeline synchronously so the dashboard can show the verdict.
func (h *WebhookHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var payload ingest.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := ingest.ParsePayload(&payload)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.processor.Process(r.Context(), msg)
	if err != nil {
		h.log.Error().Err(err).Msg("Simulated message processing failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
