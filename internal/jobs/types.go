// Package jobs defines the asynchronous unit of work behind the webhook:
// processing one inbound WhatsApp message.
package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeProcessMessage represents one webhook message to run through the
	// extraction pipeline.
	JobTypeProcessMessage JobType = "process_message"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// MessageJob carries one webhook message through the queue, plus the outcome
// of processing it.
type MessageJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Message payload, validated before enqueueing.
	From             string `json:"from"`
	MessageType      string `json:"message_type"`
	Text             string `json:"text,omitempty"`
	AudioURL         string `json:"audio_url,omitempty"`
	MessageTimestamp string `json:"message_timestamp"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	// Outcome, populated by the worker on completion. ExpenseID is set when
	// the message was accepted and persisted; Rejected is true when the
	// pipeline produced a non-expense verdict.
	ExpenseID  string `json:"expense_id,omitempty"`
	Rejected   bool   `json:"rejected,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *MessageJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *MessageJob) GetType() JobType {
	return JobTypeProcessMessage
}

// GetStatus implements the Job interface.
func (j *MessageJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue. The
// abstraction allows swapping the in-memory queue for a broker later.
type Publisher interface {
	// PublishMessage publishes a message-processing job.
	PublishMessage(ctx context.Context, job *MessageJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs; handler is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. It returns an error if the
// job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	SaveJob(ctx context.Context, job *MessageJob) error
	GetJob(ctx context.Context, jobID string) (*MessageJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*MessageJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// From filters jobs by sender phone number.
	From string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
