package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/expense-flow/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.MessageJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestQueue_PublishAndProcess(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 2, store)
	defer queue.Close()

	processed := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.(*jobs.MessageJob)
		if !ok {
			return errors.New("unexpected job type")
		}
		processed <- msg.Text
		return nil
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.MessageJob{
		From:             "5511999990000",
		MessageType:      "text",
		Text:             "Gastei 18 reais em pastel",
		MessageTimestamp: "2026-08-29T12:00:00Z",
	}
	if err := queue.PublishMessage(context.Background(), job); err != nil {
		t.Fatalf("PublishMessage failed: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("PublishMessage did not assign a job id")
	}

	select {
	case text := <-processed:
		if text != "Gastei 18 reais em pastel" {
			t.Errorf("handler saw text %q", text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was never invoked")
	}

	final := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if final.Error != "" {
		t.Errorf("completed job carries error %q", final.Error)
	}
}

func TestQueue_FailedJobEndsFailed(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		return errors.New("boom")
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.MessageJob{
		From:        "5511999990000",
		MessageType: "text",
		Text:        "x",
		MaxRetries:  -1, // no retries
	}
	if err := queue.PublishMessage(context.Background(), job); err != nil {
		t.Fatalf("PublishMessage failed: %v", err)
	}

	final := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if final.Error == "" {
		t.Error("failed job carries no error message")
	}
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	queue := NewQueue(1, 1, NewStore())
	if err := queue.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	err := queue.PublishMessage(context.Background(), &jobs.MessageJob{Text: "x"})
	if err == nil {
		t.Fatal("expected error publishing to a closed queue")
	}
}

func TestStore_ListJobsFilterAndOrder(t *testing.T) {
	store := NewStore()
	base := time.Now()

	seed := []*jobs.MessageJob{
		{JobID: "a", From: "111", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(-2 * time.Minute)},
		{JobID: "b", From: "222", Status: jobs.JobStatusFailed, CreatedAt: base.Add(-1 * time.Minute)},
		{JobID: "c", From: "111", Status: jobs.JobStatusCompleted, CreatedAt: base},
	}
	for _, j := range seed {
		if err := store.SaveJob(context.Background(), j); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
	}

	all, err := store.ListJobs(context.Background(), jobs.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(all) != 3 || all[0].JobID != "c" || all[2].JobID != "a" {
		t.Errorf("ListJobs order wrong: %v", ids(all))
	}

	fromFiltered, err := store.ListJobs(context.Background(), jobs.JobFilter{From: "111"})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(fromFiltered) != 2 {
		t.Errorf("ListJobs(From=111) returned %d jobs, want 2", len(fromFiltered))
	}

	limited, err := store.ListJobs(context.Background(), jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(limited) != 1 || limited[0].JobID != "c" {
		t.Errorf("ListJobs(Limit=1) = %v, want [c]", ids(limited))
	}
}

func ids(js []*jobs.MessageJob) []string {
	out := make([]string, len(js))
	for i, j := range js {
		out[i] = j.JobID
	}
	return out
}
