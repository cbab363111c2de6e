package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-flow/internal/extract"
	"github.com/dvloznov/expense-flow/internal/ingest"
	"github.com/dvloznov/expense-flow/internal/jobs"
	"github.com/dvloznov/expense-flow/internal/store"
)

type mockPublisher struct {
	publishFunc func(ctx context.Context, job *jobs.MessageJob) error
	published   []*jobs.MessageJob
}

func (m *mockPublisher) PublishMessage(ctx context.Context, job *jobs.MessageJob) error {
	if m.publishFunc != nil {
		if err := m.publishFunc(ctx, job); err != nil {
			return err
		}
	}
	if job.JobID == "" {
		job.JobID = "test-job-id"
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockExpenseStore struct {
	listFunc   func() ([]*store.Expense, error)
	deleteFunc func(id string) error
	statsFunc  func(now time.Time, days int) (*store.DashboardStats, error)
}

func (m *mockExpenseStore) ListExpenses() ([]*store.Expense, error) { return m.listFunc() }
func (m *mockExpenseStore) DeleteExpense(id string) error           { return m.deleteFunc(id) }
func (m *mockExpenseStore) Stats(now time.Time, days int) (*store.DashboardStats, error) {
	return m.statsFunc(now, days)
}

type stubExtractor struct {
	candidate extract.Candidate
}

func (s *stubExtractor) Extract(ctx context.Context, text string) extract.Candidate {
	return s.candidate
}

type stubRecorder struct {
	inserted []*store.Expense
}

func (s *stubRecorder) InsertExpense(e *store.Expense) error {
	e.ID = "generated-id"
	s.inserted = append(s.inserted, e)
	return nil
}

func openSettingsDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHandleWebhook_Accepted(t *testing.T) {
	publisher := &mockPublisher{}
	h := NewWebhookHandler(publisher, nil, zerolog.Nop())

	body := `{"from":"5511999990000","message_type":"text","text":"Gastei 18 reais em pastel","message_timestamp":"2026-08-29T12:00:00Z"}`
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["job_id"] == "" {
		t.Error("response has no job_id")
	}
	if resp["status"] != string(jobs.JobStatusPending) {
		t.Errorf("response status = %q, want pending", resp["status"])
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(publisher.published))
	}
	job := publisher.published[0]
	if job.From != "5511999990000" || job.Text != "Gastei 18 reais em pastel" || job.MessageType != "text" {
		t.Errorf("published job = %+v", job)
	}
}

func TestHandleWebhook_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing from", `{"message_type":"text","text":"oi"}`},
		{"audio without url", `{"from":"551","message_type":"audio"}`},
		{"unsupported type", `{"from":"551","message_type":"sticker"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &mockPublisher{}
			h := NewWebhookHandler(publisher, nil, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.HandleWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(publisher.published) != 0 {
				t.Error("invalid payload must not be enqueued")
			}
		})
	}
}

func TestHandleSimulate(t *testing.T) {
	extractor := &stubExtractor{candidate: extract.Candidate{Amount: 18, Description: "pastel", IsExpense: true}}
	recorder := &stubRecorder{}
	processor := ingest.NewProcessor(extractor, nil, recorder, zerolog.Nop())
	h := NewWebhookHandler(&mockPublisher{}, processor, zerolog.Nop())

	body := `{"from":"5511999990000","message_type":"text","text":"Gastei 18 reais em pastel"}`
	rec := httptest.NewRecorder()
	h.HandleSimulate(rec, httptest.NewRequest(http.MethodPost, "/api/webhook/simulate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result ingest.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Stored || result.Candidate.Amount != 18 {
		t.Errorf("result = %+v", result)
	}
	if len(recorder.inserted) != 1 {
		t.Errorf("simulate stored %d expenses, want 1", len(recorder.inserted))
	}
}

func TestListExpenses_EmptyIsArray(t *testing.T) {
	h := NewExpensesHandler(&mockExpenseStore{
		listFunc: func() ([]*store.Expense, error) { return nil, nil },
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListExpenses(rec, httptest.NewRequest(http.MethodGet, "/api/expenses", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestDeleteExpense_NotFound(t *testing.T) {
	h := NewExpensesHandler(&mockExpenseStore{
		deleteFunc: func(id string) error { return store.ErrNotFound },
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.DeleteExpense(rec, httptest.NewRequest(http.MethodDelete, "/api/expenses/nope", nil), "nope")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExportExpenses_CSV(t *testing.T) {
	h := NewExpensesHandler(&mockExpenseStore{
		listFunc: func() ([]*store.Expense, error) {
			return []*store.Expense{
				{
					ID:               "abc",
					PhoneNumber:      "5511999990000",
					Amount:           18,
					Description:      "pastel",
					Source:           store.SourceText,
					MessageTimestamp: "2026-08-29T12:00:00Z",
					CreatedAt:        "2026-08-29T12:00:01Z",
				},
			}, nil
		},
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExportExpenses(rec, httptest.NewRequest(http.MethodGet, "/api/expenses/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=expenses-") {
		t.Errorf("content disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv has %d lines, want header plus one row", len(lines))
	}
	if lines[0] != "id,phone_number,amount,description,source,message_timestamp,created_at" {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "18.00") || !strings.Contains(lines[1], "pastel") {
		t.Errorf("csv row = %q", lines[1])
	}
}

func TestGetSettings_MasksToken(t *testing.T) {
	db := openSettingsDB(t)
	if err := db.SaveSettings(&store.EvolutionSettings{
		BaseURL:      "https://evolution.example.com",
		Token:        "super-secret-token",
		InstanceName: "expenseflow",
	}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	h := NewSettingsHandler(db, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetSettings(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var cfg store.EvolutionSettings
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if strings.Contains(cfg.Token, "secret") {
		t.Errorf("token leaked: %q", cfg.Token)
	}
	if !strings.HasSuffix(cfg.Token, "oken") {
		t.Errorf("masked token = %q, want last four characters visible", cfg.Token)
	}
}

func TestUpdateSettings(t *testing.T) {
	db := openSettingsDB(t)
	h := NewSettingsHandler(db, zerolog.Nop())

	body := `{"base_url":"https://evolution.example.com","token":"t0ken","instance_name":"expenseflow"}`
	rec := httptest.NewRecorder()
	h.UpdateSettings(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	saved, err := db.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if saved.Token != "t0ken" || saved.InstanceName != "expenseflow" {
		t.Errorf("saved settings = %+v", saved)
	}
}

func TestHandleLogin(t *testing.T) {
	h := NewAuthHandler("admin", "hunter2", "session-token", zerolog.Nop())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantToken  bool
	}{
		{"valid credentials", `{"username":"admin","password":"hunter2"}`, http.StatusOK, true},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized, false},
		{"wrong username", `{"username":"root","password":"hunter2"}`, http.StatusUnauthorized, false},
		{"malformed body", `{`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantToken {
				var resp map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp["token"] != "session-token" {
					t.Errorf("token = %q", resp["token"])
				}
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ab", "**"},
		{"abcd", "****"},
		{"abcdefgh", "****efgh"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.in); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
