package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/expense-flow/internal/api/handlers"
	"github.com/dvloznov/expense-flow/internal/api/middleware"
	"github.com/dvloznov/expense-flow/internal/audio"
	"github.com/dvloznov/expense-flow/internal/config"
	"github.com/dvloznov/expense-flow/internal/extract"
	"github.com/dvloznov/expense-flow/internal/ingest"
	"github.com/dvloznov/expense-flow/internal/jobs"
	"github.com/dvloznov/expense-flow/internal/jobs/inmemory"
	"github.com/dvloznov/expense-flow/internal/logger"
	"github.com/dvloznov/expense-flow/internal/store"
	"github.com/dvloznov/expense-flow/internal/transcribe"
)

// jobTimeout bounds one message's trip through transcription and extraction.
const jobTimeout = 2 * time.Minute

func main() {
	// Parse command-line flags
	port := flag.String("port", "", "HTTP server port (overrides EXPENSEFLOW_PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)

	// Open the record store
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer db.Close()

	// Build the extraction pipeline
	var primary extract.Engine
	if cfg.FallbackOnly {
		log.Warn().Msg("Running fallback-only, model-backed extraction disabled")
	} else {
		primary = extract.NewGeminiEngine(cfg.GeminiModel)
	}
	extractor := extract.NewExtractor(primary, log)

	var transcriber transcribe.Transcriber
	switch cfg.Transcriber {
	case "gemini":
		model := cfg.GeminiModel
		if model == "" {
			model = extract.DefaultModelName
		}
		transcriber = transcribe.NewGemini(model, audio.NewFetcher())
	default:
		log.Info().Msg("Using mock transcriber for audio messages")
		transcriber = transcribe.NewMock()
	}

	processor := ingest.NewProcessor(extractor, transcriber, db, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueSize, cfg.Workers, jobStore)

	ctx := context.Background()
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Create job handler for processing inbound messages. A rejected message is
	// a completed job, not a failed one; only infrastructure errors retry.
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		msgJob, ok := job.(*jobs.MessageJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", msgJob.JobID).
			Str("from", msgJob.From).
			Str("message_type", msgJob.MessageType).
			Msg("Processing message job")

		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()

		msg, err := ingest.ParsePayload(&ingest.Payload{
			From:             msgJob.From,
			MessageType:      msgJob.MessageType,
			Text:             msgJob.Text,
			AudioURL:         msgJob.AudioURL,
			MessageTimestamp: msgJob.MessageTimestamp,
		})
		if err != nil {
			return err
		}

		result, err := processor.Process(jobCtx, msg)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", msgJob.JobID).
				Str("from", msgJob.From).
				Msg("Message processing failed")
			return err
		}

		msgJob.Transcript = result.Transcript
		if result.Stored {
			msgJob.ExpenseID = result.Expense.ID
		} else {
			msgJob.Rejected = true
		}

		log.Info().
			Str("job_id", msgJob.JobID).
			Bool("stored", result.Stored).
			Msg("Message job completed")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Int("workers", cfg.Workers).Msg("Starting message workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Session token for the admin dashboard, rotated on restart.
	sessionToken := uuid.New().String()
	authToken := sessionToken
	if cfg.AdminPassword == "" {
		log.Warn().Msg("No admin password configured - API authentication disabled")
		authToken = ""
	}

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(jobQueue, processor, log)
	expensesHandler := handlers.NewExpensesHandler(db, log)
	settingsHandler := handlers.NewSettingsHandler(db, log)
	authHandler := handlers.NewAuthHandler(cfg.AdminUser, cfg.AdminPassword, sessionToken, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Webhook endpoints
	mux.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webhookHandler.HandleWebhook(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/webhook/simulate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webhookHandler.HandleSimulate(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Expenses endpoints
	mux.HandleFunc("/api/expenses", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			expensesHandler.ListExpenses(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses/export", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			expensesHandler.ExportExpenses(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			// Extract expense ID from path
			id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
			if id == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Expense ID is required")
				return
			}
			expensesHandler.DeleteExpense(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			expensesHandler.GetStats(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Settings endpoints
	mux.HandleFunc("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settingsHandler.GetSettings(w, r)
		case http.MethodPut:
			settingsHandler.UpdateSettings(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Auth endpoint
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.HandleLogin(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(authToken)(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
