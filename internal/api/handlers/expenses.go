package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-flow/internal/api/middleware"
	"github.com/dvloznov/expense-flow/internal/store"
)

// ExpenseStore is the subset of the record store the expense endpoints need.
type ExpenseStore interface {
	ListExpenses() ([]*store.Expense, error)
	DeleteExpense(id string) error
	Stats(now time.Time, days int) (*store.DashboardStats, error)
}

// ExpensesHandler handles expense-related endpoints.
type ExpensesHandler struct {
	store ExpenseStore
	log   zerolog.Logger
}

// NewExpensesHandler creates a new expenses handler.
func NewExpensesHandler(store ExpenseStore, log zerolog.Logger) *ExpensesHandler {
	return &ExpensesHandler{
		store: store,
		log:   log,
	}
}

// ListExpenses handles GET /api/expenses
func (h *ExpensesHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list expenses")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}

	// Return array directly for frontend compatibility
	if expenses == nil {
		expenses = []*store.Expense{}
	}
	middleware.WriteJSON(w, http.StatusOK, expenses)
}

// DeleteExpense handles DELETE /api/expenses/{id}
func (h *ExpensesHandler) DeleteExpense(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteExpense(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Expense not found")
			return
		}
		h.log.Error().Err(err).Str("expense_id", id).Msg("Failed to delete expense")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	h.log.Info().Str("expense_id", id).Msg("Expense deleted")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ExportExpenses handles GET /api/expenses/export
func (h *ExpensesHandler) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to export expenses")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export expenses")
		return
	}

	filename := fmt.Sprintf("expenses-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "phone_number", "amount", "description", "source", "message_timestamp", "created_at"})
	for _, e := range expenses {
		cw.Write([]string{
			e.ID,
			e.PhoneNumber,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Description,
			string(e.Source),
			e.MessageTimestamp,
			e.CreatedAt,
		})
	}
	cw.Flush()
}

// GetStats handles GET /api/stats
func (h *ExpensesHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(time.Now(), 14)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stats")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, stats)
}
