package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// parsePeriod reads the mandatory month and year query parameters.
func parsePeriod(r *http.Request) (month, year int, err error) {
	monthStr := r.URL.Query().Get("month")
	yearStr := r.URL.Query().Get("year")
	if monthStr == "" || yearStr == "" {
		return 0, 0, errors.New("month and year query parameters are required")
	}
	month, err = strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, core.ErrInvalidMonth
	}
	year, err = strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, core.ErrInvalidYear
	}
	return month, year, nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	budgets, err := s.ledger.ListBudgets(r.Context(), s.userID(r), month, year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.ledger.GetBudget(r.Context(), s.userID(r), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Budget")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// handleSetBudget creates or replaces the budget for its period key.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID string          `json:"category_id"`
		Type       core.BudgetType `json:"budget_type"`
		Amount     core.Money      `json:"amount"`
		Month      int             `json:"month"`
		Year       int             `json:"year"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	budget, err := s.ledger.SetBudget(r.Context(), core.Budget{
		UserID:     s.userID(r),
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Amount:     req.Amount,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var upd core.BudgetUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	budget, err := s.ledger.UpdateBudget(r.Context(), s.userID(r), r.PathValue("id"), upd)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Budget")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.DeleteBudget(r.Context(), s.userID(r), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Budget")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Budget deleted successfully"})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	reports, err := s.ledger.BudgetStatuses(r.Context(), s.userID(r), month, year, time.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
