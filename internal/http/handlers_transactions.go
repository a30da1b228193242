package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// transactionRequest is the wire shape for creates and updates. Dates come
// in as strings so both RFC 3339 timestamps and bare dates are accepted.
type transactionRequest struct {
	Amount      *core.Money           `json:"amount"`
	Date        *string               `json:"date"`
	Description *string               `json:"description"`
	CategoryID  *string               `json:"category_id"`
	AccountID   *string               `json:"account_id"`
	Type        *core.TransactionType `json:"transaction_type"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.ledger.ListTransactions(r.Context(), s.userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	txn := core.Transaction{UserID: s.userID(r)}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		txn.Date = date
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}
	if req.CategoryID != nil {
		txn.CategoryID = *req.CategoryID
	}
	if req.AccountID != nil {
		txn.AccountID = *req.AccountID
	}
	if req.Type != nil {
		txn.Type = *req.Type
	}

	created, err := s.ledger.CreateTransaction(r.Context(), txn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateUser(txn.UserID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.ledger.GetTransaction(r.Context(), s.userID(r), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Transaction")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	upd := core.TransactionUpdate{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Type:        req.Type,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		upd.Date = &date
	}

	userID := s.userID(r)
	txn, err := s.ledger.UpdateTransaction(r.Context(), userID, r.PathValue("id"), upd)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Transaction")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)
	err := s.ledger.DeleteTransaction(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Transaction")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Transaction deleted successfully"})
}
