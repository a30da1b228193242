package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context(), s.userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string           `json:"name"`
		Type core.AccountType `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	account, err := s.ledger.CreateAccount(r.Context(), core.Account{
		UserID: s.userID(r),
		Name:   req.Name,
		Type:   req.Type,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.ledger.GetAccount(r.Context(), s.userID(r), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Account")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var upd core.AccountUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	account, err := s.ledger.UpdateAccount(r.Context(), s.userID(r), r.PathValue("id"), upd)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Account")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Deleting an account removes its transactions too, so cached dashboards
// for the user are dropped.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r)
	err := s.ledger.DeleteAccount(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Account")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	activity, err := s.ledger.AccountActivity(r.Context(), s.userID(r), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Account")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}
