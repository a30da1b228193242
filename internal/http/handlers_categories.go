package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	category, err := s.ledger.CreateCategory(r.Context(), core.Category{Name: req.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.ledger.GetCategory(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Category")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var upd core.CategoryUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	category, err := s.ledger.UpdateCategory(r.Context(), r.PathValue("id"), upd)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Category")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Categories are shared, so a delete cascades into every user's
// transactions and budgets; all cached views are dropped.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.DeleteCategory(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.writeNotFound(w, "Category")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.dashCache.DeletePrefix("")
	s.pngCache.DeletePrefix("")
	w.WriteHeader(http.StatusNoContent)
}
