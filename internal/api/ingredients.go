package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SaschaWenning/cocktailbot-core/internal/ingredient"
)

// ingredientUpdateRequest is the body for PATCH /ingredients/{id}.
type ingredientUpdateRequest struct {
	Name      *string `json:"name,omitempty"`
	Alcoholic *bool   `json:"alcoholic,omitempty"`
}

// handleListIngredients returns all ingredients ordered by name.
func (s *Server) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.ingredients.List(r.Context())
	if err != nil {
		s.logger.Error("listing ingredients failed", "error", err)
		writeInternalError(w, "failed to list ingredients")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ingredients": ingredients,
		"count":       len(ingredients),
	})
}

// handleGetIngredient returns a single ingredient.
func (s *Server) handleGetIngredient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ing, err := s.ingredients.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ingredient.ErrNotFound) {
			writeNotFound(w, "ingredient not found")
			return
		}
		s.logger.Error("fetching ingredient failed", "id", id, "error", err)
		writeInternalError(w, "failed to fetch ingredient")
		return
	}

	writeJSON(w, http.StatusOK, ing)
}

// handleCreateIngredient creates a new ingredient.
func (s *Server) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var ing ingredient.Ingredient
	if err := json.NewDecoder(r.Body).Decode(&ing); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if ing.ID == "" || ing.Name == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "id and name are required")
		return
	}

	if err := s.ingredients.Create(r.Context(), &ing); err != nil {
		if errors.Is(err, ingredient.ErrExists) {
			writeConflict(w, "ingredient already exists")
			return
		}
		s.logger.Error("creating ingredient failed", "id", ing.ID, "error", err)
		writeInternalError(w, "failed to create ingredient")
		return
	}

	s.logger.Info("ingredient created", "id", ing.ID, "name", ing.Name)
	writeJSON(w, http.StatusCreated, ing)
}

// handleUpdateIngredient applies a partial update to an ingredient.
func (s *Server) handleUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ingredientUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	ing, err := s.ingredients.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ingredient.ErrNotFound) {
			writeNotFound(w, "ingredient not found")
			return
		}
		s.logger.Error("fetching ingredient failed", "id", id, "error", err)
		writeInternalError(w, "failed to fetch ingredient")
		return
	}

	if req.Name != nil {
		ing.Name = *req.Name
	}
	if req.Alcoholic != nil {
		ing.Alcoholic = *req.Alcoholic
	}

	if err := s.ingredients.Update(r.Context(), ing); err != nil {
		s.logger.Error("updating ingredient failed", "id", id, "error", err)
		writeInternalError(w, "failed to update ingredient")
		return
	}

	writeJSON(w, http.StatusOK, ing)
}

// handleDeleteIngredient removes an ingredient.
func (s *Server) handleDeleteIngredient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.ingredients.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ingredient.ErrNotFound) {
			writeNotFound(w, "ingredient not found")
			return
		}
		s.logger.Error("deleting ingredient failed", "id", id, "error", err)
		writeInternalError(w, "failed to delete ingredient")
		return
	}

	s.logger.Info("ingredient deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
