package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
)

// handleListRecipes returns all recipes ordered by name.
func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipes.List(r.Context())
	if err != nil {
		s.logger.Error("listing recipes failed", "error", err)
		writeInternalError(w, "failed to list recipes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// handleGetRecipe returns a single recipe.
func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.recipes.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			writeNotFound(w, "recipe not found")
			return
		}
		s.logger.Error("fetching recipe failed", "id", id, "error", err)
		writeInternalError(w, "failed to fetch recipe")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleCreateRecipe creates a new recipe.
func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if msg := validateRecipe(&rec); msg != "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	if err := s.recipes.Create(r.Context(), &rec); err != nil {
		if errors.Is(err, recipe.ErrExists) {
			writeConflict(w, "recipe already exists")
			return
		}
		s.logger.Error("creating recipe failed", "id", rec.ID, "error", err)
		writeInternalError(w, "failed to create recipe")
		return
	}

	s.logger.Info("recipe created", "id", rec.ID, "name", rec.Name)
	writeJSON(w, http.StatusCreated, rec)
}

// handleUpdateRecipe replaces a recipe definition.
func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rec recipe.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	rec.ID = id

	if msg := validateRecipe(&rec); msg != "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	if err := s.recipes.Update(r.Context(), &rec); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			writeNotFound(w, "recipe not found")
			return
		}
		s.logger.Error("updating recipe failed", "id", id, "error", err)
		writeInternalError(w, "failed to update recipe")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecipe removes a recipe.
func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.recipes.Delete(r.Context(), id); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			writeNotFound(w, "recipe not found")
			return
		}
		s.logger.Error("deleting recipe failed", "id", id, "error", err)
		writeInternalError(w, "failed to delete recipe")
		return
	}

	s.logger.Info("recipe deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// validateRecipe checks a recipe payload and returns a message for the
// first problem found, or "" when the recipe is acceptable.
func validateRecipe(rec *recipe.Recipe) string {
	if rec.ID == "" {
		return "id is required"
	}
	if rec.Name == "" {
		return "name is required"
	}
	if len(rec.Lines) == 0 {
		return "at least one line is required"
	}
	for i, line := range rec.Lines {
		if line.IngredientID == "" {
			return fmt.Sprintf("lines[%d].ingredient_id is required", i)
		}
		if line.Mode != recipe.ModeAutomatic && line.Mode != recipe.ModeManual {
			return fmt.Sprintf("lines[%d].mode must be automatic or manual", i)
		}
		if line.VolumeML < 0 {
			return fmt.Sprintf("lines[%d].volume_ml must not be negative", i)
		}
	}
	if rec.NominalTotalML() <= 0 {
		return "total nominal volume must be positive"
	}
	return ""
}
