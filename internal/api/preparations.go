package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SaschaWenning/cocktailbot-core/internal/engine"
	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
)

// prepareRequest is the body for POST /prepare.
type prepareRequest struct {
	RecipeID string `json:"recipe_id"`
	TargetML int    `json:"target_ml"`
}

// shotRequest is the body for POST /prepare/shot.
type shotRequest struct {
	IngredientID string `json:"ingredient_id"`
	VolumeML     int    `json:"volume_ml"`
}

// handlePrepare starts a drink preparation. The call blocks until the
// drink is finished or fails; clients watching /events see the state
// transitions live.
func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.RecipeID == "" {
		writeBadRequest(w, "recipe_id is required")
		return
	}

	result, err := s.engine.Prepare(r.Context(), req.RecipeID, req.TargetML)
	if err != nil {
		s.writeEngineError(w, result, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handlePrepareShot pours a single ingredient.
func (s *Server) handlePrepareShot(w http.ResponseWriter, r *http.Request) {
	var req shotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.IngredientID == "" {
		writeBadRequest(w, "ingredient_id is required")
		return
	}

	result, err := s.engine.PrepareShot(r.Context(), req.IngredientID, req.VolumeML)
	if err != nil {
		s.writeEngineError(w, result, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAvailability runs the stock check without touching hardware.
// The response is always 200; "cannot be made" is a result, not an error.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.RecipeID == "" {
		writeBadRequest(w, "recipe_id is required")
		return
	}

	result, err := s.engine.CheckAvailability(r.Context(), req.RecipeID, req.TargetML)
	if err != nil {
		switch {
		case errors.Is(err, recipe.ErrNotFound):
			writeNotFound(w, "recipe not found")
		case errors.Is(err, recipe.ErrInvalidVolume), errors.Is(err, recipe.ErrInvalidRecipe):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("availability check failed", "recipe", req.RecipeID, "error", err)
			writeInternalError(w, "availability check failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListPreparations returns the most recent preparation records.
func (s *Server) handleListPreparations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.engine.ListPreparations(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing preparations failed", "error", err)
		writeInternalError(w, "failed to list preparations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"preparations": records,
		"count":        len(records),
	})
}

// handleGetPreparation returns a single preparation record.
func (s *Server) handleGetPreparation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.engine.GetPreparation(r.Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			writeNotFound(w, "preparation not found")
			return
		}
		s.logger.Error("fetching preparation failed", "id", id, "error", err)
		writeInternalError(w, "failed to fetch preparation")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// writeEngineError maps engine errors to HTTP responses.
//
// A failed preparation still carries a result (missing ingredients,
// partial pump runs); it rides along in the error body so the UI can
// show what actually happened.
func (s *Server) writeEngineError(w http.ResponseWriter, result *engine.Result, err error) {
	body := map[string]any{"error": err.Error()}
	if result != nil {
		body["result"] = result
	}

	switch {
	case errors.Is(err, engine.ErrBusy):
		writeConflict(w, "a preparation is already in progress")
	case errors.Is(err, engine.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, body)
	case errors.Is(err, recipe.ErrNotFound):
		writeNotFound(w, "recipe not found")
	case errors.Is(err, recipe.ErrInvalidVolume), errors.Is(err, recipe.ErrInvalidRecipe):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, engine.ErrPumpNotCalibrated):
		writeJSON(w, http.StatusConflict, body)
	default:
		// Dispense fault or cancellation: the drink is incomplete and
		// the glass may be partially full.
		s.logger.Error("preparation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, body)
	}
}
