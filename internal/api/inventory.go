package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SaschaWenning/cocktailbot-core/internal/inventory"
)

// inventoryUpdateRequest is the body for PATCH /inventory/{ingredientId}.
// Both fields are optional; absent fields keep their current value.
type inventoryUpdateRequest struct {
	CapacityML *float64 `json:"capacity_ml,omitempty"`
	CurrentML  *float64 `json:"current_ml,omitempty"`
}

// handleListInventory returns all tracked inventory levels.
func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	levels, err := s.ledger.GetAll(r.Context())
	if err != nil {
		s.logger.Error("listing inventory failed", "error", err)
		writeInternalError(w, "failed to list inventory")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"levels": levels,
		"count":  len(levels),
	})
}

// handleGetInventory returns the level for one ingredient. An
// ingredient never seen before gets a first-touch level (full
// capacity class default, zero content).
func (s *Server) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	ingredientID := chi.URLParam(r, "ingredientId")

	level, err := s.ledger.Get(r.Context(), ingredientID)
	if err != nil {
		s.logger.Error("fetching inventory level failed", "ingredient", ingredientID, "error", err)
		writeInternalError(w, "failed to fetch inventory level")
		return
	}

	writeJSON(w, http.StatusOK, level)
}

// handleUpdateInventory sets capacity and/or current level.
func (s *Server) handleUpdateInventory(w http.ResponseWriter, r *http.Request) {
	ingredientID := chi.URLParam(r, "ingredientId")

	var req inventoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.CapacityML == nil && req.CurrentML == nil {
		writeBadRequest(w, "capacity_ml or current_ml is required")
		return
	}

	var level *inventory.Level
	var err error

	if req.CapacityML != nil {
		level, err = s.ledger.SetCapacity(r.Context(), ingredientID, *req.CapacityML)
		if err != nil {
			s.writeInventoryError(w, ingredientID, err)
			return
		}
	}
	if req.CurrentML != nil {
		level, err = s.ledger.SetLevel(r.Context(), ingredientID, *req.CurrentML)
		if err != nil {
			s.writeInventoryError(w, ingredientID, err)
			return
		}
	}

	s.broadcastInventory(level)
	writeJSON(w, http.StatusOK, level)
}

// handleRefillInventory marks an ingredient's reservoir as refilled to
// capacity.
func (s *Server) handleRefillInventory(w http.ResponseWriter, r *http.Request) {
	ingredientID := chi.URLParam(r, "ingredientId")

	level, err := s.ledger.Refill(r.Context(), ingredientID)
	if err != nil {
		s.writeInventoryError(w, ingredientID, err)
		return
	}

	s.logger.Info("inventory refilled", "ingredient", ingredientID, "capacity_ml", level.CapacityML)
	s.broadcastInventory(level)
	writeJSON(w, http.StatusOK, level)
}

// writeInventoryError maps ledger errors to HTTP responses.
func (s *Server) writeInventoryError(w http.ResponseWriter, ingredientID string, err error) {
	switch {
	case errors.Is(err, inventory.ErrInvalidVolume), errors.Is(err, inventory.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		writeNotFound(w, "inventory level not found")
	default:
		s.logger.Error("inventory update failed", "ingredient", ingredientID, "error", err)
		writeInternalError(w, "inventory update failed")
	}
}

// broadcastInventory pushes a level change to WebSocket clients.
func (s *Server) broadcastInventory(level *inventory.Level) {
	if s.hub == nil || level == nil {
		return
	}
	s.hub.Broadcast(ChannelInventory, level)
}
