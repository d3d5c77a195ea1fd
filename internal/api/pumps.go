package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SaschaWenning/cocktailbot-core/internal/actuator"
	"github.com/SaschaWenning/cocktailbot-core/internal/engine"
	"github.com/SaschaWenning/cocktailbot-core/internal/pump"
)

// pumpUpdateRequest is the body for PATCH /pumps/{id}. All fields are
// optional; absent fields keep their current value.
type pumpUpdateRequest struct {
	Pin            *int    `json:"pin,omitempty"`
	IngredientID   *string `json:"ingredient_id,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
	VentDurationMS *int    `json:"vent_duration_ms,omitempty"`
}

// calibrateRequest is the body for POST /pumps/{id}/calibrate.
type calibrateRequest struct {
	DurationMS int     `json:"duration_ms"`
	MeasuredML float64 `json:"measured_ml"`
}

// cleanRequest is the body for POST /pumps/{id}/clean.
type cleanRequest struct {
	DurationMS int `json:"duration_ms"`
}

// handleListPumps returns all pump bindings ordered by pin.
func (s *Server) handleListPumps(w http.ResponseWriter, r *http.Request) {
	bindings, err := s.pumps.List(r.Context())
	if err != nil {
		s.logger.Error("listing pumps failed", "error", err)
		writeInternalError(w, "failed to list pumps")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pumps": bindings,
		"count": len(bindings),
	})
}

// handleGetPump returns a single pump binding.
func (s *Server) handleGetPump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	binding, err := s.pumps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, pump.ErrNotFound) {
			writeNotFound(w, "pump not found")
			return
		}
		s.logger.Error("fetching pump failed", "id", id, "error", err)
		writeInternalError(w, "failed to fetch pump")
		return
	}

	writeJSON(w, http.StatusOK, binding)
}

// handleCreatePump creates a new pump binding.
func (s *Server) handleCreatePump(w http.ResponseWriter, r *http.Request) {
	var binding pump.Binding
	if err := json.NewDecoder(r.Body).Decode(&binding); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.pumps.Create(r.Context(), &binding); err != nil {
		switch {
		case errors.Is(err, pump.ErrExists):
			writeConflict(w, "pump or pin already in use")
		case errors.Is(err, pump.ErrInvalidBinding):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("creating pump failed", "id", binding.ID, "error", err)
			writeInternalError(w, "failed to create pump")
		}
		return
	}

	s.logger.Info("pump created", "id", binding.ID, "pin", binding.Pin, "ingredient", binding.IngredientID)
	writeJSON(w, http.StatusCreated, binding)
}

// handleUpdatePump applies a partial update to a pump binding.
func (s *Server) handleUpdatePump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req pumpUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	binding, err := s.pumps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, pump.ErrNotFound) {
			writeNotFound(w, "pump not found")
			return
		}
		s.logger.Error("fetching pump failed", "id", id, "error", err)
		writeInternalError(w, "failed to fetch pump")
		return
	}

	if req.Pin != nil {
		binding.Pin = *req.Pin
	}
	if req.IngredientID != nil {
		binding.IngredientID = *req.IngredientID
	}
	if req.Enabled != nil {
		binding.Enabled = *req.Enabled
	}
	if req.VentDurationMS != nil {
		binding.VentDurationMS = *req.VentDurationMS
	}

	if err := s.pumps.Update(r.Context(), binding); err != nil {
		switch {
		case errors.Is(err, pump.ErrInvalidBinding):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("updating pump failed", "id", id, "error", err)
			writeInternalError(w, "failed to update pump")
		}
		return
	}

	writeJSON(w, http.StatusOK, binding)
}

// handleDeletePump removes a pump binding.
func (s *Server) handleDeletePump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.pumps.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pump.ErrNotFound) {
			writeNotFound(w, "pump not found")
			return
		}
		s.logger.Error("deleting pump failed", "id", id, "error", err)
		writeInternalError(w, "failed to delete pump")
		return
	}

	s.logger.Info("pump deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleCalibratePump derives a flow rate from a timed measurement.
//
// The UI runs the pump for a fixed duration, the operator measures
// what landed in the glass, and this endpoint stores the resulting
// ml/second rate.
func (s *Server) handleCalibratePump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req calibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	binding, err := s.pumps.Calibrate(r.Context(), id, req.DurationMS, req.MeasuredML)
	if err != nil {
		switch {
		case errors.Is(err, pump.ErrNotFound):
			writeNotFound(w, "pump not found")
		case errors.Is(err, pump.ErrInvalidCalibration):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("calibrating pump failed", "id", id, "error", err)
			writeInternalError(w, "failed to calibrate pump")
		}
		return
	}

	s.logger.Info("pump calibrated", "id", id, "flow_rate_ml_sec", binding.FlowRateMLPerSec)
	writeJSON(w, http.StatusOK, binding)
}

// handleVentPump runs a pump for its configured vent duration.
func (s *Server) handleVentPump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.engine.Vent(r.Context(), id); err != nil {
		s.writeMaintenanceError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "vented", "pump_id": id})
}

// handleCleanPump runs a pump for an explicit flush duration.
func (s *Server) handleCleanPump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req cleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.engine.Clean(r.Context(), id, req.DurationMS); err != nil {
		s.writeMaintenanceError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleaned", "pump_id": id})
}

// writeMaintenanceError maps vent/clean errors to HTTP responses.
func (s *Server) writeMaintenanceError(w http.ResponseWriter, pumpID string, err error) {
	switch {
	case errors.Is(err, engine.ErrBusy):
		writeConflict(w, "a preparation is in progress")
	case errors.Is(err, pump.ErrNotFound):
		writeNotFound(w, "pump not found")
	case errors.Is(err, actuator.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		s.logger.Error("pump maintenance failed", "pump", pumpID, "error", err)
		writeInternalError(w, "pump maintenance failed")
	}
}
