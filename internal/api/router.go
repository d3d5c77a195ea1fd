package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Preparation control
		r.Post("/prepare", s.handlePrepare)
		r.Post("/prepare/shot", s.handlePrepareShot)
		r.Post("/availability", s.handleAvailability)

		r.Route("/preparations", func(r chi.Router) {
			r.Get("/", s.handleListPreparations)
			r.Get("/{id}", s.handleGetPreparation)
		})

		// Recipe endpoints
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.handleListRecipes)
			r.Post("/", s.handleCreateRecipe)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRecipe)
				r.Put("/", s.handleUpdateRecipe)
				r.Delete("/", s.handleDeleteRecipe)
			})
		})

		// Pump endpoints
		r.Route("/pumps", func(r chi.Router) {
			r.Get("/", s.handleListPumps)
			r.Post("/", s.handleCreatePump)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPump)
				r.Patch("/", s.handleUpdatePump)
				r.Delete("/", s.handleDeletePump)
				r.Post("/calibrate", s.handleCalibratePump)
				r.Post("/vent", s.handleVentPump)
				r.Post("/clean", s.handleCleanPump)
			})
		})

		// Inventory endpoints
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", s.handleListInventory)

			r.Route("/{ingredientId}", func(r chi.Router) {
				r.Get("/", s.handleGetInventory)
				r.Patch("/", s.handleUpdateInventory)
				r.Post("/refill", s.handleRefillInventory)
			})
		})

		// Ingredient endpoints
		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", s.handleListIngredients)
			r.Post("/", s.handleCreateIngredient)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetIngredient)
				r.Patch("/", s.handleUpdateIngredient)
				r.Delete("/", s.handleDeleteIngredient)
			})
		})

		// WebSocket for real-time preparation state
		r.Get("/events", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
