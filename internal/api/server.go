package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SaschaWenning/cocktailbot-core/internal/engine"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/config"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/logging"
	"github.com/SaschaWenning/cocktailbot-core/internal/ingredient"
	"github.com/SaschaWenning/cocktailbot-core/internal/inventory"
	"github.com/SaschaWenning/cocktailbot-core/internal/pump"
	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config         config.APIConfig
	WS             config.WebSocketConfig
	Logger         *logging.Logger
	Engine         *engine.Engine
	RecipeRepo     recipe.Repository
	PumpRegistry   *pump.Registry
	Ledger         *inventory.Ledger
	IngredientRepo ingredient.Repository
	ExternalHub    *Hub // If set, the server uses this hub instead of creating its own
	Version        string
}

// Server is the HTTP API server for Cocktailbot Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	engine      *engine.Engine
	recipes     recipe.Repository
	pumps       *pump.Registry
	ledger      *inventory.Ledger
	ingredients ingredient.Repository
	version     string
	server      *http.Server
	hub         *Hub
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, engine, stores)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if deps.RecipeRepo == nil {
		return nil, fmt.Errorf("recipe repository is required")
	}
	if deps.PumpRegistry == nil {
		return nil, fmt.Errorf("pump registry is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger is required")
	}

	s := &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		logger:      deps.Logger,
		engine:      deps.Engine,
		recipes:     deps.RecipeRepo,
		pumps:       deps.PumpRegistry,
		ledger:      deps.Ledger,
		ingredients: deps.IngredientRepo,
		version:     deps.Version,
	}

	// Use the externally-provided hub if available (needed when the
	// engine also broadcasts state transitions through it).
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, and launches the
// HTTP listener in a background goroutine. The server can be stopped
// with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	// The hub may already exist: either injected via Deps.ExternalHub or
	// handed to the engine through Hub() before startup. Its loop still
	// needs to run here so clients are closed on shutdown.
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	go s.hub.Run(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// Hub returns the server's WebSocket hub, creating one if Start() has
// not run yet. Used to hand the hub to the engine before startup.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
