package pump

import (
	"context"
	"fmt"
	"sync"
)

// Milliseconds per second, for calibration duration conversion.
const msPerSecond = 1000.0

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides pump binding management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by cache-invalidating CRUD operations.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Binding // Cached bindings by ID
	cacheMu sync.RWMutex        // Protects cache
	logger  Logger
}

// NewRegistry creates a new pump registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Binding),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all bindings from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	bindings, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading pumps: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Binding, len(bindings))
	for i := range bindings {
		b := bindings[i]
		r.cache[b.ID] = b.Copy()
	}

	r.logger.Info("pump cache refreshed", "count", len(bindings))
	return nil
}

// Get retrieves a binding by ID.
// Returns ErrNotFound if the binding does not exist.
// The returned binding is a copy; callers can safely modify it.
func (r *Registry) Get(ctx context.Context, id string) (*Binding, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		return cached.Copy(), nil
	}

	// Fall back to repository (might be a new binding not yet cached)
	b, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[id] = b.Copy()
	r.cacheMu.Unlock()

	return b, nil
}

// List retrieves all bindings.
// The returned bindings are copies; callers can safely modify them.
func (r *Registry) List(ctx context.Context) ([]Binding, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	if len(r.cache) > 0 {
		bindings := make([]Binding, 0, len(r.cache))
		for _, b := range r.cache {
			bindings = append(bindings, *b.Copy())
		}
		return bindings, nil
	}

	return r.repo.List(ctx)
}

// ResolveByIngredient finds the enabled pump that dispenses an ingredient.
// Disabled pumps are invisible to resolution: a recipe calling for their
// ingredient reports it as missing rather than actuating a disconnected line.
//
// Returns ErrNoPumpForIngredient if no enabled pump matches.
func (r *Registry) ResolveByIngredient(ctx context.Context, ingredientID string) (*Binding, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	for _, b := range r.cache {
		if b.IngredientID == ingredientID && b.Enabled {
			return b.Copy(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoPumpForIngredient, ingredientID)
}

// Create validates and persists a new binding.
func (r *Registry) Create(ctx context.Context, b *Binding) error {
	if err := validateBinding(b); err != nil {
		return err
	}

	if err := r.repo.Create(ctx, b); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[b.ID] = b.Copy()
	r.cacheMu.Unlock()

	r.logger.Info("pump created", "id", b.ID, "pin", b.Pin, "ingredient", b.IngredientID)
	return nil
}

// Update validates and persists changes to an existing binding.
func (r *Registry) Update(ctx context.Context, b *Binding) error {
	if err := validateBinding(b); err != nil {
		return err
	}

	if err := r.repo.Update(ctx, b); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[b.ID] = b.Copy()
	r.cacheMu.Unlock()

	r.logger.Info("pump updated", "id", b.ID, "ingredient", b.IngredientID, "enabled", b.Enabled)
	return nil
}

// Delete removes a binding.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("pump deleted", "id", id)
	return nil
}

// Calibrate derives and persists a pump's flow rate from a measured run.
//
// The pump is run for durationMS milliseconds and the dispensed volume
// is measured by hand. The flow rate is measured volume divided by run
// time in seconds.
//
// Parameters:
//   - id: Pump to calibrate
//   - durationMS: How long the calibration run activated the pump
//   - measuredML: Volume collected during the run
//
// Returns:
//   - *Binding: Copy of the binding with the new flow rate
//   - error: ErrInvalidCalibration if inputs are not positive
func (r *Registry) Calibrate(ctx context.Context, id string, durationMS int, measuredML float64) (*Binding, error) {
	if durationMS <= 0 || measuredML <= 0 {
		return nil, ErrInvalidCalibration
	}

	b, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	flowRate := measuredML / (float64(durationMS) / msPerSecond)
	if flowRate <= 0 {
		return nil, ErrInvalidCalibration
	}
	b.FlowRateMLPerSec = flowRate

	if err := r.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[b.ID] = b.Copy()
	r.cacheMu.Unlock()

	r.logger.Info("pump calibrated",
		"id", b.ID,
		"flow_rate_ml_per_sec", flowRate,
		"duration_ms", durationMS,
		"measured_ml", measuredML,
	)
	return b, nil
}

// Count returns the number of cached bindings.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// validateBinding checks binding fields before persistence.
func validateBinding(b *Binding) error {
	if b.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidBinding)
	}
	if b.Pin < 0 {
		return fmt.Errorf("%w: pin must not be negative", ErrInvalidBinding)
	}
	if b.IngredientID == "" {
		return fmt.Errorf("%w: ingredient_id is required", ErrInvalidBinding)
	}
	if b.FlowRateMLPerSec < 0 {
		return fmt.Errorf("%w: flow rate must not be negative", ErrInvalidBinding)
	}
	if b.VentDurationMS < 0 {
		return fmt.Errorf("%w: vent duration must not be negative", ErrInvalidBinding)
	}
	return nil
}
