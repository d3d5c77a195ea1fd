package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SaschaWenning/cocktailbot-core/internal/ingredient"
)

// Logger defines the logging interface used by the Ledger.
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

// IngredientResolver looks up ingredient reference data.
// Used to pick the class-based default capacity on first touch.
type IngredientResolver interface {
	GetByID(ctx context.Context, id string) (*ingredient.Ingredient, error)
}

// Ledger is the authoritative account of what remains in each reservoir.
//
// It keeps a mutex-guarded in-memory map of levels with write-through
// persistence. Levels are created lazily: the first operation that
// touches an unknown ingredient initialises it with the class default
// capacity and a current level of zero, so a freshly configured
// machine reports empty bottles rather than errors.
//
// Accounting edge cases never fail a pour. Debiting more than remains
// clamps the level at zero and logs a warning; a persistence failure
// keeps the in-memory level authoritative and surfaces ErrLedgerWrite
// for the caller to log.
//
// All public methods are thread-safe.
type Ledger struct {
	repo     Repository
	resolver IngredientResolver
	levels   map[string]*Level
	mu       sync.Mutex
	logger   Logger
}

// NewLedger creates a new inventory ledger.
// The repository is used for persistence; the resolver supplies
// class-based default capacities for first-touch initialisation.
func NewLedger(repo Repository, resolver IngredientResolver) *Ledger {
	return &Ledger{
		repo:     repo,
		resolver: resolver,
		levels:   make(map[string]*Level),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the ledger.
func (l *Ledger) SetLogger(logger Logger) {
	l.logger = logger
}

// RefreshCache reloads all levels from the repository into memory.
// This should be called on application startup.
func (l *Ledger) RefreshCache(ctx context.Context) error {
	levels, err := l.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading inventory levels: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.levels = make(map[string]*Level, len(levels))
	for i := range levels {
		lv := levels[i]
		l.levels[lv.IngredientID] = lv.Copy()
	}

	l.logger.Info("inventory cache refreshed", "count", len(levels))
	return nil
}

// Get returns the level for an ingredient, initialising it on first touch.
// The returned level is a copy; callers can safely inspect it.
func (l *Ledger) Get(ctx context.Context, ingredientID string) (*Level, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := l.ensureLevelLocked(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	return level.Copy(), nil
}

// GetAll returns copies of every tracked level.
func (l *Ledger) GetAll(ctx context.Context) ([]Level, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	levels := make([]Level, 0, len(l.levels))
	for _, lv := range l.levels {
		levels = append(levels, *lv.Copy())
	}
	return levels, nil
}

// Debit subtracts a poured volume from an ingredient's level.
//
// The level is clamped at zero: debiting 80 ml from a 50 ml remainder
// leaves 0 and logs a warning, it does not error. A persistence
// failure keeps the in-memory change and returns ErrLedgerWrite so
// the caller can log it; the pour itself already happened.
//
// Parameters:
//   - ctx: Context for the write-through persist
//   - ingredientID: Ingredient to debit
//   - volumeML: Volume poured in millilitres (must not be negative)
//
// Returns:
//   - *Level: Copy of the level after the debit
//   - error: ErrInvalidVolume, or ErrLedgerWrite (non-fatal)
func (l *Ledger) Debit(ctx context.Context, ingredientID string, volumeML float64) (*Level, error) {
	if volumeML < 0 {
		return nil, ErrInvalidVolume
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := l.ensureLevelLocked(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	remaining := level.CurrentML - volumeML
	if remaining < 0 {
		l.logger.Warn("inventory debit exceeds remaining volume",
			"ingredient", ingredientID,
			"remaining_ml", level.CurrentML,
			"debit_ml", volumeML,
		)
		remaining = 0
	}
	level.CurrentML = remaining
	level.UpdatedAt = time.Now().UTC()

	return level.Copy(), l.persistLocked(ctx, level)
}

// Credit adds volume back to an ingredient's level, clamped at capacity.
//
// Used for manual corrections (e.g., topping up without a full refill).
func (l *Ledger) Credit(ctx context.Context, ingredientID string, volumeML float64) (*Level, error) {
	if volumeML < 0 {
		return nil, ErrInvalidVolume
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := l.ensureLevelLocked(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	level.CurrentML += volumeML
	if level.CurrentML > level.CapacityML {
		level.CurrentML = level.CapacityML
	}
	level.UpdatedAt = time.Now().UTC()

	return level.Copy(), l.persistLocked(ctx, level)
}

// Refill resets an ingredient's level to full capacity and stamps the
// refill time. This is the "fresh bottle" operation.
func (l *Ledger) Refill(ctx context.Context, ingredientID string) (*Level, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := l.ensureLevelLocked(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	level.CurrentML = level.CapacityML
	level.LastRefill = &now
	level.UpdatedAt = now

	l.logger.Info("reservoir refilled",
		"ingredient", ingredientID,
		"capacity_ml", level.CapacityML,
	)

	return level.Copy(), l.persistLocked(ctx, level)
}

// SetCapacity changes an ingredient's reservoir capacity.
// If the current level exceeds the new capacity it is clamped down.
func (l *Ledger) SetCapacity(ctx context.Context, ingredientID string, capacityML float64) (*Level, error) {
	if capacityML <= 0 {
		return nil, ErrInvalidCapacity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := l.ensureLevelLocked(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	level.CapacityML = capacityML
	if level.CurrentML > capacityML {
		level.CurrentML = capacityML
	}
	level.UpdatedAt = time.Now().UTC()

	return level.Copy(), l.persistLocked(ctx, level)
}

// SetLevel sets an ingredient's current level directly, clamped to
// [0, capacity]. Used for manual corrections from the UI.
func (l *Ledger) SetLevel(ctx context.Context, ingredientID string, currentML float64) (*Level, error) {
	if currentML < 0 {
		return nil, ErrInvalidVolume
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := l.ensureLevelLocked(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	if currentML > level.CapacityML {
		currentML = level.CapacityML
	}
	level.CurrentML = currentML
	level.UpdatedAt = time.Now().UTC()

	return level.Copy(), l.persistLocked(ctx, level)
}

// ensureLevelLocked returns the cached level for an ingredient,
// creating it on first touch. Caller must hold l.mu.
func (l *Ledger) ensureLevelLocked(ctx context.Context, ingredientID string) (*Level, error) {
	if level, ok := l.levels[ingredientID]; ok {
		return level, nil
	}

	// Not cached; check the repository before initialising
	level, err := l.repo.GetByIngredient(ctx, ingredientID)
	if err == nil {
		l.levels[ingredientID] = level
		return level, nil
	}

	// First touch: initialise with class default capacity and an
	// empty reservoir, so an untracked ingredient reads as out of stock
	// rather than erroring.
	capacity := l.defaultCapacity(ctx, ingredientID)
	level = &Level{
		IngredientID: ingredientID,
		CurrentML:    0,
		CapacityML:   capacity,
		UpdatedAt:    time.Now().UTC(),
	}
	l.levels[ingredientID] = level

	l.logger.Info("inventory level initialised",
		"ingredient", ingredientID,
		"capacity_ml", capacity,
	)

	if err := l.persistLocked(ctx, level); err != nil {
		return level, nil //nolint:nilerr // Level is usable; persist failure was logged
	}
	return level, nil
}

// defaultCapacity picks the class default capacity for an ingredient.
// Unknown ingredients fall back to the mixer default.
func (l *Ledger) defaultCapacity(ctx context.Context, ingredientID string) float64 {
	if l.resolver != nil {
		if ing, err := l.resolver.GetByID(ctx, ingredientID); err == nil {
			return ingredient.DefaultCapacity(ing.Class())
		}
	}
	return ingredient.DefaultCapacity(ingredient.ClassMixer)
}

// persistLocked writes a level through to the repository.
// Caller must hold l.mu. A failure is logged and reported as
// ErrLedgerWrite but the in-memory level remains authoritative.
func (l *Ledger) persistLocked(ctx context.Context, level *Level) error {
	if err := l.repo.Upsert(ctx, level); err != nil {
		l.logger.Error("persisting inventory level failed",
			"ingredient", level.IngredientID,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}
	return nil
}
