package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/SaschaWenning/cocktailbot-core/internal/actuator"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/mqtt"
	"github.com/SaschaWenning/cocktailbot-core/internal/inventory"
	"github.com/SaschaWenning/cocktailbot-core/internal/pump"
	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
)

// Defaults for engine configuration.
const (
	defaultSettleDelay  = 2 * time.Second
	defaultShotVolumeML = 40
	defaultVentDuration = 2 * time.Second
)

// RecipeSource is the interface the engine needs from the recipe package.
type RecipeSource interface {
	GetByID(ctx context.Context, id string) (*recipe.Recipe, error)
}

// PumpRegistry is the interface the engine needs from the pump package.
type PumpRegistry interface {
	Get(ctx context.Context, id string) (*pump.Binding, error)
	ResolveByIngredient(ctx context.Context, ingredientID string) (*pump.Binding, error)
}

// Ledger is the interface the engine needs from the inventory package.
type Ledger interface {
	Get(ctx context.Context, ingredientID string) (*inventory.Level, error)
	Debit(ctx context.Context, ingredientID string, volumeML float64) (*inventory.Level, error)
}

// Notifier is the interface for publishing state transitions to MQTT.
type Notifier interface {
	PublishEvent(topic string, payload []byte) error
}

// WSHub is the interface for broadcasting WebSocket events.
type WSHub interface {
	Broadcast(event string, data interface{})
}

// StatsSink is the interface for recording preparation statistics.
type StatsSink interface {
	WritePreparation(recipeID, state string, targetML int, pouredML float64, elapsedMS int64)
	WritePourVolume(ingredientID string, volumeML float64)
}

// Logger defines the logging interface used by the Engine.
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

// Config holds engine tuning parameters.
type Config struct {
	// SettleDelay is the pause between the primary batch and delayed
	// ingredients. Zero selects the default of 2 seconds.
	SettleDelay time.Duration

	// ShotVolumeML is the default volume for PrepareShot when the
	// caller passes zero. Zero selects the default of 40 ml.
	ShotVolumeML int
}

// Engine orchestrates drink preparation.
//
// It scales the recipe, gates on the stock check, resolves every
// automatic line to a calibrated pump, runs the primary batch
// concurrently, pauses for the settle delay, pours delayed lines
// sequentially, and debits the ledger for everything that was poured.
//
// One preparation runs at a time. A second Prepare while one is in
// flight returns ErrBusy immediately; nothing queues.
//
// Thread Safety: all public methods are safe for concurrent use.
type Engine struct {
	recipes RecipeSource
	pumps   PumpRegistry
	ledger  Ledger
	driver  actuator.Driver
	repo    Repository
	cfg     Config

	notifier Notifier  // optional
	hub      WSHub     // optional
	stats    StatsSink // optional
	logger   Logger

	// mu serialises preparations and maintenance runs.
	mu sync.Mutex
}

// NewEngine creates a new preparation engine.
//
// Parameters:
//   - recipes: Recipe source for loading definitions
//   - pumps: Pump registry for ingredient resolution
//   - ledger: Inventory ledger for stock checks and debits
//   - driver: Actuator backend (GPIO or simulator)
//   - repo: Repository for persisting preparation records (may be nil)
//   - cfg: Tuning parameters (zero values select defaults)
func NewEngine(recipes RecipeSource, pumps PumpRegistry, ledger Ledger, driver actuator.Driver, repo Repository, cfg Config) *Engine {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.ShotVolumeML <= 0 {
		cfg.ShotVolumeML = defaultShotVolumeML
	}
	return &Engine{
		recipes: recipes,
		pumps:   pumps,
		ledger:  ledger,
		driver:  driver,
		repo:    repo,
		cfg:     cfg,
		logger:  noopLogger{},
	}
}

// SetNotifier sets the MQTT notifier for state transitions (may be nil).
func (e *Engine) SetNotifier(n Notifier) { e.notifier = n }

// SetHub sets the WebSocket hub for state broadcasts (may be nil).
func (e *Engine) SetHub(h WSHub) { e.hub = h }

// SetStats sets the statistics sink (may be nil).
func (e *Engine) SetStats(s StatsSink) { e.stats = s }

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) { e.logger = logger }

// plannedRun is one resolved automatic line ready for actuation.
type plannedRun struct {
	line     recipe.PlanLine
	binding  *pump.Binding
	duration time.Duration
}

// Prepare makes a drink.
//
// The full pipeline: load recipe, scale to target, re-check stock
// inside the engine lock (so two queued drinks cannot both pass
// against the same bottle), resolve pumps, dispense, debit, record.
//
// Parameters:
//   - ctx: Cancellation is honoured between batches only; a running
//     pump always completes its pour
//   - recipeID: Recipe to prepare
//   - targetML: Desired drink volume in millilitres
//
// Returns:
//   - *Result: Always non-nil when a preparation was attempted;
//     carries missing ingredients, manual steps and pump runs
//   - error: ErrBusy, ErrInsufficientStock, ErrPumpNotCalibrated,
//     ErrDispenseFailed, ErrCancelled, or a lookup/scale error
func (e *Engine) Prepare(ctx context.Context, recipeID string, targetML int) (*Result, error) {
	if !e.mu.TryLock() {
		return nil, ErrBusy
	}
	defer e.mu.Unlock()

	rec, err := e.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	plan, err := recipe.Scale(rec, targetML)
	if err != nil {
		return nil, err
	}

	return e.run(ctx, recipeID, targetML, plan)
}

// PrepareShot pours a single ingredient.
//
// A shot bypasses recipes entirely: one automatic line at the given
// volume (default 40 ml when volumeML is zero), same stock check,
// dispensing and accounting as a full drink.
func (e *Engine) PrepareShot(ctx context.Context, ingredientID string, volumeML int) (*Result, error) {
	if volumeML <= 0 {
		volumeML = e.cfg.ShotVolumeML
	}

	if !e.mu.TryLock() {
		return nil, ErrBusy
	}
	defer e.mu.Unlock()

	plan := &recipe.DispensePlan{
		RecipeID: "shot:" + ingredientID,
		TargetML: volumeML,
		Lines: []recipe.PlanLine{
			{IngredientID: ingredientID, Mode: recipe.ModeAutomatic, VolumeML: volumeML},
		},
	}

	return e.run(ctx, plan.RecipeID, volumeML, plan)
}

// run executes a scaled plan. Caller must hold e.mu.
func (e *Engine) run(ctx context.Context, recipeID string, targetML int, plan *recipe.DispensePlan) (*Result, error) { //nolint:gocognit,gocyclo // preparation pipeline: validate, dispense, settle, account, record
	start := time.Now()

	result := &Result{
		PreparationID: GenerateID(),
		RecipeID:      recipeID,
		TargetML:      targetML,
		State:         StateValidating,
		Manual:        manualSteps(plan),
	}

	e.createRecord(ctx, result)
	e.transition(result.PreparationID, StateValidating)

	// Just-in-time stock check inside the lock. The caller may have
	// checked availability seconds ago, but another drink could have
	// drained the bottle since.
	avail, err := e.checkPlan(ctx, plan)
	if err != nil {
		return e.fail(ctx, result, start, err)
	}
	if !avail.OK {
		result.Missing = avail.Missing
		return e.fail(ctx, result, start, ErrInsufficientStock)
	}

	// Resolve every automatic line before energising anything. A
	// missing or uncalibrated pump fails the whole drink with an
	// untouched glass.
	runs, err := e.resolveRuns(ctx, plan)
	if err != nil {
		return e.fail(ctx, result, start, err)
	}

	result.State = StateDispensing
	e.updateState(ctx, result.PreparationID, StateDispensing)
	e.transition(result.PreparationID, StateDispensing)

	var primary, delayed []plannedRun
	for _, r := range runs {
		if r.line.Delayed {
			delayed = append(delayed, r)
		} else {
			primary = append(primary, r)
		}
	}

	// Primary batch: all pumps at once.
	primaryRuns, primaryFailed := e.dispenseBatch(ctx, primary)
	result.PumpRuns = append(result.PumpRuns, primaryRuns...)

	// Debit what was poured, exactly once per line, before looking at
	// failures. The liquid is in the glass either way.
	e.debitRuns(ctx, primaryRuns)

	if primaryFailed {
		return e.fail(ctx, result, start, ErrDispenseFailed)
	}

	if len(delayed) > 0 {
		result.State = StateSettling
		e.updateState(ctx, result.PreparationID, StateSettling)
		e.transition(result.PreparationID, StateSettling)

		// Cancellation window: the only safe places to abandon a drink
		// are before a pump is energised.
		select {
		case <-ctx.Done():
			return e.fail(ctx, result, start, ErrCancelled)
		case <-time.After(e.cfg.SettleDelay):
		}

		// Delayed lines pour one at a time so layers stay layered.
		for i, r := range delayed {
			if i > 0 && ctx.Err() != nil {
				return e.fail(ctx, result, start, ErrCancelled)
			}

			run := e.dispenseOne(ctx, r)
			result.PumpRuns = append(result.PumpRuns, run)
			e.debitRuns(ctx, []PumpRun{run})

			if run.Error != "" {
				return e.fail(ctx, result, start, ErrDispenseFailed)
			}
		}
	}

	result.State = StateCompleted
	result.Success = true
	result.ElapsedMS = time.Since(start).Milliseconds()

	e.finishRecord(ctx, result)
	e.transition(result.PreparationID, StateCompleted)
	e.recordStats(result)

	e.logger.Info("preparation completed",
		"preparation", result.PreparationID,
		"recipe", recipeID,
		"target_ml", targetML,
		"poured_ml", result.PouredML(),
		"elapsed_ms", result.ElapsedMS,
	)
	return result, nil
}

// resolveRuns maps every automatic plan line to a calibrated pump and
// an activation duration.
func (e *Engine) resolveRuns(ctx context.Context, plan *recipe.DispensePlan) ([]plannedRun, error) {
	var runs []plannedRun
	for _, line := range plan.Lines {
		if line.Mode != recipe.ModeAutomatic || line.VolumeML <= 0 {
			continue
		}

		binding, err := e.pumps.ResolveByIngredient(ctx, line.IngredientID)
		if err != nil {
			return nil, err
		}
		if !binding.Calibrated() {
			return nil, fmt.Errorf("%w: %s", ErrPumpNotCalibrated, binding.ID)
		}

		seconds := float64(line.VolumeML) / binding.FlowRateMLPerSec
		runs = append(runs, plannedRun{
			line:     line,
			binding:  binding,
			duration: time.Duration(seconds * float64(time.Second)),
		})
	}
	return runs, nil
}

// dispenseBatch activates all runs concurrently and waits for every
// pump to de-energise. Returns the recorded runs and whether any faulted.
func (e *Engine) dispenseBatch(ctx context.Context, batch []plannedRun) ([]PumpRun, bool) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		runs   []PumpRun
		failed bool
	)

	for _, r := range batch {
		wg.Add(1)
		go func(r plannedRun) {
			defer wg.Done()
			run := e.dispenseOne(ctx, r)

			mu.Lock()
			runs = append(runs, run)
			if run.Error != "" {
				failed = true
			}
			mu.Unlock()
		}(r)
	}

	wg.Wait()
	return runs, failed
}

// dispenseOne activates a single pump and records the run.
func (e *Engine) dispenseOne(ctx context.Context, r plannedRun) PumpRun {
	run := PumpRun{
		PumpID:       r.binding.ID,
		Pin:          r.binding.Pin,
		IngredientID: r.line.IngredientID,
		VolumeML:     r.line.VolumeML,
		DurationMS:   r.duration.Milliseconds(),
		Delayed:      r.line.Delayed,
	}

	if err := e.driver.Activate(ctx, r.binding.Pin, r.duration); err != nil {
		run.Error = err.Error()
		e.logger.Error("pump activation failed",
			"pump", r.binding.ID,
			"pin", r.binding.Pin,
			"ingredient", r.line.IngredientID,
			"error", err,
		)
	}
	return run
}

// debitRuns debits the ledger for every recorded run, fault or not.
// A faulted activation may have poured anything up to its planned
// volume; the ledger takes the planned amount, erring on the side of
// under-reporting stock rather than over-promising it.
func (e *Engine) debitRuns(ctx context.Context, runs []PumpRun) {
	for _, run := range runs {
		if _, err := e.ledger.Debit(ctx, run.IngredientID, float64(run.VolumeML)); err != nil {
			e.logger.Error("inventory debit failed",
				"ingredient", run.IngredientID,
				"volume_ml", run.VolumeML,
				"error", err,
			)
		}
	}
}

// Vent runs a pump for its configured vent duration to purge air from
// the tubing. No inventory is debited; whatever comes out is tube
// content, not a pour.
func (e *Engine) Vent(ctx context.Context, pumpID string) error {
	if !e.mu.TryLock() {
		return ErrBusy
	}
	defer e.mu.Unlock()

	binding, err := e.pumps.Get(ctx, pumpID)
	if err != nil {
		return err
	}

	duration := time.Duration(binding.VentDurationMS) * time.Millisecond
	if duration <= 0 {
		duration = defaultVentDuration
	}

	e.logger.Info("venting pump", "pump", pumpID, "duration_ms", duration.Milliseconds())
	if err := e.driver.Activate(ctx, binding.Pin, duration); err != nil {
		return err
	}

	e.publishPumpEvent(pumpID, "vented")
	return nil
}

// Clean runs a pump for an explicit duration, for flushing the line
// with water or cleaning solution. No inventory is debited.
func (e *Engine) Clean(ctx context.Context, pumpID string, durationMS int) error {
	if durationMS <= 0 {
		return actuator.ErrInvalidDuration
	}

	if !e.mu.TryLock() {
		return ErrBusy
	}
	defer e.mu.Unlock()

	binding, err := e.pumps.Get(ctx, pumpID)
	if err != nil {
		return err
	}

	duration := time.Duration(durationMS) * time.Millisecond
	e.logger.Info("cleaning pump", "pump", pumpID, "duration_ms", durationMS)
	if err := e.driver.Activate(ctx, binding.Pin, duration); err != nil {
		return err
	}

	e.publishPumpEvent(pumpID, "cleaned")
	return nil
}

// GetPreparation retrieves a persisted preparation record.
//
// Returns ErrNotFound when the record does not exist or when no
// repository is configured.
func (e *Engine) GetPreparation(ctx context.Context, id string) (*Record, error) {
	if e.repo == nil {
		return nil, ErrNotFound
	}
	return e.repo.GetByID(ctx, id)
}

// ListPreparations retrieves the most recent preparation records,
// newest first. A non-positive limit selects the repository default.
func (e *Engine) ListPreparations(ctx context.Context, limit int) ([]Record, error) {
	if e.repo == nil {
		return nil, nil
	}
	return e.repo.List(ctx, limit)
}

// fail records a terminal failure and returns the result with err.
func (e *Engine) fail(ctx context.Context, result *Result, start time.Time, err error) (*Result, error) {
	result.State = StateFailed
	result.Success = false
	result.ElapsedMS = time.Since(start).Milliseconds()

	e.finishRecord(ctx, result)
	e.transition(result.PreparationID, StateFailed)

	e.logger.Warn("preparation failed",
		"preparation", result.PreparationID,
		"recipe", result.RecipeID,
		"error", err,
	)
	return result, err
}

// manualSteps extracts the manual lines from a plan.
func manualSteps(plan *recipe.DispensePlan) []ManualStep {
	var steps []ManualStep
	for _, line := range plan.Lines {
		if line.Mode == recipe.ModeManual {
			steps = append(steps, ManualStep{
				IngredientID: line.IngredientID,
				VolumeML:     line.VolumeML,
				Instruction:  line.Instruction,
			})
		}
	}
	return steps
}

// createRecord persists the initial preparation record.
func (e *Engine) createRecord(ctx context.Context, result *Result) {
	if e.repo == nil {
		return
	}
	rec := &Record{
		ID:        result.PreparationID,
		RecipeID:  result.RecipeID,
		TargetML:  result.TargetML,
		State:     StateValidating,
		StartedAt: time.Now().UTC(),
	}
	if err := e.repo.Create(ctx, rec); err != nil {
		e.logger.Error("persisting preparation record failed",
			"preparation", result.PreparationID, "error", err)
	}
}

// updateState persists an in-flight state change.
func (e *Engine) updateState(ctx context.Context, id string, state State) {
	if e.repo == nil {
		return
	}
	if err := e.repo.UpdateState(ctx, id, state); err != nil {
		e.logger.Error("updating preparation state failed",
			"preparation", id, "state", state, "error", err)
	}
}

// finishRecord persists the terminal state and the full result detail.
func (e *Engine) finishRecord(ctx context.Context, result *Result) {
	if e.repo == nil {
		return
	}
	detail, err := json.Marshal(result)
	if err != nil {
		detail = []byte("{}")
	}
	if err := e.repo.Finish(ctx, result.PreparationID, result.State, result.Success, string(detail)); err != nil {
		e.logger.Error("finishing preparation record failed",
			"preparation", result.PreparationID, "error", err)
	}
}

// transition publishes a state change to MQTT and the WebSocket hub.
// Both are fire-and-forget; a broker outage never fails a drink.
func (e *Engine) transition(preparationID string, state State) {
	payload := map[string]interface{}{
		"preparation_id": preparationID,
		"state":          string(state),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if e.notifier != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			topic := mqtt.Topics{}.PreparationState(preparationID)
			if err := e.notifier.PublishEvent(topic, data); err != nil {
				e.logger.Debug("publishing state transition failed",
					"preparation", preparationID, "state", state, "error", err)
			}
		}
	}

	if e.hub != nil {
		e.hub.Broadcast("preparation_state", payload)
	}
}

// publishPumpEvent publishes a pump maintenance event.
func (e *Engine) publishPumpEvent(pumpID, event string) {
	if e.notifier == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"pump_id":   pumpID,
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	topic := mqtt.Topics{}.PumpEvent(pumpID, event)
	if err := e.notifier.PublishEvent(topic, payload); err != nil {
		e.logger.Debug("publishing pump event failed", "pump", pumpID, "event", event, "error", err)
	}
}

// recordStats writes a completed preparation to the statistics sink.
// Failed and cancelled runs are not recorded; the sink tracks what was
// served, not what was attempted.
func (e *Engine) recordStats(result *Result) {
	if e.stats == nil || !result.Success {
		return
	}
	e.stats.WritePreparation(result.RecipeID, string(result.State),
		result.TargetML, result.PouredML(), result.ElapsedMS)
	for _, run := range result.PumpRuns {
		if run.Error == "" {
			e.stats.WritePourVolume(run.IngredientID, float64(run.VolumeML))
		}
	}
}
