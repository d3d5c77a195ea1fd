package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SaschaWenning/cocktailbot-core/internal/actuator"
	"github.com/SaschaWenning/cocktailbot-core/internal/engine"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/config"
	"github.com/SaschaWenning/cocktailbot-core/internal/infrastructure/logging"
	"github.com/SaschaWenning/cocktailbot-core/internal/ingredient"
	"github.com/SaschaWenning/cocktailbot-core/internal/inventory"
	"github.com/SaschaWenning/cocktailbot-core/internal/pump"
	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
)

// --- in-memory repository stubs ---

type recipeRepoStub struct {
	recipes map[string]*recipe.Recipe
}

func (r *recipeRepoStub) GetByID(_ context.Context, id string) (*recipe.Recipe, error) {
	rec, ok := r.recipes[id]
	if !ok {
		return nil, recipe.ErrNotFound
	}
	return rec.Copy(), nil
}

func (r *recipeRepoStub) List(_ context.Context) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	for _, rec := range r.recipes {
		out = append(out, *rec.Copy())
	}
	return out, nil
}

func (r *recipeRepoStub) Create(_ context.Context, rec *recipe.Recipe) error {
	if _, ok := r.recipes[rec.ID]; ok {
		return recipe.ErrExists
	}
	r.recipes[rec.ID] = rec.Copy()
	return nil
}

func (r *recipeRepoStub) Update(_ context.Context, rec *recipe.Recipe) error {
	if _, ok := r.recipes[rec.ID]; !ok {
		return recipe.ErrNotFound
	}
	r.recipes[rec.ID] = rec.Copy()
	return nil
}

func (r *recipeRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := r.recipes[id]; !ok {
		return recipe.ErrNotFound
	}
	delete(r.recipes, id)
	return nil
}

type pumpRepoStub struct {
	bindings map[string]*pump.Binding
}

func (r *pumpRepoStub) GetByID(_ context.Context, id string) (*pump.Binding, error) {
	b, ok := r.bindings[id]
	if !ok {
		return nil, pump.ErrNotFound
	}
	return b.Copy(), nil
}

func (r *pumpRepoStub) List(_ context.Context) ([]pump.Binding, error) {
	var out []pump.Binding
	for _, b := range r.bindings {
		out = append(out, *b.Copy())
	}
	return out, nil
}

func (r *pumpRepoStub) Create(_ context.Context, b *pump.Binding) error {
	if _, ok := r.bindings[b.ID]; ok {
		return pump.ErrExists
	}
	r.bindings[b.ID] = b.Copy()
	return nil
}

func (r *pumpRepoStub) Update(_ context.Context, b *pump.Binding) error {
	if _, ok := r.bindings[b.ID]; !ok {
		return pump.ErrNotFound
	}
	r.bindings[b.ID] = b.Copy()
	return nil
}

func (r *pumpRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := r.bindings[id]; !ok {
		return pump.ErrNotFound
	}
	delete(r.bindings, id)
	return nil
}

type inventoryRepoStub struct {
	levels map[string]*inventory.Level
}

func (r *inventoryRepoStub) GetByIngredient(_ context.Context, ingredientID string) (*inventory.Level, error) {
	l, ok := r.levels[ingredientID]
	if !ok {
		return nil, inventory.ErrNotFound
	}
	return l.Copy(), nil
}

func (r *inventoryRepoStub) List(_ context.Context) ([]inventory.Level, error) {
	var out []inventory.Level
	for _, l := range r.levels {
		out = append(out, *l.Copy())
	}
	return out, nil
}

func (r *inventoryRepoStub) Upsert(_ context.Context, level *inventory.Level) error {
	r.levels[level.IngredientID] = level.Copy()
	return nil
}

func (r *inventoryRepoStub) Delete(_ context.Context, ingredientID string) error {
	delete(r.levels, ingredientID)
	return nil
}

type ingredientRepoStub struct {
	ingredients map[string]*ingredient.Ingredient
}

func (r *ingredientRepoStub) GetByID(_ context.Context, id string) (*ingredient.Ingredient, error) {
	ing, ok := r.ingredients[id]
	if !ok {
		return nil, ingredient.ErrNotFound
	}
	return ing, nil
}

func (r *ingredientRepoStub) List(_ context.Context) ([]ingredient.Ingredient, error) {
	var out []ingredient.Ingredient
	for _, ing := range r.ingredients {
		out = append(out, *ing)
	}
	return out, nil
}

func (r *ingredientRepoStub) Create(_ context.Context, ing *ingredient.Ingredient) error {
	if _, ok := r.ingredients[ing.ID]; ok {
		return ingredient.ErrExists
	}
	r.ingredients[ing.ID] = ing
	return nil
}

func (r *ingredientRepoStub) Update(_ context.Context, ing *ingredient.Ingredient) error {
	if _, ok := r.ingredients[ing.ID]; !ok {
		return ingredient.ErrNotFound
	}
	r.ingredients[ing.ID] = ing
	return nil
}

func (r *ingredientRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := r.ingredients[id]; !ok {
		return ingredient.ErrNotFound
	}
	delete(r.ingredients, id)
	return nil
}

// newTestServer wires a full server against in-memory stores and the
// actuator simulator: vodka on pin 17 at 10 ml/s, orange juice on pin
// 27 at 20 ml/s, both bottles full.
func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	ctx := context.Background()

	recipes := &recipeRepoStub{recipes: map[string]*recipe.Recipe{
		"screwdriver": {
			ID:   "screwdriver",
			Name: "Screwdriver",
			Lines: []recipe.Line{
				{IngredientID: "vodka", Mode: recipe.ModeAutomatic, VolumeML: 40},
				{IngredientID: "orange-juice", Mode: recipe.ModeAutomatic, VolumeML: 120},
			},
			Sizes: []int{160, 320},
		},
	}}

	pumpRepo := &pumpRepoStub{bindings: map[string]*pump.Binding{
		"pump-1": {ID: "pump-1", Pin: 17, IngredientID: "vodka", FlowRateMLPerSec: 10, Enabled: true, VentDurationMS: 1000},
		"pump-2": {ID: "pump-2", Pin: 27, IngredientID: "orange-juice", FlowRateMLPerSec: 20, Enabled: true},
	}}
	registry := pump.NewRegistry(pumpRepo)
	if err := registry.RefreshCache(ctx); err != nil {
		t.Fatalf("refreshing pump cache: %v", err)
	}

	ingredients := &ingredientRepoStub{ingredients: map[string]*ingredient.Ingredient{
		"vodka":        {ID: "vodka", Name: "Vodka", Alcoholic: true},
		"orange-juice": {ID: "orange-juice", Name: "Orange Juice"},
	}}

	ledger := inventory.NewLedger(&inventoryRepoStub{levels: make(map[string]*inventory.Level)}, ingredients)
	for _, id := range []string{"vodka", "orange-juice"} {
		if _, err := ledger.Refill(ctx, id); err != nil {
			t.Fatalf("refilling %s: %v", id, err)
		}
	}

	sim := actuator.NewSimulator()
	sim.SetTimeScale(0.001)

	eng := engine.NewEngine(recipes, registry, ledger, sim, nil, engine.Config{
		SettleDelay: time.Millisecond,
	})

	srv, err := New(Deps{
		Config:         config.APIConfig{Host: "127.0.0.1", Port: 8080},
		WS:             config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Logger:         logging.Default(),
		Engine:         eng,
		RecipeRepo:     recipes,
		PumpRegistry:   registry,
		Ledger:         ledger,
		IngredientRepo: ingredients,
		Version:        "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	srv.hub = NewHub(srv.wsCfg, srv.logger)

	return srv, srv.buildRouter()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
}

func TestHandlePrepare(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/prepare", map[string]any{
		"recipe_id": "screwdriver",
		"target_ml": 160,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var result engine.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !result.Success || result.State != engine.StateCompleted {
		t.Errorf("result = %+v, want completed", result)
	}
	if len(result.PumpRuns) != 2 {
		t.Errorf("PumpRuns = %d, want 2", len(result.PumpRuns))
	}
}

func TestHandlePrepare_Validation(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/prepare", map[string]any{"target_ml": 160})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/prepare", map[string]any{
		"recipe_id": "nonexistent", "target_ml": 160,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlePrepare_InsufficientStock(t *testing.T) {
	srv, handler := newTestServer(t)

	// Drain the vodka bottle below one pour.
	if _, err := srv.ledger.SetLevel(context.Background(), "vodka", 10); err != nil {
		t.Fatalf("setting level: %v", err)
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/prepare", map[string]any{
		"recipe_id": "screwdriver", "target_ml": 160,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Result engine.Result `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Result.Missing) != 1 || body.Result.Missing[0].IngredientID != "vodka" {
		t.Errorf("Missing = %+v, want vodka shortfall", body.Result.Missing)
	}
}

func TestHandleAvailability(t *testing.T) {
	srv, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/availability", map[string]any{
		"recipe_id": "screwdriver", "target_ml": 160,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result engine.AvailabilityResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !result.OK {
		t.Errorf("OK = false, want true; missing = %+v", result.Missing)
	}

	// An empty bottle flips the answer but not the status code.
	if _, err := srv.ledger.SetLevel(context.Background(), "vodka", 0); err != nil {
		t.Fatalf("setting level: %v", err)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/availability", map[string]any{
		"recipe_id": "screwdriver", "target_ml": 160,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.OK {
		t.Error("OK = true, want false after draining vodka")
	}
}

func TestRecipeCRUD(t *testing.T) {
	_, handler := newTestServer(t)

	newRecipe := map[string]any{
		"id":   "cuba-libre",
		"name": "Cuba Libre",
		"lines": []map[string]any{
			{"ingredient_id": "rum", "mode": "automatic", "volume_ml": 50},
			{"ingredient_id": "cola", "mode": "automatic", "volume_ml": 120},
		},
		"sizes": []int{170},
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recipes/", newRecipe)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/recipes/", newRecipe)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/recipes/cuba-libre", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/recipes/cuba-libre", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/recipes/cuba-libre", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestRecipeValidation(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/recipes/", map[string]any{
		"id": "broken", "name": "Broken", "lines": []map[string]any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCalibratePump(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/pumps/pump-1/calibrate", map[string]any{
		"duration_ms": 5000, "measured_ml": 48,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var binding pump.Binding
	if err := json.Unmarshal(rec.Body.Bytes(), &binding); err != nil {
		t.Fatalf("decoding binding: %v", err)
	}
	if binding.FlowRateMLPerSec != 9.6 {
		t.Errorf("FlowRateMLPerSec = %v, want 9.6", binding.FlowRateMLPerSec)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/pumps/pump-1/calibrate", map[string]any{
		"duration_ms": 0, "measured_ml": 48,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid calibration status = %d, want 400", rec.Code)
	}
}

func TestHandleVentPump(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/pumps/pump-1/vent", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/pumps/pump-99/vent", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown pump status = %d, want 404", rec.Code)
	}
}

func TestHandleRefillInventory(t *testing.T) {
	srv, handler := newTestServer(t)

	if _, err := srv.ledger.SetLevel(context.Background(), "vodka", 100); err != nil {
		t.Fatalf("setting level: %v", err)
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/inventory/vodka/refill", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var level inventory.Level
	if err := json.Unmarshal(rec.Body.Bytes(), &level); err != nil {
		t.Fatalf("decoding level: %v", err)
	}
	if level.CurrentML != level.CapacityML {
		t.Errorf("CurrentML = %v, want capacity %v", level.CurrentML, level.CapacityML)
	}
	if level.LastRefill == nil {
		t.Error("expected LastRefill to be stamped")
	}
}

func TestHandleUpdateInventory(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPatch, "/api/v1/inventory/vodka", map[string]any{
		"capacity_ml": 1000,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var level inventory.Level
	if err := json.Unmarshal(rec.Body.Bytes(), &level); err != nil {
		t.Fatalf("decoding level: %v", err)
	}
	if level.CapacityML != 1000 {
		t.Errorf("CapacityML = %v, want 1000", level.CapacityML)
	}

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/inventory/vodka", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", rec.Code)
	}
}

func TestClose_ClosesWebSocketClients(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.cfg.Port = 0 // let the kernel pick a free port

	// Fetch the hub before Start(), the way main wires it into the
	// engine. Start must still run the hub loop so shutdown reaches
	// connected clients.
	hub := srv.Hub()
	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, 1),
		subscriptions: make(map[string]struct{}),
	}
	hub.Register(client)

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// The hub loop reacts to the cancelled server context.
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub clients not closed after shutdown")
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	default:
		t.Error("send channel still open after shutdown")
	}
}
