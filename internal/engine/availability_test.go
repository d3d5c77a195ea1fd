package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
)

func TestCheckAvailability_OK(t *testing.T) {
	f := newTestFixture(fullLevels())

	result, err := f.engine.CheckAvailability(context.Background(), "screwdriver", 160)
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}

	if !result.OK {
		t.Errorf("OK = false, want true; missing = %+v", result.Missing)
	}
	if len(result.Missing) != 0 {
		t.Errorf("Missing = %+v, want empty", result.Missing)
	}
	if len(result.Low) != 0 {
		t.Errorf("Low = %v, want empty", result.Low)
	}
}

func TestCheckAvailability_LowStock(t *testing.T) {
	// 60 ml vodka covers the 40 ml pour but not a second drink.
	f := newTestFixture(map[string]float64{"vodka": 60, "orange-juice": 1000})

	result, err := f.engine.CheckAvailability(context.Background(), "screwdriver", 160)
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}

	if !result.OK {
		t.Error("OK = false, want true (low stock is advisory)")
	}
	if len(result.Low) != 1 || result.Low[0] != "vodka" {
		t.Errorf("Low = %v, want [vodka]", result.Low)
	}
}

func TestCheckAvailability_Insufficient(t *testing.T) {
	f := newTestFixture(map[string]float64{"vodka": 10, "orange-juice": 1000})

	result, err := f.engine.CheckAvailability(context.Background(), "screwdriver", 160)
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}

	if result.OK {
		t.Error("OK = true, want false")
	}
	if len(result.Missing) != 1 {
		t.Fatalf("Missing = %+v, want one entry", result.Missing)
	}
	m := result.Missing[0]
	if m.IngredientID != "vodka" || m.Reason != ReasonInsufficient {
		t.Errorf("Missing[0] = %+v, want vodka/insufficient", m)
	}
	if m.RequiredML != 40 || m.AvailableML != 10 {
		t.Errorf("required/available = %d/%v, want 40/10", m.RequiredML, m.AvailableML)
	}
}

func TestCheckAvailability_NoPump(t *testing.T) {
	f := newTestFixture(fullLevels())
	pumps := f.engine.pumps.(*mockPumps)
	delete(pumps.bindings, "pump-1")

	result, err := f.engine.CheckAvailability(context.Background(), "screwdriver", 160)
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}

	if result.OK {
		t.Error("OK = true, want false")
	}
	if len(result.Missing) != 1 || result.Missing[0].Reason != ReasonNoPump {
		t.Errorf("Missing = %+v, want one no_pump entry", result.Missing)
	}
}

func TestCheckAvailability_DisabledPumpIsMissing(t *testing.T) {
	f := newTestFixture(fullLevels())
	pumps := f.engine.pumps.(*mockPumps)
	pumps.bindings["pump-1"].Enabled = false

	result, err := f.engine.CheckAvailability(context.Background(), "screwdriver", 160)
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}

	if result.OK {
		t.Error("OK = true, want false (disabled pump must not resolve)")
	}
	if len(result.Missing) != 1 || result.Missing[0].Reason != ReasonNoPump {
		t.Errorf("Missing = %+v, want one no_pump entry", result.Missing)
	}
}

func TestCheckAvailability_AggregatesRepeatedIngredient(t *testing.T) {
	f := newTestFixture(map[string]float64{"vodka": 50, "orange-juice": 1000})
	recipes := f.engine.recipes.(*mockRecipes)
	recipes.recipes["double-vodka"] = &recipe.Recipe{
		ID:   "double-vodka",
		Name: "Double Vodka",
		Lines: []recipe.Line{
			{IngredientID: "vodka", Mode: recipe.ModeAutomatic, VolumeML: 30},
			{IngredientID: "vodka", Mode: recipe.ModeAutomatic, VolumeML: 30},
		},
		Sizes: []int{60},
	}

	// Each line fits individually but the combined 60 ml does not.
	result, err := f.engine.CheckAvailability(context.Background(), "double-vodka", 60)
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}

	if result.OK {
		t.Error("OK = true, want false")
	}
	if len(result.Missing) != 1 || result.Missing[0].RequiredML != 60 {
		t.Errorf("Missing = %+v, want one entry requiring 60 ml", result.Missing)
	}
}

func TestCheckAvailability_ManualLinesIgnored(t *testing.T) {
	// Grenadine has no pump and no stock, but it is a manual line.
	f := newTestFixture(fullLevels())

	result, err := f.engine.CheckAvailability(context.Background(), "tequila-sunrise", 160)
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}
	if !result.OK {
		t.Errorf("OK = false, want true; missing = %+v", result.Missing)
	}
}

func TestCheckAvailability_UnknownRecipe(t *testing.T) {
	f := newTestFixture(fullLevels())

	if _, err := f.engine.CheckAvailability(context.Background(), "nonexistent", 160); !errors.Is(err, recipe.ErrNotFound) {
		t.Errorf("CheckAvailability() error = %v, want recipe.ErrNotFound", err)
	}
}

func TestCheckAvailability_InvalidVolume(t *testing.T) {
	f := newTestFixture(fullLevels())

	if _, err := f.engine.CheckAvailability(context.Background(), "screwdriver", 0); !errors.Is(err, recipe.ErrInvalidVolume) {
		t.Errorf("CheckAvailability(0) error = %v, want recipe.ErrInvalidVolume", err)
	}
}
