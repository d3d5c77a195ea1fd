package recipe

import (
	"errors"
	"testing"
)

func sunrise() *Recipe {
	return &Recipe{
		ID:        "tequila-sunrise",
		Name:      "Tequila Sunrise",
		Alcoholic: true,
		Lines: []Line{
			{IngredientID: "tequila", Mode: ModeAutomatic, VolumeML: 50},
			{IngredientID: "oj", Mode: ModeAutomatic, VolumeML: 100},
			{IngredientID: "grenadine", Mode: ModeAutomatic, VolumeML: 10, Delayed: true},
		},
		Sizes: []int{200, 300, 400},
	}
}

func TestScale_Proportions(t *testing.T) {
	plan, err := Scale(sunrise(), 320)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}

	// factor = 320/160 = 2.0
	want := map[string]int{"tequila": 100, "oj": 200, "grenadine": 20}
	for _, l := range plan.Lines {
		if l.VolumeML != want[l.IngredientID] {
			t.Errorf("%s = %d ml, want %d", l.IngredientID, l.VolumeML, want[l.IngredientID])
		}
	}
}

func TestScale_HalfUpRounding(t *testing.T) {
	r := &Recipe{
		ID: "r",
		Lines: []Line{
			{IngredientID: "a", Mode: ModeAutomatic, VolumeML: 1},
			{IngredientID: "b", Mode: ModeAutomatic, VolumeML: 1},
		},
	}

	// factor = 3/2 = 1.5; each line 1.5 ml -> rounds half-up to 2
	plan, err := Scale(r, 3)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}
	for _, l := range plan.Lines {
		if l.VolumeML != 2 {
			t.Errorf("%s = %d ml, want 2 (half-up)", l.IngredientID, l.VolumeML)
		}
	}
}

func TestScale_NoRenormalisation(t *testing.T) {
	r := &Recipe{
		ID: "r",
		Lines: []Line{
			{IngredientID: "a", Mode: ModeAutomatic, VolumeML: 1},
			{IngredientID: "b", Mode: ModeAutomatic, VolumeML: 1},
			{IngredientID: "c", Mode: ModeAutomatic, VolumeML: 1},
		},
	}

	plan, err := Scale(r, 100)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}

	// 100/3 = 33.33 per line -> 33 each, total 99. Drift is bounded by
	// one millilitre per line and is deliberately not corrected.
	total := plan.TotalML()
	if total != 99 {
		t.Errorf("TotalML() = %d, want 99", total)
	}
	drift := plan.TargetML - total
	if drift < -len(r.Lines) || drift > len(r.Lines) {
		t.Errorf("drift %d exceeds one ml per line", drift)
	}
}

func TestScale_ManualLinesCarried(t *testing.T) {
	r := &Recipe{
		ID: "r",
		Lines: []Line{
			{IngredientID: "rum", Mode: ModeAutomatic, VolumeML: 60},
			{IngredientID: "mint", Mode: ModeManual, VolumeML: 0, Instruction: "muddle mint leaves"},
		},
	}

	plan, err := Scale(r, 120)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}

	if len(plan.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(plan.Lines))
	}
	manual := plan.Lines[1]
	if manual.Mode != ModeManual {
		t.Errorf("Mode = %v, want manual", manual.Mode)
	}
	if manual.Instruction != "muddle mint leaves" {
		t.Errorf("Instruction = %q, not carried over", manual.Instruction)
	}
	if manual.VolumeML != 0 {
		t.Errorf("VolumeML = %d, want 0", manual.VolumeML)
	}
}

func TestScale_Errors(t *testing.T) {
	t.Run("non-positive target", func(t *testing.T) {
		if _, err := Scale(sunrise(), 0); !errors.Is(err, ErrInvalidVolume) {
			t.Errorf("Scale(0) error = %v, want ErrInvalidVolume", err)
		}
		if _, err := Scale(sunrise(), -50); !errors.Is(err, ErrInvalidVolume) {
			t.Errorf("Scale(-50) error = %v, want ErrInvalidVolume", err)
		}
	})

	t.Run("zero total recipe", func(t *testing.T) {
		r := &Recipe{ID: "r", Lines: []Line{
			{IngredientID: "mint", Mode: ModeManual, VolumeML: 0},
		}}
		if _, err := Scale(r, 200); !errors.Is(err, ErrInvalidRecipe) {
			t.Errorf("Scale() error = %v, want ErrInvalidRecipe", err)
		}
	})

	t.Run("empty recipe", func(t *testing.T) {
		if _, err := Scale(&Recipe{ID: "r"}, 200); !errors.Is(err, ErrInvalidRecipe) {
			t.Errorf("Scale() error = %v, want ErrInvalidRecipe", err)
		}
	})
}
