package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/SaschaWenning/cocktailbot-core/internal/ingredient"
)

// MockRepository is an in-memory Repository for testing.
type MockRepository struct {
	levels    map[string]*Level
	failWrite bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{levels: make(map[string]*Level)}
}

func (m *MockRepository) GetByIngredient(_ context.Context, ingredientID string) (*Level, error) {
	if l, ok := m.levels[ingredientID]; ok {
		return l.Copy(), nil
	}
	return nil, ErrNotFound
}

func (m *MockRepository) List(_ context.Context) ([]Level, error) {
	var out []Level
	for _, l := range m.levels {
		out = append(out, *l.Copy())
	}
	return out, nil
}

func (m *MockRepository) Upsert(_ context.Context, level *Level) error {
	if m.failWrite {
		return errors.New("disk full")
	}
	m.levels[level.IngredientID] = level.Copy()
	return nil
}

func (m *MockRepository) Delete(_ context.Context, ingredientID string) error {
	if _, ok := m.levels[ingredientID]; !ok {
		return ErrNotFound
	}
	delete(m.levels, ingredientID)
	return nil
}

// MockResolver returns fixed ingredient reference data.
type MockResolver struct {
	ingredients map[string]*ingredient.Ingredient
}

func (m *MockResolver) GetByID(_ context.Context, id string) (*ingredient.Ingredient, error) {
	if ing, ok := m.ingredients[id]; ok {
		return ing, nil
	}
	return nil, ingredient.ErrNotFound
}

func newTestLedger() (*Ledger, *MockRepository) {
	repo := NewMockRepository()
	resolver := &MockResolver{ingredients: map[string]*ingredient.Ingredient{
		"vodka": {ID: "vodka", Name: "Vodka", Alcoholic: true},
		"oj":    {ID: "oj", Name: "Orange Juice", Alcoholic: false},
	}}
	return NewLedger(repo, resolver), repo
}

func TestDebit_Normal(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	if _, err := ledger.Refill(ctx, "vodka"); err != nil {
		t.Fatalf("Refill() error = %v", err)
	}

	level, err := ledger.Debit(ctx, "vodka", 40)
	if err != nil {
		t.Fatalf("Debit() error = %v", err)
	}

	if level.CurrentML != 660 {
		t.Errorf("CurrentML = %v, want 660", level.CurrentML)
	}
}

func TestDebit_ClampsAtZero(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	if _, err := ledger.SetLevel(ctx, "oj", 0); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	if _, err := ledger.Credit(ctx, "oj", 50); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}

	level, err := ledger.Debit(ctx, "oj", 80)
	if err != nil {
		t.Fatalf("Debit() error = %v", err)
	}

	if level.CurrentML != 0 {
		t.Errorf("CurrentML = %v, want 0 (clamped)", level.CurrentML)
	}
}

func TestDebit_NegativeVolume(t *testing.T) {
	ledger, _ := newTestLedger()

	_, err := ledger.Debit(context.Background(), "vodka", -10)
	if !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("Debit(-10) error = %v, want ErrInvalidVolume", err)
	}
}

func TestFirstTouch_ClassDefaults(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	tests := []struct {
		ingredientID string
		wantCapacity float64
	}{
		{"vodka", 700},   // spirit
		{"oj", 1000},     // mixer
		{"unknown", 1000}, // fallback to mixer default
	}

	for _, tt := range tests {
		t.Run(tt.ingredientID, func(t *testing.T) {
			level, err := ledger.Get(ctx, tt.ingredientID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if level.CapacityML != tt.wantCapacity {
				t.Errorf("CapacityML = %v, want %v", level.CapacityML, tt.wantCapacity)
			}
			if level.CurrentML != 0 {
				t.Errorf("CurrentML = %v, want 0 on first touch", level.CurrentML)
			}
		})
	}
}

func TestRefill(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	level, err := ledger.Refill(ctx, "vodka")
	if err != nil {
		t.Fatalf("Refill() error = %v", err)
	}

	if level.CurrentML != level.CapacityML {
		t.Errorf("CurrentML = %v, want capacity %v", level.CurrentML, level.CapacityML)
	}
	if level.LastRefill == nil {
		t.Error("LastRefill not stamped")
	}
}

func TestSetCapacity_ClampsLevel(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	if _, err := ledger.Refill(ctx, "vodka"); err != nil {
		t.Fatalf("Refill() error = %v", err)
	}

	level, err := ledger.SetCapacity(ctx, "vodka", 500)
	if err != nil {
		t.Fatalf("SetCapacity() error = %v", err)
	}

	if level.CapacityML != 500 {
		t.Errorf("CapacityML = %v, want 500", level.CapacityML)
	}
	if level.CurrentML != 500 {
		t.Errorf("CurrentML = %v, want 500 (clamped to new capacity)", level.CurrentML)
	}
}

func TestCredit_ClampsAtCapacity(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()

	if _, err := ledger.Refill(ctx, "vodka"); err != nil {
		t.Fatalf("Refill() error = %v", err)
	}

	level, err := ledger.Credit(ctx, "vodka", 200)
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}

	if level.CurrentML != level.CapacityML {
		t.Errorf("CurrentML = %v, want capacity %v", level.CurrentML, level.CapacityML)
	}
}

func TestDebit_PersistFailureIsNonFatal(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()

	if _, err := ledger.Refill(ctx, "vodka"); err != nil {
		t.Fatalf("Refill() error = %v", err)
	}

	repo.failWrite = true

	level, err := ledger.Debit(ctx, "vodka", 40)
	if !errors.Is(err, ErrLedgerWrite) {
		t.Errorf("Debit() error = %v, want ErrLedgerWrite", err)
	}
	if level == nil {
		t.Fatal("Debit() returned nil level on persist failure")
	}
	if level.CurrentML != 660 {
		t.Errorf("CurrentML = %v, want 660 (in-memory change kept)", level.CurrentML)
	}

	// Subsequent reads see the in-memory level
	repo.failWrite = false
	got, err := ledger.Get(ctx, "vodka")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CurrentML != 660 {
		t.Errorf("Get() CurrentML = %v, want 660", got.CurrentML)
	}
}

func TestRefreshCache(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()

	if _, err := ledger.Refill(ctx, "vodka"); err != nil {
		t.Fatalf("Refill() error = %v", err)
	}

	// New ledger over the same repository sees the persisted level
	fresh := NewLedger(repo, nil)
	if err := fresh.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	level, err := fresh.Get(ctx, "vodka")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if level.CurrentML != 700 {
		t.Errorf("CurrentML = %v, want 700", level.CurrentML)
	}
}
