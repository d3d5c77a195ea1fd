package pump

import (
	"context"
	"errors"
	"testing"
)

// MockRepository is an in-memory Repository for testing.
type MockRepository struct {
	bindings map[string]*Binding
}

func NewMockRepository() *MockRepository {
	return &MockRepository{bindings: make(map[string]*Binding)}
}

func (m *MockRepository) GetByID(_ context.Context, id string) (*Binding, error) {
	if b, ok := m.bindings[id]; ok {
		return b.Copy(), nil
	}
	return nil, ErrNotFound
}

func (m *MockRepository) List(_ context.Context) ([]Binding, error) {
	var out []Binding
	for _, b := range m.bindings {
		out = append(out, *b.Copy())
	}
	return out, nil
}

func (m *MockRepository) Create(_ context.Context, b *Binding) error {
	if _, ok := m.bindings[b.ID]; ok {
		return ErrExists
	}
	m.bindings[b.ID] = b.Copy()
	return nil
}

func (m *MockRepository) Update(_ context.Context, b *Binding) error {
	if _, ok := m.bindings[b.ID]; !ok {
		return ErrNotFound
	}
	m.bindings[b.ID] = b.Copy()
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.bindings[id]; !ok {
		return ErrNotFound
	}
	delete(m.bindings, id)
	return nil
}

func newTestRegistry(t *testing.T, bindings ...*Binding) *Registry {
	t.Helper()
	repo := NewMockRepository()
	reg := NewRegistry(repo)
	ctx := context.Background()
	for _, b := range bindings {
		if err := reg.Create(ctx, b); err != nil {
			t.Fatalf("seeding binding %s: %v", b.ID, err)
		}
	}
	return reg
}

func TestResolveByIngredient(t *testing.T) {
	reg := newTestRegistry(t,
		&Binding{ID: "pump-1", Pin: 17, IngredientID: "vodka", FlowRateMLPerSec: 10, Enabled: true},
		&Binding{ID: "pump-2", Pin: 27, IngredientID: "oj", FlowRateMLPerSec: 12, Enabled: true},
	)

	b, err := reg.ResolveByIngredient(context.Background(), "vodka")
	if err != nil {
		t.Fatalf("ResolveByIngredient() error = %v", err)
	}
	if b.ID != "pump-1" {
		t.Errorf("resolved pump = %s, want pump-1", b.ID)
	}
}

func TestResolveByIngredient_SkipsDisabled(t *testing.T) {
	reg := newTestRegistry(t,
		&Binding{ID: "pump-1", Pin: 17, IngredientID: "vodka", FlowRateMLPerSec: 10, Enabled: false},
	)

	_, err := reg.ResolveByIngredient(context.Background(), "vodka")
	if !errors.Is(err, ErrNoPumpForIngredient) {
		t.Errorf("ResolveByIngredient() error = %v, want ErrNoPumpForIngredient", err)
	}
}

func TestResolveByIngredient_Unknown(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.ResolveByIngredient(context.Background(), "absinthe")
	if !errors.Is(err, ErrNoPumpForIngredient) {
		t.Errorf("ResolveByIngredient() error = %v, want ErrNoPumpForIngredient", err)
	}
}

func TestCalibrate(t *testing.T) {
	reg := newTestRegistry(t,
		&Binding{ID: "pump-1", Pin: 17, IngredientID: "vodka", Enabled: true},
	)
	ctx := context.Background()

	// 5 second run dispensed 48 ml -> 9.6 ml/s
	b, err := reg.Calibrate(ctx, "pump-1", 5000, 48)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	if b.FlowRateMLPerSec != 9.6 {
		t.Errorf("FlowRateMLPerSec = %v, want 9.6", b.FlowRateMLPerSec)
	}
	if !b.Calibrated() {
		t.Error("Calibrated() = false after calibration")
	}

	// Flow rate persisted and visible on fresh lookup
	got, err := reg.Get(ctx, "pump-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.FlowRateMLPerSec != 9.6 {
		t.Errorf("persisted FlowRateMLPerSec = %v, want 9.6", got.FlowRateMLPerSec)
	}
}

func TestCalibrate_InvalidInputs(t *testing.T) {
	reg := newTestRegistry(t,
		&Binding{ID: "pump-1", Pin: 17, IngredientID: "vodka", Enabled: true},
	)
	ctx := context.Background()

	tests := []struct {
		name       string
		durationMS int
		measuredML float64
	}{
		{"zero duration", 0, 50},
		{"negative duration", -1000, 50},
		{"zero volume", 5000, 0},
		{"negative volume", 5000, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Calibrate(ctx, "pump-1", tt.durationMS, tt.measuredML)
			if !errors.Is(err, ErrInvalidCalibration) {
				t.Errorf("Calibrate() error = %v, want ErrInvalidCalibration", err)
			}
		})
	}
}

func TestCreate_Validation(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		binding *Binding
	}{
		{"missing id", &Binding{Pin: 17, IngredientID: "vodka"}},
		{"negative pin", &Binding{ID: "pump-1", Pin: -1, IngredientID: "vodka"}},
		{"missing ingredient", &Binding{ID: "pump-1", Pin: 17}},
		{"negative flow", &Binding{ID: "pump-1", Pin: 17, IngredientID: "vodka", FlowRateMLPerSec: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.Create(ctx, tt.binding); !errors.Is(err, ErrInvalidBinding) {
				t.Errorf("Create() error = %v, want ErrInvalidBinding", err)
			}
		})
	}
}

func TestUpdate_DisableHidesFromResolution(t *testing.T) {
	reg := newTestRegistry(t,
		&Binding{ID: "pump-1", Pin: 17, IngredientID: "vodka", FlowRateMLPerSec: 10, Enabled: true},
	)
	ctx := context.Background()

	b, err := reg.Get(ctx, "pump-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b.Enabled = false
	if err := reg.Update(ctx, b); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := reg.ResolveByIngredient(ctx, "vodka"); !errors.Is(err, ErrNoPumpForIngredient) {
		t.Errorf("ResolveByIngredient() after disable error = %v, want ErrNoPumpForIngredient", err)
	}
}
