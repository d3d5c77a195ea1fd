package ingredient

import "testing"

func TestClass(t *testing.T) {
	tests := []struct {
		name      string
		alcoholic bool
		want      Class
	}{
		{"spirit", true, ClassSpirit},
		{"mixer", false, ClassMixer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &Ingredient{ID: "x", Alcoholic: tt.alcoholic}
			if got := ing.Class(); got != tt.want {
				t.Errorf("Class() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultCapacity(t *testing.T) {
	if got := DefaultCapacity(ClassSpirit); got != 700 {
		t.Errorf("DefaultCapacity(spirit) = %v, want 700", got)
	}
	if got := DefaultCapacity(ClassMixer); got != 1000 {
		t.Errorf("DefaultCapacity(mixer) = %v, want 1000", got)
	}
}
