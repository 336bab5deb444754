package crucible

import (
	"testing"

	"go.uber.org/zap"
)

func newTestRegistry() *componentRegistry {
	return newComponentRegistry(zap.NewNop())
}

func TestRegistryRegisterAndFind(t *testing.T) {
	r := newTestRegistry()
	id, err := r.Register("position", 16, 8)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if r.Find("position") != id {
		t.Fatalf("Find() did not return the registered id")
	}
	info, ok := r.Info(id)
	if !ok || info.Size != 16 || info.Align != 8 {
		t.Fatalf("Info() = %+v, ok=%v", info, ok)
	}
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.Register("position", 16, 8); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := r.Register("position", 16, 8)
	if _, ok := err.(AlreadyRegisteredError); !ok {
		t.Fatalf("expected AlreadyRegisteredError, got %T", err)
	}
}

func TestRegistryRejectsBadLayout(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.Register("zero", 0, 8); err == nil {
		t.Fatalf("expected error for size 0")
	}
	if _, err := r.Register("odd-align", 4, 3); err == nil {
		t.Fatalf("expected error for non-power-of-two alignment")
	}
}

func TestRegistryOnceValidatesExistingLayout(t *testing.T) {
	r := newTestRegistry()
	id1, err := r.RegisterOnce("position", 16, 8)
	if err != nil {
		t.Fatalf("RegisterOnce() error = %v", err)
	}
	id2, err := r.RegisterOnce("position", 16, 8)
	if err != nil {
		t.Fatalf("RegisterOnce() second call error = %v", err)
	}
	if id1 != id2 {
		t.Fatalf("RegisterOnce() should return the same id for an identical layout")
	}
	if _, err := r.RegisterOnce("position", 24, 8); err == nil {
		t.Fatalf("expected LayoutMismatchError for conflicting layout")
	}
}

func TestRegistryCapacityExhausted(t *testing.T) {
	r := newTestRegistry()
	for i := 0; i < MaxComponents; i++ {
		if _, err := r.Register(string(rune('a'+i%26))+string(rune(i)), 1, 1); err != nil {
			t.Fatalf("Register() #%d error = %v", i, err)
		}
	}
	if _, err := r.Register("overflow", 1, 1); err == nil {
		t.Fatalf("expected CapacityExhaustedError at MaxComponents")
	}
}
