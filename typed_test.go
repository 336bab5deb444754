package crucible_test

import (
	"testing"

	"github.com/crucible-ecs/crucible"
)

func TestTypedAccessorsRoundTrip(t *testing.T) {
	w := newTestWorld(t)

	if _, err := crucible.RegisterComponentType[Position](w, "position"); err != nil {
		t.Fatalf("RegisterComponentType(Position): %v", err)
	}
	if _, err := crucible.RegisterComponentType[Velocity](w, "velocity"); err != nil {
		t.Fatalf("RegisterComponentType(Velocity): %v", err)
	}

	e, err := w.CreateEntity()
	if err != nil {
		t.Fatalf("CreateEntity() error = %v", err)
	}

	if err := crucible.AddComponent(w, e, Position{X: 1, Y: 2}); err != nil {
		t.Fatalf("AddComponent(Position) error = %v", err)
	}
	if err := crucible.AddComponent(w, e, Velocity{X: 3, Y: 4}); err != nil {
		t.Fatalf("AddComponent(Velocity) error = %v", err)
	}

	pos, err := crucible.GetComponent[Position](w, e)
	if err != nil {
		t.Fatalf("GetComponent[Position]() error = %v", err)
	}
	if *pos != (Position{X: 1, Y: 2}) {
		t.Fatalf("got %+v", *pos)
	}

	if err := crucible.SetComponent(w, e, Position{X: 10, Y: 20}); err != nil {
		t.Fatalf("SetComponent(Position) error = %v", err)
	}
	pos, _ = crucible.GetComponent[Position](w, e)
	if *pos != (Position{X: 10, Y: 20}) {
		t.Fatalf("SetComponent did not stick, got %+v", *pos)
	}

	if !crucible.HasComponent[Velocity](w, e) {
		t.Fatalf("expected HasComponent[Velocity] to be true")
	}
	if err := crucible.RemoveComponent[Velocity](w, e); err != nil {
		t.Fatalf("RemoveComponent[Velocity]() error = %v", err)
	}
	if crucible.HasComponent[Velocity](w, e) {
		t.Fatalf("expected HasComponent[Velocity] to be false after removal")
	}
}

func TestChunkColumnReflectsLiveRows(t *testing.T) {
	w := newTestWorld(t)
	posID, err := crucible.RegisterComponentType[Position](w, "position")
	if err != nil {
		t.Fatalf("RegisterComponentType: %v", err)
	}

	for i := 0; i < 5; i++ {
		e, err := w.CreateEntity()
		if err != nil {
			t.Fatalf("CreateEntity: %v", err)
		}
		if err := crucible.AddComponent(w, e, Position{X: float64(i)}); err != nil {
			t.Fatalf("AddComponent: %v", err)
		}
	}

	seen := 0
	crucible.QueryOf([]crucible.ComponentTypeID{posID}, nil).EachChunk(w, func(c *crucible.Chunk) bool {
		col := crucible.ChunkColumn[Position](c, posID)
		if len(col) != int(c.Count()) {
			t.Fatalf("column length %d != chunk count %d", len(col), c.Count())
		}
		seen += len(col)
		return true
	})
	if seen != 5 {
		t.Fatalf("expected 5 rows total, saw %d", seen)
	}
}
