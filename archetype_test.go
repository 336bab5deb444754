package crucible

import "testing"

func TestArchetypeKeyFormat(t *testing.T) {
	if got := archetypeKey(nil); got != "0:" {
		t.Fatalf("archetypeKey(nil) = %q, want %q", got, "0:")
	}
	if got := archetypeKey([]ComponentTypeID{0, 2, 5}); got != "3: 0,2,5" {
		t.Fatalf("archetypeKey = %q, want %q", got, "3: 0,2,5")
	}
}

func TestArchetypeLayoutFitsChunkSize(t *testing.T) {
	infos := []ComponentInfo{{Name: "a", Size: 16, Align: 8}, {Name: "b", Size: 4, Align: 4}}
	a := newArchetype(0, []ComponentTypeID{0, 1}, infos)

	if a.chunkCapacity == 0 {
		t.Fatalf("chunkCapacity should be > 0")
	}
	last := a.colOffsets[len(a.colOffsets)-1]
	end := last + infos[len(infos)-1].Size*a.chunkCapacity
	if end > ChunkSize {
		t.Fatalf("layout overruns ChunkSize: end=%d", end)
	}
	// one more row of everything must not fit, else chunkCapacity is not maximal
	if a.fitsCapacity(a.chunkCapacity + 1) {
		t.Fatalf("chunkCapacity %d is not maximal", a.chunkCapacity)
	}
}

func TestArchetypeColumnOffsetsRespectAlignment(t *testing.T) {
	// first column single byte forces padding before the second's 8-byte aligned start
	infos := []ComponentInfo{{Name: "flag", Size: 1, Align: 1}, {Name: "big", Size: 8, Align: 8}}
	a := newArchetype(0, []ComponentTypeID{0, 1}, infos)
	if a.colOffsets[1]%8 != 0 {
		t.Fatalf("second column offset %d is not 8-byte aligned", a.colOffsets[1])
	}
}

func TestArchetypeColOfLookup(t *testing.T) {
	infos := []ComponentInfo{{Name: "a", Size: 4, Align: 4}, {Name: "b", Size: 4, Align: 4}}
	a := newArchetype(0, []ComponentTypeID{2, 9}, infos)
	if a.colOf(2) != 0 {
		t.Fatalf("colOf(2) = %d, want 0", a.colOf(2))
	}
	if a.colOf(9) != 1 {
		t.Fatalf("colOf(9) = %d, want 1", a.colOf(9))
	}
	if a.colOf(3) != -1 {
		t.Fatalf("colOf(3) = %d, want -1 (not in archetype)", a.colOf(3))
	}
}

func TestArchetypeRegistryDedupesReorderedTypes(t *testing.T) {
	reg := newArchetypeRegistry()
	infoOf := func(t ComponentTypeID) ComponentInfo {
		return ComponentInfo{Name: "c", Size: 4, Align: 4}
	}
	a := reg.getOrCreate([]ComponentTypeID{3, 1, 2}, infoOf)
	b := reg.getOrCreate([]ComponentTypeID{1, 2, 3}, infoOf)
	if a != b {
		t.Fatalf("expected the same archetype regardless of request order")
	}
	if reg.count() != 1 {
		t.Fatalf("count() = %d, want 1", reg.count())
	}
}
