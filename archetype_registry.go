package crucible

import "sort"

// archetypeRegistry deduplicates archetypes by canonical component-set key
// and hands out stable integer ids in creation order (spec.md §4.7).
type archetypeRegistry struct {
	byKey map[string]*Archetype
	list  []*Archetype
}

func newArchetypeRegistry() *archetypeRegistry {
	return &archetypeRegistry{
		byKey: make(map[string]*Archetype, 16),
	}
}

// getOrCreate returns the archetype matching the given component set,
// creating one if none exists yet. types need not be sorted or
// deduplicated by the caller.
func (r *archetypeRegistry) getOrCreate(types []ComponentTypeID, infoOf func(ComponentTypeID) ComponentInfo) *Archetype {
	sorted := sortedUnique(types)
	key := archetypeKey(sorted)
	if a, ok := r.byKey[key]; ok {
		return a
	}
	infos := make([]ComponentInfo, len(sorted))
	for i, t := range sorted {
		infos[i] = infoOf(t)
	}
	a := newArchetype(len(r.list), sorted, infos)
	r.byKey[key] = a
	r.list = append(r.list, a)
	return a
}

// lookup returns the archetype for an already-sorted, already-deduplicated
// type list without creating one, or nil if absent.
func (r *archetypeRegistry) lookup(sortedTypes []ComponentTypeID) *Archetype {
	return r.byKey[archetypeKey(sortedTypes)]
}

func (r *archetypeRegistry) all() []*Archetype {
	return r.list
}

func (r *archetypeRegistry) count() int {
	return len(r.list)
}

// sortedUnique returns types sorted ascending with duplicates collapsed,
// implementing the coalescing step of entity creation with a component
// list that names the same type more than once.
func sortedUnique(types []ComponentTypeID) []ComponentTypeID {
	if len(types) == 0 {
		return nil
	}
	cp := append([]ComponentTypeID(nil), types...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	out := cp[:1]
	for _, t := range cp[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}
