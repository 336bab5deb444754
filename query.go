package crucible

// Query selects archetypes by component signature: every archetype whose
// signature contains Include and shares no bit with Exclude matches
// (spec.md §4.11). The zero Query (empty Include, empty Exclude) matches
// every archetype.
type Query struct {
	Include Signature
	Exclude Signature
}

// QueryOf builds a Query from include/exclude component lists.
func QueryOf(include, exclude []ComponentTypeID) Query {
	return Query{Include: SignatureOf(include...), Exclude: SignatureOf(exclude...)}
}

func (q Query) matches(a *Archetype) bool {
	if !a.sig.Contains(q.Include) {
		return false
	}
	if q.Exclude.Intersects(a.sig) {
		return false
	}
	return true
}

// EachChunk evaluates q against the world's current archetype list and
// invokes fn once per chunk of every matching archetype, in each
// archetype's push-front order. fn returns false to stop iteration early.
// Because matching archetypes are recomputed on every call, EachChunk always
// reflects archetypes created since the last call — at the cost of
// re-scanning the full archetype list each time.
func (q Query) EachChunk(w *World, fn func(*Chunk) bool) {
	for _, a := range w.archetypes.all() {
		if !q.matches(a) {
			continue
		}
		for c := a.head; c != nil; c = c.next {
			if c.count == 0 {
				continue
			}
			if !fn(c) {
				return
			}
		}
	}
}

// CompiledQuery is a Query snapshotted against a fixed set of matching
// archetypes, skipping the per-call archetype scan. It goes stale as soon
// as a structural mutation introduces a new archetype that would have
// matched; callers must recompile after such mutations (spec.md §4.11).
type CompiledQuery struct {
	query   Query
	matched []*Archetype
	atCount int
}

// Compile snapshots every currently-matching archetype.
func (q Query) Compile(w *World) *CompiledQuery {
	cq := &CompiledQuery{query: q, atCount: w.ArchetypeCount()}
	for _, a := range w.archetypes.all() {
		if q.matches(a) {
			cq.matched = append(cq.matched, a)
		}
	}
	return cq
}

// EachChunk invokes fn once per chunk of every archetype matched at compile
// time. It returns StaleQueryError without iterating if the world has
// gained archetypes since Compile, rather than silently skipping entities
// that would now match.
func (cq *CompiledQuery) EachChunk(w *World, fn func(*Chunk) bool) error {
	now := w.ArchetypeCount()
	if now != cq.atCount {
		return StaleQueryError{CompiledAt: cq.atCount, Now: now}
	}
	for _, a := range cq.matched {
		for c := a.head; c != nil; c = c.next {
			if c.count == 0 {
				continue
			}
			if !fn(c) {
				return nil
			}
		}
	}
	return nil
}
