package crucible

import "fmt"

// InvalidArgumentError covers malformed input: a nil world, an invalid
// entity id, an invalid component id, or an invalid type list.
type InvalidArgumentError struct {
	Reason string
	Detail string
}

func (e InvalidArgumentError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid argument: %s", e.Reason)
	}
	return fmt.Sprintf("invalid argument: %s (%s)", e.Reason, e.Detail)
}

// AlreadyRegisteredError is returned by Register when a component name is
// already in use.
type AlreadyRegisteredError struct {
	Name string
}

func (e AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("component %q is already registered", e.Name)
}

// LayoutMismatchError is returned by RegisterOnce when a previously
// registered component's size/align disagree with the requested layout.
type LayoutMismatchError struct {
	Name                string
	WantSize, WantAlign uint32
	GotSize, GotAlign   uint32
}

func (e LayoutMismatchError) Error() string {
	return fmt.Sprintf(
		"component %q already registered with size=%d align=%d, got size=%d align=%d",
		e.Name, e.WantSize, e.WantAlign, e.GotSize, e.GotAlign,
	)
}

// CapacityExhaustedError is returned when a fixed-size collection (the
// component registry, the entity directory, the archetype list, or the
// free-index stack) cannot grow further.
type CapacityExhaustedError struct {
	What  string
	Limit int
}

func (e CapacityExhaustedError) Error() string {
	return fmt.Sprintf("%s exhausted (limit %d)", e.What, e.Limit)
}

// AllocationFailedError wraps an underlying OS reservation/commit failure
// or hash-table insertion failure surfaced from the allocator layer.
type AllocationFailedError struct {
	Op  string
	Err error
}

func (e AllocationFailedError) Error() string {
	return fmt.Sprintf("allocation failed during %s: %v", e.Op, e.Err)
}

func (e AllocationFailedError) Unwrap() error {
	return e.Err
}

// ReentrantMutationError is returned when a structural operation (create,
// destroy, add/remove component) is invoked while another is already in
// flight on the same World — e.g. from inside an EachChunk callback. The
// world model is single-writer and synchronous (spec.md §5); nesting one
// structural op inside another is a programmer error, not a race.
type ReentrantMutationError struct {
	Op string
}

func (e ReentrantMutationError) Error() string {
	return fmt.Sprintf("crucible: %s called while a structural mutation is already in flight on this world", e.Op)
}

// StaleQueryError is returned by CompiledQuery.EachChunk when the world's
// archetype count has grown since the query was compiled (spec.md §4.11:
// implementations SHOULD detect this; we report it as an error rather than
// asserting, keeping the "no operation throws" propagation policy).
type StaleQueryError struct {
	CompiledAt, Now int
}

func (e StaleQueryError) Error() string {
	return fmt.Sprintf("compiled query is stale: %d archetypes at compile time, %d now", e.CompiledAt, e.Now)
}
