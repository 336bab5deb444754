package arena

import "fmt"

// CapacityExhaustedError reports that a block could not satisfy a request
// even after committing to its full reservation.
type CapacityExhaustedError struct {
	What string
	Size uintptr
}

func (e CapacityExhaustedError) Error() string {
	return fmt.Sprintf("arena: %s capacity exhausted for %d-byte request", e.What, e.Size)
}

func errCapacityExhausted(what string, size uintptr) error {
	return CapacityExhaustedError{What: what, Size: size}
}

// ScopeOnPersistentError is returned when a caller attempts to open a
// scratch scope on an allocator flagged as persistent (spec.md §4.3).
type ScopeOnPersistentError struct{}

func (e ScopeOnPersistentError) Error() string {
	return "arena: cannot open a scratch scope on the persistent allocator"
}
