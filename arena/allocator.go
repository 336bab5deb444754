package arena

import "unsafe"

// Allocator is the uniform allocation contract every core ECS/allocator
// consumer is written against. Two concrete backends exist — ArenaAllocator
// and DynamicAllocator — and callers never distinguish between them
// (spec.md §4.4).
type Allocator interface {
	Alloc(size uintptr, tag Tag) (unsafe.Pointer, error)
	Realloc(ptr unsafe.Pointer, oldSize, newSize uintptr, tag Tag) (unsafe.Pointer, error)
	Free(ptr unsafe.Pointer, size uintptr, tag Tag)
	ScopeBegin() (*Scope, error)
	ScopeEnd(scope *Scope, tag Tag)
	ScopeSupported() bool
	Stats() *tagStats
}

// ArenaAllocator is the default backend: O(1) bump allocation, O(1) scopes,
// and no-op free/shrink-realloc.
type ArenaAllocator struct {
	chain *Chain
}

// NewArenaAllocator wraps chain as an Allocator. persistent marks the
// allocator as the world's long-lived store, forbidding scopes on it.
func NewArenaAllocator(chain *Chain, persistent bool) *ArenaAllocator {
	chain.persistent = persistent
	return &ArenaAllocator{chain: chain}
}

func (a *ArenaAllocator) Alloc(size uintptr, tag Tag) (unsafe.Pointer, error) {
	return a.chain.Alloc(size, pointerAlign, tag)
}

// Realloc grows or shrinks an allocation. Shrinking is a no-op (the spare
// capacity is simply not reused until the next scope reset); growing
// allocates fresh and copies forward, since arena memory cannot be resized
// in place once followed by another allocation.
func (a *ArenaAllocator) Realloc(ptr unsafe.Pointer, oldSize, newSize uintptr, tag Tag) (unsafe.Pointer, error) {
	if newSize <= oldSize {
		return ptr, nil
	}
	np, err := a.chain.Alloc(newSize, pointerAlign, tag)
	if err != nil {
		return nil, err
	}
	if ptr != nil && oldSize > 0 {
		copy(unsafe.Slice((*byte)(np), newSize), unsafe.Slice((*byte)(ptr), oldSize))
	}
	return np, nil
}

// Free is a no-op for the arena backend: individual allocations are
// reclaimed in bulk by a scope reset or chain clear, never one at a time.
func (a *ArenaAllocator) Free(ptr unsafe.Pointer, size uintptr, tag Tag) {}

func (a *ArenaAllocator) ScopeBegin() (*Scope, error) { return BeginScope(a.chain) }

func (a *ArenaAllocator) ScopeEnd(s *Scope, tag Tag) { s.End(tag) }

func (a *ArenaAllocator) ScopeSupported() bool { return !a.chain.persistent }

func (a *ArenaAllocator) Stats() *tagStats { return a.chain.Stats() }

// Clear resets the underlying chain to its initial position.
func (a *ArenaAllocator) Clear(tag Tag) { a.chain.Clear(tag) }

// Release returns the underlying chain's reservations to the OS.
func (a *ArenaAllocator) Release() error { return a.chain.Release() }

// dynamicAlloc records the bookkeeping DynamicAllocator needs to support
// per-allocation free and watermark-based scopes.
type dynamicAlloc struct {
	mem []byte
	tag Tag
}

// DynamicAllocator is the non-arena backend: every allocation is a regular
// Go heap allocation with per-allocation metadata. realloc may move.
// Scopes are supported via a freelist-stamped high-watermark: Begin
// captures the current allocation count, End "frees" (drops references to,
// and subtracts tag bytes for) every allocation made since.
type DynamicAllocator struct {
	allocs []dynamicAlloc
	tags   tagStats
}

// NewDynamicAllocator creates an empty dynamic allocator.
func NewDynamicAllocator() *DynamicAllocator {
	return &DynamicAllocator{}
}

func (d *DynamicAllocator) Alloc(size uintptr, tag Tag) (unsafe.Pointer, error) {
	mem := make([]byte, size)
	d.allocs = append(d.allocs, dynamicAlloc{mem: mem, tag: tag})
	d.tags.add(tag, uint64(size))
	if size == 0 {
		return unsafe.Pointer(&struct{}{}), nil
	}
	return unsafe.Pointer(&mem[0]), nil
}

func (d *DynamicAllocator) Realloc(ptr unsafe.Pointer, oldSize, newSize uintptr, tag Tag) (unsafe.Pointer, error) {
	np, err := d.Alloc(newSize, tag)
	if err != nil {
		return nil, err
	}
	if ptr != nil && oldSize > 0 {
		n := oldSize
		if newSize < n {
			n = newSize
		}
		copy(unsafe.Slice((*byte)(np), n), unsafe.Slice((*byte)(ptr), n))
	}
	d.Free(ptr, oldSize, tag)
	return np, nil
}

func (d *DynamicAllocator) Free(ptr unsafe.Pointer, size uintptr, tag Tag) {
	if ptr == nil {
		return
	}
	for i, a := range d.allocs {
		if len(a.mem) > 0 && unsafe.Pointer(&a.mem[0]) == ptr {
			d.allocs = append(d.allocs[:i], d.allocs[i+1:]...)
			d.tags.sub(tag, uint64(size))
			return
		}
	}
}

func (d *DynamicAllocator) ScopeBegin() (*Scope, error) {
	return &Scope{saved: uint64(len(d.allocs))}, nil
}

func (d *DynamicAllocator) ScopeEnd(s *Scope, tag Tag) {
	if s.ended {
		return
	}
	mark := int(s.saved)
	if mark > len(d.allocs) {
		mark = len(d.allocs)
	}
	for _, a := range d.allocs[mark:] {
		d.tags.sub(a.tag, uint64(len(a.mem)))
	}
	d.allocs = d.allocs[:mark]
	s.ended = true
}

func (d *DynamicAllocator) ScopeSupported() bool { return true }

func (d *DynamicAllocator) Stats() *tagStats { return &d.tags }
