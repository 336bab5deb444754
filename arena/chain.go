package arena

import (
	"unsafe"
)

// defaultReserve/defaultCommit are the sizes new chains use when the caller
// doesn't specify otherwise, satisfying §6's "rsv ≥ cmt ≥ header_size, all
// page-aligned" requirement for any page size up to 2MiB huge pages.
const (
	defaultReserve = 64 << 20 // 64 MiB virtual reservation per block
	defaultCommit  = 64 << 10 // 64 KiB committed up front
)

// Chain links arena blocks tail-to-head. The head ("current") is the only
// block that ever allocates; overflow pushes a new head. Chains are not
// thread-safe: one chain per cooperative task/thread, per spec.md §5.
type Chain struct {
	current    *block
	free       []*block // reclaimed blocks, reusable by matching rsv size
	tags       tagStats
	cfg        blockConfig
	persistent bool // true for the world's persistent allocator (no scopes)
}

// ChainOption configures a new Chain.
type ChainOption func(*blockConfig)

// WithReserve sets the default per-block reservation size.
func WithReserve(n uintptr) ChainOption {
	return func(c *blockConfig) { c.defaultReserve = n }
}

// WithCommit sets the default initial committed size.
func WithCommit(n uintptr) ChainOption {
	return func(c *blockConfig) { c.defaultCommit = n }
}

// WithFlags sets reservation flags (e.g. FlagLargePages).
func WithFlags(f BlockFlags) ChainOption {
	return func(c *blockConfig) { c.flags = f }
}

// NewChain creates an empty chain and reserves its first block.
func NewChain(opts ...ChainOption) (*Chain, error) {
	cfg := blockConfig{defaultReserve: defaultReserve, defaultCommit: defaultCommit}
	for _, opt := range opts {
		opt(&cfg)
	}
	ch := &Chain{cfg: cfg}
	b, err := newBlock(cfg.defaultReserve, cfg)
	if err != nil {
		return nil, err
	}
	ch.current = b
	return ch, nil
}

// Pos returns the chain's global monotonic cursor, used for scratch markers.
func (c *Chain) Pos() uint64 {
	return c.current.localPos()
}

// Alloc bump-allocates size bytes aligned to align, tagged for accounting.
// Growth into a new block happens transparently on overflow. size==0 still
// yields a valid, aligned pointer (spec.md §4.1/§9 open question: the arena
// position advance for a size-0 request is permissive, so we simply advance
// by the alignment padding and no further).
func (c *Chain) Alloc(size, align uintptr, tag Tag) (unsafe.Pointer, error) {
	if p, ok := c.current.tryAlloc(size, align); ok {
		c.tags.add(tag, uint64(size))
		return p, nil
	}
	if err := c.grow(size); err != nil {
		return nil, err
	}
	p, ok := c.current.tryAlloc(size, align)
	if !ok {
		return nil, errCapacityExhausted("block", size)
	}
	c.tags.add(tag, uint64(size))
	return p, nil
}

// grow allocates a new block sized to hold at least `need` bytes (beyond
// its header), preferring a matching free-list entry over a fresh OS
// reservation, and pushes it as the new head.
func (c *Chain) grow(need uintptr) error {
	want := max(need+headerSize, c.cfg.defaultReserve)
	prevBase := c.current.basePos + uint64(c.current.rsv)

	for i, fb := range c.free {
		if fb.rsv >= want {
			c.free = append(c.free[:i], c.free[i+1:]...)
			fb.pos = headerSize
			fb.basePos = prevBase
			fb.prev = c.current
			c.current = fb
			return nil
		}
	}

	nb, err := newBlock(want, c.cfg)
	if err != nil {
		return err
	}
	nb.basePos = prevBase
	nb.prev = c.current
	c.current = nb
	return nil
}

// ResetTo rewinds the chain to the global position pos, popping any blocks
// allocated after it onto the free list and subtracting the rewound bytes
// from tag's live-byte counter.
func (c *Chain) ResetTo(pos uint64, tag Tag) {
	rewound := uint64(0)
	for c.current.prev != nil && c.current.basePos >= pos {
		rewound += uint64(c.current.pos - headerSize)
		popped := c.current
		c.current = c.current.prev
		popped.prev = nil
		c.free = append(c.free, popped)
	}
	if pos < c.current.basePos {
		pos = c.current.basePos
	}
	local := uintptr(pos - c.current.basePos)
	if local > c.current.pos {
		local = c.current.pos
	}
	rewound += uint64(c.current.pos - local)
	c.current.pos = local
	c.tags.sub(tag, rewound)
}

// Clear resets the chain to its initial position (just past the first
// block's header), equivalent to ResetTo(initialPos, tag).
func (c *Chain) Clear(tag Tag) {
	for c.current.prev != nil {
		popped := c.current
		c.current = c.current.prev
		popped.prev = nil
		c.free = append(c.free, popped)
	}
	rewound := uint64(c.current.pos - headerSize)
	c.current.pos = headerSize
	c.tags.sub(tag, rewound)
}

// Stats exposes the chain's tag accounting for diagnostics.
func (c *Chain) Stats() *tagStats {
	return &c.tags
}

// Release returns every block (current, chained, and free-listed) to the
// OS. Call only at teardown.
func (c *Chain) Release() error {
	var firstErr error
	for b := c.current; b != nil; {
		next := b.prev
		if err := b.release(); err != nil && firstErr == nil {
			firstErr = err
		}
		b = next
	}
	for _, b := range c.free {
		if err := b.release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.current = nil
	c.free = nil
	return firstErr
}
