package arena

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// BlockFlags configures reservation behavior for a block.
type BlockFlags uint32

const (
	// FlagLargePages marks a chain's blocks for huge-page backing. It is
	// stored in the block configuration only: newBlock reserves ordinary
	// pages whether or not it is set.
	FlagLargePages BlockFlags = 1 << iota
)

const pointerAlign = uintptr(unsafe.Sizeof(uintptr(0)))

var pageSize = uintptr(unix.Getpagesize())

// blockConfig carries both the block-local sizing this block was reserved
// with and the default sizing future sibling blocks in the same chain
// should use, per spec.md's "header stores both the block-local sizes and
// the configured default chunk sizes for future growth" requirement.
type blockConfig struct {
	defaultReserve uintptr
	defaultCommit  uintptr
	flags          BlockFlags
}

// block is a single reserve/commit arena block: a contiguous virtual range
// reserved up front, with pages committed lazily as allocations demand them.
type block struct {
	mem     []byte // full reservation, PROT_NONE beyond cmt
	rsv     uintptr
	cmt     uintptr
	pos     uintptr // next bump-allocation offset, already past the header
	basePos uint64  // global arena_pos this block's offset 0 corresponds to
	prev    *block
	cfg     blockConfig
}

// headerSize is the fixed prefix reserved for block bookkeeping before the
// first allocation may begin; it keeps `pos` aligned from the start.
const headerSize = 64

// newBlock reserves a fresh block of at least size bytes (rounded up to a
// page multiple) honoring cfg's defaults, and commits the initial prefix.
func newBlock(size uintptr, cfg blockConfig) (*block, error) {
	rsv := alignUp(max(size, cfg.defaultReserve), pageSize)
	cmt := alignUp(min(max(cfg.defaultCommit, headerSize), rsv), pageSize)

	mem, err := unix.Mmap(-1, 0, int(rsv), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: reserve %d bytes: %w", rsv, err)
	}
	if err := unix.Mprotect(mem[:cmt], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("arena: commit %d bytes: %w", cmt, err)
	}
	return &block{
		mem: mem,
		rsv: rsv,
		cmt: cmt,
		pos: headerSize,
		cfg: cfg,
	}, nil
}

// release returns the block's reservation to the OS.
func (b *block) release() error {
	if b.mem == nil {
		return nil
	}
	err := unix.Munmap(b.mem)
	b.mem = nil
	return err
}

// ensureCommitted grows the committed prefix, in page-aligned steps, to
// cover at least upTo bytes. Fails only on OS commit failure.
func (b *block) ensureCommitted(upTo uintptr) error {
	if upTo <= b.cmt {
		return nil
	}
	if upTo > b.rsv {
		return fmt.Errorf("arena: commit %d exceeds reservation %d", upTo, b.rsv)
	}
	newCmt := alignUp(upTo, pageSize)
	if newCmt > b.rsv {
		newCmt = b.rsv
	}
	if err := unix.Mprotect(b.mem[b.cmt:newCmt], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("arena: commit %d..%d: %w", b.cmt, newCmt, err)
	}
	b.cmt = newCmt
	return nil
}

// tryAlloc bump-allocates size bytes aligned to align within the block,
// committing pages as needed. Returns ok=false if the block cannot satisfy
// the request even after committing up to its reservation limit.
func (b *block) tryAlloc(size, align uintptr) (ptr unsafe.Pointer, ok bool) {
	if align < pointerAlign {
		align = pointerAlign
	}
	aligned := alignUp(b.pos, align)
	end := aligned + size
	if end > b.rsv {
		return nil, false
	}
	if err := b.ensureCommitted(end); err != nil {
		return nil, false
	}
	b.pos = end
	return unsafe.Pointer(&b.mem[aligned]), true
}

// localPos returns this block's global arena_pos.
func (b *block) localPos() uint64 {
	return b.basePos + uint64(b.pos)
}

func alignUp(v, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}
