package crucible

import (
	"fmt"
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// bytesFromPointer views an arena allocation as a byte slice of length n.
func bytesFromPointer(ptr unsafe.Pointer, n int) []byte {
	if ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), n)
}

// ChunkSize is the fixed byte size of every chunk's SoA storage block
// (spec.md §3/§6). Tunable, but must remain a page multiple for the arena
// backing it to commit cleanly.
const ChunkSize = 16 * 1024

const (
	entityIDSize  = uint32(unsafe.Sizeof(EntityID(0)))
	entityIDAlign = uint32(unsafe.Alignof(EntityID(0)))
)

// chunk is a fixed-size SoA block: an entity-id column followed by one
// column per component type in the owning archetype, all at byte offsets
// the archetype precomputed. Columns are views over a single contiguous
// allocation — spec.md §3 requires "a single contiguous byte block of
// exactly CHUNK_SIZE", not per-column slices.
type Chunk struct {
	arch  *Archetype
	data  []byte
	count uint32
	next  *Chunk // forward link to the next chunk of the same archetype
}

// Count returns the number of occupied rows.
func (c *Chunk) Count() uint32 { return c.count }

// Capacity returns the number of rows this chunk can hold, derived from the
// owning archetype's layout.
func (c *Chunk) Capacity() uint32 { return c.arch.chunkCapacity }

// hasRoom reports whether another row can be appended without migration.
func (c *Chunk) hasRoom() bool { return c.count < c.arch.chunkCapacity }

// entityPtr returns a pointer into the entity-id column at slot.
func (c *Chunk) entityPtr(slot uint32) *EntityID {
	off := c.arch.entsOffset + slot*entityIDSize
	return (*EntityID)(unsafe.Pointer(&c.data[off]))
}

// EntityAt returns the entity id stored at slot.
func (c *Chunk) EntityAt(slot uint32) EntityID {
	return *c.entityPtr(slot)
}

func (c *Chunk) setEntityAt(slot uint32, id EntityID) {
	*c.entityPtr(slot) = id
}

// columnBase returns the base pointer of component column col (an index
// into the archetype's type list), or nil if col is out of range.
func (c *Chunk) columnBase(col int) unsafe.Pointer {
	if col < 0 || col >= len(c.arch.colOffsets) {
		return nil
	}
	return unsafe.Pointer(&c.data[c.arch.colOffsets[col]])
}

// columnRowPtr returns the address of column col's row at slot.
func (c *Chunk) columnRowPtr(col int, slot uint32) unsafe.Pointer {
	base := c.columnBase(col)
	if base == nil {
		return nil
	}
	size := uintptr(c.arch.sizes[col])
	return unsafe.Pointer(uintptr(base) + uintptr(slot)*size)
}

// appendEntity reserves the next free row and writes id into the entity
// column. Callers must have checked hasRoom first.
func (c *Chunk) appendEntity(id EntityID) uint32 {
	slot := c.count
	c.setEntityAt(slot, id)
	c.count++
	return slot
}

// swapRemove removes the row at slot by moving the chunk's last row into
// its place (unless slot is already last), decrementing count. It reports
// the entity id that was moved into slot (InvalidEntity if slot was last),
// so the caller can fix up that entity's directory record.
func (c *Chunk) swapRemove(slot uint32) (movedEntity EntityID, moved bool) {
	last := c.count - 1
	if slot != last {
		movedEntity = c.EntityAt(last)
		c.setEntityAt(slot, movedEntity)
		for col := range c.arch.colOffsets {
			size := uintptr(c.arch.sizes[col])
			dst := c.columnRowPtr(col, slot)
			src := c.columnRowPtr(col, last)
			copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
		}
		moved = true
	}
	c.count--
	return movedEntity, moved
}

// writeColumn copies size bytes from src into column col's row at slot, or
// zero-fills the row if src is nil. col must already have been validated by
// the caller (World resolves it from the entity's own archetype signature);
// a negative col here means an archetype/signature got out of sync with its
// own column list, which is a programmer error, not a user-facing one.
func (c *Chunk) writeColumn(col int, slot uint32, src []byte) {
	if col < 0 {
		panic(bark.AddTrace(fmt.Errorf("crucible: write to column %d of archetype %q", col, c.arch.key)))
	}
	size := uintptr(c.arch.sizes[col])
	dst := unsafe.Slice((*byte)(c.columnRowPtr(col, slot)), size)
	if src == nil {
		clear(dst)
		return
	}
	copy(dst, src)
}

// Column returns a byte slice view over every occupied row of component
// type t's column, row-major and contiguous (spec.md §4.11's
// chunk_column(type) operation). It returns nil if t is not part of this
// chunk's archetype.
func (c *Chunk) Column(t ComponentTypeID) []byte {
	col := c.arch.colOf(t)
	if col < 0 {
		return nil
	}
	base := c.columnBase(col)
	if base == nil || c.count == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(base), uintptr(c.count)*uintptr(c.arch.sizes[col]))
}

// readColumn returns a byte slice view over column col's row at slot.
func (c *Chunk) readColumn(col int, slot uint32) []byte {
	if col < 0 {
		panic(bark.AddTrace(fmt.Errorf("crucible: read from column %d of archetype %q", col, c.arch.key)))
	}
	size := uintptr(c.arch.sizes[col])
	return unsafe.Slice((*byte)(c.columnRowPtr(col, slot)), size)
}
