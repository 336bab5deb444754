package crucible

import (
	"strconv"
	"strings"

	"github.com/crucible-ecs/crucible/arena"
)

// Archetype groups every entity sharing an identical component signature
// into a linked list of fixed-size chunks, laid out as parallel columns
// (spec.md §3/§4.7). Column order always matches types, which is kept
// sorted ascending by ComponentTypeID so two requests for the same
// component set produce the same canonical key regardless of the order
// components were named in.
type Archetype struct {
	id    int
	sig   Signature
	key   string
	types []ComponentTypeID
	sizes []uint32
	align []uint32

	colOffsets []uint32 // byte offset of column i within a chunk's data block
	entsOffset uint32   // byte offset of the entity-id column (always 0)
	rowStride  uint32   // sum of per-row bytes across all columns + entity id
	typeToCol  [MaxComponents]int16

	chunkCapacity uint32
	head          *Chunk // most recently created chunk (LIFO order, Open Question #2)
	tailCount     int    // number of chunks currently linked, for diagnostics
}

const invalidCol int16 = -1

// newArchetype computes column layout for types (already sorted, already
// deduplicated by the caller) and returns an Archetype with no chunks yet.
func newArchetype(id int, types []ComponentTypeID, infos []ComponentInfo) *Archetype {
	a := &Archetype{
		id:    id,
		types: append([]ComponentTypeID(nil), types...),
		sizes: make([]uint32, len(types)),
		align: make([]uint32, len(types)),
	}
	for i := range a.typeToCol {
		a.typeToCol[i] = invalidCol
	}
	for i, t := range types {
		a.sizes[i] = infos[i].Size
		a.align[i] = infos[i].Align
		a.typeToCol[t] = int16(i)
		a.sig.Set(t)
	}
	a.key = archetypeKey(types)
	a.layout()
	return a
}

// layout assigns byte offsets to the entity-id column followed by each
// component column, each column aligned to its type's required alignment,
// then derives chunkCapacity as the largest row count N such that the
// entity column (N*8 bytes) plus every component column (N*size bytes,
// each independently aligned) fits within ChunkSize. N starts at
// ChunkSize divided by the unpadded per-row size and is decremented until
// the padded layout fits (never below 1).
func (a *Archetype) layout() {
	a.entsOffset = 0
	a.colOffsets = make([]uint32, len(a.types))
	perRow := entityIDSize
	for i := range a.types {
		perRow += a.sizes[i]
	}

	// Each column's start padding depends on N through the end of the
	// previous column, so iterate downward from the unpadded estimate
	// rather than solving a closed form.
	n := ChunkSize / max32(perRow, 1)
	if n == 0 {
		n = 1
	}
	for n > 0 && !a.fitsCapacity(n) {
		n--
	}
	if n == 0 {
		n = 1
	}
	a.chunkCapacity = n
	a.recomputeOffsets(n)
	a.rowStride = perRow
}

// fitsCapacity reports whether n rows of every column, laid out back to
// back with each column's start aligned to its type's alignment, fits
// within ChunkSize.
func (a *Archetype) fitsCapacity(n uint32) bool {
	cursor := entityIDSize * n
	for i := range a.types {
		cursor = alignUp32(cursor, a.align[i])
		cursor += a.sizes[i] * n
	}
	return cursor <= ChunkSize
}

// recomputeOffsets fixes colOffsets for the chosen row capacity n.
func (a *Archetype) recomputeOffsets(n uint32) {
	cursor := entityIDSize * n
	for i := range a.types {
		cursor = alignUp32(cursor, a.align[i])
		a.colOffsets[i] = cursor
		cursor += a.sizes[i] * n
	}
}

func alignUp32(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// colOf returns the column index of component type t, or -1 if t is not
// part of this archetype's signature.
func (a *Archetype) colOf(t ComponentTypeID) int {
	if int(t) >= len(a.typeToCol) {
		return -1
	}
	return int(a.typeToCol[t])
}

// pushChunk allocates a fresh chunk from alloc, tagged TagChunk, and links
// it at the head of this archetype's chunk list — newest chunks are
// searched first (Open Question #2: push-front order is stable for the
// lifetime of the archetype but is not itself part of the public contract).
func (a *Archetype) pushChunk(alloc arena.Allocator) (*Chunk, error) {
	ptr, err := alloc.Alloc(ChunkSize, arena.TagChunk)
	if err != nil {
		return nil, AllocationFailedError{Op: "chunk allocation", Err: err}
	}
	c := &Chunk{
		arch: a,
		data: bytesFromPointer(ptr, ChunkSize),
		next: a.head,
	}
	a.head = c
	a.tailCount++
	return c, nil
}

// archetypeKey builds the canonical string key "N: t0,t1,...,tn-1" for a
// sorted, deduplicated type list, used to deduplicate archetypes that were
// requested via differently-ordered component lists.
func archetypeKey(types []ComponentTypeID) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(types)))
	if len(types) == 0 {
		b.WriteString(":")
		return b.String()
	}
	b.WriteString(": ")
	for i, t := range types {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(t)))
	}
	return b.String()
}
