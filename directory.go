package crucible

// entityRecord locates a live entity's row within its archetype's chunk
// list. A freed index's record is reset to the zero value; liveness is
// decided by comparing the requesting EntityID's world and generation
// against the directory's world id and generations[index].
type entityRecord struct {
	arch *Archetype
	ch   *Chunk
	slot uint32
}

// entityDirectory maps an entity's index to its current storage location
// and owns the generation counters and free-index stack that make
// create/destroy churn safe against stale handles (spec.md §3/§4.9).
type entityDirectory struct {
	worldID     uint16
	records     []entityRecord
	generations []uint16
	free        []uint32
}

const initialDirectoryCapacity = 64

func newEntityDirectory(worldID uint16) *entityDirectory {
	return &entityDirectory{
		worldID:     worldID,
		records:     make([]entityRecord, 0, initialDirectoryCapacity),
		generations: make([]uint16, 0, initialDirectoryCapacity),
	}
}

// allocate reserves an index (reusing a freed one if available, growing by
// doubling otherwise) and returns the EntityID for it at its current
// generation. The record is left zero-valued; the caller must populate it
// once the entity's row has actually been written.
func (d *entityDirectory) allocate() EntityID {
	if len(d.free) > 0 {
		idx := d.free[len(d.free)-1]
		d.free = d.free[:len(d.free)-1]
		gen := d.generations[idx]
		if gen == 0 {
			gen = 1
		}
		return packEntityID(idx, gen, d.worldID)
	}

	idx := uint32(len(d.records))
	d.records = append(d.records, entityRecord{})
	d.generations = append(d.generations, 1)
	return packEntityID(idx, 1, d.worldID)
}

// release retires index, bumping its generation so any outstanding EntityID
// referencing it becomes stale, and pushes it onto the reuse stack. A
// generation that wraps back to 0 (the invalid marker) is skipped forward
// to 1, so an index can be recycled indefinitely.
func (d *entityDirectory) release(idx uint32) {
	d.generations[idx]++
	if d.generations[idx] == 0 {
		d.generations[idx] = 1
	}
	d.records[idx] = entityRecord{}
	d.free = append(d.free, idx)
}

// isAlive reports whether id belongs to this directory's world and its
// generation matches the directory's current generation for its index.
func (d *entityDirectory) isAlive(id EntityID) bool {
	idx := id.Index()
	if !id.Valid() || id.World() != d.worldID || int(idx) >= len(d.generations) {
		return false
	}
	return d.generations[idx] == id.Generation()
}

// recordFor returns the storage location of a live entity. The caller must
// have already checked isAlive.
func (d *entityDirectory) recordFor(id EntityID) *entityRecord {
	return &d.records[id.Index()]
}

// setRecord updates the storage location for a live entity's index.
func (d *entityDirectory) setRecord(id EntityID, rec entityRecord) {
	d.records[id.Index()] = rec
}

// liveCount returns the number of indices currently in use.
func (d *entityDirectory) liveCount() int {
	return len(d.records) - len(d.free)
}
