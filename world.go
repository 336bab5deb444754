package crucible

import (
	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"

	"github.com/crucible-ecs/crucible/arena"
)

// structuralOpBit flags w.locks while a structural mutation (create,
// destroy, add/remove component) is in flight. beginStructuralOp rejects a
// nested call that finds this bit already set, catching reentrant mutation
// (e.g. from inside an EachChunk callback) that the single-writer model
// never expects to see.
const structuralOpBit = 0

// WorldCreateInfo configures a new World's backing allocator and logger.
// Zero-valued fields fall back to sane defaults.
type WorldCreateInfo struct {
	Name         string
	WorldID      uint16
	ReserveBytes uintptr // persistent-arena VA reservation, default 64 MiB
	CommitBytes  uintptr // persistent-arena initial commit, default 64 KiB
	Logger       *zap.Logger
}

// ComponentValue pairs a registered component type with its byte
// representation, the unit of data CreateEntityWithComponents, AddComponent,
// and SetComponent operate on.
type ComponentValue struct {
	Type ComponentTypeID
	Data []byte
}

// World owns every registry, the entity directory, the archetype graph, and
// the persistent allocator backing all of it (spec.md §2/§3). A World is not
// safe for concurrent structural mutation from multiple goroutines; callers
// needing that must serialize externally.
type World struct {
	id    uint16
	name  string
	log   *zap.Logger
	chain *arena.Chain
	alloc arena.Allocator

	components *componentRegistry
	directory  *entityDirectory
	archetypes *archetypeRegistry
	empty      *Archetype

	locks mask.Mask256
}

// NewWorld allocates a world's persistent arena and wires up its registries.
func NewWorld(info WorldCreateInfo) (*World, error) {
	log := info.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var opts []arena.ChainOption
	if info.ReserveBytes > 0 {
		opts = append(opts, arena.WithReserve(info.ReserveBytes))
	}
	if info.CommitBytes > 0 {
		opts = append(opts, arena.WithCommit(info.CommitBytes))
	}
	chain, err := arena.NewChain(opts...)
	if err != nil {
		return nil, AllocationFailedError{Op: "world arena reservation", Err: err}
	}

	w := &World{
		id:         info.WorldID,
		name:       info.Name,
		log:        log,
		chain:      chain,
		alloc:      arena.NewArenaAllocator(chain, true),
		components: newComponentRegistry(log),
		directory:  newEntityDirectory(info.WorldID),
		archetypes: newArchetypeRegistry(),
	}
	w.empty = w.archetypes.getOrCreate(nil, w.infoOf)
	log.Info("world created", zap.String("name", info.Name), zap.Uint16("world_id", info.WorldID))
	return w, nil
}

func (w *World) infoOf(t ComponentTypeID) ComponentInfo {
	info, _ := w.components.Info(t)
	return info
}

// RegisterComponent registers a new component type by name, size, and
// alignment.
func (w *World) RegisterComponent(name string, size, align uint32) (ComponentTypeID, error) {
	return w.components.Register(name, size, align)
}

// RegisterComponentOnce registers name if absent, or validates the existing
// registration's layout if present.
func (w *World) RegisterComponentOnce(name string, size, align uint32) (ComponentTypeID, error) {
	return w.components.RegisterOnce(name, size, align)
}

// ComponentID looks up a previously registered component type by name.
func (w *World) ComponentID(name string) ComponentTypeID {
	return w.components.Find(name)
}

// IsAlive reports whether id currently refers to a live entity in this
// world.
func (w *World) IsAlive(id EntityID) bool {
	return w.directory.isAlive(id)
}

// Locked reports whether a structural mutation is currently in flight on
// this world.
func (w *World) Locked() bool {
	return !w.locks.IsEmpty()
}

// beginStructuralOp marks the world as mid-mutation, rejecting op if one is
// already in flight (e.g. called reentrantly from inside an EachChunk
// callback). Callers defer the returned unlock func on success.
func (w *World) beginStructuralOp(op string) (unlock func(), err error) {
	if w.Locked() {
		return nil, ReentrantMutationError{Op: op}
	}
	w.locks.Mark(structuralOpBit)
	return func() { w.locks.Unmark(structuralOpBit) }, nil
}

// CreateEntity creates a new entity with no components, placed in the
// world's empty archetype.
func (w *World) CreateEntity() (EntityID, error) {
	unlock, err := w.beginStructuralOp("CreateEntity")
	if err != nil {
		return InvalidEntity, err
	}
	defer unlock()

	id := w.directory.allocate()
	c, slot, err := w.acquireSlot(w.empty, id)
	if err != nil {
		return InvalidEntity, err
	}
	w.directory.setRecord(id, entityRecord{arch: w.empty, ch: c, slot: slot})
	return id, nil
}

// CreateEntityWithComponents creates a new entity carrying the given
// component values. A type named more than once is coalesced to a single
// entry, keeping the first non-nil Data among the duplicates.
func (w *World) CreateEntityWithComponents(values ...ComponentValue) (EntityID, error) {
	for _, v := range values {
		if !w.components.Valid(v.Type) {
			return InvalidEntity, InvalidArgumentError{Reason: "unregistered component type"}
		}
	}
	coalesced := coalesceComponentValues(values)
	if len(coalesced) != len(values) {
		w.log.Warn("CreateEntityWithComponents received duplicate component types; keeping the first non-nil value for each")
	}
	values = coalesced

	unlock, err := w.beginStructuralOp("CreateEntityWithComponents")
	if err != nil {
		return InvalidEntity, err
	}
	defer unlock()

	types := make([]ComponentTypeID, len(values))
	for i, v := range values {
		types[i] = v.Type
	}
	arch := w.archetypes.getOrCreate(types, w.infoOf)

	id := w.directory.allocate()
	c, slot, err := w.acquireSlot(arch, id)
	if err != nil {
		return InvalidEntity, err
	}
	for _, v := range values {
		col := arch.colOf(v.Type)
		c.writeColumn(col, slot, v.Data)
	}
	w.directory.setRecord(id, entityRecord{arch: arch, ch: c, slot: slot})
	return id, nil
}

// DestroyEntity removes id from its archetype via swap-remove, fixing up
// the directory record of whichever entity occupied the last row, then
// retires id's index for reuse.
func (w *World) DestroyEntity(id EntityID) error {
	if !w.directory.isAlive(id) {
		return InvalidArgumentError{Reason: "entity is not alive", Detail: id.String()}
	}
	unlock, err := w.beginStructuralOp("DestroyEntity")
	if err != nil {
		return err
	}
	defer unlock()

	rec := *w.directory.recordFor(id)
	movedEntity, moved := rec.ch.swapRemove(rec.slot)
	if moved && w.directory.isAlive(movedEntity) {
		w.directory.setRecord(movedEntity, entityRecord{arch: rec.arch, ch: rec.ch, slot: rec.slot})
	}
	w.directory.release(id.Index())
	return nil
}

// HasComponent reports whether id's current archetype carries component
// type t.
func (w *World) HasComponent(id EntityID, t ComponentTypeID) bool {
	if !w.directory.isAlive(id) {
		return false
	}
	rec := w.directory.recordFor(id)
	return rec.arch.sig.Has(t)
}

// GetComponent returns a view over id's stored bytes for component type t.
// The returned slice aliases chunk storage and is only valid until the
// next structural mutation touching id's archetype.
func (w *World) GetComponent(id EntityID, t ComponentTypeID) ([]byte, error) {
	if !w.directory.isAlive(id) {
		return nil, InvalidArgumentError{Reason: "entity is not alive", Detail: id.String()}
	}
	rec := w.directory.recordFor(id)
	col := rec.arch.colOf(t)
	if col < 0 {
		return nil, InvalidArgumentError{Reason: "entity does not carry component", Detail: id.String()}
	}
	return rec.ch.readColumn(col, rec.slot), nil
}

// SetComponent overwrites id's stored bytes for component type t.
func (w *World) SetComponent(id EntityID, t ComponentTypeID, data []byte) error {
	if !w.directory.isAlive(id) {
		return InvalidArgumentError{Reason: "entity is not alive", Detail: id.String()}
	}
	rec := w.directory.recordFor(id)
	col := rec.arch.colOf(t)
	if col < 0 {
		return InvalidArgumentError{Reason: "entity does not carry component", Detail: id.String()}
	}
	rec.ch.writeColumn(col, rec.slot, data)
	return nil
}

// AddComponent attaches component type t (with initial value data) to id,
// migrating it to the archetype for its enlarged component set. Adding a
// component the entity already carries is a no-op — the existing value is
// left untouched.
func (w *World) AddComponent(id EntityID, t ComponentTypeID, data []byte) error {
	if !w.components.Valid(t) {
		return InvalidArgumentError{Reason: "unregistered component type"}
	}
	if !w.directory.isAlive(id) {
		return InvalidArgumentError{Reason: "entity is not alive", Detail: id.String()}
	}
	rec := *w.directory.recordFor(id)
	if rec.arch.sig.Has(t) {
		w.log.Warn("AddComponent on an already-present component is a no-op", zap.String("entity", id.String()))
		return nil
	}

	unlock, err := w.beginStructuralOp("AddComponent")
	if err != nil {
		return err
	}
	defer unlock()

	newTypes := append(append([]ComponentTypeID(nil), rec.arch.types...), t)
	newArch := w.archetypes.getOrCreate(newTypes, w.infoOf)

	newChunk, newSlot, err := w.acquireSlot(newArch, id)
	if err != nil {
		return err
	}
	for _, srcType := range rec.arch.types {
		srcCol := rec.arch.colOf(srcType)
		dstCol := newArch.colOf(srcType)
		newChunk.writeColumn(dstCol, newSlot, rec.ch.readColumn(srcCol, rec.slot))
	}
	newChunk.writeColumn(newArch.colOf(t), newSlot, data)

	w.finishMigration(id, rec, newArch, newChunk, newSlot)
	return nil
}

// RemoveComponent detaches component type t from id, migrating it to the
// archetype for its shrunken component set. Removing a component the
// entity does not carry is a no-op.
func (w *World) RemoveComponent(id EntityID, t ComponentTypeID) error {
	if !w.directory.isAlive(id) {
		return InvalidArgumentError{Reason: "entity is not alive", Detail: id.String()}
	}
	rec := *w.directory.recordFor(id)
	if !rec.arch.sig.Has(t) {
		w.log.Warn("RemoveComponent on an absent component is a no-op", zap.String("entity", id.String()))
		return nil
	}

	unlock, err := w.beginStructuralOp("RemoveComponent")
	if err != nil {
		return err
	}
	defer unlock()

	newTypes := make([]ComponentTypeID, 0, len(rec.arch.types)-1)
	for _, existing := range rec.arch.types {
		if existing != t {
			newTypes = append(newTypes, existing)
		}
	}
	newArch := w.archetypes.getOrCreate(newTypes, w.infoOf)

	newChunk, newSlot, err := w.acquireSlot(newArch, id)
	if err != nil {
		return err
	}
	for _, srcType := range rec.arch.types {
		if srcType == t {
			continue
		}
		srcCol := rec.arch.colOf(srcType)
		dstCol := newArch.colOf(srcType)
		newChunk.writeColumn(dstCol, newSlot, rec.ch.readColumn(srcCol, rec.slot))
	}

	w.finishMigration(id, rec, newArch, newChunk, newSlot)
	return nil
}

// finishMigration removes the row at oldRec from its old chunk (fixing up
// whichever entity's record the swap-remove moved) and records id's new
// location.
func (w *World) finishMigration(id EntityID, oldRec entityRecord, newArch *Archetype, newChunk *Chunk, newSlot uint32) {
	movedEntity, moved := oldRec.ch.swapRemove(oldRec.slot)
	if moved && w.directory.isAlive(movedEntity) {
		w.directory.setRecord(movedEntity, entityRecord{arch: oldRec.arch, ch: oldRec.ch, slot: oldRec.slot})
	}
	w.directory.setRecord(id, entityRecord{arch: newArch, ch: newChunk, slot: newSlot})
}

// acquireSlot finds room for a new row in arch (using the first chunk in
// list order that has room, or allocating a fresh chunk if none does) and
// writes id into the entity column.
func (w *World) acquireSlot(arch *Archetype, id EntityID) (*Chunk, uint32, error) {
	c := arch.head
	for c != nil && !c.hasRoom() {
		c = c.next
	}
	if c == nil {
		var err error
		c, err = arch.pushChunk(w.alloc)
		if err != nil {
			w.log.Error("chunk allocation failed", zap.String("archetype", arch.key), zap.Error(err))
			return nil, 0, err
		}
	}
	slot := c.appendEntity(id)
	return c, slot, nil
}

// ArchetypeCount returns the number of distinct archetypes the world has
// ever created. Compiled queries use this to detect staleness.
func (w *World) ArchetypeCount() int {
	return w.archetypes.count()
}

// Stats returns the persistent arena's per-tag byte accounting.
func (w *World) Stats() string {
	return arena.FormatStatistics(w.chain.Stats())
}

// Release returns the world's backing arena reservations to the OS. Callers
// must not use the world afterward.
func (w *World) Release() error {
	return w.chain.Release()
}

// coalesceComponentValues collapses repeated types to a single entry in
// first-occurrence order, keeping the first non-nil Data among the
// duplicates (a later nil never overwrites an earlier value, and a later
// non-nil never overrides an earlier non-nil one).
func coalesceComponentValues(values []ComponentValue) []ComponentValue {
	seen := make(map[ComponentTypeID]int, len(values))
	out := make([]ComponentValue, 0, len(values))
	for _, v := range values {
		if i, ok := seen[v.Type]; ok {
			if out[i].Data == nil && v.Data != nil {
				out[i].Data = v.Data
			}
			continue
		}
		seen[v.Type] = len(out)
		out = append(out, v)
	}
	return out
}
