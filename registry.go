package crucible

import (
	"math/bits"

	"go.uber.org/zap"
)

// ComponentTypeID identifies a registered component type. 0xFFFF is the
// invalid sentinel (spec.md §3).
type ComponentTypeID uint16

// InvalidComponentTypeID is returned in place of a failed lookup.
const InvalidComponentTypeID ComponentTypeID = 0xFFFF

// ComponentInfo is the immutable metadata recorded for a registered
// component type: its name, byte size, and required alignment.
type ComponentInfo struct {
	Name  string
	Size  uint32
	Align uint32
}

// componentRegistry maps component names to ids and stores their layout
// metadata, capped at MaxComponents distinct types (spec.md §4.5).
type componentRegistry struct {
	byName map[string]ComponentTypeID
	infos  []ComponentInfo
	log    *zap.Logger
}

func newComponentRegistry(log *zap.Logger) *componentRegistry {
	return &componentRegistry{
		byName: make(map[string]ComponentTypeID, 64),
		log:    log,
	}
}

// Register creates a new component type. It rejects duplicate names with
// AlreadyRegisteredError (spec.md's Open Question #1 resolves to the
// stricter revision), requires size>0 and a power-of-two alignment, and
// caps the registry at MaxComponents.
func (r *componentRegistry) Register(name string, size, align uint32) (ComponentTypeID, error) {
	if _, exists := r.byName[name]; exists {
		r.log.Warn("component already registered", zap.String("component", name))
		return InvalidComponentTypeID, AlreadyRegisteredError{Name: name}
	}
	if size == 0 {
		return InvalidComponentTypeID, InvalidArgumentError{Reason: "component size must be > 0", Detail: name}
	}
	if align == 0 || bits.OnesCount32(align) != 1 {
		return InvalidComponentTypeID, InvalidArgumentError{Reason: "component alignment must be a power of two", Detail: name}
	}
	if len(r.infos) >= MaxComponents {
		r.log.Error("component registry at capacity", zap.Int("max", MaxComponents))
		return InvalidComponentTypeID, CapacityExhaustedError{What: "component types", Limit: MaxComponents}
	}

	id := ComponentTypeID(len(r.infos))
	r.infos = append(r.infos, ComponentInfo{Name: name, Size: size, Align: align})
	r.byName[name] = id
	return id, nil
}

// RegisterOnce returns the existing id for name if its stored size/align
// match exactly; registers a new type if name is absent; fails with
// LayoutMismatchError if name exists with a different layout.
func (r *componentRegistry) RegisterOnce(name string, size, align uint32) (ComponentTypeID, error) {
	if id, exists := r.byName[name]; exists {
		info := r.infos[id]
		if info.Size != size || info.Align != align {
			return InvalidComponentTypeID, LayoutMismatchError{
				Name: name, WantSize: info.Size, WantAlign: info.Align, GotSize: size, GotAlign: align,
			}
		}
		return id, nil
	}
	return r.Register(name, size, align)
}

// Find returns the id registered for name, or InvalidComponentTypeID if
// name has never been registered.
func (r *componentRegistry) Find(name string) ComponentTypeID {
	if id, ok := r.byName[name]; ok {
		return id
	}
	return InvalidComponentTypeID
}

// Info returns the metadata for id. The second return is false if id is
// out of range.
func (r *componentRegistry) Info(id ComponentTypeID) (ComponentInfo, bool) {
	if int(id) >= len(r.infos) {
		return ComponentInfo{}, false
	}
	return r.infos[id], true
}

// Valid reports whether id names a registered component type.
func (r *componentRegistry) Valid(id ComponentTypeID) bool {
	return id != InvalidComponentTypeID && int(id) < len(r.infos)
}

// Count returns the number of registered component types.
func (r *componentRegistry) Count() int {
	return len(r.infos)
}
