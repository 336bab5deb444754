package crucible

import (
	"reflect"
	"unsafe"
)

// typeNames caches the component name assigned to each Go type registered
// through RegisterComponentType, so repeated generic calls don't need the
// caller to pass a name.
var typeNames = map[reflect.Type]string{}

// RegisterComponentType registers T as a component using its reflected size
// and alignment, under the given name. It must be called once per type
// before GetComponent[T]/AddComponent[T]/SetComponent[T] are used against
// it.
func RegisterComponentType[T any](w *World, name string) (ComponentTypeID, error) {
	var zero T
	size := uint32(unsafe.Sizeof(zero))
	align := uint32(reflect.TypeOf(zero).Align())
	id, err := w.RegisterComponentOnce(name, size, align)
	if err != nil {
		return InvalidComponentTypeID, err
	}
	typeNames[reflect.TypeOf(zero)] = name
	return id, nil
}

func componentIDFor[T any](w *World) (ComponentTypeID, error) {
	var zero T
	name, ok := typeNames[reflect.TypeOf(zero)]
	if !ok {
		return InvalidComponentTypeID, InvalidArgumentError{Reason: "component type was never registered via RegisterComponentType"}
	}
	id := w.ComponentID(name)
	if id == InvalidComponentTypeID {
		return InvalidComponentTypeID, InvalidArgumentError{Reason: "component type was never registered via RegisterComponentType"}
	}
	return id, nil
}

// GetComponent returns a pointer to entity e's stored T, aliasing chunk
// storage directly. The pointer is only valid until the next structural
// mutation touching e's archetype.
func GetComponent[T any](w *World, e EntityID) (*T, error) {
	id, err := componentIDFor[T](w)
	if err != nil {
		return nil, err
	}
	bytes, err := w.GetComponent(e, id)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(&bytes[0])), nil
}

// SetComponent overwrites entity e's stored T by copying value's bytes into
// its column.
func SetComponent[T any](w *World, e EntityID, value T) error {
	id, err := componentIDFor[T](w)
	if err != nil {
		return err
	}
	size := unsafe.Sizeof(value)
	src := unsafe.Slice((*byte)(unsafe.Pointer(&value)), size)
	return w.SetComponent(e, id, src)
}

// AddComponent attaches T (with initial value) to entity e, migrating its
// storage row.
func AddComponent[T any](w *World, e EntityID, value T) error {
	id, err := componentIDFor[T](w)
	if err != nil {
		return err
	}
	size := unsafe.Sizeof(value)
	src := unsafe.Slice((*byte)(unsafe.Pointer(&value)), size)
	return w.AddComponent(e, id, src)
}

// RemoveComponent detaches T from entity e, migrating its storage row.
func RemoveComponent[T any](w *World, e EntityID) error {
	id, err := componentIDFor[T](w)
	if err != nil {
		return err
	}
	return w.RemoveComponent(e, id)
}

// ChunkColumn views chunk c's entire column for component type t as a typed
// slice of length c.Count(), rather than one row at a time. A typed
// reinterpretation of the same bytes c.Column(t) returns.
func ChunkColumn[T any](c *Chunk, t ComponentTypeID) []T {
	bytes := c.Column(t)
	if bytes == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&bytes[0])), c.count)
}

// HasComponent reports whether entity e currently carries T.
func HasComponent[T any](w *World, e EntityID) bool {
	id, err := componentIDFor[T](w)
	if err != nil {
		return false
	}
	return w.HasComponent(e, id)
}
