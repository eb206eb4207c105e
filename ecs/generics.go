package ecs

import (
	"github.com/milk9111/overworld/ecs/component"
)

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity kills an entity and drops all of its components. Returns
// false for handles that are already dead or stale.
func DestroyEntity(w *World, e Entity) bool {
	if !w.entities.destroy(e) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(int(e.id()))
	}
	return true
}

// IsAlive reports whether an entity handle is current.
func IsAlive(w *World, e Entity) bool {
	return w.entities.isAlive(e)
}

// Entities returns all live entities.
func Entities(w *World) []Entity {
	return w.entities.all()
}

// Add attaches a component pointer to an entity. The pointer is stored as
// given; callers keep mutating through it.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	w.store(kind.ID()).Set(int(e.id()), value)
	return nil
}

// Get returns the component pointer for an entity, or false when absent.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !w.entities.isAlive(e) {
		return nil, false
	}
	s := w.storeIfExists(kind.ID())
	if s == nil {
		return nil, false
	}
	v := s.Get(int(e.id()))
	if v == nil {
		return nil, false
	}
	ptr, ok := v.(*T)
	return ptr, ok
}

// Remove detaches a component from an entity.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	s := w.storeIfExists(kind.ID())
	if s == nil || !s.Has(int(e.id())) {
		return false
	}
	s.Remove(int(e.id()))
	return true
}

// Has reports whether an entity carries a component.
func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	s := w.storeIfExists(kind.ID())
	return s != nil && s.Has(int(e.id()))
}

// First returns the first live entity carrying the component, in store order.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := w.storeIfExists(kind.ID())
	if s == nil {
		return 0, false
	}
	for _, id := range s.Entities() {
		if e, ok := w.entities.handleFor(entityID(id)); ok {
			return e, true
		}
	}
	return 0, false
}

// ForEach visits every live entity carrying the component. The id list is
// snapshotted, so the callback may add or remove components and entities.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := w.storeIfExists(kind.ID())
	if s == nil {
		return
	}
	ids := append([]int(nil), s.Entities()...)
	for _, id := range ids {
		e, ok := w.entities.handleFor(entityID(id))
		if !ok {
			continue
		}
		v, ok := s.Get(id).(*T)
		if !ok {
			continue
		}
		fn(e, v)
	}
}

// ForEach2 visits every live entity carrying both components, iterating the
// first store and probing the second.
func ForEach2[A, B any](
	w *World,
	ka component.ComponentKind[A],
	kb component.ComponentKind[B],
	fn func(Entity, *A, *B),
) {
	sa := w.storeIfExists(ka.ID())
	sb := w.storeIfExists(kb.ID())
	if sa == nil || sb == nil {
		return
	}
	ids := append([]int(nil), sa.Entities()...)
	for _, id := range ids {
		e, ok := w.entities.handleFor(entityID(id))
		if !ok {
			continue
		}
		a, ok := sa.Get(id).(*A)
		if !ok {
			continue
		}
		b, ok := sb.Get(id).(*B)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

// ForEach3 visits every live entity carrying all three components.
func ForEach3[A, B, C any](
	w *World,
	ka component.ComponentKind[A],
	kb component.ComponentKind[B],
	kc component.ComponentKind[C],
	fn func(Entity, *A, *B, *C),
) {
	sa := w.storeIfExists(ka.ID())
	sb := w.storeIfExists(kb.ID())
	sc := w.storeIfExists(kc.ID())
	if sa == nil || sb == nil || sc == nil {
		return
	}
	ids := append([]int(nil), sa.Entities()...)
	for _, id := range ids {
		e, ok := w.entities.handleFor(entityID(id))
		if !ok {
			continue
		}
		a, ok := sa.Get(id).(*A)
		if !ok {
			continue
		}
		b, ok := sb.Get(id).(*B)
		if !ok {
			continue
		}
		c, ok := sc.Get(id).(*C)
		if !ok {
			continue
		}
		fn(e, a, b, c)
	}
}

// ForEach4 visits every live entity carrying all four components.
func ForEach4[A, B, C, D any](
	w *World,
	ka component.ComponentKind[A],
	kb component.ComponentKind[B],
	kc component.ComponentKind[C],
	kd component.ComponentKind[D],
	fn func(Entity, *A, *B, *C, *D),
) {
	sa := w.storeIfExists(ka.ID())
	sb := w.storeIfExists(kb.ID())
	sc := w.storeIfExists(kc.ID())
	sd := w.storeIfExists(kd.ID())
	if sa == nil || sb == nil || sc == nil || sd == nil {
		return
	}
	ids := append([]int(nil), sa.Entities()...)
	for _, id := range ids {
		e, ok := w.entities.handleFor(entityID(id))
		if !ok {
			continue
		}
		a, ok := sa.Get(id).(*A)
		if !ok {
			continue
		}
		b, ok := sb.Get(id).(*B)
		if !ok {
			continue
		}
		c, ok := sc.Get(id).(*C)
		if !ok {
			continue
		}
		d, ok := sd.Get(id).(*D)
		if !ok {
			continue
		}
		fn(e, a, b, c, d)
	}
}
