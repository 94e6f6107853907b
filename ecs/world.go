package ecs

import "github.com/milk9111/burrow/ecs/component"

// Releaser is implemented by components that hold resources outside the
// world. Release runs when the component is removed or its entity dies.
type Releaser interface {
	Release()
}

// World owns entities, their components and the per-tick event queue.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store
	order    []component.ComponentID
	events   eventQueue
}

func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store)}
}

func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and frees its slot. It
// reports false for an entity that was not alive.
func DestroyEntity(w *World, e Entity) bool {
	if !w.entities.isAlive(e) {
		return false
	}
	for _, id := range w.order {
		if v, ok := w.stores[id].remove(e); ok {
			release(v)
		}
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities lists live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.list()
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if s, ok := w.stores[kind.ID()]; ok {
		return s.(*sparseSet[T])
	}
	if !create {
		return nil
	}
	s := &sparseSet[T]{}
	w.stores[kind.ID()] = s
	w.order = append(w.order, kind.ID())
	return s
}

func release(v any) {
	if r, ok := v.(Releaser); ok {
		r.Release()
	}
}
