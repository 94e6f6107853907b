package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/nav"
)

// Event is the closed set of notifications systems exchange within a tick.
type Event interface {
	isEvent()
}

// PathFindFailed is raised at most once per agent per tick while its
// search cannot make progress.
type PathFindFailed struct {
	Entity Entity
	Reason nav.FailReason
	Coarse bool
}

// PathCompleted is raised when a follower reaches its destination tile.
type PathCompleted struct {
	Entity      Entity
	Destination cp.Vector
}

// TileCollided is raised when TileCollision snapped an entity.
type TileCollided struct {
	Entity    Entity
	Collision level.Collision
}

// TileChanged is raised when an edit actually changed a tile's type.
type TileChanged struct {
	X, Y     int
	Previous level.TileType
	Current  level.TileType
}

func (PathFindFailed) isEvent() {}
func (PathCompleted) isEvent()  {}
func (TileCollided) isEvent()   {}
func (TileChanged) isEvent()    {}

type eventQueue struct {
	items []Event
}

// Emit queues ev for systems that run later in the same tick.
func Emit(w *World, ev Event) {
	if w == nil || ev == nil {
		return
	}
	w.events.items = append(w.events.items, ev)
}

// EventsOf returns this tick's events of type T in emission order.
func EventsOf[T Event](w *World) []T {
	if w == nil {
		return nil
	}
	var out []T
	for _, ev := range w.events.items {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// FlushEvents drops every queued event. The scheduler calls it at the end
// of each tick.
func FlushEvents(w *World) {
	if w == nil {
		return
	}
	clear(w.events.items)
	w.events.items = w.events.items[:0]
}
