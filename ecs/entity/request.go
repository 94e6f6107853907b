package entity

import (
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
)

// RequestDestination queues a destination change for agent e. It is
// applied by the PathFind system on its next update.
func RequestDestination(w *ecs.World, e ecs.Entity, pos cp.Vector, extend bool) error {
	return ecs.Add(w, e, component.PathFindRequestComponent.Kind(), &component.PathFindRequest{
		X:      pos.X,
		Y:      pos.Y,
		Extend: extend,
	})
}

// RequestTileChange spawns a one-tick request entity setting the tile under
// pos.
func RequestTileChange(w *ecs.World, pos cp.Vector, typ level.TileType) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TileChangeRequestComponent.Kind(), &component.TileChangeRequest{X: pos.X, Y: pos.Y, Type: typ}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}

// NewMarker spawns a debug cross that disappears after frames ticks.
func NewMarker(w *ecs.World, pos cp.Vector, size float64, frames int, c color.Color) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.MarkerComponent.Kind(), &component.Marker{Size: size}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.TintComponent.Kind(), &component.Tint{Color: c}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Frames: frames}); err != nil {
		return 0, err
	}
	return e, nil
}
