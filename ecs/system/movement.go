package system

import (
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
)

// MovementSystem integrates velocity into transforms and keeps them inside
// the level bounds when a LevelBounds entity exists.
type MovementSystem struct {
	dt float64
}

func NewMovementSystem(dt float64) *MovementSystem {
	return &MovementSystem{dt: dt}
}

func (s *MovementSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	var bounds *component.LevelBounds
	if e, ok := ecs.First(w, component.LevelBoundsComponent.Kind()); ok {
		bounds, _ = ecs.Get(w, e, component.LevelBoundsComponent.Kind())
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.VelocityComponent.Kind(), func(_ ecs.Entity, t *component.Transform, v *component.Velocity) {
		t.X += v.X * s.dt
		t.Y += v.Y * s.dt
		if bounds == nil {
			return
		}
		t.X = clamp(t.X, 0, bounds.Width)
		t.Y = clamp(t.Y, 0, bounds.Height)
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
