package system

import (
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
)

// TileCollisionRecordSystem runs first in the tick. It stores each
// collider's position before movement and clears last tick's tile debug
// marks.
type TileCollisionRecordSystem struct {
	level *level.Level
}

func NewTileCollisionRecordSystem(l *level.Level) *TileCollisionRecordSystem {
	return &TileCollisionRecordSystem{level: l}
}

func (s *TileCollisionRecordSystem) SetLevel(l *level.Level) { s.level = l }

func (s *TileCollisionRecordSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.level != nil {
		s.level.ClearDebug()
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.TileColliderComponent.Kind(), func(_ ecs.Entity, t *component.Transform, c *component.TileCollider) {
		c.PrevX, c.PrevY = t.X, t.Y
		c.Recorded = true
	})
}

// TileCollisionSystem runs after movement. It sweeps every collider from
// its recorded position to where movement left it and snaps blocked axes
// back against the wall.
type TileCollisionSystem struct {
	level *level.Level
}

func NewTileCollisionSystem(l *level.Level) *TileCollisionSystem {
	return &TileCollisionSystem{level: l}
}

func (s *TileCollisionSystem) SetLevel(l *level.Level) { s.level = l }

func (s *TileCollisionSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.level == nil {
		return
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.TileColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.TileCollider) {
		if !c.Recorded {
			return
		}
		c.Recorded = false

		col := s.level.CheckCollision(c.Rect(c.PrevX, c.PrevY), c.Rect(t.X, t.Y))
		c.Last = col
		if !col.Collided {
			return
		}

		vel, _ := ecs.Get(w, e, component.VelocityComponent.Kind())
		if col.X {
			t.X = col.SnapX(c.HalfW, c.RootX)
			if vel != nil {
				vel.X = 0
			}
		}
		if col.Y {
			t.Y = col.SnapY(c.HalfH, c.RootY)
			if vel != nil {
				vel.Y = 0
			}
		}
		ecs.Emit(w, ecs.TileCollided{Entity: e, Collision: col})
	})
}
