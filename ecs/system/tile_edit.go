package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
)

// TileEditSystem applies TileChangeRequest entities and destroys them. A
// TileChanged event is raised only when the tile type actually changed.
type TileEditSystem struct {
	level *level.Level
}

func NewTileEditSystem(l *level.Level) *TileEditSystem {
	return &TileEditSystem{level: l}
}

func (s *TileEditSystem) SetLevel(l *level.Level) { s.level = l }

func (s *TileEditSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach(w, component.TileChangeRequestComponent.Kind(), func(e ecs.Entity, req *component.TileChangeRequest) {
		defer ecs.DestroyEntity(w, e)
		if s.level == nil {
			return
		}
		pos := cp.Vector{X: req.X, Y: req.Y}
		t := s.level.TileAtPosition(pos)
		if t == nil {
			return
		}
		prev, ok := s.level.SetTileType(pos, req.Type)
		if !ok || prev == req.Type {
			return
		}
		ecs.Emit(w, ecs.TileChanged{X: t.X, Y: t.Y, Previous: prev, Current: req.Type})
	})
}
