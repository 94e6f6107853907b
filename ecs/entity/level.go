package entity

import (
	"fmt"

	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
)

// LoadLevelToWorld creates the entity carrying the level's world-space
// bounds.
func LoadLevelToWorld(w *ecs.World, l *level.Level) (ecs.Entity, error) {
	if w == nil || l == nil {
		return 0, fmt.Errorf("level: nil world or level")
	}
	b := l.Bounds()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  b.Width(),
		Height: b.Height(),
	}); err != nil {
		return 0, fmt.Errorf("level: add bounds: %w", err)
	}
	return e, nil
}
