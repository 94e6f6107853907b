package entity

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/levels"
	"github.com/milk9111/burrow/pathfind"
	"github.com/milk9111/burrow/prefabs"
	"golang.org/x/image/colornames"
)

// Layout entity types.
const (
	LayoutAgent = "agent"
	LayoutGoal  = "goal"
)

// NewAgent builds a path-following mover at pos from an agent spec.
func NewAgent(w *ecs.World, l *level.Level, spec *prefabs.AgentSpec, cfg pathfind.Config, pos cp.Vector) (ecs.Entity, error) {
	if spec == nil {
		return 0, fmt.Errorf("agent: nil spec")
	}
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	e := ecs.CreateEntity(w)
	fail := func(what string, err error) (ecs.Entity, error) {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("agent: add %s: %w", what, err)
	}

	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y}); err != nil {
		return fail("transform", err)
	}
	if err := ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{}); err != nil {
		return fail("velocity", err)
	}
	if err := ecs.Add(w, e, component.TileColliderComponent.Kind(), &component.TileCollider{
		HalfW: spec.Collider.HalfW,
		HalfH: spec.Collider.HalfH,
		RootX: spec.Collider.RootX,
		RootY: spec.Collider.RootY,
	}); err != nil {
		return fail("tile collider", err)
	}
	if err := ecs.Add(w, e, component.PathFindComponent.Kind(), &component.PathFind{Agent: pathfind.NewAgent(l, cfg)}); err != nil {
		return fail("pathfind", err)
	}
	if err := ecs.Add(w, e, component.PathFollowComponent.Kind(), &component.PathFollow{Speed: spec.Speed, ReachDist: spec.ReachDist}); err != nil {
		return fail("path follow", err)
	}

	var tint color.Color = colornames.Orange
	if spec.Tint != nil && spec.Tint.Color != nil {
		tint = spec.Tint.Color
	}
	if err := ecs.Add(w, e, component.TintComponent.Kind(), &component.Tint{Color: tint}); err != nil {
		return fail("tint", err)
	}

	if spec.Script != "" {
		if err := ecs.Add(w, e, component.GoalScriptComponent.Kind(), &component.GoalScript{
			Path:     spec.Script,
			Interval: spec.ScriptInterval,
		}); err != nil {
			return fail("goal script", err)
		}
	}
	return e, nil
}

// SpawnLayoutAgents creates one agent per "agent" entity in the layout.
// Entity props override fields of base. Agents placed by the layout are
// sent toward the layout's first "goal", when it has one.
func SpawnLayoutAgents(w *ecs.World, l *level.Level, lay *levels.Layout, base prefabs.AgentSpec, cfg pathfind.Config) ([]ecs.Entity, error) {
	if lay == nil {
		return nil, nil
	}

	var goal *levels.Entity
	for i := range lay.Entities {
		if lay.Entities[i].Type == LayoutGoal {
			goal = &lay.Entities[i]
			break
		}
	}

	var out []ecs.Entity
	for _, le := range lay.Entities {
		if le.Type != LayoutAgent {
			continue
		}
		t := l.TileAt(le.X, le.Y)
		if t == nil {
			return out, fmt.Errorf("agent: layout position %d,%d is off the grid", le.X, le.Y)
		}

		spec := base
		if base.Tint != nil {
			tint := *base.Tint
			spec.Tint = &tint
		}
		if err := prefabs.ApplyOverrides(&spec, le.Props); err != nil {
			return out, err
		}
		e, err := NewAgent(w, l, &spec, cfg, t.Rect.Center)
		if err != nil {
			return out, err
		}
		out = append(out, e)

		if goal == nil {
			continue
		}
		if g := l.TileAt(goal.X, goal.Y); g != nil {
			if err := RequestDestination(w, e, g.Rect.Center, false); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// SpawnRandomAgents places n agents on random open tiles.
func SpawnRandomAgents(w *ecs.World, l *level.Level, n int, rng *rand.Rand, base prefabs.AgentSpec, cfg pathfind.Config) ([]ecs.Entity, error) {
	var open []*level.Tile
	tiles := l.Tiles()
	for i := range tiles {
		if !tiles[i].Type.Solid() {
			open = append(open, &tiles[i])
		}
	}
	if len(open) == 0 || n <= 0 {
		return nil, nil
	}

	out := make([]ecs.Entity, 0, n)
	for i := 0; i < n; i++ {
		t := open[rng.Intn(len(open))]
		spec := base
		e, err := NewAgent(w, l, &spec, cfg, t.Rect.Center)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}
