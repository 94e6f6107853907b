package entity

import (
	"math/rand"
	"testing"

	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/levels"
	"github.com/milk9111/burrow/pathfind"
	"github.com/milk9111/burrow/prefabs"
	"golang.org/x/image/colornames"
)

func baseSpec() prefabs.AgentSpec {
	return prefabs.AgentSpec{
		Name:      "test",
		Speed:     100,
		ReachDist: 2,
		Collider:  prefabs.ColliderSpec{HalfW: 8, HalfH: 8},
		Tint:      &prefabs.YAMLColor{Color: colornames.Red},
		Script:    "wander.tengo",
	}
}

func TestLoadLevelToWorld(t *testing.T) {
	lay := &levels.Layout{Rows: []string{"....", "..#.", "...."}}
	l, err := level.FromLayout(lay, level.Config{})
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	w := ecs.NewWorld()
	e, err := LoadLevelToWorld(w, l)
	if err != nil {
		t.Fatalf("LoadLevelToWorld: %v", err)
	}
	b, ok := ecs.Get(w, e, component.LevelBoundsComponent.Kind())
	if !ok || b.Width != 4*32 || b.Height != 3*32 {
		t.Fatalf("expected 128x96 bounds, got %+v", b)
	}
}

func TestSpawnLayoutAgents(t *testing.T) {
	lay := &levels.Layout{
		Rows: []string{"......", "......", "..##..", "......"},
		Entities: []levels.Entity{
			{Type: LayoutAgent, X: 0, Y: 0},
			{Type: LayoutAgent, X: 5, Y: 3, Props: map[string]interface{}{"speed": 40, "tint": "blue"}},
			{Type: LayoutGoal, X: 5, Y: 0},
		},
	}
	l, err := level.FromLayout(lay, level.Config{})
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	w := ecs.NewWorld()
	base := baseSpec()
	ents, err := SpawnLayoutAgents(w, l, lay, base, pathfind.Config{Mode: pathfind.ModeTileOnly})
	if err != nil {
		t.Fatalf("SpawnLayoutAgents: %v", err)
	}
	if len(ents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(ents))
	}

	cases := []struct {
		name  string
		e     ecs.Entity
		speed float64
		tint  any
	}{
		{"defaults", ents[0], 100, colornames.Red},
		{"overridden", ents[1], 40, colornames.Blue},
	}
	goal := l.TileAt(5, 0).Rect.Center
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			follow, ok := ecs.Get(w, c.e, component.PathFollowComponent.Kind())
			if !ok || follow.Speed != c.speed {
				t.Fatalf("expected speed %v, got %+v", c.speed, follow)
			}
			tint, _ := ecs.Get(w, c.e, component.TintComponent.Kind())
			if tint.Color != c.tint {
				t.Fatalf("expected tint %v, got %v", c.tint, tint.Color)
			}
			req, ok := ecs.Get(w, c.e, component.PathFindRequestComponent.Kind())
			if !ok || req.X != goal.X || req.Y != goal.Y {
				t.Fatalf("expected request toward goal %v, got %+v", goal, req)
			}
			if !ecs.Has(w, c.e, component.GoalScriptComponent.Kind()) {
				t.Fatalf("expected goal script")
			}
		})
	}

	if base.Tint.Color != colornames.Red {
		t.Fatalf("expected base spec untouched, got %v", base.Tint.Color)
	}
}

func TestSpawnLayoutAgentsRejectsBadOverrides(t *testing.T) {
	lay := &levels.Layout{
		Rows:     []string{"...", "..."},
		Entities: []levels.Entity{{Type: LayoutAgent, X: 1, Y: 1, Props: map[string]interface{}{"speed": -5}}},
	}
	l, err := level.FromLayout(lay, level.Config{})
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	w := ecs.NewWorld()
	if _, err := SpawnLayoutAgents(w, l, lay, baseSpec(), pathfind.Config{}); err == nil {
		t.Fatalf("expected error for negative speed")
	}
	if n := len(ecs.Entities(w)); n != 0 {
		t.Fatalf("expected no entities left behind, got %d", n)
	}
}

func TestSpawnRandomAgentsUseOpenTiles(t *testing.T) {
	lay := &levels.Layout{Rows: []string{"#.#", "###", "#.#"}}
	l, err := level.FromLayout(lay, level.Config{})
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	w := ecs.NewWorld()
	ents, err := SpawnRandomAgents(w, l, 5, rand.New(rand.NewSource(2)), baseSpec(), pathfind.Config{})
	if err != nil {
		t.Fatalf("SpawnRandomAgents: %v", err)
	}
	if len(ents) != 5 {
		t.Fatalf("expected 5 agents, got %d", len(ents))
	}
	for _, e := range ents {
		tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		if tile := l.TileAtPosition(tr.Pos()); tile == nil || tile.Type.Solid() {
			t.Fatalf("expected agent on an open tile, got %+v", tile)
		}
	}
}

func TestRequestTileChangeAndMarker(t *testing.T) {
	w := ecs.NewWorld()
	lay := &levels.Layout{Rows: []string{"...."}}
	l, err := level.FromLayout(lay, level.Config{})
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	pos := l.TileAt(2, 0).Rect.Center

	e, err := RequestTileChange(w, pos, level.TileSolid)
	if err != nil {
		t.Fatalf("RequestTileChange: %v", err)
	}
	req, ok := ecs.Get(w, e, component.TileChangeRequestComponent.Kind())
	if !ok || req.Type != level.TileSolid || req.X != pos.X {
		t.Fatalf("unexpected request %+v", req)
	}

	m, err := NewMarker(w, pos, 6, 30, colornames.Yellow)
	if err != nil {
		t.Fatalf("NewMarker: %v", err)
	}
	ttl, ok := ecs.Get(w, m, component.TTLComponent.Kind())
	if !ok || ttl.Frames != 30 {
		t.Fatalf("expected 30 frame ttl, got %+v", ttl)
	}
}
