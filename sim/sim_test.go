package sim

import (
	"testing"

	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
)

func TestNewFromEmbeddedLevel(t *testing.T) {
	s, err := New(Options{Agents: 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Level.Width() != 24 || s.Level.Height() != 16 {
		t.Fatalf("expected the 24x16 burrow level, got %dx%d", s.Level.Width(), s.Level.Height())
	}
	agents := s.Agents()
	if len(agents) != 2 {
		t.Fatalf("expected 2 layout agents, got %d", len(agents))
	}
	if _, ok := ecs.First(s.World, component.LevelBoundsComponent.Kind()); !ok {
		t.Fatalf("expected a level bounds entity")
	}

	start, _ := ecs.Get(s.World, agents[0], component.TransformComponent.Kind())
	x0, y0 := start.X, start.Y
	for i := 0; i < 120; i++ {
		s.Step()
	}
	now, _ := ecs.Get(s.World, agents[0], component.TransformComponent.Kind())
	if now.X == x0 && now.Y == y0 {
		t.Fatalf("expected the agent to move toward the layout goal")
	}
	if s.Ticks != 120 {
		t.Fatalf("expected 120 ticks, got %d", s.Ticks)
	}
}

func TestGeneratedLevel(t *testing.T) {
	a, err := New(Options{Level: Generated, Seed: 9, Agents: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(Options{Level: Generated, Seed: 9, Agents: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(a.Agents()) != 3 {
		t.Fatalf("expected 3 random agents, got %d", len(a.Agents()))
	}
	for i := range a.Level.Tiles() {
		if a.Level.Tiles()[i].Type != b.Level.Tiles()[i].Type {
			t.Fatalf("expected the same seed to generate the same level, tile %d differs", i)
		}
	}
}

func TestToggleTileAndDestination(t *testing.T) {
	s, err := New(Options{Agents: 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pos := s.Level.TileAt(0, 15).Rect.Center
	s.ToggleTile(pos)
	s.Step()
	if !s.Level.TileAt(0, 15).Type.Solid() {
		t.Fatalf("expected tile 0,15 to become solid")
	}
	s.ToggleTile(pos)
	s.Step()
	if s.Level.TileAt(0, 15).Type != level.TileEmpty {
		t.Fatalf("expected tile 0,15 to be cleared again")
	}

	dest := s.Level.TileAt(23, 0).Rect.Center
	s.SetDestination(dest, false)
	for _, e := range s.Agents() {
		req, ok := ecs.Get(s.World, e, component.PathFindRequestComponent.Kind())
		if !ok || req.X != dest.X || req.Y != dest.Y {
			t.Fatalf("expected a request to %v for %v, got %+v", dest, e, req)
		}
	}
	if ecs.Count(s.World, component.MarkerComponent.Kind()) == 0 {
		t.Fatalf("expected a destination marker")
	}
}

func TestReloadPathfindReplacesAgents(t *testing.T) {
	s, err := New(Options{Agents: 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 5; i++ {
		s.Step()
	}
	e := s.Agents()[0]
	before, _ := ecs.Get(s.World, e, component.PathFindComponent.Kind())
	old := before.Agent

	s.Reload("pathfind.yaml")
	after, _ := ecs.Get(s.World, e, component.PathFindComponent.Kind())
	if after.Agent == old {
		t.Fatalf("expected a fresh agent after reload")
	}
	if n := s.Level.Graph().TemporaryCount() + s.Level.Mesh().Graph().TemporaryCount(); n != 0 {
		t.Fatalf("expected the old agents' temporary nodes released, got %d", n)
	}
}
