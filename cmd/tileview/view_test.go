package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/sim"
)

func newTestView(t *testing.T) *view {
	t.Helper()
	s, err := sim.New(sim.Options{Agents: 0})
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 25)
	return newView(screen, s)
}

func TestDrawShowsAgentsAndWalls(t *testing.T) {
	v := newTestView(t)
	v.draw()

	for _, e := range v.sim.Agents() {
		tr, _ := ecs.Get(v.sim.World, e, component.TransformComponent.Kind())
		tile := v.sim.Level.TileAtPosition(tr.Pos())
		if r, _, _, _ := v.screen.GetContent(tile.X, tile.Y+1); r != '@' {
			t.Fatalf("expected agent glyph at %d,%d, got %q", tile.X, tile.Y, r)
		}
	}

	// burrow.json has a solid run starting at 4,2.
	if r, _, _, _ := v.screen.GetContent(4, 3); r == '·' || r == ' ' {
		t.Fatalf("expected a wall glyph at 4,2, got %q", r)
	}
}

func TestHandleInput(t *testing.T) {
	cases := []struct {
		name string
		ev   tcell.Event
		keep bool
	}{
		{"quit_rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), false},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), false},
		{"pause", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), true},
		{"click_off_grid", tcell.NewEventMouse(70, 20, tcell.Button1, tcell.ModNone), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := newTestView(t)
			if got := v.handle(c.ev); got != c.keep {
				t.Fatalf("expected keep=%v, got %v", c.keep, got)
			}
		})
	}
}

func TestClickRequestsDestination(t *testing.T) {
	v := newTestView(t)
	v.handle(tcell.NewEventMouse(20, 1, tcell.Button1, tcell.ModNone))
	want := v.sim.Level.TileAt(20, 0).Rect.Center
	for _, e := range v.sim.Agents() {
		req, ok := ecs.Get(v.sim.World, e, component.PathFindRequestComponent.Kind())
		if !ok || req.X != want.X || req.Y != want.Y {
			t.Fatalf("expected request to %v, got %+v", want, req)
		}
	}

	v.handle(tcell.NewEventMouse(0, 16, tcell.Button2, tcell.ModNone))
	v.sim.Step()
	if !v.sim.Level.TileAt(0, 15).Type.Solid() {
		t.Fatalf("expected right click to make 0,15 solid")
	}
}

func TestWallRune(t *testing.T) {
	cases := []struct {
		mask int
		want rune
	}{
		{-1, ' '},
		{0, '■'},
		{5, '│'},
		{10, '─'},
		{15, '┼'},
	}
	for _, c := range cases {
		if got := wallRune(c.mask); got != c.want {
			t.Fatalf("mask %d: expected %q, got %q", c.mask, c.want, got)
		}
	}
}
