package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/nav"
	"github.com/milk9111/burrow/prefabs"
	"github.com/milk9111/burrow/sim"
	"golang.org/x/image/colornames"
)

var (
	colorBackground = color.RGBA{R: 24, G: 22, B: 28, A: 255}
	colorSolid      = color.RGBA{R: 92, G: 74, B: 60, A: 255}
	colorChecked    = color.RGBA{R: 255, G: 220, B: 0, A: 40}
	colorCollided   = color.RGBA{R: 255, G: 40, B: 40, A: 110}
	colorTileEdge   = color.RGBA{R: 120, G: 120, B: 140, A: 40}
	colorMeshEdge   = color.RGBA{R: 90, G: 170, B: 255, A: 120}
)

type Game struct {
	sim     *sim.Sim
	watcher *prefabs.Watcher

	frames int
	paused bool
	debug  bool

	showTiles bool
	showMesh  bool
	showPaths bool
}

func NewGame(s *sim.Sim, watcher *prefabs.Watcher, debug bool) *Game {
	return &Game{
		sim:       s,
		watcher:   watcher,
		debug:     debug,
		showMesh:  debug,
		showPaths: true,
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.frames++

	if g.watcher != nil {
		if changed := g.watcher.Drain(); len(changed) > 0 {
			g.sim.Reload(changed...)
		}
	}

	g.handleInput()

	if !g.paused || inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.sim.Step()
	}
	return nil
}

func (g *Game) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.showTiles = !g.showTiles
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.showMesh = !g.showMesh
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.showPaths = !g.showPaths
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.debug = !g.debug
	case inpututil.IsKeyJustPressed(ebiten.KeyS) && ebiten.IsKeyPressed(ebiten.KeyControl):
		path, err := g.sim.SaveLayout()
		if err != nil {
			log.Printf("game: save layout: %v", err)
			break
		}
		log.Printf("game: saved %s", path)
	}

	mx, my := ebiten.CursorPosition()
	pos := cp.Vector{X: float64(mx), Y: float64(my)}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		extend := ebiten.IsKeyPressed(ebiten.KeyShift)
		g.sim.SetDestination(pos, extend)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.sim.ToggleTile(pos)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		if _, err := g.sim.SpawnAgent(pos); err != nil && g.debug {
			fmt.Printf("game: spawn agent: %v\n", err)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	l := g.sim.Level
	g.drawTiles(screen, l)
	if g.showTiles {
		drawGraph(screen, l.Graph(), colorTileEdge, 0)
	}
	if g.showMesh {
		drawGraph(screen, l.Mesh().Graph(), colorMeshEdge, 3)
	}
	g.drawAgents(screen, l)
	g.drawMarkers(screen)

	state := ""
	if g.paused {
		state = " [paused]"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f  tick: %d%s\nagents: %d  arrived: %d  collisions: %d\nLMB dest (shift extend)  RMB tile  MMB agent  G/M/P overlays  space pause  ctrl+S save",
		ebiten.ActualFPS(), g.sim.Ticks, state, len(g.sim.Agents()), g.sim.Completed, g.sim.Collisions,
	))
}

func (g *Game) drawTiles(screen *ebiten.Image, l *level.Level) {
	tiles := l.Tiles()
	for i := range tiles {
		t := &tiles[i]
		r := t.Rect
		x, y := float32(r.Left()), float32(r.Top())
		w, h := float32(r.Width()), float32(r.Height())

		if t.Type.Solid() {
			vector.FillRect(screen, x, y, w, h, colorSolid, false)
		}
		if g.debug {
			if t.Debug&level.DebugChecked != 0 {
				vector.FillRect(screen, x, y, w, h, colorChecked, false)
			}
			if t.Debug&level.DebugCollided != 0 {
				vector.FillRect(screen, x, y, w, h, colorCollided, false)
			}
		}

		if t.HasWall(level.WallTop) {
			vector.StrokeLine(screen, x, y, x+w, y, 2, colornames.Burlywood, false)
		}
		if t.HasWall(level.WallBottom) {
			vector.StrokeLine(screen, x, y+h, x+w, y+h, 2, colornames.Burlywood, false)
		}
		if t.HasWall(level.WallLeft) {
			vector.StrokeLine(screen, x, y, x, y+h, 2, colornames.Burlywood, false)
		}
		if t.HasWall(level.WallRight) {
			vector.StrokeLine(screen, x+w, y, x+w, y+h, 2, colornames.Burlywood, false)
		}
	}
}

func drawGraph(screen *ebiten.Image, g *nav.Graph, clr color.Color, nodeSize float32) {
	for i := 0; i < g.Len(); i++ {
		id := nav.NodeID(i)
		n := g.Node(id)
		if n == nil || !n.Enabled() {
			continue
		}
		for _, e := range n.Edges {
			to := g.Node(e.To)
			if to == nil || (!n.Temporary() && e.To < id) {
				continue
			}
			vector.StrokeLine(screen, float32(n.Pos.X), float32(n.Pos.Y), float32(to.Pos.X), float32(to.Pos.Y), 1, clr, false)
		}
		if nodeSize > 0 {
			vector.FillRect(screen, float32(n.Pos.X)-nodeSize/2, float32(n.Pos.Y)-nodeSize/2, nodeSize, nodeSize, clr, false)
		}
	}
}

func (g *Game) drawAgents(screen *ebiten.Image, l *level.Level) {
	w := g.sim.World
	ecs.ForEach3(w,
		component.TransformComponent.Kind(),
		component.TileColliderComponent.Kind(),
		component.TintComponent.Kind(),
		func(e ecs.Entity, t *component.Transform, c *component.TileCollider, tint *component.Tint) {
			if pf, ok := ecs.Get(w, e, component.PathFindComponent.Kind()); ok && g.showPaths && pf.Agent != nil {
				if pf.Agent.Coarse() != nil {
					drawPath(screen, l.Mesh().Graph(), pf.Agent.Coarse().CurrentBest(), colornames.Skyblue)
				}
				drawPath(screen, l.Graph(), pf.Agent.Fine().CurrentBest(), tint.Color)
				if f := pf.LastResult.Failure; f != nil && g.debug {
					ebitenutil.DebugPrintAt(screen, f.Reason.String(), int(t.X)+8, int(t.Y)-16)
				}
			}

			r := c.Rect(t.X, t.Y)
			clr := tint.Color
			if clr == nil {
				clr = colornames.White
			}
			vector.FillRect(screen, float32(r.Left()), float32(r.Top()), float32(r.Width()), float32(r.Height()), clr, false)
			if c.Last.Collided {
				vector.StrokeRect(screen, float32(r.Left()), float32(r.Top()), float32(r.Width()), float32(r.Height()), 1, colornames.Red, false)
			}
		})
}

func drawPath(screen *ebiten.Image, g *nav.Graph, best *nav.PathNode, clr color.Color) {
	if best == nil || clr == nil {
		return
	}
	path := best.Path()
	for i := 1; i < len(path); i++ {
		a, b := g.Node(path[i-1].Node), g.Node(path[i].Node)
		if a == nil || b == nil {
			continue
		}
		vector.StrokeLine(screen, float32(a.Pos.X), float32(a.Pos.Y), float32(b.Pos.X), float32(b.Pos.Y), 2, clr, true)
	}
}

func (g *Game) drawMarkers(screen *ebiten.Image) {
	ecs.ForEach3(g.sim.World,
		component.MarkerComponent.Kind(),
		component.TransformComponent.Kind(),
		component.TintComponent.Kind(),
		func(_ ecs.Entity, m *component.Marker, t *component.Transform, tint *component.Tint) {
			x, y, s := float32(t.X), float32(t.Y), float32(m.Size)
			vector.StrokeLine(screen, x-s, y-s, x+s, y+s, 2, tint.Color, true)
			vector.StrokeLine(screen, x-s, y+s, x+s, y-s, 2, tint.Color, true)
		})
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	b := g.sim.Level.Bounds()
	return b.Width(), b.Height()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
