package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/sim"
)

// view draws one terminal cell per tile.
type view struct {
	screen tcell.Screen
	sim    *sim.Sim
	paused bool
	mesh   bool
}

func newView(screen tcell.Screen, s *sim.Sim) *view {
	return &view{screen: screen, sim: s}
}

// handle applies an input event. It returns false when the viewer should
// quit.
func (v *view) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			return false
		case ev.Rune() == ' ':
			v.paused = !v.paused
		case ev.Rune() == 'n':
			v.sim.Step()
		case ev.Rune() == 'm':
			v.mesh = !v.mesh
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		pos, ok := v.cellCenter(x, y)
		if !ok {
			return true
		}
		switch ev.Buttons() {
		case tcell.Button1:
			v.sim.SetDestination(pos, ev.Modifiers()&tcell.ModShift != 0)
		case tcell.Button2:
			v.sim.ToggleTile(pos)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *view) cellCenter(x, y int) (cp.Vector, bool) {
	t := v.sim.Level.TileAt(x, y-1)
	if t == nil {
		return cp.Vector{}, false
	}
	return t.Rect.Center, true
}

func (v *view) draw() {
	v.screen.Clear()
	l := v.sim.Level

	status := fmt.Sprintf("tick %d  agents %d  arrived %d  [click dest, right click tile, m mesh, space pause, q quit]",
		v.sim.Ticks, len(v.sim.Agents()), v.sim.Completed)
	if v.paused {
		status = "PAUSED  " + status
	}
	v.print(0, 0, status, tcell.StyleDefault.Foreground(tcell.ColorGray))

	solid := tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	open := tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	tiles := l.Tiles()
	for i := range tiles {
		t := &tiles[i]
		ch, style := '·', open
		if t.Type.Solid() {
			ch, style = wallRune(t.Appearance), solid
		}
		v.screen.SetContent(t.X, t.Y+1, ch, nil, style)
	}

	if v.mesh {
		meshStyle := tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
		for _, id := range l.Mesh().Waypoints() {
			if n := l.Mesh().Graph().Node(id); n != nil {
				v.plot(n.Pos, '+', meshStyle)
			}
		}
	}

	w := v.sim.World
	ecs.ForEach2(w, component.PathFindComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pf *component.PathFind, t *component.Transform) {
		style := tintStyle(w, e)
		if pf.Agent != nil {
			for _, n := range pf.Agent.Fine().CurrentBest().Path() {
				if gn := l.Graph().Node(n.Node); gn != nil {
					v.plot(gn.Pos, '∙', style)
				}
			}
		}
		ch := '@'
		if pf.LastResult.Failure != nil {
			ch = '?'
		}
		v.plot(t.Pos(), ch, style.Bold(true))
	})

	ecs.ForEach2(w, component.MarkerComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.Marker, t *component.Transform) {
		v.plot(t.Pos(), 'x', tcell.StyleDefault.Foreground(tcell.ColorYellow))
	})

	v.screen.Show()
}

func (v *view) plot(pos cp.Vector, ch rune, style tcell.Style) {
	t := v.sim.Level.TileAtPosition(pos)
	if t == nil {
		return
	}
	v.screen.SetContent(t.X, t.Y+1, ch, nil, style)
}

func (v *view) print(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func tintStyle(w *ecs.World, e ecs.Entity) tcell.Style {
	style := tcell.StyleDefault.Foreground(tcell.ColorOrange)
	if tint, ok := ecs.Get(w, e, component.TintComponent.Kind()); ok && tint.Color != nil {
		r, g, b, _ := tint.Color.RGBA()
		style = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8)))
	}
	return style
}

// wallRune picks a box-drawing rune from a solid tile's appearance mask
// (up=1, right=2, down=4, left=8: set where the neighbour is also solid).
func wallRune(appearance int) rune {
	if appearance < 0 {
		return ' '
	}
	return wallRunes[appearance&15]
}

var wallRunes = [16]rune{
	'■', '╵', '╶', '└', '╷', '│', '┌', '├',
	'╴', '┘', '─', '┴', '┐', '┤', '┬', '┼',
}
