package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/pathfind"
)

// PathFindSystem applies destination requests and advances every agent's
// search by one budget slice. Agents re-resolve their endpoints in any
// tick where a tile changed.
type PathFindSystem struct{}

func NewPathFindSystem() *PathFindSystem {
	return &PathFindSystem{}
}

func (s *PathFindSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	edited := len(ecs.EventsOf[ecs.TileChanged](w)) > 0

	ecs.ForEach2(w, component.PathFindComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pf *component.PathFind, t *component.Transform) {
		if pf.Agent == nil {
			return
		}
		pos := t.Pos()
		if edited {
			pf.Agent.Invalidate(pos)
		}

		if req, ok := ecs.Get(w, e, component.PathFindRequestComponent.Kind()); ok {
			applyRequest(pf.Agent, pos, req)
			ecs.Remove(w, e, component.PathFindRequestComponent.Kind())
		}

		if _, ok := pf.Agent.Destination(); !ok {
			pf.LastResult = pathfind.Result{}
			return
		}

		pf.LastResult = pf.Agent.Update(pos)
		if f := pf.LastResult.Failure; f != nil {
			ecs.Emit(w, ecs.PathFindFailed{Entity: e, Reason: f.Reason, Coarse: f.Coarse})
		}
	})
}

func applyRequest(a *pathfind.Agent, pos cp.Vector, req *component.PathFindRequest) {
	dest := cp.Vector{X: req.X, Y: req.Y}
	switch {
	case req.Clear:
		a.ClearDestination()
	case req.Extend:
		a.ExtendDestination(dest)
	default:
		a.Goto(pos, dest)
	}
}
