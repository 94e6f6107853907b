package system

import (
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
)

const defaultReachDist = 2.0

// PathFollowSystem steers followers toward the next unreached node of their
// agent's path. Velocity is set so movement lands exactly on a node rather
// than overshooting it.
type PathFollowSystem struct {
	dt float64
}

func NewPathFollowSystem(dt float64) *PathFollowSystem {
	return &PathFollowSystem{dt: dt}
}

func (s *PathFollowSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.dt <= 0 {
		return
	}

	ecs.ForEach4(w,
		component.PathFindComponent.Kind(),
		component.PathFollowComponent.Kind(),
		component.TransformComponent.Kind(),
		component.VelocityComponent.Kind(),
		func(e ecs.Entity, pf *component.PathFind, follow *component.PathFollow, t *component.Transform, v *component.Velocity) {
			v.X, v.Y = 0, 0
			if pf.Agent == nil {
				return
			}
			dest, ok := pf.Agent.Destination()
			if !ok {
				follow.Arrived = false
				return
			}
			if pf.Agent.AtDestination() {
				if !follow.Arrived {
					follow.Arrived = true
					ecs.Emit(w, ecs.PathCompleted{Entity: e, Destination: dest})
				}
				return
			}
			follow.Arrived = false

			reach := follow.ReachDist
			if reach <= 0 {
				reach = defaultReachDist
			}

			pos := t.Pos()
			for {
				next := pf.Agent.Next()
				if next == nil {
					return
				}
				target, ok := pf.Agent.NodePos(next)
				if !ok {
					return
				}
				delta := target.Sub(pos)
				dist := delta.Length()
				if dist <= reach {
					pf.Agent.MarkReached(next)
					continue
				}
				step := follow.Speed * s.dt
				if step >= dist {
					v.X, v.Y = delta.X/s.dt, delta.Y/s.dt
					return
				}
				dir := delta.Mult(follow.Speed / dist)
				v.X, v.Y = dir.X, dir.Y
				return
			}
		})
}
