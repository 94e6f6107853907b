package system

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/nav"
	"github.com/milk9111/burrow/prefabs"
)

const goalDispatchScript = `
__result := pick_goal(__engine, __state)
`

// Goal reasons handed to scripts.
const (
	GoalIdle               = "idle"
	GoalCompleted          = "completed"
	GoalUnreachable        = "unreachable"
	GoalInvalidDestination = "invalid_destination"
)

type goalScriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// GoalScriptSystem asks an agent's script for a new destination whenever
// the agent is idle, has arrived or its search failed. The answer becomes
// a PathFindRequest picked up next tick.
type GoalScriptSystem struct {
	level *level.Level
	rng   *rand.Rand
	cache map[ecs.Entity]*goalScriptRuntime

	// Load reads script source. Defaults to prefabs.LoadScript.
	Load func(path string) ([]byte, error)
}

func NewGoalScriptSystem(l *level.Level, rng *rand.Rand) *GoalScriptSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &GoalScriptSystem{
		level: l,
		rng:   rng,
		cache: map[ecs.Entity]*goalScriptRuntime{},
		Load:  prefabs.LoadScript,
	}
}

func (s *GoalScriptSystem) SetLevel(l *level.Level) { s.level = l }

// Invalidate drops compiled copies of a script so the next run reloads it.
// An empty name drops everything.
func (s *GoalScriptSystem) Invalidate(name string) {
	for e, rt := range s.cache {
		if name == "" || strings.HasSuffix(rt.path, name) {
			delete(s.cache, e)
		}
	}
}

func (s *GoalScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.level == nil {
		return
	}

	for e := range s.cache {
		if !ecs.IsAlive(w, e) {
			delete(s.cache, e)
		}
	}

	ecs.ForEach3(w,
		component.GoalScriptComponent.Kind(),
		component.PathFindComponent.Kind(),
		component.TransformComponent.Kind(),
		func(e ecs.Entity, gs *component.GoalScript, pf *component.PathFind, t *component.Transform) {
			if gs.Cooldown > 0 {
				gs.Cooldown--
				return
			}
			reason := GoalReason(pf)
			if reason == "" || strings.TrimSpace(gs.Path) == "" {
				return
			}
			gs.Cooldown = gs.Interval

			tile, ok, err := s.pickGoal(e, gs.Path, t.X, t.Y, reason)
			if err != nil {
				log.Printf("system: goal script entity=%v %s: %v", e, gs.Path, err)
				return
			}
			if !ok {
				return
			}
			target := s.level.TileAt(tile[0], tile[1])
			if target == nil {
				return
			}
			queueGoal(w, e, target.Rect.Center)
		})
}

func queueGoal(w *ecs.World, e ecs.Entity, c cp.Vector) bool {
	req := &component.PathFindRequest{X: c.X, Y: c.Y}
	if err := ecs.Add(w, e, component.PathFindRequestComponent.Kind(), req); err != nil {
		log.Printf("system: goal script entity=%v: queue request: %v", e, err)
		return false
	}
	return true
}

// GoalReason reports why an agent needs a new goal, or "" while it is busy.
func GoalReason(pf *component.PathFind) string {
	if pf == nil || pf.Agent == nil {
		return ""
	}
	if _, ok := pf.Agent.Destination(); !ok {
		return GoalIdle
	}
	if pf.Agent.AtDestination() {
		return GoalCompleted
	}
	if f := pf.LastResult.Failure; f != nil {
		if f.Reason == nav.FailInvalidDestination {
			return GoalInvalidDestination
		}
		return GoalUnreachable
	}
	return ""
}

func (s *GoalScriptSystem) pickGoal(e ecs.Entity, path string, x, y float64, reason string) ([2]int, bool, error) {
	var out [2]int
	rt, err := s.runtime(e, path)
	if err != nil {
		return out, false, err
	}

	if err := rt.compiled.Set("__engine", s.engine(x, y, reason)); err != nil {
		return out, false, err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return out, false, err
	}
	if err := rt.compiled.Run(); err != nil {
		return out, false, err
	}

	arr, ok := rt.compiled.Get("__result").Object().(*tengo.Array)
	if !ok {
		return out, false, nil
	}
	if len(arr.Value) != 2 {
		return out, false, fmt.Errorf("pick_goal returned %d values, want 2", len(arr.Value))
	}
	for i, v := range arr.Value {
		n, ok := tengo.ToInt(v)
		if !ok {
			return out, false, fmt.Errorf("pick_goal returned non-numeric %s", v.TypeName())
		}
		out[i] = n
	}
	return out, true, nil
}

func (s *GoalScriptSystem) runtime(e ecs.Entity, path string) (*goalScriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt.path == path {
		return rt, nil
	}

	load := s.Load
	if load == nil {
		load = prefabs.LoadScript
	}
	src, err := load(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + goalDispatchScript))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &goalScriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.cache[e] = rt
	return rt, nil
}

func (s *GoalScriptSystem) engine(x, y float64, reason string) *tengo.ImmutableMap {
	l := s.level
	cfg := l.Config()
	values := map[string]tengo.Object{
		"reason":   &tengo.String{Value: reason},
		"position": &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}},
		"width":    &tengo.Int{Value: int64(l.Width())},
		"height":   &tengo.Int{Value: int64(l.Height())},
		"tile_w":   &tengo.Float{Value: cfg.TileW},
		"tile_h":   &tengo.Float{Value: cfg.TileH},
	}
	if t := l.TileAtPosition(cp.Vector{X: x, Y: y}); t != nil {
		values["tile"] = &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(t.X)}, &tengo.Int{Value: int64(t.Y)}}}
	}

	values["is_solid"] = &tengo.UserFunction{Name: "is_solid", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		tx, ok1 := tengo.ToInt(args[0])
		ty, ok2 := tengo.ToInt(args[1])
		if !ok1 || !ok2 {
			return tengo.TrueValue, nil
		}
		t := l.TileAt(tx, ty)
		if t == nil || t.Type.Solid() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["random"] = &tengo.UserFunction{Name: "random", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: s.rng.Float64()}, nil
	}}

	values["random_int"] = &tengo.UserFunction{Name: "random_int", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		n, ok := tengo.ToInt(args[0])
		if !ok || n <= 0 {
			return &tengo.Int{Value: 0}, nil
		}
		return &tengo.Int{Value: int64(s.rng.Intn(n))}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}
