package sim

import (
	"fmt"
	"log"
	"math/rand"
	"path/filepath"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/ecs"
	"github.com/milk9111/burrow/ecs/component"
	"github.com/milk9111/burrow/ecs/entity"
	"github.com/milk9111/burrow/ecs/system"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/levels"
	"github.com/milk9111/burrow/pathfind"
	"github.com/milk9111/burrow/prefabs"
	"golang.org/x/image/colornames"
)

// Generated selects a random level instead of an authored layout.
const Generated = "random"

// Options override world.yaml. Zero values keep the spec's setting.
type Options struct {
	Level string
	Seed  int64
	// Agents is the number of extra random agents. Negative keeps the spec.
	Agents int
	Debug  bool
}

// Sim owns one world, its level and the fixed system order shared by the
// game window and the terminal viewer.
type Sim struct {
	World *ecs.World
	Level *level.Level

	Spec      *prefabs.WorldSpec
	AgentSpec prefabs.AgentSpec
	AgentCfg  pathfind.Config

	DT    float64
	Ticks int

	Collisions int
	Completed  int

	layout *levels.Layout
	debug  bool
	rng    *rand.Rand
	sched  *ecs.Scheduler
	goals  *system.GoalScriptSystem
	agents []ecs.Entity
}

func New(opts Options) (*Sim, error) {
	spec, err := prefabs.LoadWorldSpec()
	if err != nil {
		return nil, err
	}
	switch opts.Level {
	case "":
	case Generated:
		spec.Level = ""
	default:
		spec.Level = opts.Level
	}
	if opts.Seed != 0 {
		spec.Seed = opts.Seed
	}
	if opts.Agents >= 0 {
		spec.Agents = opts.Agents
	}

	pfSpec, err := prefabs.LoadPathfindSpec()
	if err != nil {
		return nil, err
	}
	agentCfg, err := pfSpec.AgentConfig()
	if err != nil {
		return nil, err
	}
	agentSpec, err := prefabs.LoadAgentSpec()
	if err != nil {
		return nil, err
	}

	s := &Sim{
		World:     ecs.NewWorld(),
		Spec:      spec,
		AgentSpec: *agentSpec,
		AgentCfg:  agentCfg,
		DT:        1 / float64(spec.TickRate),
		debug:     opts.Debug,
		rng:       rand.New(rand.NewSource(spec.Seed)),
	}

	var lay *levels.Layout
	if spec.Level != "" {
		lay, err = levels.LoadLayout(spec.Level)
		if err != nil {
			return nil, fmt.Errorf("sim: load level %s: %w", spec.Level, err)
		}
		s.Level, err = level.FromLayout(lay, spec.LevelConfig())
	} else {
		s.Level, err = level.New(spec.LevelConfig(), s.rng)
	}
	if err != nil {
		return nil, fmt.Errorf("sim: build level: %w", err)
	}

	s.layout = lay

	if _, err := entity.LoadLevelToWorld(s.World, s.Level); err != nil {
		return nil, err
	}
	placed, err := entity.SpawnLayoutAgents(s.World, s.Level, lay, s.AgentSpec, s.AgentCfg)
	if err != nil {
		return nil, err
	}
	random, err := entity.SpawnRandomAgents(s.World, s.Level, spec.Agents, s.rng, s.AgentSpec, s.AgentCfg)
	if err != nil {
		return nil, err
	}
	s.agents = append(placed, random...)

	s.goals = system.NewGoalScriptSystem(s.Level, s.rng)
	s.sched = ecs.NewScheduler(
		system.NewTileCollisionRecordSystem(s.Level),
		system.NewTileEditSystem(s.Level),
		system.NewPathFindSystem(),
		system.NewPathFollowSystem(s.DT),
		s.goals,
		system.NewMovementSystem(s.DT),
		system.NewTTLSystem(),
		system.NewTileCollisionSystem(s.Level),
		observer{s},
	)

	if s.debug {
		log.Printf("sim: level=%q %dx%d agents=%d mode=%v", spec.Level, s.Level.Width(), s.Level.Height(), len(s.agents), s.AgentCfg.Mode)
	}
	return s, nil
}

// Step advances the world one fixed tick.
func (s *Sim) Step() {
	s.sched.Update(s.World)
	s.Ticks++
}

// Agents returns the live agent entities.
func (s *Sim) Agents() []ecs.Entity {
	live := s.agents[:0]
	for _, e := range s.agents {
		if ecs.IsAlive(s.World, e) {
			live = append(live, e)
		}
	}
	s.agents = live
	return live
}

// SetDestination sends every agent to pos. With extend set the agents keep
// the search they have done so far.
func (s *Sim) SetDestination(pos cp.Vector, extend bool) {
	for _, e := range s.Agents() {
		if err := entity.RequestDestination(s.World, e, pos, extend); err != nil {
			log.Printf("sim: request destination entity=%v: %v", e, err)
		}
	}
	if _, err := entity.NewMarker(s.World, pos, 6, 30, colornames.Yellow); err != nil {
		log.Printf("sim: marker: %v", err)
	}
}

// ToggleTile flips the tile under pos between empty and solid.
func (s *Sim) ToggleTile(pos cp.Vector) {
	t := s.Level.TileAtPosition(pos)
	if t == nil {
		return
	}
	typ := level.TileSolid
	if t.Type.Solid() {
		typ = level.TileEmpty
	}
	if _, err := entity.RequestTileChange(s.World, pos, typ); err != nil {
		log.Printf("sim: request tile change: %v", err)
	}
}

// SpawnAgent adds one agent at pos using the current agent spec.
func (s *Sim) SpawnAgent(pos cp.Vector) (ecs.Entity, error) {
	spec := s.AgentSpec
	e, err := entity.NewAgent(s.World, s.Level, &spec, s.AgentCfg, pos)
	if err != nil {
		return 0, err
	}
	s.agents = append(s.agents, e)
	return e, nil
}

// SaveLayout writes the edited level, keeping the authored entities, to
// the levels directory. LoadLayout prefers the saved copy from then on.
func (s *Sim) SaveLayout() (string, error) {
	lay := s.Level.Layout(s.Spec.Level)
	if s.layout != nil {
		lay.Entities = s.layout.Entities
	}
	return levels.SaveLayout(lay)
}

// Reload applies edited prefab files by base name.
func (s *Sim) Reload(names ...string) {
	for _, name := range names {
		switch filepath.Base(name) {
		case "agent.yaml":
			spec, err := prefabs.LoadAgentSpec()
			if err != nil {
				log.Printf("sim: reload agent.yaml: %v", err)
				continue
			}
			s.AgentSpec = *spec
			s.applyAgentSpec()
		case "pathfind.yaml":
			pf, err := prefabs.LoadPathfindSpec()
			if err == nil {
				s.AgentCfg, err = pf.AgentConfig()
			}
			if err != nil {
				log.Printf("sim: reload pathfind.yaml: %v", err)
				continue
			}
			s.applyAgentConfig()
		case "world.yaml":
			log.Printf("sim: world.yaml changed; restart to apply")
		default:
			if filepath.Ext(name) == ".tengo" {
				s.goals.Invalidate(filepath.Base(name))
			}
		}
		if s.debug {
			log.Printf("sim: reloaded %s", name)
		}
	}
}

func (s *Sim) applyAgentSpec() {
	spec := s.AgentSpec
	for _, e := range s.Agents() {
		if f, ok := ecs.Get(s.World, e, component.PathFollowComponent.Kind()); ok {
			f.Speed, f.ReachDist = spec.Speed, spec.ReachDist
		}
		if c, ok := ecs.Get(s.World, e, component.TileColliderComponent.Kind()); ok {
			c.HalfW, c.HalfH = spec.Collider.HalfW, spec.Collider.HalfH
			c.RootX, c.RootY = spec.Collider.RootX, spec.Collider.RootY
		}
		if t, ok := ecs.Get(s.World, e, component.TintComponent.Kind()); ok && spec.Tint != nil {
			t.Color = spec.Tint.Color
		}
		if g, ok := ecs.Get(s.World, e, component.GoalScriptComponent.Kind()); ok {
			g.Path, g.Interval = spec.Script, spec.ScriptInterval
		}
	}
}

// applyAgentConfig swaps every agent for one built with the new planner
// settings. Replacing the component releases the old agent's nodes.
func (s *Sim) applyAgentConfig() {
	for _, e := range s.Agents() {
		pf, ok := ecs.Get(s.World, e, component.PathFindComponent.Kind())
		if !ok {
			continue
		}
		dest, hasDest := pf.Agent.Destination()
		next := &component.PathFind{Agent: pathfind.NewAgent(s.Level, s.AgentCfg)}
		if err := ecs.Add(s.World, e, component.PathFindComponent.Kind(), next); err != nil {
			log.Printf("sim: replace agent entity=%v: %v", e, err)
			continue
		}
		if hasDest {
			_ = entity.RequestDestination(s.World, e, dest, false)
		}
	}
}

// observer is the last system of a tick and sees every event raised in it.
type observer struct {
	s *Sim
}

func (o observer) Update(w *ecs.World) {
	for _, ev := range ecs.EventsOf[ecs.PathCompleted](w) {
		o.s.Completed++
		if _, err := entity.NewMarker(w, ev.Destination, 10, 45, colornames.Lime); err != nil {
			log.Printf("sim: marker: %v", err)
		}
	}
	o.s.Collisions += len(ecs.EventsOf[ecs.TileCollided](w))
	if !o.s.debug {
		return
	}
	for _, ev := range ecs.EventsOf[ecs.PathFindFailed](w) {
		log.Printf("sim: entity=%v path failed reason=%v coarse=%v", ev.Entity, ev.Reason, ev.Coarse)
	}
	for _, ev := range ecs.EventsOf[ecs.TileChanged](w) {
		log.Printf("sim: tile %d,%d %v -> %v", ev.X, ev.Y, ev.Previous, ev.Current)
	}
}
