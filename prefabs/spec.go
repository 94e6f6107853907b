package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/nav"
	"github.com/milk9111/burrow/pathfind"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

var ErrBadSpec = errors.New("prefabs: bad spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// WorldSpec selects the level and tunes the grid and its navmesh.
type WorldSpec struct {
	// Level names an embedded layout. Empty generates a random level.
	Level           string       `yaml:"level"`
	Seed            int64        `yaml:"seed"`
	Generate        GenerateSpec `yaml:"generate"`
	TileW           float64      `yaml:"tile_w"`
	TileH           float64      `yaml:"tile_h"`
	CollisionRadius int          `yaml:"collision_radius"`
	Mesh            MeshSpec     `yaml:"mesh"`
	TickRate        int          `yaml:"tick_rate"`
	Agents          int          `yaml:"agents"`
}

type GenerateSpec struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	SolidChance float64 `yaml:"solid_chance"`
}

type MeshSpec struct {
	Stride     int `yaml:"stride"`
	LinkRadius int `yaml:"link_radius"`
}

func LoadWorldSpec() (*WorldSpec, error) {
	spec, err := LoadSpec[WorldSpec]("world.yaml")
	if err != nil {
		return nil, err
	}
	if spec.TickRate <= 0 {
		spec.TickRate = 60
	}
	return &spec, nil
}

// LevelConfig maps the spec onto a level config.
func (s *WorldSpec) LevelConfig() level.Config {
	return level.Config{
		Width:           s.Generate.Width,
		Height:          s.Generate.Height,
		TileW:           s.TileW,
		TileH:           s.TileH,
		SolidChance:     s.Generate.SolidChance,
		CollisionRadius: s.CollisionRadius,
		Mesh:            level.MeshConfig{Stride: s.Mesh.Stride, LinkRadius: s.Mesh.LinkRadius},
	}
}

// PathfindSpec tunes agent planners.
type PathfindSpec struct {
	Mode         string `yaml:"mode"`
	CoarseBudget int    `yaml:"coarse_budget"`
	FineBudget   int    `yaml:"fine_budget"`
	Rank         string `yaml:"rank"`
	TrackSource  bool   `yaml:"track_source"`
}

func LoadPathfindSpec() (*PathfindSpec, error) {
	spec, err := LoadSpec[PathfindSpec]("pathfind.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *PathfindSpec) AgentConfig() (pathfind.Config, error) {
	cfg := pathfind.Config{
		CoarseBudget: s.CoarseBudget,
		FineBudget:   s.FineBudget,
		TrackSource:  s.TrackSource,
	}
	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case "", "hierarchical":
		cfg.Mode = pathfind.ModeHierarchical
	case "tile_only", "tiles":
		cfg.Mode = pathfind.ModeTileOnly
	default:
		return cfg, fmt.Errorf("%w: unknown pathfind mode %q", ErrBadSpec, s.Mode)
	}
	switch strings.ToLower(strings.TrimSpace(s.Rank)) {
	case "", "heuristic":
		cfg.Rank = nav.BestByHeuristic
	case "score":
		cfg.Rank = nav.BestByScore
	default:
		return cfg, fmt.Errorf("%w: unknown rank %q", ErrBadSpec, s.Rank)
	}
	if s.CoarseBudget < 0 || s.FineBudget < 0 {
		return cfg, fmt.Errorf("%w: negative budget", ErrBadSpec)
	}
	return cfg, nil
}

// AgentSpec describes a path-following mover.
type AgentSpec struct {
	Name           string       `yaml:"name"`
	Speed          float64      `yaml:"speed"`
	ReachDist      float64      `yaml:"reach_dist"`
	Collider       ColliderSpec `yaml:"collider"`
	Tint           *YAMLColor   `yaml:"tint"`
	Script         string       `yaml:"script"`
	ScriptInterval int          `yaml:"script_interval"`
}

type ColliderSpec struct {
	HalfW float64 `yaml:"half_w"`
	HalfH float64 `yaml:"half_h"`
	RootX float64 `yaml:"root_x"`
	RootY float64 `yaml:"root_y"`
}

func LoadAgentSpec() (*AgentSpec, error) {
	spec, err := LoadSpec[AgentSpec]("agent.yaml")
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *AgentSpec) Validate() error {
	if s.Speed <= 0 {
		return fmt.Errorf("%w: agent %q speed must be positive", ErrBadSpec, s.Name)
	}
	if s.Collider.HalfW <= 0 || s.Collider.HalfH <= 0 {
		return fmt.Errorf("%w: agent %q collider needs positive half extents", ErrBadSpec, s.Name)
	}
	return nil
}

// YAMLColor accepts #rrggbb, #rrggbbaa or a colornames key.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if !strings.HasPrefix(value.Value, "#") {
		named, ok := colornames.Map[strings.ToLower(value.Value)]
		if !ok {
			return fmt.Errorf("unknown color name: %s", value.Value)
		}
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return err
		}
		rgba[i] = v
	}
	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}
