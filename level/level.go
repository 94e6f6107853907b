package level

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/common"
	"github.com/milk9111/burrow/levels"
	"github.com/milk9111/burrow/nav"
)

var ErrInvalidConfig = errors.New("level: invalid config")

const (
	DefaultCollisionRadius = 5
	DefaultMeshStride      = 4
	DefaultMeshLinkRadius  = 8
)

type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	TileW float64 `yaml:"tile_w"`
	TileH float64 `yaml:"tile_h"`

	// SolidChance seeds random solids when a level is generated.
	SolidChance float64 `yaml:"solid_chance"`

	// CollisionRadius is the tile radius scanned around a mover.
	CollisionRadius int `yaml:"collision_radius"`

	Mesh MeshConfig `yaml:"mesh"`
}

func (c Config) withDefaults() Config {
	if c.TileW <= 0 {
		c.TileW = common.TileSize
	}
	if c.TileH <= 0 {
		c.TileH = common.TileSize
	}
	if c.CollisionRadius <= 0 {
		c.CollisionRadius = DefaultCollisionRadius
	}
	if c.Mesh.Stride <= 0 {
		c.Mesh.Stride = DefaultMeshStride
	}
	if c.Mesh.LinkRadius <= 0 {
		c.Mesh.LinkRadius = DefaultMeshLinkRadius
	}
	return c
}

// MapInfo describes the grid for renderers.
type MapInfo struct {
	Width, Height int
	TileW, TileH  float64
	Texture       any
}

type Level struct {
	cfg   Config
	tiles []Tile
	graph *nav.Graph
	mesh  *Mesh

	debugged []int

	// Texture is an opaque handle the renderer attaches.
	Texture any
}

// New builds a w*h level. When rng is non-nil each tile is made solid with
// probability cfg.SolidChance.
func New(cfg Config, rng *rand.Rand) (*Level, error) {
	cfg = cfg.withDefaults()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if cfg.SolidChance < 0 || cfg.SolidChance > 1 {
		return nil, fmt.Errorf("%w: solid chance %v", ErrInvalidConfig, cfg.SolidChance)
	}
	l := alloc(cfg)
	if rng != nil && cfg.SolidChance > 0 {
		for i := range l.tiles {
			if rng.Float64() < cfg.SolidChance {
				l.tiles[i].Type = TileSolid
			}
		}
	}
	l.build()
	return l, nil
}

// FromLayout builds a level from an authored layout. Layout tile sizes win
// over cfg when set.
func FromLayout(lay *levels.Layout, cfg Config) (*Level, error) {
	if lay == nil || lay.Height() == 0 || lay.Width() == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidConfig)
	}
	cfg.Width, cfg.Height = lay.Width(), lay.Height()
	if lay.TileW > 0 {
		cfg.TileW = lay.TileW
	}
	if lay.TileH > 0 {
		cfg.TileH = lay.TileH
	}
	cfg.SolidChance = 0
	cfg = cfg.withDefaults()

	l := alloc(cfg)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			if lay.Solid(x, y) {
				l.tiles[y*cfg.Width+x].Type = TileSolid
			}
		}
	}
	l.build()
	return l, nil
}

func alloc(cfg Config) *Level {
	l := &Level{cfg: cfg, tiles: make([]Tile, cfg.Width*cfg.Height)}
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			t := &l.tiles[y*cfg.Width+x]
			t.X, t.Y = x, y
			t.Rect = common.RectFromTopLeft(float64(x)*cfg.TileW, float64(y)*cfg.TileH, cfg.TileW, cfg.TileH)
			for d := Direction(0); d < dirCount; d++ {
				dx, dy := d.Offset()
				t.Neighbours[d] = l.index(x+dx, y+dy)
			}
		}
	}
	return l
}

func (l *Level) build() {
	for i := range l.tiles {
		l.refreshWalls(i)
		l.refreshAppearance(i)
	}
	l.buildTileGraph()
	l.mesh = newMesh(l, l.cfg.Mesh)
}

func (l *Level) Config() Config { return l.cfg }

func (l *Level) Width() int  { return l.cfg.Width }
func (l *Level) Height() int { return l.cfg.Height }

func (l *Level) MapInfo() MapInfo {
	return MapInfo{Width: l.cfg.Width, Height: l.cfg.Height, TileW: l.cfg.TileW, TileH: l.cfg.TileH, Texture: l.Texture}
}

// Bounds is the world rectangle covered by the grid.
func (l *Level) Bounds() common.Rect {
	return common.RectFromTopLeft(0, 0, float64(l.cfg.Width)*l.cfg.TileW, float64(l.cfg.Height)*l.cfg.TileH)
}

// Graph returns the tile-level navigation graph.
func (l *Level) Graph() *nav.Graph { return l.graph }

func (l *Level) Mesh() *Mesh { return l.mesh }

// Tiles exposes the backing slice for iteration. Callers must not resize it.
func (l *Level) Tiles() []Tile { return l.tiles }

func (l *Level) index(x, y int) int {
	if x < 0 || y < 0 || x >= l.cfg.Width || y >= l.cfg.Height {
		return -1
	}
	return y*l.cfg.Width + x
}

func (l *Level) TileAt(x, y int) *Tile {
	i := l.index(x, y)
	if i < 0 {
		return nil
	}
	return &l.tiles[i]
}

// TileIndex returns the flat index of t, or -1 for nil.
func (l *Level) TileIndex(t *Tile) int {
	if t == nil {
		return -1
	}
	return l.index(t.X, t.Y)
}

// TileByIndex returns the tile at a flat index or nil.
func (l *Level) TileByIndex(i int) *Tile {
	if i < 0 || i >= len(l.tiles) {
		return nil
	}
	return &l.tiles[i]
}

// TileAtPosition maps a world position to its tile. Coordinates truncate
// toward zero, so anything negative is off the grid.
func (l *Level) TileAtPosition(pos cp.Vector) *Tile {
	if pos.X < 0 || pos.Y < 0 {
		return nil
	}
	return l.TileAt(int(pos.X/l.cfg.TileW), int(pos.Y/l.cfg.TileH))
}

// SetTileType changes the tile under pos and reports the previous type.
// ok is false when pos is off the grid.
func (l *Level) SetTileType(pos cp.Vector, typ TileType) (prev TileType, ok bool) {
	t := l.TileAtPosition(pos)
	if t == nil {
		return TileEmpty, false
	}
	return l.SetTileTypeAt(t.X, t.Y, typ)
}

// SetTileTypeAt changes a tile by grid coordinate. Walls and appearance
// are recomputed for the tile and its four orthogonal neighbours, and both
// navigation layers are patched around it.
func (l *Level) SetTileTypeAt(x, y int, typ TileType) (prev TileType, ok bool) {
	i := l.index(x, y)
	if i < 0 {
		return TileEmpty, false
	}
	t := &l.tiles[i]
	prev = t.Type
	if prev == typ {
		return prev, true
	}
	t.Type = typ

	l.refreshWalls(i)
	l.refreshAppearance(i)
	for _, s := range sideWalls {
		if n := t.Neighbours[s.dir]; n >= 0 {
			l.refreshWalls(n)
			l.refreshAppearance(n)
		}
	}
	l.patchTileGraph(i)
	l.mesh.refresh(i)
	return prev, true
}

func (l *Level) solidAt(i int) bool {
	return i >= 0 && l.tiles[i].Type.Solid()
}

func (l *Level) traversable(i int) bool {
	return i >= 0 && !l.tiles[i].Type.Solid()
}

func (l *Level) refreshWalls(i int) {
	t := &l.tiles[i]
	t.Walls = WallNone
	if !t.Type.Solid() {
		return
	}
	for _, s := range sideWalls {
		if !l.solidAt(t.Neighbours[s.dir]) {
			t.Walls |= s.wall
		}
	}
}

func (l *Level) refreshAppearance(i int) {
	t := &l.tiles[i]
	if !t.Type.Solid() {
		t.Appearance = -1
		return
	}
	mask := 0
	for _, s := range sideWalls {
		n := t.Neighbours[s.dir]
		if n < 0 || l.tiles[n].Type.Solid() {
			mask |= int(s.bit)
		}
	}
	t.Appearance = mask
}

func (l *Level) markDebug(i int, f DebugFlags) {
	t := &l.tiles[i]
	if t.Debug == 0 {
		l.debugged = append(l.debugged, i)
	}
	t.Debug |= f
}

// ClearDebug resets the flags left by the previous collision pass.
func (l *Level) ClearDebug() {
	for _, i := range l.debugged {
		l.tiles[i].Debug = 0
	}
	l.debugged = l.debugged[:0]
}

// Layout snapshots the current tile types as an authored layout.
func (l *Level) Layout(name string) *levels.Layout {
	lay := &levels.Layout{
		Name:  name,
		TileW: l.cfg.TileW,
		TileH: l.cfg.TileH,
		Rows:  make([]string, l.cfg.Height),
	}
	row := make([]byte, l.cfg.Width)
	for y := 0; y < l.cfg.Height; y++ {
		for x := 0; x < l.cfg.Width; x++ {
			row[x] = levels.CellEmpty
			if l.tiles[y*l.cfg.Width+x].Type.Solid() {
				row[x] = levels.CellSolid
			}
		}
		lay.Rows[y] = string(row)
	}
	return lay
}
