package level

import (
	"github.com/milk9111/burrow/common"
	"github.com/milk9111/burrow/nav"
)

type TileType uint8

const (
	TileEmpty TileType = iota
	TileSolid
)

func (t TileType) Solid() bool { return t == TileSolid }

func (t TileType) String() string {
	if t == TileSolid {
		return "solid"
	}
	return "empty"
}

// WallMask marks the sides of a solid tile that face open space.
type WallMask uint8

const (
	WallTop WallMask = 1 << iota
	WallRight
	WallBottom
	WallLeft

	WallNone WallMask = 0
	WallAll           = WallTop | WallRight | WallBottom | WallLeft
)

// Direction indexes Tile.Neighbours, clockwise from Up.
type Direction int

const (
	DirUp Direction = iota
	DirUpRight
	DirRight
	DirDownRight
	DirDown
	DirDownLeft
	DirLeft
	DirUpLeft
	dirCount
)

var dirOffsets = [dirCount][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

func (d Direction) Offset() (dx, dy int) { return dirOffsets[d][0], dirOffsets[d][1] }

func (d Direction) Diagonal() bool { return d%2 == 1 }

// Sides returns the two orthogonal directions a diagonal step squeezes
// between.
func (d Direction) Sides() (Direction, Direction) {
	return d - 1, (d + 1) % dirCount
}

var sideWalls = [...]struct {
	dir  Direction
	wall WallMask
	bit  uint8
}{
	{DirUp, WallTop, 1},
	{DirRight, WallRight, 2},
	{DirDown, WallBottom, 4},
	{DirLeft, WallLeft, 8},
}

// DebugFlags record what the last collision pass did with a tile.
type DebugFlags uint8

const (
	DebugChecked DebugFlags = 1 << iota
	DebugCollided
)

// Tile is one grid cell. Neighbours holds tile indices (-1 off the grid).
type Tile struct {
	X, Y       int
	Type       TileType
	Walls      WallMask
	Rect       common.Rect
	Neighbours [dirCount]int
	Node       nav.NodeID

	// Appearance is a 4-bit mask of solid or off-grid orthogonal
	// neighbours (up=1, right=2, down=4, left=8). Empty tiles use -1.
	Appearance int
	Debug      DebugFlags
}

func (t *Tile) HasWall(w WallMask) bool { return t.Walls&w != 0 }
