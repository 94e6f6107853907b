package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/common"
	"github.com/milk9111/burrow/level"
)

// TileCollider is an axis-aligned box swept against level walls. RootX and
// RootY offset the box centre from the Transform.
type TileCollider struct {
	HalfW, HalfH float64
	RootX, RootY float64

	// PrevX and PrevY hold the transform recorded before this tick's
	// movement.
	PrevX, PrevY float64
	Recorded     bool

	// Last is the most recent collision result, for debug drawing.
	Last level.Collision
}

// Rect returns the collider box for a transform position.
func (c *TileCollider) Rect(x, y float64) common.Rect {
	return common.Rect{Center: cp.Vector{X: x + c.RootX, Y: y + c.RootY}, HalfW: c.HalfW, HalfH: c.HalfH}
}

var TileColliderComponent = NewComponent[TileCollider]()
