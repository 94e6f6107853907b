package level

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/common"
)

// Collision is the result of sweeping a rectangle against tile walls.
// PointX and PointY are the wall coordinates that stopped each axis.
type Collision struct {
	Collided bool
	X, Y     bool
	PointX   float64
	PointY   float64
	DirX     int
	DirY     int
}

// CheckCollision sweeps the centre of original toward desired and reports
// the nearest wall crossed on each axis. Only walls facing the direction
// of travel are tested, so a mover already inside a solid can leave it.
// Each wall is pushed out by the mover's half extents. A crossing at the
// very end of the pushed-out span only counts when the mover is also
// heading into the span, so sliding along a flush surface does not catch
// on the next tile's corner.
func (l *Level) CheckCollision(original, desired common.Rect) Collision {
	var c Collision
	delta := desired.Center.Sub(original.Center)
	c.DirX, c.DirY = common.Sign(delta.X), common.Sign(delta.Y)
	if c.DirX == 0 && c.DirY == 0 {
		return c
	}

	cx := common.FloorDiv(desired.Center.X, l.cfg.TileW)
	cy := common.FloorDiv(desired.Center.Y, l.cfg.TileH)
	r := l.cfg.CollisionRadius

	bestX, bestY := math.Inf(1), math.Inf(1)
	hitX, hitY := -1, -1
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			i := l.index(x, y)
			if i < 0 {
				continue
			}
			t := &l.tiles[i]
			if t.Walls == WallNone {
				continue
			}
			l.markDebug(i, DebugChecked)

			if c.DirX != 0 {
				wall := WallLeft
				if c.DirX < 0 {
					wall = WallRight
				}
				if at, edge, ok := crossWall(t, wall, original.Center, desired, c.DirY); ok && at < bestX {
					bestX, hitX = at, i
					c.X, c.PointX = true, edge
				}
			}
			if c.DirY != 0 {
				wall := WallTop
				if c.DirY < 0 {
					wall = WallBottom
				}
				if at, edge, ok := crossWall(t, wall, original.Center, desired, c.DirX); ok && at < bestY {
					bestY, hitY = at, i
					c.Y, c.PointY = true, edge
				}
			}
		}
	}

	if hitX >= 0 {
		l.markDebug(hitX, DebugCollided)
	}
	if hitY >= 0 {
		l.markDebug(hitY, DebugCollided)
	}
	c.Collided = c.X || c.Y
	return c
}

// crossWall tests the movement from start to desired.Center against one
// wall of t. It returns the sweep parameter and the unexpanded wall
// coordinate. along is the direction of travel parallel to the wall.
func crossWall(t *Tile, wall WallMask, start cp.Vector, desired common.Rect, along int) (float64, float64, bool) {
	if !t.HasWall(wall) {
		return 0, 0, false
	}
	hw, hh := desired.HalfW, desired.HalfH
	var a, b cp.Vector
	var edge float64
	switch wall {
	case WallLeft:
		edge = t.Rect.Left()
		a = cp.Vector{X: edge - hw, Y: t.Rect.Top() - hh}
		b = cp.Vector{X: edge - hw, Y: t.Rect.Bottom() + hh}
	case WallRight:
		edge = t.Rect.Right()
		a = cp.Vector{X: edge + hw, Y: t.Rect.Top() - hh}
		b = cp.Vector{X: edge + hw, Y: t.Rect.Bottom() + hh}
	case WallTop:
		edge = t.Rect.Top()
		a = cp.Vector{X: t.Rect.Left() - hw, Y: edge - hh}
		b = cp.Vector{X: t.Rect.Right() + hw, Y: edge - hh}
	case WallBottom:
		edge = t.Rect.Bottom()
		a = cp.Vector{X: t.Rect.Left() - hw, Y: edge + hh}
		b = cp.Vector{X: t.Rect.Right() + hw, Y: edge + hh}
	default:
		return 0, 0, false
	}

	at, u, ok := common.SegmentIntersection(start, desired.Center, a, b)
	if !ok {
		return 0, 0, false
	}
	// a and b are ordered low to high, so u near 0 is entered moving +1.
	if u <= common.Epsilon && along <= 0 {
		return 0, 0, false
	}
	if u >= 1-common.Epsilon && along >= 0 {
		return 0, 0, false
	}
	return at, edge, true
}

// SnapX returns the collider root X that puts its side flush with the wall
// recorded in c. rootX is the collider centre's offset from the root.
func (c Collision) SnapX(halfW, rootX float64) float64 {
	if c.DirX > 0 {
		return c.PointX - halfW - rootX
	}
	return c.PointX + halfW - rootX
}

// SnapY is SnapX for the vertical axis.
func (c Collision) SnapY(halfH, rootY float64) float64 {
	if c.DirY > 0 {
		return c.PointY - halfH - rootY
	}
	return c.PointY + halfH - rootY
}
