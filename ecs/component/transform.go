package component

import "github.com/jakecoffman/cp"

// Transform is an entity's root position in world pixels.
type Transform struct {
	X float64
	Y float64
}

func (t *Transform) Pos() cp.Vector { return cp.Vector{X: t.X, Y: t.Y} }

func (t *Transform) SetPos(v cp.Vector) { t.X, t.Y = v.X, v.Y }

var TransformComponent = NewComponent[Transform]()
