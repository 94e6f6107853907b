package component

import "image/color"

// Tint is the color renderers draw an entity with.
type Tint struct {
	Color color.Color
}

var TintComponent = NewComponent[Tint]()
