package component

// LevelBounds stores the world-space size of the loaded level. Movement
// keeps transforms inside it.
type LevelBounds struct {
	Width  float64
	Height float64
}

var LevelBoundsComponent = NewComponent[LevelBounds]()
