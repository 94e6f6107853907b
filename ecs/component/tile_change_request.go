package component

import "github.com/milk9111/burrow/level"

// TileChangeRequest asks TileEditSystem to set the tile under X,Y. The
// request entity is destroyed once applied.
type TileChangeRequest struct {
	X, Y float64
	Type level.TileType
}

var TileChangeRequestComponent = NewComponent[TileChangeRequest]()
