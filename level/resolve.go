package level

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/nav"
)

// Layer selects which navigation graph an endpoint is resolved on.
type Layer int

const (
	LayerTiles Layer = iota
	LayerMesh
)

func (l Layer) String() string {
	if l == LayerMesh {
		return "mesh"
	}
	return "tiles"
}

// Endpoint is a world position bound to a node of one layer. Temporary
// endpoints own a one-way node that must be released.
type Endpoint struct {
	Layer     Layer
	Node      nav.NodeID
	Tile      int
	Temporary bool
}

// NoEndpoint is returned when a position cannot be placed on a layer.
var NoEndpoint = Endpoint{Node: nav.NoNode, Tile: -1}

func (e Endpoint) Valid() bool { return e.Node != nav.NoNode }

func (l *Level) LayerGraph(layer Layer) *nav.Graph {
	if layer == LayerMesh {
		return l.mesh.graph
	}
	return l.graph
}

// ResolveSource binds a start position. A mover standing inside a solid
// tile gets a temporary node that can only leave it.
func (l *Level) ResolveSource(layer Layer, pos cp.Vector) Endpoint {
	t := l.TileAtPosition(pos)
	if t == nil {
		return NoEndpoint
	}
	i := l.index(t.X, t.Y)
	if layer == LayerMesh {
		return l.resolveMesh(i, pos)
	}
	if !t.Type.Solid() {
		return Endpoint{Layer: LayerTiles, Node: t.Node, Tile: i}
	}
	id := l.graph.AddTemporary(pos, i, l.openNeighbours(i))
	return Endpoint{Layer: LayerTiles, Node: id, Tile: i, Temporary: true}
}

// ResolveDestination binds a goal position. On the tile layer a solid goal
// resolves to its disabled node so planners report it as invalid.
func (l *Level) ResolveDestination(layer Layer, pos cp.Vector) Endpoint {
	t := l.TileAtPosition(pos)
	if t == nil {
		return NoEndpoint
	}
	i := l.index(t.X, t.Y)
	if layer == LayerMesh {
		if t.Type.Solid() {
			return NoEndpoint
		}
		return l.resolveMesh(i, pos)
	}
	return Endpoint{Layer: LayerTiles, Node: t.Node, Tile: i}
}

func (l *Level) resolveMesh(i int, pos cp.Vector) Endpoint {
	m := l.mesh
	if id, ok := m.byTile[i]; ok {
		return Endpoint{Layer: LayerMesh, Node: id, Tile: i}
	}
	targets := m.visibleFrom(i)
	if len(targets) == 0 {
		if id := m.nearestWaypoint(pos); id != nav.NoNode {
			targets = append(targets, id)
		}
	}
	id := m.graph.AddTemporary(pos, i, targets)
	return Endpoint{Layer: LayerMesh, Node: id, Tile: i, Temporary: true}
}

// Release frees a temporary endpoint's node.
func (l *Level) Release(e Endpoint) {
	if !e.Temporary || e.Node == nav.NoNode {
		return
	}
	l.LayerGraph(e.Layer).Remove(e.Node)
}

// TileNode returns the tile-layer node for a tile index.
func (l *Level) TileNode(i int) nav.NodeID {
	if t := l.TileByIndex(i); t != nil {
		return t.Node
	}
	return nav.NoNode
}
