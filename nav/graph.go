package nav

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
)

// ErrInvariant is wrapped by every panic raised for graph or planner misuse.
var ErrInvariant = errors.New("nav: invariant violated")

// NodeID indexes a node in a Graph arena.
type NodeID int32

// NoNode is the zero value for "no node".
const NoNode NodeID = -1

// Edge is an outbound link with its traversal cost.
type Edge struct {
	To   NodeID
	Cost float64
}

// GraphNode is a positioned waypoint. Data carries the domain reference
// (a tile index for level graphs).
type GraphNode struct {
	Pos   cp.Vector
	Data  int
	Edges []Edge

	temporary bool
	enabled   bool
	live      bool
}

// Temporary reports whether the node is a one-way query endpoint.
func (n *GraphNode) Temporary() bool { return n != nil && n.temporary }

// Enabled reports whether the node can currently be searched through.
func (n *GraphNode) Enabled() bool { return n != nil && n.live && n.enabled }

// Graph stores nodes in a flat arena; neighbour references are indices so
// cycles between nodes never own each other. Freed temporary slots are reused.
type Graph struct {
	nodes []GraphNode
	free  []NodeID
	temps int
}

func NewGraph(capacity int) *Graph {
	if capacity < 0 {
		capacity = 0
	}
	return &Graph{nodes: make([]GraphNode, 0, capacity)}
}

// Len returns the arena size including freed slots.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// TemporaryCount returns the number of live temporary nodes.
func (g *Graph) TemporaryCount() int {
	if g == nil {
		return 0
	}
	return g.temps
}

// Add creates an enabled permanent node.
func (g *Graph) Add(pos cp.Vector, data int) NodeID {
	return g.alloc(GraphNode{Pos: pos, Data: data, enabled: true, live: true})
}

// AddTemporary creates a one-way node with outbound edges to every enabled
// target. No edge into the new node is ever created, so other searches can
// not reach it.
func (g *Graph) AddTemporary(pos cp.Vector, data int, targets []NodeID) NodeID {
	id := g.alloc(GraphNode{Pos: pos, Data: data, temporary: true, enabled: true, live: true})
	n := &g.nodes[id]
	for _, t := range targets {
		if !g.Enabled(t) || t == id || g.nodes[t].temporary {
			continue
		}
		if hasEdge(n.Edges, t) {
			continue
		}
		n.Edges = append(n.Edges, Edge{To: t, Cost: pos.Distance(g.nodes[t].Pos)})
	}
	g.temps++
	return id
}

func (g *Graph) alloc(n GraphNode) NodeID {
	if len(g.free) > 0 {
		id := g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
		g.nodes[id] = n
		return id
	}
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// Remove frees a temporary node. Removing a permanent node is a programming
// error; permanent nodes are disabled instead.
func (g *Graph) Remove(id NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	if !n.temporary {
		panic(fmt.Errorf("%w: remove of permanent node %d", ErrInvariant, id))
	}
	g.nodes[id] = GraphNode{}
	g.free = append(g.free, id)
	g.temps--
}

// Node returns the live node for id or nil.
func (g *Graph) Node(id NodeID) *GraphNode {
	if g == nil || id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	n := &g.nodes[id]
	if !n.live {
		return nil
	}
	return n
}

// Valid reports whether id refers to a live node.
func (g *Graph) Valid(id NodeID) bool {
	return g.Node(id) != nil
}

// Enabled reports whether id is live and enabled.
func (g *Graph) Enabled(id NodeID) bool {
	return g.Node(id).Enabled()
}

// Neighbours returns the outbound edges of id.
func (g *Graph) Neighbours(id NodeID) []Edge {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	return n.Edges
}

// Link joins two permanent nodes with symmetric edges. Linking an existing
// pair is a no-op.
func (g *Graph) Link(a, b NodeID) {
	na, nb := g.Node(a), g.Node(b)
	if na == nil || nb == nil {
		panic(fmt.Errorf("%w: link %d-%d references a dead node", ErrInvariant, a, b))
	}
	if na.temporary || nb.temporary {
		panic(fmt.Errorf("%w: link %d-%d touches a temporary node", ErrInvariant, a, b))
	}
	if a == b {
		return
	}
	cost := na.Pos.Distance(nb.Pos)
	if !hasEdge(na.Edges, b) {
		na.Edges = append(na.Edges, Edge{To: b, Cost: cost})
	}
	if !hasEdge(nb.Edges, a) {
		nb.Edges = append(nb.Edges, Edge{To: a, Cost: cost})
	}
}

// Unlink removes the edges between a and b in both directions.
func (g *Graph) Unlink(a, b NodeID) {
	if na := g.Node(a); na != nil {
		na.Edges = dropEdge(na.Edges, b)
	}
	if nb := g.Node(b); nb != nil {
		nb.Edges = dropEdge(nb.Edges, a)
	}
}

// Linked reports whether a has an edge to b.
func (g *Graph) Linked(a, b NodeID) bool {
	n := g.Node(a)
	return n != nil && hasEdge(n.Edges, b)
}

// Disable cuts every edge of a permanent node and removes it from search.
func (g *Graph) Disable(id NodeID) {
	n := g.Node(id)
	if n == nil || !n.enabled {
		return
	}
	for _, e := range n.Edges {
		if other := g.Node(e.To); other != nil {
			other.Edges = dropEdge(other.Edges, id)
		}
	}
	n.Edges = nil
	n.enabled = false
}

// Enable makes a disabled node searchable again. Callers re-link it.
func (g *Graph) Enable(id NodeID) {
	if n := g.Node(id); n != nil {
		n.enabled = true
	}
}

// Move repositions a disabled permanent node.
func (g *Graph) Move(id NodeID, pos cp.Vector, data int) {
	n := g.Node(id)
	if n == nil {
		return
	}
	if n.enabled {
		panic(fmt.Errorf("%w: move of enabled node %d", ErrInvariant, id))
	}
	n.Pos = pos
	n.Data = data
}

// Distance is the Euclidean distance between two live nodes.
func (g *Graph) Distance(a, b NodeID) float64 {
	na, nb := g.Node(a), g.Node(b)
	if na == nil || nb == nil {
		return 0
	}
	return na.Pos.Distance(nb.Pos)
}

func hasEdge(edges []Edge, to NodeID) bool {
	for _, e := range edges {
		if e.To == to {
			return true
		}
	}
	return false
}

func dropEdge(edges []Edge, to NodeID) []Edge {
	for i, e := range edges {
		if e.To == to {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
