package level

import "github.com/milk9111/burrow/nav"

func (l *Level) buildTileGraph() {
	l.graph = nav.NewGraph(len(l.tiles) + 8)
	for i := range l.tiles {
		t := &l.tiles[i]
		t.Node = l.graph.Add(t.Rect.Center, i)
		if t.Type.Solid() {
			l.graph.Disable(t.Node)
		}
	}
	for i := range l.tiles {
		l.relinkTile(i)
	}
}

// canStep reports whether a mover may go from tile i to its neighbour in
// direction d. Diagonal steps need both flanking tiles open.
func (l *Level) canStep(i int, d Direction) bool {
	t := &l.tiles[i]
	n := t.Neighbours[d]
	if !l.traversable(i) || !l.traversable(n) {
		return false
	}
	if d.Diagonal() {
		a, b := d.Sides()
		return l.traversable(t.Neighbours[a]) && l.traversable(t.Neighbours[b])
	}
	return true
}

func (l *Level) relinkTile(i int) {
	t := &l.tiles[i]
	for d := Direction(0); d < dirCount; d++ {
		n := t.Neighbours[d]
		if n < 0 {
			continue
		}
		if l.canStep(i, d) {
			l.graph.Link(t.Node, l.tiles[n].Node)
		} else {
			l.graph.Unlink(t.Node, l.tiles[n].Node)
		}
	}
}

// patchTileGraph toggles tile i's node and relinks its 3x3 neighbourhood,
// which covers every diagonal the tile flanks.
func (l *Level) patchTileGraph(i int) {
	t := &l.tiles[i]
	if t.Type.Solid() {
		l.graph.Disable(t.Node)
	} else {
		l.graph.Enable(t.Node)
	}
	l.relinkTile(i)
	for _, n := range t.Neighbours {
		if n >= 0 {
			l.relinkTile(n)
		}
	}
}

// openNeighbours lists the tile nodes a mover standing in tile i could step
// to, ignoring whether tile i itself is open.
func (l *Level) openNeighbours(i int) []nav.NodeID {
	t := &l.tiles[i]
	out := make([]nav.NodeID, 0, dirCount)
	for d := Direction(0); d < dirCount; d++ {
		n := t.Neighbours[d]
		if !l.traversable(n) {
			continue
		}
		if d.Diagonal() {
			a, b := d.Sides()
			if !l.traversable(t.Neighbours[a]) || !l.traversable(t.Neighbours[b]) {
				continue
			}
		}
		out = append(out, l.tiles[n].Node)
	}
	return out
}
