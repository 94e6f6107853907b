package level

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/nav"
)

// MeshConfig shapes the coarse waypoint layer. One waypoint is placed per
// Stride x Stride block of tiles; waypoints within LinkRadius tiles of each
// other are linked when they can see each other.
type MeshConfig struct {
	Stride     int `yaml:"stride"`
	LinkRadius int `yaml:"link_radius"`
}

// Mesh is the coarse navigation layer over a Level. Node Data holds the
// tile index the waypoint sits on.
type Mesh struct {
	level  *Level
	graph  *nav.Graph
	cfg    MeshConfig
	bw, bh int

	blocks []nav.NodeID
	byTile map[int]nav.NodeID
}

func newMesh(l *Level, cfg MeshConfig) *Mesh {
	m := &Mesh{
		level:  l,
		cfg:    cfg,
		bw:     (l.cfg.Width + cfg.Stride - 1) / cfg.Stride,
		bh:     (l.cfg.Height + cfg.Stride - 1) / cfg.Stride,
		byTile: make(map[int]nav.NodeID),
	}
	m.graph = nav.NewGraph(m.bw*m.bh + 8)
	m.blocks = make([]nav.NodeID, m.bw*m.bh)
	for b := range m.blocks {
		tile := m.pickTile(b, -1)
		pos := cp.Vector{}
		if tile >= 0 {
			pos = l.tiles[tile].Rect.Center
		}
		id := m.graph.Add(pos, tile)
		m.blocks[b] = id
		if tile < 0 {
			m.graph.Disable(id)
			continue
		}
		m.byTile[tile] = id
	}
	for b := range m.blocks {
		m.relinkBlock(b)
	}
	return m
}

func (m *Mesh) Graph() *nav.Graph { return m.graph }

func (m *Mesh) Config() MeshConfig { return m.cfg }

// WaypointAt returns the waypoint sitting on tile i.
func (m *Mesh) WaypointAt(i int) (nav.NodeID, bool) {
	id, ok := m.byTile[i]
	return id, ok
}

// Waypoints returns every enabled waypoint.
func (m *Mesh) Waypoints() []nav.NodeID {
	out := make([]nav.NodeID, 0, len(m.blocks))
	for _, id := range m.blocks {
		if m.graph.Enabled(id) {
			out = append(out, id)
		}
	}
	return out
}

func (m *Mesh) blockOf(tile int) int {
	t := &m.level.tiles[tile]
	return (t.Y/m.cfg.Stride)*m.bw + t.X/m.cfg.Stride
}

// pickTile keeps keep when it is still open and otherwise chooses the open
// tile nearest the block centre. It returns -1 for a fully solid block.
func (m *Mesh) pickTile(b, keep int) int {
	if keep >= 0 && m.level.traversable(keep) {
		return keep
	}
	s := m.cfg.Stride
	x0, y0 := (b%m.bw)*s, (b/m.bw)*s
	x1, y1 := min(x0+s, m.level.cfg.Width), min(y0+s, m.level.cfg.Height)
	cx, cy := float64(x0+x1-1)/2, float64(y0+y1-1)/2

	best, bestD := -1, math.Inf(1)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := m.level.index(x, y)
			if !m.level.traversable(i) {
				continue
			}
			dx, dy := float64(x)-cx, float64(y)-cy
			if d := dx*dx + dy*dy; d < bestD {
				best, bestD = i, d
			}
		}
	}
	return best
}

func (m *Mesh) blockReach() int {
	return (m.cfg.LinkRadius + m.cfg.Stride - 1) / m.cfg.Stride
}

func (m *Mesh) relinkBlock(b int) {
	id := m.blocks[b]
	if !m.graph.Enabled(id) {
		return
	}
	from := m.graph.Node(id).Data
	bx, by := b%m.bw, b/m.bw
	r := m.blockReach()
	for oy := by - r; oy <= by+r; oy++ {
		for ox := bx - r; ox <= bx+r; ox++ {
			if ox < 0 || oy < 0 || ox >= m.bw || oy >= m.bh {
				continue
			}
			other := m.blocks[oy*m.bw+ox]
			if other == id || !m.graph.Enabled(other) {
				continue
			}
			to := m.graph.Node(other).Data
			if m.withinReach(from, to) && m.level.LineOfSight(from, to) {
				m.graph.Link(id, other)
			} else {
				m.graph.Unlink(id, other)
			}
		}
	}
}

func (m *Mesh) withinReach(a, b int) bool {
	ta, tb := &m.level.tiles[a], &m.level.tiles[b]
	return max(abs(ta.X-tb.X), abs(ta.Y-tb.Y)) <= m.cfg.LinkRadius
}

// refresh patches the mesh after tile i changed. The block's waypoint is
// moved if its tile closed, and links that could cross the tile are
// rechecked.
func (m *Mesh) refresh(i int) {
	b := m.blockOf(i)
	id := m.blocks[b]
	n := m.graph.Node(id)
	cur := n.Data
	next := m.pickTile(b, cur)
	if next != cur || !m.graph.Enabled(id) {
		m.graph.Disable(id)
		delete(m.byTile, cur)
		if next >= 0 {
			m.graph.Move(id, m.level.tiles[next].Rect.Center, next)
			m.graph.Enable(id)
			m.byTile[next] = id
		} else {
			m.graph.Move(id, n.Pos, -1)
		}
	}

	bx, by := b%m.bw, b/m.bw
	r := m.blockReach() + 1
	for oy := by - r; oy <= by+r; oy++ {
		for ox := bx - r; ox <= bx+r; ox++ {
			if ox < 0 || oy < 0 || ox >= m.bw || oy >= m.bh {
				continue
			}
			m.relinkBlock(oy*m.bw + ox)
		}
	}
}

// visibleFrom lists enabled waypoints within link radius of tile i that
// have line of sight to it, nearest first.
func (m *Mesh) visibleFrom(i int) []nav.NodeID {
	type cand struct {
		id nav.NodeID
		d  float64
	}
	var cands []cand
	pos := m.level.tiles[i].Rect.Center
	for _, id := range m.blocks {
		if !m.graph.Enabled(id) {
			continue
		}
		n := m.graph.Node(id)
		if !m.withinReach(i, n.Data) || !m.level.LineOfSight(i, n.Data) {
			continue
		}
		cands = append(cands, cand{id, pos.Distance(n.Pos)})
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].d < cands[b].d })
	out := make([]nav.NodeID, len(cands))
	for k, c := range cands {
		out[k] = c.id
	}
	return out
}

// nearestWaypoint returns the closest enabled waypoint to pos, ignoring
// sight lines.
func (m *Mesh) nearestWaypoint(pos cp.Vector) nav.NodeID {
	best, bestD := nav.NoNode, math.Inf(1)
	for _, id := range m.blocks {
		if !m.graph.Enabled(id) {
			continue
		}
		if d := pos.Distance(m.graph.Node(id).Pos); d < bestD {
			best, bestD = id, d
		}
	}
	return best
}

// LineOfSight walks a Bresenham line between two tiles. Every tile after
// the first must be open and diagonal steps may not squeeze between two
// solids.
func (l *Level) LineOfSight(from, to int) bool {
	a, b := &l.tiles[from], &l.tiles[to]
	x, y := a.X, a.Y
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	for x != b.X || y != b.Y {
		px, py := x, y
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
		if !l.traversable(l.index(x, y)) {
			return false
		}
		if x != px && y != py {
			if !l.traversable(l.index(x, py)) || !l.traversable(l.index(px, y)) {
				return false
			}
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
