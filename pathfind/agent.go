// Package pathfind coordinates a coarse planner on a level's navmesh with a
// fine planner on its tile graph.
package pathfind

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/burrow/level"
	"github.com/milk9111/burrow/nav"
)

type Mode int

const (
	// ModeHierarchical plans waypoint to waypoint on the navmesh and lets
	// the tile planner chase the next unreached waypoint.
	ModeHierarchical Mode = iota
	// ModeTileOnly plans straight to the destination on the tile graph.
	ModeTileOnly
)

func (m Mode) String() string {
	if m == ModeTileOnly {
		return "tile_only"
	}
	return "hierarchical"
}

type Config struct {
	Mode         Mode
	CoarseBudget int
	FineBudget   int
	Rank         nav.BestRank

	// TrackSource re-resolves the source from the position passed to
	// Update every frame.
	TrackSource bool
}

// Failure describes why the agent cannot make progress. Coarse is set
// when the navmesh layer failed.
type Failure struct {
	Reason nav.FailReason
	Coarse bool
}

type Result struct {
	Coarse  nav.Status
	Fine    nav.Status
	Failure *Failure
}

// Agent owns the planners and temporary nodes for one mover.
type Agent struct {
	cfg    Config
	level  *level.Level
	coarse *nav.Planner
	fine   *nav.Planner

	srcPos    cp.Vector
	src       level.Endpoint
	coarseSrc level.Endpoint

	destPos    cp.Vector
	hasDest    bool
	dst        level.Endpoint
	coarseDst  level.Endpoint
	fineTarget nav.NodeID
	invalid    *Failure
}

func NewAgent(l *level.Level, cfg Config) *Agent {
	a := &Agent{
		cfg:        cfg,
		level:      l,
		src:        level.NoEndpoint,
		coarseSrc:  level.NoEndpoint,
		dst:        level.NoEndpoint,
		coarseDst:  level.NoEndpoint,
		fineTarget: nav.NoNode,
	}
	a.fine = nav.NewPlanner(l.Graph())
	a.fine.Budget = cfg.FineBudget
	a.fine.Rank = cfg.Rank
	if cfg.Mode == ModeHierarchical {
		a.coarse = nav.NewPlanner(l.Mesh().Graph())
		a.coarse.Budget = cfg.CoarseBudget
		a.coarse.Rank = cfg.Rank
	}
	return a
}

func (a *Agent) Mode() Mode { return a.cfg.Mode }

// Coarse returns the navmesh planner, nil in tile-only mode.
func (a *Agent) Coarse() *nav.Planner { return a.coarse }

func (a *Agent) Fine() *nav.Planner { return a.fine }

func (a *Agent) TrackSource(track bool) { a.cfg.TrackSource = track }

func (a *Agent) Destination() (cp.Vector, bool) { return a.destPos, a.hasDest }

// SetSource moves the search start to pos. Moving within the same tile is
// a no-op unless the tile changed type underneath the source.
func (a *Agent) SetSource(pos cp.Vector) {
	tile := a.level.TileIndex(a.level.TileAtPosition(pos))
	if a.src.Valid() && tile == a.src.Tile && !a.sourceStale() {
		return
	}
	a.releaseSource()
	a.srcPos = pos

	a.src = a.level.ResolveSource(level.LayerTiles, pos)
	a.fine.SetSource(a.src.Node)
	if a.coarse != nil {
		a.coarseSrc = a.level.ResolveSource(level.LayerMesh, pos)
		a.coarse.SetSource(a.coarseSrc.Node)
	}
}

func (a *Agent) sourceStale() bool {
	t := a.level.TileByIndex(a.src.Tile)
	return t == nil || t.Type.Solid() != a.src.Temporary
}

// SetDestination points the agent at pos. It reports whether the
// destination changed; a position in the current destination tile is
// ignored. Solid or off-grid positions are rejected and reported as an
// invalid destination by Update until the destination changes.
func (a *Agent) SetDestination(pos cp.Vector) bool {
	t := a.level.TileAtPosition(pos)
	tile := a.level.TileIndex(t)
	if a.hasDest && tile == a.dst.Tile {
		return false
	}
	a.ClearDestination()
	a.destPos = pos
	a.hasDest = true

	if t == nil || t.Type.Solid() {
		a.dst = level.Endpoint{Layer: level.LayerTiles, Node: nav.NoNode, Tile: tile}
		a.invalid = &Failure{Reason: nav.FailInvalidDestination, Coarse: a.coarse != nil}
		return true
	}

	a.dst = a.level.ResolveDestination(level.LayerTiles, pos)
	if a.coarse == nil {
		a.fine.SetDestination(a.dst.Node)
		a.fineTarget = a.dst.Node
		return true
	}
	a.coarseDst = a.level.ResolveDestination(level.LayerMesh, pos)
	a.coarse.SetDestination(a.coarseDst.Node)
	return true
}

// Goto sets both endpoints.
func (a *Agent) Goto(from, to cp.Vector) bool {
	a.SetSource(from)
	return a.SetDestination(to)
}

// ExtendDestination moves the destination while keeping the search
// already done from the current source.
func (a *Agent) ExtendDestination(pos cp.Vector) {
	t := a.level.TileAtPosition(pos)
	if !a.hasDest || a.invalid != nil || t == nil || t.Type.Solid() {
		a.SetDestination(pos)
		return
	}
	tile := a.level.TileIndex(t)
	if tile == a.dst.Tile {
		return
	}
	a.destPos = pos
	a.dst = a.level.ResolveDestination(level.LayerTiles, pos)
	if a.coarse == nil {
		a.fine.ExtendDestination(a.dst.Node)
		a.fineTarget = a.dst.Node
		return
	}

	old := a.coarseDst
	a.coarseDst = a.level.ResolveDestination(level.LayerMesh, pos)
	a.coarse.ExtendDestination(a.coarseDst.Node)
	a.release(a.coarse, old)
}

// ClearDestination stops searching and frees the destination nodes.
func (a *Agent) ClearDestination() {
	if a.coarse != nil {
		a.release(a.coarse, a.coarseDst)
		a.coarse.ClearDestination()
	}
	a.fine.ClearDestination()
	a.coarseDst = level.NoEndpoint
	a.dst = level.NoEndpoint
	a.fineTarget = nav.NoNode
	a.hasDest = false
	a.invalid = nil
}

// Invalidate re-resolves both endpoints from pos after the level changed.
func (a *Agent) Invalidate(pos cp.Vector) {
	dest, had := a.destPos, a.hasDest
	a.ClearDestination()
	a.releaseSource()
	a.SetSource(pos)
	if had {
		a.SetDestination(dest)
	}
}

// Update advances both planners by one budget slice. pos is the mover's
// current position.
func (a *Agent) Update(pos cp.Vector) Result {
	if a.cfg.TrackSource || (a.src.Valid() && a.sourceStale()) {
		a.SetSource(pos)
	}

	var res Result
	if a.coarse != nil {
		a.markCoarseProgress(pos)
		res.Coarse = a.coarse.PlanPath()
		if res.Coarse == nav.StatusFailed && a.coarse.FailReason() == nav.FailInvalidDestination {
			a.fine.ClearDestination()
			a.fineTarget = nav.NoNode
		} else {
			a.retarget()
		}
	}
	res.Fine = a.fine.PlanPath()

	switch {
	case a.invalid != nil:
		f := *a.invalid
		res.Failure = &f
	case a.coarse != nil && res.Coarse == nav.StatusFailed:
		res.Failure = &Failure{Reason: a.coarse.FailReason(), Coarse: true}
	case res.Fine == nav.StatusFailed:
		res.Failure = &Failure{Reason: a.fine.FailReason()}
	}
	return res
}

func (a *Agent) markCoarseProgress(pos cp.Vector) {
	tile := a.level.TileIndex(a.level.TileAtPosition(pos))
	wp := a.coarse.CurrentBest().NextUnreached()
	if wp == nil || wp.Reached || tile < 0 {
		return
	}
	if n := a.level.Mesh().Graph().Node(wp.Node); n != nil && n.Data == tile {
		wp.Reached = true
	}
}

// coarseTarget returns the tile the fine planner should head for, or -1.
func (a *Agent) coarseTarget() int {
	best := a.coarse.CurrentBest()
	if best == nil {
		return -1
	}
	wp := best.NextUnreached()
	if wp.Node == a.coarse.Source() {
		if a.coarse.Status() == nav.StatusSolved {
			return a.dst.Tile
		}
		return -1
	}
	if wp.Node == a.coarse.Destination() {
		return a.dst.Tile
	}
	n := a.level.Mesh().Graph().Node(wp.Node)
	if n == nil {
		return -1
	}
	return n.Data
}

func (a *Agent) retarget() {
	tile := a.coarseTarget()
	if tile < 0 {
		return
	}
	node := a.level.TileNode(tile)
	if node == a.fineTarget {
		return
	}
	if a.fineTarget == nav.NoNode {
		a.fine.SetDestination(node)
	} else {
		a.fine.ExtendDestination(node)
	}
	a.fineTarget = node
}

// CurrentBest is the fine planner's best node when it has a target and the
// coarse planner's otherwise.
func (a *Agent) CurrentBest() *nav.PathNode {
	if a.fine.Destination() != nav.NoNode || a.coarse == nil {
		return a.fine.CurrentBest()
	}
	return a.coarse.CurrentBest()
}

// Next is the first fine path node the mover has not reached yet, or nil
// when there is nothing to move toward.
func (a *Agent) Next() *nav.PathNode {
	if a.fine.Destination() == nav.NoNode {
		return nil
	}
	n := a.fine.CurrentBest().NextUnreached()
	if n == nil || n.Reached {
		return nil
	}
	return n
}

func (a *Agent) MarkReached(n *nav.PathNode) {
	if n != nil {
		n.Reached = true
	}
}

// NodePos returns the world position of a fine path node.
func (a *Agent) NodePos(n *nav.PathNode) (cp.Vector, bool) {
	gn := a.level.Graph().Node(n.Node)
	if gn == nil {
		return cp.Vector{}, false
	}
	return gn.Pos, true
}

// AtDestination reports whether the mover has reached the final tile.
func (a *Agent) AtDestination() bool {
	if !a.hasDest || a.invalid != nil || a.fine.Status() != nav.StatusSolved {
		return false
	}
	if a.fine.Destination() != a.dst.Node {
		return false
	}
	best := a.fine.CurrentBest()
	return best != nil && best.Reached
}

// Release frees every temporary node the agent holds.
func (a *Agent) Release() {
	a.ClearDestination()
	a.releaseSource()
}

func (a *Agent) releaseSource() {
	a.release(a.fine, a.src)
	a.src = level.NoEndpoint
	if a.coarse != nil {
		a.release(a.coarse, a.coarseSrc)
		a.coarseSrc = level.NoEndpoint
	}
}

// release drops p's bookkeeping for e before the node leaves the graph.
func (a *Agent) release(p *nav.Planner, e level.Endpoint) {
	if !e.Temporary {
		return
	}
	p.Forget(e.Node)
	a.level.Release(e)
}
