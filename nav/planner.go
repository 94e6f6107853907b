package nav

import (
	"container/heap"
	"fmt"
)

// Status is the state of a search session.
type Status int

const (
	StatusIdle Status = iota
	StatusSearching
	StatusSolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSearching:
		return "searching"
	case StatusSolved:
		return "solved"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// FailReason explains a StatusFailed result.
type FailReason int

const (
	FailNone FailReason = iota
	// FailUnreachable means the open set ran dry before the destination.
	FailUnreachable
	// FailInvalidDestination means the destination is not a searchable node.
	FailInvalidDestination
)

func (r FailReason) String() string {
	switch r {
	case FailNone:
		return "none"
	case FailUnreachable:
		return "unreachable"
	case FailInvalidDestination:
		return "invalid_destination"
	}
	return fmt.Sprintf("fail(%d)", int(r))
}

// BestRank selects how CurrentBest is ranked among opened nodes.
type BestRank int

const (
	// BestByHeuristic keeps the node with the lowest remaining estimate,
	// ties broken by lower f. This is the node closest to the destination.
	BestByHeuristic BestRank = iota
	// BestByScore keeps the node with the lowest f, ties broken by lower h.
	BestByScore
)

// DefaultBudget is the number of node expansions PlanPath performs when
// Budget is not set.
const DefaultBudget = 64

// Planner is a resumable A* search between two nodes of a Graph. PlanPath
// performs a bounded slice of work per call; open and closed state persist
// between calls until the source or destination changes.
type Planner struct {
	Budget int
	Rank   BestRank

	graph  *Graph
	source NodeID
	dest   NodeID

	nodes   map[NodeID]*PathNode
	touched []*PathNode
	open    openSet
	seq     uint64
	best    *PathNode
	entry   map[NodeID]float64

	status   Status
	reason   FailReason
	expanded int
}

func NewPlanner(g *Graph) *Planner {
	return &Planner{
		graph:  g,
		source: NoNode,
		dest:   NoNode,
		nodes:  make(map[NodeID]*PathNode),
	}
}

func (p *Planner) Graph() *Graph          { return p.graph }
func (p *Planner) Source() NodeID         { return p.source }
func (p *Planner) Destination() NodeID    { return p.dest }
func (p *Planner) Status() Status         { return p.status }
func (p *Planner) FailReason() FailReason { return p.reason }

// CurrentBest is the best node opened so far. It is available mid-search and
// after failure; once solved it is the destination.
func (p *Planner) CurrentBest() *PathNode { return p.best }

// Expanded returns the number of expansions since the last restart.
func (p *Planner) Expanded() int { return p.expanded }

// PathNode returns the bookkeeping for id if the search has touched it.
func (p *Planner) PathNode(id NodeID) *PathNode { return p.nodes[id] }

// SetSource restarts the search from id when it differs from the current
// source.
func (p *Planner) SetSource(id NodeID) {
	if id == p.source {
		return
	}
	p.source = id
	p.restart()
}

// SetDestination restarts the search toward id. It reports whether the
// destination changed; setting the same node twice is a no-op.
func (p *Planner) SetDestination(id NodeID) bool {
	if id == p.dest {
		return false
	}
	p.dest = id
	p.restart()
	return true
}

// ExtendDestination retargets the search to id while keeping every g-value
// and predecessor already computed from the current source. Closed nodes
// stay closed; open nodes are re-keyed against the new destination.
func (p *Planner) ExtendDestination(id NodeID) {
	if id == p.dest {
		return
	}
	if p.source == NoNode || p.dest == NoNode || len(p.touched) == 0 {
		p.SetDestination(id)
		return
	}

	prev := p.nodes[p.dest]
	p.dest = id
	p.reason = FailNone
	p.buildEntry()
	for _, n := range p.touched {
		n.H = p.heuristic(n.Node)
	}

	if !p.graph.Enabled(id) {
		heap.Init(&p.open)
		p.rankAll()
		p.fail(FailInvalidDestination)
		return
	}

	// A permanent old destination was closed without being expanded.
	if prev != nil && prev.Closed && p.graph.Enabled(prev.Node) && !p.graph.Node(prev.Node).Temporary() {
		p.expand(prev)
	}
	// Entry edges of a temporary destination are only followed on
	// expansion, so closed entry nodes must be relaxed here.
	for from, cost := range p.entry {
		n := p.nodes[from]
		if n == nil || !n.Closed {
			continue
		}
		if n.Node != p.source && !p.graph.Enabled(n.Node) {
			continue
		}
		p.relax(n, id, cost)
	}
	heap.Init(&p.open)
	p.rankAll()

	if n := p.nodes[id]; n != nil && n.Closed {
		p.best = n
		p.status = StatusSolved
		return
	}
	if p.open.Len() == 0 {
		p.fail(FailUnreachable)
		return
	}
	p.status = StatusSearching
}

// Restart throws away search state and searches again from the current
// endpoints. Use it after the graph's edges change underneath a search.
func (p *Planner) Restart() {
	p.restart()
}

// ClearDestination drops the destination and all search state. The source
// is kept.
func (p *Planner) ClearDestination() {
	p.dest = NoNode
	p.entry = nil
	p.reset()
	p.status = StatusIdle
	p.reason = FailNone
}

// Forget discards bookkeeping for a node that is about to leave the graph.
// The search restarts if the node is the source or destination.
func (p *Planner) Forget(id NodeID) {
	if id == p.source {
		p.source = NoNode
		p.restart()
		return
	}
	if id == p.dest {
		p.ClearDestination()
		return
	}
	n, ok := p.nodes[id]
	if !ok {
		return
	}
	if n.Open {
		heap.Remove(&p.open, n.index)
		n.Open = false
	}
	for _, t := range p.touched {
		if t.Prev == n {
			// Something was routed through the node; the chain is no
			// longer trustworthy.
			p.restart()
			return
		}
	}
	delete(p.nodes, id)
	for i, t := range p.touched {
		if t == n {
			p.touched = append(p.touched[:i], p.touched[i+1:]...)
			break
		}
	}
	if p.best == n {
		p.rankAll()
	}
}

// PlanPath advances the search by at most Budget expansions.
func (p *Planner) PlanPath() Status {
	if p.status != StatusSearching {
		return p.status
	}
	if !p.graph.Enabled(p.dest) {
		p.fail(FailInvalidDestination)
		return p.status
	}

	budget := p.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	for i := 0; i < budget; i++ {
		if p.open.Len() == 0 {
			p.fail(FailUnreachable)
			return p.status
		}
		cur := heap.Pop(&p.open).(*PathNode)
		cur.Open = false
		cur.Closed = true
		if cur.Node != p.source && !p.graph.Enabled(cur.Node) {
			continue
		}
		if cur.Node == p.dest {
			p.best = cur
			p.status = StatusSolved
			return p.status
		}
		p.expand(cur)
	}
	return p.status
}

func (p *Planner) restart() {
	p.reset()
	p.reason = FailNone
	p.status = StatusIdle
	p.buildEntry()

	if p.source == NoNode {
		return
	}
	if !p.graph.Valid(p.source) {
		panic(fmt.Errorf("%w: source %d is not a live node", ErrInvariant, p.source))
	}

	root := &PathNode{Node: p.source, H: p.heuristic(p.source), Reached: true}
	p.nodes[p.source] = root
	p.touched = append(p.touched, root)
	p.push(root)
	p.best = root

	if p.dest == NoNode {
		return
	}
	if !p.graph.Enabled(p.dest) {
		p.fail(FailInvalidDestination)
		return
	}
	p.status = StatusSearching
}

func (p *Planner) reset() {
	for k := range p.nodes {
		delete(p.nodes, k)
	}
	p.touched = p.touched[:0]
	p.open = p.open[:0]
	p.best = nil
	p.seq = 0
	p.expanded = 0
}

func (p *Planner) fail(reason FailReason) {
	p.status = StatusFailed
	p.reason = reason
}

func (p *Planner) buildEntry() {
	p.entry = nil
	dn := p.graph.Node(p.dest)
	if dn == nil || !dn.temporary {
		return
	}
	p.entry = make(map[NodeID]float64, len(dn.Edges))
	for _, e := range dn.Edges {
		p.entry[e.To] = e.Cost
	}
}

func (p *Planner) expand(cur *PathNode) {
	p.expanded++
	for _, e := range p.graph.Neighbours(cur.Node) {
		p.relax(cur, e.To, e.Cost)
	}
	if cost, ok := p.entry[cur.Node]; ok {
		p.relax(cur, p.dest, cost)
	}
}

func (p *Planner) relax(from *PathNode, to NodeID, cost float64) {
	if !p.graph.Enabled(to) {
		return
	}
	g := from.G + cost
	n := p.nodes[to]
	if n == nil {
		n = &PathNode{Node: to, H: p.heuristic(to), index: -1}
		p.nodes[to] = n
		p.touched = append(p.touched, n)
	} else if n.Closed || g >= n.G {
		return
	}
	n.G = g
	n.Prev = from
	p.seq++
	n.seq = p.seq
	if n.Open {
		heap.Fix(&p.open, n.index)
	} else {
		n.Open = true
		heap.Push(&p.open, n)
	}
	p.rank(n)
}

func (p *Planner) push(n *PathNode) {
	p.seq++
	n.seq = p.seq
	n.Open = true
	heap.Push(&p.open, n)
}

func (p *Planner) rank(n *PathNode) {
	if p.best == nil || p.better(n, p.best) {
		p.best = n
	}
}

func (p *Planner) rankAll() {
	p.best = nil
	for _, n := range p.touched {
		p.rank(n)
	}
}

func (p *Planner) better(a, b *PathNode) bool {
	switch p.Rank {
	case BestByScore:
		if a.F() != b.F() {
			return a.F() < b.F()
		}
		return a.H < b.H
	default:
		if a.H != b.H {
			return a.H < b.H
		}
		return a.F() < b.F()
	}
}

func (p *Planner) heuristic(id NodeID) float64 {
	if p.dest == NoNode {
		return 0
	}
	return p.graph.Distance(id, p.dest)
}
