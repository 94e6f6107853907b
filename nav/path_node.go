package nav

// PathNode carries per-search A* bookkeeping for one GraphNode.
type PathNode struct {
	Node NodeID
	G    float64
	H    float64
	Prev *PathNode

	// Open is true while the node waits in the open set.
	Open bool
	// Closed is true once the node has been expanded.
	Closed bool
	// Reached is set by path followers once the mover has arrived.
	Reached bool

	seq   uint64
	index int
}

// F is the estimated total cost through this node.
func (n *PathNode) F() float64 {
	return n.G + n.H
}

// Path returns the chain from the search source to n, source first.
func (n *PathNode) Path() []*PathNode {
	if n == nil {
		return nil
	}
	var out []*PathNode
	for cur := n; cur != nil; cur = cur.Prev {
		out = append(out, cur)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NextUnreached walks back from n to the first node whose predecessor has
// been reached. If n itself is reached, or has no predecessor, n is returned.
func (n *PathNode) NextUnreached() *PathNode {
	if n == nil {
		return nil
	}
	cur := n
	for !cur.Reached && cur.Prev != nil && !cur.Prev.Reached {
		cur = cur.Prev
	}
	return cur
}

// PathTo returns the node ids from the search source to n.
func PathTo(n *PathNode) []NodeID {
	path := n.Path()
	out := make([]NodeID, len(path))
	for i, pn := range path {
		out[i] = pn.Node
	}
	return out
}

// openSet orders PathNodes by f, then h. Remaining ties prefer the most
// recently discovered node (highest seq).
type openSet []*PathNode

func (o openSet) Len() int { return len(o) }

func (o openSet) Less(i, j int) bool {
	fi, fj := o[i].F(), o[j].F()
	if fi != fj {
		return fi < fj
	}
	if o[i].H != o[j].H {
		return o[i].H < o[j].H
	}
	return o[i].seq > o[j].seq
}

func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openSet) Push(x any) {
	n := x.(*PathNode)
	n.index = len(*o)
	*o = append(*o, n)
}

func (o *openSet) Pop() any {
	old := *o
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*o = old[:last]
	return n
}
