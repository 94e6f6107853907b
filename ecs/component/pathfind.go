package component

import "github.com/milk9111/burrow/pathfind"

// PathFind holds an entity's path agent. Removing the component releases
// the agent's temporary graph nodes.
type PathFind struct {
	Agent *pathfind.Agent

	// LastResult is the agent's latest update, kept for debug drawing.
	LastResult pathfind.Result
}

func (p *PathFind) Release() {
	if p != nil && p.Agent != nil {
		p.Agent.Release()
	}
}

var PathFindComponent = NewComponent[PathFind]()

// PathFindRequest is a one-tick request to move an agent's destination.
// Extend keeps the search done so far.
type PathFindRequest struct {
	X, Y   float64
	Extend bool
	Clear  bool
}

var PathFindRequestComponent = NewComponent[PathFindRequest]()
