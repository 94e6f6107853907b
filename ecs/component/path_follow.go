package component

// PathFollow steers an entity along its agent's path.
type PathFollow struct {
	Speed     float64
	ReachDist float64
	Arrived   bool
}

var PathFollowComponent = NewComponent[PathFollow]()
