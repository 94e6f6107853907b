package component

// TTL destroys its entity after Frames update ticks. Markers placed by the
// front ends use it.
type TTL struct {
	Frames int
}

var TTLComponent = NewComponent[TTL]()
